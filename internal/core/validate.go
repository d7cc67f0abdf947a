package core

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// MaxPrice is the exclusive upper bound of a DECIMAL(10,2) price.
var MaxPrice = decimal.New(1, 8)

// Numeric cells are checked against these exponent bounds before any
// rounding or comparison, which rescale to the exponent.
const (
	maxPriceExponent = 8
	minCellExponent  = -20
)

var requiredColumns = []string{
	ColProductName,
	ColCategoryName,
	ColPrice,
	ColCustomerName,
	ColRating,
}

// lengthRules mirror the VARCHAR widths of the catalog schema.
var lengthRules = []struct {
	column string
	max    int
}{
	{ColProductName, 200},
	{ColCategoryName, 100},
	{ColCustomerName, 100},
}

var validate = validator.New()

// Validate checks every record and splits the batch into rows that can be
// imported and rows that cannot. Every check of a row runs, so one RowError
// carries all of that row's problems. An empty batch is the only error.
func Validate(records []RawRecord) ([]ValidatedRecord, []RowError, error) {
	if len(records) == 0 {
		return nil, nil, ErrEmptyBatch
	}

	valid := make([]ValidatedRecord, 0, len(records))
	var rowErrs []RowError

	for _, rec := range records {
		vr, msgs := validateRecord(rec)
		if len(msgs) > 0 {
			rowErrs = append(rowErrs, RowError{Row: rec.Row, Messages: msgs})
			continue
		}
		valid = append(valid, vr)
	}

	return valid, rowErrs, nil
}

func validateRecord(rec RawRecord) (ValidatedRecord, []string) {
	var msgs []string

	value := func(col string) string {
		return strings.TrimSpace(rec.Get(col))
	}

	for _, col := range requiredColumns {
		if value(col) == "" {
			msgs = append(msgs, col+" is required")
		}
	}

	price, priceMsg := parsePrice(value(ColPrice))
	if priceMsg != "" {
		msgs = append(msgs, priceMsg)
	}

	rating, ratingMsg := parseRating(value(ColRating))
	if ratingMsg != "" {
		msgs = append(msgs, ratingMsg)
	}

	for _, rule := range lengthRules {
		if err := validate.Var(value(rule.column), fmt.Sprintf("max=%d", rule.max)); err != nil {
			msgs = append(msgs, fmt.Sprintf("%s must be at most %d characters", rule.column, rule.max))
		}
	}

	if len(msgs) > 0 {
		return ValidatedRecord{}, msgs
	}

	return ValidatedRecord{
		Row:                 rec.Row,
		ProductName:         value(ColProductName),
		ProductDescription:  value(ColProductDescription),
		CategoryName:        value(ColCategoryName),
		CategoryDescription: value(ColCategoryDescription),
		Price:               price,
		CustomerName:        value(ColCustomerName),
		Rating:              rating,
		ReviewText:          value(ColReviewText),
	}, nil
}

// parsePrice accepts a plain decimal and rounds it to cents. A blank value
// is reported by the required check only.
func parsePrice(s string) (decimal.Decimal, string) {
	if s == "" {
		return decimal.Decimal{}, ""
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, "price must be a number"
	}
	if d.IsNegative() {
		return decimal.Decimal{}, "price must be a non-negative number"
	}
	if d.IsZero() {
		return decimal.Zero, ""
	}
	if d.Exponent() > maxPriceExponent {
		return decimal.Decimal{}, "price must be less than " + MaxPrice.String()
	}
	if d.Exponent() < minCellExponent {
		return decimal.Decimal{}, "price must be a number"
	}
	d = d.Round(2)
	if d.GreaterThanOrEqual(MaxPrice) {
		return decimal.Decimal{}, "price must be less than " + MaxPrice.String()
	}
	return d, ""
}

// parseRating accepts whole numbers from 1 to 5. "4.0" is accepted because
// spreadsheets often store integers as floats.
func parseRating(s string) (int, string) {
	if s == "" {
		return 0, ""
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.Exponent() > 0 || d.Exponent() < minCellExponent || !d.IsInteger() || d.LessThan(decimal.NewFromInt(1)) || d.GreaterThan(decimal.NewFromInt(5)) {
		return 0, "rating must be a number between 1 and 5"
	}
	return int(d.IntPart()), ""
}
