package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// TemplateSheetName is the sheet written by WriteTemplateXLSX.
const TemplateSheetName = "Import"

// Template describes the expected import layout. It is guidance for clients;
// the pipeline enforces only the checks in Validate.
type Template struct {
	RequiredColumns []string          `json:"requiredColumns"`
	OptionalColumns []string          `json:"optionalColumns"`
	ValidationRules map[string]string `json:"validationRules"`
	SampleData      []SampleRow       `json:"sampleData"`
}

// SampleRow is one example line of an import file.
type SampleRow struct {
	ProductName         string          `json:"product_name"`
	ProductDescription  string          `json:"product_description"`
	CategoryName        string          `json:"category_name"`
	CategoryDescription string          `json:"category_description"`
	Price               decimal.Decimal `json:"price"`
	CustomerName        string          `json:"customer_name"`
	Rating              int             `json:"rating"`
	ReviewText          string          `json:"review_text"`
}

// TemplateColumns is the column order of generated template files.
var TemplateColumns = []string{
	ColProductName,
	ColProductDescription,
	ColCategoryName,
	ColCategoryDescription,
	ColPrice,
	ColCustomerName,
	ColRating,
	ColReviewText,
}

// ImportTemplate returns the template description.
func ImportTemplate() Template {
	return Template{
		RequiredColumns: append([]string(nil), requiredColumns...),
		OptionalColumns: []string{ColProductDescription, ColCategoryDescription, ColReviewText},
		ValidationRules: map[string]string{
			ColProductName:         "Required, max 200 characters",
			ColCategoryName:        "Required, max 100 characters",
			ColPrice:               "Required, must be a non-negative number below 100000000",
			ColCustomerName:        "Required, max 100 characters",
			ColRating:              "Required, must be integer between 1 and 5",
			ColReviewText:          "Optional, text",
			ColProductDescription:  "Optional, text",
			ColCategoryDescription: "Optional, text",
		},
		SampleData: []SampleRow{
			{
				ProductName:         "iPhone 15 Pro",
				ProductDescription:  "Latest Apple smartphone",
				CategoryName:        "Electronics",
				CategoryDescription: "Electronic devices",
				Price:               decimal.RequireFromString("999.99"),
				CustomerName:        "John Doe",
				Rating:              5,
				ReviewText:          "Amazing phone!",
			},
			{
				ProductName:         "Nike Running Shoes",
				ProductDescription:  "Comfortable sports shoes",
				CategoryName:        "Sports",
				CategoryDescription: "Sports equipment",
				Price:               decimal.RequireFromString("89.99"),
				CustomerName:        "Jane Smith",
				Rating:              4,
				ReviewText:          "Great shoes for running!",
			},
		},
	}
}

func (r SampleRow) cells() []string {
	return []string{
		r.ProductName,
		r.ProductDescription,
		r.CategoryName,
		r.CategoryDescription,
		r.Price.StringFixed(2),
		r.CustomerName,
		strconv.Itoa(r.Rating),
		r.ReviewText,
	}
}

// WriteTemplateCSV writes the header and sample rows as CSV.
func WriteTemplateCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TemplateColumns); err != nil {
		return err
	}
	for _, row := range ImportTemplate().SampleData {
		if err := cw.Write(row.cells()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTemplateXLSX writes the header and sample rows as a workbook with a
// single sheet. Price and rating are stored as numbers.
func WriteTemplateXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TemplateSheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(TemplateColumns))
	for i, col := range TemplateColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(TemplateSheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range ImportTemplate().SampleData {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			row.ProductName,
			row.ProductDescription,
			row.CategoryName,
			row.CategoryDescription,
			row.Price.InexactFloat64(),
			row.CustomerName,
			row.Rating,
			row.ReviewText,
		}
		if err := f.SetSheetRow(TemplateSheetName, cell, &values); err != nil {
			return fmt.Errorf("write sample row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
