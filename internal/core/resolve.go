package core

type productKey struct {
	name     string
	category CategoryRef
}

// resolver holds the identity maps of a single Resolve call.
type resolver struct {
	categories map[string]CategoryRef
	products   map[productKey]ProductRef
	batch      *ResolvedBatch
}

// Resolve builds the entity graph of a batch. Categories are keyed by exact
// name and products by (name, category); the first record that introduces
// an entity supplies its description and price. Every record adds a review.
// Resolve never touches the database and returns the same structure for the
// same ordered input.
func Resolve(records []ValidatedRecord) *ResolvedBatch {
	r := &resolver{
		categories: make(map[string]CategoryRef),
		products:   make(map[productKey]ProductRef),
		batch: &ResolvedBatch{
			Reviews: make([]NewReview, 0, len(records)),
		},
	}

	for _, rec := range records {
		cat := r.category(rec)
		prod := r.product(rec, cat)
		r.batch.Reviews = append(r.batch.Reviews, NewReview{
			Row:          rec.Row,
			Product:      prod,
			CustomerName: rec.CustomerName,
			Rating:       rec.Rating,
			ReviewText:   rec.ReviewText,
		})
	}

	return r.batch
}

func (r *resolver) category(rec ValidatedRecord) CategoryRef {
	if ref, ok := r.categories[rec.CategoryName]; ok {
		return ref
	}
	ref := CategoryRef(len(r.batch.Categories))
	r.batch.Categories = append(r.batch.Categories, NewCategory{
		Row:         rec.Row,
		Name:        rec.CategoryName,
		Description: rec.CategoryDescription,
	})
	r.categories[rec.CategoryName] = ref
	return ref
}

func (r *resolver) product(rec ValidatedRecord, cat CategoryRef) ProductRef {
	key := productKey{name: rec.ProductName, category: cat}
	if ref, ok := r.products[key]; ok {
		return ref
	}
	ref := ProductRef(len(r.batch.Products))
	r.batch.Products = append(r.batch.Products, NewProduct{
		Row:         rec.Row,
		Name:        rec.ProductName,
		Description: rec.ProductDescription,
		Price:       rec.Price,
		Category:    cat,
	})
	r.products[key] = ref
	return ref
}
