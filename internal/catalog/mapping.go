package catalog

// ProductInfo holds the catalog attributes used for enrichment.
// A nil field means the catalog did not provide it.
type ProductInfo struct {
	Title    *string
	Category *string
	Brand    *string
	Rating   *float64
}

// ProductMapping is a read-only index of catalog products by numeric id.
// It is built once per run and passed explicitly to the enricher.
type ProductMapping struct {
	byID map[int]ProductInfo
}

// BuildProductMapping indexes products by id. Products without an id are
// skipped. When an id appears more than once, the last entry wins.
func BuildProductMapping(products []Product) ProductMapping {
	byID := make(map[int]ProductInfo, len(products))
	for _, p := range products {
		if p.ID == nil {
			continue
		}
		byID[*p.ID] = ProductInfo{
			Title:    p.Title,
			Category: p.Category,
			Brand:    p.Brand,
			Rating:   p.Rating,
		}
	}
	return ProductMapping{byID: byID}
}

// Lookup returns the catalog entry for id.
func (m ProductMapping) Lookup(id int) (ProductInfo, bool) {
	info, ok := m.byID[id]
	return info, ok
}

// Len returns the number of indexed products.
func (m ProductMapping) Len() int {
	return len(m.byID)
}
