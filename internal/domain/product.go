package domain

// Product represents a product in the catalog.
// The json tags correspond to the fields expected in API responses.
type Product struct {
	ID          string   `json:"id" bson:"id"`
	Name        string   `json:"name" bson:"name"`
	Price       float64  `json:"price" bson:"price"`
	Category    Category `json:"category" bson:"category"`
	InStock     bool     `json:"inStock" bson:"inStock"`
	Description *string  `json:"description,omitempty" bson:"description,omitempty"` // Pointer for optional field
}

// Clone returns a deep copy of the product so callers never share the
// description pointer with the catalog snapshot.
func (p Product) Clone() Product {
	if p.Description != nil {
		d := *p.Description
		p.Description = &d
	}
	return p
}

// CloneProducts deep-copies a slice of products. A nil input yields an empty,
// non-nil slice so it always encodes as a JSON array.
func CloneProducts(in []Product) []Product {
	out := make([]Product, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// ListResponse is the paginated result envelope returned by a list query.
type ListResponse struct {
	Items []Product `json:"items"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
	Total int       `json:"total"` // Matches before pagination
}

// TotalPages returns ceil(total/limit), the last valid page number.
// It is zero for an empty result.
func (r ListResponse) TotalPages() int {
	if r.Limit <= 0 || r.Total <= 0 {
		return 0
	}
	return (r.Total + r.Limit - 1) / r.Limit
}

// Facets summarizes the catalog for building filter controls.
type Facets struct {
	Categories   []Category   `json:"categories"`
	Availability Availability `json:"availability"`
}

// Availability holds product counts per stock state.
type Availability struct {
	InStock    int `json:"inStock"`
	OutOfStock int `json:"outOfStock"`
}
