package catalog

import "errors"

// Known categories of the storefront. Records with other category values are
// kept in the catalog and searchable, but excluded from the category-browse
// view.
const (
	CategoryMobile   = "Mobile"
	CategoryLaptop   = "Laptop"
	CategoryEarphone = "Earphone"
	CategoryTV       = "TV"
)

var KnownCategories = []string{CategoryMobile, CategoryLaptop, CategoryEarphone, CategoryTV}

func IsKnownCategory(c string) bool {
	for _, k := range KnownCategories {
		if c == k {
			return true
		}
	}
	return false
}

type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Rating      float64 `json:"rating"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
}

var (
	ErrNameRequired    = errors.New("product name is required")
	ErrNegativePrice   = errors.New("price must not be negative")
	ErrUnknownCategory = errors.New("unknown category")
)

// Fields carries every product attribute except the id, which the catalog
// assigns on Add.
type Fields struct {
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Rating      float64 `json:"rating"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
}

func (f Fields) Validate() error {
	if f.Name == "" {
		return ErrNameRequired
	}
	if f.Price < 0 {
		return ErrNegativePrice
	}
	if !IsKnownCategory(f.Category) {
		return ErrUnknownCategory
	}
	return nil
}
