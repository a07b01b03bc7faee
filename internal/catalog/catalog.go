package catalog

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
)

// DefaultRecommendations is how many similar products Recommend returns
// when the caller does not ask for a specific count.
const DefaultRecommendations = 4

// Filter narrows a Search. Nil price bounds mean unbounded, empty strings
// mean no keyword/category constraint; the zero Filter matches everything.
type Filter struct {
	Keyword  string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

// Catalog is the query engine: an in-memory snapshot of the product
// collection loaded from a Repository. Reads share the read lock; Add holds
// the write lock across the whole read-modify-persist sequence so id
// assignment and the backing-store rewrite cannot interleave.
type Catalog struct {
	mu       sync.RWMutex
	products []Product
	repo     Repository
}

func New(ctx context.Context, repo Repository) (*Catalog, error) {
	products, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Catalog{products: products, repo: repo}, nil
}

// NewEmpty returns an engine over an empty snapshot. The first successful
// Add creates the backing document.
func NewEmpty(repo Repository) *Catalog {
	return &Catalog{repo: repo}
}

func (c *Catalog) Ping(ctx context.Context) error { return c.repo.Ping(ctx) }

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}

func (c *Catalog) Get(id int) (Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.find(id)
}

func (c *Catalog) find(id int) (Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func matches(p Product, f Filter) bool {
	if f.Keyword != "" {
		kw := strings.ToLower(f.Keyword)
		if !strings.Contains(strings.ToLower(p.Name), kw) &&
			!strings.Contains(strings.ToLower(p.Brand), kw) &&
			!strings.Contains(strings.ToLower(p.Description), kw) {
			return false
		}
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	return true
}

// Search returns products matching every given filter, in catalog order.
func (c *Catalog) Search(f Filter) []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if matches(p, f) {
			out = append(out, p)
		}
	}
	return out
}

// Recommend returns up to limit products from the target's category, closest
// price first. Ties keep catalog order. An unknown id yields an empty slice,
// not an error.
func (c *Catalog) Recommend(id, limit int) []Product {
	if limit <= 0 {
		limit = DefaultRecommendations
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	target, ok := c.find(id)
	if !ok {
		return []Product{}
	}

	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if p.ID != id && p.Category == target.Category {
			out = append(out, p)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Price-target.Price) < math.Abs(out[j].Price-target.Price)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ByCategory returns up to limit products per known category, best rated
// first, for the storefront landing view.
func (c *Catalog) ByCategory(limit int) map[string][]Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string][]Product, len(KnownCategories))
	for _, cat := range KnownCategories {
		in := make([]Product, 0, limit)
		for _, p := range c.products {
			if p.Category == cat {
				in = append(in, p)
			}
		}
		sort.SliceStable(in, func(i, j int) bool { return in[i].Rating > in[j].Rating })
		if len(in) > limit {
			in = in[:limit]
		}
		out[cat] = in
	}
	return out
}

// Add assigns the next free id, appends the product and rewrites the backing
// store. The snapshot is replaced only after the write succeeded, so a
// persistence failure leaves memory and disk consistent.
func (c *Catalog) Add(ctx context.Context, f Fields) (Product, error) {
	if err := f.Validate(); err != nil {
		return Product{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := 1
	for _, p := range c.products {
		if p.ID >= next {
			next = p.ID + 1
		}
	}

	p := Product{
		ID:          next,
		Name:        f.Name,
		Brand:       f.Brand,
		Category:    f.Category,
		Price:       f.Price,
		Rating:      f.Rating,
		Description: f.Description,
		Image:       f.Image,
	}

	updated := make([]Product, len(c.products), len(c.products)+1)
	copy(updated, c.products)
	updated = append(updated, p)

	if err := c.repo.Save(ctx, updated); err != nil {
		return Product{}, err
	}

	c.products = updated
	return p, nil
}
