package catalog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ElectroMart/internal/auth"
	"ElectroMart/internal/catalog"
)

const (
	adminEmail    = "admin@electromart.test"
	adminPassword = "super-secret-1"
)

func seedProducts() []catalog.Product {
	return []catalog.Product{
		{ID: 1, Name: "Galaxy S24", Brand: "Samsung", Category: catalog.CategoryMobile, Price: 799, Rating: 4.6, Description: "AMOLED flagship phone"},
		{ID: 2, Name: "iPhone 15", Brand: "Apple", Category: catalog.CategoryMobile, Price: 829, Rating: 4.7, Description: "USB-C flagship"},
		{ID: 3, Name: "MacBook Air", Brand: "Apple", Category: catalog.CategoryLaptop, Price: 1099, Rating: 4.8, Description: "M3 fanless laptop"},
	}
}

func newTestServer(t *testing.T, repo catalog.Repository) *httptest.Server {
	t.Helper()

	cat, err := catalog.New(context.Background(), repo)
	require.NoError(t, err)

	users := auth.NewMemStore()
	require.NoError(t, users.Create(adminEmail, adminPassword, auth.RoleAdmin, "u_admin"))

	jwt := auth.NewTokenMaker("test-secret")
	authSrv := &auth.Server{Log: zap.NewNop(), Store: users, JWT: jwt}

	srv := &catalog.Server{
		Catalog: cat,
		Log:     zap.NewNop(),
		Admin:   auth.RequireRole(jwt, auth.RoleAdmin),
	}

	h := catalog.NewHandler(srv, authSrv.Routes(), catalog.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "catalog",
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func loginAdmin(t *testing.T, ts *httptest.Server) string {
	t.Helper()

	resp, raw := doJSON(t, http.MethodPost, ts.URL+"/auth/login",
		map[string]string{"email": adminEmail, "password": adminPassword}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var out struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

type searchResp struct {
	Total    int               `json:"total"`
	Products []catalog.Product `json:"products"`
}

func TestSearchEndpoint(t *testing.T) {
	ts := newTestServer(t, catalog.NewMemoryRepository(seedProducts()))

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/products?q=apple&category=Mobile", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out searchResp
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, 1, out.Total)
	require.Len(t, out.Products, 1)
	assert.Equal(t, 2, out.Products[0].ID)
}

func TestSearchMalformedBoundsAreIgnored(t *testing.T) {
	ts := newTestServer(t, catalog.NewMemoryRepository(seedProducts()))

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/products?min_price=abc&max_price=", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out searchResp
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, len(seedProducts()), out.Total)
}

func TestProductDetail(t *testing.T) {
	ts := newTestServer(t, catalog.NewMemoryRepository(seedProducts()))

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/products/1", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var p catalog.Product
	require.NoError(t, json.Unmarshal(raw, &p))
	assert.Equal(t, "Galaxy S24", p.Name)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/products/999", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/products/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRecommendationsEndpoint(t *testing.T) {
	ts := newTestServer(t, catalog.NewMemoryRepository(seedProducts()))

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/products/1/recommendations", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []catalog.Product
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].ID)
}

func TestRecommendationsUnknownIDIsEmptyNotError(t *testing.T) {
	ts := newTestServer(t, catalog.NewMemoryRepository(seedProducts()))

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/products/999/recommendations", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []catalog.Product
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Empty(t, out)
}

func TestCategoriesEndpoint(t *testing.T) {
	ts := newTestServer(t, catalog.NewMemoryRepository(seedProducts()))

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/categories?limit=1", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string][]catalog.Product
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Contains(t, out, catalog.CategoryMobile)

	// Best rated mobile first under the limit.
	require.Len(t, out[catalog.CategoryMobile], 1)
	assert.Equal(t, 2, out[catalog.CategoryMobile][0].ID)
}

func TestCreateProductRequiresAdmin(t *testing.T) {
	ts := newTestServer(t, catalog.NewMemoryRepository(seedProducts()))

	body := map[string]any{"name": "Soundbar", "category": "TV", "price": 299}

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/products", body, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// A plain user account must not pass the role check.
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/auth/register",
		map[string]string{"email": "shopper@electromart.test", "password": "password123"}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, raw := doJSON(t, http.MethodPost, ts.URL+"/auth/login",
		map[string]string{"email": "shopper@electromart.test", "password": "password123"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(raw, &login))

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/products", body,
		map[string]string{"Authorization": "Bearer " + login.AccessToken})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCreateProduct(t *testing.T) {
	repo := catalog.NewMemoryRepository(seedProducts())
	ts := newTestServer(t, repo)
	token := loginAdmin(t, ts)

	body := map[string]any{
		"name":        "OLED C4",
		"brand":       "LG",
		"category":    "TV",
		"price":       1499,
		"rating":      4.7,
		"description": "55-inch OLED evo panel",
		"image":       "https://images.electromart.test/oled-c4.jpg",
	}

	resp, raw := doJSON(t, http.MethodPost, ts.URL+"/products", body,
		map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var created catalog.Product
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.Equal(t, 4, created.ID)

	// Visible in an unfiltered search.
	resp, raw = doJSON(t, http.MethodGet, ts.URL+"/products", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out searchResp
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, 4, out.Total)

	// The backing store saw the same collection.
	persisted, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, out.Products, persisted)
}

func TestCreateProductValidation(t *testing.T) {
	ts := newTestServer(t, catalog.NewMemoryRepository(seedProducts()))
	token := loginAdmin(t, ts)
	hdr := map[string]string{"Authorization": "Bearer " + token}

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing name", map[string]any{"category": "TV", "price": 10}},
		{"negative price", map[string]any{"name": "X", "category": "TV", "price": -5}},
		{"unknown category", map[string]any{"name": "X", "category": "Drone", "price": 10}},
		{"unknown field", map[string]any{"name": "X", "category": "TV", "price": 10, "sku": "A1"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := doJSON(t, http.MethodPost, ts.URL+"/products", tc.body, hdr)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t, catalog.NewMemoryRepository(seedProducts()))

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/readyz", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
