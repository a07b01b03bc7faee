package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ElectroMart/pkg/kit"
)

const (
	maxBodyBytes         = 1 << 20
	defaultCategoryLimit = 5
)

type Server struct {
	Catalog *Catalog
	Cache   *SearchCache
	Log     *zap.Logger

	// Admin guards the write path; Limiter caps it per client IP. Both are
	// optional so tests can compose a bare server.
	Admin   func(http.Handler) http.Handler
	Limiter *kit.IPRateLimiter
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := s.Catalog.Ping(ctx); err != nil {
			if s.Log != nil {
				s.Log.Warn("readyz failed", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Get("/products", s.handleSearch)
	r.Get("/products/{id}", s.handleGet)
	r.Get("/products/{id}/recommendations", s.handleRecommend)
	r.Get("/categories", s.handleCategories)

	var writeMW []func(http.Handler) http.Handler
	if s.Limiter != nil {
		writeMW = append(writeMW, s.Limiter.Middleware)
	}
	if s.Admin != nil {
		writeMW = append(writeMW, s.Admin)
	}
	r.With(writeMW...).Post("/products", s.handleCreate)

	return r
}

type searchResp struct {
	Total    int       `json:"total"`
	Products []Product `json:"products"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{
		Keyword:  q.Get("q"),
		Category: q.Get("category"),
		MinPrice: priceBound(q, "min_price"),
		MaxPrice: priceBound(q, "max_price"),
	}

	if s.Cache != nil {
		if products, ok := s.Cache.Get(r.Context(), f); ok {
			kit.WriteJSON(w, http.StatusOK, searchResp{Total: len(products), Products: products})
			return
		}
	}

	products := s.Catalog.Search(f)

	if s.Cache != nil {
		if err := s.Cache.Put(r.Context(), f, products); err != nil && s.Log != nil {
			s.Log.Warn("search cache put failed", zap.Error(err))
		}
	}

	kit.WriteJSON(w, http.StatusOK, searchResp{Total: len(products), Products: products})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid product id", nil)
		return
	}

	p, ok := s.Catalog.Get(id)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid product id", nil)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	// Unknown id is an ordinary empty result, not an error.
	kit.WriteJSON(w, http.StatusOK, s.Catalog.Recommend(id, limit))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	limit := defaultCategoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	kit.WriteJSON(w, http.StatusOK, s.Catalog.ByCategory(limit))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var fields Fields
	if err := kit.DecodeJSON(w, r, maxBodyBytes, &fields); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	p, err := s.Catalog.Add(r.Context(), fields)
	switch {
	case err == nil:
	case errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrNegativePrice),
		errors.Is(err, ErrUnknownCategory):
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	case errors.Is(err, ErrPersistence):
		if s.Log != nil {
			s.Log.Error("product persist failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog write failed", nil)
		return
	default:
		if s.Log != nil {
			s.Log.Error("add product failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	if s.Cache != nil {
		if err := s.Cache.Invalidate(r.Context()); err != nil && s.Log != nil {
			s.Log.Warn("search cache invalidate failed", zap.Error(err))
		}
	}

	if s.Log != nil {
		s.Log.Info("product added", zap.Int("id", p.ID), zap.String("category", p.Category))
	}
	kit.WriteJSON(w, http.StatusCreated, p)
}

// priceBound parses an optional price query parameter. Malformed or negative
// values are treated as an absent bound rather than failing the request.
func priceBound(q url.Values, key string) *float64 {
	raw := q.Get(key)
	if raw == "" {
		return nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}
