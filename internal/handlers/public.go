// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"agrimart/internal/cache"
	"agrimart/internal/catalog"
	"agrimart/internal/middleware"
	"agrimart/internal/models"
	"agrimart/internal/render"
	"agrimart/internal/store"
)

// homeSectionLimit caps how many products a homepage category section shows.
const homeSectionLimit = 8

// Public groups handlers for the storefront. Pages read from the in-memory
// catalog snapshot; the Valkey page cache is checked first and filled on
// miss. Detail lookups fall back to the database when the snapshot does not
// have the item yet (e.g. right after an admin created it).
type Public struct {
	renderer   *render.Renderer
	catalog    *catalog.Store
	products   *store.ProductStore
	categories *store.CategoryStore
	pageCache  *cache.PageCache
}

// NewPublic creates a new Public handler group. pageCache may be nil when
// Valkey is not configured; pages are then rendered on every request.
func NewPublic(renderer *render.Renderer, catalogStore *catalog.Store, products *store.ProductStore, categories *store.CategoryStore, pageCache *cache.PageCache) *Public {
	return &Public{
		renderer:   renderer,
		catalog:    catalogStore,
		products:   products,
		categories: categories,
		pageCache:  pageCache,
	}
}

// homeSection pairs a root category with the products shown under it.
type homeSection struct {
	Category models.Category
	Products []models.Product
}

// Homepage renders the active root categories, each with a slice of its
// products (including products of its subcategories).
func (p *Public) Homepage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cached, ok := p.cacheGet(ctx, cache.HomepageKey(), r); ok {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(cached)
		return
	}

	state := p.catalog.State()
	tree := p.catalog.Tree()

	var sections []homeSection
	for _, root := range tree {
		if !root.IsActive {
			continue
		}
		ids := map[string]bool{root.ID: true}
		for _, child := range root.Children {
			ids[child.ID] = true
		}

		var items []models.Product
		for _, prod := range state.Products {
			for _, cid := range prod.CategoryIDs {
				if ids[cid] {
					items = append(items, prod)
					break
				}
			}
			if len(items) == homeSectionLimit {
				break
			}
		}
		sections = append(sections, homeSection{Category: root, Products: items})
	}

	html, err := p.renderer.RenderSite(r, "home", &render.PageData{
		Data: map[string]any{
			"Tree":     tree,
			"Sections": sections,
		},
	})
	if err != nil {
		slog.Error("render homepage failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.cacheSet(ctx, cache.HomepageKey(), html, r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// Product renders a product detail page. The catalog snapshot is checked
// first; a miss falls back to the database so a product is reachable the
// moment it is created.
func (p *Public) Product(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if cached, ok := p.cacheGet(ctx, cache.ProductKey(id), r); ok {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(cached)
		return
	}

	state := p.catalog.State()

	var product *models.Product
	for i := range state.Products {
		if state.Products[i].ID == id {
			product = &state.Products[i]
			break
		}
	}
	if product == nil {
		fromDB, err := p.products.FindByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			p.NotFound(w, r)
			return
		}
		if err != nil {
			slog.Error("find product failed", "error", err, "id", id)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		product = fromDB
	}

	// Primary category for the breadcrumb, when it resolves.
	var category *models.Category
	for i := range state.Categories {
		if state.Categories[i].ID == product.PrimaryCategoryID {
			category = &state.Categories[i]
			break
		}
	}

	data := map[string]any{
		"Tree":    p.catalog.Tree(),
		"Product": *product,
	}
	if category != nil {
		data["Category"] = *category
	}

	html, err := p.renderer.RenderSite(r, "product", &render.PageData{
		Title: product.Name,
		Data:  data,
	})
	if err != nil {
		slog.Error("render product failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.cacheSet(ctx, cache.ProductKey(id), html, r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// Category renders a category page: its subcategories and the products
// that list the category directly. Membership is exact; products of
// subcategories appear on the subcategory page, not the parent's.
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slugParam := chi.URLParam(r, "slug")

	if cached, ok := p.cacheGet(ctx, cache.CategoryKey(slugParam), r); ok {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(cached)
		return
	}

	state := p.catalog.State()

	var category *models.Category
	for i := range state.Categories {
		if state.Categories[i].Slug == slugParam {
			category = &state.Categories[i]
			break
		}
	}
	if category == nil {
		fromDB, err := p.categories.FindBySlug(ctx, slugParam)
		if errors.Is(err, store.ErrNotFound) {
			p.NotFound(w, r)
			return
		}
		if err != nil {
			slog.Error("find category failed", "error", err, "slug", slugParam)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		category = fromDB
	}

	var children []models.Category
	for _, c := range state.Categories {
		if c.ParentID == category.ID && c.IsActive {
			children = append(children, c)
		}
	}

	products := p.catalog.FilteredProducts("", category.ID)

	html, err := p.renderer.RenderSite(r, "category", &render.PageData{
		Title: category.Name,
		Data: map[string]any{
			"Tree":     p.catalog.Tree(),
			"Category": *category,
			"Children": children,
			"Products": products,
		},
	})
	if err != nil {
		slog.Error("render category failed", "error", err, "slug", slugParam)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.cacheSet(ctx, cache.CategoryKey(slugParam), html, r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// Search renders products matching the q query parameter. Search results
// are not cached: the key space is unbounded and results come from the
// in-memory snapshot anyway.
func (p *Public) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	products := p.catalog.FilteredProducts(query, "")

	p.renderer.Site(w, r, "search", &render.PageData{
		Title: "Tìm kiếm",
		Data: map[string]any{
			"Tree":     p.catalog.Tree(),
			"Query":    query,
			"Products": products,
		},
	})
}

// NotFound renders the storefront 404 page.
func (p *Public) NotFound(w http.ResponseWriter, r *http.Request) {
	html, err := p.renderer.RenderSite(r, "not_found", &render.PageData{
		Title: "Không tìm thấy",
		Data: map[string]any{
			"Tree": p.catalog.Tree(),
		},
	})
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write(html)
}

// cacheGet checks the page cache. The cache is skipped for authenticated
// requests: cached pages carry the anonymous header and must not leak
// into a logged-in user's view (or vice versa).
func (p *Public) cacheGet(ctx context.Context, key string, r *http.Request) ([]byte, bool) {
	if p.pageCache == nil || middleware.SessionFromCtx(r.Context()) != nil {
		return nil, false
	}
	return p.pageCache.Get(ctx, key)
}

// cacheSet stores rendered HTML unless the request is authenticated.
func (p *Public) cacheSet(ctx context.Context, key string, html []byte, r *http.Request) {
	if p.pageCache == nil || middleware.SessionFromCtx(r.Context()) != nil {
		return
	}
	p.pageCache.Set(ctx, key, html)
}
