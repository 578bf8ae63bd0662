// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"agrimart/internal/cache"
	"agrimart/internal/catalog"
	"agrimart/internal/models"
	"agrimart/internal/render"
	"agrimart/internal/storage"
	"agrimart/internal/store"
)

// maxUploadSize caps media uploads at 10 MiB.
const maxUploadSize = 10 << 20

// Admin groups the console handlers. Every write goes through the
// database stores, then the in-memory catalog snapshot is reloaded and
// the page cache flushed so the storefront reflects the change on the
// next request.
type Admin struct {
	renderer   *render.Renderer
	categories *store.CategoryStore
	products   *store.ProductStore
	users      *store.UserStore
	catalog    *catalog.Store
	source     *store.CatalogSource
	pageCache  *cache.PageCache
	uploads    *storage.Client
}

// NewAdmin creates a new Admin handler group. pageCache and uploads may
// be nil when the respective backing service is not configured.
func NewAdmin(
	renderer *render.Renderer,
	categories *store.CategoryStore,
	products *store.ProductStore,
	users *store.UserStore,
	catalogStore *catalog.Store,
	source *store.CatalogSource,
	pageCache *cache.PageCache,
	uploads *storage.Client,
) *Admin {
	return &Admin{
		renderer:   renderer,
		categories: categories,
		products:   products,
		users:      users,
		catalog:    catalogStore,
		source:     source,
		pageCache:  pageCache,
		uploads:    uploads,
	}
}

// categoryRow is a category flattened for display: roots first, each
// followed by its children indented one level.
type categoryRow struct {
	Category   models.Category
	Depth      int
	ParentName string
}

// flattenCategories orders the full category list as a two-level outline.
func flattenCategories(categories []models.Category) []categoryRow {
	var rows []categoryRow
	for _, root := range catalog.BuildTree(categories) {
		rootRow := root
		rootRow.Children = nil
		rows = append(rows, categoryRow{Category: rootRow, Depth: 0})
		for _, child := range root.Children {
			rows = append(rows, categoryRow{Category: child, Depth: 1, ParentName: root.Name})
		}
	}
	return rows
}

// refreshCatalog reloads the snapshot from the database and flushes the
// page cache. Called after every successful admin write; failures are
// logged and swallowed because the write itself already succeeded.
func (a *Admin) refreshCatalog(r *http.Request) {
	ctx := r.Context()

	cats, err := a.source.ListCategories(ctx)
	if err != nil {
		slog.Error("catalog reload: list categories failed", "error", err)
		return
	}
	prods, err := a.source.ListProducts(ctx)
	if err != nil {
		slog.Error("catalog reload: list products failed", "error", err)
		return
	}
	a.catalog.SetState(catalog.Patch{Categories: &cats, Products: &prods})

	if a.pageCache != nil {
		a.pageCache.InvalidateAll(ctx)
	}
}

// Dashboard renders the admin landing page with entity counts.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categoryCount, err := a.categories.Count(ctx)
	if err != nil {
		slog.Error("count categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	productCount, err := a.products.Count(ctx)
	if err != nil {
		slog.Error("count products failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	userCount, err := a.users.Count(ctx)
	if err != nil {
		slog.Error("count users failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   "Tổng quan",
		Section: "dashboard",
		Data: map[string]any{
			"CategoryCount": categoryCount,
			"ProductCount":  productCount,
			"UserCount":     userCount,
		},
	})
}

// Categories renders the category list as a two-level outline.
func (a *Admin) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := a.categories.List(r.Context())
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "categories", &render.PageData{
		Title:   "Danh mục",
		Section: "categories",
		Data: map[string]any{
			"Categories": flattenCategories(categories),
		},
	})
}

// parentOptions lists the categories that may act as a parent: roots
// only (nesting is one level deep), excluding the category being edited.
func (a *Admin) parentOptions(r *http.Request, excludeID string) ([]categoryRow, error) {
	categories, err := a.categories.List(r.Context())
	if err != nil {
		return nil, err
	}
	var rows []categoryRow
	for _, c := range categories {
		if !c.IsRoot() || c.ID == excludeID {
			continue
		}
		rows = append(rows, categoryRow{Category: c})
	}
	return rows, nil
}

// renderCategoryForm renders the create/edit form, optionally with an
// error message above it.
func (a *Admin) renderCategoryForm(w http.ResponseWriter, r *http.Request, c *models.Category, action, errMsg string) {
	parents, err := a.parentOptions(r, c.ID)
	if err != nil {
		slog.Error("list parent categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := map[string]any{
		"Category": *c,
		"Parents":  parents,
		"Action":   action,
	}
	if errMsg != "" {
		data["Error"] = errMsg
	}

	a.renderer.Page(w, r, "category_form", &render.PageData{
		Title:   "Danh mục",
		Section: "categories",
		Data:    data,
	})
}

// CategoryNew renders an empty category form.
func (a *Admin) CategoryNew(w http.ResponseWriter, r *http.Request) {
	a.renderCategoryForm(w, r, &models.Category{IsActive: true}, "/admin/categories/new", "")
}

// categoryFromForm builds a category from the submitted form values.
func categoryFromForm(r *http.Request) *models.Category {
	return &models.Category{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Slug:        strings.TrimSpace(r.FormValue("slug")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Image:       strings.TrimSpace(r.FormValue("image")),
		ParentID:    strings.TrimSpace(r.FormValue("parent_id")),
		IsActive:    r.FormValue("is_active") == "1",
	}
}

// CategoryCreate handles the create form submission.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	c := categoryFromForm(r)

	if msg := validateCategory(c.Name, c.Slug); msg != "" {
		a.renderCategoryForm(w, r, c, "/admin/categories/new", msg)
		return
	}

	if _, err := a.categories.Create(r.Context(), c); err != nil {
		if errors.Is(err, store.ErrSlugTaken) {
			a.renderCategoryForm(w, r, c, "/admin/categories/new", "Đường dẫn (slug) đã được sử dụng.")
			return
		}
		slog.Error("create category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.refreshCatalog(r)
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// CategoryEdit renders the edit form for an existing category.
func (a *Admin) CategoryEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, err := a.categories.FindByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("find category failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderCategoryForm(w, r, c, "/admin/categories/"+id+"/edit", "")
}

// CategoryUpdate handles the edit form submission.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	action := "/admin/categories/" + id + "/edit"

	c := categoryFromForm(r)
	c.ID = id

	if msg := validateCategory(c.Name, c.Slug); msg != "" {
		a.renderCategoryForm(w, r, c, action, msg)
		return
	}
	if c.ParentID == c.ID {
		a.renderCategoryForm(w, r, c, action, "Danh mục không thể là cha của chính nó.")
		return
	}

	if _, err := a.categories.Update(r.Context(), c); err != nil {
		switch {
		case errors.Is(err, store.ErrSlugTaken):
			a.renderCategoryForm(w, r, c, action, "Đường dẫn (slug) đã được sử dụng.")
		case errors.Is(err, store.ErrNotFound):
			http.NotFound(w, r)
		default:
			slog.Error("update category failed", "error", err, "id", id)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	a.refreshCatalog(r)
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// CategoryDelete removes a category. Deleting a category that still has
// children is refused and reported on the list page.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := a.categories.Delete(r.Context(), id)
	switch {
	case err == nil:
		a.refreshCatalog(r)
	case errors.Is(err, store.ErrHasChildren):
		categories, listErr := a.categories.List(r.Context())
		if listErr != nil {
			slog.Error("list categories failed", "error", listErr)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		a.renderer.Page(w, r, "categories", &render.PageData{
			Title:   "Danh mục",
			Section: "categories",
			Flashes: []render.Flash{{Type: "error", Message: "Không thể xoá: danh mục còn danh mục con."}},
			Data: map[string]any{
				"Categories": flattenCategories(categories),
			},
		})
		return
	case errors.Is(err, store.ErrNotFound):
		http.NotFound(w, r)
		return
	default:
		slog.Error("delete category failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// Products renders the product list, newest first.
func (a *Admin) Products(w http.ResponseWriter, r *http.Request) {
	products, err := a.products.List(r.Context())
	if err != nil {
		slog.Error("list products failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "products", &render.PageData{
		Title:   "Sản phẩm",
		Section: "products",
		Data: map[string]any{
			"Products": products,
		},
	})
}

// renderProductForm renders the create/edit form, optionally with an
// error message above it.
func (a *Admin) renderProductForm(w http.ResponseWriter, r *http.Request, p *models.Product, action string, isNew bool, errMsg string) {
	categories, err := a.categories.List(r.Context())
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := map[string]any{
		"Product":    *p,
		"Categories": flattenCategories(categories),
		"Action":     action,
		"IsNew":      isNew,
	}
	if errMsg != "" {
		data["Error"] = errMsg
	}

	a.renderer.Page(w, r, "product_form", &render.PageData{
		Title:   "Sản phẩm",
		Section: "products",
		Data:    data,
	})
}

// ProductNew renders an empty product form.
func (a *Admin) ProductNew(w http.ResponseWriter, r *http.Request) {
	a.renderProductForm(w, r, &models.Product{InStock: true}, "/admin/products/new", true, "")
}

// productFromForm builds a product from the submitted form values. The
// price is validated separately; a zero value is used here when it does
// not parse so the form re-renders with the other fields intact.
func productFromForm(r *http.Request) *models.Product {
	price, _ := decimal.NewFromString(strings.TrimSpace(r.FormValue("price")))

	var images []string
	for _, line := range strings.Split(r.FormValue("images"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			images = append(images, line)
		}
	}

	return &models.Product{
		ID:                strings.TrimSpace(r.FormValue("id")),
		Name:              strings.TrimSpace(r.FormValue("name")),
		Price:             price,
		InStock:           r.FormValue("in_stock") == "1",
		CategoryIDs:       r.Form["category_ids"],
		PrimaryCategoryID: strings.TrimSpace(r.FormValue("primary_category_id")),
		Thumbnail:         strings.TrimSpace(r.FormValue("thumbnail")),
		Images:            images,
		ShortDescription:  r.FormValue("short_description"),
		ActiveIngredient:  r.FormValue("active_ingredient"),
		Uses:              r.FormValue("uses"),
		Dosage:            r.FormValue("dosage"),
		Target:            r.FormValue("target"),
		Packaging:         strings.TrimSpace(r.FormValue("packaging")),
		Content:           r.FormValue("content"),
		Manufacturer:      strings.TrimSpace(r.FormValue("manufacturer")),
		Origin:            strings.TrimSpace(r.FormValue("origin")),
	}
}

// productRichText collects the Markdown fields for length validation.
func productRichText(p *models.Product) map[string]string {
	return map[string]string{
		"short_description": p.ShortDescription,
		"active_ingredient": p.ActiveIngredient,
		"uses":              p.Uses,
		"dosage":            p.Dosage,
		"target":            p.Target,
		"content":           p.Content,
	}
}

// ProductCreate handles the create form submission.
func (a *Admin) ProductCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	p := productFromForm(r)

	if msg := validateProduct(p.Name, r.FormValue("price"), productRichText(p)); msg != "" {
		a.renderProductForm(w, r, p, "/admin/products/new", true, msg)
		return
	}

	if _, err := a.products.Create(r.Context(), p); err != nil {
		if errors.Is(err, store.ErrCodeTaken) {
			a.renderProductForm(w, r, p, "/admin/products/new", true, "Mã sản phẩm đã được sử dụng.")
			return
		}
		slog.Error("create product failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.refreshCatalog(r)
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}

// ProductEdit renders the edit form for an existing product.
func (a *Admin) ProductEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := a.products.FindByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("find product failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderProductForm(w, r, p, "/admin/products/"+id+"/edit", false, "")
}

// ProductUpdate handles the edit form submission. The product id comes
// from the URL, never the form; it is immutable.
func (a *Admin) ProductUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	action := "/admin/products/" + id + "/edit"

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	p := productFromForm(r)
	p.ID = id

	if msg := validateProduct(p.Name, r.FormValue("price"), productRichText(p)); msg != "" {
		a.renderProductForm(w, r, p, action, false, msg)
		return
	}

	if _, err := a.products.Update(r.Context(), p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("update product failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.refreshCatalog(r)
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}

// ProductDelete removes a product.
func (a *Admin) ProductDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := a.products.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("delete product failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.refreshCatalog(r)
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}

// MediaUpload accepts a multipart file and stores it in the media
// bucket, answering with the public URL as JSON for the admin UI.
func (a *Admin) MediaUpload(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if a.uploads == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"media storage is not configured"}`))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"file too large or malformed upload"}`))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"missing file field"}`))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := storage.MediaKey(header.Filename)
	url, err := a.uploads.Upload(r.Context(), key, contentType, file, header.Size)
	if err != nil {
		slog.Error("media upload failed", "error", err, "key", key)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"upload failed"}`))
		return
	}

	w.Write([]byte(`{"url":"` + url + `"}`))
}
