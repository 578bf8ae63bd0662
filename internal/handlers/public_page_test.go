// public_page_test.go contains handler integration tests for the Public
// handler group: homepage, product and category pages, search, and the
// page cache interplay. Tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"agrimart/internal/cache"
	"agrimart/internal/catalog"
	"agrimart/internal/models"
)

// setSnapshot replaces the in-memory catalog with fixed test data so the
// page tests do not depend on what the database happens to contain.
func setSnapshot(env *testEnv, cats []models.Category, prods []models.Product) {
	env.Catalog.SetState(catalog.Patch{Categories: &cats, Products: &prods})
}

func snapshotFixture(env *testEnv) {
	setSnapshot(env,
		[]models.Category{
			{ID: "c-root", Name: "Phân bón", Slug: "phan-bon", IsActive: true},
			{ID: "c-child", Name: "Phân đạm", Slug: "phan-dam", ParentID: "c-root", IsActive: true},
			{ID: "c-hidden", Name: "Ẩn", Slug: "an", IsActive: false},
		},
		[]models.Product{
			{
				ID: "dam-ca-mau-50kg", Name: "Đạm Cà Mau 50kg", SearchName: "dam ca mau 50kg",
				Price: decimal.NewFromInt(450000), InStock: true,
				CategoryIDs: []string{"c-root", "c-child"}, PrimaryCategoryID: "c-child",
			},
			{
				ID: "oshin-20wp", Name: "Thuốc Trừ Rầy Oshin 20WP", SearchName: "thuoc tru ray oshin 20wp",
				Price: decimal.NewFromInt(35000), InStock: true,
				CategoryIDs: []string{"c-child"}, PrimaryCategoryID: "c-child",
			},
		},
	)
}

// --------------------------------------------------------------------------
// Homepage
// --------------------------------------------------------------------------

func TestHomepage_RendersSectionsAndFillsCache(t *testing.T) {
	env := newTestEnv(t)
	snapshotFixture(env)
	ctx := context.Background()
	env.PageCache.InvalidateAll(ctx)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	env.Public.Homepage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Phân bón") {
		t.Error("homepage should render the root category section")
	}
	if !strings.Contains(body, "450.000₫") {
		t.Error("homepage should render formatted prices")
	}
	if strings.Contains(body, `href="/danh-muc/an"`) {
		t.Error("inactive categories must not appear in the nav")
	}

	if _, ok := env.PageCache.Get(ctx, cache.HomepageKey()); !ok {
		t.Error("anonymous homepage render should fill the page cache")
	}
}

func TestHomepage_ServedFromCache(t *testing.T) {
	env := newTestEnv(t)
	snapshotFixture(env)
	ctx := context.Background()

	env.PageCache.Set(ctx, cache.HomepageKey(), []byte("<html>cached-marker</html>"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	env.Public.Homepage(rec, req)

	if !strings.Contains(rec.Body.String(), "cached-marker") {
		t.Error("anonymous request should be served from the page cache")
	}
}

func TestHomepage_AuthenticatedBypassesCache(t *testing.T) {
	env := newTestEnv(t)
	snapshotFixture(env)
	ctx := context.Background()

	env.PageCache.Set(ctx, cache.HomepageKey(), []byte("<html>cached-marker</html>"))

	sess := testSession(uuid.New(), "user@agrimart.local", "user", true)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(ctxWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()

	env.Public.Homepage(rec, req)

	if strings.Contains(rec.Body.String(), "cached-marker") {
		t.Error("authenticated request must not be served from the page cache")
	}
}

// --------------------------------------------------------------------------
// Product page
// --------------------------------------------------------------------------

func TestProduct_RendersFromSnapshot(t *testing.T) {
	env := newTestEnv(t)
	snapshotFixture(env)
	env.PageCache.InvalidateAll(context.Background())

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/san-pham/dam-ca-mau-50kg", nil), "id", "dam-ca-mau-50kg")
	rec := httptest.NewRecorder()

	env.Public.Product(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Đạm Cà Mau 50kg") {
		t.Error("product page should render the product name")
	}
	if !strings.Contains(body, "Phân đạm") {
		t.Error("product page should render the primary category breadcrumb")
	}
}

func TestProduct_UnknownIDRenders404(t *testing.T) {
	env := newTestEnv(t)
	snapshotFixture(env)
	env.PageCache.InvalidateAll(context.Background())

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/san-pham/khong-ton-tai", nil), "id", "khong-ton-tai")
	rec := httptest.NewRecorder()

	env.Public.Product(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// --------------------------------------------------------------------------
// Category page
// --------------------------------------------------------------------------

// TestCategory_ExactMembership verifies a product tagged only with a child
// category does not appear on the parent's page.
func TestCategory_ExactMembership(t *testing.T) {
	env := newTestEnv(t)
	snapshotFixture(env)
	env.PageCache.InvalidateAll(context.Background())

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/danh-muc/phan-bon", nil), "slug", "phan-bon")
	rec := httptest.NewRecorder()

	env.Public.Category(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Đạm Cà Mau 50kg") {
		t.Error("directly tagged product should appear")
	}
	if strings.Contains(body, "Oshin 20WP") {
		t.Error("child-only product must not appear on the parent page")
	}
	if !strings.Contains(body, "Phân đạm") {
		t.Error("subcategories should be listed")
	}
}

func TestCategory_UnknownSlugRenders404(t *testing.T) {
	env := newTestEnv(t)
	snapshotFixture(env)
	env.PageCache.InvalidateAll(context.Background())

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/danh-muc/khong-co", nil), "slug", "khong-co")
	rec := httptest.NewRecorder()

	env.Public.Category(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// --------------------------------------------------------------------------
// Search
// --------------------------------------------------------------------------

// TestSearch_DiacriticFreeKeyword verifies the keyword matches the
// diacritic-free search name, and that search results are never cached.
func TestSearch_DiacriticFreeKeyword(t *testing.T) {
	env := newTestEnv(t)
	snapshotFixture(env)
	ctx := context.Background()
	env.PageCache.InvalidateAll(ctx)

	req := httptest.NewRequest(http.MethodGet, "/tim-kiem?q=oshin", nil)
	rec := httptest.NewRecorder()

	env.Public.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Oshin 20WP") {
		t.Error("matching product missing from results")
	}
	if strings.Contains(body, "Đạm Cà Mau 50kg") {
		t.Error("non-matching product should not appear")
	}

	keys, _ := env.Valkey.Keys(ctx, "page:*").Result()
	if len(keys) != 0 {
		t.Errorf("search must not write page cache entries, found %v", keys)
	}
}

func TestSearch_EmptyQueryListsAll(t *testing.T) {
	env := newTestEnv(t)
	snapshotFixture(env)

	req := httptest.NewRequest(http.MethodGet, "/tim-kiem?q=", nil)
	rec := httptest.NewRecorder()

	env.Public.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Đạm Cà Mau 50kg") || !strings.Contains(body, "Oshin 20WP") {
		t.Error("empty query should list every product")
	}
}
