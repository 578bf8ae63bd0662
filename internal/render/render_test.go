// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"agrimart/internal/models"
)

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "0₫"},
		{999, "999₫"},
		{1000, "1.000₫"},
		{35000, "35.000₫"},
		{450000, "450.000₫"},
		{1250000, "1.250.000₫"},
		{-15000, "-15.000₫"},
	}

	for _, tt := range tests {
		got := FormatPrice(decimal.NewFromInt(tt.amount))
		if got != tt.want {
			t.Errorf("FormatPrice(%d) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestRenderSiteHome(t *testing.T) {
	rn := testRenderer(t)
	req := httptest.NewRequest("GET", "/", nil)

	type section struct {
		Category models.Category
		Products []models.Product
	}

	html, err := rn.RenderSite(req, "home", &PageData{
		Title: "Trang chủ",
		Data: map[string]any{
			"Tree": []models.Category{{ID: "c1", Name: "Phân bón", Slug: "phan-bon", IsActive: true}},
			"Sections": []section{
				{
					Category: models.Category{ID: "c1", Name: "Phân bón", Slug: "phan-bon", IsActive: true},
					Products: []models.Product{
						{ID: "dam-ca-mau-50kg", Name: "Đạm Cà Mau 50kg", Price: decimal.NewFromInt(450000), InStock: true},
					},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("RenderSite: %v", err)
	}

	out := string(html)
	for _, want := range []string{
		"Đạm Cà Mau 50kg",
		"450.000₫",
		`href="/san-pham/dam-ca-mau-50kg"`,
		`href="/danh-muc/phan-bon"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("home output should contain %q", want)
		}
	}
}

func TestRenderSiteProductEscapesRichText(t *testing.T) {
	rn := testRenderer(t)
	req := httptest.NewRequest("GET", "/san-pham/x", nil)

	html, err := rn.RenderSite(req, "product", &PageData{
		Data: map[string]any{
			"Product": models.Product{
				ID:    "x",
				Name:  "Test",
				Price: decimal.NewFromInt(1000),
				Uses:  `Tốt cho lúa <script>alert("xss")</script>`,
			},
		},
	})
	if err != nil {
		t.Fatalf("RenderSite: %v", err)
	}

	out := string(html)
	if strings.Contains(out, "<script>alert") {
		t.Error("admin-entered rich text must not inject raw HTML")
	}
	if !strings.Contains(out, "Tốt cho lúa") {
		t.Error("rich text content missing from output")
	}
}

func TestRenderSiteUnknownTemplate(t *testing.T) {
	rn := testRenderer(t)
	req := httptest.NewRequest("GET", "/", nil)

	if _, err := rn.RenderSite(req, "nope", &PageData{}); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestPageFullAndHTMX(t *testing.T) {
	rn := testRenderer(t)

	data := func() *PageData {
		return &PageData{
			Title:   "Tổng quan",
			Section: "dashboard",
			Data: map[string]any{
				"CategoryCount": 3,
				"ProductCount":  12,
				"UserCount":     2,
			},
		}
	}

	// Full page load renders the complete layout.
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin", nil)
	rn.Page(w, req, "dashboard", data())
	body := w.Body.String()
	if !strings.Contains(body, "<!DOCTYPE html>") {
		t.Error("full page should include the base layout")
	}
	if !strings.Contains(body, "12") {
		t.Error("full page should include the dashboard counts")
	}

	// HTMX request renders only the content fragment.
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("HX-Request", "true")
	rn.Page(w, req, "dashboard", data())
	body = w.Body.String()
	if strings.Contains(body, "<!DOCTYPE html>") {
		t.Error("HTMX partial should not include the base layout")
	}
	if !strings.Contains(body, "12") {
		t.Error("HTMX partial should include the dashboard counts")
	}
}

func TestPageStandalone2FA(t *testing.T) {
	rn := testRenderer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/2fa/verify", nil)
	rn.Page(w, req, "2fa_verify", &PageData{Data: map[string]any{}})

	body := w.Body.String()
	if !strings.Contains(body, "<!DOCTYPE html>") {
		t.Error("standalone page should be a full HTML document")
	}
	if !strings.Contains(body, "/admin/2fa/verify") {
		t.Error("verify form should post back to the verify route")
	}
}
