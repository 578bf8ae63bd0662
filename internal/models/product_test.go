// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"reflect"
	"testing"
)

func TestProductDisplayImage(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		want    string
	}{
		{
			name:    "thumbnail wins",
			product: Product{Thumbnail: "/img/thumb.webp", Images: []string{"/img/a.webp"}},
			want:    "/img/thumb.webp",
		},
		{
			name:    "first gallery image when no thumbnail",
			product: Product{Images: []string{"/img/a.webp", "/img/b.webp"}},
			want:    "/img/a.webp",
		},
		{
			name:    "blank gallery entries skipped",
			product: Product{Images: []string{"", "/img/b.webp"}},
			want:    "/img/b.webp",
		},
		{
			name:    "placeholder when nothing set",
			product: Product{},
			want:    PlaceholderImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.product.DisplayImage(); got != tt.want {
				t.Errorf("DisplayImage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProductGalleryImages(t *testing.T) {
	p := Product{
		Thumbnail: "/img/thumb.webp",
		Images:    []string{"/img/a.webp", "", "/img/b.webp"},
	}

	want := []string{"/img/thumb.webp", "/img/a.webp", "/img/b.webp"}
	if got := p.GalleryImages(); !reflect.DeepEqual(got, want) {
		t.Errorf("GalleryImages() = %v, want %v", got, want)
	}

	empty := Product{}
	if got := empty.GalleryImages(); len(got) != 0 {
		t.Errorf("GalleryImages() on empty product = %v, want none", got)
	}
}

func TestProductInCategory(t *testing.T) {
	p := Product{CategoryIDs: []string{"phan-bon", "phan-npk"}}

	if !p.InCategory("phan-bon") {
		t.Error("expected membership in parent category")
	}
	if !p.InCategory("phan-npk") {
		t.Error("expected membership in child category")
	}
	// Exact membership only — no ancestor matching.
	if p.InCategory("thuoc-bvtv") {
		t.Error("unexpected membership in unrelated category")
	}
}

func TestUserDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"full name", User{FirstName: "Tư", LastName: "Hồ", Username: "tuho"}, "Tư Hồ"},
		{"first only", User{FirstName: "Tư", Username: "tuho"}, "Tư"},
		{"username fallback", User{Username: "tuho"}, "tuho"},
		{"whitespace names fall back", User{FirstName: "  ", LastName: " ", Username: "tuho"}, "tuho"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserNeeds2FASetup(t *testing.T) {
	admin := User{Role: RoleAdmin}
	if !admin.Needs2FASetup() {
		t.Error("admin without TOTP should need setup")
	}
	admin.TOTPEnabled = true
	if admin.Needs2FASetup() {
		t.Error("enrolled admin should not need setup")
	}
	customer := User{Role: RoleUser}
	if customer.Needs2FASetup() {
		t.Error("customers never need 2FA setup")
	}
}
