// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Form input limits. Generous; they exist to keep obvious garbage out of
// the database, not to enforce business rules.
const (
	maxNameLen     = 200
	maxSlugLen     = 200
	maxEmailLen    = 254
	maxUsernameLen = 64
	minPasswordLen = 6
	maxRichTextLen = 50000
)

// validateRegistration returns the first problem with a registration
// form, or "" when the input is acceptable. Duplicate checks happen in
// the handler; this only covers shape.
func validateRegistration(email, username, password string) string {
	if email == "" {
		return "Vui lòng nhập email."
	}
	if utf8.RuneCountInString(email) > maxEmailLen || !strings.Contains(email, "@") {
		return "Email không hợp lệ."
	}
	if username == "" {
		return "Vui lòng nhập tên đăng nhập."
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return "Tên đăng nhập quá dài."
	}
	if strings.ContainsAny(username, " @") {
		return "Tên đăng nhập không được chứa khoảng trắng hoặc ký tự @."
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return "Mật khẩu phải có ít nhất 6 ký tự."
	}
	return ""
}

// validateCategory checks a category form. Slug may be empty (it is then
// derived from the name).
func validateCategory(name, slugValue string) string {
	if strings.TrimSpace(name) == "" {
		return "Vui lòng nhập tên danh mục."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Tên danh mục quá dài."
	}
	if utf8.RuneCountInString(slugValue) > maxSlugLen {
		return "Đường dẫn quá dài."
	}
	return ""
}

// validateProduct checks the product form fields that have hard
// requirements: name, a parseable non-negative price, and sane rich
// text sizes.
func validateProduct(name, price string, richText map[string]string) string {
	if strings.TrimSpace(name) == "" {
		return "Vui lòng nhập tên sản phẩm."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Tên sản phẩm quá dài."
	}
	d, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return "Giá không hợp lệ."
	}
	if d.IsNegative() {
		return "Giá không được âm."
	}
	for field, value := range richText {
		if utf8.RuneCountInString(value) > maxRichTextLen {
			return "Nội dung mô tả quá dài (" + field + ")."
		}
	}
	return ""
}
