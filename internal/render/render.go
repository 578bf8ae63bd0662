// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the storefront and
// the admin interface. Admin pages support full-page and HTMX partial
// rendering, detected via the HX-Request header. Storefront pages can be
// rendered to bytes so the page cache stores exactly what was sent.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"agrimart/internal/markdown"
	"agrimart/internal/middleware"
	"agrimart/internal/session"
)

//go:embed templates/admin/*.html templates/site/*.html
var templateFS embed.FS

// PageData holds all data passed to templates.
type PageData struct {
	Title     string         // Page title for <title> tag
	Section   string         // Active nav section (e.g., "dashboard", "products")
	Session   *session.Data  // Current user session (nil if unauthenticated)
	CSRFToken string         // CSRF token for forms and HTMX headers
	Data      map[string]any // Page-specific data
	Flashes   []Flash        // One-time notification messages
}

// Flash represents a one-time notification message displayed to the user.
type Flash struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// Renderer handles template parsing and execution.
type Renderer struct {
	admin map[string]*template.Template
	site  map[string]*template.Template
}

// standaloneTemplates lists admin templates that render as full HTML pages
// without the admin base layout (they have their own <html>, <head>, etc.).
var standaloneTemplates = map[string]bool{
	"2fa_setup":  true,
	"2fa_verify": true,
}

// New creates a Renderer by parsing all templates from the embedded
// filesystem. Each page template is paired with its section's base layout.
// When devMode is true, templates use CDN-hosted assets; when false, they
// reference compiled local static files.
func New(devMode bool) (*Renderer, error) {
	funcs := template.FuncMap{
		"activeClass": func(current, target string) string {
			if current == target {
				return "bg-green-800 text-white"
			}
			return "text-green-100 hover:bg-green-700 hover:text-white"
		},
		// deref safely dereferences a string pointer for use in templates.
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		// isDev returns true when the app runs in development mode.
		// Used by templates to conditionally load CDN vs local assets.
		"isDev": func() bool {
			return devMode
		},
		// catIndent returns a category name with non-breaking space indentation
		// based on depth. Used for hierarchical <select> dropdowns.
		"catIndent": func(depth int, name string) string {
			if depth == 0 {
				return name
			}
			return strings.Repeat("\u00A0\u00A0\u00A0\u00A0", depth) + name
		},
		// markdown renders admin-entered Markdown to HTML. Raw HTML in the
		// source is escaped by the converter, so marking the result safe
		// does not reopen injection.
		"markdown": func(source string) template.HTML {
			out, err := markdown.ToHTML(source)
			if err != nil {
				return ""
			}
			return template.HTML(out)
		},
		// price formats a VND amount with dot thousand separators,
		// e.g. 450000 -> "450.000₫".
		"price": FormatPrice,
		"contains": func(items []string, v string) bool {
			for _, item := range items {
				if item == v {
					return true
				}
			}
			return false
		},
	}

	r := &Renderer{
		admin: make(map[string]*template.Template),
		site:  make(map[string]*template.Template),
	}

	if err := r.parseDir("templates/admin", funcs, r.admin, standaloneTemplates); err != nil {
		return nil, err
	}
	if err := r.parseDir("templates/site", funcs, r.site, nil); err != nil {
		return nil, err
	}

	return r, nil
}

// parseDir parses every page template in dir, pairing it with the dir's
// base.html unless the template is standalone.
func (rn *Renderer) parseDir(dir string, funcs template.FuncMap, dst map[string]*template.Template, standalone map[string]bool) error {
	entries, err := templateFS.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read embedded templates %s: %w", dir, err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" {
			continue
		}

		tmplName := strings.TrimSuffix(name, ".html")

		var tmpl *template.Template
		var parseErr error
		if standalone[tmplName] {
			tmpl, parseErr = template.New(name).Funcs(funcs).ParseFS(templateFS, dir+"/"+name)
		} else {
			tmpl, parseErr = template.New("base.html").Funcs(funcs).ParseFS(
				templateFS, dir+"/base.html", dir+"/"+name,
			)
		}
		if parseErr != nil {
			return fmt.Errorf("parse template %s/%s: %w", dir, name, parseErr)
		}

		dst[tmplName] = tmpl
	}

	return nil
}

// Page renders a full admin page or an HTMX partial, depending on the
// request headers. For HTMX requests, only the "content" block is sent.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	tmpl, ok := rn.admin[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	rn.fill(r, data)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	// HTMX request: render only the content fragment.
	if isHTMX(r) {
		if err := executeTemplate(w, tmpl, "content", data); err != nil {
			http.Error(w, "template error", http.StatusInternalServerError)
		}
		return
	}

	execName := "base.html"
	if standaloneTemplates[name] {
		execName = name + ".html"
	}

	if err := executeTemplate(w, tmpl, execName, data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// Site renders a storefront page directly to the response.
func (rn *Renderer) Site(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	html, err := rn.RenderSite(r, name, data)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// RenderSite renders a storefront page to bytes so the caller can both
// send and cache the exact HTML.
func (rn *Renderer) RenderSite(r *http.Request, name string, data *PageData) ([]byte, error) {
	tmpl, ok := rn.site[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}

	rn.fill(r, data)

	var buf bytes.Buffer
	if err := executeTemplate(&buf, tmpl, "base.html", data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// fill injects the CSRF token and session from the request context when
// the caller has not set them.
func (rn *Renderer) fill(r *http.Request, data *PageData) {
	if data.CSRFToken == "" {
		data.CSRFToken = middleware.GetCSRFToken(r)
	}
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}
}

// FormatPrice renders a decimal VND amount with dot thousand separators.
func FormatPrice(d decimal.Decimal) string {
	whole := d.Truncate(0).String()
	neg := strings.HasPrefix(whole, "-")
	if neg {
		whole = whole[1:]
	}

	var b strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}

	out := b.String() + "₫"
	if neg {
		out = "-" + out
	}
	return out
}

// executeTemplate wraps template execution with error handling.
func executeTemplate(w io.Writer, tmpl *template.Template, name string, data any) error {
	return tmpl.ExecuteTemplate(w, name, data)
}

// isHTMX returns true if the request was made by HTMX (has HX-Request header).
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
