// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"agrimart/internal/catalog"
	"agrimart/internal/middleware"
	"agrimart/internal/models"
	"agrimart/internal/render"
	"agrimart/internal/session"
	"agrimart/internal/store"
)

// Auth groups all authentication-related HTTP handlers. Customer accounts
// authenticate with password only; admin accounts additionally pass TOTP
// 2FA before the admin console opens.
type Auth struct {
	renderer    *render.Renderer
	sessions    *session.Store
	users       *store.UserStore
	catalogSess *catalog.Session
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions *session.Store, users *store.UserStore, catalogSess *catalog.Session) *Auth {
	return &Auth{
		renderer:    renderer,
		sessions:    sessions,
		users:       users,
		catalogSess: catalogSess,
	}
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	a.renderer.Site(w, r, "login", &render.PageData{
		Title: "Đăng nhập",
		Data:  map[string]any{},
	})
}

// LoginSubmit processes the login form. The identifier may be an email or
// a username.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	identifier := strings.TrimSpace(r.FormValue("identifier"))
	password := r.FormValue("password")

	fail := func(message string) {
		a.renderer.Site(w, r, "login", &render.PageData{
			Title: "Đăng nhập",
			Data: map[string]any{
				"Error":      message,
				"Identifier": identifier,
			},
		})
	}

	user, err := a.users.FindByIdentifier(r.Context(), identifier)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		fail("Đã có lỗi xảy ra. Vui lòng thử lại.")
		return
	}

	if user == nil || !a.users.CheckPassword(user, password) {
		fail("Thông tin đăng nhập không đúng.")
		return
	}

	// Customers are done after the password check; admins still owe a
	// TOTP code before TwoFADone flips.
	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		Username:    user.Username,
		DisplayName: user.DisplayName(),
		Role:        string(user.Role),
		TwoFADone:   !user.IsAdmin(),
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if !user.IsAdmin() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if user.Needs2FASetup() {
		http.Redirect(w, r, "/admin/2fa/setup", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/2fa/verify", http.StatusSeeOther)
}

// RegisterPage renders the customer registration form.
func (a *Auth) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	a.renderer.Site(w, r, "register", &render.PageData{
		Title: "Đăng ký",
		Data:  map[string]any{},
	})
}

// RegisterSubmit validates and creates a customer account, then signs the
// new user in.
func (a *Auth) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	form := map[string]string{
		"email":      strings.TrimSpace(r.FormValue("email")),
		"username":   strings.TrimSpace(r.FormValue("username")),
		"first_name": strings.TrimSpace(r.FormValue("first_name")),
		"last_name":  strings.TrimSpace(r.FormValue("last_name")),
		"address":    strings.TrimSpace(r.FormValue("address")),
		"phone":      strings.TrimSpace(r.FormValue("phone")),
	}
	password := r.FormValue("password")

	fail := func(message string) {
		a.renderer.Site(w, r, "register", &render.PageData{
			Title: "Đăng ký",
			Data: map[string]any{
				"Error": message,
				"Form":  form,
			},
		})
	}

	if msg := validateRegistration(form["email"], form["username"], password); msg != "" {
		fail(msg)
		return
	}

	// Duplicate checks with distinct messages, username first.
	existing, err := a.users.FindByUsername(r.Context(), form["username"])
	if err != nil {
		slog.Error("register username check failed", "error", err)
		fail("Đã có lỗi xảy ra. Vui lòng thử lại.")
		return
	}
	if existing != nil {
		fail("Tên đăng nhập đã được sử dụng.")
		return
	}

	existing, err = a.users.FindByEmail(r.Context(), form["email"])
	if err != nil {
		slog.Error("register email check failed", "error", err)
		fail("Đã có lỗi xảy ra. Vui lòng thử lại.")
		return
	}
	if existing != nil {
		fail("Email đã được đăng ký.")
		return
	}

	user, err := a.users.Create(r.Context(), &models.User{
		Email:      form["email"],
		Username:   form["username"],
		FirstName:  form["first_name"],
		LastName:   form["last_name"],
		Address:    form["address"],
		Phone:      form["phone"],
		AuthMethod: models.AuthMethodPassword,
		Role:       models.RoleUser,
	}, password)
	if err != nil {
		slog.Error("register create failed", "error", err)
		fail("Đã có lỗi xảy ra. Vui lòng thử lại.")
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		Username:    user.Username,
		DisplayName: user.DisplayName(),
		Role:        string(user.Role),
		TwoFADone:   true,
	}); err != nil {
		slog.Error("session create failed", "error", err)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout destroys the session, resets the hydration session so the next
// visit refreshes the catalog again, and redirects home.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	if a.catalogSess != nil {
		a.catalogSess.Reset()
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// TwoFASetupPage generates a TOTP secret and displays the QR code.
func (a *Auth) TwoFASetupPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "AgriMart",
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := a.users.SetTOTPSecret(r.Context(), sess.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.render2FASetup(w, r, key.URL(), key.Secret(), "")
}

// TwoFASetupSubmit validates the first TOTP code against the stored
// secret and completes enrollment.
func (a *Auth) TwoFASetupSubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	user, err := a.users.FindByID(r.Context(), sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if user.TOTPSecret == nil {
		http.Redirect(w, r, "/admin/2fa/setup", http.StatusSeeOther)
		return
	}

	if !totp.Validate(r.FormValue("code"), *user.TOTPSecret) {
		a.render2FASetup(w, r, otpauthURL(user.Email, *user.TOTPSecret), *user.TOTPSecret,
			"Mã không đúng. Vui lòng thử lại.")
		return
	}

	if err := a.users.EnableTOTP(r.Context(), user.ID); err != nil {
		slog.Error("enable totp failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// TwoFAVerifyPage renders the 2FA code entry form for enrolled admins.
func (a *Auth) TwoFAVerifyPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "2fa_verify", &render.PageData{
		Title: "Xác thực hai bước",
		Data:  map[string]any{},
	})
}

// TwoFAVerifySubmit validates the TOTP code and completes authentication.
func (a *Auth) TwoFAVerifySubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	user, err := a.users.FindByID(r.Context(), sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if user.TOTPSecret == nil || !user.TOTPEnabled {
		http.Redirect(w, r, "/admin/2fa/setup", http.StatusSeeOther)
		return
	}

	if !totp.Validate(r.FormValue("code"), *user.TOTPSecret) {
		a.renderer.Page(w, r, "2fa_verify", &render.PageData{
			Title: "Xác thực hai bước",
			Data:  map[string]any{"Error": "Mã không đúng. Vui lòng thử lại."},
		})
		return
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// render2FASetup renders the setup page with the QR code as an inline PNG.
func (a *Auth) render2FASetup(w http.ResponseWriter, r *http.Request, otpURL, secret, errMsg string) {
	qrPNG, err := qrcode.Encode(otpURL, qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := map[string]any{
		"QRCode": "data:image/png;base64," + base64.StdEncoding.EncodeToString(qrPNG),
		"Secret": secret,
	}
	if errMsg != "" {
		data["Error"] = errMsg
	}

	a.renderer.Page(w, r, "2fa_setup", &render.PageData{
		Title: "Thiết lập xác thực hai bước",
		Data:  data,
	})
}

// otpauthURL rebuilds the provisioning URL for an already stored secret.
func otpauthURL(email, secret string) string {
	return "otpauth://totp/AgriMart:" + email + "?secret=" + secret + "&issuer=AgriMart"
}
