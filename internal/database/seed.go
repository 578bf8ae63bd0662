package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"agrimart/internal/slug"
)

// Seed populates the database with initial development data: a default
// admin user plus a small starter catalog so the storefront renders
// something on first boot. The admin will be prompted to set up 2FA on
// first login (totp_enabled = false). Seeding is skipped entirely when
// any users exist already.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	// Default admin. 2FA is not enabled — they must set it up on first
	// login.
	_, err = db.Exec(`
		INSERT INTO users (email, username, password_hash, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
	`, "admin@agrimart.local", "admin", string(hash), "admin", false)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	if err := seedCatalog(db); err != nil {
		return err
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@agrimart.local",
		"password", "admin",
	)

	return nil
}

// seedCatalog inserts a handful of root categories and one sample
// product per category.
func seedCatalog(db *sql.DB) error {
	categories := []struct {
		name, slug, description string
	}{
		{"Phân bón", "phan-bon", "Phân bón vô cơ và hữu cơ cho cây trồng"},
		{"Thuốc bảo vệ thực vật", "thuoc-bao-ve-thuc-vat", "Thuốc trừ sâu, trừ bệnh, trừ cỏ"},
		{"Hạt giống", "hat-giong", "Hạt giống rau màu và cây ăn trái"},
	}

	categoryIDs := make(map[string]string, len(categories))
	for _, c := range categories {
		id := uuid.NewString()
		_, err := db.Exec(`
			INSERT INTO categories (id, name, slug, description, is_active)
			VALUES ($1, $2, $3, $4, TRUE)
		`, id, c.name, c.slug, c.description)
		if err != nil {
			return fmt.Errorf("seed category %q: %w", c.name, err)
		}
		categoryIDs[c.slug] = id
	}

	products := []struct {
		id, name, category, shortDescription string
		price                                int64
	}{
		{"dam-ca-mau-50kg", "Đạm Cà Mau 50kg", "phan-bon", "Phân đạm hạt đục, bón thúc cho lúa và hoa màu.", 450000},
		{"oshin-20wp", "Oshin 20WP", "thuoc-bao-ve-thuc-vat", "Thuốc trừ rầy nâu hại lúa, gói 100g.", 35000},
		{"hat-giong-cai-xanh", "Hạt giống cải xanh", "hat-giong", "Gói 20g, tỷ lệ nảy mầm trên 85%.", 15000},
	}

	for _, p := range products {
		categoryJSON, err := json.Marshal([]string{categoryIDs[p.category]})
		if err != nil {
			return fmt.Errorf("seed encode categories: %w", err)
		}
		_, err = db.Exec(`
			INSERT INTO products (id, name, price, in_stock, category_ids,
				primary_category_id, images, short_description, search_name)
			VALUES ($1, $2, $3, TRUE, $4, $5, '[]', $6, $7)
		`, p.id, p.name, p.price, categoryJSON, categoryIDs[p.category],
			p.shortDescription, slug.SearchName(p.name))
		if err != nil {
			return fmt.Errorf("seed product %q: %w", p.name, err)
		}
	}

	return nil
}
