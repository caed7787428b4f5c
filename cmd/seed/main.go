// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"costbook/internal/core/id"
	"costbook/internal/core/types"
	"costbook/internal/domain/catalogs/category"
	"costbook/internal/domain/records/entry"
	"costbook/internal/domain/records/purchase"
	"costbook/internal/infrastructure/storage/postgres"
	"costbook/internal/infrastructure/storage/postgres/record_repo"
	"costbook/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	adminID, err := seedAdminUser(ctx, pool, log)
	if err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log, adminID); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (id.ID, error) {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@costbook.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	var existingID id.ID
	err := pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return existingID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return id.Nil(), fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	_, err = pool.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name,
			is_active, is_admin, failed_login_attempts, version
		)
		VALUES ($1, $2, $3, 'System', 'Admin', true, true, 0, 1)
	`, userID, adminEmail, string(passwordHash))
	if err != nil {
		return id.Nil(), fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created",
		"email", adminEmail,
		"user_id", userID,
	)

	return userID, nil
}

// seedDemoData loads the demo ledger: catalogs plus the documented
// two-purchase, two-sale costing scenario spanning November to January.
// Replaying December alone should report cost 50; January alone about
// 83.33; both months combined about 133.33.
func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger, adminID id.ID) error {
	log.Info("seeding demo data...")

	// 1. Categories
	categories := []struct {
		code string
		name string
		kind category.Kind
	}{
		{"CT-SALES", "Sales", category.KindSale},
		{"CT-PURCH", "Inventory purchases", category.KindPurchase},
		{"CT-ADJST", "Adjustments", category.KindAdjustment},
		{"CT-OTHER", "Other", category.KindOther},
	}

	categoryIDs := make(map[string]id.ID)
	for _, c := range categories {
		cid, err := upsertCatalogRow(ctx, pool, `
			INSERT INTO categories (id, code, name, kind, version, deletion_mark)
			VALUES ($1, $2, $3, $4, 1, false)
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, "categories", c.code, c.name, string(c.kind))
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.code, err)
		}
		categoryIDs[c.code] = cid
	}

	// 2. Product
	productID, err := upsertCatalogRow(ctx, pool, `
		INSERT INTO products (id, code, name, sku, unit_price, version, deletion_mark)
		VALUES ($1, $2, $3, 'WID-001', 3.00, 1, false)
		ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
	`, "products", "PR-WIDGET", "Widget")
	if err != nil {
		return fmt.Errorf("seed product: %w", err)
	}

	// 3. Account owned by the admin
	accountID, err := upsertCatalogRow(ctx, pool, `
		INSERT INTO accounts (id, code, name, owner_id, currency, version, deletion_mark)
		VALUES ($1, $2, $3, $4, 'USD', 1, false)
		ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
	`, "accounts", "AC-MAIN", "Main account", adminID)
	if err != nil {
		return fmt.Errorf("seed account: %w", err)
	}

	// Skip records when the ledger already has data for this account.
	var entryCount int
	if err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM entries WHERE account_id = $1`, accountID,
	).Scan(&entryCount); err != nil {
		return fmt.Errorf("count entries: %w", err)
	}
	if entryCount > 0 {
		log.Info("ledger already seeded, skipping records")
		return nil
	}

	txManager := postgres.NewTxManager(pool)
	creator := adminID.String()

	// 4. Purchases: 100 units at 1.00 in November, 100 at 2.00 in January
	nov := time.Date(2025, time.November, 15, 10, 0, 0, 0, time.UTC)
	jan := time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)

	purchases := []*purchase.Purchase{
		purchase.New(productID, decimal.NewFromInt(100), decimal.NewFromInt(100), nov),
		purchase.New(productID, decimal.NewFromInt(100), decimal.NewFromInt(200), jan),
	}
	for _, p := range purchases {
		p.CreatedBy = creator
		p.UpdatedBy = creator
	}
	if err := record_repo.NewPurchaseRepo(txManager).CreateMany(ctx, purchases); err != nil {
		return fmt.Errorf("seed purchases: %w", err)
	}

	// 5. Sales: 50 units at 3.00 in December, 50 more in January
	dec10 := time.Date(2025, time.December, 10, 12, 0, 0, 0, time.UTC)
	jan20 := time.Date(2026, time.January, 20, 12, 0, 0, 0, time.UTC)
	price := types.MustMoney("3.00")

	entries := []*entry.Entry{
		entry.New(accountID, categoryIDs["CT-SALES"], decimal.NewFromInt(50), price, dec10),
		entry.New(accountID, categoryIDs["CT-SALES"], decimal.NewFromInt(50), price, jan20),
	}
	for _, e := range entries {
		pid := productID
		e.ProductID = &pid
		e.CreatedBy = creator
		e.UpdatedBy = creator
	}
	if err := record_repo.NewEntryRepo(txManager).CreateMany(ctx, entries); err != nil {
		return fmt.Errorf("seed entries: %w", err)
	}

	log.Infow("demo data seeded",
		"account_id", accountID,
		"product_id", productID,
		"purchases", len(purchases),
		"entries", len(entries),
	)
	return nil
}

// upsertCatalogRow inserts a catalog row keyed by code, returning the
// existing row's ID when the code is already taken.
func upsertCatalogRow(ctx context.Context, pool *postgres.Pool, insertSQL, table, code string, args ...any) (id.ID, error) {
	rowID := id.New()

	insertArgs := append([]any{rowID, code}, args...)
	tag, err := pool.Exec(ctx, insertSQL, insertArgs...)
	if err != nil {
		return id.Nil(), err
	}
	if tag.RowsAffected() > 0 {
		return rowID, nil
	}

	err = pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT id FROM %s WHERE code = $1 AND deletion_mark = FALSE`, table),
		code,
	).Scan(&rowID)
	if err != nil {
		return id.Nil(), err
	}
	return rowID, nil
}
