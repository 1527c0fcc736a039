// Package testutil provides testing utilities for the VaxStock backend.
// It includes a testcontainers PostgreSQL setup, account context helpers,
// mock factories, and common test fixtures.
package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance
type PostgresContainer struct {
	*postgres.PostgresContainer
	DSN string
}

// PostgresContainerConfig configures the test PostgreSQL container
type PostgresContainerConfig struct {
	Database string
	Username string
	Password string
	Image    string // Optional: defaults to postgres:15-alpine
}

// DefaultPostgresConfig returns sensible defaults for test containers
func DefaultPostgresConfig() PostgresContainerConfig {
	return PostgresContainerConfig{
		Database: "vaxstock_test",
		Username: "test",
		Password: "test",
		Image:    "postgres:15-alpine",
	}
}

// NewPostgresContainer creates a new PostgreSQL test container.
//
// Usage:
//
//	func TestMain(m *testing.M) {
//	    ctx := context.Background()
//	    container, err := testutil.NewPostgresContainer(ctx, testutil.DefaultPostgresConfig())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer container.Terminate(ctx)
//
//	    code := m.Run()
//	    os.Exit(code)
//	}
func NewPostgresContainer(ctx context.Context, cfg PostgresContainerConfig) (*PostgresContainer, error) {
	if cfg.Image == "" {
		cfg.Image = "postgres:15-alpine"
	}
	if cfg.Database == "" {
		cfg.Database = "vaxstock_test"
	}
	if cfg.Username == "" {
		cfg.Username = "test"
	}
	if cfg.Password == "" {
		cfg.Password = "test"
	}

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage(cfg.Image),
		postgres.WithDatabase(cfg.Database),
		postgres.WithUsername(cfg.Username),
		postgres.WithPassword(cfg.Password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	return &PostgresContainer{
		PostgresContainer: container,
		DSN:               dsn,
	}, nil
}

// Connect returns a sqlx.DB connection to the container
func (c *PostgresContainer) Connect(ctx context.Context) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", c.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}
	return db, nil
}

// Terminate stops and removes the container
func (c *PostgresContainer) Terminate(ctx context.Context) error {
	return c.PostgresContainer.Terminate(ctx)
}

// CreateSchema creates all tables used by the stock service.
// Kept in sync with the repository SQL by the integration tests themselves.
func (c *PostgresContainer) CreateSchema(ctx context.Context, db *sqlx.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS items (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			account_id UUID NOT NULL,
			name VARCHAR(255) NOT NULL,
			unit VARCHAR(50) NOT NULL DEFAULT '',
			dosage INT NOT NULL DEFAULT 1,
			manufacturer VARCHAR(255),
			position INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ,
			CONSTRAINT items_dosage_positive CHECK (dosage > 0)
		);

		CREATE TABLE IF NOT EXISTS item_monthly_configs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			account_id UUID NOT NULL,
			item_id UUID NOT NULL REFERENCES items(id) ON DELETE CASCADE,
			month_index INT NOT NULL,
			average_cost_cents BIGINT NOT NULL DEFAULT 0,
			min_stock INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT monthly_config_month_index_valid CHECK (month_index BETWEEN 0 AND 11),
			CONSTRAINT ux_monthly_config UNIQUE (account_id, item_id, month_index)
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			account_id UUID NOT NULL,
			request_name VARCHAR(255) NOT NULL,
			expected_date DATE,
			status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT orders_status_valid CHECK (status IN ('PENDING', 'RECEIVED'))
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			account_id UUID NOT NULL,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			item_id UUID NOT NULL REFERENCES items(id) ON DELETE CASCADE,
			quantity INT NOT NULL DEFAULT 0,
			unit_cost_cents BIGINT NOT NULL DEFAULT 0,
			actual_date DATE,
			batch_number VARCHAR(100),
			expiry_date DATE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT order_items_quantity_non_negative CHECK (quantity >= 0)
		);

		CREATE TABLE IF NOT EXISTS inventory_month_entries (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			account_id UUID NOT NULL,
			item_id UUID NOT NULL REFERENCES items(id) ON DELETE CASCADE,
			month_index INT NOT NULL,
			year INT NOT NULL,
			count_s1 INT,
			count_s2 INT,
			count_s3 INT,
			count_s4 INT,
			manual_initial_stock INT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT month_entry_month_index_valid CHECK (month_index BETWEEN 0 AND 11),
			CONSTRAINT ux_month_entry UNIQUE (account_id, item_id, month_index, year)
		);

		CREATE TABLE IF NOT EXISTS monthly_dates (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			account_id UUID NOT NULL,
			month_index INT NOT NULL,
			year INT NOT NULL,
			date_s1 DATE,
			date_s2 DATE,
			date_s3 DATE,
			date_s4 DATE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT monthly_dates_month_index_valid CHECK (month_index BETWEEN 0 AND 11),
			CONSTRAINT ux_monthly_dates UNIQUE (account_id, month_index, year)
		);

		CREATE TABLE IF NOT EXISTS monthly_production (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			account_id UUID NOT NULL,
			month_index INT NOT NULL,
			year INT NOT NULL,
			count INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT monthly_production_month_index_valid CHECK (month_index BETWEEN 0 AND 11),
			CONSTRAINT ux_monthly_production UNIQUE (account_id, month_index, year)
		);

		CREATE TABLE IF NOT EXISTS history_entries (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			account_id UUID NOT NULL,
			entry_type VARCHAR(50) NOT NULL,
			action VARCHAR(100) NOT NULL,
			details JSONB DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_items_account ON items(account_id);
		CREATE INDEX IF NOT EXISTS idx_orders_account ON orders(account_id);
		CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);
		CREATE INDEX IF NOT EXISTS idx_entries_account_year ON inventory_month_entries(account_id, year);
		CREATE INDEX IF NOT EXISTS idx_history_account ON history_entries(account_id, created_at DESC);
	`

	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// TruncateAll wipes all service tables between tests
func (c *PostgresContainer) TruncateAll(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		TRUNCATE history_entries, monthly_production, monthly_dates,
			inventory_month_entries, order_items, orders,
			item_monthly_configs, items CASCADE
	`)
	if err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	return nil
}
