package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/vaxstock/vaxstock-backend/pkg/account"
	"github.com/vaxstock/vaxstock-backend/pkg/database"
	"github.com/vaxstock/vaxstock-backend/pkg/errors"
)

// Item is a catalog entry: one vaccine or supply the facility tracks.
type Item struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Unit         string     `db:"unit" json:"unit"`
	Dosage       int        `db:"dosage" json:"dosage"`
	Manufacturer *string    `db:"manufacturer" json:"manufacturer,omitempty"`
	Position     int        `db:"position" json:"position"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at" json:"-"`
}

// MonthlyConfig holds the per-month pricing and threshold settings of an
// item. Twelve rows are seeded when the item is created.
type MonthlyConfig struct {
	ID               string    `db:"id" json:"id"`
	ItemID           string    `db:"item_id" json:"item_id"`
	MonthIndex       int       `db:"month_index" json:"month_index"`
	AverageCostCents int64     `db:"average_cost_cents" json:"average_cost_cents"`
	MinStock         int       `db:"min_stock" json:"min_stock"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

const itemColumns = `id, name, unit, dosage, manufacturer, position, created_at, updated_at`

// ItemRepository handles catalog item persistence
type ItemRepository struct {
	db *database.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *database.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create inserts an item at the end of the account's ordering and seeds
// its twelve monthly config rows in one transaction.
func (r *ItemRepository) Create(ctx context.Context, item *Item) error {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return err
	}

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.Dosage == 0 {
		item.Dosage = 1
	}

	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO items (id, account_id, name, unit, dosage, manufacturer, position)
			VALUES ($1, $2, $3, $4, $5, $6,
				(SELECT COALESCE(MAX(position), -1) + 1 FROM items
				 WHERE account_id = $2 AND deleted_at IS NULL))
			RETURNING position, created_at, updated_at
		`
		err := tx.QueryRowxContext(ctx, query,
			item.ID, accountID, item.Name, item.Unit, item.Dosage, item.Manufacturer,
		).Scan(&item.Position, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			if appErr := database.MapPQError(err); appErr != nil {
				return appErr
			}
			return err
		}

		for month := 0; month < 12; month++ {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO item_monthly_configs (account_id, item_id, month_index)
				VALUES ($1, $2, $3)
			`, accountID, item.ID, month)
			if err != nil {
				if appErr := database.MapPQError(err); appErr != nil {
					return appErr
				}
				return err
			}
		}

		return nil
	})
}

// GetByID gets an item by ID
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*Item, error) {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return nil, err
	}

	var item Item
	query := `SELECT ` + itemColumns + ` FROM items
		WHERE id = $1 AND account_id = $2 AND deleted_at IS NULL`
	err = r.db.GetContext(ctx, &item, query, id, accountID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("item")
	}
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// List returns all items in the operator-defined order
func (r *ItemRepository) List(ctx context.Context) ([]*Item, error) {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return nil, err
	}

	items := []*Item{}
	query := `SELECT ` + itemColumns + ` FROM items
		WHERE account_id = $1 AND deleted_at IS NULL
		ORDER BY position, created_at`
	if err := r.db.SelectContext(ctx, &items, query, accountID); err != nil {
		return nil, err
	}

	return items, nil
}

// Update updates an item's descriptive fields
func (r *ItemRepository) Update(ctx context.Context, item *Item) error {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return err
	}

	query := `
		UPDATE items SET name = $3, unit = $4, dosage = $5, manufacturer = $6, updated_at = NOW()
		WHERE id = $1 AND account_id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query,
		item.ID, accountID, item.Name, item.Unit, item.Dosage, item.Manufacturer)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("item")
	}

	return nil
}

// SoftDelete removes an item from the catalog. Its stock entries and
// order lines survive for historical chains; the engine drops dangling
// references on its own.
func (r *ItemRepository) SoftDelete(ctx context.Context, id string) error {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return err
	}

	query := `UPDATE items SET deleted_at = NOW()
		WHERE id = $1 AND account_id = $2 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id, accountID)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("item")
	}

	return nil
}

// Reorder rewrites the positions of all listed items to match the given
// order. Items not listed keep their positions.
func (r *ItemRepository) Reorder(ctx context.Context, ids []string) error {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return err
	}

	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		for pos, id := range ids {
			_, err := tx.ExecContext(ctx, `
				UPDATE items SET position = $3, updated_at = NOW()
				WHERE id = $1 AND account_id = $2 AND deleted_at IS NULL
			`, id, accountID, pos)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// GetConfigs returns the twelve monthly configs of an item
func (r *ItemRepository) GetConfigs(ctx context.Context, itemID string) ([]*MonthlyConfig, error) {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return nil, err
	}

	configs := []*MonthlyConfig{}
	query := `
		SELECT id, item_id, month_index, average_cost_cents, min_stock, created_at, updated_at
		FROM item_monthly_configs
		WHERE item_id = $1 AND account_id = $2
		ORDER BY month_index
	`
	if err := r.db.SelectContext(ctx, &configs, query, itemID, accountID); err != nil {
		return nil, err
	}

	return configs, nil
}

// UpdateConfig updates one item-month config
func (r *ItemRepository) UpdateConfig(ctx context.Context, itemID string, monthIndex int, averageCostCents int64, minStock int) (*MonthlyConfig, error) {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return nil, err
	}

	var cfg MonthlyConfig
	query := `
		UPDATE item_monthly_configs
		SET average_cost_cents = $4, min_stock = $5, updated_at = NOW()
		WHERE item_id = $1 AND account_id = $2 AND month_index = $3
		RETURNING id, item_id, month_index, average_cost_cents, min_stock, created_at, updated_at
	`
	err = r.db.QueryRowxContext(ctx, query,
		itemID, accountID, monthIndex, averageCostCents, minStock).StructScan(&cfg)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("monthly config")
	}
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return nil, appErr
		}
		return nil, err
	}

	return &cfg, nil
}

// ConfigsForMonth returns the month's config for every item, keyed by
// item ID. Used by the derived reports.
func (r *ItemRepository) ConfigsForMonth(ctx context.Context, monthIndex int) (map[string]*MonthlyConfig, error) {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return nil, err
	}

	var configs []*MonthlyConfig
	query := `
		SELECT c.id, c.item_id, c.month_index, c.average_cost_cents, c.min_stock, c.created_at, c.updated_at
		FROM item_monthly_configs c
		JOIN items i ON i.id = c.item_id
		WHERE c.account_id = $1 AND c.month_index = $2 AND i.deleted_at IS NULL
	`
	if err := r.db.SelectContext(ctx, &configs, query, accountID, monthIndex); err != nil {
		return nil, err
	}

	out := make(map[string]*MonthlyConfig, len(configs))
	for _, c := range configs {
		out[c.ItemID] = c
	}
	return out, nil
}
