package repository

import (
	"context"
	"time"

	"github.com/vaxstock/vaxstock-backend/pkg/account"
	"github.com/vaxstock/vaxstock-backend/pkg/database"
	"github.com/vaxstock/vaxstock-backend/pkg/errors"
)

// MonthEntry holds the recorded stock counts of one item-month.
// CountS1..CountS4 are the checkpoint counts; null means not taken.
type MonthEntry struct {
	ID                 string    `db:"id" json:"id"`
	ItemID             string    `db:"item_id" json:"item_id"`
	MonthIndex         int       `db:"month_index" json:"month_index"`
	Year               int       `db:"year" json:"year"`
	CountS1            *int      `db:"count_s1" json:"count_s1,omitempty"`
	CountS2            *int      `db:"count_s2" json:"count_s2,omitempty"`
	CountS3            *int      `db:"count_s3" json:"count_s3,omitempty"`
	CountS4            *int      `db:"count_s4" json:"count_s4,omitempty"`
	ManualInitialStock *int      `db:"manual_initial_stock" json:"manual_initial_stock,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// MonthDates holds the checkpoint dates of one month. Null dates mean
// the checkpoint was not scheduled.
type MonthDates struct {
	ID         string     `db:"id" json:"id"`
	MonthIndex int        `db:"month_index" json:"month_index"`
	Year       int        `db:"year" json:"year"`
	DateS1     *time.Time `db:"date_s1" json:"date_s1,omitempty"`
	DateS2     *time.Time `db:"date_s2" json:"date_s2,omitempty"`
	DateS3     *time.Time `db:"date_s3" json:"date_s3,omitempty"`
	DateS4     *time.Time `db:"date_s4" json:"date_s4,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// MonthlyProduction is the facility's output count for one month,
// used for the cost-per-unit-produced report.
type MonthlyProduction struct {
	ID         string    `db:"id" json:"id"`
	MonthIndex int       `db:"month_index" json:"month_index"`
	Year       int       `db:"year" json:"year"`
	Count      int       `db:"count" json:"count"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// EntryRepository handles stock count, checkpoint date and production
// persistence
type EntryRepository struct {
	db *database.DB
}

// NewEntryRepository creates a new entry repository
func NewEntryRepository(db *database.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// UpsertEntry creates or replaces the stock count entry of an
// item-month.
func (r *EntryRepository) UpsertEntry(ctx context.Context, entry *MonthEntry) error {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO inventory_month_entries
			(account_id, item_id, month_index, year,
			 count_s1, count_s2, count_s3, count_s4, manual_initial_stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT ON CONSTRAINT ux_month_entry DO UPDATE SET
			count_s1 = EXCLUDED.count_s1,
			count_s2 = EXCLUDED.count_s2,
			count_s3 = EXCLUDED.count_s3,
			count_s4 = EXCLUDED.count_s4,
			manual_initial_stock = EXCLUDED.manual_initial_stock,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err = r.db.QueryRowxContext(ctx, query,
		accountID, entry.ItemID, entry.MonthIndex, entry.Year,
		entry.CountS1, entry.CountS2, entry.CountS3, entry.CountS4,
		entry.ManualInitialStock,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// ListEntries returns all entries of a year
func (r *EntryRepository) ListEntries(ctx context.Context, year int) ([]*MonthEntry, error) {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return nil, err
	}

	entries := []*MonthEntry{}
	query := `
		SELECT id, item_id, month_index, year,
		       count_s1, count_s2, count_s3, count_s4, manual_initial_stock,
		       created_at, updated_at
		FROM inventory_month_entries
		WHERE account_id = $1 AND year = $2
		ORDER BY item_id, month_index
	`
	if err := r.db.SelectContext(ctx, &entries, query, accountID, year); err != nil {
		return nil, err
	}

	return entries, nil
}

// UpsertDates creates or replaces the checkpoint dates of a month.
// Every set date must fall inside the month it belongs to.
func (r *EntryRepository) UpsertDates(ctx context.Context, dates *MonthDates) error {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return err
	}

	for _, d := range []*time.Time{dates.DateS1, dates.DateS2, dates.DateS3, dates.DateS4} {
		if d == nil {
			continue
		}
		if d.Year() != dates.Year || int(d.Month())-1 != dates.MonthIndex {
			return errors.BadRequest("checkpoint dates must fall inside their month")
		}
	}

	query := `
		INSERT INTO monthly_dates
			(account_id, month_index, year, date_s1, date_s2, date_s3, date_s4)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT ON CONSTRAINT ux_monthly_dates DO UPDATE SET
			date_s1 = EXCLUDED.date_s1,
			date_s2 = EXCLUDED.date_s2,
			date_s3 = EXCLUDED.date_s3,
			date_s4 = EXCLUDED.date_s4,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err = r.db.QueryRowxContext(ctx, query,
		accountID, dates.MonthIndex, dates.Year,
		dates.DateS1, dates.DateS2, dates.DateS3, dates.DateS4,
	).Scan(&dates.ID, &dates.CreatedAt, &dates.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// ListDates returns all checkpoint date rows of a year
func (r *EntryRepository) ListDates(ctx context.Context, year int) ([]*MonthDates, error) {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return nil, err
	}

	dates := []*MonthDates{}
	query := `
		SELECT id, month_index, year, date_s1, date_s2, date_s3, date_s4, created_at, updated_at
		FROM monthly_dates
		WHERE account_id = $1 AND year = $2
		ORDER BY month_index
	`
	if err := r.db.SelectContext(ctx, &dates, query, accountID, year); err != nil {
		return nil, err
	}

	return dates, nil
}

// UpsertProduction creates or replaces the production count of a month
func (r *EntryRepository) UpsertProduction(ctx context.Context, prod *MonthlyProduction) error {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO monthly_production (account_id, month_index, year, count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT ux_monthly_production DO UPDATE SET
			count = EXCLUDED.count,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err = r.db.QueryRowxContext(ctx, query,
		accountID, prod.MonthIndex, prod.Year, prod.Count,
	).Scan(&prod.ID, &prod.CreatedAt, &prod.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetProduction returns the production count of a month, or 0 when no
// row exists.
func (r *EntryRepository) GetProduction(ctx context.Context, monthIndex, year int) (int, error) {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return 0, err
	}

	var count int
	query := `
		SELECT COALESCE(
			(SELECT count FROM monthly_production
			 WHERE account_id = $1 AND month_index = $2 AND year = $3), 0)
	`
	if err := r.db.GetContext(ctx, &count, query, accountID, monthIndex, year); err != nil {
		return 0, err
	}

	return count, nil
}
