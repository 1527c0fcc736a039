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

// Order statuses
const (
	StatusPending  = "PENDING"
	StatusReceived = "RECEIVED"
)

// Order is a purchase order with its lines.
type Order struct {
	ID           string      `db:"id" json:"id"`
	RequestName  string      `db:"request_name" json:"request_name"`
	ExpectedDate *time.Time  `db:"expected_date" json:"expected_date,omitempty"`
	Status       string      `db:"status" json:"status"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
	Items        []OrderItem `db:"-" json:"items"`
}

// OrderItem is one line of a purchase order. The receipt fields
// (ActualDate, BatchNumber, ExpiryDate) stay null until the order is
// received.
type OrderItem struct {
	ID            string     `db:"id" json:"id"`
	OrderID       string     `db:"order_id" json:"order_id"`
	ItemID        string     `db:"item_id" json:"item_id"`
	Quantity      int        `db:"quantity" json:"quantity"`
	UnitCostCents int64      `db:"unit_cost_cents" json:"unit_cost_cents"`
	ActualDate    *time.Time `db:"actual_date" json:"actual_date,omitempty"`
	BatchNumber   *string    `db:"batch_number" json:"batch_number,omitempty"`
	ExpiryDate    *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
}

// LineReceipt carries the receipt fields for one order line.
type LineReceipt struct {
	OrderItemID string
	ActualDate  time.Time
	BatchNumber *string
	ExpiryDate  *time.Time
}

// OrderRepository handles purchase order persistence
type OrderRepository struct {
	db *database.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *database.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts an order and its lines in one transaction
func (r *OrderRepository) Create(ctx context.Context, order *Order) error {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return err
	}

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.Status = StatusPending

	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO orders (id, account_id, request_name, expected_date, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at, updated_at
		`, order.ID, accountID, order.RequestName, order.ExpectedDate, order.Status,
		).Scan(&order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			if appErr := database.MapPQError(err); appErr != nil {
				return appErr
			}
			return err
		}

		for i := range order.Items {
			line := &order.Items[i]
			if line.ID == "" {
				line.ID = uuid.New().String()
			}
			line.OrderID = order.ID

			_, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (id, account_id, order_id, item_id, quantity, unit_cost_cents)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, line.ID, accountID, line.OrderID, line.ItemID, line.Quantity, line.UnitCostCents)
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

// GetByID gets an order with its lines
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*Order, error) {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return nil, err
	}

	var order Order
	err = r.db.GetContext(ctx, &order, `
		SELECT id, request_name, expected_date, status, created_at, updated_at
		FROM orders WHERE id = $1 AND account_id = $2
	`, id, accountID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("order")
	}
	if err != nil {
		return nil, err
	}

	order.Items = []OrderItem{}
	err = r.db.SelectContext(ctx, &order.Items, `
		SELECT id, order_id, item_id, quantity, unit_cost_cents, actual_date, batch_number, expiry_date
		FROM order_items WHERE order_id = $1 AND account_id = $2
		ORDER BY created_at
	`, id, accountID)
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// List returns all orders with their lines, newest first
func (r *OrderRepository) List(ctx context.Context) ([]*Order, error) {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return nil, err
	}

	orders := []*Order{}
	err = r.db.SelectContext(ctx, &orders, `
		SELECT id, request_name, expected_date, status, created_at, updated_at
		FROM orders WHERE account_id = $1
		ORDER BY created_at DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	byID := make(map[string]*Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		o.Items = []OrderItem{}
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	query, args, err := sqlx.In(`
		SELECT id, order_id, item_id, quantity, unit_cost_cents, actual_date, batch_number, expiry_date
		FROM order_items WHERE account_id = ? AND order_id IN (?)
		ORDER BY created_at
	`, accountID, ids)
	if err != nil {
		return nil, err
	}

	var lines []OrderItem
	if err := r.db.SelectContext(ctx, &lines, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, line := range lines {
		if o, ok := byID[line.OrderID]; ok {
			o.Items = append(o.Items, line)
		}
	}

	return orders, nil
}

// Update edits an order's request fields and replaces its lines.
// Only pending orders can be restructured.
func (r *OrderRepository) Update(ctx context.Context, order *Order) error {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return err
	}

	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		status, err := lockOrderStatus(ctx, tx, order.ID, accountID)
		if err != nil {
			return err
		}
		if status != StatusPending {
			return errors.Conflict("only pending orders can be edited")
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE orders SET request_name = $3, expected_date = $4, updated_at = NOW()
			WHERE id = $1 AND account_id = $2
		`, order.ID, accountID, order.RequestName, order.ExpectedDate)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`DELETE FROM order_items WHERE order_id = $1 AND account_id = $2`,
			order.ID, accountID)
		if err != nil {
			return err
		}

		for i := range order.Items {
			line := &order.Items[i]
			if line.ID == "" {
				line.ID = uuid.New().String()
			}
			line.OrderID = order.ID

			_, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (id, account_id, order_id, item_id, quantity, unit_cost_cents)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, line.ID, accountID, line.OrderID, line.ItemID, line.Quantity, line.UnitCostCents)
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

// Delete removes an order and its lines
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM orders WHERE id = $1 AND account_id = $2`, id, accountID)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("order")
	}

	return nil
}

// Receive marks a pending order as received and stamps the receipt
// fields on its lines, all in one transaction. Receiving an already
// received order is a conflict.
func (r *OrderRepository) Receive(ctx context.Context, orderID string, receipts []LineReceipt) error {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return err
	}

	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		status, err := lockOrderStatus(ctx, tx, orderID, accountID)
		if err != nil {
			return err
		}
		if status == StatusReceived {
			return errors.Conflict("order has already been received")
		}

		for _, receipt := range receipts {
			result, err := tx.ExecContext(ctx, `
				UPDATE order_items
				SET actual_date = $4, batch_number = $5, expiry_date = $6, updated_at = NOW()
				WHERE id = $1 AND order_id = $2 AND account_id = $3
			`, receipt.OrderItemID, orderID, accountID,
				receipt.ActualDate, receipt.BatchNumber, receipt.ExpiryDate)
			if err != nil {
				return err
			}
			affected, _ := result.RowsAffected()
			if affected == 0 {
				return errors.NotFound("order line")
			}
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE orders SET status = $3, updated_at = NOW()
			WHERE id = $1 AND account_id = $2
		`, orderID, accountID, StatusReceived)
		return err
	})
}

// UpdateReceipt edits the receipt fields of a received order's lines
// without touching the order status.
func (r *OrderRepository) UpdateReceipt(ctx context.Context, orderID string, receipts []LineReceipt) error {
	accountID, err := account.AccountID(ctx)
	if err != nil {
		return err
	}

	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		status, err := lockOrderStatus(ctx, tx, orderID, accountID)
		if err != nil {
			return err
		}
		if status != StatusReceived {
			return errors.Conflict("order has not been received yet")
		}

		for _, receipt := range receipts {
			result, err := tx.ExecContext(ctx, `
				UPDATE order_items
				SET actual_date = $4, batch_number = $5, expiry_date = $6, updated_at = NOW()
				WHERE id = $1 AND order_id = $2 AND account_id = $3
			`, receipt.OrderItemID, orderID, accountID,
				receipt.ActualDate, receipt.BatchNumber, receipt.ExpiryDate)
			if err != nil {
				return err
			}
			affected, _ := result.RowsAffected()
			if affected == 0 {
				return errors.NotFound("order line")
			}
		}

		return nil
	})
}

func lockOrderStatus(ctx context.Context, tx *sqlx.Tx, orderID, accountID string) (string, error) {
	var status string
	err := tx.QueryRowxContext(ctx,
		`SELECT status FROM orders WHERE id = $1 AND account_id = $2 FOR UPDATE`,
		orderID, accountID).Scan(&status)
	if err == sql.ErrNoRows {
		return "", errors.NotFound("order")
	}
	if err != nil {
		return "", err
	}
	return status, nil
}
