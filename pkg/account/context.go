// Package account carries the owning-account key through request contexts.
// Every record in the store belongs to exactly one account; repositories
// fail fast when the account is missing from context.
package account

import (
	"context"
	"errors"
)

type contextKey string

const accountIDKey contextKey = "account_id"

// ErrNoAccountInContext is returned when account context is missing
var ErrNoAccountInContext = errors.New("no account in context")

// WithAccountID adds the account ID to the context
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountIDKey, accountID)
}

// AccountID extracts the account ID from context.
// Returns ErrNoAccountInContext if it is not set.
func AccountID(ctx context.Context) (string, error) {
	id, ok := ctx.Value(accountIDKey).(string)
	if !ok || id == "" {
		return "", ErrNoAccountInContext
	}
	return id, nil
}

// MustAccountID extracts the account ID and panics if not found.
// Use only where a missing account is a programming error.
func MustAccountID(ctx context.Context) string {
	id, err := AccountID(ctx)
	if err != nil {
		panic("account ID not found in context")
	}
	return id
}
