// Package repository implements the tracker's persistence gateway on
// gorm + sqlite. Repositories translate port calls into queries and wrap
// every storage failure into the single database error kind; business
// rules live above, in the usecase layer.
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"sincelast/internal/apperr"
	"sincelast/internal/errs"
	"sincelast/internal/ports"
)

// dbFromContext prefers an in-flight transaction stored in ctx over the
// shared handle, so repository calls inside a unit of work join it.
func dbFromContext(ctx context.Context, base *gorm.DB) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return base.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

// storeErr re-signals a storage failure as the opaque database kind.
// Callers above this layer must not special-case engine errors.
func storeErr(err error, msg string) error {
	return apperr.Database(errs.Wrap(errs.WithStack(err), msg))
}
