// Package repository implements the data access layer for the application.
package repository

import (
	"errors"
	"strings"

	"empleos/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// clampPage normalizes pagination input.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// uniqueViolation reports whether err is a unique constraint violation and,
// when the driver exposes it, the violated constraint or column list.
func uniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName, true
	}
	msg := strings.ToLower(err.Error())
	// SQLite: "UNIQUE constraint failed: companies.rut"
	if i := strings.Index(msg, "unique constraint failed:"); i >= 0 {
		return strings.TrimSpace(msg[i+len("unique constraint failed:"):]), true
	}
	if strings.Contains(msg, "duplicate key") || strings.Contains(msg, "23505") {
		return "", true
	}
	return "", false
}

func isUniqueConstraintError(err error) bool {
	_, ok := uniqueViolation(err)
	return ok
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFound AppError and wraps
// everything else as internal.
func notFoundOr(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return models.NewInternalError(err)
}

// internal wraps err unless it already is an AppError.
func internal(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return models.NewInternalError(err)
}

// lockForUpdate adds SELECT ... FOR UPDATE on dialects that support row
// locks. SQLite serializes writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// likePattern escapes LIKE wildcards and wraps term in %...%.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(strings.TrimSpace(term))) + "%"
}

func notFoundMessageOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundMessage(message)
	}
	return internal(err)
}
