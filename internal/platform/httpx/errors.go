// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrDuplicate  = errors.New("duplicate entry")
	ErrValidation = errors.New("validation failed")
)

// Postgres error classes surfaced to callers as distinct categories.
const (
	pgUniqueViolation  = "23505"
	pgNotNullViolation = "23502"
	pgInvalidTextRep   = "22P02"
)

// ClassifyPG maps a store-reported constraint violation onto the domain
// taxonomy. Errors outside the known classes are returned unchanged.
func ClassifyPG(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return errors.Join(ErrDuplicate, err)
	case pgNotNullViolation, pgInvalidTextRep:
		return errors.Join(ErrValidation, err)
	}
	return err
}

// PGDetail extracts the store's detail string for a constraint violation,
// falling back to the error message.
func PGDetail(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Detail != "" {
			return pgErr.Detail
		}
		return pgErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", PGDetail(err))
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
