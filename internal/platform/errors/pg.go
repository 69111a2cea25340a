package errors

import (
	"context"
	stderrs "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE values the registry reacts to
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
	pgRightTruncation     = "22001"
	pgInvalidText         = "22P02"
	pgSerialization       = "40001"
	pgDeadlock            = "40P01"
	pgLockNotAvailable    = "55P03"
	pgReadOnlyTx          = "25006"
	pgCannotConnectNow    = "57P03"
)

// pgCodes maps SQLSTATE to ErrorCode; unknown states are ErrorCodeDB
var pgCodes = map[string]ErrorCode{
	pgUniqueViolation:     ErrorCodeDuplicateKey,
	pgForeignKeyViolation: ErrorCodeInvalidArgument,
	pgNotNullViolation:    ErrorCodeValidation,
	pgCheckViolation:      ErrorCodeValidation,
	pgRightTruncation:     ErrorCodeInvalidArgument,
	pgInvalidText:         ErrorCodeInvalidArgument,
	pgReadOnlyTx:          ErrorCodeUnavailable,
	pgCannotConnectNow:    ErrorCodeUnavailable,
}

// ExtractPgError finds a *pgconn.PgError at the root of err
func ExtractPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if stderrs.As(Root(err), &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsSQLState reports whether err is a postgres error with SQLSTATE code
func IsSQLState(err error, code string) bool {
	pgErr, ok := ExtractPgError(err)
	return ok && pgErr.Code == code
}

// DBErrorCode classifies a postgres error; ok is false when err carries no PgError
func DBErrorCode(err error) (ErrorCode, bool) {
	var pgErr *pgconn.PgError
	if !stderrs.As(err, &pgErr) {
		return ErrorCodeUnknown, false
	}
	if c, ok := pgCodes[pgErr.Code]; ok {
		return c, true
	}
	return ErrorCodeDB, true
}

// FromPostgres codes err by its SQLSTATE, ErrorCodeDB when there is none
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, ok := DBErrorCode(err)
	if !ok {
		code = ErrorCodeDB
	}
	return Wrap(err, code, msg)
}

// retryText is driver output for contention that carries no SQLSTATE
var retryText = []string{
	"commit unexpectedly resulted in rollback",
	"deadlock detected",
	"could not serialize access",
	"canceling statement due to lock timeout",
	"could not obtain lock on row",
	"terminating connection due to administrator command",
}

// IsRetryable reports contention worth another attempt
// caller cancellation and deadlines never are
func IsRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	root := Root(err)
	if pgErr, ok := ExtractPgError(root); ok {
		switch pgErr.Code {
		case pgSerialization, pgDeadlock, pgLockNotAvailable:
			return true
		}
		return false
	}
	s := strings.ToLower(root.Error())
	for _, t := range retryText {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
