package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/koustreak/dbanalyser/internal/errs"
)

// MySQL error numbers
// Full list: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	errDBAccessDenied      = 1044
	errAccessDenied        = 1045
	errNoDatabaseSelected  = 1046
	errUnknownDatabase     = 1049
	errTooManyConnections  = 1040
	errTooManyUserConns    = 1203
	errBadField            = 1054
	errParse               = 1064
	errUnknownTable        = 1109
	errNoSuchTable         = 1146
	errTableAccessDenied   = 1142
	errColumnAccessDenied  = 1143
	errSpecificAccess      = 1227
	errQueryInterrupted    = 1317
	errProcAccessDenied    = 1370
	errMaxExecTimeExceeded = 3024
)

// mapError translates go-sql-driver/mysql errors into *errs.Error.
// A nil err maps to a nil error interface.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return errs.Wrap(
			classifyMySQLCode(mysqlErr.Number),
			fmt.Sprintf("%s: %s", msg, mysqlErr.Message),
			err,
		)
	}

	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

// classifyMySQLCode maps MySQL error numbers to ErrKind.
func classifyMySQLCode(code uint16) errs.ErrKind {
	switch code {
	case errDBAccessDenied, errAccessDenied, errTableAccessDenied,
		errColumnAccessDenied, errSpecificAccess, errProcAccessDenied:
		return errs.ErrKindPermissionDenied
	case errNoDatabaseSelected, errUnknownDatabase, errTooManyConnections, errTooManyUserConns:
		return errs.ErrKindConnectionFailed
	case errQueryInterrupted, errMaxExecTimeExceeded:
		return errs.ErrKindTimeout
	case errBadField, errParse, errUnknownTable, errNoSuchTable:
		return errs.ErrKindQueryFailed
	default:
		return errs.ErrKindQueryFailed
	}
}
