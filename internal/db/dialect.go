package db

import (
	"strings"

	"gorm.io/gorm"
)

// Dialect names as reported by the GORM dialector.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// DialectName reports the dialect of an open connection.
func DialectName(conn *gorm.DB) string {
	if conn == nil || conn.Dialector == nil {
		return ""
	}
	return conn.Dialector.Name()
}

// IsSQLite reports whether conn is backed by SQLite.
func IsSQLite(conn *gorm.DB) bool {
	return DialectName(conn) == DialectSQLite
}

// CaseInsensitiveLikeExpr builds a case-insensitive LIKE clause for the
// given column. Postgres has ILIKE; SQLite needs both sides lowered, with
// NormalizeLikePattern handling the pattern side.
func CaseInsensitiveLikeExpr(conn *gorm.DB, column string) string {
	if IsSQLite(conn) {
		return "LOWER(" + column + ") LIKE ?"
	}
	return column + " ILIKE ?"
}

// NormalizeLikePattern prepares a LIKE pattern for use with
// CaseInsensitiveLikeExpr on the current dialect.
func NormalizeLikePattern(conn *gorm.DB, pattern string) string {
	if IsSQLite(conn) {
		return strings.ToLower(pattern)
	}
	return pattern
}
