package util

import (
	"database/sql"
	"strconv"
)

// NullStringPtr converts a *string to sql.NullString.
// Nil pointers are treated as invalid (null).
func NullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// NullStringToPtr converts sql.NullString to *string.
// Invalid values are returned as nil.
func NullStringToPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// NullUint64 stores a *uint64 as decimal text, since SQLite integers are
// signed 64-bit. Nil pointers are treated as invalid (null).
func NullUint64(u *uint64) sql.NullString {
	if u == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: strconv.FormatUint(*u, 10), Valid: true}
}

// NullStringToUint64 parses text written by NullUint64.
// Invalid or unparsable values are returned as nil.
func NullStringToUint64(ns sql.NullString) *uint64 {
	if !ns.Valid {
		return nil
	}
	u, err := strconv.ParseUint(ns.String, 10, 64)
	if err != nil {
		return nil
	}
	return &u
}
