// Package sqlite persists the export catalog: one row per export attempt
// with its session, destination path, point counts and outcome.
//
// The schema is owned by the embedded migrations directory and applied on
// Open. Writes retry while SQLite reports the database as busy.
package sqlite
