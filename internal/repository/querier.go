package repository

import "database/sql"

// Querier is satisfied by both *sql.DB and *sql.Tx, so a service can
// run repository calls inside the transaction it controls.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}
