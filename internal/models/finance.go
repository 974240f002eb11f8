package models

import "time"

// Account is a named bucket a user tracks entries against. Entries
// reference it by id; the association is resolved by query, never held
// as an in-memory collection.
type Account struct {
	ID        string `json:"id" db:"id"`
	Name      string `json:"name" db:"name" example:"Conta Corrente"`
	UserLogin string `json:"-" db:"user_login"`
}

// Category is a named label for classifying entries.
type Category struct {
	ID        string `json:"id" db:"id"`
	Name      string `json:"name" db:"name" example:"Alimentação"`
	UserLogin string `json:"-" db:"user_login"`
}

// Entry is a single dated, valued ledger line tied to one Account and
// one Category. Amount is in cents. Ownership is derived through the
// Account.
type Entry struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name" example:"Pizza"`
	AccountID  string    `json:"account_id" db:"account_id"`
	CategoryID string    `json:"category_id" db:"category_id"`
	Date       time.Time `json:"date" db:"date"`
	Amount     int64     `json:"amount" db:"amount"` // in cents
	Paid       bool      `json:"paid" db:"paid"`
}

// EntryDetail is the read-only projection of an Entry with the account
// and category names denormalized for display.
type EntryDetail struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	AccountName  string    `json:"account_name" db:"account_name"`
	CategoryName string    `json:"category_name" db:"category_name"`
	Date         time.Time `json:"date" db:"date"`
	Amount       int64     `json:"amount" db:"amount"` // in cents
	Paid         bool      `json:"paid" db:"paid"`
}
