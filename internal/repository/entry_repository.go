package repository

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/controlfin/backend/internal/models"
)

type EntryRepository struct{}

func NewEntryRepository() *EntryRepository {
	return &EntryRepository{}
}

// FindByID returns nil without error when the entry does not exist.
func (r *EntryRepository) FindByID(q Querier, id string) (*models.Entry, error) {
	var entry models.Entry
	err := q.QueryRow(`
		SELECT id, name, account_id, category_id, date, amount, paid
		FROM entries
		WHERE id = $1`, id).
		Scan(&entry.ID, &entry.Name, &entry.AccountID, &entry.CategoryID,
			&entry.Date, &entry.Amount, &entry.Paid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindAllByOwner resolves ownership through the entry's account.
func (r *EntryRepository) FindAllByOwner(q Querier, login string) ([]models.Entry, error) {
	rows, err := q.Query(`
		SELECT e.id, e.name, e.account_id, e.category_id, e.date, e.amount, e.paid
		FROM entries e
		JOIN accounts a ON e.account_id = a.id
		WHERE a.user_login = $1`, login)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		var entry models.Entry
		if err := rows.Scan(&entry.ID, &entry.Name, &entry.AccountID, &entry.CategoryID,
			&entry.Date, &entry.Amount, &entry.Paid); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// FindDetailedByOwner returns the display projection with account and
// category names joined in.
func (r *EntryRepository) FindDetailedByOwner(q Querier, login string) ([]models.EntryDetail, error) {
	rows, err := q.Query(`
		SELECT e.id, e.name, a.name AS account_name, c.name AS category_name, e.date, e.amount, e.paid
		FROM entries e
		JOIN accounts a ON e.account_id = a.id
		JOIN categories c ON e.category_id = c.id
		WHERE a.user_login = $1`, login)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := []models.EntryDetail{}
	for rows.Next() {
		var detail models.EntryDetail
		if err := rows.Scan(&detail.ID, &detail.Name, &detail.AccountName, &detail.CategoryName,
			&detail.Date, &detail.Amount, &detail.Paid); err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, rows.Err()
}

func (r *EntryRepository) Insert(q Querier, entry *models.Entry) (*models.Entry, error) {
	entry.ID = uuid.NewString()
	_, err := q.Exec(`
		INSERT INTO entries (id, name, account_id, category_id, date, amount, paid)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.Name, entry.AccountID, entry.CategoryID,
		entry.Date, entry.Amount, entry.Paid)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *EntryRepository) Update(q Querier, entry *models.Entry) error {
	_, err := q.Exec(`
		UPDATE entries
		SET name = $1, account_id = $2, category_id = $3, date = $4, amount = $5, paid = $6
		WHERE id = $7`,
		entry.Name, entry.AccountID, entry.CategoryID,
		entry.Date, entry.Amount, entry.Paid, entry.ID)
	return err
}

func (r *EntryRepository) SetPaid(q Querier, id string, paid bool) error {
	_, err := q.Exec(`
		UPDATE entries
		SET paid = $1
		WHERE id = $2`, paid, id)
	return err
}

func (r *EntryRepository) DeleteByID(q Querier, id string) error {
	_, err := q.Exec(`
		DELETE FROM entries
		WHERE id = $1`, id)
	return err
}
