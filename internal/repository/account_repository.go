package repository

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/controlfin/backend/internal/models"
)

type AccountRepository struct{}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{}
}

// FindByID returns nil without error when the account does not exist.
func (r *AccountRepository) FindByID(q Querier, id string) (*models.Account, error) {
	var account models.Account
	err := q.QueryRow(`
		SELECT id, name, user_login
		FROM accounts
		WHERE id = $1`, id).
		Scan(&account.ID, &account.Name, &account.UserLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) FindAllByOwner(q Querier, login string) ([]models.Account, error) {
	rows, err := q.Query(`
		SELECT id, name, user_login
		FROM accounts
		WHERE user_login = $1`, login)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(&account.ID, &account.Name, &account.UserLogin); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) Insert(q Querier, name, ownerLogin string) (*models.Account, error) {
	account := models.Account{
		ID:        uuid.NewString(),
		Name:      name,
		UserLogin: ownerLogin,
	}
	_, err := q.Exec(`
		INSERT INTO accounts (id, name, user_login)
		VALUES ($1, $2, $3)`,
		account.ID, account.Name, account.UserLogin)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) UpdateName(q Querier, id, name string) error {
	_, err := q.Exec(`
		UPDATE accounts
		SET name = $1
		WHERE id = $2`, name, id)
	return err
}

func (r *AccountRepository) DeleteByID(q Querier, id string) error {
	_, err := q.Exec(`
		DELETE FROM accounts
		WHERE id = $1`, id)
	return err
}

// CountEntries backs the delete guard: an account with associated
// entries cannot be removed.
func (r *AccountRepository) CountEntries(q Querier, accountID string) (int, error) {
	var count int
	err := q.QueryRow(`
		SELECT COUNT(*)
		FROM entries
		WHERE account_id = $1`, accountID).Scan(&count)
	return count, err
}
