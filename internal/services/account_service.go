package services

import (
	"database/sql"

	"github.com/controlfin/backend/internal/models"
	"github.com/controlfin/backend/internal/repository"
)

type AccountService struct {
	db        *sql.DB
	accounts  *repository.AccountRepository
	users     *repository.UserRepository
	ownership *OwnershipValidator
}

// AccountRequest carries the mutable account fields.
type AccountRequest struct {
	Name string `json:"name" validate:"required" example:"Conta Corrente"`
}

func NewAccountService(db *sql.DB, accounts *repository.AccountRepository,
	users *repository.UserRepository, ownership *OwnershipValidator) *AccountService {
	return &AccountService{
		db:        db,
		accounts:  accounts,
		users:     users,
		ownership: ownership,
	}
}

func (s *AccountService) ListAll(userLogin string) ([]models.Account, error) {
	return s.accounts.FindAllByOwner(s.db, userLogin)
}

func (s *AccountService) GetByID(accountID, userLogin string) (*models.Account, error) {
	if err := s.ownership.ValidateAccountOwner(s.db, accountID, userLogin); err != nil {
		return nil, err
	}
	return s.accounts.FindByID(s.db, accountID)
}

func (s *AccountService) Create(req AccountRequest, userLogin string) (*models.Account, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.validateUniqueName(tx, req.Name, userLogin); err != nil {
		return nil, err
	}

	user, err := s.users.FindByLogin(tx, userLogin)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, NewForbidden("Usuário informado não encontrado!")
	}

	account, err := s.accounts.Insert(tx, req.Name, user.Login)
	if err != nil {
		return nil, err
	}
	return account, tx.Commit()
}

func (s *AccountService) Update(accountID string, req AccountRequest, userLogin string) (*models.Account, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.ownership.ValidateAccountOwner(tx, accountID, userLogin); err != nil {
		return nil, err
	}

	// The collision set does not exclude the account being renamed, so
	// renaming to any name already in use, including its own, fails.
	if err := s.validateUniqueName(tx, req.Name, userLogin); err != nil {
		return nil, err
	}

	account, err := s.accounts.FindByID(tx, accountID)
	if err != nil {
		return nil, err
	}
	account.Name = req.Name
	if err := s.accounts.UpdateName(tx, account.ID, account.Name); err != nil {
		return nil, err
	}
	return account, tx.Commit()
}

func (s *AccountService) Delete(accountID, userLogin string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.ownership.ValidateAccountOwner(tx, accountID, userLogin); err != nil {
		return err
	}

	count, err := s.accounts.CountEntries(tx, accountID)
	if err != nil {
		return err
	}
	if count > 0 {
		return NewConflict("Não é possível remover essa conta, pois ela possui lançamentos associados.")
	}

	if err := s.accounts.DeleteByID(tx, accountID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *AccountService) validateUniqueName(q repository.Querier, name, userLogin string) error {
	accounts, err := s.accounts.FindAllByOwner(q, userLogin)
	if err != nil {
		return err
	}
	for _, account := range accounts {
		if account.Name == name {
			return NewConflict("Conta com nome informado já existente.")
		}
	}
	return nil
}
