package services

import (
	"github.com/controlfin/backend/internal/repository"
)

// OwnershipValidator confirms that an entity referenced by id exists
// and belongs to the authenticated caller. Every read-by-id, update,
// delete and state-toggle operation goes through it before touching
// the entity; list-all operations already filter by owner at the query
// level and creates have no existing id to validate.
type OwnershipValidator struct {
	users      *repository.UserRepository
	accounts   *repository.AccountRepository
	categories *repository.CategoryRepository
	entries    *repository.EntryRepository
}

func NewOwnershipValidator(users *repository.UserRepository, accounts *repository.AccountRepository,
	categories *repository.CategoryRepository, entries *repository.EntryRepository) *OwnershipValidator {
	return &OwnershipValidator{
		users:      users,
		accounts:   accounts,
		categories: categories,
		entries:    entries,
	}
}

func (v *OwnershipValidator) ValidateAccountOwner(q repository.Querier, accountID, userLogin string) error {
	account, err := v.accounts.FindByID(q, accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return NewNotFound("Conta não encontrada!")
	}

	user, err := v.users.FindByLogin(q, userLogin)
	if err != nil {
		return err
	}
	// A missing caller record counts as a mismatch, never a nil
	// dereference.
	if user == nil || account.UserLogin != user.Login {
		return NewForbidden("Conta não pertence ao usuário informado!")
	}
	return nil
}

func (v *OwnershipValidator) ValidateCategoryOwner(q repository.Querier, categoryID, userLogin string) error {
	category, err := v.categories.FindByID(q, categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return NewNotFound("Categoria não encontrada!")
	}

	user, err := v.users.FindByLogin(q, userLogin)
	if err != nil {
		return err
	}
	if user == nil || category.UserLogin != user.Login {
		return NewForbidden("Categoria não pertence ao usuário informado!")
	}
	return nil
}

// ValidateEntryOwner resolves the entry's owner through its account.
func (v *OwnershipValidator) ValidateEntryOwner(q repository.Querier, entryID, userLogin string) error {
	entry, err := v.entries.FindByID(q, entryID)
	if err != nil {
		return err
	}
	if entry == nil {
		return NewNotFound("Lançamento não encontrado!")
	}

	account, err := v.accounts.FindByID(q, entry.AccountID)
	if err != nil {
		return err
	}

	user, err := v.users.FindByLogin(q, userLogin)
	if err != nil {
		return err
	}
	if user == nil || account == nil || account.UserLogin != user.Login {
		return NewForbidden("Lançamento não pertence ao usuário informado!")
	}
	return nil
}
