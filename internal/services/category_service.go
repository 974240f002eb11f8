package services

import (
	"database/sql"

	"github.com/controlfin/backend/internal/models"
	"github.com/controlfin/backend/internal/repository"
)

type CategoryService struct {
	db         *sql.DB
	categories *repository.CategoryRepository
	users      *repository.UserRepository
	ownership  *OwnershipValidator
}

// CategoryRequest carries the mutable category fields.
type CategoryRequest struct {
	Name string `json:"name" validate:"required" example:"Alimentação"`
}

func NewCategoryService(db *sql.DB, categories *repository.CategoryRepository,
	users *repository.UserRepository, ownership *OwnershipValidator) *CategoryService {
	return &CategoryService{
		db:         db,
		categories: categories,
		users:      users,
		ownership:  ownership,
	}
}

func (s *CategoryService) ListAll(userLogin string) ([]models.Category, error) {
	return s.categories.FindAllByOwner(s.db, userLogin)
}

func (s *CategoryService) GetByID(categoryID, userLogin string) (*models.Category, error) {
	if err := s.ownership.ValidateCategoryOwner(s.db, categoryID, userLogin); err != nil {
		return nil, err
	}
	return s.categories.FindByID(s.db, categoryID)
}

func (s *CategoryService) Create(req CategoryRequest, userLogin string) (*models.Category, error) {
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

	category, err := s.categories.Insert(tx, req.Name, user.Login)
	if err != nil {
		return nil, err
	}
	return category, tx.Commit()
}

func (s *CategoryService) Update(categoryID string, req CategoryRequest, userLogin string) (*models.Category, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.ownership.ValidateCategoryOwner(tx, categoryID, userLogin); err != nil {
		return nil, err
	}

	// Same collision semantics as AccountService.Update: the category
	// being renamed is not excluded from its own collision set.
	if err := s.validateUniqueName(tx, req.Name, userLogin); err != nil {
		return nil, err
	}

	category, err := s.categories.FindByID(tx, categoryID)
	if err != nil {
		return nil, err
	}
	category.Name = req.Name
	if err := s.categories.UpdateName(tx, category.ID, category.Name); err != nil {
		return nil, err
	}
	return category, tx.Commit()
}

func (s *CategoryService) Delete(categoryID, userLogin string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.ownership.ValidateCategoryOwner(tx, categoryID, userLogin); err != nil {
		return err
	}

	count, err := s.categories.CountEntries(tx, categoryID)
	if err != nil {
		return err
	}
	if count > 0 {
		return NewConflict("Não é possível remover essa categoria, pois ela possui lançamentos associados.")
	}

	if err := s.categories.DeleteByID(tx, categoryID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *CategoryService) validateUniqueName(q repository.Querier, name, userLogin string) error {
	categories, err := s.categories.FindAllByOwner(q, userLogin)
	if err != nil {
		return err
	}
	for _, category := range categories {
		if category.Name == name {
			return NewConflict("Categoria com nome informado já existente.")
		}
	}
	return nil
}
