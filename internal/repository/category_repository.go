package repository

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/controlfin/backend/internal/models"
)

type CategoryRepository struct{}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{}
}

// FindByID returns nil without error when the category does not exist.
func (r *CategoryRepository) FindByID(q Querier, id string) (*models.Category, error) {
	var category models.Category
	err := q.QueryRow(`
		SELECT id, name, user_login
		FROM categories
		WHERE id = $1`, id).
		Scan(&category.ID, &category.Name, &category.UserLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) FindAllByOwner(q Querier, login string) ([]models.Category, error) {
	rows, err := q.Query(`
		SELECT id, name, user_login
		FROM categories
		WHERE user_login = $1`, login)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.UserLogin); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) Insert(q Querier, name, ownerLogin string) (*models.Category, error) {
	category := models.Category{
		ID:        uuid.NewString(),
		Name:      name,
		UserLogin: ownerLogin,
	}
	_, err := q.Exec(`
		INSERT INTO categories (id, name, user_login)
		VALUES ($1, $2, $3)`,
		category.ID, category.Name, category.UserLogin)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) UpdateName(q Querier, id, name string) error {
	_, err := q.Exec(`
		UPDATE categories
		SET name = $1
		WHERE id = $2`, name, id)
	return err
}

func (r *CategoryRepository) DeleteByID(q Querier, id string) error {
	_, err := q.Exec(`
		DELETE FROM categories
		WHERE id = $1`, id)
	return err
}

func (r *CategoryRepository) CountEntries(q Querier, categoryID string) (int, error) {
	var count int
	err := q.QueryRow(`
		SELECT COUNT(*)
		FROM entries
		WHERE category_id = $1`, categoryID).Scan(&count)
	return count, err
}
