package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/controlfin/backend/internal/models"
)

type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// FindByLogin returns nil without error when no user has the login.
func (r *UserRepository) FindByLogin(q Querier, login string) (*models.User, error) {
	var user models.User
	err := q.QueryRow(`
		SELECT id, login, password, role, created_at
		FROM users
		WHERE login = $1`, login).
		Scan(&user.ID, &user.Login, &user.Password, &user.Role, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Insert(q Querier, login, hashedPassword, role string) (*models.User, error) {
	user := models.User{
		ID:        uuid.NewString(),
		Login:     login,
		Password:  hashedPassword,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	_, err := q.Exec(`
		INSERT INTO users (id, login, password, role, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Login, user.Password, user.Role, user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
