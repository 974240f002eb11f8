package services

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/controlfin/backend/internal/repository"
)

func setupAuthConfig() {
	viper.Set("argon2.salt_length", 16)
	viper.Set("argon2.time", 1)
	viper.Set("argon2.memory", 64*1024)
	viper.Set("argon2.threads", 4)
	viper.Set("argon2.key_length", 32)
	viper.Set("jwt.secret_key", "test-secret")
	viper.Set("jwt.expiry_hours", 2)
}

func TestAuthService_Register(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	setupAuthConfig()
	service := NewAuthService(db, nil, repository.NewUserRepository())

	t.Run("successful registration", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, login, password, role, created_at FROM users WHERE login = \\$1").
			WithArgs("maria").
			WillReturnRows(sqlmock.NewRows([]string{"id", "login", "password", "role", "created_at"}))
		mock.ExpectExec("INSERT INTO users").
			WithArgs(sqlmock.AnyArg(), "maria", sqlmock.AnyArg(), "USER", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		body, _ := json.Marshal(RegisterRequest{Login: "maria", Password: "password123", Role: "USER"})
		r := httptest.NewRequest("POST", "/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.Register(w, r)

		assert.Equal(t, http.StatusCreated, w.Code)
		var response map[string]string
		json.Unmarshal(w.Body.Bytes(), &response)
		assert.Equal(t, "maria", response["login"])
		assert.Equal(t, "USER", response["role"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("login already taken", func(t *testing.T) {
		expectUserRow(mock, "maria")

		body, _ := json.Marshal(RegisterRequest{Login: "maria", Password: "password123", Role: "USER"})
		r := httptest.NewRequest("POST", "/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.Register(w, r)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "Usuário já existente.")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid request body", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/auth/register", bytes.NewBuffer([]byte("invalid")))
		w := httptest.NewRecorder()

		service.Register(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid role", func(t *testing.T) {
		body, _ := json.Marshal(RegisterRequest{Login: "maria", Password: "password123", Role: "ROOT"})
		r := httptest.NewRequest("POST", "/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.Register(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthService_Login(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	setupAuthConfig()
	service := NewAuthService(db, nil, repository.NewUserRepository())

	t.Run("successful login", func(t *testing.T) {
		hashedPassword, err := hashPassword("password123")
		assert.NoError(t, err)

		mock.ExpectQuery("SELECT id, login, password, role, created_at FROM users WHERE login = \\$1").
			WithArgs("maria").
			WillReturnRows(sqlmock.NewRows([]string{"id", "login", "password", "role", "created_at"}).
				AddRow("user-1", "maria", hashedPassword, "USER", time.Now()))

		body, _ := json.Marshal(LoginRequest{Login: "maria", Password: "password123"})
		r := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.Login(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		var response LoginResponse
		json.Unmarshal(w.Body.Bytes(), &response)
		assert.NotEmpty(t, response.Token)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wrong password", func(t *testing.T) {
		hashedPassword, err := hashPassword("password123")
		assert.NoError(t, err)

		mock.ExpectQuery("SELECT id, login, password, role, created_at FROM users WHERE login = \\$1").
			WithArgs("maria").
			WillReturnRows(sqlmock.NewRows([]string{"id", "login", "password", "role", "created_at"}).
				AddRow("user-1", "maria", hashedPassword, "USER", time.Now()))

		body, _ := json.Marshal(LoginRequest{Login: "maria", Password: "wrong-password"})
		r := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.Login(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown login", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, login, password, role, created_at FROM users WHERE login = \\$1").
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows([]string{"id", "login", "password", "role", "created_at"}))

		body, _ := json.Marshal(LoginRequest{Login: "ghost", Password: "password123"})
		r := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.Login(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAuthService_Logout(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	setupAuthConfig()
	service := NewAuthService(db, nil, repository.NewUserRepository())

	t.Run("logout succeeds without redis", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/auth/logout", nil)
		r.Header.Set("Authorization", "Bearer some-token")
		w := httptest.NewRecorder()

		service.Logout(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Logout successful")
	})
}

func TestPasswordHashing(t *testing.T) {
	setupAuthConfig()

	hashed, err := hashPassword("password123")
	assert.NoError(t, err)
	assert.NotEqual(t, "password123", hashed)

	assert.True(t, verifyPassword("password123", hashed))
	assert.False(t, verifyPassword("wrong-password", hashed))
	assert.False(t, verifyPassword("password123", "not-a-valid-hash"))
}
