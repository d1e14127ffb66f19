package user

import (
	"database/sql"
	"errors"
	"strings"

	"expense_tracker/internal/auth"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrInvalidCredentials is returned for both unknown email and wrong
// password so the caller cannot tell which one failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

type UserService struct {
	repo UserRepositoryInterface
	db   *sql.DB
}

type UserServiceInterface interface {
	Signup(name, email, password, jwtSecret string) (*User, string, error)
	Login(email, password, jwtSecret string) (*User, string, error)
	GetUserByID(id string) (*User, error)
}

func NewUserService(repo UserRepositoryInterface, db *sql.DB) UserServiceInterface {
	return &UserService{
		repo: repo,
		db:   db,
	}
}

// Signup creates a credential record with a hashed password and issues a
// token for the new user. Input is assumed validated by the controller.
func (s *UserService) Signup(name, email, password, jwtSecret string) (*User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	// Pre-check keeps the common duplicate case off the unique index; the
	// index still backstops the race in Create.
	if existing, err := s.repo.GetByEmail(s.db, email); err == nil && existing != nil {
		return nil, "", ErrEmailTaken
	}

	hashedPassword, err := auth.GeneratePasswordHash(password)
	if err != nil {
		return nil, "", errors.New("failed to hash password")
	}

	user := &User{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: hashedPassword,
	}

	tx, err := s.db.Begin()
	if err != nil {
		logrus.WithError(err).Error("Failed to begin transaction")
		return nil, "", err
	}
	defer tx.Rollback()

	if err := s.repo.Create(tx, user); err != nil {
		return nil, "", err
	}

	if err := tx.Commit(); err != nil {
		logrus.WithError(err).Error("Failed to commit transaction")
		return nil, "", err
	}

	token, err := auth.GenerateToken(user.ID, user.Email, jwtSecret)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Login validates credentials and issues a token.
func (s *UserService) Login(email, password, jwtSecret string) (*User, string, error) {
	user, err := s.repo.GetByEmail(s.db, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := auth.ComparePasswordHash([]byte(user.Password), password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Email, jwtSecret)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// GetUserByID retrieves a user by id.
func (s *UserService) GetUserByID(id string) (*User, error) {
	return s.repo.GetByID(s.db, id)
}
