package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/procman/internal/common"
	"github.com/dmitrijs2005/procman/internal/server/auth"
	sc "github.com/dmitrijs2005/procman/internal/server/config"
	"github.com/dmitrijs2005/procman/internal/server/models"
	"github.com/dmitrijs2005/procman/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewUserService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config) *UserService {
	return &UserService{
		db:          db,
		repomanager: repomanager,
		config:      config,
	}
}

// Register creates a new account. The password is stored as a bcrypt hash.
// A taken username is reported as common.ErrorAlreadyExists and leaves the
// store untouched.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {

	repo := s.repomanager.Users(s.db)

	_, err := repo.GetByUsername(ctx, username)
	if err == nil {
		return nil, common.ErrorAlreadyExists
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}

	user, err = repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Authenticate returns the user only if the supplied password matches the
// stored hash. Unknown usernames and wrong passwords are both reported as
// common.ErrorUnauthorized, indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.ErrorUnauthorized
	}

	return user, nil
}

// IssueToken produces a bearer token whose subject is the user id.
func (s *UserService) IssueToken(user *models.User) (string, error) {
	return auth.GenerateToken(strconv.FormatInt(user.ID, 10), []byte(s.config.SecretKey), s.config.AccessTokenValidityDuration)
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}
