package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/steve2482/simspeedserver/internal/model"
	"github.com/steve2482/simspeedserver/internal/repository"
)

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByUserName(ctx context.Context, userName string) (*model.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
}

type UserService struct {
	users      UserStore
	favorites  FavoriteStore
	bcryptCost int
}

func NewUserService(users UserStore, favorites FavoriteStore) *UserService {
	return &UserService{users: users, favorites: favorites, bcryptCost: bcrypt.DefaultCost}
}

// Register creates an account from an already validated request.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	email := strings.TrimSpace(req.Email)
	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrAccountExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		ID:               uuid.NewString(),
		Name:             strings.TrimSpace(req.Name),
		Email:            email,
		UserName:         strings.TrimSpace(req.UserName),
		PasswordHash:     string(hashed),
		FavoriteChannels: []string{},
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Authenticate checks credentials and returns the user with favorites.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, userName, password string) (*model.User, error) {
	u, err := s.users.FindByUserName(ctx, strings.TrimSpace(userName))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.withFavorites(ctx, u)
}

// Lookup returns a user by id with favorites.
func (s *UserService) Lookup(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return s.withFavorites(ctx, u)
}

func (s *UserService) withFavorites(ctx context.Context, u *model.User) (*model.User, error) {
	favs, err := s.favorites.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	u.FavoriteChannels = favs
	return u, nil
}
