package users

import (
	"context"
	"errors"
	"log/slog"

	"reviewhub/proj/internal/domain/filters"
	"reviewhub/proj/internal/domain/models"
	"reviewhub/proj/internal/storage"
)

type UsersStorage interface {
	Insert(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, search string, f filters.Filters) ([]models.User, int, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, username string) error
}

type UserService struct {
	log     *slog.Logger
	storage UsersStorage
}

func New(log *slog.Logger, storage UsersStorage) *UserService {
	return &UserService{log: log, storage: storage}
}

// UpdateParams carries a partial update; nil fields stay unchanged.
type UpdateParams struct {
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *string
}

func (s *UserService) List(ctx context.Context, search string, f filters.Filters) ([]models.User, int, error) {
	const op = "users.UserService.List"
	users, total, err := s.storage.List(ctx, search, f)
	if err != nil {
		s.log.With("op", op).Error(err.Error())
		return nil, 0, err
	}
	return users, total, nil
}

// Create is the administrative path: the user is active immediately, no
// confirmation code round-trip.
func (s *UserService) Create(ctx context.Context, user *models.User) (*models.User, error) {
	const op = "users.UserService.Create"
	log := s.log.With("op", op, "username", user.Username)
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	user.IsActive = true
	created, err := s.storage.Insert(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			log.Info("username or email already taken")
			return nil, ErrUserAlreadyExists
		}
		log.Error(err.Error())
		return nil, err
	}
	return created, nil
}

func (s *UserService) Get(ctx context.Context, username string) (*models.User, error) {
	const op = "users.UserService.Get"
	user, err := s.storage.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.log.With("op", op).Error(err.Error())
		return nil, err
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, username string, params UpdateParams) (*models.User, error) {
	const op = "users.UserService.Update"
	log := s.log.With("op", op, "username", username)
	user, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if params.Email != nil {
		user.Email = *params.Email
	}
	if params.FirstName != nil {
		user.FirstName = *params.FirstName
	}
	if params.LastName != nil {
		user.LastName = *params.LastName
	}
	if params.Bio != nil {
		user.Bio = *params.Bio
	}
	if params.Role != nil {
		if !models.IsValidRole(*params.Role) {
			return nil, ErrInvalidRole
		}
		user.Role = *params.Role
	}
	updated, err := s.storage.Update(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			return nil, ErrUserAlreadyExists
		case errors.Is(err, storage.ErrNotFound):
			return nil, ErrUserNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, username string) error {
	const op = "users.UserService.Delete"
	if err := s.storage.Delete(ctx, username); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUserNotFound
		}
		s.log.With("op", op).Error(err.Error())
		return err
	}
	return nil
}
