package service

import (
	"context"

	"shareit/internal/apperror"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewUserService(repo domain.Repository, logger *zerolog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

func userNotFound(id int64) error {
	return apperror.NotFound("User with id %d not found", id)
}

func (s *UserService) Create(ctx context.Context, name, email string) (*models.UserView, error) {
	user := &models.User{Name: name, Email: email}
	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		return repo.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("User created")
	view := models.ToUserView(user)
	return &view, nil
}

// Update applies a partial patch; absent fields keep their value.
func (s *UserService) Update(ctx context.Context, id int64, patch models.UserPatch) (*models.UserView, error) {
	var user *models.User
	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		u, err := repo.GetUser(ctx, id)
		if err != nil {
			return err
		}
		patch.Apply(u)
		if err := repo.UpdateUser(ctx, u); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := models.ToUserView(user)
	return &view, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.UserView, error) {
	var user *models.User
	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		u, err := repo.GetUser(ctx, id)
		user = u
		return err
	})
	if err != nil {
		return nil, err
	}

	view := models.ToUserView(user)
	return &view, nil
}

func (s *UserService) List(ctx context.Context) ([]models.UserView, error) {
	var users []*models.User
	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		found, err := repo.ListUsers(ctx)
		users = found
		return err
	})
	if err != nil {
		return nil, err
	}

	views := make([]models.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, models.ToUserView(u))
	}
	return views, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		return repo.DeleteUser(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info().Int64("user_id", id).Msg("User deleted")
	return nil
}
