package service

import (
	"context"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type RequestService struct {
	repo   domain.Repository
	logger *zerolog.Logger
	now    func() time.Time
}

func NewRequestService(repo domain.Repository, logger *zerolog.Logger) *RequestService {
	return &RequestService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *RequestService) Create(ctx context.Context, userID int64, description string) (*models.ItemRequestView, error) {
	req := &models.ItemRequest{Description: description, RequestorID: userID, Created: s.now()}

	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		if err := requireUser(ctx, repo, userID); err != nil {
			return err
		}
		return repo.CreateItemRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("request_id", req.ID).Int64("requestor_id", userID).Msg("Item request created")
	view := models.ToItemRequestView(req, nil)
	return &view, nil
}

// ListOwn returns the user's requests, newest first, each with the items answering it.
func (s *RequestService) ListOwn(ctx context.Context, userID int64) ([]models.ItemRequestView, error) {
	var views []models.ItemRequestView
	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		if err := requireUser(ctx, repo, userID); err != nil {
			return err
		}
		reqs, err := repo.ListItemRequestsByRequestor(ctx, userID)
		if err != nil {
			return err
		}
		views, err = withItems(ctx, repo, reqs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// ListOthers pages through requests created by everyone except userID.
func (s *RequestService) ListOthers(ctx context.Context, userID int64, page models.Page) ([]models.ItemRequestView, error) {
	var views []models.ItemRequestView
	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		if err := requireUser(ctx, repo, userID); err != nil {
			return err
		}
		reqs, err := repo.ListItemRequestsExcept(ctx, userID, page)
		if err != nil {
			return err
		}
		views, err = withItems(ctx, repo, reqs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (s *RequestService) Get(ctx context.Context, requestID, userID int64) (*models.ItemRequestView, error) {
	var view models.ItemRequestView
	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		if err := requireUser(ctx, repo, userID); err != nil {
			return err
		}
		req, err := repo.GetItemRequest(ctx, requestID)
		if err != nil {
			return err
		}
		views, err := withItems(ctx, repo, []*models.ItemRequest{req})
		if err != nil {
			return err
		}
		view = views[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func withItems(ctx context.Context, repo domain.Repository, reqs []*models.ItemRequest) ([]models.ItemRequestView, error) {
	ids := make([]int64, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.ID)
	}

	items, err := repo.ListItemsByRequestIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.ItemRequestView, 0, len(reqs))
	for _, r := range reqs {
		views = append(views, models.ToItemRequestView(r, items[r.ID]))
	}
	return views, nil
}
