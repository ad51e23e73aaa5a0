package service

import (
	"context"
	"strings"
	"time"

	"shareit/internal/apperror"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	repo   domain.Repository
	logger *zerolog.Logger
	now    func() time.Time
}

func NewItemService(repo domain.Repository, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

type CreateItemInput struct {
	Name        string
	Description string
	Available   bool
	RequestID   *int64
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, in CreateItemInput) (*models.ItemView, error) {
	item := &models.Item{
		Name:        in.Name,
		Description: in.Description,
		Available:   in.Available,
		OwnerID:     ownerID,
		RequestID:   in.RequestID,
	}

	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		if err := requireUser(ctx, repo, ownerID); err != nil {
			return err
		}
		if in.RequestID != nil {
			ok, err := repo.ItemRequestExists(ctx, *in.RequestID)
			if err != nil {
				return err
			}
			if !ok {
				return apperror.NotFound("Request with id %d not found", *in.RequestID)
			}
		}
		return repo.CreateItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("Item created")
	view := models.ToItemView(item, nil)
	return &view, nil
}

// Update applies a partial patch. Only the owner may change an item.
func (s *ItemService) Update(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.ItemView, error) {
	var view models.ItemView

	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		if err := requireUser(ctx, repo, ownerID); err != nil {
			return err
		}

		item, err := repo.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		if item.OwnerID != ownerID {
			return apperror.Forbidden("User %d is not the owner of item %d", ownerID, itemID)
		}

		patch.Apply(item)
		if err := repo.UpdateItem(ctx, item); err != nil {
			return err
		}

		views, err := buildItemViews(ctx, repo, []*models.Item{item}, true, s.now())
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

// Get returns an item with its comments. Last/next bookings are only filled in for the owner.
func (s *ItemService) Get(ctx context.Context, itemID, viewerID int64) (*models.ItemView, error) {
	var view models.ItemView

	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		if err := requireUser(ctx, repo, viewerID); err != nil {
			return err
		}
		item, err := repo.GetItem(ctx, itemID)
		if err != nil {
			return err
		}

		views, err := buildItemViews(ctx, repo, []*models.Item{item}, item.OwnerID == viewerID, s.now())
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

func (s *ItemService) ListByOwner(ctx context.Context, ownerID int64, page models.Page) ([]models.ItemView, error) {
	var views []models.ItemView

	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		if err := requireUser(ctx, repo, ownerID); err != nil {
			return err
		}
		items, err := repo.ListItemsByOwner(ctx, ownerID, page)
		if err != nil {
			return err
		}
		views, err = buildItemViews(ctx, repo, items, true, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// Search returns available items whose name or description contains text.
// Blank text yields an empty result without touching storage.
func (s *ItemService) Search(ctx context.Context, text string, page models.Page) ([]models.ItemView, error) {
	if strings.TrimSpace(text) == "" {
		return []models.ItemView{}, nil
	}

	var views []models.ItemView
	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		items, err := repo.SearchAvailableItems(ctx, text, page)
		if err != nil {
			return err
		}
		views, err = buildItemViews(ctx, repo, items, false, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// AddComment stores a comment from a user who has finished an approved booking of the item.
func (s *ItemService) AddComment(ctx context.Context, itemID, authorID int64, text string) (*models.CommentView, error) {
	var view models.CommentView

	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		author, err := repo.GetUser(ctx, authorID)
		if err != nil {
			return err
		}
		ok, err := repo.ItemExists(ctx, itemID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NotFound("Item with id %d not found", itemID)
		}

		now := s.now()
		finished, err := repo.HasFinishedApprovedBooking(ctx, itemID, authorID, now)
		if err != nil {
			return err
		}
		if !finished {
			return apperror.InvalidArgument("User %d has no completed booking of item %d", authorID, itemID)
		}

		comment := &models.Comment{Text: text, ItemID: itemID, AuthorID: authorID, Created: now}
		if err := repo.CreateComment(ctx, comment); err != nil {
			return err
		}
		view = models.ToCommentView(&models.CommentDetails{Comment: *comment, AuthorName: author.Name})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", itemID).Int64("author_id", authorID).Msg("Comment added")
	return &view, nil
}
