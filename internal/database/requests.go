package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shareit/internal/apperror"
	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

const tableRequests = "requests"

var requestColumns = []interface{}{"id", "description", "requestor_id", "created"}

func (db *DB) GetItemRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	var req models.ItemRequest
	err := db.get(ctx, &req, db.from(tableRequests).Select(requestColumns...).Where(goqu.C("id").Eq(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("Request with id %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return &req, nil
}

func (db *DB) ItemRequestExists(ctx context.Context, id int64) (bool, error) {
	return db.exists(ctx, tableRequests, id)
}

func (db *DB) CreateItemRequest(ctx context.Context, req *models.ItemRequest) error {
	id, err := db.insert(ctx, db.dialect.Insert(tableRequests).Rows(goqu.Record{
		"description":  req.Description,
		"requestor_id": req.RequestorID,
		"created":      utc(req.Created),
	}))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.ID = id
	return nil
}

func (db *DB) ListItemRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error) {
	ds := db.from(tableRequests).
		Select(requestColumns...).
		Where(goqu.C("requestor_id").Eq(requestorID)).
		Order(goqu.C("created").Desc(), goqu.C("id").Desc())

	reqs := make([]*models.ItemRequest, 0)
	if err := db.selectAll(ctx, &reqs, ds); err != nil {
		return nil, fmt.Errorf("failed to list own requests: %w", err)
	}
	return reqs, nil
}

// ListItemRequestsExcept pages through everyone else's requests, newest first.
func (db *DB) ListItemRequestsExcept(ctx context.Context, requestorID int64, page models.Page) ([]*models.ItemRequest, error) {
	ds := db.from(tableRequests).
		Select(requestColumns...).
		Where(goqu.C("requestor_id").Neq(requestorID)).
		Order(goqu.C("created").Desc(), goqu.C("id").Desc())

	reqs := make([]*models.ItemRequest, 0)
	if err := db.selectAll(ctx, &reqs, paginate(ds, page)); err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return reqs, nil
}
