package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shareit/internal/apperror"
	"shareit/internal/config"
	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

const tableItems = "items"

var itemColumns = []interface{}{"id", "name", "description", "available", "owner_id", "request_id"}

func (db *DB) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	err := db.get(ctx, &item, db.from(tableItems).Select(itemColumns...).Where(goqu.C("id").Eq(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("Item with id %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

func (db *DB) ItemExists(ctx context.Context, id int64) (bool, error) {
	return db.exists(ctx, tableItems, id)
}

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	id, err := db.insert(ctx, db.dialect.Insert(tableItems).Rows(goqu.Record{
		"name":        item.Name,
		"description": item.Description,
		"available":   item.Available,
		"owner_id":    item.OwnerID,
		"request_id":  item.RequestID,
	}))
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	item.ID = id
	return nil
}

// UpdateItem stores name, description and availability. Owner and request link are immutable.
func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	rows, err := db.exec(ctx, db.dialect.Update(tableItems).Prepared(true).
		Set(goqu.Record{
			"name":        item.Name,
			"description": item.Description,
			"available":   item.Available,
		}).
		Where(goqu.C("id").Eq(item.ID)))
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("Item with id %d not found", item.ID)
	}
	return nil
}

func (db *DB) ListItemsByOwner(ctx context.Context, ownerID int64, page models.Page) ([]*models.Item, error) {
	ds := db.from(tableItems).
		Select(itemColumns...).
		Where(goqu.C("owner_id").Eq(ownerID)).
		Order(goqu.C("id").Asc())

	items := make([]*models.Item, 0)
	if err := db.selectAll(ctx, &items, paginate(ds, page)); err != nil {
		return nil, fmt.Errorf("failed to list owner items: %w", err)
	}
	return items, nil
}

// SearchAvailableItems matches text case-insensitively against name or description.
// The text is matched literally; LIKE wildcards in it are escaped.
func (db *DB) SearchAvailableItems(ctx context.Context, text string, page models.Page) ([]*models.Item, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"
	ds := db.from(tableItems).
		Select(itemColumns...).
		Where(
			goqu.C("available").Eq(true),
			goqu.Or(
				db.containsLower(goqu.C("name"), pattern),
				db.containsLower(goqu.C("description"), pattern),
			),
		).
		Order(goqu.C("id").Asc())

	items := make([]*models.Item, 0)
	if err := db.selectAll(ctx, &items, paginate(ds, page)); err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	return items, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (db *DB) containsLower(col exp.IdentifierExpression, pattern string) exp.LiteralExpression {
	lower := "LOWER"
	if db.driver == config.DriverSQLite {
		lower = "go_lower"
	}
	return goqu.L(`? LIKE ? ESCAPE '\'`, goqu.Func(lower, col), pattern)
}

func (db *DB) ListItemsByRequestIDs(ctx context.Context, requestIDs []int64) (map[int64][]*models.Item, error) {
	grouped := make(map[int64][]*models.Item, len(requestIDs))
	if len(requestIDs) == 0 {
		return grouped, nil
	}

	var items []*models.Item
	ds := db.from(tableItems).
		Select(itemColumns...).
		Where(goqu.C("request_id").In(requestIDs)).
		Order(goqu.C("id").Asc())
	if err := db.selectAll(ctx, &items, ds); err != nil {
		return nil, fmt.Errorf("failed to list items by requests: %w", err)
	}

	for _, item := range items {
		if item.RequestID != nil {
			grouped[*item.RequestID] = append(grouped[*item.RequestID], item)
		}
	}
	return grouped, nil
}

func paginate(ds *goqu.SelectDataset, page models.Page) *goqu.SelectDataset {
	if page.Limit > 0 {
		ds = ds.Limit(uint(page.Limit))
	}
	if page.Offset > 0 {
		ds = ds.Offset(uint(page.Offset))
	}
	return ds
}
