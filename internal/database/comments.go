package database

import (
	"context"
	"fmt"

	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

const tableComments = "comments"

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	id, err := db.insert(ctx, db.dialect.Insert(tableComments).Rows(goqu.Record{
		"text":      comment.Text,
		"item_id":   comment.ItemID,
		"author_id": comment.AuthorID,
		"created":   utc(comment.Created),
	}))
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	comment.ID = id
	return nil
}

func (db *DB) ListCommentsByItems(ctx context.Context, itemIDs []int64) (map[int64][]*models.CommentDetails, error) {
	grouped := make(map[int64][]*models.CommentDetails, len(itemIDs))
	if len(itemIDs) == 0 {
		return grouped, nil
	}

	ds := db.dialect.From(goqu.T(tableComments).As("c")).
		Prepared(true).
		Join(goqu.T(tableUsers).As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("c.author_id")))).
		Select(
			goqu.I("c.id"),
			goqu.I("c.text"),
			goqu.I("c.item_id"),
			goqu.I("c.author_id"),
			goqu.I("c.created"),
			goqu.I("u.name").As("author_name"),
		).
		Where(goqu.I("c.item_id").In(itemIDs)).
		Order(goqu.I("c.created").Asc(), goqu.I("c.id").Asc())

	var comments []*models.CommentDetails
	if err := db.selectAll(ctx, &comments, ds); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	for _, c := range comments {
		grouped[c.ItemID] = append(grouped[c.ItemID], c)
	}
	return grouped, nil
}
