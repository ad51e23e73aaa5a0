package models

import "time"

type Comment struct {
	ID       int64     `json:"id" db:"id"`
	Text     string    `json:"text" db:"text"`
	ItemID   int64     `json:"item_id" db:"item_id"`
	AuthorID int64     `json:"author_id" db:"author_id"`
	Created  time.Time `json:"created" db:"created"`
}

// CommentDetails is a comment joined with its author's name.
type CommentDetails struct {
	Comment
	AuthorName string `db:"author_name"`
}
