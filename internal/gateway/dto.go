package gateway

import "time"

type bookingRequest struct {
	ItemID *int64    `json:"itemId" validate:"required,gt=0"`
	Start  time.Time `json:"start" validate:"required,future"`
	End    time.Time `json:"end" validate:"required,gtfield=Start"`
}

type createUserRequest struct {
	Name  string `json:"name" validate:"notblank"`
	Email string `json:"email" validate:"required,email"`
}

// updateUserRequest checks only the fields that are present.
type updateUserRequest struct {
	Name  *string `json:"name" validate:"omitempty,notblank"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type createItemRequest struct {
	Name        string `json:"name" validate:"notblank"`
	Description string `json:"description" validate:"notblank"`
	Available   *bool  `json:"available" validate:"required"`
	RequestID   *int64 `json:"requestId" validate:"omitempty,gt=0"`
}

type updateItemRequest struct {
	Name        *string `json:"name" validate:"omitempty,notblank"`
	Description *string `json:"description" validate:"omitempty,notblank"`
	Available   *bool   `json:"available"`
}

type commentRequest struct {
	Text string `json:"text" validate:"notblank"`
}

type itemRequestRequest struct {
	Description string `json:"description" validate:"notblank"`
}

type pageQuery struct {
	From int `form:"from,default=0" json:"from" validate:"gte=0"`
	Size int `form:"size,default=10" json:"size" validate:"gte=1"`
}
