package models

import "time"

// Views are the shapes returned over HTTP. Conversion is explicit so that
// owner-only fields stay visible in one place.

type UserView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type IDRef struct {
	ID int64 `json:"id"`
}

type ItemRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type BookingView struct {
	ID     int64         `json:"id"`
	Start  time.Time     `json:"start"`
	End    time.Time     `json:"end"`
	Status BookingStatus `json:"status"`
	Booker IDRef         `json:"booker"`
	Item   ItemRef       `json:"item"`
}

// BookingShort is the last/next booking summary attached to an owner's item view.
type BookingShort struct {
	ID       int64     `json:"id"`
	BookerID int64     `json:"bookerId"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

type CommentView struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"authorName"`
	Created    time.Time `json:"created"`
}

type ItemView struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Available   bool          `json:"available"`
	RequestID   *int64        `json:"requestId,omitempty"`
	LastBooking *BookingShort `json:"lastBooking"`
	NextBooking *BookingShort `json:"nextBooking"`
	Comments    []CommentView `json:"comments"`
}

// ItemShort is an item as listed under the request it fulfils.
type ItemShort struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	RequestID   *int64 `json:"requestId,omitempty"`
	OwnerID     int64  `json:"ownerId"`
}

type ItemRequestView struct {
	ID          int64       `json:"id"`
	Description string      `json:"description"`
	Created     time.Time   `json:"created"`
	Items       []ItemShort `json:"items"`
}

func ToUserView(u *User) UserView {
	return UserView{ID: u.ID, Name: u.Name, Email: u.Email}
}

func ToBookingView(b *BookingDetails) BookingView {
	return BookingView{
		ID:     b.ID,
		Start:  b.Start,
		End:    b.End,
		Status: b.Status,
		Booker: IDRef{ID: b.BookerID},
		Item:   ItemRef{ID: b.ItemID, Name: b.ItemName},
	}
}

func ToBookingShort(b *Booking) *BookingShort {
	if b == nil {
		return nil
	}
	return &BookingShort{ID: b.ID, BookerID: b.BookerID, Start: b.Start, End: b.End}
}

func ToCommentView(c *CommentDetails) CommentView {
	return CommentView{ID: c.ID, Text: c.Text, AuthorName: c.AuthorName, Created: c.Created}
}

func ToCommentViews(comments []*CommentDetails) []CommentView {
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, ToCommentView(c))
	}
	return views
}

// ToItemView builds the public part of an item view. Last/next bookings are
// attached separately and only for the owner.
func ToItemView(item *Item, comments []*CommentDetails) ItemView {
	return ItemView{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Available:   item.Available,
		RequestID:   item.RequestID,
		Comments:    ToCommentViews(comments),
	}
}

func ToItemShort(item *Item) ItemShort {
	return ItemShort{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Available:   item.Available,
		RequestID:   item.RequestID,
		OwnerID:     item.OwnerID,
	}
}

func ToItemRequestView(r *ItemRequest, items []*Item) ItemRequestView {
	shorts := make([]ItemShort, 0, len(items))
	for _, it := range items {
		shorts = append(shorts, ToItemShort(it))
	}
	return ItemRequestView{
		ID:          r.ID,
		Description: r.Description,
		Created:     r.Created,
		Items:       shorts,
	}
}
