package api

import (
	"net/http"
	"strings"

	"shareit/internal/apperror"
	"shareit/internal/models"
	"shareit/internal/service"
)

type createItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
	RequestID   *int64 `json:"requestId"`
}

type createCommentRequest struct {
	Text string `json:"text"`
}

func (s *HTTPServer) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	ownerID, err := actingUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var body createItemRequest
	if err := decodeJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	if strings.TrimSpace(body.Name) == "" || strings.TrimSpace(body.Description) == "" || body.Available == nil {
		s.fail(w, r, apperror.InvalidArgument("name, description and available are required"))
		return
	}

	item, err := s.services.Items.Create(r.Context(), ownerID, service.CreateItemInput{
		Name:        body.Name,
		Description: body.Description,
		Available:   *body.Available,
		RequestID:   body.RequestID,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *HTTPServer) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	ownerID, err := actingUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var patch models.ItemPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.fail(w, r, err)
		return
	}

	item, err := s.services.Items.Update(r.Context(), ownerID, itemID, patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) handleGetItem(w http.ResponseWriter, r *http.Request) {
	viewerID, err := actingUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	item, err := s.services.Items.Get(r.Context(), itemID, viewerID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) handleListItems(w http.ResponseWriter, r *http.Request) {
	ownerID, err := actingUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	page, err := pageParams(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	items, err := s.services.Items.ListByOwner(r.Context(), ownerID, page)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) handleSearchItems(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	items, err := s.services.Items.Search(r.Context(), r.URL.Query().Get("text"), page)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) handleAddComment(w http.ResponseWriter, r *http.Request) {
	authorID, err := actingUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var body createCommentRequest
	if err := decodeJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		s.fail(w, r, apperror.InvalidArgument("text must not be blank"))
		return
	}

	comment, err := s.services.Items.AddComment(r.Context(), itemID, authorID, body.Text)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}
