package api

import (
	"net/http"
	"strings"

	"shareit/internal/apperror"
)

type createItemRequestRequest struct {
	Description string `json:"description"`
}

func (s *HTTPServer) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var body createItemRequestRequest
	if err := decodeJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	if strings.TrimSpace(body.Description) == "" {
		s.fail(w, r, apperror.InvalidArgument("description must not be blank"))
		return
	}

	req, err := s.services.Requests.Create(r.Context(), userID, body.Description)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *HTTPServer) handleListOwnRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	reqs, err := s.services.Requests.ListOwn(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

func (s *HTTPServer) handleListOtherRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	page, err := pageParams(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	reqs, err := s.services.Requests.ListOthers(r.Context(), userID, page)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

func (s *HTTPServer) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	requestID, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	req, err := s.services.Requests.Get(r.Context(), requestID, userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}
