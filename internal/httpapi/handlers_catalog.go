// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/gridverse/gridverse/internal/world"
	"github.com/gridverse/gridverse/pkg/errutil"
)

type elementResponse struct {
	ID       string `json:"id"`
	ImageURL string `json:"imageUrl"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Static   bool   `json:"static"`
}

func (s *Server) handleListElements(w http.ResponseWriter, r *http.Request) {
	elements, err := s.cfg.Catalog.ListElements(r.Context())
	if err != nil {
		errutil.LogError(s.logger, "element list failed", err)
		writeMessage(w, http.StatusBadRequest, msgInternalError)
		return
	}

	out := []elementResponse{}
	for _, e := range elements {
		out = append(out, elementResponse{
			ID:       e.ID.String(),
			ImageURL: e.ImageURL,
			Width:    e.Width,
			Height:   e.Height,
			Static:   e.Static,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"elements": out})
}

type avatarResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

func (s *Server) handleListAvatars(w http.ResponseWriter, r *http.Request) {
	avatars, err := s.cfg.Catalog.ListAvatars(r.Context())
	if err != nil {
		errutil.LogError(s.logger, "avatar list failed", err)
		writeMessage(w, http.StatusBadRequest, msgInternalError)
		return
	}

	out := []avatarResponse{}
	for _, a := range avatars {
		out = append(out, avatarResponse{
			ID:       a.ID.String(),
			Name:     a.Name,
			ImageURL: a.ImageURL,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"avatars": out})
}

type createElementRequest struct {
	ImageURL string `json:"imageUrl"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Static   bool   `json:"static"`
}

func (s *Server) handleCreateElement(w http.ResponseWriter, r *http.Request) {
	var req createElementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgValidationFailed)
		return
	}

	id, err := s.cfg.Catalog.CreateElement(r.Context(), req.Width, req.Height, req.Static, req.ImageURL)
	if err != nil {
		if isValidationError(err) {
			writeMessage(w, http.StatusBadRequest, msgValidationFailed)
			return
		}
		errutil.LogError(s.logger, "element create failed", err)
		writeMessage(w, http.StatusBadRequest, msgInternalError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id.String()})
}

type updateElementRequest struct {
	ImageURL string `json:"imageUrl"`
}

func (s *Server) handleUpdateElement(w http.ResponseWriter, r *http.Request) {
	elementID, err := ulid.Parse(chi.URLParam(r, "elementId"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, msgElementNotFound)
		return
	}

	var req updateElementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgValidationFailed)
		return
	}

	if err := s.cfg.Catalog.UpdateElementImage(r.Context(), elementID, req.ImageURL); err != nil {
		switch {
		case errors.Is(err, world.ErrNotFound):
			writeMessage(w, http.StatusBadRequest, msgElementNotFound)
		case isValidationError(err):
			writeMessage(w, http.StatusBadRequest, msgValidationFailed)
		default:
			errutil.LogError(s.logger, "element update failed", err)
			writeMessage(w, http.StatusBadRequest, msgInternalError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Element updated"})
}

type createAvatarRequest struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

func (s *Server) handleCreateAvatar(w http.ResponseWriter, r *http.Request) {
	var req createAvatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgValidationFailed)
		return
	}

	id, err := s.cfg.Catalog.CreateAvatar(r.Context(), req.Name, req.ImageURL)
	if err != nil {
		if isValidationError(err) {
			writeMessage(w, http.StatusBadRequest, msgValidationFailed)
			return
		}
		errutil.LogError(s.logger, "avatar create failed", err)
		writeMessage(w, http.StatusBadRequest, msgInternalError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"avatarId": id.String()})
}

type mapPlacementRequest struct {
	ElementID string `json:"elementId"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
}

type createMapRequest struct {
	Name            string                `json:"name"`
	Dimensions      string                `json:"dimensions"`
	Thumbnail       string                `json:"thumbnail"`
	DefaultElements []mapPlacementRequest `json:"defaultElements"`
}

func (s *Server) handleCreateMap(w http.ResponseWriter, r *http.Request) {
	var req createMapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgValidationFailed)
		return
	}

	placements := make([]world.MapPlacement, 0, len(req.DefaultElements))
	for _, p := range req.DefaultElements {
		elementID, err := ulid.Parse(p.ElementID)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, msgValidationFailed)
			return
		}
		placements = append(placements, world.MapPlacement{ElementID: elementID, X: p.X, Y: p.Y})
	}

	id, err := s.cfg.Catalog.CreateMap(r.Context(), req.Name, req.Dimensions, req.Thumbnail, placements)
	if err != nil {
		if isValidationError(err) {
			writeMessage(w, http.StatusBadRequest, msgValidationFailed)
			return
		}
		errutil.LogError(s.logger, "map create failed", err)
		writeMessage(w, http.StatusBadRequest, msgInternalError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id.String()})
}
