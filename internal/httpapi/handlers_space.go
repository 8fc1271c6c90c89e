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

type createSpaceRequest struct {
	Name       string `json:"name"`
	Dimensions string `json:"dimensions"`
	MapID      string `json:"mapId"`
}

// handleCreateSpace creates an empty space from explicit dimensions, or
// clones a map template when mapId is set. The two modes are mutually
// exclusive; mapId wins when both are present.
func (s *Server) handleCreateSpace(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := callerFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusForbidden, msgUnauthorized)
		return
	}

	var req createSpaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgValidationFailed)
		return
	}

	var spaceID ulid.ULID
	var err error
	source := "blank"
	if req.MapID != "" {
		source = "map"
		var mapID ulid.ULID
		mapID, err = ulid.Parse(req.MapID)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, msgMapNotFound)
			return
		}
		spaceID, err = s.cfg.Spaces.CreateFromMap(r.Context(), callerID, req.Name, mapID)
	} else {
		spaceID, err = s.cfg.Spaces.Create(r.Context(), callerID, req.Name, req.Dimensions)
	}

	if err != nil {
		switch {
		case errors.Is(err, world.ErrNotFound):
			writeMessage(w, http.StatusBadRequest, msgMapNotFound)
		case isValidationError(err):
			writeMessage(w, http.StatusBadRequest, msgValidationFailed)
		default:
			errutil.LogError(s.logger, "space create failed", err)
			writeMessage(w, http.StatusBadRequest, msgInternalError)
		}
		return
	}

	if s.cfg.Metrics != nil {
		s.cfg.Metrics.SpacesCreated.WithLabelValues(source).Inc()
	}
	writeJSON(w, http.StatusOK, map[string]string{"spaceId": spaceID.String()})
}

type spaceResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Dimensions string  `json:"dimensions"`
	Thumbnail  *string `json:"thumbnail"`
}

func (s *Server) handleListSpaces(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := callerFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusForbidden, msgUnauthorized)
		return
	}

	spaces, err := s.cfg.Spaces.ListOwn(r.Context(), callerID)
	if err != nil {
		errutil.LogError(s.logger, "space list failed", err)
		writeMessage(w, http.StatusBadRequest, msgInternalError)
		return
	}

	out := []spaceResponse{}
	for _, sp := range spaces {
		out = append(out, spaceResponse{
			ID:         sp.ID.String(),
			Name:       sp.Name,
			Dimensions: sp.Dimensions().String(),
			Thumbnail:  sp.Thumbnail,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"spaces": out})
}

type spaceElementResponse struct {
	ID      string          `json:"id"`
	Element elementResponse `json:"element"`
	X       int             `json:"x"`
	Y       int             `json:"y"`
}

func (s *Server) handleGetSpace(w http.ResponseWriter, r *http.Request) {
	spaceID, err := ulid.Parse(chi.URLParam(r, "spaceId"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, msgSpaceNotFound)
		return
	}

	detail, err := s.cfg.Spaces.Get(r.Context(), spaceID)
	if err != nil {
		if errors.Is(err, world.ErrNotFound) {
			writeMessage(w, http.StatusBadRequest, msgSpaceNotFound)
			return
		}
		errutil.LogError(s.logger, "space read failed", err)
		writeMessage(w, http.StatusBadRequest, msgInternalError)
		return
	}

	elements := []spaceElementResponse{}
	for _, p := range detail.Elements {
		elements = append(elements, spaceElementResponse{
			ID: p.ID.String(),
			Element: elementResponse{
				ID:       p.Element.ID.String(),
				ImageURL: p.Element.ImageURL,
				Width:    p.Element.Width,
				Height:   p.Element.Height,
				Static:   p.Element.Static,
			},
			X: p.X,
			Y: p.Y,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"dimensions": detail.Space.Dimensions().String(),
		"elements":   elements,
	})
}

func (s *Server) handleDeleteSpace(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := callerFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusForbidden, msgUnauthorized)
		return
	}

	spaceID, err := ulid.Parse(chi.URLParam(r, "spaceId"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, msgSpaceNotFound)
		return
	}

	if err := s.cfg.Spaces.Delete(r.Context(), callerID, spaceID); err != nil {
		switch {
		case errors.Is(err, world.ErrPermissionDenied):
			writeMessage(w, http.StatusForbidden, msgUnauthorized)
		case errors.Is(err, world.ErrNotFound):
			writeMessage(w, http.StatusBadRequest, msgSpaceNotFound)
		default:
			errutil.LogError(s.logger, "space delete failed", err)
			writeMessage(w, http.StatusBadRequest, msgInternalError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Space deleted"})
}

type addSpaceElementRequest struct {
	SpaceID   string `json:"spaceId"`
	ElementID string `json:"elementId"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
}

func (s *Server) handleAddSpaceElement(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := callerFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusForbidden, msgUnauthorized)
		return
	}

	var req addSpaceElementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgValidationFailed)
		return
	}
	spaceID, err := ulid.Parse(req.SpaceID)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, msgSpaceNotFound)
		return
	}
	elementID, err := ulid.Parse(req.ElementID)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, msgValidationFailed)
		return
	}

	if err := s.cfg.Spaces.AddElement(r.Context(), callerID, spaceID, elementID, req.X, req.Y); err != nil {
		switch {
		case errors.Is(err, world.ErrOutOfBounds):
			writeMessage(w, http.StatusBadRequest, msgOutOfBounds)
		case errors.Is(err, world.ErrNotFound):
			writeMessage(w, http.StatusBadRequest, msgSpaceNotFound)
		default:
			errutil.LogError(s.logger, "element placement failed", err)
			writeMessage(w, http.StatusBadRequest, msgInternalError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Element added"})
}

type removeSpaceElementRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleRemoveSpaceElement(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := callerFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusForbidden, msgUnauthorized)
		return
	}

	var req removeSpaceElementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgValidationFailed)
		return
	}
	placementID, err := ulid.Parse(req.ID)
	if err != nil {
		writeMessage(w, http.StatusForbidden, msgUnauthorized)
		return
	}

	if err := s.cfg.Spaces.RemoveElement(r.Context(), callerID, placementID); err != nil {
		switch {
		case errors.Is(err, world.ErrPermissionDenied):
			writeMessage(w, http.StatusForbidden, msgUnauthorized)
		case errors.Is(err, world.ErrNotFound):
			writeMessage(w, http.StatusForbidden, msgUnauthorized)
		default:
			errutil.LogError(s.logger, "element removal failed", err)
			writeMessage(w, http.StatusBadRequest, msgInternalError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Element deleted"})
}
