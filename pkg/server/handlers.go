package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"florence-hq/vesta/pkg/review"
)

// Request body size limit for the admin endpoints. Decide and skip payloads
// are tiny; anything larger is a caller bug.
const maxBodyBytes = 64 << 10

type decideRequest struct {
	// Role is "initiator" or "participant".
	Role string `json:"role"`

	// Context is the opaque presenting context forwarded to the sink.
	Context map[string]string `json:"context,omitempty"`
}

type decideResponse struct {
	Presented bool `json:"presented"`
}

type skipRequest struct {
	EngagementID string `json:"engagement_id"`
}

type skipResponse struct {
	EngagementID string `json:"engagement_id"`
	Skipped      bool   `json:"skipped"`
}

type skipListResponse struct {
	Entries []string `json:"entries"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// handleDecide runs one decision cycle and reports whether a prompt was
// presented.
func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed, use POST")
		return
	}

	var req decideRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	role := review.Role(req.Role)
	if !role.Valid() {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("invalid role %q, expected %q or %q", req.Role, review.RoleInitiator, review.RoleParticipant))
		return
	}

	presented := s.engine.Decide(r.Context(), role, review.PresentingContext(req.Context))
	writeJSON(w, http.StatusOK, decideResponse{Presented: presented})
}

// handleSkips adds a skip entry (POST) or lists all entries (GET).
func (s *Server) handleSkips(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req skipRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.EngagementID == "" {
			writeError(w, http.StatusBadRequest, "engagement_id is required")
			return
		}

		s.engine.MarkSkipped(r.Context(), req.EngagementID)
		writeJSON(w, http.StatusOK, skipResponse{EngagementID: req.EngagementID, Skipped: true})

	case http.MethodGet:
		entries := s.engine.SkippedEngagements()
		if entries == nil {
			entries = []string{}
		}
		writeJSON(w, http.StatusOK, skipListResponse{Entries: entries})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed, use GET or POST")
	}
}

// handleSkipCheck reports whether a single engagement is skipped.
func (s *Server) handleSkipCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed, use GET")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/skips/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "engagement id missing from path")
		return
	}

	writeJSON(w, http.StatusOK, skipResponse{
		EngagementID: id,
		Skipped:      s.engine.IsSkipped(id),
	})
}

// handleLifetimeReset clears the lifetime latch. Hosts call it at their
// lifecycle boundary (new session, fresh launch).
func (s *Server) handleLifetimeReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed, use POST")
		return
	}

	s.engine.ResetLifetime()
	writeJSON(w, http.StatusOK, statusResponse{Status: "reset"})
}

// handleState returns the engine state snapshot.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed, use GET")
		return
	}

	writeJSON(w, http.StatusOK, s.engine.State())
}

// handleStateClear wipes all persisted review state. Refused unless the
// deployment explicitly enables it.
func (s *Server) handleStateClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed, use POST")
		return
	}

	if !s.config.AllowClear {
		writeError(w, http.StatusForbidden, "state clearing is disabled, set server.allow_clear to enable")
		return
	}

	if err := s.engine.ClearAll(r.Context()); err != nil {
		s.logger.Error("state clear failed", "error", err)
		writeError(w, http.StatusInternalServerError, "state clear failed")
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: "cleared"})
}

// decodeJSON decodes a request body into dst, rejecting unknown fields,
// oversized payloads and trailing garbage.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return fmt.Errorf("invalid request body: %v", err)
	}

	if dec.More() {
		return fmt.Errorf("request body contains more than one JSON document")
	}
	return nil
}
