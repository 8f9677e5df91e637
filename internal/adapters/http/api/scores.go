package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/landpower/internal/app"
	"github.com/okian/landpower/internal/domain/model"
)

// maxRequestBytes bounds a POST /scores body.
const maxRequestBytes = 8 << 20

// Snapshot is a block height or "latest". JSON numbers pin the height; the
// string "latest", null and an absent field all mean the latest state.
type Snapshot struct {
	Height *uint64
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Snapshot) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		s.Height = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var tag string
		if err := json.Unmarshal(b, &tag); err != nil {
			return err
		}
		if tag != "latest" {
			return fmt.Errorf("snapshot %q: want a block number or \"latest\"", tag)
		}
		s.Height = nil
		return nil
	}
	var h uint64
	if err := json.Unmarshal(b, &h); err != nil {
		return fmt.Errorf("snapshot %s: want a non-negative block number", b)
	}
	s.Height = &h
	return nil
}

// scoresRequest mirrors the OpenAPI schema for POST /scores.
type scoresRequest struct {
	Space     string          `json:"space"`
	Network   string          `json:"network"`
	Addresses []string        `json:"addresses"`
	Options   json.RawMessage `json:"options"`
	Snapshot  Snapshot        `json:"snapshot"`
}

type scoresResponse struct {
	Scores       model.Scores `json:"scores"`
	InvocationID string       `json:"invocation_id"`
}

// ScoresHandler handles scoring requests.
type ScoresHandler struct {
	deps Dependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps Dependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

// HandlePostScores handles POST /scores requests.
func (h *ScoresHandler) HandlePostScores(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_scores"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req scoresRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Addresses == nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, errors.New("missing addresses")))
		return
	}

	resp, err := h.deps.Score(r.Context(), service.Request{
		Space:     req.Space,
		Network:   req.Network,
		Addresses: req.Addresses,
		Options:   req.Options,
		Snapshot:  req.Snapshot.Height,
	})
	if resp.InvocationID != "" {
		w.Header().Set("X-Invocation-ID", resp.InvocationID)
	}
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, fmt.Errorf("%s: %w", op, err))
		return
	}
	writeJSON(w, http.StatusOK, scoresResponse{Scores: resp.Scores, InvocationID: resp.InvocationID})
}
