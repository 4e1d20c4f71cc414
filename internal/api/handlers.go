package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/byldsync/treesync/internal/httpx"
	"github.com/byldsync/treesync/internal/synctree"
)

// envelope is the {success, data, error_message} response shape every
// endpoint returns, matching the reference implementation's contract:
// the HTTP status is always 200 and callers branch on success. Since the
// status can never carry the outcome, writeError records it on the
// request context instead, for Logger to pick the right level from.
type envelope struct {
	Success      bool   `json:"success"`
	Data         any    `json:"data,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func writeOK(w http.ResponseWriter, data any) {
	writeEnvelope(w, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, r *http.Request, outcome httpx.Outcome, message string) {
	httpx.SetOutcome(r.Context(), outcome)
	writeEnvelope(w, envelope{Success: false, ErrorMessage: message})
}

func writeEnvelope(w http.ResponseWriter, env envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(env)
}

// parsePKs reads every "pk" query parameter as an int. A value that does
// not parse as an integer can never match a node, so it is folded into
// ErrUnknownKey rather than rejected as a separate bad-request case.
func parsePKs(r *http.Request) ([]int, error) {
	raw := r.URL.Query()["pk"]
	pks := make([]int, 0, len(raw))
	for _, v := range raw {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, synctree.ErrUnknownKey
		}
		pks = append(pks, n)
	}
	return pks, nil
}

// handleNode serves GET /api/sync/node?type=<kind>&pk=<pk>&pk=<pk>..., the
// per-node sync query surface: check, fetch, get_parents and
// check_children. type defaults to "check" when absent, matching the
// reference implementation's default.
func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("type")
	if kind == "" {
		kind = "check"
	}

	pks, err := parsePKs(r)
	if err != nil {
		writeError(w, r, httpx.OutcomeClientError, "Could not find pk")
		return
	}

	switch kind {
	case "check":
		data, err := s.tree.Check(pks)
		s.respondQuery(w, r, data, err)
	case "fetch":
		data, err := s.tree.Fetch(pks)
		s.respondQuery(w, r, data, err)
	case "get_parents":
		data, err := s.tree.GetParents(pks)
		s.respondQuery(w, r, data, err)
	case "check_children":
		if len(pks) != 1 {
			writeError(w, r, httpx.OutcomeClientError, "check_children requires exactly one pk")
			return
		}
		data, err := s.tree.CheckChildren(pks[0])
		s.respondQuery(w, r, data, err)
	default:
		writeError(w, r, httpx.OutcomeClientError, "Unknown API call type.")
	}
}

// handleSince serves GET /api/sync?updated_time=<float>. A missing or
// malformed updated_time defaults to 0, returning every node.
func (s *Server) handleSince(w http.ResponseWriter, r *http.Request) {
	since := 0.0
	if raw := r.URL.Query().Get("updated_time"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			since = parsed
		}
	}
	writeOK(w, s.tree.Since(since))
}

// respondQuery writes data on success, or logs err (with its frame) at
// debug level and translates it into the envelope's error_message, recognizing ErrUnknownKey as the one error
// kind the sync query surface can return to a client; anything else
// reflects a failure in the core rather than bad client input.
func (s *Server) respondQuery(w http.ResponseWriter, r *http.Request, data any, err error) {
	if err == nil {
		writeOK(w, data)
		return
	}
	s.logger.Debug("query failed", slog.String("error", fmt.Sprintf("%+v", err)))
	if errors.Is(err, synctree.ErrUnknownKey) {
		writeError(w, r, httpx.OutcomeClientError, "Could not find pk")
		return
	}
	writeError(w, r, httpx.OutcomeServerError, "internal error")
}
