// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/studyloop/advisor/pkg/logger"
)

// defaultMaxBodyBytes caps the request body when no override is set.
const defaultMaxBodyBytes = 1 << 20

// AssessHandler handles assessment requests.
type AssessHandler struct {
	deps         Dependencies
	maxBodyBytes int64
}

// NewAssessHandler creates a new assessment handler.
func NewAssessHandler(deps Dependencies) *AssessHandler {
	return &AssessHandler{
		deps:         deps,
		maxBodyBytes: defaultMaxBodyBytes,
	}
}

// HandleAssess handles OPTIONS and POST /assess requests.
//
// Decoding is deliberately forgiving: a malformed or oversized body is
// replaced by an empty payload so the caller still receives a valid
// assessment built from defaults. The payload may carry student
// identifiers, so logs only ever mention key names, never values.
func (h *AssessHandler) HandleAssess(w http.ResponseWriter, r *http.Request) {
	const op = "api.assess"
	setCORS(w)

	switch r.Method {
	case http.MethodOptions:
		writeJSON(w, http.StatusOK, preflightResponse{OK: true})
		return
	case http.MethodPost:
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}

	ctx := r.Context()
	log := logger.Get()

	payload := h.decodePayload(r)
	log.Debug(ctx, "assessment requested",
		logger.String("requestId", RequestIDFromContext(ctx)),
		logger.Any("payloadKeys", sortedKeys(payload)),
	)

	out := h.deps.Assess(ctx, payload)

	writeJSON(w, http.StatusOK, assessResponse{
		OK:               true,
		RiskScore:        out.RiskScore,
		RiskLevel:        out.RiskLevel,
		Factors:          out.Factors,
		Recommendations:  out.Recommendations,
		GeneratedAtEpoch: time.Now().Unix(),
	})
}

// decodePayload reads the request body into a flat map. Any failure,
// including a body over the size cap, degrades to an empty map.
func (h *AssessHandler) decodePayload(r *http.Request) map[string]any {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, h.maxBodyBytes))
	if err != nil {
		logger.Get().Warn(r.Context(), "request body unreadable, assessing defaults",
			logger.String("requestId", RequestIDFromContext(r.Context())),
			logger.Error(err),
		)
		return map[string]any{}
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return map[string]any{}
	}
	return payload
}

// sortedKeys returns the payload's key names in stable order for
// logging. Values never leave this function.
func sortedKeys(payload map[string]any) []string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
