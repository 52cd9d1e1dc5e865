package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/qmlfix/qmlfix/internal/layer"
	"github.com/qmlfix/qmlfix/pkg/qmlfix"
)

// RewriteRequest is the payload of POST /api/v1/rewrite.
type RewriteRequest struct {
	// Style is the QML style document text.
	Style string `json:"style"`
	// Provider is the layer's data-source provider, e.g. ogr.
	Provider string `json:"provider"`
	// PrimaryKey is the index of the primary-key field in Fields, if any.
	PrimaryKey *int `json:"primary_key,omitempty"`
	// Fields lists the layer's attributes in source order.
	Fields []layer.Field `json:"fields"`
}

// RewriteResponse mirrors qmlfix.Result on the wire.
type RewriteResponse struct {
	Style   string `json:"style"`
	Changed bool   `json:"changed"`
}

// rewriteStyle rewrites one style document per request. The rewrite is
// synchronous and fast, so no execution tracking is needed.
func (s *Server) rewriteStyle(w http.ResponseWriter, r *http.Request) {
	s.rewritesTotal.Inc()
	start := time.Now()

	var req RewriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.rewriteOutcomes.WithLabelValues("bad_request").Inc()
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	if req.Style == "" {
		s.rewriteOutcomes.WithLabelValues("bad_request").Inc()
		http.Error(w, "Missing style document", http.StatusBadRequest)
		return
	}

	meta := &layer.Metadata{
		Provider:   req.Provider,
		PrimaryKey: req.PrimaryKey,
		Fields:     req.Fields,
	}

	result, err := qmlfix.Rewrite(req.Style, meta)
	if err != nil {
		s.rewriteOutcomes.WithLabelValues("error").Inc()
		http.Error(w, fmt.Sprintf("Rewrite failed: %v", err), http.StatusInternalServerError)
		return
	}

	s.rewriteDuration.Observe(time.Since(start).Seconds())
	if result.Changed {
		s.rewriteOutcomes.WithLabelValues("changed").Inc()
	} else {
		s.rewriteOutcomes.WithLabelValues("unchanged").Inc()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RewriteResponse{
		Style:   result.Style,
		Changed: result.Changed,
	})
}

// healthCheck reports service liveness.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
	})
}
