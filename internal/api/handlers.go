package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/mattjoyce/polyc/internal/dispatch"
	"github.com/mattjoyce/polyc/internal/protocol"
)

// handleHealthz handles GET /healthz.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	engines := make(map[string]bool, len(protocol.Langs))
	for _, lang := range protocol.Langs {
		engines[string(lang)] = s.config.Engines[lang]
	}

	resp := HealthzResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		Engines:       engines,
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleCompile handles POST /compile.
// Any Response from the dispatcher, success or compile error, is a 200.
func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodySize)

	req, err := protocol.DecodeRequest(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Lang.Known() {
		s.writeError(w, http.StatusBadRequest, dispatch.ErrUnsupportedLang.Error()+": "+string(req.Lang))
		return
	}

	select {
	case s.compileSlot <- struct{}{}:
		defer func() { <-s.compileSlot }()
	case <-r.Context().Done():
		s.writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for compiler")
		return
	}

	logger := s.logger.With("request_id", middleware.GetReqID(r.Context()))
	resp, err := s.dispatcher.Dispatch(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, dispatch.ErrUnsupportedLang), errors.Is(err, dispatch.ErrMissingFile):
			s.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, dispatch.ErrEngineUnavailable):
			s.writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			logger.Error("compile failed", "lang", string(req.Lang), "error", err)
			s.writeError(w, http.StatusInternalServerError, "compile failed")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := protocol.EncodeResponse(w, resp); err != nil {
		logger.Error("failed to write response", "error", err)
	}
}

// respondJSON is a helper to write JSON responses
func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response
func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}
