package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/raterudder/wifisetup/pkg/log"
)

// selectionRequest carries operator input. Only fields that are present are
// applied.
type selectionRequest struct {
	SSID      *string `json:"ssid"`
	Password  *string `json:"password"`
	Token     *string `json:"token"`
	SetupPath *string `json:"setupPath"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.View())
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to decode selection request", slog.Any("error", err))
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.SetupPath != nil && *req.SetupPath == "" {
		writeJSONError(w, "setupPath cannot be empty", http.StatusBadRequest)
		return
	}

	if req.SSID != nil {
		s.controller.SelectNetwork(*req.SSID)
	}
	if req.Password != nil {
		s.controller.SetPassword(*req.Password)
	}
	if req.Token != nil {
		s.controller.SetUserToken(*req.Token)
	}
	if req.SetupPath != nil {
		s.controller.SelectSetupPath(*req.SetupPath)
	}
	writeJSON(w, http.StatusOK, s.controller.View())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.controller.View().SelectedSSID == "" {
		writeJSONError(w, "ssid is required", http.StatusBadRequest)
		return
	}
	log.Ctx(ctx).InfoContext(ctx, "operator submitted credentials")
	s.controller.Submit(ctx)
	writeJSON(w, http.StatusAccepted, s.controller.View())
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	s.controller.Scan(r.Context())
	writeJSON(w, http.StatusAccepted, s.controller.View())
}

func (s *Server) handleConf(w http.ResponseWriter, r *http.Request) {
	s.controller.FetchConfig(r.Context())
	writeJSON(w, http.StatusAccepted, s.controller.View())
}
