// Package api provides the HTTP transport for the lead-capture agent.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/autostream-ai/leadflow/agent/agents/controller"
	contractx "github.com/autostream-ai/leadflow/agent/contract"
)

const (
	emptyMessageReply = "Please provide a message."
	apologyReply      = "I'm sorry, something went wrong on my end. Please try again."
)

// Dialogue is the slice of the controller the transport needs.
type Dialogue interface {
	HandleMessage(ctx context.Context, sessionID string, text string) (controller.Result, error)
}

// Handler serves the chat and admin endpoints.
type Handler struct {
	dialogue  Dialogue
	directory contractx.LeadDirectory

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewHandler creates a Handler. directory may be nil; the admin endpoints
// then answer 503.
func NewHandler(dialogue Dialogue, directory contractx.LeadDirectory) *Handler {
	return &Handler{
		dialogue:  dialogue,
		directory: directory,
		locks:     make(map[string]*sync.Mutex),
	}
}

// sessionLock serializes transitions per session id. Entries are never
// evicted; the map is bounded by session cardinality.
func (h *Handler) sessionLock(sessionID string) *sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()

	l, ok := h.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		h.locks[sessionID] = l
	}
	return l
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Reply     string  `json:"reply"`
	SessionID string  `json:"session_id"`
	Intent    *string `json:"intent"`
}

// Chat handles POST /chat: one synchronous dialogue transition per request.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if strings.TrimSpace(req.Message) == "" {
		JSON(w, http.StatusOK, chatResponse{
			Reply:     emptyMessageReply,
			SessionID: sessionID,
			Intent:    nil,
		})
		return
	}

	lock := h.sessionLock(sessionID)
	lock.Lock()
	res, err := h.dialogue.HandleMessage(r.Context(), sessionID, req.Message)
	lock.Unlock()

	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("dialogue transition failed")
		JSON(w, http.StatusOK, chatResponse{
			Reply:     apologyReply,
			SessionID: sessionID,
			Intent:    nil,
		})
		return
	}

	var intent *string
	if res.Intent != "" {
		s := string(res.Intent)
		intent = &s
	}

	JSON(w, http.StatusOK, chatResponse{
		Reply:     res.Reply,
		SessionID: sessionID,
		Intent:    intent,
	})
}

// ListLeads handles GET /admin/leads.
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	if h.directory == nil {
		Error(w, http.StatusServiceUnavailable, "lead storage is not configured")
		return
	}

	leads, err := h.directory.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list leads failed")
		Error(w, http.StatusInternalServerError, "failed to list leads")
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"total": len(leads),
		"leads": leads,
	})
}

// GetLead handles GET /admin/leads/{email}.
func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	if h.directory == nil {
		Error(w, http.StatusServiceUnavailable, "lead storage is not configured")
		return
	}

	email := chi.URLParam(r, "email")
	rec, err := h.directory.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, contractx.ErrLeadNotFound) {
			JSON(w, http.StatusNotFound, map[string]any{
				"success": false,
				"error":   "lead not found",
			})
			return
		}
		log.Error().Err(err).Str("email", email).Msg("get lead failed")
		Error(w, http.StatusInternalServerError, "failed to fetch lead")
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"lead":    rec,
	})
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateLeadStatus handles PATCH /admin/leads/{email}/status.
func (h *Handler) UpdateLeadStatus(w http.ResponseWriter, r *http.Request) {
	if h.directory == nil {
		Error(w, http.StatusServiceUnavailable, "lead storage is not configured")
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		Error(w, http.StatusBadRequest, "status is required")
		return
	}

	email := chi.URLParam(r, "email")
	if err := h.directory.UpdateStatus(r.Context(), email, req.Status); err != nil {
		if errors.Is(err, contractx.ErrLeadNotFound) {
			JSON(w, http.StatusNotFound, map[string]any{
				"success": false,
				"error":   "lead not found",
			})
			return
		}
		log.Error().Err(err).Str("email", email).Msg("update lead status failed")
		Error(w, http.StatusInternalServerError, "failed to update lead status")
		return
	}

	JSON(w, http.StatusOK, map[string]any{"success": true})
}

// RegisterRoutes mounts the handler's endpoints on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.Chat)
	r.Route("/admin/leads", func(r chi.Router) {
		r.Get("/", h.ListLeads)
		r.Get("/{email}", h.GetLead)
		r.Patch("/{email}/status", h.UpdateLeadStatus)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
