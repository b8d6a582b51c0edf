package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/voyagerhq/gameshow/internal/game"
	"github.com/voyagerhq/gameshow/internal/game/challenge"
	"github.com/voyagerhq/gameshow/internal/identity"
	httperrors "github.com/voyagerhq/gameshow/pkg/http/errors"
	"github.com/voyagerhq/gameshow/pkg/realtime"
)

// HTTPHandlers exposes the session API over HTTP and WebSocket.
type HTTPHandlers struct {
	svc      *Service
	tokens   *identity.Manager
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	adminKey string
	logger   zerolog.Logger
}

// NewHTTPHandlers builds the handler set.
func NewHTTPHandlers(svc *Service, tokens *identity.Manager, hub *realtime.Hub, adminKey string, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		svc:    svc,
		tokens: tokens,
		hub:    hub,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		adminKey: adminKey,
		logger:   logger.With().Str("component", "http").Logger(),
	}
}

// Identity issues a player token. Passing the admin key grants the
// admin capability.
func (h *HTTPHandlers) Identity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName string `json:"display_name"`
		AdminKey    string `json:"admin_key,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "display_name is required", "display_name")
		return
	}

	admin := h.adminKey != "" && req.AdminKey == h.adminKey
	playerID, token, err := h.tokens.Issue(req.DisplayName, admin)
	if err != nil {
		h.logger.Error().Err(err).Msg("token issue failed")
		httperrors.RespondInternalError(w, "could not issue token")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"player_id":    playerID,
		"display_name": req.DisplayName,
		"token":        token,
		"admin":        admin,
	})
}

// JoinWaitlist queues the caller for the next instance.
func (h *HTTPHandlers) JoinWaitlist(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	res, err := h.svc.JoinWaitlist(claims.PlayerID, claims.DisplayName)
	if err != nil {
		h.respondGameError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// LeaveWaitlist removes the caller from the queue.
func (h *HTTPHandlers) LeaveWaitlist(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	left := h.svc.LeaveWaitlist(claims.PlayerID)
	respondJSON(w, http.StatusOK, map[string]any{"left": left})
}

// CreateInstance force-forms an instance from the waitlist.
func (h *HTTPHandlers) CreateInstance(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	snap, err := h.svc.CreateInstance(req.Name)
	if err != nil {
		h.respondGameError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, snap)
}

// ListInstances returns snapshots of all live instances.
func (h *HTTPHandlers) ListInstances(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authenticate(w, r); !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.svc.Instances())
}

// GetInstance returns one instance snapshot.
func (h *HTTPHandlers) GetInstance(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authenticate(w, r); !ok {
		return
	}
	snap, err := h.svc.Snapshot(r.PathValue("id"))
	if err != nil {
		h.respondGameError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// StartInstance begins the show for a formed instance.
func (h *HTTPHandlers) StartInstance(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authenticate(w, r); !ok {
		return
	}
	snap, err := h.svc.StartInstance(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondGameError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// BeginRound opens the next round by hand.
func (h *HTTPHandlers) BeginRound(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	var req struct {
		GameType string `json:"game_type"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	start, err := h.svc.BeginRound(r.PathValue("id"), challenge.GameType(req.GameType))
	if err != nil {
		h.respondGameError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, start)
}

// RequestElimination opens an elimination round.
func (h *HTTPHandlers) RequestElimination(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	var req struct {
		GameType string `json:"game_type"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	start, err := h.svc.RequestElimination(r.PathValue("id"), challenge.GameType(req.GameType))
	if err != nil {
		h.respondGameError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, start)
}

// SubmitAnswer records the caller's answer for the active round.
func (h *HTTPHandlers) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON body")
		return
	}

	if err := h.svc.SubmitAnswer(r.PathValue("id"), claims.PlayerID, req.Text); err != nil {
		h.respondGameError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]any{"accepted": true})
}

// EvaluateRound closes and scores the active round by hand.
func (h *HTTPHandlers) EvaluateRound(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	result, err := h.svc.EvaluateRound(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondGameError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Teardown force-removes an instance.
func (h *HTTPHandlers) Teardown(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	if err := h.svc.Teardown(r.PathValue("id")); err != nil {
		h.respondGameError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"removed": true})
}

// Status reports service-level counters.
func (h *HTTPHandlers) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Status())
}

// Leaderboard serves the top entries for a window.
func (h *HTTPHandlers) Leaderboard(w http.ResponseWriter, r *http.Request) {
	window := r.PathValue("window")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	entries, err := h.svc.Leaderboard(r.Context(), window, limit)
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeUnknownWindow, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"window":  window,
		"entries": entries,
	})
}

// WebSocket upgrades the connection and registers it with the hub. The
// token travels in the query string because browsers cannot set headers
// on WebSocket dials.
func (h *HTTPHandlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeUnauthorized, "token query parameter required")
		return
	}
	claims, err := h.tokens.Verify(token)
	if err != nil {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "invalid or expired token")
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := realtime.NewConnection(wsConn, h.logger)
	h.hub.RegisterConnection(claims.PlayerID, conn)

	go conn.WritePump()
	go func() {
		defer h.hub.UnregisterConnection(claims.PlayerID)
		conn.ReadPump(func(msg realtime.Message) error {
			if msg.Type == realtime.TypePing {
				return conn.Send(realtime.Message{Type: realtime.TypePong})
			}
			return nil
		})
	}()
}

func (h *HTTPHandlers) authenticate(w http.ResponseWriter, r *http.Request) (*identity.Claims, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeUnauthorized, "bearer token required")
		return nil, false
	}

	claims, err := h.tokens.Verify(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		code := httperrors.ErrCodeInvalidToken
		if errors.Is(err, identity.ErrExpiredToken) {
			code = httperrors.ErrCodeTokenExpired
		}
		httperrors.RespondUnauthorized(w, code, "invalid or expired token")
		return nil, false
	}
	return claims, true
}

func (h *HTTPHandlers) requireAdmin(w http.ResponseWriter, r *http.Request) (*identity.Claims, bool) {
	claims, ok := h.authenticate(w, r)
	if !ok {
		return nil, false
	}
	if !claims.Admin {
		httperrors.RespondForbidden(w, httperrors.ErrCodeForbidden, "admin capability required")
		return nil, false
	}
	return claims, true
}

// respondGameError maps engine errors onto stable HTTP error codes.
func (h *HTTPHandlers) respondGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrInstanceNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeInstanceNotFound, err.Error())
	case errors.Is(err, game.ErrUnknownPlayer):
		httperrors.RespondNotFound(w, httperrors.ErrCodeUnknownPlayer, err.Error())
	case errors.Is(err, game.ErrAlreadyQueued):
		httperrors.RespondConflict(w, httperrors.ErrCodeAlreadyQueued, err.Error())
	case errors.Is(err, game.ErrAlreadyInInstance):
		httperrors.RespondConflict(w, httperrors.ErrCodeAlreadyInInstance, err.Error())
	case errors.Is(err, game.ErrRoundAlreadyActive):
		httperrors.RespondConflict(w, httperrors.ErrCodeRoundAlreadyActive, err.Error())
	case errors.Is(err, game.ErrNoActiveRound):
		httperrors.RespondConflict(w, httperrors.ErrCodeNoActiveRound, err.Error())
	case errors.Is(err, game.ErrNoAtRiskPlayers):
		httperrors.RespondConflict(w, httperrors.ErrCodeNoAtRiskPlayers, err.Error())
	case errors.Is(err, game.ErrWrongPhase):
		httperrors.RespondConflict(w, httperrors.ErrCodeWrongPhase, err.Error())
	case errors.Is(err, challenge.ErrUnsupportedGameType):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeUnsupportedGameType, err.Error())
	case errors.Is(err, ErrWaitlistEmpty):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("unhandled service error")
		httperrors.RespondInternalError(w, "internal error")
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
