package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/weiawesome/wes-io-live/support-service/internal/audit"
	"github.com/weiawesome/wes-io-live/support-service/internal/config"
	"github.com/weiawesome/wes-io-live/support-service/internal/domain"
	"github.com/weiawesome/wes-io-live/support-service/internal/hub"
	"github.com/weiawesome/wes-io-live/support-service/internal/metrics"
	"github.com/weiawesome/wes-io-live/support-service/internal/service"
	"github.com/weiawesome/wes-io-live/support-service/pkg/log"
	"github.com/weiawesome/wes-io-live/support-service/pkg/middleware"
	"github.com/weiawesome/wes-io-live/support-service/pkg/response"
)

// WebSocketPath is where sessions connect.
const WebSocketPath = "/chat/ws"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSHandler struct {
	hub       *hub.Hub
	lifecycle service.Lifecycle
	verifier  middleware.TokenVerifier
	validate  *validator.Validate
	metrics   *metrics.Metrics
	wsCfg     config.WebSocketConfig
}

func NewWSHandler(h *hub.Hub, lifecycle service.Lifecycle, verifier middleware.TokenVerifier, m *metrics.Metrics, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:       h,
		lifecycle: lifecycle,
		verifier:  verifier,
		validate:  validator.New(),
		metrics:   m,
		wsCfg:     wsCfg,
	}
}

// RegisterRoutes mounts the WebSocket endpoint on mux behind wrap.
func (h *WSHandler) RegisterRoutes(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	mux.Handle(WebSocketPath, wrap(http.HandlerFunc(h.HandleWebSocket)))
}

// HandleWebSocket authenticates the request before upgrading. A session is
// only registered once its identity is known.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := log.Ctx(ctx)

	token := middleware.TokenFromRequest(r)
	if token == "" {
		audit.Log(ctx, audit.ActionAuthFailed, "", "missing token")
		writeUnauthorized(w, "missing token")
		return
	}
	claims, err := h.verifier.ValidateToken(token)
	if err != nil {
		audit.LogWithDetail(ctx, audit.ActionAuthFailed, "", err.Error(), "token rejected")
		writeUnauthorized(w, "invalid token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	user := domain.UserSummary{
		ID:    claims.UserID,
		Email: claims.Email,
		Kind:  domain.ParseUserKind(claims.Kind),
	}

	// The request context ends with this handler; the session outlives it.
	client := hub.NewClient(context.WithoutCancel(ctx), uuid.New().String(), user, h.hub, conn, h.wsCfg)
	h.hub.Register(client)

	if err := client.Attach(); err != nil {
		l.Warn().Err(err).Str(log.FieldClientID, client.ID).Msg("failed to attach client")
		client.Close()
		conn.Close()
		return
	}

	cctx := client.Context()
	client.Send(domain.ConnectedFrame{
		Type:     domain.MsgTypeConnected,
		ClientID: client.ID,
		UserID:   user.ID,
		Groups:   client.Groups(),
	})
	audit.Log(cctx, audit.ActionConnect, user.ID, "support session connected")

	go client.WritePump()
	go func() {
		client.ReadPump(h.handleMessage)
		audit.Log(log.WithFields(context.Background(), log.FieldClientID, client.ID), audit.ActionDisconnect, user.ID, "support session closed")
	}()
}

func (h *WSHandler) handleMessage(ctx context.Context, client *hub.Client, message []byte) {
	l := log.Ctx(ctx)

	var base domain.BaseFrame
	if err := json.Unmarshal(message, &base); err != nil {
		client.Send(domain.NewErrorFrame(domain.ErrCodeBadRequest, "invalid frame format"))
		return
	}
	if err := h.validate.Struct(base); err != nil {
		client.Send(domain.NewErrorFrame(domain.ErrCodeBadRequest, "missing action"))
		return
	}

	switch base.Action {
	case domain.ActionPing:
		h.metrics.InboundFrame(base.Action)
		client.Send(domain.PongFrame{Type: domain.MsgTypePong})

	case domain.ActionReadMessages:
		h.metrics.InboundFrame(base.Action)
		var frame domain.ReadMessagesFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			client.Send(domain.NewErrorFrame(domain.ErrCodeBadRequest, "invalid read_messages frame"))
			return
		}
		if err := h.validate.Struct(frame); err != nil {
			client.Send(domain.NewErrorFrame(domain.ErrCodeBadRequest, "thread_id must be a uuid"))
			return
		}

		ctx = log.WithFields(ctx, log.FieldThreadID, frame.ThreadID)
		if _, err := h.lifecycle.MarkRead(ctx, frame.ThreadID, client.User); err != nil {
			code, msg := frameError(err)
			if code == domain.ErrCodeInternalError {
				l.Error().Err(err).Str(log.FieldThreadID, frame.ThreadID).Msg("failed to mark messages read")
			}
			client.Send(domain.NewErrorFrame(code, msg))
		}

	default:
		h.metrics.InboundFrame("unknown")
		client.Send(domain.NewErrorFrame(domain.ErrCodeBadRequest, "unknown action: "+base.Action))
	}
}

// frameError maps service errors to error frame codes.
func frameError(err error) (string, string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return domain.ErrCodeBadRequest, err.Error()
	case errors.Is(err, service.ErrThreadNotFound):
		return domain.ErrCodeNotFound, err.Error()
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrUnauthorized):
		return domain.ErrCodeForbidden, err.Error()
	default:
		return domain.ErrCodeInternalError, "internal error"
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(response.Response{
		Error: &response.ErrorInfo{Code: response.CodeUnauthorized, Message: message},
	})
}
