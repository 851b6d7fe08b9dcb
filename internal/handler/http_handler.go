package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-live/support-service/internal/domain"
	"github.com/weiawesome/wes-io-live/support-service/internal/service"
	"github.com/weiawesome/wes-io-live/support-service/pkg/log"
	"github.com/weiawesome/wes-io-live/support-service/pkg/middleware"
	"github.com/weiawesome/wes-io-live/support-service/pkg/response"
)

// CreateThreadRequest is the body of POST /threads. Message is optional.
type CreateThreadRequest struct {
	Message string `json:"message"`
}

// SendMessageRequest is the body of POST /threads/:id/messages.
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// MarkReadResponse reports how many messages changed state.
type MarkReadResponse struct {
	Marked int64 `json:"marked"`
}

// HTTPHandler serves the REST API.
type HTTPHandler struct {
	lifecycle      service.Lifecycle
	pipeline       service.Pipeline
	authMiddleware *middleware.AuthMiddleware
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(lifecycle service.Lifecycle, pipeline service.Pipeline, authMiddleware *middleware.AuthMiddleware) *HTTPHandler {
	return &HTTPHandler{
		lifecycle:      lifecycle,
		pipeline:       pipeline,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers all routes.
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.authMiddleware.RequireAuth())
	{
		threads := api.Group("/threads")
		{
			threads.POST("", h.CreateThread)
			threads.GET("", h.ListThreads)
			threads.GET("/:id", h.GetThread)
			threads.POST("/:id/claim", h.ClaimThread)
			threads.POST("/:id/read", h.MarkRead)
			threads.GET("/:id/messages", h.ListMessages)
			threads.POST("/:id/messages", h.SendMessage)
		}
	}
}

// currentUser builds the caller's identity from the verified token claims.
func currentUser(c *gin.Context) domain.UserSummary {
	return domain.UserSummary{
		ID:    middleware.GetUserID(c),
		Email: middleware.GetEmail(c),
		Kind:  domain.ParseUserKind(middleware.GetUserKind(c)),
	}
}

// CreateThread opens a thread for the calling end user.
func (h *HTTPHandler) CreateThread(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req CreateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		l.Warn().Err(err).Msg("failed to bind create thread request")
		response.BadRequest(c, err.Error())
		return
	}

	thread, err := h.lifecycle.CreateThread(ctx, currentUser(c), req.Message)
	if err != nil {
		writeError(c, err, "failed to create thread")
		return
	}

	response.Created(c, thread)
}

// ListThreads lists the threads visible to the caller.
func (h *HTTPHandler) ListThreads(c *gin.Context) {
	threads, err := h.lifecycle.ListThreads(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err, "failed to list threads")
		return
	}

	response.Success(c, threads)
}

// GetThread returns one thread.
func (h *HTTPHandler) GetThread(c *gin.Context) {
	thread, err := h.lifecycle.GetThread(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		writeError(c, err, "failed to get thread")
		return
	}

	response.Success(c, thread)
}

// ClaimThread assigns the calling operator to the thread.
func (h *HTTPHandler) ClaimThread(c *gin.Context) {
	ctx := log.WithFields(c.Request.Context(), log.FieldThreadID, c.Param("id"))

	thread, err := h.lifecycle.ClaimThread(ctx, c.Param("id"), currentUser(c))
	if err != nil {
		writeError(c, err, "failed to claim thread")
		return
	}

	response.Success(c, thread)
}

// MarkRead marks the thread's messages read for the caller.
func (h *HTTPHandler) MarkRead(c *gin.Context) {
	n, err := h.lifecycle.MarkRead(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		writeError(c, err, "failed to mark messages read")
		return
	}

	response.Success(c, MarkReadResponse{Marked: n})
}

// ListMessages returns the thread's messages and marks them read.
func (h *HTTPHandler) ListMessages(c *gin.Context) {
	msgs, err := h.lifecycle.ListMessages(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		writeError(c, err, "failed to list messages")
		return
	}

	response.Success(c, msgs)
}

// SendMessage posts a message into the thread.
func (h *HTTPHandler) SendMessage(c *gin.Context) {
	ctx := log.WithFields(c.Request.Context(), log.FieldThreadID, c.Param("id"))
	l := log.Ctx(ctx)

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind send message request")
		response.BadRequest(c, err.Error())
		return
	}

	msg, err := h.pipeline.Send(ctx, c.Param("id"), currentUser(c), req.Text)
	if err != nil {
		writeError(c, err, "failed to send message")
		return
	}

	response.Created(c, msg)
}

// writeError maps service errors to status codes. Unknown errors are logged
// and reported as 500 with msg.
func writeError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrThreadNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrAlreadyAssigned):
		response.Conflict(c, response.CodeAlreadyAssigned, err.Error())
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrUnauthorized):
		response.Forbidden(c, err.Error())
	default:
		l := log.Ctx(c.Request.Context())
		l.Error().Err(err).Msg(msg)
		response.InternalError(c, msg)
	}
}
