package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"newsrag/internal/session"
	"newsrag/internal/transport/http/response"
)

type SessionHandler struct {
	sessions session.Store
}

func NewSessionHandler(sessions session.Store) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) Create(c *gin.Context) {
	id := uuid.NewString()
	if err := h.sessions.Create(c.Request.Context(), id); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create session failed")
		return
	}
	response.OK(c, gin.H{"session_id": id})
}

func (h *SessionHandler) List(c *gin.Context) {
	summaries, err := h.sessions.ListSessions(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list sessions failed")
		return
	}
	response.OK(c, gin.H{
		"sessions": summaries,
		"count":    len(summaries),
	})
}

func (h *SessionHandler) History(c *gin.Context) {
	id := c.Param("id")
	record, err := h.sessions.GetHistory(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get history failed")
		}
		return
	}
	response.OK(c, record)
}

// Clear truncates a session's messages without destroying the session.
func (h *SessionHandler) Clear(c *gin.Context) {
	id := c.Param("id")
	if err := h.sessions.Clear(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, session.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "clear session failed")
		}
		return
	}
	response.OK(c, gin.H{"cleared_session_id": id})
}

// Cleanup sweeps sessions whose inactivity exceeds the TTL. The storage
// layer already expires keys on its own; this removes leftovers and reports
// how many went away.
func (h *SessionHandler) Cleanup(c *gin.Context) {
	removed, err := h.sessions.CleanupExpired(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "cleanup failed")
		return
	}
	response.OK(c, gin.H{"removed": removed})
}
