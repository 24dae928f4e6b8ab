package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hpn/hpn-quill/internal/domain"
	"github.com/hpn/hpn-quill/internal/workspace"
)

// ContentRequest is the body of PUT /api/session/content.
type ContentRequest struct {
	Text string `json:"text"`
}

// ProviderRequest is the body of PUT /api/session/provider.
type ProviderRequest struct {
	Provider string `json:"provider" binding:"required"`
}

// SessionHandler exposes one server-side workspace.
type SessionHandler struct {
	ws     *workspace.Workspace
	logger *slog.Logger
}

// NewSessionHandler creates a SessionHandler for ws.
func NewSessionHandler(ws *workspace.Workspace, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{ws: ws, logger: logger}
}

func (h *SessionHandler) respond(c *gin.Context) {
	c.JSON(http.StatusOK, h.ws.Snapshot())
}

// HandleGet handles GET /api/session.
func (h *SessionHandler) HandleGet(c *gin.Context) {
	h.respond(c)
}

// HandleContent handles PUT /api/session/content.
func (h *SessionHandler) HandleContent(c *gin.Context) {
	var req ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortInvalid(c, "Invalid request body: "+err.Error())
		return
	}
	h.ws.Edit(req.Text)
	h.respond(c)
}

// HandleContinue handles POST /api/session/continue.
func (h *SessionHandler) HandleContinue(c *gin.Context) {
	c.Set(ctxKeyProvider, h.ws.Snapshot().ActiveProvider.String())

	// A dispatched request runs to completion even if the client goes away.
	text, err := h.ws.RequestContinuation(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		h.logger.Debug("session continuation rejected",
			slog.String("state", h.ws.Snapshot().State.String()),
			slog.String("error", err.Error()))
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"continuation": text,
		"session":      h.ws.Snapshot(),
	})
}

// HandleDismiss handles POST /api/session/dismiss.
func (h *SessionHandler) HandleDismiss(c *gin.Context) {
	if err := h.ws.Dismiss(); err != nil {
		abortWithError(c, err)
		return
	}
	h.respond(c)
}

// HandleProvider handles PUT /api/session/provider.
func (h *SessionHandler) HandleProvider(c *gin.Context) {
	var req ProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortInvalid(c, "Invalid request body: "+err.Error())
		return
	}
	if err := h.ws.SwitchProvider(domain.ProviderID(req.Provider)); err != nil {
		abortWithError(c, err)
		return
	}
	h.respond(c)
}

// HandleSaveDraft handles POST /api/session/drafts.
func (h *SessionHandler) HandleSaveDraft(c *gin.Context) {
	if err := h.ws.SaveDraft(); err != nil {
		abortWithError(c, err)
		return
	}
	h.respond(c)
}

// HandleLoadDraft handles POST /api/session/drafts/:index/load.
func (h *SessionHandler) HandleLoadDraft(c *gin.Context) {
	index, ok := draftIndex(c)
	if !ok {
		return
	}
	if err := h.ws.LoadDraft(index); err != nil {
		abortWithError(c, err)
		return
	}
	h.respond(c)
}

// HandleDeleteDraft handles DELETE /api/session/drafts/:index.
func (h *SessionHandler) HandleDeleteDraft(c *gin.Context) {
	index, ok := draftIndex(c)
	if !ok {
		return
	}
	if err := h.ws.DeleteDraft(index); err != nil {
		abortWithError(c, err)
		return
	}
	h.respond(c)
}

// HandleClear handles POST /api/session/clear.
func (h *SessionHandler) HandleClear(c *gin.Context) {
	h.ws.Clear()
	h.respond(c)
}

func draftIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		abortInvalid(c, "draft index must be an integer")
		return 0, false
	}
	return index, true
}
