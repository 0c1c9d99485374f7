package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"stocksage/internal/app"
	"stocksage/internal/metrics"
	"stocksage/internal/model"
	"stocksage/internal/transport/http/response"
	"stocksage/internal/viewer"
)

const (
	msgInvalidMessages = "Invalid messages data"
	msgShareIDRequired = "Share ID is required"
	msgNotFound        = "Conversation not found"
	msgCreateFailed    = "Failed to create shared conversation"
	msgRetrieveFailed  = "Failed to retrieve shared conversation"
)

type ShareHandler struct {
	shareService *app.ShareService
	location     *time.Location
}

// CreateShareRequest keeps messages raw so that a non-array value is told
// apart from a missing one.
type CreateShareRequest struct {
	Messages json.RawMessage `json:"messages"`
	Title    string          `json:"title"`
}

type CreateShareResponse struct {
	Success   bool   `json:"success"`
	ShareID   string `json:"shareId"`
	ShareURL  string `json:"shareUrl"`
	ExpiresIn string `json:"expiresIn"`
}

func NewShareHandler(shareService *app.ShareService) *ShareHandler {
	return &ShareHandler{shareService: shareService, location: time.UTC}
}

func (h *ShareHandler) Create(c *gin.Context) {
	var req CreateShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.RecordShareCreate("invalid", 0)
		response.Fail(c, http.StatusBadRequest, msgInvalidMessages)
		return
	}

	messages, ok := decodeMessages(req.Messages)
	if !ok {
		metrics.RecordShareCreate("invalid", 0)
		response.Fail(c, http.StatusBadRequest, msgInvalidMessages)
		return
	}

	out, err := h.shareService.Create(c.Request.Context(), app.CreateShareInput{
		Messages: messages,
		Title:    req.Title,
		Origin:   requestOrigin(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrShareMessagesInvalid):
			metrics.RecordShareCreate("invalid", 0)
			response.Fail(c, http.StatusBadRequest, msgInvalidMessages)
		default:
			_ = c.Error(err)
			metrics.RecordShareCreate("error", 0)
			response.Fail(c, http.StatusInternalServerError, msgCreateFailed)
		}
		return
	}

	metrics.RecordShareCreate("success", len(messages))
	c.JSON(http.StatusOK, CreateShareResponse{
		Success:   true,
		ShareID:   out.ID,
		ShareURL:  out.URL,
		ExpiresIn: out.ExpiresIn,
	})
}

func (h *ShareHandler) Get(c *gin.Context) {
	record, err := h.shareService.Retrieve(c.Request.Context(), c.Query("id"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrShareIDMissing):
			metrics.RecordShareRetrieve("invalid")
			response.Fail(c, http.StatusBadRequest, msgShareIDRequired)
		case errors.Is(err, app.ErrShareNotFound):
			metrics.RecordShareRetrieve("not_found")
			response.Fail(c, http.StatusNotFound, msgNotFound)
		default:
			_ = c.Error(err)
			metrics.RecordShareRetrieve("error")
			response.Fail(c, http.StatusInternalServerError, msgRetrieveFailed)
		}
		return
	}

	metrics.RecordShareRetrieve("found")
	c.JSON(http.StatusOK, record)
}

// Page renders the read-only viewer for /shared/:shareId.
func (h *ShareHandler) Page(c *gin.Context) {
	record, err := h.shareService.Retrieve(c.Request.Context(), c.Param("shareId"))

	status := http.StatusOK
	state := viewer.Loaded(record)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrShareIDMissing), errors.Is(err, app.ErrShareNotFound):
			status = http.StatusNotFound
			state = viewer.NotFound()
		default:
			_ = c.Error(err)
			status = http.StatusInternalServerError
			state = viewer.State{Phase: viewer.PhaseFailed, Message: viewer.FetchFailedText}
		}
	}

	c.HTML(status, viewer.PageTemplateName, viewer.NewPage(state, h.location))
}

func decodeMessages(raw json.RawMessage) ([]model.SharedMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}

	var messages []model.SharedMessage
	if err := json.Unmarshal(trimmed, &messages); err != nil {
		return nil, false
	}
	if messages == nil {
		messages = []model.SharedMessage{}
	}
	return messages, true
}

func requestOrigin(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := strings.TrimSpace(c.GetHeader("X-Forwarded-Proto")); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}

	host := c.Request.Host
	if forwarded := strings.TrimSpace(c.GetHeader("X-Forwarded-Host")); forwarded != "" {
		host = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return scheme + "://" + host
}
