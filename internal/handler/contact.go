package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenloop/waste-pickup/internal/model"
	"github.com/greenloop/waste-pickup/internal/repository"
)

// ContactHandler takes public contact-form submissions and lets admins
// work through the mailbox.
type ContactHandler struct {
	Messages *repository.ContactRepo
}

func NewContactHandler(m *repository.ContactRepo) *ContactHandler {
	return &ContactHandler{Messages: m}
}

type contactReq struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Submit accepts a message from the public contact form.
func (h *ContactHandler) Submit(c echo.Context) error {
	var req contactReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Email == "" || req.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/email/message required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	m := model.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: strings.TrimSpace(req.Subject),
		Message: req.Message,
	}
	id, err := h.Messages.Create(ctx, &m)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save message failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "message": "thanks, we will get back to you"})
}

// List returns the whole mailbox, newest first.
func (h *ContactHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	msgs, err := h.Messages.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, echo.Map{
			"id":         m.ID,
			"name":       m.Name,
			"email":      m.Email,
			"subject":    m.Subject,
			"message":    m.Message,
			"status":     m.Status,
			"created_at": m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": out})
}

type messageStatusReq struct {
	Status string `json:"status"`
}

// SetStatus marks a message READ or REPLIED.
func (h *ContactHandler) SetStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req messageStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status != model.MessageRead && status != model.MessageReplied {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Messages.SetStatus(ctx, id, status); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update message failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "status updated"})
}
