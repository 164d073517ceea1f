package public

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/portfoly/portfoly/internal/db/models"
	"github.com/portfoly/portfoly/internal/db/repositories"
	"github.com/portfoly/portfoly/internal/telemetry"
)

// maxMessageLength caps the contact form body.
const maxMessageLength = 5000

// ContactHandlers serves the public contact form
type ContactHandlers struct {
	contacts *repositories.ContactRepository
}

// NewContactHandlers creates a new ContactHandlers instance
func NewContactHandlers(db *sql.DB) *ContactHandlers {
	return &ContactHandlers{
		contacts: repositories.NewContactRepository(db),
	}
}

// ContactRequest carries the contact form fields.
type ContactRequest struct {
	Name    string `form:"name" json:"name" binding:"required"`
	Email   string `form:"email" json:"email" binding:"required,email"`
	Subject string `form:"subject" json:"subject" binding:"required"`
	Message string `form:"message" json:"message" binding:"required"`
}

func (req *ContactRequest) validate() string {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Message) == "" {
		return "Name, subject and message are required."
	}
	if len(req.Message) > maxMessageLength {
		return "Message is too long (5000 characters max)."
	}
	return ""
}

// @Summary      Submit contact form
// @Description  Stores a contact message for the admin inbox. Messages always start unread.
// @Tags         Contact
// @Accept       json
// @Produce      json
// @Param        body  body  ContactRequest  true  "Contact form fields"
// @Success      201  {object}  map[string]interface{}  "message"
// @Failure      400  {object}  map[string]interface{}
// @Router       /contact/ [post]
// SubmitContactHandler accepts a contact form submission
// POST /contact/
func (h *ContactHandlers) SubmitContactHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ContactRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name, a valid email, subject and message are required."})
			return
		}
		if msg := req.validate(); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}

		contact := &models.Contact{
			Name:    strings.TrimSpace(req.Name),
			Email:   strings.TrimSpace(req.Email),
			Subject: strings.TrimSpace(req.Subject),
			Message: req.Message,
		}
		if err := h.contacts.Create(c.Request.Context(), contact); err != nil {
			slog.Error("failed to store contact message", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
			return
		}

		telemetry.ContactMessagesTotal.Inc()
		slog.Info("contact message received", "contact_id", contact.ID)
		c.JSON(http.StatusCreated, gin.H{"message": "Thanks for reaching out! I will get back to you soon."})
	}
}
