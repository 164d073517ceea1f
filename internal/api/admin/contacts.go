package admin

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portfoly/portfoly/internal/db/repositories"
)

// ContactHandlers handles the contact message inbox. Contact messages are
// site-wide rather than owner-scoped: every staff user sees the same inbox.
type ContactHandlers struct {
	contacts *repositories.ContactRepository
}

// NewContactHandlers creates a new ContactHandlers instance
func NewContactHandlers(db *sql.DB) *ContactHandlers {
	return &ContactHandlers{
		contacts: repositories.NewContactRepository(db),
	}
}

// @Summary      List contact messages
// @Description  Returns contact messages, newest first, with optional read/unread filter and text search over name, email and subject.
// @Tags         Contacts
// @Produce      json
// @Param        status     query  string  false  "Filter: read or unread"
// @Param        q          query  string  false  "Search over name, email, subject"
// @Param        page       query  int     false  "Page number (default 1)"
// @Param        page_size  query  int     false  "Page size (default 20, max 100)"
// @Success      200  {object}  map[string]interface{}  "contacts, total"
// @Failure      400  {object}  map[string]interface{}
// @Router       /admin-panel/contacts/ [get]
// ListContactsHandler lists contact messages
// GET /admin-panel/contacts/
func (h *ContactHandlers) ListContactsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		status := c.Query("status")
		if status != "" && status != "read" && status != "unread" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be read or unread."})
			return
		}

		limit, offset := parsePagination(c)
		contacts, total, err := h.contacts.Search(c.Request.Context(), status, c.Query("q"), limit, offset)
		if err != nil {
			slog.Error("failed to list contacts", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list contacts"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"contacts": contacts,
			"total":    total,
		})
	}
}

// @Summary      Get contact message
// @Description  Returns a single contact message. Opening an unread message marks it read.
// @Tags         Contacts
// @Produce      json
// @Param        id  path  string  true  "Contact ID"
// @Success      200  {object}  map[string]interface{}  "contact"
// @Failure      404  {object}  map[string]interface{}
// @Router       /admin-panel/contacts/{id}/ [get]
// GetContactHandler returns a single contact message
// GET /admin-panel/contacts/:id/
func (h *ContactHandlers) GetContactHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		contact, err := h.contacts.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			slog.Error("failed to get contact", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get contact"})
			return
		}
		if contact == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
			return
		}

		if !contact.IsRead {
			if _, err := h.contacts.SetRead(c.Request.Context(), contact.ID, true); err != nil {
				// The message itself still renders; it just stays unread.
				slog.Warn("failed to mark contact read", "contact_id", contact.ID, "error", err)
			} else {
				contact.IsRead = true
			}
		}

		c.JSON(http.StatusOK, gin.H{"contact": contact})
	}
}

// @Summary      Mark contact read
// @Tags         Contacts
// @Produce      json
// @Param        id  path  string  true  "Contact ID"
// @Success      200  {object}  map[string]interface{}  "message"
// @Failure      404  {object}  map[string]interface{}
// @Router       /admin-panel/contacts/{id}/read/ [post]
// MarkReadHandler marks a contact message as read
// POST /admin-panel/contacts/:id/read/
func (h *ContactHandlers) MarkReadHandler() gin.HandlerFunc {
	return h.setReadHandler(true, "Contact marked as read")
}

// @Summary      Mark contact unread
// @Tags         Contacts
// @Produce      json
// @Param        id  path  string  true  "Contact ID"
// @Success      200  {object}  map[string]interface{}  "message"
// @Failure      404  {object}  map[string]interface{}
// @Router       /admin-panel/contacts/{id}/unread/ [post]
// MarkUnreadHandler marks a contact message as unread
// POST /admin-panel/contacts/:id/unread/
func (h *ContactHandlers) MarkUnreadHandler() gin.HandlerFunc {
	return h.setReadHandler(false, "Contact marked as unread")
}

func (h *ContactHandlers) setReadHandler(read bool, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		updated, err := h.contacts.SetRead(c.Request.Context(), c.Param("id"), read)
		if err != nil {
			slog.Error("failed to update contact read state", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update contact"})
			return
		}
		if !updated {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": message})
	}
}

// @Summary      Delete contact message
// @Tags         Contacts
// @Produce      json
// @Param        id  path  string  true  "Contact ID"
// @Success      200  {object}  map[string]interface{}  "message"
// @Failure      404  {object}  map[string]interface{}
// @Router       /admin-panel/contacts/{id}/ [delete]
// DeleteContactHandler deletes a contact message
// DELETE /admin-panel/contacts/:id/
func (h *ContactHandlers) DeleteContactHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		deleted, err := h.contacts.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			slog.Error("failed to delete contact", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete contact"})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Contact deleted"})
	}
}
