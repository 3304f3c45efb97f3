package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cnc-shop-api/middleware"
)

// AddNoteRequest represents the request body for adding a follow-up note
type AddNoteRequest struct {
	Text   string  `json:"text" binding:"required"`
	Author *string `json:"author"`
}

// AddOrderNote handles POST /api/v1/orders/:id/notes - appends a note to an order
func AddOrderNote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "text is required")
		return
	}

	// Fall back to the token subject when the dashboard does not name the author.
	author := blankToNil(req.Author)
	if author == nil {
		if userID, err := middleware.GetUserID(c); err == nil {
			author = &userID
		}
	}

	note, err := newOrderService().AddNote(c.Request.Context(), id, author, text)
	if err != nil {
		respondServiceError(c, err, "create note")
		return
	}
	respondOK(c, http.StatusCreated, note)
}

// ListOrderNotes handles GET /api/v1/orders/:id/notes - lists an order's notes, newest first
func ListOrderNotes(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	notes, err := newOrderService().ListNotes(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "fetch notes")
		return
	}
	respondOK(c, http.StatusOK, notes)
}
