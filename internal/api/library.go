package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/book-exchange-server/internal/models"
	"github.com/rongwang/book-exchange-server/internal/validation"
)

func (h *Handler) GetLibrary(c *gin.Context) {
	userID, err := pathID(c, "id", "user")
	if err != nil {
		h.fail(c, err)
		return
	}

	lib, err := h.svc.GetLibrary(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lib)
}

func (h *Handler) GetLibraryByID(c *gin.Context) {
	id, err := pathID(c, "id", "library")
	if err != nil {
		h.fail(c, err)
		return
	}

	lib, err := h.svc.GetLibraryByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lib)
}

func (h *Handler) AddToLibrary(c *gin.Context) {
	userID, err := pathID(c, "id", "user")
	if err != nil {
		h.fail(c, err)
		return
	}

	var req models.BookRefRequest
	if err := bindBody(c, &req, validation.MissingMessage("Book not specified")); err != nil {
		h.fail(c, err)
		return
	}

	lib, err := h.svc.AddToLibrary(c.Request.Context(), userID, req.BookID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, lib)
}

// ToggleLibraryVisibility sets hidden_lib on the whole library
func (h *Handler) ToggleLibraryVisibility(c *gin.Context) {
	userID, err := pathID(c, "id", "user")
	if err != nil {
		h.fail(c, err)
		return
	}

	var req models.UpdateLibraryRequest
	if err := bindBody(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	lib, err := h.svc.ToggleLibraryVisibility(c.Request.Context(), userID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lib)
}

func (h *Handler) UpdateLibraryEntry(c *gin.Context) {
	userID, err := pathID(c, "id", "user")
	if err != nil {
		h.fail(c, err)
		return
	}
	bookID, err := pathID(c, "book_id", "book")
	if err != nil {
		h.fail(c, err)
		return
	}

	var req models.UpdateLibraryEntryRequest
	if err := bindBody(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	entry, err := h.svc.UpdateLibraryEntry(c.Request.Context(), userID, bookID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) RemoveFromLibrary(c *gin.Context) {
	userID, err := pathID(c, "id", "user")
	if err != nil {
		h.fail(c, err)
		return
	}
	bookID, err := pathID(c, "book_id", "book")
	if err != nil {
		h.fail(c, err)
		return
	}

	lib, err := h.svc.RemoveFromLibrary(c.Request.Context(), userID, bookID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lib)
}
