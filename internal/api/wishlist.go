package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/book-exchange-server/internal/models"
	"github.com/rongwang/book-exchange-server/internal/validation"
)

func (h *Handler) GetWishlist(c *gin.Context) {
	userID, err := pathID(c, "id", "user")
	if err != nil {
		h.fail(c, err)
		return
	}

	books, err := h.svc.GetWishlist(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *Handler) AddToWishlist(c *gin.Context) {
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

	books, err := h.svc.AddToWishlist(c.Request.Context(), userID, req.BookID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, books)
}

func (h *Handler) RemoveFromWishlist(c *gin.Context) {
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

	books, err := h.svc.RemoveFromWishlist(c.Request.Context(), userID, bookID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}
