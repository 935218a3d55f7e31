package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/book-exchange-server/internal/models"
)

func (h *Handler) ListBooks(c *gin.Context) {
	books, err := h.svc.ListBooks(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *Handler) GetBook(c *gin.Context) {
	id, err := pathID(c, "id", "book")
	if err != nil {
		h.fail(c, err)
		return
	}

	book, err := h.svc.GetBook(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *Handler) CreateBook(c *gin.Context) {
	var req models.CreateBookRequest
	if err := bindBody(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	book, err := h.svc.CreateBook(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (h *Handler) UpdateBook(c *gin.Context) {
	id, err := pathID(c, "id", "book")
	if err != nil {
		h.fail(c, err)
		return
	}

	var req models.UpdateBookRequest
	if err := bindBody(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	book, err := h.svc.UpdateBook(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// DeleteBook also drops the book from every library and wishlist
func (h *Handler) DeleteBook(c *gin.Context) {
	id, err := pathID(c, "id", "book")
	if err != nil {
		h.fail(c, err)
		return
	}

	books, err := h.svc.DeleteBook(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}
