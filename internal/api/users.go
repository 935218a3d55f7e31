package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/book-exchange-server/internal/models"
)

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		h.failUser(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, err := pathID(c, "id", "user")
	if err != nil {
		h.failUser(c, err)
		return
	}

	user, err := h.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		h.failUser(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := bindBody(c, &req); err != nil {
		h.failUser(c, err)
		return
	}

	user, err := h.svc.CreateUser(c.Request.Context(), req)
	if err != nil {
		h.failUser(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := pathID(c, "id", "user")
	if err != nil {
		h.failUser(c, err)
		return
	}

	var req models.UpdateUserRequest
	if err := bindBody(c, &req); err != nil {
		h.failUser(c, err)
		return
	}

	user, err := h.svc.UpdateUser(c.Request.Context(), id, req)
	if err != nil {
		h.failUser(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser responds with the users that remain
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := pathID(c, "id", "user")
	if err != nil {
		h.failUser(c, err)
		return
	}

	users, err := h.svc.DeleteUser(c.Request.Context(), id)
	if err != nil {
		h.failUser(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// failUser reports a taken username as 409
func (h *Handler) failUser(c *gin.Context, err error) {
	h.failWithConflict(c, err, http.StatusConflict)
}
