package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/book-exchange-server/internal/models"
)

func (h *Handler) ListAddresses(c *gin.Context) {
	addrs, err := h.svc.ListAddresses(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, addrs)
}

func (h *Handler) GetAddress(c *gin.Context) {
	id, err := pathID(c, "id", "address")
	if err != nil {
		h.fail(c, err)
		return
	}

	addr, err := h.svc.GetAddress(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, addr)
}

func (h *Handler) CreateAddress(c *gin.Context) {
	var req models.CreateAddressRequest
	if err := bindBody(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	addr, err := h.svc.CreateAddress(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, addr)
}

func (h *Handler) UpdateAddress(c *gin.Context) {
	id, err := pathID(c, "id", "address")
	if err != nil {
		h.fail(c, err)
		return
	}

	var req models.UpdateAddressRequest
	if err := bindBody(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	addr, err := h.svc.UpdateAddress(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, addr)
}

func (h *Handler) DeleteAddress(c *gin.Context) {
	id, err := pathID(c, "id", "address")
	if err != nil {
		h.fail(c, err)
		return
	}

	addrs, err := h.svc.DeleteAddress(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, addrs)
}
