package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/roombooking/internal/service/events"
	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	service events.EventUseCase
}

func NewEventHandler(service events.EventUseCase) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) Register(router *gin.RouterGroup) {
	router.GET("/upcoming", h.upcoming)
	router.GET("/:id", h.get)
	router.GET("/:id/hierarchy", h.hierarchy)
	router.GET("/:id/booking", h.bookingDetails)
}

func (h *EventHandler) get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	event, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) hierarchy(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	tree, err := h.service.Hierarchy(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

func (h *EventHandler) upcoming(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil {
		badRequest(c, "limit", "must be an integer")
		return
	}
	upcoming, err := h.service.Upcoming(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, upcoming)
}

func (h *EventHandler) bookingDetails(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	details, err := h.service.BookingDetails(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}
