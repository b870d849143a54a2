package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service  booking.BookingUseCase
	location *time.Location
}

type eventRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	ParentEventID *int64 `json:"parent_event_id"`
}

func (r *eventRequest) details() *domain.EventDetails {
	if r == nil {
		return nil
	}
	return &domain.EventDetails{Name: r.Name, Description: r.Description, ParentEventID: r.ParentEventID}
}

type createBookingRequest struct {
	RoomID    int64         `json:"room_id"`
	UserID    int64         `json:"user_id"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	HasEvent  bool          `json:"has_event"`
	Event     *eventRequest `json:"event"`
}

type updateBookingRequest struct {
	RoomID    int64                `json:"room_id"`
	StartTime time.Time            `json:"start_time"`
	EndTime   time.Time            `json:"end_time"`
	Status    domain.BookingStatus `json:"status"`
	HasEvent  bool                 `json:"has_event"`
	Event     *eventRequest        `json:"event"`
}

func NewBookingHandler(service booking.BookingUseCase, loc *time.Location) *BookingHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingHandler{service: service, location: loc}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.GET("/summary/daily", h.dailySummary)
	router.GET("/:id", h.get)
	router.PUT("/:id", h.update)
	router.POST("/:id/cancel", h.cancel)
	router.DELETE("/:id", h.delete)
}

// RegisterUserRoutes mounts the per-user listing under a /users group.
func (h *BookingHandler) RegisterUserRoutes(router *gin.RouterGroup) {
	router.GET("/:id/bookings", h.listForUser)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}
	if req.UserID == 0 {
		req.UserID, _ = requesterID(c)
	}

	receipt, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		RoomID:    req.RoomID,
		UserID:    req.UserID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		HasEvent:  req.HasEvent,
		Event:     req.Event.details(),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	receipt, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (h *BookingHandler) update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	receipt, err := h.service.UpdateBooking(c.Request.Context(), id, booking.UpdateBookingInput{
		RoomID:    req.RoomID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    req.Status,
		HasEvent:  req.HasEvent,
		Event:     req.Event.details(),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	b, err := h.service.CancelBooking(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteBooking(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BookingHandler) list(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}
	h.respondPage(c, filter)
}

func (h *BookingHandler) listForUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}
	filter.UserID = &id
	h.respondPage(c, filter)
}

func (h *BookingHandler) respondPage(c *gin.Context, filter domain.BookingFilter) {
	page, err := h.service.ListBookings(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *BookingHandler) dailySummary(c *gin.Context) {
	from, err := parseTime(c.Query("start_date"), h.location)
	if err != nil {
		badRequest(c, "start_date", "must be a date or RFC 3339 timestamp")
		return
	}
	to, err := parseTime(c.Query("end_date"), h.location)
	if err != nil {
		badRequest(c, "end_date", "must be a date or RFC 3339 timestamp")
		return
	}

	summary, err := h.service.DailySummary(c.Request.Context(), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *BookingHandler) parseFilter(c *gin.Context) (domain.BookingFilter, bool) {
	var f domain.BookingFilter

	for _, p := range []struct {
		name string
		dst  **int64
	}{{"room_id", &f.RoomID}, {"user_id", &f.UserID}} {
		if raw := c.Query(p.name); raw != "" {
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				badRequest(c, p.name, "must be an integer")
				return f, false
			}
			*p.dst = &v
		}
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"start_date", &f.From}, {"end_date", &f.To}} {
		if raw := c.Query(p.name); raw != "" {
			t, err := parseTime(raw, h.location)
			if err != nil {
				badRequest(c, p.name, "must be a date or RFC 3339 timestamp")
				return f, false
			}
			*p.dst = &t
		}
	}

	if raw := c.Query("status"); raw != "" {
		status := domain.BookingStatus(raw)
		f.Status = &status
	}
	if raw := c.Query("has_event"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "has_event", "must be a boolean")
			return f, false
		}
		f.HasEvent = &v
	}
	if raw := c.Query("include_past"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "include_past", "must be a boolean")
			return f, false
		}
		f.IncludePast = v
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &f.Limit}, {"offset", &f.Offset}} {
		if raw := c.Query(p.name); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				badRequest(c, p.name, "must be an integer")
				return f, false
			}
			*p.dst = v
		}
	}
	return f, true
}
