package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/repository"
	"github.com/Domenick1991/roombooking/internal/service/matching"
	"github.com/gin-gonic/gin"
)

type RoomMatcher interface {
	FindOptimalRooms(ctx context.Context, q matching.Query) ([]domain.OptimalRoomCandidate, error)
}

type OccupancyAnalyzer interface {
	AnalyzeOccupancy(ctx context.Context, roomID int64, startDate time.Time, daysAhead int) ([]domain.OccupancySample, error)
}

// RoomHandler serves the catalog reads and the room analytics.
type RoomHandler struct {
	rooms    repository.RoomCatalog
	matcher  RoomMatcher
	analyzer OccupancyAnalyzer
	location *time.Location
}

func NewRoomHandler(rooms repository.RoomCatalog, matcher RoomMatcher, analyzer OccupancyAnalyzer, loc *time.Location) *RoomHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &RoomHandler{rooms: rooms, matcher: matcher, analyzer: analyzer, location: loc}
}

func (h *RoomHandler) Register(router *gin.RouterGroup) {
	router.GET("/rooms", h.list)
	router.GET("/rooms/:id", h.get)
	router.GET("/equipment", h.equipment)
	router.GET("/room-matching/optimal", h.optimal)
	router.GET("/room-analytics/occupancy/:id", h.occupancy)
}

func (h *RoomHandler) list(c *gin.Context) {
	rooms, err := h.rooms.ListRooms(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (h *RoomHandler) get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	room, err := h.rooms.GetRoom(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *RoomHandler) equipment(c *gin.Context) {
	ids, err := parseIDList(c.Query("ids"))
	if err != nil {
		badRequest(c, "ids", "must be a comma separated list of integers")
		return
	}
	equipment, err := h.rooms.GetEquipment(c.Request.Context(), ids)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, equipment)
}

// optimal accepts equipment either repeated (equipment=a&equipment=b) or comma separated.
func (h *RoomHandler) optimal(c *gin.Context) {
	v := &domain.ValidationError{}

	capacity, err := strconv.Atoi(c.Query("capacity"))
	if err != nil {
		v.Add("capacity", "must be an integer")
	}
	maxPrice, err := strconv.ParseFloat(c.Query("max_price"), 64)
	switch {
	case err != nil:
		v.Add("max_price", "must be a number")
	case !domain.AmountInRange(maxPrice):
		v.Add("max_price", "is out of range")
	}
	date, err := parseTime(c.Query("date"), h.location)
	if err != nil {
		v.Add("date", "must be a date or RFC 3339 timestamp")
	}
	if err := v.OrNil(); err != nil {
		writeError(c, err)
		return
	}

	var equipment []string
	for _, item := range c.QueryArray("equipment") {
		equipment = append(equipment, strings.Split(item, ",")...)
	}

	candidates, err := h.matcher.FindOptimalRooms(c.Request.Context(), matching.Query{
		Capacity:      capacity,
		MaxPriceCents: domain.CentsFromAmount(maxPrice),
		Equipment:     equipment,
		Date:          date,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, candidates)
}

func (h *RoomHandler) occupancy(c *gin.Context) {
	roomID, ok := parseID(c, "id")
	if !ok {
		return
	}
	start, err := parseTime(c.Query("start_date"), h.location)
	if err != nil {
		badRequest(c, "start_date", "must be a date or RFC 3339 timestamp")
		return
	}
	daysAhead, err := strconv.Atoi(c.DefaultQuery("days_ahead", "7"))
	if err != nil {
		badRequest(c, "days_ahead", "must be an integer")
		return
	}

	samples, err := h.analyzer.AnalyzeOccupancy(c.Request.Context(), roomID, start, daysAhead)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, samples)
}
