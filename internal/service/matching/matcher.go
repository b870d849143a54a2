package matching

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/obs"
	"github.com/Domenick1991/roombooking/internal/repository"
)

// Score weights. Equipment dominates, then price headroom, then capacity fit.
const (
	equipmentWeight = 1000.0
	priceWeight     = 100.0
	fitWeight       = 10.0
)

type Query struct {
	Capacity      int
	MaxPriceCents int64
	// Equipment holds names or numeric equipment ids.
	Equipment []string
	Date      time.Time
}

type RoomMatcher struct {
	catalog  repository.RoomCatalog
	bookings repository.BookingRepository
	location *time.Location
	logger   *slog.Logger
}

func NewRoomMatcher(catalog repository.RoomCatalog, bookings repository.BookingRepository, loc *time.Location, logger *slog.Logger) *RoomMatcher {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RoomMatcher{catalog: catalog, bookings: bookings, location: loc, logger: logger}
}

// FindOptimalRooms ranks rooms free for the whole calendar day of q.Date.
// The result is empty, never nil, when nothing qualifies.
func (m *RoomMatcher) FindOptimalRooms(ctx context.Context, q Query) ([]domain.OptimalRoomCandidate, error) {
	v := &domain.ValidationError{}
	if q.Capacity <= 0 {
		v.Add("capacity", "must be positive")
	}
	if q.MaxPriceCents <= 0 {
		v.Add("max_price", "must be positive")
	}
	if q.Date.IsZero() {
		v.Add("date", "is required")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	logger := obs.Operation(ctx, m.logger, "RoomMatcher", "FindOptimalRooms", "capacity", q.Capacity, "date", q.Date.Format(time.DateOnly))

	wanted, err := m.resolveEquipment(ctx, q.Equipment)
	if err != nil {
		return nil, err
	}

	rooms, err := m.catalog.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	busy, err := m.busyRooms(ctx, domain.Day(q.Date, m.location))
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.OptimalRoomCandidate, 0)
	for _, room := range rooms {
		if room.Capacity < q.Capacity || room.PriceCents > q.MaxPriceCents || busy[room.ID] {
			continue
		}
		matches := countMatches(room, wanted)
		candidates = append(candidates, domain.OptimalRoomCandidate{
			RoomID:              room.ID,
			RoomNumber:          room.RoomNumber,
			Capacity:            room.Capacity,
			PriceCents:          room.PriceCents,
			EquipmentMatchCount: matches,
			TotalScore:          score(matches, room, q),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.EquipmentMatchCount != b.EquipmentMatchCount {
			return a.EquipmentMatchCount > b.EquipmentMatchCount
		}
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		return a.RoomID < b.RoomID
	})

	logger.DebugContext(ctx, "rooms ranked", "rooms", len(rooms), "busy", len(busy), "candidates", len(candidates))
	return candidates, nil
}

// resolveEquipment turns the requested items into a set of lower-cased names.
func (m *RoomMatcher) resolveEquipment(ctx context.Context, items []string) (map[string]struct{}, error) {
	wanted := make(map[string]struct{}, len(items))
	var ids []int64
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if id, err := strconv.ParseInt(item, 10, 64); err == nil {
			ids = append(ids, id)
			continue
		}
		wanted[strings.ToLower(item)] = struct{}{}
	}
	if len(ids) == 0 {
		return wanted, nil
	}

	equipment, err := m.catalog.GetEquipment(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve equipment: %w", err)
	}
	for _, e := range equipment {
		wanted[strings.ToLower(e.Name)] = struct{}{}
	}
	return wanted, nil
}

func (m *RoomMatcher) busyRooms(ctx context.Context, day domain.Interval) (map[int64]bool, error) {
	active, err := m.bookings.ListActiveInRange(ctx, nil, day)
	if err != nil {
		return nil, fmt.Errorf("list active bookings: %w", err)
	}
	busy := make(map[int64]bool, len(active))
	for _, b := range active {
		busy[b.RoomID] = true
	}
	return busy, nil
}

func countMatches(room domain.Room, wanted map[string]struct{}) int {
	seen := make(map[string]struct{}, len(room.Equipment))
	for _, e := range room.Equipment {
		name := strings.ToLower(e.Name)
		if _, ok := wanted[name]; ok {
			seen[name] = struct{}{}
		}
	}
	return len(seen)
}

func score(matches int, room domain.Room, q Query) float64 {
	priceHeadroom := 1 - float64(room.PriceCents)/float64(q.MaxPriceCents)
	fit := float64(q.Capacity) / float64(room.Capacity)
	total := float64(matches)*equipmentWeight + priceHeadroom*priceWeight + fit*fitWeight
	return math.Round(total*100) / 100
}
