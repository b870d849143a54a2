package memory

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/repository"
	"gopkg.in/yaml.v3"
)

// Catalog is an in-memory RoomCatalog and UserDirectory.
type Catalog struct {
	mu        sync.RWMutex
	rooms     map[int64]domain.Room
	users     map[int64]domain.User
	equipment map[int64]domain.Equipment
}

func NewCatalog() *Catalog {
	return &Catalog{
		rooms:     make(map[int64]domain.Room),
		users:     make(map[int64]domain.User),
		equipment: make(map[int64]domain.Equipment),
	}
}

func (c *Catalog) AddRoom(room domain.Room) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, eq := range room.Equipment {
		c.equipment[eq.ID] = eq
	}
	c.rooms[room.ID] = room
}

func (c *Catalog) AddUser(user domain.User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.users[user.ID] = user
}

func (c *Catalog) GetRoom(ctx context.Context, id int64) (*domain.Room, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	room, ok := c.rooms[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "room", ID: id}
	}
	return &room, nil
}

func (c *Catalog) ListRooms(ctx context.Context) ([]domain.Room, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rooms := make([]domain.Room, 0, len(c.rooms))
	for _, room := range c.rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

func (c *Catalog) GetEquipment(ctx context.Context, ids []int64) ([]domain.Equipment, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Equipment, 0, len(ids))
	for _, id := range ids {
		if eq, ok := c.equipment[id]; ok {
			out = append(out, eq)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c *Catalog) Exists(ctx context.Context, id int64) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.users[id]
	return ok, nil
}

func (c *Catalog) Get(ctx context.Context, id int64) (*domain.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	u, ok := c.users[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "user", ID: id}
	}
	return &u, nil
}

type seedFile struct {
	Equipment []struct {
		ID   int64  `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"equipment"`
	Rooms []struct {
		ID          int64   `yaml:"id"`
		BuildingID  int64   `yaml:"building_id"`
		Building    string  `yaml:"building"`
		Number      string  `yaml:"number"`
		Capacity    int     `yaml:"capacity"`
		Price       float64 `yaml:"price"`
		Description string  `yaml:"description"`
		Equipment   []int64 `yaml:"equipment"`
	} `yaml:"rooms"`
	Users []struct {
		ID       int64  `yaml:"id"`
		Username string `yaml:"username"`
		Email    string `yaml:"email"`
	} `yaml:"users"`
}

// LoadSeed fills the catalog from a YAML document with equipment, rooms and users.
func (c *Catalog) LoadSeed(r io.Reader) error {
	var seed seedFile
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil {
		return fmt.Errorf("decode seed: %w", err)
	}

	equipment := make(map[int64]domain.Equipment, len(seed.Equipment))
	for _, e := range seed.Equipment {
		equipment[e.ID] = domain.Equipment{ID: e.ID, Name: e.Name}
	}

	for _, r := range seed.Rooms {
		room := domain.Room{
			ID:           r.ID,
			BuildingID:   r.BuildingID,
			BuildingName: r.Building,
			RoomNumber:   r.Number,
			Capacity:     r.Capacity,
			PriceCents:   domain.CentsFromAmount(r.Price),
			Description:  r.Description,
		}
		for _, id := range r.Equipment {
			eq, ok := equipment[id]
			if !ok {
				return fmt.Errorf("room %d: unknown equipment %d", r.ID, id)
			}
			room.Equipment = append(room.Equipment, eq)
		}
		c.AddRoom(room)
	}
	for _, u := range seed.Users {
		c.AddUser(domain.User{ID: u.ID, Username: u.Username, Email: u.Email})
	}

	c.mu.Lock()
	for id, eq := range equipment {
		c.equipment[id] = eq
	}
	c.mu.Unlock()
	return nil
}

var (
	_ repository.RoomCatalog   = (*Catalog)(nil)
	_ repository.UserDirectory = (*Catalog)(nil)
)
