package repository

import (
	"context"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

const roomColumns = `r.id, r.building_id, b.name, r.room_number, r.capacity, r.price_cents, r.description`

// PGRoomCatalog reads rooms, buildings and equipment maintained outside the booking engine.
type PGRoomCatalog struct {
	db querier
}

func NewRoomCatalog(db *pgxpool.Pool) RoomCatalog {
	return &PGRoomCatalog{db: db}
}

func (c *PGRoomCatalog) GetRoom(ctx context.Context, id int64) (*domain.Room, error) {
	var room domain.Room
	err := c.db.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms r JOIN buildings b ON b.id = r.building_id WHERE r.id=$1`, id).
		Scan(&room.ID, &room.BuildingID, &room.BuildingName, &room.RoomNumber, &room.Capacity, &room.PriceCents, &room.Description)
	if err != nil {
		return nil, mapError("get room", "room", id, writeInsert, err)
	}

	equipment, err := c.roomEquipment(ctx, &id)
	if err != nil {
		return nil, err
	}
	room.Equipment = equipment[id]
	return &room, nil
}

func (c *PGRoomCatalog) ListRooms(ctx context.Context) ([]domain.Room, error) {
	rows, err := c.db.Query(ctx, `SELECT `+roomColumns+` FROM rooms r JOIN buildings b ON b.id = r.building_id ORDER BY r.id`)
	if err != nil {
		return nil, mapError("list rooms", "room", 0, writeInsert, err)
	}
	defer rows.Close()

	rooms := make([]domain.Room, 0)
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(&room.ID, &room.BuildingID, &room.BuildingName, &room.RoomNumber, &room.Capacity, &room.PriceCents, &room.Description); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	equipment, err := c.roomEquipment(ctx, nil)
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		rooms[i].Equipment = equipment[rooms[i].ID]
	}
	return rooms, nil
}

func (c *PGRoomCatalog) roomEquipment(ctx context.Context, roomID *int64) (map[int64][]domain.Equipment, error) {
	rows, err := c.db.Query(ctx, `SELECT re.room_id, e.id, e.name
		FROM room_equipment re JOIN equipment e ON e.id = re.equipment_id
		WHERE ($1::bigint IS NULL OR re.room_id = $1)
		ORDER BY re.room_id, e.id`, roomID)
	if err != nil {
		return nil, mapError("list room equipment", "equipment", 0, writeInsert, err)
	}
	defer rows.Close()

	byRoom := make(map[int64][]domain.Equipment)
	for rows.Next() {
		var (
			id int64
			eq domain.Equipment
		)
		if err := rows.Scan(&id, &eq.ID, &eq.Name); err != nil {
			return nil, err
		}
		byRoom[id] = append(byRoom[id], eq)
	}
	return byRoom, rows.Err()
}

func (c *PGRoomCatalog) GetEquipment(ctx context.Context, ids []int64) ([]domain.Equipment, error) {
	rows, err := c.db.Query(ctx, `SELECT id, name FROM equipment WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, mapError("get equipment", "equipment", 0, writeInsert, err)
	}
	defer rows.Close()

	equipment := make([]domain.Equipment, 0, len(ids))
	for rows.Next() {
		var eq domain.Equipment
		if err := rows.Scan(&eq.ID, &eq.Name); err != nil {
			return nil, err
		}
		equipment = append(equipment, eq)
	}
	return equipment, rows.Err()
}

type PGUserDirectory struct {
	db querier
}

func NewUserDirectory(db *pgxpool.Pool) UserDirectory {
	return &PGUserDirectory{db: db}
}

func (d *PGUserDirectory) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := d.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id=$1)`, id).Scan(&exists); err != nil {
		return false, mapError("check user", "user", id, writeInsert, err)
	}
	return exists, nil
}

func (d *PGUserDirectory) Get(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := d.db.QueryRow(ctx, `SELECT id, username, email FROM users WHERE id=$1`, id).Scan(&u.ID, &u.Username, &u.Email); err != nil {
		return nil, mapError("get user", "user", id, writeInsert, err)
	}
	return &u, nil
}

var (
	_ RoomCatalog   = (*PGRoomCatalog)(nil)
	_ UserDirectory = (*PGUserDirectory)(nil)
)
