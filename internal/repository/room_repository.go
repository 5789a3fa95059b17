package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cinemagic/ticketing/internal/model"
)

// RoomRepo manages persistence for screening rooms.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// CreateRoom inserts a new room and assigns the generated ID back to the
// struct.
func (r *RoomRepo) CreateRoom(ctx context.Context, room *model.Room) error {
	const q = `INSERT INTO rooms (name, capacity, kind) VALUES (?, ?, ?)`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, room.Name, room.Capacity, room.Kind)
	if err != nil {
		return storageErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return storageErr(err)
	}
	room.ID = uint64(id)
	return nil
}

// UpdateRoom rewrites a room's fields.  Capacity changes affect only future
// showtimes; already-provisioned seat sets are untouched.
func (r *RoomRepo) UpdateRoom(ctx context.Context, room *model.Room) error {
	const q = `UPDATE rooms SET name = ?, capacity = ?, kind = ? WHERE id = ?`
	if _, err := conn(ctx, r.db).ExecContext(ctx, q, room.Name, room.Capacity, room.Kind, room.ID); err != nil {
		return storageErr(err)
	}
	return nil
}

// DeleteRoom removes a room.  Callers must have verified that no upcoming
// showtimes are scheduled in it.
func (r *RoomRepo) DeleteRoom(ctx context.Context, roomID uint64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, roomID)
	if err != nil {
		return storageErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr(err)
	}
	if n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// RoomByID retrieves a room or ErrRoomNotFound.
func (r *RoomRepo) RoomByID(ctx context.Context, roomID uint64) (model.Room, error) {
	const q = `SELECT id, name, capacity, kind FROM rooms WHERE id = ?`
	var room model.Room
	err := conn(ctx, r.db).QueryRowContext(ctx, q, roomID).Scan(&room.ID, &room.Name, &room.Capacity, &room.Kind)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Room{}, ErrRoomNotFound
	}
	if err != nil {
		return model.Room{}, storageErr(err)
	}
	return room, nil
}

// ListRooms returns all rooms ordered by name.
func (r *RoomRepo) ListRooms(ctx context.Context) ([]model.Room, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT id, name, capacity, kind FROM rooms ORDER BY name`)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	rooms := make([]model.Room, 0)
	for rows.Next() {
		var room model.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Capacity, &room.Kind); err != nil {
			return nil, storageErr(err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return rooms, nil
}
