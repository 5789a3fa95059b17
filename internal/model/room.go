package model

// Room is a physical screening room.  Its capacity determines how many
// seats are provisioned for each showtime scheduled in it.
//
// Fields:
//  ID       – primary key identifier.
//  Name     – display name of the room.
//  Capacity – number of seats; must be positive.
//  Kind     – room type (e.g. "standard", "3d", "vip").
type Room struct {
	ID       uint64 `json:"id"`       // rooms.id
	Name     string `json:"name"`     // rooms.name
	Capacity uint32 `json:"capacity"` // rooms.capacity
	Kind     string `json:"kind"`     // rooms.kind
}
