package model

// Seat states.  A seat only ever moves between these two values: claims
// take it to occupied, releases bring it back to available.
const (
	SeatAvailable = "available"
	SeatOccupied  = "occupied"
)

// Seat is one unit of seating inventory for a showtime.  Seats are
// materialized in bulk when their showtime is created, numbered
// 1..capacity, and are never created or destroyed afterwards except by
// cascading showtime deletion.  State changes go exclusively through
// the seat ledger's claim and release operations.
//
// Fields:
//  ID         – primary key identifier.
//  ShowtimeID – showtime this seat belongs to.
//  Number     – seat number, unique within the showtime.
//  State      – SeatAvailable or SeatOccupied.
type Seat struct {
	ID         uint64 `json:"id"`          // seats.id
	ShowtimeID uint64 `json:"showtime_id"` // seats.showtime_id
	Number     uint32 `json:"number"`      // seats.seat_number
	State      string `json:"state"`       // seats.state
}
