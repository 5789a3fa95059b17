package model

import "time"

// Showtime represents a scheduled screening of a movie in a particular
// room.  The price applies to every seat of the showtime; tickets copy
// it at purchase time so later price changes never affect sold tickets.
//
// Fields:
//  ID        – primary key identifier.
//  MovieID   – movie being screened (owned by the catalog service).
//  RoomID    – room where the screening takes place.
//  StartsAt  – when the screening begins (UTC).
//  Price     – seat price for this showtime; must be positive.
//  CreatedAt – creation timestamp.
type Showtime struct {
	ID        uint64    `json:"id"`         // showtimes.id
	MovieID   uint64    `json:"movie_id"`   // showtimes.movie_id
	RoomID    uint64    `json:"room_id"`    // showtimes.room_id
	StartsAt  time.Time `json:"starts_at"`  // showtimes.starts_at
	Price     float64   `json:"price"`      // showtimes.price
	CreatedAt time.Time `json:"created_at"` // showtimes.created_at
}

// ShowtimeSummary is the listing shape returned by browse endpoints.  It
// augments the showtime with the count of seats still available.
type ShowtimeSummary struct {
	Showtime
	AvailableSeats uint32 `json:"available_seats"`
}
