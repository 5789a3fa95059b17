package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinemagic/ticketing/internal/clock"
	"github.com/cinemagic/ticketing/internal/model"
	"github.com/cinemagic/ticketing/internal/repository"
	"github.com/cinemagic/ticketing/internal/service"
)

// ShowtimeHandler exposes showtime browsing for customers and
// scheduling for staff.
type ShowtimeHandler struct {
	Scheduler *service.ShowtimeScheduler
	Store     *repository.Store
	Clock     clock.Clock
}

// NewShowtimeHandler constructs a ShowtimeHandler.
func NewShowtimeHandler(scheduler *service.ShowtimeScheduler, store *repository.Store, clk clock.Clock) *ShowtimeHandler {
	if scheduler == nil || store == nil || clk == nil {
		panic("nil dependency passed to NewShowtimeHandler")
	}
	return &ShowtimeHandler{Scheduler: scheduler, Store: store, Clock: clk}
}

type showtimeReq struct {
	MovieID  uint64  `json:"movie_id"`
	RoomID   uint64  `json:"room_id"`
	StartsAt string  `json:"starts_at"` // RFC 3339
	Price    float64 `json:"price"`
}

func (r showtimeReq) parse() (model.Showtime, error) {
	startsAt, err := time.Parse(time.RFC3339, r.StartsAt)
	if err != nil {
		return model.Showtime{}, err
	}
	return model.Showtime{
		MovieID:  r.MovieID,
		RoomID:   r.RoomID,
		StartsAt: startsAt.UTC(),
		Price:    r.Price,
	}, nil
}

// ListUpcoming handles GET /v1/showtimes.  It returns future showtimes
// with their available-seat counts.
func (h *ShowtimeHandler) ListUpcoming(c echo.Context) error {
	showtimes, err := h.Store.ListUpcoming(c.Request().Context(), h.Clock.Now())
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, showtimes)
}

// Get handles GET /v1/showtimes/:id.
func (h *ShowtimeHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	st, err := h.Store.ShowtimeByID(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// Seats handles GET /v1/showtimes/:id/seats, the seat map.
func (h *ShowtimeHandler) Seats(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if _, err := h.Store.ShowtimeByID(c.Request().Context(), id); err != nil {
		return writeErr(c, err)
	}
	seats, err := h.Store.SeatsByShowtime(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, seats)
}

// Create handles POST /v1/showtimes (staff).  The showtime and its
// seat inventory are created atomically.
func (h *ShowtimeHandler) Create(c echo.Context) error {
	var req showtimeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	st, err := req.parse()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC 3339"})
	}
	if err := h.Scheduler.Schedule(c.Request().Context(), &st); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, st)
}

// Update handles PUT /v1/showtimes/:id (staff).
func (h *ShowtimeHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req showtimeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	st, err := req.parse()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC 3339"})
	}
	st.ID = id
	if err := h.Scheduler.Reschedule(c.Request().Context(), &st); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// Delete handles DELETE /v1/showtimes/:id (staff).
func (h *ShowtimeHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Scheduler.Remove(c.Request().Context(), id); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "showtime deleted"})
}
