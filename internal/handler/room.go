package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cinemagic/ticketing/internal/model"
	"github.com/cinemagic/ticketing/internal/repository"
	"github.com/cinemagic/ticketing/internal/service"
)

// RoomHandler exposes screening-room management for staff.
type RoomHandler struct {
	Rooms     *repository.RoomRepo
	Scheduler *service.ShowtimeScheduler
}

// NewRoomHandler constructs a RoomHandler.
func NewRoomHandler(rooms *repository.RoomRepo, scheduler *service.ShowtimeScheduler) *RoomHandler {
	if rooms == nil || scheduler == nil {
		panic("nil dependency passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms, Scheduler: scheduler}
}

type roomReq struct {
	Name     string `json:"name"`
	Capacity uint32 `json:"capacity"`
	Kind     string `json:"kind"`
}

func (r roomReq) validate() string {
	if strings.TrimSpace(r.Name) == "" {
		return "name is required"
	}
	if r.Capacity == 0 {
		return "capacity must be positive"
	}
	return ""
}

// List handles GET /v1/rooms.
func (h *RoomHandler) List(c echo.Context) error {
	rooms, err := h.Rooms.ListRooms(c.Request().Context())
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, rooms)
}

// Get handles GET /v1/rooms/:id.
func (h *RoomHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	room, err := h.Rooms.RoomByID(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// Create handles POST /v1/rooms (staff).
func (h *RoomHandler) Create(c echo.Context) error {
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	room := model.Room{Name: strings.TrimSpace(req.Name), Capacity: req.Capacity, Kind: req.Kind}
	if err := h.Rooms.CreateRoom(c.Request().Context(), &room); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, room)
}

// Update handles PUT /v1/rooms/:id (staff).  Capacity changes apply
// only to showtimes scheduled afterwards.
func (h *RoomHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if _, err := h.Rooms.RoomByID(c.Request().Context(), id); err != nil {
		return writeErr(c, err)
	}
	room := model.Room{ID: id, Name: strings.TrimSpace(req.Name), Capacity: req.Capacity, Kind: req.Kind}
	if err := h.Rooms.UpdateRoom(c.Request().Context(), &room); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// Delete handles DELETE /v1/rooms/:id (staff).  Rooms with upcoming
// showtimes cannot be removed.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if _, err := h.Rooms.RoomByID(c.Request().Context(), id); err != nil {
		return writeErr(c, err)
	}
	if err := h.Scheduler.RemoveRoom(c.Request().Context(), id); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "room deleted"})
}
