package main

import (
	"log"

	"github.com/labstack/echo/v4"

	"github.com/cinemagic/ticketing/internal/clock"
	"github.com/cinemagic/ticketing/internal/config"
	"github.com/cinemagic/ticketing/internal/database"
	"github.com/cinemagic/ticketing/internal/handler"
	"github.com/cinemagic/ticketing/internal/queue"
	"github.com/cinemagic/ticketing/internal/repository"
	"github.com/cinemagic/ticketing/internal/router"
	"github.com/cinemagic/ticketing/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	store := repository.NewStore(db)
	clk := clock.NewSystem()

	checkout := service.NewCheckoutService(store, clk)
	lifecycle := service.NewTicketLifecycleService(store, clk, cfg.CancelWindow)
	scheduler := service.NewShowtimeScheduler(store, clk, cfg.ShowtimeGap)

	// Optional; caching and rate limiting degrade to no-ops without it.
	rdb := config.NewRedisClient()

	h := router.Handlers{
		Purchases: handler.NewPurchaseHandler(checkout),
		Tickets:   handler.NewTicketHandler(lifecycle, store),
		Refunds:   handler.NewRefundHandler(lifecycle),
		Showtimes: handler.NewShowtimeHandler(scheduler, store, clk),
		Products:  handler.NewProductHandler(store.ProductRepo),
		Rooms:     handler.NewRoomHandler(store.RoomRepo, scheduler),
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, h, cfg, rdb)

	// Background consumer writing the sales journal; it reconnects on
	// its own and never brings the server down.
	go func() {
		if err := queue.StartSalesConsumer(); err != nil {
			log.Printf("sales consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
