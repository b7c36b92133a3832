package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/online-storefront/internal/auth"
	"github.com/iliyamo/online-storefront/internal/config"
	"github.com/iliyamo/online-storefront/internal/database"
	"github.com/iliyamo/online-storefront/internal/handler"
	"github.com/iliyamo/online-storefront/internal/queue"
	"github.com/iliyamo/online-storefront/internal/repository"
	"github.com/iliyamo/online-storefront/internal/router"
	"github.com/iliyamo/online-storefront/internal/service"
)

func main() {
	// Best effort: in containers the environment is injected directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unreachable; middleware degrades to no-op

	tokens := auth.NewTokenService(cfg.JWTSecret, time.Duration(cfg.AccessTTLMin)*time.Minute)

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	products := repository.NewProductRepo(db)
	categories := repository.NewCategoryRepo(db)
	inventory := repository.NewInventoryRepo(db)
	carts := repository.NewCartRepo(db)
	orders := repository.NewOrderRepo(db)
	addresses := repository.NewAddressRepo(db)
	reviews := repository.NewReviewRepo(db)
	payments := repository.NewPaymentRepo(db)
	tracking := repository.NewTrackingRepo(db)

	checkout := service.NewCheckout(database.Runner{DB: db}, carts, products, inventory, orders)

	// The consumer appends placed orders to logs/orders.log and
	// reconnects on broker failures.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	h := router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, tokens, users, sessions),
		Catalog:   handler.NewCatalogHandler(products, categories, inventory),
		Cart:      handler.NewCartHandler(carts, inventory),
		Orders:    handler.NewOrderHandler(carts, orders, checkout),
		Inventory: handler.NewInventoryHandler(inventory),
		Addresses: handler.NewAddressHandler(addresses),
		Reviews:   handler.NewReviewHandler(reviews, products),
		Payments:  handler.NewPaymentHandler(payments, orders),
		Tracking:  handler.NewTrackingHandler(tracking, orders),
		Users:     handler.NewAdminUserHandler(users),
	}
	router.Register(e, h, tokens, users, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
