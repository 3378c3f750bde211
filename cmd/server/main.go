package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/classroom-seat-planner/internal/config"
	"github.com/iliyamo/classroom-seat-planner/internal/database"
	"github.com/iliyamo/classroom-seat-planner/internal/handler"
	"github.com/iliyamo/classroom-seat-planner/internal/history"
	"github.com/iliyamo/classroom-seat-planner/internal/queue"
	"github.com/iliyamo/classroom-seat-planner/internal/repository"
	"github.com/iliyamo/classroom-seat-planner/internal/router"
)

func main() {
	// Local development keeps its settings in .env; in production the
	// variables come from the environment and the file is absent.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil is fine, history degrades to in-process

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	classrooms := repository.NewClassroomRepo(db)
	seats := repository.NewSeatRepo(db)
	students := repository.NewStudentRepo(db)
	groups := repository.NewGroupRepo(db)
	constraints := repository.NewConstraintRepo(db)
	snapshots := repository.NewSnapshotRepo(db)
	hist := history.NewStore(rdb)

	authHandler := handler.NewAuthHandler(&cfg, users, tokens)
	planner := handler.NewPlannerHandler(db, classrooms, seats, students, groups, constraints, snapshots, hist)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.RegisterRoutes(e, authHandler)
	router.RegisterPlanner(e, planner, authHandler, cfg.JWTSecret, rdb)

	go func() {
		if err := queue.StartArrangementConsumer(); err != nil {
			log.Printf("arrangement consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
