// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/pokerplan/pokerplan/internal/auth"
	"github.com/pokerplan/pokerplan/internal/cache"
	"github.com/pokerplan/pokerplan/internal/database"
	"github.com/pokerplan/pokerplan/internal/handlers"
	"github.com/pokerplan/pokerplan/internal/middleware"
	"github.com/pokerplan/pokerplan/internal/server"
)

func main() {
	auth.Init()
	database.ConnectDB()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	srv := server.New(database.NewPostgresRoomStore(), logger)

	// Room events are journaled best-effort; a missing Redis just disables
	// the journal.
	if err := cache.ConnectRedis(); err != nil {
		logger.Warnf("redis unavailable, room event journal disabled: %v", err)
	} else {
		srv.SetJournal(cache.PublishRoomEvent)
	}

	mux := http.NewServeMux()

	// user endpoints
	mux.HandleFunc("/user/create", handlers.CreateUserHandler)
	mux.HandleFunc("/user/login", handlers.LoginHandler)

	// estimation websocket
	mux.Handle("/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.WSHandler(logger, srv),
	)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
