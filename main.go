package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/minhdangfptu/myFEvent-sub007/config"
	"github.com/minhdangfptu/myFEvent-sub007/database"
	"github.com/minhdangfptu/myFEvent-sub007/handlers"
	"github.com/minhdangfptu/myFEvent-sub007/middleware"
	"github.com/minhdangfptu/myFEvent-sub007/notifier"
	"github.com/minhdangfptu/myFEvent-sub007/routes"
	"github.com/minhdangfptu/myFEvent-sub007/store"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		// .env is optional in container deployments
	}

	config.LoadConfig()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := database.Connect(); err != nil {
		log.Fatal("MongoDB connection failed", zap.Error(err))
	}
	defer database.Disconnect()
	log.Info("Connected to MongoDB", zap.String("db", config.DBName))

	users := store.NewUserStore(database.Collection("users"))
	events := store.NewEventStore(database.Collection("events"))
	departments := store.NewDepartmentStore(database.Collection("departments"))
	members := store.NewMemberStore(database.Collection("eventMembers"))
	risks := store.NewRiskStore(database.Collection("risks"))
	notifications := store.NewNotificationStore(database.Collection("notifications"))

	hub := notifier.NewHub(log)
	go hub.Run()
	notify := notifier.NewService(notifications, hub, log)

	h := &routes.Handlers{
		Auth:          handlers.NewAuthHandler(users, log),
		Events:        handlers.NewEventHandler(events, members, log),
		Departments:   handlers.NewDepartmentHandler(departments, members, log),
		Members:       handlers.NewMemberHandler(members, log),
		Risks:         handlers.NewRiskHandler(risks, members, notify, log),
		Notifications: handlers.NewNotificationHandler(notifications, members, log),
		Hub:           hub,
	}

	r := mux.NewRouter()
	r.Use(middleware.CorsMiddleware)
	r.Use(middleware.LoggingMiddleware(log))
	r.Use(middleware.RecoveryMiddleware(log))
	routes.RegisterRoutes(r, h)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", zap.String("port", config.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
}
