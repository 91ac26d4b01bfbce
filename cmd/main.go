package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/vlefranc/carnet/internal/auth"
	"github.com/vlefranc/carnet/internal/config"
	"github.com/vlefranc/carnet/internal/db"
	"github.com/vlefranc/carnet/internal/engine"
	"github.com/vlefranc/carnet/internal/handlers"
	"github.com/vlefranc/carnet/internal/middleware"
	"github.com/vlefranc/carnet/internal/models"
	"github.com/vlefranc/carnet/internal/notify"
	"github.com/vlefranc/carnet/internal/rules"
)

func main() {
	cfg := config.New()

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	log.Info("Connected to MongoDB")

	database := client.Database(cfg.MongoDB)
	events := &db.MongoEventCollection{Collection: database.Collection("events")}
	vehicles := &db.MongoVehicleCollection{
		Vehicles: database.Collection("vehicles"),
		Events:   events,
	}
	users := &db.MongoUserCollection{Collection: database.Collection("users")}
	alerts := &db.MongoAlertCollection{Collection: database.Collection("alerts")}

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("Failed to create auth service")
	}

	catalog := rules.Default()
	eng := engine.New(catalog)

	authHandler := handlers.NewAuthHandler(authService, users)
	vehicleHandler := handlers.NewVehicleHandler(vehicles, cfg.VehicleLimit)
	eventHandler := handlers.NewEventHandler(events, vehicles)
	statusHandler := handlers.NewStatusHandler(eng, catalog, vehicles, events)
	exportHandler := handlers.NewExportHandler(vehicles, events)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	rateLimiter := middleware.NewRateLimitMiddleware()

	router := mux.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(rateLimiter.RateLimit(100, 60))
	router.Use(authMiddleware.Authenticate)

	// Viewers are read-only: mutating routes require the owner role
	// (admins pass any role gate).
	canEdit := authMiddleware.RequireRole(models.RoleOwner)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	router.HandleFunc("/api/auth/register", authHandler.Register).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", authHandler.Login).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/me", authHandler.GetProfile).Methods(http.MethodGet)
	router.HandleFunc("/api/auth/me", authHandler.UpdateProfile).Methods(http.MethodPut)
	router.HandleFunc("/api/auth/password", authHandler.ChangePassword).Methods(http.MethodPost)

	router.HandleFunc("/api/vehicles", vehicleHandler.List).Methods(http.MethodGet)
	router.Handle("/api/vehicles", canEdit(http.HandlerFunc(vehicleHandler.Create))).Methods(http.MethodPost)
	router.HandleFunc("/api/vehicles/{id}", vehicleHandler.Get).Methods(http.MethodGet)
	router.Handle("/api/vehicles/{id}", canEdit(http.HandlerFunc(vehicleHandler.Update))).Methods(http.MethodPut)
	router.Handle("/api/vehicles/{id}", canEdit(http.HandlerFunc(vehicleHandler.Delete))).Methods(http.MethodDelete)

	router.HandleFunc("/api/vehicles/{id}/events", eventHandler.List).Methods(http.MethodGet)
	router.Handle("/api/vehicles/{id}/events", canEdit(http.HandlerFunc(eventHandler.Create))).Methods(http.MethodPost)
	router.Handle("/api/events/{id}", canEdit(http.HandlerFunc(eventHandler.Delete))).Methods(http.MethodDelete)

	router.HandleFunc("/api/vehicles/{id}/statuses", statusHandler.Statuses).Methods(http.MethodGet)
	router.HandleFunc("/api/vehicles/{id}/export", exportHandler.Carnet).Methods(http.MethodGet)
	router.HandleFunc("/api/maintenance-types", statusHandler.MaintenanceTypes).Methods(http.MethodGet)

	dispatcher := buildDispatcher(cfg)
	scanner := notify.NewScanner(vehicles, events, alerts, eng, dispatcher)
	scheduler := notify.NewScheduler(scanner, cfg.ScanSchedule)
	scheduler.Start()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}
	if closer, ok := dispatcher.(interface{ Close() }); ok {
		closer.Close()
	}
	if err := client.Disconnect(ctx); err != nil {
		log.WithError(err).Error("MongoDB disconnect failed")
	}
}

// buildDispatcher connects to the MQTT broker when one is configured
// and falls back to log-only alerts otherwise.
func buildDispatcher(cfg *config.Config) notify.Dispatcher {
	if cfg.MQTTBroker == "" {
		log.Info("No MQTT broker configured, alerts will be logged")
		return notify.LogDispatcher{}
	}
	dispatcher, err := notify.NewMQTTDispatcher(cfg.MQTTBroker, cfg.MQTTClientID)
	if err != nil {
		log.WithError(err).WithField("broker", cfg.MQTTBroker).
			Warn("MQTT broker unreachable, alerts will be logged")
		return notify.LogDispatcher{}
	}
	log.WithField("broker", cfg.MQTTBroker).Info("Alert dispatcher connected to MQTT broker")
	return dispatcher
}
