package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds the service configuration, read from the environment.
type Config struct {
	Port         string
	MongoURI     string
	MongoDB      string
	MQTTBroker   string
	MQTTClientID string
	ScanSchedule string
	// VehicleLimit caps vehicles per owner; 0 means unlimited.
	VehicleLimit int
}

// New loads .env if present, configures logging and reads the config.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using environment as-is")
	}
	setupLogging()

	return &Config{
		Port:         getEnv("PORT", "8080"),
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      getEnv("MONGO_DB", "carnet"),
		MQTTBroker:   os.Getenv("MQTT_BROKER"),
		MQTTClientID: getEnv("MQTT_CLIENT_ID", "carnet-server"),
		ScanSchedule: getEnv("SCAN_SCHEDULE", "@every 6h"),
		VehicleLimit: getEnvInt("VEHICLE_LIMIT", 0),
	}
}

func setupLogging() {
	if os.Getenv("LOG_FORMAT") == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}
	if level, err := log.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		log.SetLevel(level)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
