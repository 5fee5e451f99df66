package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Application
	Version     string
	Environment string
	WorkerID    string
	Port        int
	LogLevel    string

	// Logdy (lightweight web log viewer)
	LogdyEnabled bool
	LogdyHost    string
	LogdyPort    int

	// NATS (crossing events fan-out)
	NatsEnabled        bool
	NatsURL            string
	NatsConnectTimeout time.Duration
	NatsReconnectWait  time.Duration
	NatsMaxReconnects  int
	EventsSubject      string

	// Camera configuration store
	DatabasePath string

	// Worker pool
	MaxCameras       int
	SourceBackoffMin time.Duration
	SourceBackoffMax time.Duration
	SourceMaxRetries int
	ShutdownTimeout  time.Duration

	// Tracker tunables. Defaults documented in tracking.DefaultConfig.
	TrackerMinIoU           float64
	TrackerSmoothingAlpha   float64
	TrackerConfirmThreshold int
	TrackerMissThreshold    int
	TrackerRemovalGrace     int
	LineEpsilon             float64

	// Detector (in-process DNN over gocv)
	DetectorEnabled    bool
	DetectorModelPath  string
	DetectorConfigPath string
	DetectorConfidence float64
	DetectorInputSize  int
	PersonClassID      int

	// Latest-frame output
	JPEGQuality int
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file found, using environment variables and defaults")
	} else {
		log.Info().Msg("Loaded configuration from .env file")
	}

	return &Config{
		// Application
		Version:     getEnv("VERSION", "1.0.0"),
		Environment: getEnv("ENVIRONMENT", "development"),
		WorkerID:    getEnv("WORKER_ID", "worker-1"),
		Port:        getEnvInt("PORT", 8000),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Logdy
		LogdyEnabled: getEnvBool("LOGDY_ENABLED", false),
		LogdyHost:    getEnv("LOGDY_HOST", "localhost"),
		LogdyPort:    getEnvInt("LOGDY_PORT", 8080),

		// NATS
		NatsEnabled:        getEnvBool("NATS_ENABLED", false),
		NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		NatsConnectTimeout: getEnvDuration("NATS_CONNECT_TIMEOUT", 10*time.Second),
		NatsReconnectWait:  getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		NatsMaxReconnects:  getEnvInt("NATS_MAX_RECONNECTS", -1), // -1 = unlimited
		EventsSubject:      getEnv("EVENTS_SUBJECT", "events.crossing"),

		// Store
		DatabasePath: getEnv("DATABASE_PATH", "cameras.db"),

		// Worker pool
		MaxCameras:       getEnvInt("MAX_CAMERAS", 10),
		SourceBackoffMin: getEnvDuration("SOURCE_BACKOFF_MIN", 1*time.Second),
		SourceBackoffMax: getEnvDuration("SOURCE_BACKOFF_MAX", 30*time.Second),
		SourceMaxRetries: getEnvInt("SOURCE_MAX_RETRIES", 8),
		ShutdownTimeout:  getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		// Tracker
		TrackerMinIoU:           getEnvFloat("TRACKER_MIN_IOU", 0.3),
		TrackerSmoothingAlpha:   getEnvFloat("TRACKER_SMOOTHING_ALPHA", 0.5),
		TrackerConfirmThreshold: getEnvInt("TRACKER_CONFIRM_THRESHOLD", 3),
		TrackerMissThreshold:    getEnvInt("TRACKER_MISS_THRESHOLD", 10),
		TrackerRemovalGrace:     getEnvInt("TRACKER_REMOVAL_GRACE", 30),
		LineEpsilon:             getEnvFloat("LINE_EPSILON", 1e-6),

		// Detector
		DetectorEnabled:    getEnvBool("DETECTOR_ENABLED", true),
		DetectorModelPath:  getEnv("DETECTOR_MODEL_PATH", "models/mobilenet_ssd.caffemodel"),
		DetectorConfigPath: getEnv("DETECTOR_CONFIG_PATH", "models/mobilenet_ssd.prototxt"),
		DetectorConfidence: getEnvFloat("DETECTOR_CONFIDENCE", 0.5),
		DetectorInputSize:  getEnvInt("DETECTOR_INPUT_SIZE", 300),
		PersonClassID:      getEnvInt("PERSON_CLASS_ID", 15),

		// Output
		JPEGQuality: getEnvInt("JPEG_QUALITY", 80),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
