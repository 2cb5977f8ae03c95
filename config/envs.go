package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration values.
type Config struct {
	HostIP            string // Host IP for the server
	RESTPort          int    // Port for the REST API
	DBHost            string // Hostname or IP address for the database
	DBPort            int    // Port number for the database
	DBUser            string // Username for the database
	DBPassword        string // Password for the database
	DBName            string // Name of the database
	RedisAddr         string // host:port of the redis server
	RedisPassword     string // Password for redis, empty when disabled
	RedisDB           int    // Redis logical database
	LevelTTLSeconds   int    // Lifetime of stored levels, 0 keeps them forever
	LeaderboardPrefix string // Prefix of every redis key written by the service
	TickMillis        int    // Simulation tick of a run in milliseconds
	AttachTimeoutSecs int    // Seconds a new run waits for its websocket before it is stopped
	MazeWidth         int    // Cell width of generated run levels
	MazeHeight        int    // Cell height of generated run levels
	MaxMazeDimension  int    // Largest width or height accepted by the level endpoint
	GinMode           string // Mode for the Gin framework (e.g., release, debug, test)
	JWTSecret         string // Secret key for JWT signing
	JWTIssuer         string // Issuer claim for JWTs
}

// Envs holds the application's configuration loaded from environment variables.
var Envs = initConfig()

// initConfig initializes and returns the application configuration.
// It loads environment variables from a .env file.
func initConfig() Config {
	// Load .env file if available
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	// Populate the Config struct with required environment variables
	return Config{
		DBHost:            mustGetEnv("DB_HOST"),
		DBPort:            mustGetEnvAsInt("DB_PORT"),
		DBUser:            mustGetEnv("DB_USER"),
		DBPassword:        mustGetEnv("DB_PASS"),
		DBName:            mustGetEnv("DB_NAME"),
		RedisAddr:         mustGetEnv("REDIS_ADDR"),
		RedisPassword:     getEnvWithDefault("REDIS_PASSWORD", ""),
		RedisDB:           getEnvAsIntWithDefault("REDIS_DB", 0),
		LevelTTLSeconds:   getEnvAsIntWithDefault("LEVEL_TTL_SECONDS", 3600),
		LeaderboardPrefix: getEnvWithDefault("LEADERBOARD_PREFIX", "labyrinth"),
		TickMillis:        getEnvAsIntWithDefault("TICK_MILLIS", 16),
		AttachTimeoutSecs: getEnvAsIntWithDefault("ATTACH_TIMEOUT_SECONDS", 30),
		MazeWidth:         getEnvAsIntWithDefault("MAZE_WIDTH", 20),
		MazeHeight:        getEnvAsIntWithDefault("MAZE_HEIGHT", 20),
		MaxMazeDimension:  getEnvAsIntWithDefault("MAX_MAZE_DIMENSION", 101),
		GinMode:           getEnvWithDefault("GIN_MODE", "release"),
		JWTSecret:         mustGetEnv("JWT_SECRET"),
		JWTIssuer:         mustGetEnv("JWT_ISSUER"),
		HostIP:            mustGetEnv("HOST_IP"),
		RESTPort:          mustGetEnvAsInt("REST_PORT"),
	}
}

// mustGetEnv retrieves the value of an environment variable or logs a fatal error if not set.
func mustGetEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		log.Fatalf("[APP] [FATAL] Environment variable %s is not set", key)
	}
	return value
}

// mustGetEnvAsInt retrieves the value of an environment variable as an integer or logs a fatal error if not set or cannot be parsed.
func mustGetEnvAsInt(key string) int {
	valueStr := mustGetEnv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsIntWithDefault is getEnvWithDefault for integers. A value that does not parse is fatal.
func getEnvAsIntWithDefault(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}
