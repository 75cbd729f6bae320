package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the application's configuration values.
type Config struct {
	HostIP   string `validate:"required,ip"`     // Address every listener binds to
	TCPPort  int    `validate:"min=1,max=65535"` // Port for the native game protocol
	HTTPPort int    `validate:"min=1,max=65535"` // Port for the WebSocket gateway and lobby view
	GrpcPort int    `validate:"min=1,max=65535"` // Port for the admin gRPC server

	TickIntervalMS int `validate:"min=1,max=1000"` // Simulation period (in milliseconds)
	SendQueueSize  int `validate:"min=1"`          // Outbound messages buffered per client
	WriteTimeoutMS int `validate:"min=0"`          // Deadline for a single client write (in milliseconds), 0 disables it
	WinThreshold   int `validate:"min=1"`          // Delivered cheese the mice need until the host picks a threshold
}

// TickInterval returns the simulation period.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

// WriteTimeout returns the per write deadline.
func (c Config) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutMS) * time.Millisecond
}

// Envs holds the application's configuration loaded from environment variables.
var Envs = initConfig()

// initConfig initializes and returns the application configuration.
// It loads environment variables from a .env file.
func initConfig() Config {
	// Load .env file if available
	if err := godotenv.Load(); err != nil {
		log.Printf("%s[APP]%s [INFO] .env file not found or could not be loaded: %v", ColorGreen, ColorReset, err)
	}

	c := loadConfig()
	if err := c.Validate(); err != nil {
		log.Fatalf("%s[APP]%s %s[FATAL]%s Invalid configuration: %v", ColorGreen, ColorReset, ColorRed, ColorReset, err)
	}
	return c
}

func loadConfig() Config {
	return Config{
		HostIP:   getEnv("HOST_IP", "0.0.0.0"),
		TCPPort:  getEnvAsInt("TCP_PORT", 5555),
		HTTPPort: getEnvAsInt("HTTP_PORT", 8080),
		GrpcPort: getEnvAsInt("GRPC_PORT", 50051),

		TickIntervalMS: getEnvAsInt("TICK_INTERVAL_MS", 16),
		SendQueueSize:  getEnvAsInt("SEND_QUEUE_SIZE", 256),
		WriteTimeoutMS: getEnvAsInt("WRITE_TIMEOUT_MS", 2000),
		WinThreshold:   getEnvAsInt("WIN_THRESHOLD", 3),
	}
}

// Validate checks every field against its range.
func (c Config) Validate() error {
	return validator.New().Struct(c)
}

// getEnv retrieves the value of an environment variable, or fallback if it is not set.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvAsInt retrieves the value of an environment variable as an integer, or fallback if it is not set.
// A value that cannot be parsed is fatal.
func getEnvAsInt(key string, fallback int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("%s[APP]%s %s[FATAL]%s Environment variable %s must be an integer: %v", ColorGreen, ColorReset, ColorRed, ColorReset, key, err)
	}
	return value
}
