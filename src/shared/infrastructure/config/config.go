// Package config reúne la configuración por variables de entorno del
// servidor POS y del daemon de terminal. Sin estado global mutable: todo
// se resuelve en Load* y se pasa explícito.
package config

import (
	"os"
	"strconv"
	"time"
)

// ServerConfig configuración del servidor de ventas
type ServerConfig struct {
	Port              string
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	PrometheusEnabled bool
	Version           string
}

// TerminalConfig configuración del daemon de caja (cliente offline-first)
type TerminalConfig struct {
	ServerURL      string
	DataDir        string
	UserID         int64
	StoreID        int64
	RequestTimeout time.Duration
	ProbeInterval  time.Duration
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	v := getEnv(key, "")
	if v == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvSeconds(key string, defaultSec int64) time.Duration {
	return time.Duration(getEnvInt64(key, defaultSec)) * time.Second
}

// LoadServer carga la configuración del servidor desde el entorno
func LoadServer() ServerConfig {
	return ServerConfig{
		Port:              getEnv("PORT", "8080"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", "postgres"),
		DBName:            getEnv("DB_NAME", "pos_db"),
		PrometheusEnabled: getEnv("PROMETHEUS_ENABLED", "") == "true",
		Version:           getEnv("VERSION", "1.0.0"),
	}
}

// ConnString arma el string de conexión Postgres
func (c ServerConfig) ConnString() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=disable"
}

// LoadTerminal carga la configuración del terminal desde el entorno
func LoadTerminal() TerminalConfig {
	return TerminalConfig{
		ServerURL:      getEnv("POS_SERVER_URL", "http://localhost:8080"),
		DataDir:        getEnv("TERMINAL_DATA_DIR", "./terminal-data"),
		UserID:         getEnvInt64("TERMINAL_USER_ID", 1),
		StoreID:        getEnvInt64("TERMINAL_STORE_ID", 1),
		RequestTimeout: getEnvSeconds("COMMIT_TIMEOUT_SECONDS", 10),
		ProbeInterval:  getEnvSeconds("PROBE_INTERVAL_SECONDS", 15),
	}
}
