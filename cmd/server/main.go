package main

import (
	"os"
	"time"

	"github.com/ezpotd/intbeetrainer/internal/app"
)

func main() {
	cfg := app.Config{
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		AdminToken:  os.Getenv("ADMIN_TOKEN"),

		LogLevel: getenv("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),

		IntermissionPause: 3 * time.Second,
		FetchTimeout:      5 * time.Second,
		PersistTimeout:    5 * time.Second,
	}

	if cfg.DatabaseURL == "" {
		panic("DATABASE_URL is required")
	}

	a, err := app.New(cfg)
	if err != nil {
		panic(err)
	}
	defer a.Close()

	if err := a.Run(); err != nil {
		panic(err)
	}
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
