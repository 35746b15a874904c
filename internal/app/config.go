package app

import "time"

type Config struct {
	HTTPAddr    string
	DatabaseURL string
	AdminToken  string

	LogLevel string
	LogFile  string

	IntermissionPause time.Duration
	FetchTimeout      time.Duration
	PersistTimeout    time.Duration
}
