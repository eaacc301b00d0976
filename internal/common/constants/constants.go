package constants

import "time"

const (
	DefaultPort            = 16447
	DefaultOpsPort         = "9464"
	DefaultMaxWorkers      = 20
	DefaultAcceptQueue     = 100
	DefaultMaxLineBytes    = 1 << 20
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	MinScrambleLength = 4

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	DrainTimeout = 10 * time.Second

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28

	ServiceName = "notes"
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
