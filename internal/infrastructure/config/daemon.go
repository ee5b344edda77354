package config

import "time"

// DaemonConfig holds configuration of the long-running `serve` mode
type DaemonConfig struct {
	// Unix socket path of the gRPC health service
	SocketPath string `mapstructure:"socket_path" validate:"required"`

	// PID file location
	PIDFile string `mapstructure:"pid_file" validate:"required"`

	// Wall time between two ticks
	TickInterval time.Duration `mapstructure:"tick_interval" validate:"required"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
}
