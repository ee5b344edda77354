package config

// MetricsConfig controls the Prometheus endpoint served by `serve`
type MetricsConfig struct {
	// Record dispatch, command and tick metrics. `run` records but never serves them.
	Enabled bool `mapstructure:"enabled"`

	// Bind address of the scrape endpoint, localhost unless set
	Host string `mapstructure:"host" validate:"omitempty,hostname|ip"`

	Port int `mapstructure:"port" validate:"omitempty,min=1024,max=65535"`

	// Scrape path, must start with "/"
	Path string `mapstructure:"path"`
}
