package config

import "time"

// Config holds the application settings read from the environment.
// Persisted user choices (hotkey, locale, window position) live in the
// settings store instead.
type Config struct {
	// Local game-client provider
	ProviderURL           string        `env:"PROVIDER_URL" envDefault:"http://127.0.0.1:7420"`
	ProviderInsecureTLS   bool          `env:"PROVIDER_INSECURE_TLS" envDefault:"false"`
	ProviderHeaderTimeout time.Duration `env:"PROVIDER_HEADER_TIMEOUT" envDefault:"2s"`

	// Polling and recovery
	PollInterval      time.Duration `env:"POLL_INTERVAL" envDefault:"3s"`
	RetryDelay        time.Duration `env:"RETRY_DELAY" envDefault:"5s"`
	DegradedThreshold int           `env:"DEGRADED_THRESHOLD" envDefault:"3"`

	ToggleDebounce time.Duration `env:"TOGGLE_DEBOUNCE" envDefault:"300ms"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// 0 disables the metrics endpoint.
	MetricsPort int `env:"METRICS_PORT" envDefault:"0"`

	SoundCues bool   `env:"SOUND_CUES" envDefault:"true"`
	Lang      string `env:"MATCHLENS_LANG"`
}
