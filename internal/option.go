package internal

// Serve modes.
const (
	ModeHTTP = "http"
	ModeMCP  = "mcp"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	mode   string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithMode selects the serve mode: ModeHTTP (default) or ModeMCP.
func WithMode(mode string) Option {
	return func(a *application) {
		a.mode = mode
	}
}
