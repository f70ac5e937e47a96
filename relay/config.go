package relay

// Config is the relay server configuration.
type Config struct {
	// Address to listen on (e.g., "0.0.0.0:10000")
	ListenAddr string

	// Model is the upstream model identifier sent on every call.
	Model string

	// MaxTokens caps the length of each generated reply.
	MaxTokens int
}
