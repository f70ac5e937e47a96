package servecmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/himi-ai-lab/chatrelay/pkg/anthropic"
	"github.com/himi-ai-lab/chatrelay/pkg/config"
	"github.com/himi-ai-lab/chatrelay/pkg/logger"
	"github.com/himi-ai-lab/chatrelay/relay"
)

const serveLongDesc string = `Run the chat relay server.

Configuration is read once at startup from built-in defaults, an optional
TOML file, a .env file, the environment (ANTHROPIC_API_KEY, PORT, ...),
and finally the flags below.

Examples:
  chatrelay serve
  PORT=8080 chatrelay serve --debug
  chatrelay serve --config /etc/chatrelay.toml`

const serveShortDesc string = "Run the chat relay server"

const shutdownTimeout = 10 * time.Second

type serveCommander struct {
	configPath string
	envFile    string

	host      string
	port      int
	upstream  string
	model     string
	maxTokens int
	debug     bool
}

func NewServeCmd() *cobra.Command {
	return newServeCmd(&serveCommander{})
}

func newServeCmd(cmder *serveCommander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmder.resolveConfig(cmd)
			if err != nil {
				return err
			}
			return cmder.run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to a TOML config file")
	cmd.Flags().StringVar(&cmder.envFile, "env-file", config.DefaultEnvFile, "Path to a .env file (ignored if missing)")
	cmd.Flags().StringVar(&cmder.host, "host", config.DefaultHost, "Host to listen on")
	cmd.Flags().IntVarP(&cmder.port, "port", "p", config.DefaultPort, "Port to listen on (overrides PORT)")
	cmd.Flags().StringVar(&cmder.upstream, "upstream", anthropic.DefaultBaseURL, "Upstream Messages API base URL")
	cmd.Flags().StringVar(&cmder.model, "model", anthropic.DefaultModel, "Upstream model identifier")
	cmd.Flags().IntVar(&cmder.maxTokens, "max-tokens", anthropic.DefaultMaxTokens, "Maximum tokens per reply")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

// resolveConfig loads the layered configuration and applies explicitly set flags.
func (c *serveCommander) resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(config.Options{Path: c.configPath, EnvFile: c.envFile})
	if err != nil {
		return config.Config{}, fmt.Errorf("could not load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host = c.host
	}
	if flags.Changed("port") {
		cfg.Server.Port = c.port
	}
	if flags.Changed("upstream") {
		cfg.Upstream.BaseURL = c.upstream
	}
	if flags.Changed("model") {
		cfg.Upstream.Model = c.model
	}
	if flags.Changed("max-tokens") {
		cfg.Upstream.MaxTokens = c.maxTokens
	}
	if flags.Changed("debug") {
		cfg.Debug = c.debug
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *serveCommander) run(ctx context.Context, cfg config.Config) error {
	log := logger.NewLogger(cfg.Debug)
	defer log.Sync()

	log.Info("chat relay starting",
		zap.String("listen", cfg.ListenAddr()),
		zap.String("upstream", cfg.Upstream.BaseURL),
		zap.String("model", cfg.Upstream.Model),
		zap.Bool("debug", cfg.Debug),
		zap.Bool("api_key_loaded", cfg.HasAPIKey()),
	)
	if !cfg.HasAPIKey() {
		log.Warn(config.EnvAPIKey + " is not set; upstream calls will fail authentication")
	}

	client := anthropic.NewClient(anthropic.Config{
		APIKey:  cfg.Upstream.APIKey,
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.Upstream.Timeout,
	}, log)

	r, err := relay.New(relay.Config{
		ListenAddr: cfg.ListenAddr(),
		Model:      cfg.Upstream.Model,
		MaxTokens:  cfg.Upstream.MaxTokens,
	}, client, log)
	if err != nil {
		return fmt.Errorf("could not create relay: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("relay server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down chat relay")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := r.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("could not shut down relay: %w", err)
	}
	return <-errCh
}
