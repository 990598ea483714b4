package cli

import (
	"context"

	"go.uber.org/zap"

	"github.com/devbush/call2insights/internal/adapters/csvfile"
	"github.com/devbush/call2insights/internal/adapters/gemini"
	"github.com/devbush/call2insights/internal/config"
	"github.com/devbush/call2insights/internal/logging"
	"github.com/devbush/call2insights/internal/ports"
)

// App holds all application dependencies.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Reader   ports.SourceReader
	Exporter ports.Exporter
}

// NewApp creates and wires up all dependencies. Each command builds
// its own App; there is no process-wide instance.
func NewApp(verbose bool) (*App, error) {
	if err := config.EnsureDirs(); err != nil {
		return nil, err
	}

	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(config.LogsDir(), verbose)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Reader:   csvfile.NewReader(cfg.Limits.MaxUploadBytes),
		Exporter: csvfile.NewWriter(),
	}, nil
}

// NewAnalyzer builds the Gemini client from the loaded config. The
// model argument overrides the configured default when non-empty.
func (a *App) NewAnalyzer(ctx context.Context, model string) (ports.Analyzer, error) {
	timeout, err := a.Config.GetTimeout()
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = a.Config.Defaults.Model
	}
	return gemini.New(ctx, gemini.Config{
		APIKey:     config.APIKey(),
		Model:      model,
		Timeout:    timeout,
		MaxRetries: a.Config.Defaults.MaxRetries,
	}, a.Logger)
}

// Close flushes the logger.
func (a *App) Close() {
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}
