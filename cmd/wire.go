package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/bnema/focus-budget-cli/internal/adapters/config"
	"github.com/bnema/focus-budget-cli/internal/adapters/metrics"
	cyclerender "github.com/bnema/focus-budget-cli/internal/adapters/render/cycle"
	sqliterepo "github.com/bnema/focus-budget-cli/internal/adapters/repo/sqlite"
	tomlrepo "github.com/bnema/focus-budget-cli/internal/adapters/repo/toml"
	"github.com/bnema/focus-budget-cli/internal/application"
	"github.com/bnema/focus-budget-cli/internal/domain"
	"github.com/bnema/focus-budget-cli/internal/ports"
	"github.com/spf13/viper"
)

type app struct {
	settings      config.Settings
	viper         *viper.Viper
	logger        *slog.Logger
	cycleRenderer func(domain.CycleResult) (string, error)
	cycleView     func(domain.CycleResult) string
	historyView   func([]domain.HistoryEntry) (string, error)
	now           func() time.Time
}

func wireApp(v *viper.Viper, configPath string, logOutput io.Writer) (*app, error) {
	settings, err := config.Load(v, configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(settings.Log.Level))); err != nil {
		return nil, fmt.Errorf("%w: log level %q", domain.ErrConfiguration, settings.Log.Level)
	}

	return &app{
		settings:      settings,
		viper:         v,
		logger:        slog.New(slog.NewTextHandler(logOutput, &slog.HandlerOptions{Level: level})),
		cycleRenderer: cyclerender.Render,
		cycleView:     cyclerender.View,
		historyView:   cyclerender.RenderHistory,
		now:           time.Now,
	}, nil
}

func (a *app) newOrchestrator(opts ...application.Option) (*application.Orchestrator, error) {
	base := []application.Option{application.WithLogger(a.logger)}
	if a.settings.Boost.Source == config.BoostRuntime {
		base = append(base, application.WithNumericSource(metrics.NewRuntimeSource()))
	}

	orchestrator, err := application.New(a.settings.Engine, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("wire orchestrator: %w", err)
	}

	return orchestrator, nil
}

// withHistory opens the configured history repository for the duration of fn.
func (a *app) withHistory(fn func(ports.HistoryRepository) error) error {
	switch a.settings.History.Backend {
	case config.BackendSQLite:
		repo, err := sqliterepo.NewRepository(a.viper)
		if err != nil {
			return fmt.Errorf("wire sqlite history: %w", err)
		}
		defer func() {
			if closeErr := repo.Close(); closeErr != nil {
				a.logger.Warn("close history db", "path", repo.Path(), "error", closeErr)
			}
		}()
		return fn(repo)
	default:
		repo, err := tomlrepo.NewRepository(a.viper)
		if err != nil {
			return fmt.Errorf("wire toml history: %w", err)
		}
		return fn(repo)
	}
}
