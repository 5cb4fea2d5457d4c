package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jask/biovalue/internal/config"
	"github.com/jask/biovalue/internal/nav"
	"github.com/jask/biovalue/internal/stats"
	"github.com/jask/biovalue/internal/tui"
	"github.com/jask/biovalue/internal/wizard"
)

func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	env, err := openEnv(ctx, opts.configPath)
	if err != nil {
		return err
	}
	defer env.Close()
	log := env.log

	start, err := nav.ParseTab(env.cfg.UI.StartTab)
	if err != nil {
		log.Warn("bad start tab, using default", zap.Error(err))
	}
	navigator := nav.New(
		nav.WithStart(start),
		nav.WithDelay(env.cfg.Navigation.TransitionDelay),
		nav.WithHistoryLimit(env.cfg.Navigation.HistoryLimit),
		nav.WithLogger(log.Named("nav")),
		nav.WithObserver(env.analytics.Observe),
	)
	defer navigator.Close()

	wiz := wizard.New(env.catalog, wizard.WithSink(env.recorder), wizard.WithLogger(log.Named("wizard")))

	initial, err := initialSummary(ctx, env)
	if err != nil {
		return err
	}
	refresher := stats.New(initial,
		stats.WithInterval(env.cfg.Stats.Interval),
		stats.WithLogger(log.Named("stats")),
	)

	saveCfg := config.Save
	if opts.configPath != "" {
		saveCfg = func(c config.Config) error { return config.SaveFile(c, opts.configPath) }
	}
	app, err := tui.New(ctx, env.cfg,
		tui.Deps{Nav: navigator, Wizard: wiz, Stats: refresher},
		tui.Services{
			Catalog:     env.catalog,
			Recorder:    env.recorder,
			Import:      env.importer,
			Maintenance: env.maintenance,
			Analytics:   env.analytics,
		},
		tui.WithLogger(log.Named("tui")),
		tui.WithConfigSaver(saveCfg),
	)
	if err != nil {
		return err
	}
	unsubscribe := app.Subscribe()
	defer unsubscribe()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return refresher.Run(gctx)
	})
	g.Go(func() error {
		// quitting the UI ends the refresher too
		defer cancel()
		p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(gctx))
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("tui: %w", err)
		}
		return nil
	})
	err = g.Wait()
	log.Info("shutting down", zap.Error(err))
	return err
}

// initialSummary seeds the dashboard from storage. Pipeline value starts at
// the total tracked cash and active deals at the companies still burning it.
func initialSummary(ctx context.Context, env *appEnv) (stats.Summary, error) {
	companies, err := env.catalog.List(ctx)
	if err != nil {
		return stats.Summary{}, fmt.Errorf("list companies: %w", err)
	}
	n, avg, err := env.evaluations.Aggregate(ctx)
	if err != nil {
		return stats.Summary{}, fmt.Errorf("aggregate evaluations: %w", err)
	}
	return summarize(companies, n, avg), nil
}

func summarize(companies []wizard.Company, evaluations int, avg float64) stats.Summary {
	s := stats.Summary{Companies: len(companies), Evaluations: evaluations, AvgScore: avg}
	for _, c := range companies {
		if c.CashPosition.Valid {
			f, _ := c.CashPosition.Decimal.Float64()
			s.PipelineValue += f
		}
		if c.BurnRate.Valid && c.BurnRate.Decimal.IsPositive() {
			s.ActiveDeals++
		}
	}
	return s
}
