package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/sfh/internal/config"
	"github.com/Dicklesworthstone/sfh/internal/output"
	"github.com/Dicklesworthstone/sfh/internal/tui/dashboard"
	"github.com/Dicklesworthstone/sfh/internal/tui/icons"
	"github.com/Dicklesworthstone/sfh/internal/tui/theme"
	"github.com/Dicklesworthstone/sfh/internal/updater"
	"github.com/Dicklesworthstone/sfh/internal/util"
	"github.com/Dicklesworthstone/sfh/internal/worker"
)

func newDashboardCmd() *cobra.Command {
	var (
		refresh  string
		simulate bool
		seed     int64
	)

	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"dash", "ui"},
		Short:   "Open the live account dashboard",
		Long: `Open the live account dashboard.

Every account gets a row with its state, the countdown to its next free arena
fight and whether auto-battle is on. Rows are grouped by server; each server
line shows its Hall of Fame crawl progress.

With --simulate, simulated workers drive the accounts and crawls so the
dashboard can be tried without a game client.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isInteractive(os.Stdout) {
				return output.NewCLIError("the dashboard needs a terminal").
					WithCode("NOT_A_TTY").
					WithHint("Use 'sfh status' for scripts and pipes")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			interval := cfg.Dashboard.RefreshInterval.Duration
			pinned := refresh != ""
			if pinned {
				interval, err = util.ParseInterval(refresh, time.Millisecond, "refresh", cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}

			return runDashboard(cmd.Context(), cfg, dashboardRun{
				interval: interval,
				pinned:   pinned,
				simulate: simulate,
				seed:     seed,
			})
		},
	}

	cmd.Flags().StringVar(&refresh, "refresh", "", "Redraw interval, e.g. 250ms or 1s (default from config)")
	cmd.Flags().BoolVar(&simulate, "simulate", false, "Drive accounts and crawls with simulated workers")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed for --simulate (0 picks one)")
	return cmd
}

type dashboardRun struct {
	interval time.Duration
	// pinned is set when --refresh overrides the config
	pinned   bool
	simulate bool
	seed     int64
}

func runDashboard(parent context.Context, cfg *config.Config, run dashboardRun) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The alternate screen owns stderr; log to a file instead
	logPath := config.LogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err == nil {
		if f, err := tea.LogToFile(logPath, "sfh"); err == nil {
			defer f.Close()
		}
	}

	entries := cfg.Accounts
	if len(entries) == 0 {
		if !run.simulate {
			return output.NoAccountsError()
		}
		entries = demoAccounts
	}
	reg := buildRegistry(entries)

	logger := newEventsLogger(cfg)
	defer logger.Close()
	ctl := &worker.Control{Registry: reg, Log: logger}

	workersDone := make(chan error, 1)
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()
	if run.simulate {
		opts := worker.DefaultSimOptions()
		opts.Seed = run.seed
		opts.FailRate = 0.002
		opts.PanicRate = 0.001
		sim := &simulation{
			cfg:        cfg,
			reg:        reg,
			logger:     logger,
			opts:       opts,
			fetchDelay: 60 * time.Millisecond,
			sup:        worker.NewSupervisor(cfg.MaxThreads, logger),
		}
		ctl.Restart = sim.restart(workerCtx)
		go func() { workersDone <- sim.run(workerCtx) }()
	} else {
		restoreCrawls(reg, cfg.Crawl.StateDir)
		workersDone <- nil
	}

	var updates <-chan *updater.UpdateInfo
	if cfg.CheckUpdates {
		updates = updater.NewChecker().CheckAsync(ctx, Version)
	}

	styles := theme.NewStyles(themeFor(cfg))
	opts := dashboard.Options{
		Source:          ctl,
		RefreshInterval: run.interval,
		Styles:          &styles,
		Icons:           icons.Detect(cfg.Dashboard.Icons),
		Updates:         updates,
		IgnoredVersion:  cfg.IgnoredVersion,
		OnIgnore: func(version string) {
			cfg.IgnoredVersion = version
			if err := config.Save(configPath(), cfg); err != nil {
				log.Printf("saving ignored version: %v", err)
			}
		},
	}

	var stopWatch func()
	err := dashboard.Run(ctx, opts, func(p *tea.Program) {
		stopWatch = watchConfig(p, run.pinned)
	})
	if stopWatch != nil {
		stopWatch()
	}

	cancelWorkers()
	if werr := <-workersDone; werr != nil {
		log.Printf("workers stopped: %v", werr)
	}
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// watchConfig forwards config edits to the running dashboard. A pinned
// refresh interval wins over the file.
func watchConfig(p *tea.Program, pinned bool) func() {
	stop, err := config.Watch(configPath(), func(cfg *config.Config) {
		styles := theme.NewStyles(themeFor(cfg))
		msg := dashboard.ReloadMsg{
			Styles: &styles,
			Icons:  icons.Detect(cfg.Dashboard.Icons),
		}
		if !pinned {
			msg.RefreshInterval = cfg.Dashboard.RefreshInterval.Duration
		}
		p.Send(msg)
	})
	if err != nil {
		log.Printf("config reload disabled: %v", err)
		return nil
	}
	return stop
}

// themeFor maps the configured theme to a terminal palette.
func themeFor(cfg *config.Config) theme.Theme {
	if os.Getenv("SFH_PALETTE") != "" {
		return theme.Current()
	}
	info, ok := config.LookupTheme(cfg.Theme)
	if !ok {
		return theme.Current()
	}
	return theme.FromName(info.Palette)
}

func isInteractive(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
