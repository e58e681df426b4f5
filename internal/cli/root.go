// Package cli implements the zeppplayer command line.
package cli

import (
	"context"
	"os"
	"runtime"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/zeppplayer/zeppplayer/internal/browser"
	"github.com/zeppplayer/zeppplayer/internal/buildinfo"
	"github.com/zeppplayer/zeppplayer/internal/config"
	"github.com/zeppplayer/zeppplayer/internal/launcher"
	"github.com/zeppplayer/zeppplayer/internal/logger"
	"github.com/zeppplayer/zeppplayer/internal/probe"
	"github.com/zeppplayer/zeppplayer/internal/projects"
	"github.com/zeppplayer/zeppplayer/internal/server"
	"github.com/zeppplayer/zeppplayer/internal/tray"
	"github.com/zeppplayer/zeppplayer/internal/updater"
)

var (
	configPath string
	noTray     bool
)

var rootCmd = &cobra.Command{
	Use:   "zeppplayer",
	Short: "Run the ZeppPlayer watchface simulator",
	Long: `ZeppPlayer serves the simulator UI on a local port and lives in the
system tray. Starting it again while it runs just opens the browser.`,
	SilenceUsage: true,
	RunE:         runLauncher,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to launcher.yaml")
	rootCmd.Flags().BoolVar(&noTray, "no-tray", false, "run without a tray icon until interrupted")

	rootCmd.AddCommand(checkUpdateCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger logs to the console only. The launcher attaches the rotating
// file once this process owns the instance.
func newLogger(cfg *config.Config) *logger.Logger {
	return logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	}).WithInstance(uuid.NewString())
}

func runLauncher(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	layout := cfg.Layout()

	log := newLogger(cfg)
	defer log.Close()

	log.Info().
		Str("version", buildinfo.Version).
		Str("root", layout.Root).
		Str("projects", layout.ProjectsDir).
		Bool("portable", layout.IsPortable()).
		Msg("starting ZeppPlayer")

	fs := afero.NewOsFs()

	var watcher *projects.Watcher
	defer func() {
		if watcher != nil {
			watcher.Stop()
		}
	}()

	l := launcher.New(launcher.Options{
		AppURL:   cfg.Server.AppURL(),
		Version:  buildinfo.Version,
		GOOS:     runtime.GOOS,
		Prober:   probe.New(cfg.Server.Port, cfg.Probe.Timeout, log.WithComponent("probe").Logger),
		Preparer: config.NewPreparer(fs, layout),
		Browser:  browser.New(),
		OpenLog: func() error {
			return log.AttachFile(layout.LogsDir())
		},
		OpenPrefs: func() (tray.Preferences, error) {
			prefs, err := config.OpenPrefs(fs, layout.PreferencesFile())
			if err != nil {
				return nil, err
			}
			return prefs, nil
		},
		StartServer: func() (launcher.WebServer, error) {
			index := projects.NewIndex(layout.ProjectsDir)
			watcher = startWatcher(index, log)

			srv, err := server.New(server.Options{
				Address: cfg.Server.Address(),
				Layout:  layout,
				Index:   index,
				Logger:  log.WithComponent("server").Logger,
			})
			if err != nil {
				return nil, err
			}
			return srv, nil
		},
		NewTray: func(items []tray.Item) launcher.Tray {
			if noTray {
				return launcher.NewHeadless(log.WithComponent("tray").Logger)
			}
			icon, err := tray.LoadIcon(layout.Root)
			if err != nil {
				log.Warn().Err(err).Msg("tray icon not found")
			}
			return tray.New(tray.NewSystray(), icon, "ZeppPlayer", items, log.WithComponent("tray").Logger)
		},
		NewChecker: func(onAvailable func(*updater.UpdateResult)) launcher.UpdateChecker {
			client := updater.NewClient(cfg.Updates.Repository, cfg.Updates.Timeout)
			return updater.NewChecker(client, log.WithComponent("updater").Logger, onAvailable)
		},
		Exit:   os.Exit,
		Logger: log.Logger,
	})

	if err := l.Run(cmd.Context()); err != nil {
		log.Error().Err(err).Msg("launcher failed")
		return err
	}
	return nil
}

// startWatcher keeps the project index in sync with the projects directory.
// A watcher failure leaves a one-shot index.
func startWatcher(index *projects.Index, log *logger.Logger) *projects.Watcher {
	w, err := projects.NewWatcher(index, log.WithComponent("projects").Logger)
	if err == nil {
		err = w.Start()
	}
	if err != nil {
		log.Warn().Err(err).Msg("project watcher unavailable")
		if w != nil {
			w.Stop()
		}
		if err := index.Refresh(); err != nil {
			log.Warn().Err(err).Msg("failed to index projects")
		}
		return nil
	}
	return w
}
