package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zeppplayer/zeppplayer/internal/config"
	"github.com/zeppplayer/zeppplayer/internal/updater"
)

var checkUpdateCmd = &cobra.Command{
	Use:   "check-update",
	Short: "Check GitHub for a newer ZeppPlayer release",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		fmt.Println(styleHint.Render("Checking for updates..."))

		client := updater.NewClient(cfg.Updates.Repository, cfg.Updates.Timeout)
		result, err := client.CheckForUpdate(cmd.Context())
		if errors.Is(err, updater.ErrNoRelease) {
			fmt.Println(styleWarning.Render("No releases published yet."))
			return nil
		}
		if err != nil {
			fmt.Println(styleError.Render("Update check failed."))
			return fmt.Errorf("failed to check for updates: %w", err)
		}

		if !result.Available {
			fmt.Printf("%s %s\n", styleSuccess.Render("Already up to date"), styleVersion.Render("v"+result.CurrentVersion))
			return nil
		}

		fmt.Printf("%s v%s → %s\n",
			styleUpdate.Render("Update available:"),
			result.CurrentVersion,
			styleVersion.Render("v"+result.LatestVersion),
		)
		fmt.Printf("  %s %s\n", styleLabel.Render("Release"), styleValue.Render(result.ReleaseURL))
		return nil
	},
}
