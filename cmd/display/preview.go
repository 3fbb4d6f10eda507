package main

import (
	"encoding/json"
	"fmt"
	"time"

	"oftheday_display/internal/app"
	"oftheday_display/internal/infra/config"
	"oftheday_display/internal/infra/terminal"

	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show what the display would draw at a given instant",
	Long: `Resolves the frame for --at as if the display had been started at --start.
--at defaults to now; --start defaults to midnight of --at's day in the configured timezone.`,
	Example: `  display preview --at 2025-07-19T12:00:25Z
  display preview --at 2025-07-19T12:00:25Z --start 2025-07-19T12:00:00Z --json`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("at", "", "Instant to preview (RFC3339)")
	previewCmd.Flags().String("start", "", "Rotation start (RFC3339)")
	previewCmd.Flags().Bool("json", false, "Print the frame as JSON")
}

func runPreview(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	at, start, err := previewWindow(cmd, cfg)
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	c, err := buildComponents(cmd.Context(), cfg, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	manager, err := app.NewOfTheDayManager(app.ManagerDeps{
		Registry: c.registry,
		Clock:    c.clock,
		Store:    c.store,
		Location: cfg.Location,
		Start:    start,
	})
	if err != nil {
		return err
	}

	frame, ok, err := manager.Preview(cmd.Context(), at)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !ok {
		fmt.Fprintf(out, "Nothing to show at %s (no content for the active category today)\n", at.Format(time.RFC3339))
		return nil
	}
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(frame)
	}
	fmt.Fprintln(out, terminal.NewSink(out).View(frame))
	fmt.Fprintf(out, "next change in %s\n", c.clock.NextChange(at.Sub(start)))
	return nil
}

func previewWindow(cmd *cobra.Command, cfg *config.AppConfig) (time.Time, time.Time, error) {
	at := time.Now()
	if raw, _ := cmd.Flags().GetString("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--at: %w", err)
		}
		at = parsed
	}

	local := at.In(cfg.Location)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, cfg.Location)
	if raw, _ := cmd.Flags().GetString("start"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--start: %w", err)
		}
		start = parsed
	}
	return at, start, nil
}
