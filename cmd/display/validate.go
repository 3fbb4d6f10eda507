package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the config and every data source, and report problems",
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	c, err := buildComponents(cmd.Context(), cfg, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	out := cmd.OutOrStdout()
	day := time.Now().In(cfg.Location).YearDay()
	fmt.Fprintf(out, "S=%s D=%s, %d categories, day %d (%s)\n",
		c.clock.SubtitleInterval(), c.clock.DisplayInterval(), c.registry.Len(), day, cfg.Timezone)

	failed := 0
	for i, cat := range c.registry.Enabled() {
		yearly, err := c.sources[cat.Key].Load(cmd.Context())
		if err != nil {
			failed++
			fmt.Fprintf(out, "%2d. %-16s %-8s FAILED: %v\n", i+1, cat.Key, cat.Source, err)
			continue
		}
		today := "no content today"
		if rec := yearly.Lookup(day); !rec.IsEmpty() {
			today = "today: " + rec.Title
		}
		fmt.Fprintf(out, "%2d. %-16s %-8s %3d days, %s\n", i+1, cat.Key, cat.Source, len(yearly), today)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d categories failed to load", failed, c.registry.Len())
	}
	return nil
}
