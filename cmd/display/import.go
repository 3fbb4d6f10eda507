package main

import (
	"fmt"

	"oftheday_display/internal/infra/database"
	"oftheday_display/internal/infra/datafile"
	"oftheday_display/internal/infra/logger"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:     "import",
	Short:   "Load a JSON or YAML data file into the content database",
	Example: `  DATABASE_URL=content.db display import --category word --file data/words.json`,
	RunE:    runImport,
}

func init() {
	importCmd.Flags().String("category", "", "Category key to import into")
	importCmd.Flags().String("file", "", "Data file (.json, .yaml or .yml)")
	_ = importCmd.MarkFlagRequired("category")
	_ = importCmd.MarkFlagRequired("file")
}

func runImport(cmd *cobra.Command, _ []string) error {
	category, _ := cmd.Flags().GetString("category")
	file, _ := cmd.Flags().GetString("file")

	cfg, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	log := logger.Component("import").WithFields(logrus.Fields{"category": category, "file": file})
	if _, ok := cfg.OfTheDay.Categories[category]; !ok {
		log.Warn("Category is not in the configuration; importing anyway")
	}

	yearly, err := datafile.NewFileSource(category, file, logrus.NewEntry(logger.Log)).Load(cmd.Context())
	if err != nil {
		return err
	}

	db, err := openDatabase(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := database.NewContentRepository(db, cfg.DatabaseDriver, log)
	n, err := repo.Import(cmd.Context(), category, yearly)
	if err != nil {
		return fmt.Errorf("import %s: %w", category, err)
	}
	counts, err := repo.Counts(cmd.Context())
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"rows": n, "total_days": counts[category]}).Info("Import complete")
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d days into %q (%d days stored)\n", n, category, counts[category])
	return nil
}
