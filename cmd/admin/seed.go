package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/kova/internal/template"
	templateStore "github.com/MrJamesThe3rd/kova/internal/template/store"
)

var flagCatalog string

var seedCmd = &cobra.Command{
	Use:   "seed-templates",
	Short: "Create or refresh the default milestone templates",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&flagCatalog, "file", "f", "", "YAML catalogue to seed instead of the built-in one")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	catalog, err := loadCatalog(flagCatalog)
	if err != nil {
		return err
	}

	n, err := template.NewService(templateStore.New(app.db), app.logger).SeedDefaults(cmd.Context(), catalog)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d default templates\n", n)

	return nil
}

func loadCatalog(path string) ([]*template.Template, error) {
	if path == "" {
		return template.DefaultCatalog()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalogue: %w", err)
	}
	defer f.Close()

	return template.LoadCatalog(f)
}
