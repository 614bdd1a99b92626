package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"flavorlab-enrichment/internal/core/batch"
	"flavorlab-enrichment/internal/infrastructure/config"
	"flavorlab-enrichment/internal/infrastructure/output"
	"flavorlab-enrichment/internal/infrastructure/reference"
	"flavorlab-enrichment/internal/infrastructure/storage"
	"flavorlab-enrichment/internal/pkg/common"

	"github.com/spf13/cobra"
)

type runFlags struct {
	dbPath          string
	ingredientsFile string
	compounds       string
	vitamins        string
	outDir          string
	workers         int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "enrich",
		Short:        "Ingredient enrichment batch tool",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Enrich every ingredient and write the enrichment and gap report files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			applyFlags(cmd, cfg, flags)

			if err := common.InitLogger(cfg.LogLevel, cfg.LogDir); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer common.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, err := runBatch(ctx, cfg)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"Generated ingredient enrichment for %d items. Compound gaps: %d | Vitamin gaps: %d\n",
				result.Report.TotalIngredients,
				result.Report.IngredientsWithCompoundGaps,
				result.Report.IngredientsWithVitaminGaps,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.dbPath, "db", "", "SQLite database holding the entities table")
	cmd.Flags().StringVar(&flags.ingredientsFile, "ingredients", "", "JSON file of ingredients (overrides --db)")
	cmd.Flags().StringVar(&flags.compounds, "compounds", "", "compound catalogue path or URL")
	cmd.Flags().StringVar(&flags.vitamins, "vitamins", "", "vitamin/mineral catalogue path or URL")
	cmd.Flags().StringVar(&flags.outDir, "out", "", "output directory")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "pipeline workers (0 = number of CPUs)")

	return cmd
}

// applyFlags 只覆寫使用者明確指定的旗標
func applyFlags(cmd *cobra.Command, cfg *config.Config, flags *runFlags) {
	if cmd.Flags().Changed("db") {
		cfg.Storage.DBPath = flags.dbPath
	}
	if cmd.Flags().Changed("ingredients") {
		cfg.Storage.IngredientsFile = flags.ingredientsFile
	}
	if cmd.Flags().Changed("compounds") {
		cfg.Reference.Compounds = flags.compounds
	}
	if cmd.Flags().Changed("vitamins") {
		cfg.Reference.Vitamins = flags.vitamins
	}
	if cmd.Flags().Changed("out") {
		cfg.Output.Dir = flags.outDir
	}
	if cmd.Flags().Changed("workers") {
		cfg.Pipeline.Workers = flags.workers
	}
}

func runBatch(ctx context.Context, cfg *config.Config) (*batch.Result, error) {
	ingredients, err := storage.Open(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open ingredient source: %w", err)
	}
	defer ingredients.Close()

	compounds, err := reference.NewSource(cfg.Reference.Compounds, cfg.Reference.HTTPTimeout)
	if err != nil {
		return nil, err
	}
	vitamins, err := reference.NewSource(cfg.Reference.Vitamins, cfg.Reference.HTTPTimeout)
	if err != nil {
		return nil, err
	}

	service := batch.NewService(batch.Options{
		Ingredients: ingredients,
		Compounds:   compounds,
		Vitamins:    vitamins,
		Writer:      output.NewWriter(cfg.Output.Dir),
		Workers:     cfg.Pipeline.Workers,
	})
	return service.Run(ctx)
}
