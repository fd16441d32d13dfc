package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/eddm-planner/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "eddm-planner",
	Short: "USPS EDDM campaign planning toolkit",
	Long:  "Selects USPS carrier routes by radius, polygon, or ZIP list, prices campaigns against tiered product tables, optimizes selections under a budget, and projects ROI scenarios.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
