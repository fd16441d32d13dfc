package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/eddm-planner/internal/model"
	"github.com/sells-group/eddm-planner/internal/optimizer"
	"github.com/sells-group/eddm-planner/internal/session"
)

var (
	optimizeZIPs     []string
	optimizeBudget   float64
	optimizeDelivery string
	optimizeProduct  string
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Pick the route subset that maximizes addresses under a budget",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if optimizeBudget <= 0 {
			return eris.Errorf("budget must be positive, got %v", optimizeBudget)
		}

		dt, err := model.ParseDeliveryType(optimizeDelivery)
		if err != nil {
			return err
		}

		env, err := initPlanner(ctx, "plan")
		if err != nil {
			return err
		}
		defer env.Close()

		table, err := env.table(optimizeProduct)
		if err != nil {
			return err
		}

		routesByZIP, err := env.fetchRoutes(ctx, optimizeZIPs)
		if err != nil {
			return err
		}

		sess := session.New()
		sess.SetDeliveryType(dt)
		for zip, routes := range routesByZIP {
			sess.MergeRoutes(zip, routes)
		}

		res := optimizer.Optimize(sess.InScope(), dt, table, optimizeBudget)
		writeOptimizeResult(os.Stdout, res)
		return nil
	},
}

func init() {
	optimizeCmd.Flags().StringSliceVar(&optimizeZIPs, "zips", nil, "ZIP codes to draw candidate routes from (required)")
	optimizeCmd.Flags().Float64Var(&optimizeBudget, "budget", 0, "campaign budget in dollars (required)")
	optimizeCmd.Flags().StringVar(&optimizeDelivery, "delivery", "all", "delivery type: all, residential, or business")
	optimizeCmd.Flags().StringVar(&optimizeProduct, "product", "turnkey", "product tier table: turnkey or print_only")
	_ = optimizeCmd.MarkFlagRequired("zips")
	_ = optimizeCmd.MarkFlagRequired("budget")
	rootCmd.AddCommand(optimizeCmd)
}
