package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/eddm-planner/internal/pricing"
)

var (
	priceQuantity int
	priceProduct  string
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Price an explicit quantity against a product tier table",
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := pricing.LoadTables(cfg.Pricing.TablesPath)
		if err != nil {
			return err
		}
		table, ok := tables[priceProduct]
		if !ok {
			return errUnknownProduct(priceProduct, tables)
		}

		writeQuote(os.Stdout, table.PriceFor(priceQuantity), -1)
		return nil
	},
}

func init() {
	priceCmd.Flags().IntVar(&priceQuantity, "quantity", 0, "address count to price (required)")
	priceCmd.Flags().StringVar(&priceProduct, "product", "turnkey", "product tier table: turnkey or print_only")
	_ = priceCmd.MarkFlagRequired("quantity")
	rootCmd.AddCommand(priceCmd)
}
