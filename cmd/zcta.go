package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/eddm-planner/internal/zcta"
)

var (
	zctaShpPath string
	zctaCode    string
)

var zctaCmd = &cobra.Command{
	Use:   "zcta",
	Short: "Manage ZCTA boundary shapefiles",
}

var zctaDownloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download ZCTA boundaries from the Census TIGER FTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("zcta"); err != nil {
			return err
		}

		shpPath, err := zcta.Download(cmd.Context(), cfg.ZCTA)
		if err != nil {
			return err
		}
		zap.L().Info("zcta shapefile ready", zap.String("path", shpPath))
		return nil
	},
}

var zctaLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load ZCTA boundaries and inspect one ZCTA's shape",
	RunE: func(cmd *cobra.Command, args []string) error {
		boundaries, err := zcta.Load(zctaShpPath)
		if err != nil {
			return err
		}
		p := newPrinter()
		p.Fprintf(os.Stdout, "Loaded %d ZCTA boundaries from %s\n", len(boundaries), zctaShpPath)

		if zctaCode == "" {
			return nil
		}
		b, ok := zcta.Find(boundaries, zctaCode)
		if !ok {
			return eris.Errorf("zcta %s not found in %s", zctaCode, zctaShpPath)
		}

		route := b.Route(nil)
		p.Fprintf(os.Stdout, "ZCTA %s: %d rings, centroid %.5f,%.5f\n",
			b.ZCTA, len(b.Rings), route.Centroid.Lat, route.Centroid.Lng)
		for i, ring := range b.Rings {
			p.Fprintf(os.Stdout, "  ring %d: %d vertices\n", i, len(ring))
		}
		return nil
	},
}

func init() {
	zctaLoadCmd.Flags().StringVar(&zctaShpPath, "shp", "", "path to the ZCTA shapefile (required)")
	zctaLoadCmd.Flags().StringVar(&zctaCode, "zcta", "", "print details for this ZCTA code")
	_ = zctaLoadCmd.MarkFlagRequired("shp")

	zctaCmd.AddCommand(zctaDownloadCmd)
	zctaCmd.AddCommand(zctaLoadCmd)
	rootCmd.AddCommand(zctaCmd)
}
