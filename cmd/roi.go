package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/eddm-planner/internal/roi"
)

var (
	roiAddresses int
	roiCost      float64
	roiIndustry  string
)

var roiCmd = &cobra.Command{
	Use:   "roi",
	Short: "Project campaign ROI scenarios for an industry",
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles, err := roi.Profiles(cfg.ROI.ProfilesPath)
		if err != nil {
			return err
		}
		profile, ok := profiles[roiIndustry]
		if !ok {
			return eris.Errorf("unknown industry %q (have: %v)", roiIndustry, roi.ProfileIDs(profiles))
		}

		writeROIReport(os.Stdout, roi.Project(roiAddresses, roiCost, profile))
		return nil
	},
}

func init() {
	roiCmd.Flags().IntVar(&roiAddresses, "addresses", 0, "total addresses mailed (required)")
	roiCmd.Flags().Float64Var(&roiCost, "cost", 0, "total campaign cost in dollars (required)")
	roiCmd.Flags().StringVar(&roiIndustry, "industry", "", "industry profile ID (required)")
	_ = roiCmd.MarkFlagRequired("addresses")
	_ = roiCmd.MarkFlagRequired("cost")
	_ = roiCmd.MarkFlagRequired("industry")
	rootCmd.AddCommand(roiCmd)
}
