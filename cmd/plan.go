package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/eddm-planner/internal/export"
	"github.com/sells-group/eddm-planner/internal/model"
	"github.com/sells-group/eddm-planner/internal/roi"
	"github.com/sells-group/eddm-planner/internal/session"
)

var (
	planAddress  string
	planRadius   float64
	planZIPs     []string
	planPolygon  string
	planDelivery string
	planProduct  string
	planIndustry string
	planXLSX     string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Select routes around an address or ZIP list and price the campaign",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if planAddress == "" && len(planZIPs) == 0 {
			return eris.New("either --address or --zips is required")
		}

		dt, err := model.ParseDeliveryType(planDelivery)
		if err != nil {
			return err
		}

		env, err := initPlanner(ctx, "plan")
		if err != nil {
			return err
		}
		defer env.Close()

		table, err := env.table(planProduct)
		if err != nil {
			return err
		}

		sess := session.New()
		sess.SetDeliveryType(dt)

		zips := planZIPs
		if planAddress != "" {
			loc, err := env.geocoder.Geocode(ctx, planAddress)
			if err != nil {
				return err
			}
			if !loc.Matched {
				return eris.Errorf("address %q did not geocode; try adding city, state, and ZIP", planAddress)
			}
			zap.L().Info("address geocoded",
				zap.String("matched", loc.MatchedAddress),
				zap.Float64("lat", loc.Location.Lat),
				zap.Float64("lng", loc.Location.Lng),
			)

			if err := sess.SetCircle(loc.Location, planRadius); err != nil {
				return err
			}
			if len(zips) == 0 {
				zips, err = env.eddm.ZIPsNear(ctx, loc.Location.Lat, loc.Location.Lng, planRadius)
				if err != nil {
					return err
				}
				if len(zips) == 0 {
					return eris.Errorf("no ZIPs within %.1f miles of %s", planRadius, loc.MatchedAddress)
				}
			}
		}

		if planPolygon != "" {
			vertices, err := parsePolygon(planPolygon)
			if err != nil {
				return err
			}
			if err := sess.SetPolygon(vertices); err != nil {
				return err
			}
		}

		routesByZIP, err := env.fetchRoutes(ctx, zips)
		if err != nil {
			return err
		}
		for zip, routes := range routesByZIP {
			sess.MergeRoutes(zip, routes)
		}

		sess.SelectAll()
		selected := sess.SelectedRoutes()
		if len(selected) == 0 {
			return eris.New("no routes fall inside the selected region")
		}

		quote := table.PriceFor(sess.SelectedAddressCount())
		writeQuote(os.Stdout, quote, len(selected))

		var report *roi.Report
		if planIndustry != "" {
			profile, err := env.profile(planIndustry)
			if err != nil {
				return err
			}
			r := roi.Project(quote.Quantity, quote.Total, profile)
			report = &r
			writeROIReport(os.Stdout, r)
		}

		if planXLSX != "" {
			wb := export.QuoteWorkbook{
				Product:  planProduct,
				Delivery: dt,
				Routes:   selected,
				Quote:    quote,
				ROI:      report,
			}
			if err := export.WriteQuoteXLSX(planXLSX, wb); err != nil {
				return err
			}
			zap.L().Info("quote workbook written", zap.String("path", planXLSX))
		}
		return nil
	},
}

// parsePolygon parses "lat,lng;lat,lng;..." into polygon vertices.
func parsePolygon(s string) ([]model.LatLng, error) {
	var vertices []model.LatLng
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, ",", 2)
		if len(parts) != 2 {
			return nil, eris.Errorf("invalid polygon vertex %q; expected lat,lng", pair)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid latitude in %q", pair)
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid longitude in %q", pair)
		}
		vertices = append(vertices, model.LatLng{Lat: lat, Lng: lng})
	}
	if len(vertices) < 3 {
		return nil, eris.Errorf("polygon needs at least 3 vertices, got %d", len(vertices))
	}
	return vertices, nil
}

func init() {
	planCmd.Flags().StringVar(&planAddress, "address", "", "business address to center the search on")
	planCmd.Flags().Float64Var(&planRadius, "radius", 5, "search radius in miles around the address")
	planCmd.Flags().StringSliceVar(&planZIPs, "zips", nil, "explicit ZIP codes (skips address discovery)")
	planCmd.Flags().StringVar(&planPolygon, "polygon", "", "drawn region as lat,lng;lat,lng;... (overrides the radius)")
	planCmd.Flags().StringVar(&planDelivery, "delivery", "all", "delivery type: all, residential, or business")
	planCmd.Flags().StringVar(&planProduct, "product", "turnkey", "product tier table: turnkey or print_only")
	planCmd.Flags().StringVar(&planIndustry, "industry", "", "industry profile for ROI projection")
	planCmd.Flags().StringVar(&planXLSX, "xlsx", "", "write the quote workbook to this path")
	rootCmd.AddCommand(planCmd)
}
