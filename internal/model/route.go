// Package model defines the core domain types for campaign planning:
// carrier routes, regions of interest, and route selections.
package model

import (
	"github.com/rotisserie/eris"
)

// LatLng is a WGS-84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DeliveryType selects which address counts a campaign targets.
type DeliveryType string

const (
	DeliveryAll         DeliveryType = "all"
	DeliveryResidential DeliveryType = "residential"
	DeliveryBusiness    DeliveryType = "business"
)

// ParseDeliveryType validates and normalizes a delivery type string.
func ParseDeliveryType(s string) (DeliveryType, error) {
	switch DeliveryType(s) {
	case DeliveryAll, DeliveryResidential, DeliveryBusiness:
		return DeliveryType(s), nil
	case "":
		return DeliveryAll, nil
	}
	return "", eris.Errorf("model: unknown delivery type %q", s)
}

// Demographics holds optional upstream demographic attributes for a route.
// Fields are nil when the upstream source did not supply them; zero is a
// valid value and must not be conflated with absent.
type Demographics struct {
	AverageIncome *float64 `json:"average_income,omitempty"`
	MedianAge     *float64 `json:"median_age,omitempty"`
}

// Route is a USPS carrier route or ZCTA-derived area: one or more closed
// coordinate rings plus deliverable address counts. Routes are immutable
// once created; a re-fetch of their ZIP replaces them wholesale.
type Route struct {
	ID               string        `json:"id"`
	ZIPCode          string        `json:"zip_code"`
	Coordinates      [][]LatLng    `json:"coordinates"`
	Centroid         LatLng        `json:"centroid"`
	ResidentialCount int           `json:"residential_count"`
	BusinessCount    int           `json:"business_count"`
	Demographics     *Demographics `json:"demographics,omitempty"`
}

// NewRoute constructs a Route and derives its centroid as the unweighted
// arithmetic mean of every point across all rings. The mean is not
// area-weighted; downstream intersection heuristics are tuned against this
// definition, so it must not be "improved."
func NewRoute(id, zip string, rings [][]LatLng, residential, business int, demo *Demographics) Route {
	r := Route{
		ID:               id,
		ZIPCode:          zip,
		Coordinates:      rings,
		ResidentialCount: residential,
		BusinessCount:    business,
		Demographics:     demo,
	}

	var sumLat, sumLng float64
	var n int
	for _, ring := range rings {
		for _, pt := range ring {
			sumLat += pt.Lat
			sumLng += pt.Lng
			n++
		}
	}
	if n > 0 {
		r.Centroid = LatLng{Lat: sumLat / float64(n), Lng: sumLng / float64(n)}
	}
	return r
}

// TotalCount returns the combined residential and business address count.
func (r Route) TotalCount() int {
	return r.ResidentialCount + r.BusinessCount
}

// CountFor returns the address count relevant to the given delivery type.
func (r Route) CountFor(dt DeliveryType) int {
	switch dt {
	case DeliveryResidential:
		return r.ResidentialCount
	case DeliveryBusiness:
		return r.BusinessCount
	default:
		return r.TotalCount()
	}
}
