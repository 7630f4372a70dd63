package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/dkramer/flightdeck/internal/models"
)

// duffelCabinParams translates the canonical cabin into Duffel's
// cabin_class request value.
var duffelCabinParams = map[models.Cabin]string{
	models.CabinEconomy:        "economy",
	models.CabinPremiumEconomy: "premium_economy",
	models.CabinBusiness:       "business",
	models.CabinFirst:          "first",
}

type duffelOfferRequestResponse struct {
	Data struct {
		Offers []struct {
			ID            string `json:"id"`
			TotalAmount   string `json:"total_amount"`
			TotalCurrency string `json:"total_currency"`
			Slices        []struct {
				Duration string `json:"duration"`
				Segments []struct {
					MarketingCarrier struct {
						IataCode string `json:"iata_code"`
					} `json:"marketing_carrier"`
					MarketingCarrierFlightNumber string `json:"marketing_carrier_flight_number"`
					Origin                       struct {
						IataCode string `json:"iata_code"`
					} `json:"origin"`
					Destination struct {
						IataCode string `json:"iata_code"`
					} `json:"destination"`
					DepartingAt string `json:"departing_at"`
					ArrivingAt  string `json:"arriving_at"`
					Duration    string `json:"duration"`
					Aircraft    struct {
						Name string `json:"name"`
					} `json:"aircraft"`
					Passengers []struct {
						CabinClass string `json:"cabin_class"`
					} `json:"passengers"`
				} `json:"segments"`
			} `json:"slices"`
		} `json:"offers"`
	} `json:"data"`
}

// DuffelProvider adapts the Duffel API: cash fares only. Duffel exposes
// neither award inventory nor booking-class seat counts.
type DuffelProvider struct {
	accessToken string
	baseURL     string
	client      *http.Client
}

func NewDuffelProvider(accessToken, baseURL string) (*DuffelProvider, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("duffel: access token is required")
	}
	if baseURL == "" {
		baseURL = "https://api.duffel.com"
	}
	return &DuffelProvider{
		accessToken: accessToken,
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      &http.Client{Timeout: 30 * time.Second},
	}, nil
}

var _ FlightProvider = (*DuffelProvider)(nil)

func (p *DuffelProvider) Name() string {
	return "duffel"
}

func (p *DuffelProvider) headers() map[string]string {
	return map[string]string{
		"Authorization":  "Bearer " + p.accessToken,
		"Duffel-Version": "v1",
	}
}

func (p *DuffelProvider) SearchFlights(ctx context.Context, q FlightQuery) ([]models.Offer, error) {
	passengers := make([]map[string]string, max(q.Adults, 1))
	for i := range passengers {
		passengers[i] = map[string]string{"type": "adult"}
	}

	request := map[string]any{
		"slices": []map[string]string{{
			"origin":         strings.ToUpper(q.Origin),
			"destination":    strings.ToUpper(q.Destination),
			"departure_date": q.DepartureDate,
		}},
		"passengers": passengers,
	}
	if cabinClass, ok := duffelCabinParams[q.Cabin]; ok {
		request["cabin_class"] = cabinClass
	}
	if q.DirectOnly {
		request["max_connections"] = 0
	}

	body := map[string]any{"data": request}

	var resp duffelOfferRequestResponse
	if err := postJSON(ctx, p.client, p.Name(), p.baseURL+"/air/offer_requests?return_offers=true", body, p.headers(), &resp); err != nil {
		return nil, err
	}

	offers := make([]models.Offer, 0, len(resp.Data.Offers))
	for _, item := range resp.Data.Offers {
		if len(item.Slices) == 0 {
			continue
		}

		itineraries := make([]models.Itinerary, 0, len(item.Slices))
		var parseErr error
		for _, slice := range item.Slices {
			segments := make([]models.Segment, 0, len(slice.Segments))
			for _, seg := range slice.Segments {
				dep, err := parseTime(seg.DepartingAt)
				if err != nil {
					parseErr = err
					break
				}
				arr, err := parseTime(seg.ArrivingAt)
				if err != nil {
					parseErr = err
					break
				}
				segDuration, _ := parseISODuration(seg.Duration)

				cabinToken := ""
				if len(seg.Passengers) > 0 {
					cabinToken = seg.Passengers[0].CabinClass
				}
				var aircraft *string
				if seg.Aircraft.Name != "" {
					name := seg.Aircraft.Name
					aircraft = &name
				}

				segments = append(segments, models.Segment{
					Carrier:       seg.MarketingCarrier.IataCode,
					FlightNumber:  seg.MarketingCarrierFlightNumber,
					Origin:        seg.Origin.IataCode,
					Destination:   seg.Destination.IataCode,
					DepartureTime: dep,
					ArrivalTime:   arr,
					Duration:      segDuration,
					CabinToken:    cabinToken,
					Aircraft:      aircraft,
				})
			}
			if parseErr != nil {
				break
			}
			sliceDuration, _ := parseISODuration(slice.Duration)
			itineraries = append(itineraries, models.Itinerary{Segments: segments, Duration: sliceDuration})
		}
		if parseErr != nil || len(itineraries) == 0 {
			continue
		}

		offer := models.Offer{
			ID:       item.ID,
			Provider: p.Name(),
			Price: models.Price{
				Amount:   cast.ToFloat64(item.TotalAmount),
				Currency: item.TotalCurrency,
			},
			Outbound: itineraries[0],
		}
		if len(itineraries) > 1 {
			ret := itineraries[1]
			offer.Return = &ret
		}
		offers = append(offers, offer)
	}

	// Duffel has no server-side airline filters or result cap; trim here
	// so every adapter honors the same query contract.
	filtered := offers[:0]
	for _, o := range offers {
		if carrierAllowed(o, q.IncludeAirlines, q.ExcludeAirlines) {
			filtered = append(filtered, o)
		}
	}
	if q.MaxResults > 0 && len(filtered) > q.MaxResults {
		filtered = filtered[:q.MaxResults]
	}
	return filtered, nil
}

func carrierAllowed(o models.Offer, include, exclude []string) bool {
	for _, itin := range o.Itineraries() {
		for _, seg := range itin.Segments {
			if len(include) > 0 && !containsFold(include, seg.Carrier) {
				return false
			}
			if len(exclude) > 0 && containsFold(exclude, seg.Carrier) {
				return false
			}
		}
	}
	return true
}

func containsFold(set []string, s string) bool {
	for _, v := range set {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func (p *DuffelProvider) GetAwardAvailability(ctx context.Context, q AwardQuery) ([]models.RawAward, error) {
	return nil, NewProviderError(p.Name(), ErrNotSupported)
}

func (p *DuffelProvider) GetFareClassAvailability(ctx context.Context, q FareClassQuery) ([]models.FareClassAvailability, error) {
	return nil, NewProviderError(p.Name(), ErrNotSupported)
}
