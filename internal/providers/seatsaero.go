package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/dkramer/flightdeck/internal/models"
)

// seatsAeroCabinParams translates the canonical cabin into the cabins
// query parameter seats.aero expects.
var seatsAeroCabinParams = map[models.Cabin]string{
	models.CabinEconomy:        "economy",
	models.CabinPremiumEconomy: "premium",
	models.CabinBusiness:       "business",
	models.CabinFirst:          "first",
}

type seatsAeroSearchResponse struct {
	Data []map[string]any `json:"data"`
}

// SeatsAeroProvider adapts the seats.aero partner API: award inventory
// across 20+ mileage programs. Cash fares and booking-class counts are
// out of its scope.
type SeatsAeroProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewSeatsAeroProvider(apiKey, baseURL string) (*SeatsAeroProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("seatsaero: api key is required")
	}
	if baseURL == "" {
		baseURL = "https://seats.aero/partnerapi"
	}
	return &SeatsAeroProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

var _ FlightProvider = (*SeatsAeroProvider)(nil)

func (p *SeatsAeroProvider) Name() string {
	return "seatsaero"
}

func (p *SeatsAeroProvider) headers() map[string]string {
	return map[string]string{"Partner-Authorization": p.apiKey}
}

func (p *SeatsAeroProvider) SearchFlights(ctx context.Context, q FlightQuery) ([]models.Offer, error) {
	return nil, NewProviderError(p.Name(), ErrNotSupported)
}

func (p *SeatsAeroProvider) GetAwardAvailability(ctx context.Context, q AwardQuery) ([]models.RawAward, error) {
	params := url.Values{}
	params.Set("origin_airport", strings.ToUpper(q.Origin))
	params.Set("destination_airport", strings.ToUpper(q.Destination))
	params.Set("start_date", q.StartDate)
	endDate := q.EndDate
	if endDate == "" {
		endDate = q.StartDate
	}
	params.Set("end_date", endDate)
	params.Set("include_trips", "false")
	if len(q.Programs) > 0 {
		sources := make([]string, len(q.Programs))
		for i, s := range q.Programs {
			sources[i] = strings.ToLower(strings.TrimSpace(s))
		}
		params.Set("sources", strings.Join(sources, ","))
	}
	if cabinParam, ok := seatsAeroCabinParams[q.Cabin]; ok {
		params.Set("cabins", cabinParam)
	}
	if q.DirectOnly {
		params.Set("only_direct_flights", "true")
	}

	var resp seatsAeroSearchResponse
	if err := getJSON(ctx, p.client, p.Name(), p.baseURL+"/search", params, p.headers(), &resp); err != nil {
		return nil, err
	}

	awards := make([]models.RawAward, 0, len(resp.Data))
	for _, item := range resp.Data {
		awards = append(awards, p.parseResult(item))
	}
	return awards, nil
}

// parseResult flattens one seats.aero availability object. The per-cabin
// fields are prefixed with the booking code (YAvailable, JMileageCost,
// ...); mileage costs arrive as strings.
func (p *SeatsAeroProvider) parseResult(item map[string]any) models.RawAward {
	route, _ := item["Route"].(map[string]any)

	pick := func(key string) string {
		if v := cast.ToString(item[key]); v != "" {
			return v
		}
		return cast.ToString(route[key])
	}

	cabins := make(map[string]models.RawCabinAward, 4)
	for _, code := range []string{"Y", "W", "J", "F"} {
		airlines := []string{}
		for _, a := range strings.Split(cast.ToString(item[code+"Airlines"]), ",") {
			if a = strings.TrimSpace(a); a != "" {
				airlines = append(airlines, a)
			}
		}
		cabins[code] = models.RawCabinAward{
			Available:   cast.ToBool(item[code+"Available"]),
			MileageCost: cast.ToInt(item[code+"MileageCost"]),
			Direct:      cast.ToBool(item[code+"Direct"]),
			Airlines:    airlines,
		}
	}

	return models.RawAward{
		ID:          cast.ToString(item["ID"]),
		Provider:    p.Name(),
		Program:     pick("Source"),
		Origin:      pick("OriginAirport"),
		Destination: pick("DestinationAirport"),
		Date:        cast.ToString(item["Date"]),
		Cabins:      cabins,
	}
}

func (p *SeatsAeroProvider) GetFareClassAvailability(ctx context.Context, q FareClassQuery) ([]models.FareClassAvailability, error) {
	return nil, NewProviderError(p.Name(), ErrNotSupported)
}
