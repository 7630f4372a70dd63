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

// amadeusCabinParams translates the canonical cabin into the travelClass
// query parameter Amadeus expects.
var amadeusCabinParams = map[models.Cabin]string{
	models.CabinEconomy:        "ECONOMY",
	models.CabinPremiumEconomy: "PREMIUM_ECONOMY",
	models.CabinBusiness:       "BUSINESS",
	models.CabinFirst:          "FIRST",
}

type amadeusOffersResponse struct {
	Data []struct {
		ID          string `json:"id"`
		Itineraries []struct {
			Duration string `json:"duration"`
			Segments []struct {
				ID          string `json:"id"`
				CarrierCode string `json:"carrierCode"`
				Number      string `json:"number"`
				Duration    string `json:"duration"`
				Aircraft    struct {
					Code string `json:"code"`
				} `json:"aircraft"`
				Departure struct {
					IataCode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"departure"`
				Arrival struct {
					IataCode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"arrival"`
			} `json:"segments"`
		} `json:"itineraries"`
		Price struct {
			GrandTotal string `json:"grandTotal"`
			Total      string `json:"total"`
			Currency   string `json:"currency"`
		} `json:"price"`
		TravelerPricings []struct {
			FareDetailsBySegment []struct {
				SegmentID string `json:"segmentId"`
				Cabin     string `json:"cabin"`
				Class     string `json:"class"`
			} `json:"fareDetailsBySegment"`
		} `json:"travelerPricings"`
	} `json:"data"`
	Dictionaries struct {
		Aircraft map[string]string `json:"aircraft"`
	} `json:"dictionaries"`
}

type amadeusAvailabilityResponse struct {
	Data []struct {
		Segments []struct {
			CarrierCode string `json:"carrierCode"`
			Number      string `json:"number"`
			Departure   struct {
				IataCode string `json:"iataCode"`
				At       string `json:"at"`
			} `json:"departure"`
			Arrival struct {
				IataCode string `json:"iataCode"`
			} `json:"arrival"`
			AvailabilityClasses []struct {
				Cabin                 string `json:"cabin"`
				Class                 string `json:"class"`
				NumberOfBookableSeats int    `json:"numberOfBookableSeats"`
			} `json:"availabilityClasses"`
		} `json:"segments"`
	} `json:"data"`
}

// AmadeusProvider adapts the Amadeus Self-Service API. It covers cash
// fares and GDS fare-class seat counts; Amadeus has no award inventory.
type AmadeusProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewAmadeusProvider(apiKey, baseURL string) (*AmadeusProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("amadeus: api key is required")
	}
	if baseURL == "" {
		baseURL = "https://test.api.amadeus.com"
	}
	return &AmadeusProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

var _ FlightProvider = (*AmadeusProvider)(nil)

func (p *AmadeusProvider) Name() string {
	return "amadeus"
}

func (p *AmadeusProvider) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + p.apiKey}
}

func (p *AmadeusProvider) SearchFlights(ctx context.Context, q FlightQuery) ([]models.Offer, error) {
	params := url.Values{}
	params.Set("originLocationCode", strings.ToUpper(q.Origin))
	params.Set("destinationLocationCode", strings.ToUpper(q.Destination))
	params.Set("departureDate", q.DepartureDate)
	params.Set("adults", cast.ToString(max(q.Adults, 1)))
	if q.Currency != "" {
		params.Set("currencyCode", strings.ToUpper(q.Currency))
	}
	if q.MaxResults > 0 {
		params.Set("max", cast.ToString(q.MaxResults))
	}
	if travelClass, ok := amadeusCabinParams[q.Cabin]; ok {
		params.Set("travelClass", travelClass)
	}
	if q.DirectOnly {
		params.Set("nonStop", "true")
	}
	if len(q.IncludeAirlines) > 0 {
		params.Set("includedAirlineCodes", joinUpper(q.IncludeAirlines))
	}
	if len(q.ExcludeAirlines) > 0 {
		params.Set("excludedAirlineCodes", joinUpper(q.ExcludeAirlines))
	}

	var resp amadeusOffersResponse
	if err := getJSON(ctx, p.client, p.Name(), p.baseURL+"/v2/shopping/flight-offers", params, p.headers(), &resp); err != nil {
		return nil, err
	}

	offers := make([]models.Offer, 0, len(resp.Data))
	for _, item := range resp.Data {
		// segmentId -> cabin token from the first traveler's fare details.
		cabinBySegment := make(map[string]string)
		if len(item.TravelerPricings) > 0 {
			for _, fd := range item.TravelerPricings[0].FareDetailsBySegment {
				cabinBySegment[fd.SegmentID] = fd.Cabin
			}
		}

		itineraries := make([]models.Itinerary, 0, len(item.Itineraries))
		var parseErr error
		for _, itin := range item.Itineraries {
			segments := make([]models.Segment, 0, len(itin.Segments))
			for _, seg := range itin.Segments {
				dep, err := parseTime(seg.Departure.At)
				if err != nil {
					parseErr = err
					break
				}
				arr, err := parseTime(seg.Arrival.At)
				if err != nil {
					parseErr = err
					break
				}
				segDuration, _ := parseISODuration(seg.Duration)

				var aircraft *string
				if name, ok := resp.Dictionaries.Aircraft[seg.Aircraft.Code]; ok && name != "" {
					aircraft = &name
				}

				segments = append(segments, models.Segment{
					Carrier:       seg.CarrierCode,
					FlightNumber:  seg.Number,
					Origin:        seg.Departure.IataCode,
					Destination:   seg.Arrival.IataCode,
					DepartureTime: dep,
					ArrivalTime:   arr,
					Duration:      segDuration,
					CabinToken:    cabinBySegment[seg.ID],
					Aircraft:      aircraft,
				})
			}
			if parseErr != nil {
				break
			}
			itinDuration, _ := parseISODuration(itin.Duration)
			itineraries = append(itineraries, models.Itinerary{Segments: segments, Duration: itinDuration})
		}
		if parseErr != nil || len(itineraries) == 0 {
			continue
		}

		amount := item.Price.GrandTotal
		if amount == "" {
			amount = item.Price.Total
		}

		offer := models.Offer{
			ID:       "amadeus-" + item.ID,
			Provider: p.Name(),
			Price: models.Price{
				Amount:   cast.ToFloat64(amount),
				Currency: item.Price.Currency,
			},
			Outbound: itineraries[0],
		}
		if len(itineraries) > 1 {
			ret := itineraries[1]
			offer.Return = &ret
		}
		offers = append(offers, offer)
	}

	return offers, nil
}

func (p *AmadeusProvider) GetAwardAvailability(ctx context.Context, q AwardQuery) ([]models.RawAward, error) {
	return nil, NewProviderError(p.Name(), ErrNotSupported)
}

func (p *AmadeusProvider) GetFareClassAvailability(ctx context.Context, q FareClassQuery) ([]models.FareClassAvailability, error) {
	departureDateTime := map[string]any{"date": q.Date}
	if q.DepartureTime != "" {
		departureDateTime["time"] = q.DepartureTime
	}
	originDestination := map[string]any{
		"id":                      "1",
		"originLocationCode":      strings.ToUpper(q.Origin),
		"destinationLocationCode": strings.ToUpper(q.Destination),
		"departureDateTime":       departureDateTime,
	}
	if q.Carrier != "" {
		originDestination["carrierCode"] = strings.ToUpper(q.Carrier)
	}
	if q.FlightNumber != "" {
		originDestination["number"] = q.FlightNumber
	}

	body := map[string]any{
		"originDestinations": []map[string]any{originDestination},
		"travelers":          []map[string]string{{"id": "1", "travelerType": "ADULT"}},
		"sources":            []string{"GDS"},
	}

	var resp amadeusAvailabilityResponse
	if err := postJSON(ctx, p.client, p.Name(), p.baseURL+"/v1/shopping/availability/flight-availabilities", body, p.headers(), &resp); err != nil {
		return nil, err
	}

	rows := make([]models.FareClassAvailability, 0, len(resp.Data))
	for _, item := range resp.Data {
		if len(item.Segments) == 0 {
			continue
		}
		seg := item.Segments[0]

		classes := make([]models.BookingClassCount, 0, len(seg.AvailabilityClasses))
		for _, ac := range seg.AvailabilityClasses {
			classes = append(classes, models.BookingClassCount{
				CabinToken:   ac.Cabin,
				BookingClass: ac.Class,
				Seats:        ac.NumberOfBookableSeats,
			})
		}

		rows = append(rows, models.FareClassAvailability{
			Carrier:      seg.CarrierCode,
			FlightNumber: seg.Number,
			Origin:       seg.Departure.IataCode,
			Destination:  seg.Arrival.IataCode,
			Date:         q.Date,
			Classes:      classes,
		})
	}
	return rows, nil
}
