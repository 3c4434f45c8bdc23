package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// GeocodeClient verifies street addresses against the external geocoding
// provider. It implements AddressVerifier.
type GeocodeClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewGeocodeClient creates a new GeocodeClient.
func NewGeocodeClient(baseURL, apiKey string) *GeocodeClient {
	return &GeocodeClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  http.DefaultClient,
	}
}

type geocodeResponse struct {
	IsAddressValid bool `json:"isAddressValid"`
	Coordinates    struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"coordinates"`
}

// Verify asks the provider whether street + postal code resolve to a real
// address. A negative answer is not an error; transport failures are.
func (g *GeocodeClient) Verify(ctx context.Context, street, postalCode string) (*Verification, error) {
	q := url.Values{}
	q.Set("street", street)
	q.Set("postalcode", postalCode)
	if g.apiKey != "" {
		q.Set("api_key", g.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create geocode request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verify address: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode service returned status %d", resp.StatusCode)
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}

	return &Verification{
		Valid: body.IsAddressValid,
		Lat:   body.Coordinates.Lat,
		Lng:   body.Coordinates.Lng,
	}, nil
}
