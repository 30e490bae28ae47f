package connectors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"flipfinder/config"
	"flipfinder/internal/models"
)

// MLSClient fetches active listings from a Bright-MLS-style RESO API using
// client-credential authentication.
type MLSClient struct {
	httpClient   *http.Client
	logger       *logrus.Logger
	clientID     string
	clientSecret string

	// Overridable for testing.
	baseURL string

	accessToken string
}

func NewMLSClient(baseURL, clientID, clientSecret string, logger *logrus.Logger) *MLSClient {
	return &MLSClient{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      baseURL,
	}
}

func (c *MLSClient) Name() string { return "mls" }

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// authenticate exchanges client credentials for a bearer token.
func (c *MLSClient) authenticate(ctx context.Context) error {
	payload := map[string]string{
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
		"grant_type":    "client_credentials",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal auth payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth2/token", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth request returned status %d", resp.StatusCode)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return fmt.Errorf("failed to decode auth response: %w", err)
	}

	c.accessToken = token.AccessToken
	c.logger.Info("Authenticated with MLS API")
	return nil
}

// mlsListing mirrors the RESO field names returned by the search endpoint.
type mlsListing struct {
	ListingID      string  `json:"ListingId"`
	ListPrice      float64 `json:"ListPrice"`
	UnparsedAddr   string  `json:"UnparsedAddress"`
	City           string  `json:"City"`
	State          string  `json:"StateOrProvince"`
	PostalCode     string  `json:"PostalCode"`
	BedroomsTotal  int     `json:"BedroomsTotal"`
	BathroomsFull  int     `json:"BathroomsFull"`
	BathroomsHalf  int     `json:"BathroomsHalf"`
	LivingArea     float64 `json:"LivingArea"`
	LotSize        string  `json:"LotSize"`
	YearBuilt      int     `json:"YearBuilt"`
	DaysOnMarket   int     `json:"DaysOnMarket"`
	PublicRemarks  string  `json:"PublicRemarks"`
	PrivateRemarks string  `json:"PrivateRemarks"`
	Latitude       float64 `json:"Latitude"`
	Longitude      float64 `json:"Longitude"`
	Media          []struct {
		MediaURL string `json:"MediaURL"`
	} `json:"Media"`
}

type searchResponse struct {
	Value []mlsListing `json:"value"`
}

// FetchProperties searches listings matching the criteria and converts
// them to Property records.
func (c *MLSClient) FetchProperties(ctx context.Context, criteria SearchCriteria) ([]*models.Property, error) {
	if err := c.authenticate(ctx); err != nil {
		return nil, err
	}

	query := c.buildSearchQuery(criteria)
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/properties/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request returned status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	properties := make([]*models.Property, 0, len(result.Value))
	for _, listing := range result.Value {
		properties = append(properties, listing.toProperty())
	}

	c.logger.WithField("count", len(properties)).Info("Fetched properties from MLS")
	return properties, nil
}

func (c *MLSClient) buildSearchQuery(criteria SearchCriteria) map[string]any {
	and := []map[string]any{
		{"StandardStatus": map[string]any{"$in": []string{"Active", "Coming Soon"}}},
	}
	if criteria.MaxPrice > 0 {
		and = append(and, map[string]any{"ListPrice": map[string]any{"$lte": criteria.MaxPrice}})
	}
	if len(criteria.PropertyTypes) > 0 {
		and = append(and, map[string]any{"PropertyType": map[string]any{"$in": criteria.PropertyTypes}})
	}
	if criteria.MaxDaysOnMarket > 0 {
		cutoff := time.Now().AddDate(0, 0, -criteria.MaxDaysOnMarket).Format("2006-01-02")
		and = append(and, map[string]any{"ListingContractDate": map[string]any{"$gte": cutoff}})
	}
	if criteria.Area != "" {
		if isZipCode(criteria.Area) {
			and = append(and, map[string]any{"PostalCode": criteria.Area})
		} else {
			and = append(and, map[string]any{"City": map[string]any{"$eq": criteria.Area}})
		}
	}

	return map[string]any{
		"filter": map[string]any{"$and": and},
		"limit":  100,
	}
}

func isZipCode(area string) bool {
	if len(area) != 5 {
		return false
	}
	for _, r := range area {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (l mlsListing) toProperty() *models.Property {
	photos := make([]string, 0, len(l.Media))
	for _, m := range l.Media {
		photos = append(photos, m.MediaURL)
	}

	remarks := l.PublicRemarks + " " + l.PrivateRemarks
	return &models.Property{
		MLSID: l.ListingID,
		Address: models.Address{
			Street:  l.UnparsedAddr,
			City:    l.City,
			State:   l.State,
			ZipCode: l.PostalCode,
		},
		ListPrice:           l.ListPrice,
		Bedrooms:            l.BedroomsTotal,
		Bathrooms:           float64(l.BathroomsFull) + 0.5*float64(l.BathroomsHalf),
		SquareFeet:          l.LivingArea,
		LotSize:             l.LotSize,
		YearBuilt:           l.YearBuilt,
		DaysOnMarket:        l.DaysOnMarket,
		Description:         l.PublicRemarks,
		Latitude:            l.Latitude,
		Longitude:           l.Longitude,
		Photos:              photos,
		OpportunityKeywords: config.MatchOpportunityKeywords(remarks),
	}
}
