package connectors

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"flipfinder/config"
	"flipfinder/internal/models"
)

// RedfinScraper pulls listings from Redfin's CSV download feed and
// enriches each one with the description scraped from its detail page.
type RedfinScraper struct {
	httpClient *http.Client
	logger     *logrus.Logger

	// Overridable for testing.
	baseURL string

	// fetchDescriptions skips the per-listing detail scrape when false.
	fetchDescriptions bool
}

func NewRedfinScraper(baseURL string, logger *logrus.Logger) *RedfinScraper {
	return &RedfinScraper{
		httpClient:        &http.Client{Timeout: 30 * time.Second},
		logger:            logger,
		baseURL:           baseURL,
		fetchDescriptions: true,
	}
}

func (s *RedfinScraper) Name() string { return "redfin" }

// FetchProperties downloads the CSV feed for the search area and parses
// each row into a Property.
func (s *RedfinScraper) FetchProperties(ctx context.Context, criteria SearchCriteria) ([]*models.Property, error) {
	feedURL := s.buildFeedURL(criteria)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; flipfinder/1.0)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed request returned status %d", resp.StatusCode)
	}

	properties, err := s.parseFeed(resp.Body)
	if err != nil {
		return nil, err
	}

	if s.fetchDescriptions {
		for _, p := range properties {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			s.enrichDescription(ctx, p)
		}
	}

	s.logger.WithField("count", len(properties)).Info("Fetched properties from Redfin")
	return properties, nil
}

func (s *RedfinScraper) buildFeedURL(criteria SearchCriteria) string {
	params := url.Values{}
	params.Set("al", "1")
	params.Set("status", "1")
	if criteria.Area != "" {
		params.Set("region", criteria.Area)
	}
	if criteria.MaxPrice > 0 {
		params.Set("max_price", strconv.FormatFloat(criteria.MaxPrice, 'f', 0, 64))
	}
	if criteria.MaxDaysOnMarket > 0 {
		params.Set("time_on_market_range", fmt.Sprintf("1-%d", criteria.MaxDaysOnMarket))
	}
	return s.baseURL + "/stingray/api/gis-csv?" + params.Encode()
}

// Feed column headers as Redfin names them.
const (
	colAddress   = "ADDRESS"
	colCity      = "CITY"
	colState     = "STATE OR PROVINCE"
	colZip       = "ZIP OR POSTAL CODE"
	colPrice     = "PRICE"
	colBeds      = "BEDS"
	colBaths     = "BATHS"
	colSqft      = "SQUARE FEET"
	colLotSize   = "LOT SIZE"
	colYearBuilt = "YEAR BUILT"
	colDOM       = "DAYS ON MARKET"
	colLatitude  = "LATITUDE"
	colLongitude = "LONGITUDE"
	colMLSID     = "MLS#"
	colURL       = "URL (SEE https://www.redfin.com/buy-a-home/comparative-market-analysis FOR INFO ON PRICING)"
)

func (s *RedfinScraper) parseFeed(r io.Reader) ([]*models.Property, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read feed header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToUpper(strings.TrimSpace(name))] = i
	}

	var properties []*models.Property
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.logger.WithError(err).Warn("Skipping malformed feed row")
			continue
		}

		p := s.rowToProperty(row, index)
		if p == nil {
			continue
		}
		properties = append(properties, p)
	}

	return properties, nil
}

func (s *RedfinScraper) rowToProperty(row []string, index map[string]int) *models.Property {
	field := func(name string) string {
		i, ok := index[strings.ToUpper(name)]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	number := func(name string) float64 {
		v, _ := strconv.ParseFloat(strings.ReplaceAll(field(name), ",", ""), 64)
		return v
	}

	street := field(colAddress)
	if street == "" {
		return nil
	}

	p := &models.Property{
		MLSID: field(colMLSID),
		Address: models.Address{
			Street:  street,
			City:    field(colCity),
			State:   field(colState),
			ZipCode: field(colZip),
		},
		ListPrice:    number(colPrice),
		Bedrooms:     int(number(colBeds)),
		Bathrooms:    number(colBaths),
		SquareFeet:   number(colSqft),
		LotSize:      field(colLotSize),
		YearBuilt:    int(number(colYearBuilt)),
		DaysOnMarket: int(number(colDOM)),
		Latitude:     number(colLatitude),
		Longitude:    number(colLongitude),
	}
	if p.MLSID == "" {
		p.MLSID = strings.ToLower(street)
	}
	p.URL = field(colURL)
	return p
}

// enrichDescription scrapes the listing detail page for the marketing
// remarks. Failures are logged and the listing is kept without a
// description.
func (s *RedfinScraper) enrichDescription(ctx context.Context, p *models.Property) {
	if p.URL == "" {
		return
	}
	detailURL := p.URL
	if strings.HasPrefix(detailURL, "/") {
		detailURL = s.baseURL + detailURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, detailURL, nil)
	if err != nil {
		return
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; flipfinder/1.0)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.WithError(err).WithField("mls_id", p.MLSID).Warn("Failed to fetch listing detail page")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		s.logger.WithError(err).WithField("mls_id", p.MLSID).Warn("Failed to parse listing detail page")
		return
	}

	description := strings.TrimSpace(doc.Find(".remarks, #marketing-remarks-scroll, .house-info .remarks p").First().Text())
	if description == "" {
		description = strings.TrimSpace(doc.Find("meta[name=description]").AttrOr("content", ""))
	}

	p.Description = description
	p.OpportunityKeywords = config.MatchOpportunityKeywords(description)
}
