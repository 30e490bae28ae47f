package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"flipfinder/internal/models"
)

type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}

// SaveProperties upserts a batch of properties along with their comps in a
// single transaction. Comps are replaced wholesale on each save.
func (d *Database) SaveProperties(properties []*models.Property) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO properties
		(mls_id, url, street, city, state, zip_code, list_price, bedrooms, bathrooms,
		 square_feet, lot_size, year_built, days_on_market, description,
		 latitude, longitude, opportunity_keywords, tax_data, neighborhood_data, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	deleteComps, err := tx.Prepare(`DELETE FROM comps WHERE property_mls_id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare comp delete: %w", err)
	}
	defer deleteComps.Close()

	insertComp, err := tx.Prepare(`
		INSERT INTO comps
		(property_mls_id, address, sale_date, sale_price, square_feet,
		 price_per_sqft, bedrooms, bathrooms, year_built, distance_miles)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare comp insert: %w", err)
	}
	defer insertComp.Close()

	for _, p := range properties {
		keywords, _ := json.Marshal(p.OpportunityKeywords)
		taxData, _ := json.Marshal(p.TaxData)
		neighborhoodData, _ := json.Marshal(p.NeighborhoodData)

		// Clear comps first: replacing a property row deletes it, and
		// comps still referencing it would fail the foreign key.
		if _, err = deleteComps.Exec(p.MLSID); err != nil {
			return fmt.Errorf("failed to clear comps for %s: %w", p.MLSID, err)
		}

		_, err = stmt.Exec(
			p.MLSID,
			p.URL,
			p.Address.Street,
			p.Address.City,
			p.Address.State,
			p.Address.ZipCode,
			p.ListPrice,
			p.Bedrooms,
			p.Bathrooms,
			p.SquareFeet,
			p.LotSize,
			p.YearBuilt,
			p.DaysOnMarket,
			p.Description,
			p.Latitude,
			p.Longitude,
			string(keywords),
			string(taxData),
			string(neighborhoodData),
		)
		if err != nil {
			return fmt.Errorf("failed to insert property %s: %w", p.MLSID, err)
		}

		for _, c := range p.Comps {
			_, err = insertComp.Exec(
				p.MLSID,
				c.Address,
				c.SaleDate.Format("2006-01-02"),
				c.SalePrice,
				c.SquareFeet,
				c.PricePerSqft,
				c.Bedrooms,
				c.Bathrooms,
				c.YearBuilt,
				c.DistanceMiles,
			)
			if err != nil {
				return fmt.Errorf("failed to insert comp for %s: %w", p.MLSID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetProperties returns stored properties, optionally filtered by city,
// with their comps attached.
func (d *Database) GetProperties(city string) ([]*models.Property, error) {
	query := `
		SELECT mls_id, url, street, city, state, zip_code, list_price, bedrooms,
		       bathrooms, square_feet, lot_size, year_built, days_on_market,
		       description, latitude, longitude, opportunity_keywords,
		       tax_data, neighborhood_data
		FROM properties
		WHERE (? = '' OR LOWER(city) = LOWER(?))
		ORDER BY mls_id
	`
	rows, err := d.db.Query(query, city, city)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []*models.Property
	for rows.Next() {
		var p models.Property
		var url, street, cityVal, state, zipCode, lotSize, description sql.NullString
		var keywords, taxData, neighborhoodData sql.NullString

		err := rows.Scan(
			&p.MLSID,
			&url,
			&street,
			&cityVal,
			&state,
			&zipCode,
			&p.ListPrice,
			&p.Bedrooms,
			&p.Bathrooms,
			&p.SquareFeet,
			&lotSize,
			&p.YearBuilt,
			&p.DaysOnMarket,
			&description,
			&p.Latitude,
			&p.Longitude,
			&keywords,
			&taxData,
			&neighborhoodData,
		)
		if err != nil {
			return nil, err
		}

		p.URL = url.String
		p.Address = models.Address{
			Street:  street.String,
			City:    cityVal.String,
			State:   state.String,
			ZipCode: zipCode.String,
		}
		p.LotSize = lotSize.String
		p.Description = description.String

		if keywords.Valid && keywords.String != "" {
			json.Unmarshal([]byte(keywords.String), &p.OpportunityKeywords)
		}
		if taxData.Valid && taxData.String != "" {
			json.Unmarshal([]byte(taxData.String), &p.TaxData)
		}
		if neighborhoodData.Valid && neighborhoodData.String != "" {
			json.Unmarshal([]byte(neighborhoodData.String), &p.NeighborhoodData)
		}

		properties = append(properties, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for _, p := range properties {
		comps, err := d.getComps(p.MLSID)
		if err != nil {
			return nil, err
		}
		p.Comps = comps
	}

	return properties, nil
}

func (d *Database) getComps(mlsID string) ([]models.Comp, error) {
	rows, err := d.db.Query(`
		SELECT address, sale_date, sale_price, square_feet, price_per_sqft,
		       bedrooms, bathrooms, year_built, distance_miles
		FROM comps
		WHERE property_mls_id = ?
		ORDER BY sale_date DESC
	`, mlsID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comps []models.Comp
	for rows.Next() {
		var c models.Comp
		var saleDate sql.NullString
		err := rows.Scan(
			&c.Address,
			&saleDate,
			&c.SalePrice,
			&c.SquareFeet,
			&c.PricePerSqft,
			&c.Bedrooms,
			&c.Bathrooms,
			&c.YearBuilt,
			&c.DistanceMiles,
		)
		if err != nil {
			return nil, err
		}
		if saleDate.Valid && saleDate.String != "" {
			if t, err := time.Parse("2006-01-02", saleDate.String); err == nil {
				c.SaleDate = t
			}
		}
		comps = append(comps, c)
	}
	return comps, rows.Err()
}

// DealFilter narrows the deals returned by GetTopDeals. Zero values leave
// a dimension unfiltered.
type DealFilter struct {
	RunID              string
	Limit              int
	MinScore           float64
	MinROI             float64
	MeetsCriteriaOnly  bool
	Meets70PercentOnly bool
}

// GetTopDeals returns stored deals ordered by score descending.
func (d *Database) GetTopDeals(filter DealFilter) ([]*models.Deal, error) {
	builder := sq.Select(
		"property_id", "address", "list_price", "arv", "repair_costs",
		"closing_costs", "holding_costs", "total_project_cost",
		"potential_profit", "roi", "max_purchase_price", "meets_criteria",
		"meets_70_percent_rule", "score", "analysis_date", "notes", "property_data",
	).From("deals").OrderBy("score DESC, roi DESC")

	if filter.RunID != "" {
		builder = builder.Where(sq.Eq{"run_id": filter.RunID})
	}
	if filter.MinScore > 0 {
		builder = builder.Where(sq.GtOrEq{"score": filter.MinScore})
	}
	if filter.MinROI > 0 {
		builder = builder.Where(sq.GtOrEq{"roi": filter.MinROI})
	}
	if filter.MeetsCriteriaOnly {
		builder = builder.Where(sq.Eq{"meets_criteria": true})
	}
	if filter.Meets70PercentOnly {
		builder = builder.Where(sq.Eq{"meets_70_percent_rule": true})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build deals query: %w", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deals []*models.Deal
	for rows.Next() {
		var deal models.Deal
		var analysisDate, notes, propertyData sql.NullString

		err := rows.Scan(
			&deal.PropertyID,
			&deal.Address,
			&deal.ListPrice,
			&deal.ARV,
			&deal.RepairCosts,
			&deal.ClosingCosts.Total,
			&deal.HoldingCosts,
			&deal.TotalProjectCost,
			&deal.PotentialProfit,
			&deal.ROI,
			&deal.MaxPurchasePrice,
			&deal.MeetsCriteria,
			&deal.Meets70PercentRule,
			&deal.Score,
			&analysisDate,
			&notes,
			&propertyData,
		)
		if err != nil {
			return nil, err
		}

		deal.Notes = notes.String
		if analysisDate.Valid && analysisDate.String != "" {
			if t, err := time.Parse(time.RFC3339, analysisDate.String); err == nil {
				deal.AnalysisDate = t
			}
		}
		if propertyData.Valid && propertyData.String != "" {
			json.Unmarshal([]byte(propertyData.String), &deal.Property)
		}

		deals = append(deals, &deal)
	}
	return deals, rows.Err()
}

// AnalysisRun records one pipeline execution for auditing. Parameters
// holds a JSON snapshot of the analysis configuration the run used.
type AnalysisRun struct {
	ID                string
	StartedAt         time.Time
	FinishedAt        time.Time
	PropertiesSeen    int
	PropertiesSkipped int
	DealsFound        int
	Parameters        string
}

// SaveAnalysisRun inserts or updates a run record.
func (d *Database) SaveAnalysisRun(run AnalysisRun) error {
	finished := ""
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt.Format(time.RFC3339)
	}
	// An upsert rather than INSERT OR REPLACE: replacing the row would
	// delete it first and break any deals already referencing the run.
	_, err := d.db.Exec(`
		INSERT INTO analysis_runs
		(id, started_at, finished_at, properties_seen, properties_skipped, deals_found, parameters)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			properties_seen = excluded.properties_seen,
			properties_skipped = excluded.properties_skipped,
			deals_found = excluded.deals_found,
			parameters = excluded.parameters
	`,
		run.ID,
		run.StartedAt.Format(time.RFC3339),
		finished,
		run.PropertiesSeen,
		run.PropertiesSkipped,
		run.DealsFound,
		run.Parameters,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis run: %w", err)
	}
	return nil
}

// GetAnalysisRuns returns the most recent runs, newest first.
func (d *Database) GetAnalysisRuns(limit int) ([]AnalysisRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.Query(`
		SELECT id, started_at, finished_at, properties_seen, properties_skipped, deals_found, parameters
		FROM analysis_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []AnalysisRun
	for rows.Next() {
		var run AnalysisRun
		var startedAt, finishedAt, parameters sql.NullString
		if err := rows.Scan(&run.ID, &startedAt, &finishedAt,
			&run.PropertiesSeen, &run.PropertiesSkipped, &run.DealsFound, &parameters); err != nil {
			return nil, err
		}
		run.Parameters = parameters.String
		if startedAt.Valid {
			if t, err := time.Parse(time.RFC3339, startedAt.String); err == nil {
				run.StartedAt = t
			}
		}
		if finishedAt.Valid && finishedAt.String != "" {
			if t, err := time.Parse(time.RFC3339, finishedAt.String); err == nil {
				run.FinishedAt = t
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// CityExists reports whether any stored property sits in the given city.
func (d *Database) CityExists(city string) (bool, error) {
	var exists bool
	err := d.db.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM properties WHERE LOWER(city) = LOWER(?) LIMIT 1)",
		strings.TrimSpace(city),
	).Scan(&exists)
	return exists, err
}
