package database

import "fmt"

func (d *Database) RunMigrations() error {
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS properties (
			mls_id TEXT PRIMARY KEY,
			url TEXT,
			street TEXT NOT NULL,
			city TEXT,
			state TEXT,
			zip_code TEXT,
			list_price REAL,
			bedrooms INTEGER,
			bathrooms REAL,
			square_feet REAL,
			lot_size TEXT,
			year_built INTEGER,
			days_on_market INTEGER,
			description TEXT,
			latitude REAL,
			longitude REAL,
			opportunity_keywords TEXT,
			tax_data TEXT,
			neighborhood_data TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create properties table: %v", err)
	}

	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS comps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			property_mls_id TEXT NOT NULL,
			address TEXT,
			sale_date TEXT,
			sale_price REAL,
			square_feet REAL,
			price_per_sqft REAL,
			bedrooms INTEGER,
			bathrooms REAL,
			year_built INTEGER,
			distance_miles REAL,
			FOREIGN KEY (property_mls_id) REFERENCES properties(mls_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create comps table: %v", err)
	}

	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS analysis_runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			properties_seen INTEGER DEFAULT 0,
			properties_skipped INTEGER DEFAULT 0,
			deals_found INTEGER DEFAULT 0,
			parameters TEXT
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create analysis_runs table: %v", err)
	}

	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS deals (
			property_id TEXT PRIMARY KEY,
			run_id TEXT,
			address TEXT,
			list_price REAL,
			arv REAL,
			repair_costs REAL,
			closing_costs REAL,
			holding_costs REAL,
			total_project_cost REAL,
			potential_profit REAL,
			roi REAL,
			max_purchase_price REAL,
			meets_criteria BOOLEAN,
			meets_70_percent_rule BOOLEAN,
			score REAL,
			analysis_date TEXT,
			notes TEXT,
			property_data TEXT,
			FOREIGN KEY (run_id) REFERENCES analysis_runs(id)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create deals table: %v", err)
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_deals_score ON deals(score);
	`)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_properties_coordinates
		ON properties(latitude, longitude);
	`)
	if err != nil {
		return err
	}

	return nil
}
