package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"AdAuctionSim/internal/model"
)

// SQLiteRecorder persists simulation output to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (dashboards read while
	// a run writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS auction_results (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id           TEXT NOT NULL,
			day              INTEGER NOT NULL,
			hour             INTEGER NOT NULL,
			day_of_week      INTEGER,
			campaign         TEXT,
			bidding_strategy TEXT,
			query            TEXT,
			matched_keyword  TEXT,
			ad_id            TEXT,
			ad_rank          REAL,
			cpc              REAL,
			position         INTEGER,
			impressions      INTEGER,
			clicks           INTEGER,
			conversions      INTEGER,
			cost             REAL,
			revenue          REAL,
			ctr              REAL,
			cvr              REAL,
			roas             REAL,
			device           TEXT,
			geo              TEXT,
			quality_score    REAL,
			expected_ctr     REAL,
			ad_relevance     REAL,
			landing_page_exp REAL,
			keyword_bid      REAL,
			device_adj       REAL,
			final_bid        REAL,
			extension_count  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run ON auction_results(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run_day ON auction_results(run_id, day)`,

		`CREATE TABLE IF NOT EXISTS run_summaries (
			id                    INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp             INTEGER NOT NULL,
			run_id                TEXT NOT NULL UNIQUE,
			campaign              TEXT,
			seed                  INTEGER,
			days                  INTEGER,
			total_queries         INTEGER,
			auctions_run          INTEGER,
			filtered_by_negatives INTEGER,
			filtered_by_schedule  INTEGER,
			filtered_by_budget    INTEGER,
			impressions           INTEGER,
			clicks                INTEGER,
			conversions           INTEGER,
			cost                  REAL,
			revenue               REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_ts ON run_summaries(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordResults inserts all rows for a run in one transaction.
func (r *SQLiteRecorder) RecordResults(runID string, rows []model.AuctionResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO auction_results
		(run_id, day, hour, day_of_week, campaign, bidding_strategy,
		 query, matched_keyword, ad_id, ad_rank, cpc, position,
		 impressions, clicks, conversions, cost, revenue, ctr, cvr, roas,
		 device, geo, quality_score, expected_ctr, ad_relevance,
		 landing_page_exp, keyword_bid, device_adj, final_bid, extension_count)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i := range rows {
		row := &rows[i]
		if _, err := stmt.Exec(
			runID, row.Day, row.Hour, row.DayOfWeek, row.Campaign, string(row.BiddingStrategy),
			row.Query, row.MatchedKeyword, row.AdID, row.AdRank, row.CPC, row.Position,
			row.Impressions, row.Clicks, row.Conversions, row.Cost, row.Revenue,
			row.CTR(), row.CVR(), row.ROAS(),
			string(row.Device), row.Geo, row.QualityScore, row.ExpectedCTR, row.AdRelevance,
			row.LandingPageExp, row.KeywordBid, row.DeviceAdj, row.FinalBid, row.ExtensionCount,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert result row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// LoadResults returns the most recent rows across all runs, oldest first.
// The bidding predictor trains on them.
func (r *SQLiteRecorder) LoadResults(limit int) ([]model.AuctionResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT day, hour, day_of_week, device,
			impressions, clicks, conversions, cpc, cost, revenue
		FROM (SELECT * FROM auction_results ORDER BY id DESC LIMIT ?)
		ORDER BY id ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []model.AuctionResult
	for rows.Next() {
		var res model.AuctionResult
		var device string
		if err := rows.Scan(&res.Day, &res.Hour, &res.DayOfWeek, &device,
			&res.Impressions, &res.Clicks, &res.Conversions,
			&res.CPC, &res.Cost, &res.Revenue); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		res.Device = model.Device(device)
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) RecordSummary(s *RunSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO run_summaries
		(timestamp, run_id, campaign, seed, days, total_queries, auctions_run,
		 filtered_by_negatives, filtered_by_schedule, filtered_by_budget,
		 impressions, clicks, conversions, cost, revenue)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), s.RunID, s.Campaign, s.Seed, s.Days,
		s.TotalQueries, s.AuctionsRun,
		s.FilteredByNegatives, s.FilteredBySchedule, s.FilteredByBudget,
		s.Impressions, s.Clicks, s.Conversions, s.Cost, s.Revenue,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
