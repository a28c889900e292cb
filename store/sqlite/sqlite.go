/*
Package sqlite provides the SQLite-backed implementation of the pricing
repositories.

PURPOSE:
  Implements pricing.JobRepository, pricing.PricingRuleRepository,
  pricing.PromotionalCodeRepository, and pricing.HolidayCalendar, plus
  the administrative CRUD the API layer needs. In production the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  jobs:              Posting records counted for volume discounts
  pricing_rules:     Administrator-configured rules (JSON definitions)
  promo_codes:       Promotional code records (JSON definitions)
  promo_redemptions: One row per redemption, for usage caps
  holidays:          The maintained public holiday table

RULE AND PROMO STORAGE:
  Rules and promos are stored as their JSON definitions (the same shape
  admins submit) with a few extracted columns for filtering. The factory
  package validates and converts on the way in and out, so a row that
  parsed once keeps parsing.

CONSISTENCY:
  Reads are point-in-time. Usage counters are read during validation and
  written separately by RecordRedemption after checkout; near-simultaneous
  redemptions close to a cap can both pass validation. That gap is
  documented engine behavior; closing it would mean a reservation step
  here, not locking in the calculation core.

WAL MODE:
  SQLite is opened with WAL for better read concurrency.

USAGE:
  store, err := sqlite.New("./data/pricing.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - pricing/repos.go: Interface definitions
  - pricing/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/trm/pricing-engine/factory"
	"github.com/trm/pricing-engine/pricing"
)

// Store implements all pricing repositories using SQLite.
type Store struct {
	db      *sql.DB
	factory *factory.Factory
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, factory: factory.New()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_jobs_company_created
		ON jobs(company_id, created_at);

	CREATE TABLE IF NOT EXISTS pricing_rules (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		priority INTEGER NOT NULL,
		is_active INTEGER NOT NULL,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_rules_active
		ON pricing_rules(is_active);

	CREATE TABLE IF NOT EXISTS promo_codes (
		code TEXT PRIMARY KEY,
		is_active INTEGER NOT NULL,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS promo_redemptions (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL,
		user_id TEXT,
		redeemed_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_redemptions_code
		ON promo_redemptions(code);
	CREATE INDEX IF NOT EXISTS idx_redemptions_code_user
		ON promo_redemptions(code, user_id);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// JOBS - pricing.JobRepository
// =============================================================================

// Job is one posting record counted for volume discounts.
type Job struct {
	ID        string
	CompanyID pricing.CompanyID
	Status    string // active, published, draft, expired
	CreatedAt time.Time
}

// SaveJob inserts a posting record. A missing ID is generated.
// Timestamps are normalized to UTC before storage: CountActiveSince
// compares the stored strings lexicographically, which is only correct
// when every row carries the same offset.
func (s *Store) SaveJob(ctx context.Context, job Job) (Job, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	job.CreatedAt = job.CreatedAt.UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, company_id, status, created_at) VALUES (?, ?, ?, ?)`,
		job.ID, string(job.CompanyID), job.Status, job.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return Job{}, fmt.Errorf("failed to save job: %w", err)
	}
	return job, nil
}

// CountActiveSince counts active/published postings for a company created
// at or after the given instant.
func (s *Store) CountActiveSince(ctx context.Context, companyID pricing.CompanyID, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM jobs
		 WHERE company_id = ? AND status IN ('active', 'published') AND created_at >= ?`,
		string(companyID), since.UTC().Format(time.RFC3339)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return count, nil
}

// =============================================================================
// PRICING RULES - pricing.PricingRuleRepository + admin CRUD
// =============================================================================

// SaveRule validates and persists a rule definition. A missing creation
// time is stamped now; it is the priority tie-break key.
func (s *Store) SaveRule(ctx context.Context, rj factory.RuleJSON) (*pricing.Rule, error) {
	if rj.CreatedAt == "" {
		rj.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	rule, err := s.factory.RuleFromJSON(rj)
	if err != nil {
		return nil, err
	}

	configJSON, err := json.Marshal(s.factory.RuleToJSON(*rule))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rule: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pricing_rules (id, name, priority, is_active, config_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			priority = excluded.priority,
			is_active = excluded.is_active,
			config_json = excluded.config_json`,
		string(rule.ID), rule.Name, rule.Priority, boolToInt(rule.IsActive),
		string(configJSON), rule.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to save rule: %w", err)
	}
	return rule, nil
}

// GetRule loads one rule by id.
func (s *Store) GetRule(ctx context.Context, id pricing.RuleID) (*pricing.Rule, error) {
	var configJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT config_json FROM pricing_rules WHERE id = ?`, string(id)).Scan(&configJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pricing.ErrRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load rule: %w", err)
	}
	return s.factory.ParseRule(configJSON)
}

// ListRules returns every stored rule, newest first.
func (s *Store) ListRules(ctx context.Context) ([]pricing.Rule, error) {
	return s.queryRules(ctx, `SELECT config_json FROM pricing_rules ORDER BY created_at DESC, id`)
}

// DeleteRule removes a rule definition.
func (s *Store) DeleteRule(ctx context.Context, id pricing.RuleID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM pricing_rules WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return pricing.ErrRuleNotFound
	}
	return nil
}

// FindApplicable returns active rules covering the queried service type
// whose validity window contains the query instant. Rows that no longer
// parse are skipped rather than failing the whole fetch.
func (s *Store) FindApplicable(ctx context.Context, q pricing.RuleQuery) ([]pricing.Rule, error) {
	rules, err := s.queryRules(ctx, `SELECT config_json FROM pricing_rules WHERE is_active = 1`)
	if err != nil {
		return nil, err
	}

	var result []pricing.Rule
	for _, rule := range rules {
		if rule.ActiveAt(q.At) && rule.AppliesTo.Covers(q.ServiceType) {
			result = append(result, rule)
		}
	}
	return result, nil
}

func (s *Store) queryRules(ctx context.Context, query string, args ...any) ([]pricing.Rule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	var rules []pricing.Rule
	for rows.Next() {
		var configJSON string
		if err := rows.Scan(&configJSON); err != nil {
			return nil, err
		}
		rule, err := s.factory.ParseRule(configJSON)
		if err != nil {
			continue
		}
		rules = append(rules, *rule)
	}
	return rules, rows.Err()
}

// =============================================================================
// PROMO CODES - pricing.PromotionalCodeRepository + admin CRUD
// =============================================================================

// SavePromo validates and persists a promotional code definition.
func (s *Store) SavePromo(ctx context.Context, pj factory.PromoJSON) (*pricing.PromotionalCode, error) {
	if pj.CreatedAt == "" {
		pj.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	promo, err := s.factory.PromoFromJSON(pj)
	if err != nil {
		return nil, err
	}

	configJSON, err := json.Marshal(s.factory.PromoToJSON(*promo))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal promo: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO promo_codes (code, is_active, config_json, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(code) DO UPDATE SET
			is_active = excluded.is_active,
			config_json = excluded.config_json`,
		promo.Code, boolToInt(promo.IsActive), string(configJSON), promo.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to save promo: %w", err)
	}
	return promo, nil
}

// FindByCode loads a promotional code, matched case-insensitively.
func (s *Store) FindByCode(ctx context.Context, code string) (*pricing.PromotionalCode, error) {
	var configJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT config_json FROM promo_codes WHERE code = ?`, pricing.NormalizeCode(code)).Scan(&configJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pricing.ErrPromoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load promo: %w", err)
	}
	return s.factory.ParsePromo(configJSON)
}

// ListPromos returns every stored promotional code, newest first.
func (s *Store) ListPromos(ctx context.Context) ([]pricing.PromotionalCode, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT config_json FROM promo_codes ORDER BY created_at DESC, code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query promos: %w", err)
	}
	defer rows.Close()

	var promos []pricing.PromotionalCode
	for rows.Next() {
		var configJSON string
		if err := rows.Scan(&configJSON); err != nil {
			return nil, err
		}
		promo, err := s.factory.ParsePromo(configJSON)
		if err != nil {
			continue
		}
		promos = append(promos, *promo)
	}
	return promos, rows.Err()
}

// DeletePromo removes a promotional code definition.
func (s *Store) DeletePromo(ctx context.Context, code string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM promo_codes WHERE code = ?`, pricing.NormalizeCode(code))
	if err != nil {
		return fmt.Errorf("failed to delete promo: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return pricing.ErrPromoNotFound
	}
	return nil
}

// CountRedemptions returns (total, byUser) redemption counts for a code.
func (s *Store) CountRedemptions(ctx context.Context, code string, userID pricing.UserID) (int, int, error) {
	key := pricing.NormalizeCode(code)

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM promo_redemptions WHERE code = ?`, key).Scan(&total)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count redemptions: %w", err)
	}

	byUser := 0
	if userID != "" {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM promo_redemptions WHERE code = ? AND user_id = ?`,
			key, string(userID)).Scan(&byUser)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to count user redemptions: %w", err)
		}
	}
	return total, byUser, nil
}

// RecordRedemption appends one redemption row. The checkout collaborator
// calls this after payment; validation itself never writes.
func (s *Store) RecordRedemption(ctx context.Context, code string, userID pricing.UserID) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO promo_redemptions (id, code, user_id, redeemed_at) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), pricing.NormalizeCode(code), string(userID), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record redemption: %w", err)
	}
	return nil
}

// =============================================================================
// HOLIDAYS - pricing.HolidayCalendar + admin CRUD
// =============================================================================

// Holiday is one maintained public holiday.
type Holiday struct {
	ID   string
	Date time.Time
	Name string
}

// SaveHoliday inserts or replaces one holiday date.
func (s *Store) SaveHoliday(ctx context.Context, h Holiday) (Holiday, error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO holidays (id, date, name) VALUES (?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET name = excluded.name`,
		h.ID, h.Date.Format("2006-01-02"), h.Name)
	if err != nil {
		return Holiday{}, fmt.Errorf("failed to save holiday: %w", err)
	}
	return h, nil
}

// ListHolidays returns every stored holiday, ordered by date.
func (s *Store) ListHolidays(ctx context.Context) ([]Holiday, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, date, name FROM holidays ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var holidays []Holiday
	for rows.Next() {
		var h Holiday
		var dateStr string
		if err := rows.Scan(&h.ID, &dateStr, &h.Name); err != nil {
			return nil, err
		}
		h.Date, _ = time.Parse("2006-01-02", dateStr)
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// DeleteHoliday removes one holiday by id.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM holidays WHERE id = ?`, id)
	return err
}

// SeedHolidays inserts the given table, skipping dates already present.
func (s *Store) SeedHolidays(ctx context.Context, table map[time.Time]string) error {
	for date, name := range table {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO holidays (id, date, name) VALUES (?, ?, ?)
			 ON CONFLICT(date) DO NOTHING`,
			uuid.NewString(), date.Format("2006-01-02"), name)
		if err != nil {
			return fmt.Errorf("failed to seed holiday %s: %w", name, err)
		}
	}
	return nil
}

// IsHoliday reports whether the local date is in the holiday table.
// Query failures resolve to false; a missing table row was never a
// holiday to begin with.
func (s *Store) IsHoliday(year int, month time.Month, day int) bool {
	key := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM holidays WHERE date = ?`, key).Scan(&count); err != nil {
		return false
	}
	return count > 0
}

// =============================================================================
// MAINTENANCE
// =============================================================================

// Reset clears every table. Development and demo use only.
func (s *Store) Reset(ctx context.Context) error {
	for _, table := range []string{"jobs", "pricing_rules", "promo_codes", "promo_redemptions", "holidays"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
