/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

INTERFACES IMPLEMENTED:
  sales.SaleStore:       Sale CRUD
  sales.ScheduleStore:   Projects and ordered commission schedules
  sales.PreferenceStore: Key-value UI preferences
  sales.SnapshotStore:   Bulk sale replacement for import

KEY TABLES:
  sales:             One row per transaction record
  projects:          Schedule owners, with the flat base rate
  commission_levels: Ordered schedule rows per project
  preferences:       Key-value pairs (last-selected period and the like)

DECIMALS:
  All currency and FDI values are stored as TEXT and parsed back through
  shopspring/decimal, never through float64.

WAL MODE:
  SQLite is opened with WAL for better crash recovery; there is a single
  logical writer so contention is not a concern.

SEEDING:
  Seed() explicitly creates the default project with the default schedule.
  Nothing is created as an on-load side effect; callers decide when to seed.

USAGE:
  store, err := sqlite.New("./sales.db")
  if err != nil { log.Fatal(err) }
  defer store.Close()
  projectID, err := store.Seed(ctx, "Default")

SEE ALSO:
  - sales/store.go: Interface definitions
  - sales/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/sales"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a SQLite store at the given path. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
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
	CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		sale_date TEXT NOT NULL,
		sale_amount TEXT NOT NULL,
		commission_amount TEXT NOT NULL,
		number_of_tours INTEGER NOT NULL DEFAULT 0,
		sale_type TEXT NOT NULL DEFAULT 'OTHER',
		is_cancelled BOOLEAN NOT NULL DEFAULT FALSE,
		fdi_points TEXT NOT NULL DEFAULT '0',
		fdi_given_points TEXT NOT NULL DEFAULT '0',
		fdi_cost TEXT NOT NULL DEFAULT '0',
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	-- Period filtering scans by date (hot path)
	CREATE INDEX IF NOT EXISTS idx_sales_date ON sales(sale_date);
	CREATE INDEX IF NOT EXISTS idx_sales_cancelled ON sales(is_cancelled);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		base_commission TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS commission_levels (
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		level INTEGER NOT NULL,
		min_amount TEXT NOT NULL,
		max_amount TEXT,
		additional_commission TEXT NOT NULL DEFAULT '0',
		PRIMARY KEY (project_id, level)
	);

	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Seed creates the named project with the default commission schedule if no
// project exists yet, and returns the default project's ID either way.
func (s *Store) Seed(ctx context.Context, projectName string) (sales.ProjectID, error) {
	projects, err := s.ListProjects(ctx)
	if err != nil {
		return "", err
	}
	if len(projects) > 0 {
		return projects[0].ID, nil
	}

	p := sales.Project{
		ID:             sales.ProjectID(uuid.NewString()),
		Name:           projectName,
		BaseCommission: decimal.Zero,
	}
	if err := s.SaveProject(ctx, p); err != nil {
		return "", err
	}
	if err := s.SetCommissionLevels(ctx, p.ID, sales.DefaultLevels()); err != nil {
		return "", err
	}
	return p.ID, nil
}

// =============================================================================
// SALE STORE (sales.SaleStore interface)
// =============================================================================

// Add inserts a sale, assigning an identifier when absent.
func (s *Store) Add(ctx context.Context, sale sales.Sale) (sales.Sale, error) {
	if sale.ID == "" {
		sale.ID = sales.SaleID(uuid.NewString())
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO sales
		(id, sale_date, sale_amount, commission_amount, number_of_tours, sale_type,
		 is_cancelled, fdi_points, fdi_given_points, fdi_cost, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		sale.ID,
		sale.Date.String(),
		sale.SaleAmount.String(),
		sale.CommissionAmount.String(),
		sale.NumberOfTours,
		string(sale.SaleType),
		sale.IsCancelled,
		sale.FDIPoints.String(),
		sale.FDIGivenPoints.String(),
		sale.FDICost.String(),
		sale.Notes,
		sale.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return sales.Sale{}, fmt.Errorf("%w: insert sale: %v", sales.ErrStorageFailure, err)
	}
	return sale, nil
}

// Get returns a sale by ID.
func (s *Store) Get(ctx context.Context, id sales.SaleID) (*sales.Sale, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, sale_date, sale_amount, commission_amount, number_of_tours, sale_type,
		       is_cancelled, fdi_points, fdi_given_points, fdi_cost, notes, created_at
		FROM sales WHERE id = ?`, id)

	sale, err := scanSale(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sales.ErrSaleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// Update applies a partial edit inside a single statement: read, apply,
// write. No partial mutation is visible on failure.
func (s *Store) Update(ctx context.Context, id sales.SaleID, update sales.SaleUpdate) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	update.Apply(existing)

	query := `
		UPDATE sales SET
			sale_date = ?, sale_amount = ?, commission_amount = ?, number_of_tours = ?,
			sale_type = ?, is_cancelled = ?, fdi_points = ?, fdi_given_points = ?,
			fdi_cost = ?, notes = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		existing.Date.String(),
		existing.SaleAmount.String(),
		existing.CommissionAmount.String(),
		existing.NumberOfTours,
		string(existing.SaleType),
		existing.IsCancelled,
		existing.FDIPoints.String(),
		existing.FDIGivenPoints.String(),
		existing.FDICost.String(),
		existing.Notes,
		id,
	)
	if err != nil {
		return fmt.Errorf("%w: update sale: %v", sales.ErrStorageFailure, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sales.ErrSaleNotFound
	}
	return nil
}

// Delete removes a sale permanently. Cancellation goes through Update.
func (s *Store) Delete(ctx context.Context, id sales.SaleID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sales WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: delete sale: %v", sales.ErrStorageFailure, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sales.ErrSaleNotFound
	}
	return nil
}

// ListAll returns every sale ordered by date.
func (s *Store) ListAll(ctx context.Context) ([]sales.Sale, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sale_date, sale_amount, commission_amount, number_of_tours, sale_type,
		       is_cancelled, fdi_points, fdi_given_points, fdi_cost, notes, created_at
		FROM sales ORDER BY sale_date, id`)
	if err != nil {
		return nil, fmt.Errorf("%w: list sales: %v", sales.ErrStorageFailure, err)
	}
	defer rows.Close()

	var out []sales.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sale)
	}
	return out, rows.Err()
}

// ReplaceSales swaps the full sale set inside one database transaction.
func (s *Store) ReplaceSales(ctx context.Context, replacement []sales.Sale) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin import: %v", sales.ErrStorageFailure, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sales`); err != nil {
		return fmt.Errorf("%w: clear sales: %v", sales.ErrStorageFailure, err)
	}

	query := `
		INSERT INTO sales
		(id, sale_date, sale_amount, commission_amount, number_of_tours, sale_type,
		 is_cancelled, fdi_points, fdi_given_points, fdi_cost, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, sale := range replacement {
		if sale.ID == "" {
			sale.ID = sales.SaleID(uuid.NewString())
		}
		if sale.CreatedAt.IsZero() {
			sale.CreatedAt = time.Now().UTC()
		}
		_, err := tx.ExecContext(ctx, query,
			sale.ID,
			sale.Date.String(),
			sale.SaleAmount.String(),
			sale.CommissionAmount.String(),
			sale.NumberOfTours,
			string(sale.SaleType),
			sale.IsCancelled,
			sale.FDIPoints.String(),
			sale.FDIGivenPoints.String(),
			sale.FDICost.String(),
			sale.Notes,
			sale.CreatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("%w: import sale %s: %v", sales.ErrStorageFailure, sale.ID, err)
		}
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSale(row rowScanner) (sales.Sale, error) {
	var (
		sale                               sales.Sale
		dateStr, createdStr                string
		amountStr, commissionStr           string
		fdiStr, fdiGivenStr, fdiCostStr    string
		saleType                           string
	)
	err := row.Scan(
		&sale.ID, &dateStr, &amountStr, &commissionStr, &sale.NumberOfTours, &saleType,
		&sale.IsCancelled, &fdiStr, &fdiGivenStr, &fdiCostStr, &sale.Notes, &createdStr,
	)
	if err != nil {
		return sales.Sale{}, err
	}

	if sale.Date, err = sales.ParseTimePoint(dateStr); err != nil {
		return sales.Sale{}, fmt.Errorf("corrupt sale_date %q: %w", dateStr, err)
	}
	sale.SaleType = sales.SaleType(saleType)
	if sale.SaleAmount, err = decimal.NewFromString(amountStr); err != nil {
		return sales.Sale{}, fmt.Errorf("corrupt sale_amount %q: %w", amountStr, err)
	}
	if sale.CommissionAmount, err = decimal.NewFromString(commissionStr); err != nil {
		return sales.Sale{}, fmt.Errorf("corrupt commission_amount %q: %w", commissionStr, err)
	}
	if sale.FDIPoints, err = decimal.NewFromString(fdiStr); err != nil {
		return sales.Sale{}, fmt.Errorf("corrupt fdi_points %q: %w", fdiStr, err)
	}
	if sale.FDIGivenPoints, err = decimal.NewFromString(fdiGivenStr); err != nil {
		return sales.Sale{}, fmt.Errorf("corrupt fdi_given_points %q: %w", fdiGivenStr, err)
	}
	if sale.FDICost, err = decimal.NewFromString(fdiCostStr); err != nil {
		return sales.Sale{}, fmt.Errorf("corrupt fdi_cost %q: %w", fdiCostStr, err)
	}
	sale.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	return sale, nil
}

// =============================================================================
// SCHEDULE STORE (sales.ScheduleStore interface)
// =============================================================================

// SaveProject inserts or updates a project.
func (s *Store) SaveProject(ctx context.Context, p sales.Project) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, base_commission, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, base_commission = excluded.base_commission`,
		p.ID, p.Name, p.BaseCommission.String(), p.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("%w: save project: %v", sales.ErrStorageFailure, err)
	}
	return nil
}

// GetProject returns a project by ID.
func (s *Store) GetProject(ctx context.Context, id sales.ProjectID) (*sales.Project, error) {
	var (
		p           sales.Project
		baseStr     string
		createdStr  string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, base_commission, created_at FROM projects WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &baseStr, &createdStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sales.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get project: %v", sales.ErrStorageFailure, err)
	}
	if p.BaseCommission, err = decimal.NewFromString(baseStr); err != nil {
		return nil, fmt.Errorf("corrupt base_commission %q: %w", baseStr, err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	return &p, nil
}

// ListProjects returns all projects.
func (s *Store) ListProjects(ctx context.Context) ([]sales.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, base_commission, created_at FROM projects ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("%w: list projects: %v", sales.ErrStorageFailure, err)
	}
	defer rows.Close()

	var out []sales.Project
	for rows.Next() {
		var (
			p          sales.Project
			baseStr    string
			createdStr string
		)
		if err := rows.Scan(&p.ID, &p.Name, &baseStr, &createdStr); err != nil {
			return nil, err
		}
		if p.BaseCommission, err = decimal.NewFromString(baseStr); err != nil {
			return nil, fmt.Errorf("corrupt base_commission %q: %w", baseStr, err)
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetCommissionLevels returns the schedule in stored (level) order.
func (s *Store) GetCommissionLevels(ctx context.Context, id sales.ProjectID) ([]sales.CommissionLevel, error) {
	if _, err := s.GetProject(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT level, min_amount, max_amount, additional_commission
		FROM commission_levels WHERE project_id = ? ORDER BY level`, id)
	if err != nil {
		return nil, fmt.Errorf("%w: load schedule: %v", sales.ErrStorageFailure, err)
	}
	defer rows.Close()

	var out []sales.CommissionLevel
	for rows.Next() {
		var (
			l       sales.CommissionLevel
			minStr  string
			maxStr  sql.NullString
			addStr  string
		)
		if err := rows.Scan(&l.Level, &minStr, &maxStr, &addStr); err != nil {
			return nil, err
		}
		if l.MinAmount, err = decimal.NewFromString(minStr); err != nil {
			return nil, fmt.Errorf("corrupt min_amount %q: %w", minStr, err)
		}
		if maxStr.Valid {
			max, err := decimal.NewFromString(maxStr.String)
			if err != nil {
				return nil, fmt.Errorf("corrupt max_amount %q: %w", maxStr.String, err)
			}
			l.MaxAmount = &max
		}
		if l.AdditionalCommission, err = decimal.NewFromString(addStr); err != nil {
			return nil, fmt.Errorf("corrupt additional_commission %q: %w", addStr, err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// SetCommissionLevels replaces the schedule atomically. Callers normalize
// (sort + renumber) before calling; the list is persisted as given.
func (s *Store) SetCommissionLevels(ctx context.Context, id sales.ProjectID, levels []sales.CommissionLevel) error {
	if _, err := s.GetProject(ctx, id); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin schedule update: %v", sales.ErrStorageFailure, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM commission_levels WHERE project_id = ?`, id); err != nil {
		return fmt.Errorf("%w: clear schedule: %v", sales.ErrStorageFailure, err)
	}
	for _, l := range levels {
		var max any
		if l.MaxAmount != nil {
			max = l.MaxAmount.String()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO commission_levels (project_id, level, min_amount, max_amount, additional_commission)
			VALUES (?, ?, ?, ?, ?)`,
			id, l.Level, l.MinAmount.String(), max, l.AdditionalCommission.String())
		if err != nil {
			return fmt.Errorf("%w: insert level %d: %v", sales.ErrStorageFailure, l.Level, err)
		}
	}
	return tx.Commit()
}

// =============================================================================
// PREFERENCE STORE (sales.PreferenceStore interface)
// =============================================================================

// GetPreference returns a stored value by key.
func (s *Store) GetPreference(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", sales.ErrPreferenceNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: get preference: %v", sales.ErrStorageFailure, err)
	}
	return value, nil
}

// SetPreference upserts a key-value pair.
func (s *Store) SetPreference(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("%w: set preference: %v", sales.ErrStorageFailure, err)
	}
	return nil
}
