/*
store.go - Persistence interfaces for sales, schedules, and preferences

PURPOSE:
  Defines the interface between the domain logic and storage. The engine
  never touches a database directly; it reads snapshots and issues single
  logical writes through these interfaces.

KEY INTERFACES:
  SaleStore:       Sale CRUD. Each operation is one logical unit: either
                   the store reflects the write or it doesn't, there is no
                   partial-write visibility.
  ScheduleStore:   Projects and their ordered commission schedules. Callers
                   normalize (sort + renumber) before SetCommissionLevels.
  PreferenceStore: Key-value UI preference persistence (last-selected
                   period label and the like).
  SnapshotStore:   Bulk replacement for import; export goes through ListAll.

IMPLEMENTATIONS:
  - sales/store/memory.go: In-memory, for tests and dev mode
  - store/sqlite/sqlite.go: Production SQLite
*/
package sales

import "context"

// =============================================================================
// SALE STORE
// =============================================================================

type SaleStore interface {
	// Add persists a sale and assigns its identifier.
	Add(ctx context.Context, sale Sale) (Sale, error)

	// Get returns the sale or ErrSaleNotFound.
	Get(ctx context.Context, id SaleID) (*Sale, error)

	// Update applies a partial edit. ErrSaleNotFound if id is absent;
	// no partial mutation on failure.
	Update(ctx context.Context, id SaleID, update SaleUpdate) error

	// Delete removes the sale. ErrSaleNotFound if id is absent.
	// Cancellation is a field update, not a delete.
	Delete(ctx context.Context, id SaleID) error

	// ListAll returns a snapshot of every sale, ordered by date.
	ListAll(ctx context.Context) ([]Sale, error)
}

// =============================================================================
// SCHEDULE STORE
// =============================================================================

type ScheduleStore interface {
	// SaveProject inserts or updates a project.
	SaveProject(ctx context.Context, p Project) error

	// GetProject returns the project or ErrProjectNotFound.
	GetProject(ctx context.Context, id ProjectID) (*Project, error)

	// ListProjects returns all projects.
	ListProjects(ctx context.Context) ([]Project, error)

	// GetCommissionLevels returns the project's schedule in stored order.
	GetCommissionLevels(ctx context.Context, id ProjectID) ([]CommissionLevel, error)

	// SetCommissionLevels replaces the project's schedule. Callers run
	// NormalizeLevels first; the store persists the list as given.
	SetCommissionLevels(ctx context.Context, id ProjectID, levels []CommissionLevel) error
}

// =============================================================================
// PREFERENCE STORE
// =============================================================================

type PreferenceStore interface {
	// GetPreference returns the value or ErrPreferenceNotFound.
	GetPreference(ctx context.Context, key string) (string, error)

	// SetPreference upserts a key-value pair.
	SetPreference(ctx context.Context, key, value string) error
}

// =============================================================================
// SNAPSHOT STORE - Bulk import
// =============================================================================

type SnapshotStore interface {
	// ReplaceSales swaps the full sale set atomically. Used by import.
	ReplaceSales(ctx context.Context, sales []Sale) error
}
