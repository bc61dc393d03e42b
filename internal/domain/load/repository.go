// Package load persists extracted transactions into the normalized schema:
// clients, inventory accounts, sales profiles, and transactions.
package load

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository writes the normalized relations. File-scoped writes run inside
// a caller-owned pgx.Tx so one source file is one commit.
type Repository struct {
	db PgxPool
}

// NewRepository creates a repository over a pgx pool.
func NewRepository(db PgxPool) *Repository {
	return &Repository{db: db}
}

// Begin opens the transaction bounding one source file's batch.
func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin batch: %w", err)
	}
	return tx, nil
}

// InsertAccount creates one synthesized inventory account for a service.
func (r *Repository) InsertAccount(ctx context.Context, tx pgx.Tx, id int64, service string) error {
	now := time.Now().UnixMilli()
	_, err := tx.Exec(ctx, `
		INSERT INTO inventory_accounts (id, servicio, tipo, email, password, created_at, updated_at)
		VALUES ($1, $2, 'ESTATICO', 'migracion@estratosfera.net', '123', $3, $3)`,
		id, service, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert inventory account: %w", err)
	}
	return nil
}

// InsertProfile creates the sales profile bound to an inventory account.
func (r *Repository) InsertProfile(ctx context.Context, tx pgx.Tx, id, accountID int64, service string) error {
	now := time.Now().UnixMilli()
	_, err := tx.Exec(ctx, `
		INSERT INTO sales_profiles (id, nombre_perfil, account_id, estado, created_at, updated_at)
		VALUES ($1, $2, $3, 'OCUPADO', $4, $4)`,
		id, fmt.Sprintf("PERFIL_%s", service), accountID, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sales profile: %w", err)
	}
	return nil
}

// UpsertClient inserts a client if absent. An existing record is never
// overwritten by a later same-key arrival.
func (r *Repository) UpsertClient(ctx context.Context, tx pgx.Tx, phoneKey, name string) error {
	now := time.Now().UnixMilli()
	_, err := tx.Exec(ctx, `
		INSERT INTO clients (celular, nombre, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (celular) DO NOTHING`,
		phoneKey, name, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert client: %w", err)
	}
	return nil
}

// InsertTransaction writes one normalized transaction row.
func (r *Repository) InsertTransaction(ctx context.Context, tx pgx.Tx, clientKey string, profileID int64, startMillis, dueMillis int64, amount float64) error {
	now := time.Now().UnixMilli()
	_, err := tx.Exec(ctx, `
		INSERT INTO transactions (cliente_id, perfil_id, estado_pago, fecha_inicio, fecha_vencimiento, monto, created_at, updated_at)
		VALUES ($1, $2, 'PAGADO', $3, $4, $5, $6, $6)`,
		clientKey, profileID, startMillis, dueMillis, amount, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// Run records one processed source file.
type Run struct {
	ID           uuid.UUID
	FileName     string
	SourceYear   int
	RowsImported int
	RowsSkipped  int
	Status       string
	Error        *string
}

// RecordRun persists a migration run record outside any file batch.
func (r *Repository) RecordRun(ctx context.Context, run Run) error {
	now := time.Now().UnixMilli()
	_, err := r.db.Exec(ctx, `
		INSERT INTO migration_runs (id, file_name, source_year, rows_imported, rows_skipped, status, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		run.ID, run.FileName, run.SourceYear, run.RowsImported, run.RowsSkipped, run.Status, run.Error, now,
	)
	if err != nil {
		return fmt.Errorf("failed to record migration run: %w", err)
	}
	return nil
}

// transactionKey is the identity tuple one transaction row carries for
// duplicate resolution.
type transactionKey struct {
	ID          int64
	FechaInicio int64
	ClienteID   string
	Monto       float64
}

type dupGroup struct {
	fechaInicio int64
	clienteID   string
	monto       float64
}

// duplicateIDs returns the ids to remove: every row of a (fecha_inicio,
// cliente_id, monto) group except the lowest id. Rows that share a day and
// amount but belong to different clients form different groups and all
// survive.
func duplicateIDs(rows []transactionKey) []int64 {
	keep := make(map[dupGroup]int64, len(rows))
	for _, tr := range rows {
		g := dupGroup{tr.FechaInicio, tr.ClienteID, tr.Monto}
		if id, ok := keep[g]; !ok || tr.ID < id {
			keep[g] = tr.ID
		}
	}

	var doomed []int64
	for _, tr := range rows {
		if keep[dupGroup{tr.FechaInicio, tr.ClienteID, tr.Monto}] != tr.ID {
			doomed = append(doomed, tr.ID)
		}
	}
	sort.Slice(doomed, func(i, j int) bool { return doomed[i] < doomed[j] })
	return doomed
}

// DeleteDuplicates keeps one transaction per (fecha_inicio, cliente_id,
// monto) group, the lowest id, and drops the rest. Loading the same source
// tree twice doubles transaction rows (no natural composite key exists at
// insert time); this pass is the documented mitigation.
func (r *Repository) DeleteDuplicates(ctx context.Context) (int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id, fecha_inicio, cliente_id, monto FROM transactions`)
	if err != nil {
		return 0, fmt.Errorf("failed to scan transactions for duplicates: %w", err)
	}
	defer rows.Close()

	var all []transactionKey
	for rows.Next() {
		var tr transactionKey
		if err := rows.Scan(&tr.ID, &tr.FechaInicio, &tr.ClienteID, &tr.Monto); err != nil {
			return 0, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		all = append(all, tr)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to read transaction rows: %w", err)
	}

	doomed := duplicateIDs(all)
	if len(doomed) == 0 {
		return 0, nil
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE id = ANY($1)`, doomed)
	if err != nil {
		return 0, fmt.Errorf("failed to deduplicate transactions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Reset clears migrated data ahead of a fresh load: all transactions and
// clients, and the synthesized accounts/profiles (ids from the synthetic
// range, preserving seed data below it).
func (r *Repository) Reset(ctx context.Context) error {
	statements := []string{
		`DELETE FROM transactions`,
		`DELETE FROM clients`,
		`DELETE FROM sales_profiles WHERE id >= 999`,
		`DELETE FROM inventory_accounts WHERE id >= 999`,
	}
	for _, stmt := range statements {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to reset migrated data: %w", err)
		}
	}
	return nil
}

// CountTransactions returns the persisted transaction count.
func (r *Repository) CountTransactions(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}
