package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/lattice/pkg/audit"
	"github.com/platinummonkey/lattice/pkg/hierarchy"
)

// SQLStore persists edges in a single hierarchy_edges table. Each row is
// one CHILD:PARENT value scoped to a (kind, context) partition, annotated
// with the audit columns of the mutation that last touched it. Batches are
// applied in one transaction so a failed write leaves the edge set
// unchanged.
type SQLStore struct {
	db  *sql.DB
	log logrus.FieldLogger
}

// NewSQLStore wraps an open database handle. The logger may be nil.
func NewSQLStore(db *sql.DB, log logrus.FieldLogger) *SQLStore {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SQLStore{db: db, log: log}
}

// Migrate creates the hierarchy_edges table if it does not exist. The DDL
// targets PostgreSQL; tests create an equivalent SQLite schema by hand.
func (s *SQLStore) Migrate(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS hierarchy_edges (
			id BIGSERIAL PRIMARY KEY,
			kind TEXT NOT NULL,
			context_id TEXT NOT NULL DEFAULT '',
			rel TEXT NOT NULL,
			modifier TEXT,
			mod_code TEXT,
			mod_id TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE (kind, context_id, rel)
		)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create hierarchy_edges table: %w", err)
	}
	return nil
}

// FetchEdges returns the stored values for a kind and context in insertion
// order.
func (s *SQLStore) FetchEdges(ctx context.Context, kind hierarchy.Kind, contextID string) ([]string, error) {
	const query = `
		SELECT rel FROM hierarchy_edges
		WHERE kind = $1 AND context_id = $2
		ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, kind.String(), contextID)
	if err != nil {
		return nil, fmt.Errorf("query hierarchy edges: %w", err)
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var rel string
		if err := rows.Scan(&rel); err != nil {
			return nil, fmt.Errorf("scan hierarchy edge: %w", err)
		}
		values = append(values, rel)
	}
	return values, rows.Err()
}

// ApplyMutation applies a batch of value mutations in one transaction.
// Adds of existing values are no-ops, replaces upsert the audit columns,
// deletes of absent values are no-ops.
func (s *SQLStore) ApplyMutation(ctx context.Context, kind hierarchy.Kind, contextID string, batch []hierarchy.Mutation, ac *audit.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mutation transaction: %w", err)
	}
	defer tx.Rollback()

	modifier, modCode, modID := auditColumns(ac)
	for _, m := range batch {
		switch m.Op {
		case hierarchy.MutationAdd:
			_, err = tx.ExecContext(ctx, `
				INSERT INTO hierarchy_edges (kind, context_id, rel, modifier, mod_code, mod_id)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (kind, context_id, rel) DO NOTHING`,
				kind.String(), contextID, m.Value, modifier, modCode, modID)
		case hierarchy.MutationReplace:
			_, err = tx.ExecContext(ctx, `
				INSERT INTO hierarchy_edges (kind, context_id, rel, modifier, mod_code, mod_id)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (kind, context_id, rel) DO UPDATE
				SET modifier = EXCLUDED.modifier,
				    mod_code = EXCLUDED.mod_code,
				    mod_id = EXCLUDED.mod_id,
				    updated_at = CURRENT_TIMESTAMP`,
				kind.String(), contextID, m.Value, modifier, modCode, modID)
		case hierarchy.MutationDelete:
			_, err = tx.ExecContext(ctx, `
				DELETE FROM hierarchy_edges
				WHERE kind = $1 AND context_id = $2 AND rel = $3`,
				kind.String(), contextID, m.Value)
		default:
			err = fmt.Errorf("unknown mutation op %q", m.Op)
		}
		if err != nil {
			return fmt.Errorf("apply %s mutation for %q: %w", m.Op, m.Value, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mutation transaction: %w", err)
	}
	return nil
}

func auditColumns(ac *audit.Context) (modifier, modCode, modID sql.NullString) {
	if ac == nil {
		return
	}
	modifier = sql.NullString{String: ac.Modifier, Valid: true}
	modCode = sql.NullString{String: ac.ModCode, Valid: true}
	modID = sql.NullString{String: ac.ModID, Valid: true}
	return
}
