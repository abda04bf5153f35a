package db

import "context"

// indexStatements create the lookup indexes used by the id and name queries.
var indexStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_cv_profiles_id ON cv_profiles (id)`,
	`CREATE EXTENSION IF NOT EXISTS pg_trgm`,
	`CREATE INDEX IF NOT EXISTS idx_cv_profiles_full_name
	   ON cv_profiles USING GIN ((data->'candidate'->>'fullName') gin_trgm_ops)`,
	`CREATE INDEX IF NOT EXISTS idx_cv_profiles_full_name_lower
	   ON cv_profiles USING GIN (LOWER(data->'candidate'->>'fullName') gin_trgm_ops)`,
}

// CreateIndexes creates the cv_profiles indexes in one transaction. Existing
// indexes are left untouched. It returns the statements that were applied.
func (db *DB) CreateIndexes(ctx context.Context) ([]string, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, &Error{Op: "begin index creation", Cause: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, stmt := range indexStatements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return nil, &Error{Op: "create indexes", Cause: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &Error{Op: "commit index creation", Cause: err}
	}
	return indexStatements, nil
}
