package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jonathan/cvfeed/internal/types"
)

// -----------------------------------------------------------------------------
// Candidate Methods
// -----------------------------------------------------------------------------

const candidateColumns = `id, created_at, updated_at, source, source_file_name, data`

// fullNameExpr extracts candidate.fullName from the data document.
const fullNameExpr = `data->'candidate'->>'fullName'`

// FetchNewCandidates returns every candidate with id strictly greater than minID, ascending.
func (db *DB) FetchNewCandidates(ctx context.Context, minID int64) ([]*Candidate, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+candidateColumns+`
		 FROM cv_profiles
		 WHERE id > $1
		 ORDER BY id ASC`,
		minID,
	)
	if err != nil {
		return nil, &Error{Op: "fetch new candidates", Cause: err}
	}
	candidates, err := collectCandidates(rows)
	if err != nil {
		return nil, &Error{Op: "fetch new candidates", Cause: err}
	}
	return candidates, nil
}

// GetCandidate retrieves a candidate by id. Returns nil, nil when no row exists.
func (db *DB) GetCandidate(ctx context.Context, id int64) (*Candidate, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+candidateColumns+` FROM cv_profiles WHERE id = $1`,
		id,
	)
	if err != nil {
		return nil, &Error{Op: "get candidate", Cause: err}
	}
	candidates, err := collectCandidates(rows)
	if err != nil {
		return nil, &Error{Op: "get candidate", Cause: err}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return candidates[0], nil
}

// GetAdjacentIDs returns the nearest existing ids strictly below and above id.
func (db *DB) GetAdjacentIDs(ctx context.Context, id int64) (*Navigation, error) {
	var nav Navigation
	err := db.pool.QueryRow(ctx,
		`SELECT
		   (SELECT id FROM cv_profiles WHERE id < $1 ORDER BY id DESC LIMIT 1),
		   (SELECT id FROM cv_profiles WHERE id > $1 ORDER BY id ASC LIMIT 1)`,
		id,
	).Scan(&nav.Prev, &nav.Next)
	if err != nil {
		return nil, &Error{Op: "get adjacent candidate ids", Cause: err}
	}
	return &nav, nil
}

// ListCandidateProjections returns projections of candidates with id > afterID
// in ascending id order. A non-positive limit returns every remaining row.
func (db *DB) ListCandidateProjections(ctx context.Context, afterID int64, limit int) ([]types.ProjectionEntry, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if limit > 0 {
		rows, err = db.pool.Query(ctx,
			`SELECT id, data FROM cv_profiles WHERE id > $1 ORDER BY id ASC LIMIT $2`,
			afterID, limit,
		)
	} else {
		rows, err = db.pool.Query(ctx,
			`SELECT id, data FROM cv_profiles WHERE id > $1 ORDER BY id ASC`,
			afterID,
		)
	}
	if err != nil {
		return nil, &Error{Op: "list candidates", Cause: err}
	}

	docs, err := collectDocuments(rows)
	if err != nil {
		return nil, &Error{Op: "list candidates", Cause: err}
	}

	entries := make([]types.ProjectionEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, types.ProjectionEntry{
			ID:         d.ID,
			Projection: types.ParseCandidateData(d.Raw).Project(),
		})
	}
	return entries, nil
}

// ListDistinctJobTitles returns the distinct non-empty primaryProfession values, sorted.
func (db *DB) ListDistinctJobTitles(ctx context.Context) ([]string, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT DISTINCT data->'candidate'->>'primaryProfession' AS title
		 FROM cv_profiles
		 WHERE btrim(coalesce(data->'candidate'->>'primaryProfession', '')) <> ''
		 ORDER BY title`,
	)
	if err != nil {
		return nil, &Error{Op: "list job titles", Cause: err}
	}

	titles, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, &Error{Op: "list job titles", Cause: err}
	}
	if titles == nil {
		titles = []string{}
	}
	return titles, nil
}

// FetchFirstCandidates returns up to limit candidates, one per distinct full
// name (the lowest id), ordered by id. Rows without a full name are each kept.
func (db *DB) FetchFirstCandidates(ctx context.Context, limit int) ([]*Candidate, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+candidateColumns+`
		 FROM (
		   SELECT DISTINCT ON (coalesce(`+fullNameExpr+`, 'id:' || id::text)) `+candidateColumns+`
		   FROM cv_profiles
		   ORDER BY coalesce(`+fullNameExpr+`, 'id:' || id::text), id
		 ) first_per_name
		 ORDER BY id ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, &Error{Op: "fetch first candidates", Cause: err}
	}
	candidates, err := collectCandidates(rows)
	if err != nil {
		return nil, &Error{Op: "fetch first candidates", Cause: err}
	}
	return candidates, nil
}

// DeduplicateByFullName deletes every candidate whose full name also belongs
// to a lower id. Rows without a full name are left alone. The delete runs in a
// single transaction and returns the number of removed rows.
func (db *DB) DeduplicateByFullName(ctx context.Context) (int64, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, &Error{Op: "begin deduplication", Cause: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`DELETE FROM cv_profiles
		 WHERE id IN (
		   SELECT id FROM (
		     SELECT id, ROW_NUMBER() OVER (PARTITION BY `+fullNameExpr+` ORDER BY id) AS rn
		     FROM cv_profiles
		     WHERE `+fullNameExpr+` IS NOT NULL
		   ) ranked
		   WHERE rn > 1
		 )`,
	)
	if err != nil {
		return 0, &Error{Op: "deduplicate candidates", Cause: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, &Error{Op: "commit deduplication", Cause: err}
	}
	return tag.RowsAffected(), nil
}

// ListCandidateDocuments returns the raw data document of every row, ascending id.
func (db *DB) ListCandidateDocuments(ctx context.Context) ([]Document, error) {
	rows, err := db.pool.Query(ctx, `SELECT id, data FROM cv_profiles ORDER BY id ASC`)
	if err != nil {
		return nil, &Error{Op: "list candidate documents", Cause: err}
	}
	docs, err := collectDocuments(rows)
	if err != nil {
		return nil, &Error{Op: "list candidate documents", Cause: err}
	}
	return docs, nil
}

// collectCandidates scans rows selected with candidateColumns.
func collectCandidates(rows pgx.Rows) ([]*Candidate, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Candidate, error) {
		var c Candidate
		var raw []byte
		if err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.Source, &c.SourceFileName, &raw); err != nil {
			return nil, err
		}
		c.Raw = raw
		c.Data = types.ParseCandidateData(raw)
		return &c, nil
	})
}

// collectDocuments scans (id, data) rows.
func collectDocuments(rows pgx.Rows) ([]Document, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Document, error) {
		var d Document
		var raw []byte
		if err := row.Scan(&d.ID, &raw); err != nil {
			return d, err
		}
		d.Raw = raw
		return d, nil
	})
}
