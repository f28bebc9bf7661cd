package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// Store wraps the Postgres connection holding the dialogue corpus.
// The dialogues table (id, dialogue_id, content, embedding) is populated by an
// external ingestion step; this client only reads it.
type Store struct {
	DB *sql.DB
}

// SearchResult is a single retrieval hit, ephemeral and produced per query.
type SearchResult struct {
	RecordID   int64   `json:"record_id"`
	DialogueID string  `json:"dialogue_id"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

// New wraps an existing database handle.
func New(db *sql.DB) *Store {
	return &Store{DB: db}
}

// NewWithDSN opens a Postgres connection and verifies it is reachable.
func NewWithDSN(ctx context.Context, dsn string, timeout time.Duration) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{DB: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.DB.Close()
}

// SearchDialogues returns the closest dialogue excerpts for the supplied vector,
// sorted by cosine similarity descending with ties broken by id ascending.
func (s *Store) SearchDialogues(ctx context.Context, vector []float32, topK int) ([]SearchResult, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("vector must not be empty")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("top_k must be positive, got %d", topK)
	}
	vecLiteral, err := encodeVectorLiteral(vector)
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, dialogue_id, content, 1 - (embedding <=> $1::vector) AS similarity
FROM dialogues
ORDER BY similarity DESC, id ASC
LIMIT $2
`, vecLiteral, topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []SearchResult
	for rows.Next() {
		var res SearchResult
		if err := rows.Scan(&res.RecordID, &res.DialogueID, &res.Content, &res.Similarity); err != nil {
			return nil, err
		}
		res.Similarity = clampSimilarity(res.Similarity)
		results = append(results, res)
	}
	return results, rows.Err()
}

// CountDialogues returns the total number of indexed dialogue records.
// Used only for the health indicator; callers must tolerate failures here
// without affecting the query path.
func (s *Store) CountDialogues(ctx context.Context) (int64, error) {
	var count int64
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM dialogues`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// clampSimilarity maps the raw 1-distance value into [0,1]. Slightly negative
// values occur when stored vectors are not perfectly unit length.
func clampSimilarity(val float64) float64 {
	if val < 0 {
		return 0
	}
	if val > 1 {
		return 1
	}
	return val
}

func encodeVectorLiteral(vec []float32) (string, error) {
	if len(vec) == 0 {
		return "", fmt.Errorf("vector must not be empty")
	}
	var builder strings.Builder
	builder.WriteByte('[')
	for i, f := range vec {
		if i > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	builder.WriteByte(']')
	return builder.String(), nil
}
