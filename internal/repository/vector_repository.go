package repository

import (
	"context"
	"fmt"

	"jonglaw/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

// VectorRepository stores document chunks with their embeddings and runs
// cosine-similarity retrieval over them. Queries use raw SQL because the
// pgvector operators have no query-builder equivalent.
type VectorRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewVectorRepository(db *pgxpool.Pool, logger *zap.Logger) *VectorRepository {
	return &VectorRepository{
		db:     db,
		logger: logger,
	}
}

// InsertBatch writes one batch of chunks in a single transaction.
// len(docs) must equal len(embeddings).
func (r *VectorRepository) InsertBatch(ctx context.Context, docs []*models.Document, embeddings [][]float32) error {
	if len(docs) != len(embeddings) {
		return fmt.Errorf("document count %d does not match embedding count %d", len(docs), len(embeddings))
	}
	if len(docs) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const stmt = `
		INSERT INTO documents (id, content, metadata, embedding, created_at)
		VALUES ($1, $2, $3, $4, NOW())`

	for i, doc := range docs {
		_, err := tx.Exec(ctx, stmt,
			uuid.New(),
			doc.Content,
			doc.Metadata,
			pgvector.NewVector(embeddings[i]),
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// The halfvec cast matches the ANN index expression; without it the
// planner falls back to a sequential scan.
const similaritySearchQuery = `
		SELECT content, metadata,
		       1 - (embedding::halfvec(3072) <=> $1::halfvec(3072)) AS similarity
		FROM documents
		WHERE 1 - (embedding::halfvec(3072) <=> $1::halfvec(3072)) >= $2
		ORDER BY embedding::halfvec(3072) <=> $1::halfvec(3072)
		LIMIT $3`

// SimilaritySearch returns up to limit chunks whose cosine similarity to
// the query embedding is at least threshold, most similar first.
func (r *VectorRepository) SimilaritySearch(ctx context.Context, embedding []float32, threshold float64, limit int) ([]*models.DocumentMatch, error) {
	rows, err := r.db.Query(ctx, similaritySearchQuery, pgvector.NewVector(embedding), threshold, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*models.DocumentMatch
	for rows.Next() {
		var m models.DocumentMatch
		if err := rows.Scan(&m.Content, &m.Metadata, &m.Similarity); err != nil {
			return nil, err
		}
		matches = append(matches, &m)
	}

	return matches, rows.Err()
}

// DeleteByMST removes every chunk belonging to the law with the given
// serial number.
func (r *VectorRepository) DeleteByMST(ctx context.Context, mst string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE metadata->>'mst' = $1`, mst)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteUpload removes every chunk of one user-uploaded document,
// identified by its source name.
func (r *VectorRepository) DeleteUpload(ctx context.Context, source string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM documents WHERE metadata->>'source' = $1 AND metadata->>'type' = $2`,
		source, models.SourceTypeUpload)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// FindArticle looks up one stored article of a law by its number, e.g.
// "제3조". Returns nil when the article is not in the store.
func (r *VectorRepository) FindArticle(ctx context.Context, lawName, articleNo string) (*models.Document, error) {
	const query = `
		SELECT content, metadata
		FROM documents
		WHERE metadata->>'source' = $1 AND metadata->>'article_no' = $2
		LIMIT 1`

	var doc models.Document
	err := r.db.QueryRow(ctx, query, lawName, articleNo).Scan(&doc.Content, &doc.Metadata)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListUploadSources returns the distinct source names of user uploads.
func (r *VectorRepository) ListUploadSources(ctx context.Context) ([]string, error) {
	const query = `
		SELECT DISTINCT metadata->>'source'
		FROM documents
		WHERE metadata->>'type' = $1`

	rows, err := r.db.Query(ctx, query, models.SourceTypeUpload)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}

	return sources, rows.Err()
}

// ScanMetadata reads the metadata of the most recent chunks, newest
// first, up to limit rows. The metadata cache is rebuilt from this scan.
func (r *VectorRepository) ScanMetadata(ctx context.Context, limit int) ([]models.DocumentMetadata, error) {
	const query = `
		SELECT metadata
		FROM documents
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metas []models.DocumentMetadata
	for rows.Next() {
		var m models.DocumentMetadata
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		metas = append(metas, m)
	}

	return metas, rows.Err()
}
