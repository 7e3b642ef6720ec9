package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type PgVectorStore struct {
	db *pgxpool.Pool
}

func NewPgVectorStore(db *pgxpool.Pool) *PgVectorStore {
	return &PgVectorStore{db: db}
}

// Upsert replaces all sentences stored for caseID.
func (s *PgVectorStore) Upsert(ctx context.Context, caseID uuid.UUID, sentences []Sentence) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM case_sentences WHERE case_id = $1", caseID); err != nil {
		return fmt.Errorf("clear sentences: %w", err)
	}

	batch := &pgx.Batch{}
	for _, sent := range sentences {
		batch.Queue(
			`INSERT INTO case_sentences (case_id, sentence_index, content, embedding)
			 VALUES ($1, $2, $3, $4)`,
			caseID, sent.Index, sent.Text, pgvector.NewVector(sent.Embedding),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert sentences: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *PgVectorStore) Search(ctx context.Context, caseID uuid.UUID, query []float32, topK int) ([]Match, error) {
	if topK <= 0 {
		topK = 3
	}

	embedding := pgvector.NewVector(query)
	rows, err := s.db.Query(ctx,
		`SELECT sentence_index, content, 1 - (embedding <=> $1) AS score
		 FROM case_sentences
		 WHERE case_id = $2
		 ORDER BY embedding <=> $1, sentence_index
		 LIMIT $3`,
		embedding, caseID, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.Index, &m.Text, &m.Score); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *PgVectorStore) Delete(ctx context.Context, caseID uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM case_sentences WHERE case_id = $1", caseID)
	return err
}
