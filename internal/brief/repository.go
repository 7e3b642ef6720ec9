package brief

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikhilbhutani/casebrief/internal/models"
)

type Repository interface {
	Save(ctx context.Context, b *models.Brief) error
	Get(ctx context.Context, id uuid.UUID) (*models.Brief, error)
	List(ctx context.Context, limit, offset int) ([]models.Brief, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type PgRepository struct {
	db *pgxpool.Pool
}

func NewPgRepository(db *pgxpool.Pool) *PgRepository {
	return &PgRepository{db: db}
}

const briefColumns = `id, title, source_type, tier, summary, issues, highlighted, question, answer,
	summary_max_len, chunks, degraded, text_chars, created_at`

func (r *PgRepository) Save(ctx context.Context, b *models.Brief) error {
	issues, err := json.Marshal(b.Issues)
	if err != nil {
		return fmt.Errorf("marshal issues: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO briefs (`+briefColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 ON CONFLICT (id) DO UPDATE SET
		   title = EXCLUDED.title, source_type = EXCLUDED.source_type, tier = EXCLUDED.tier,
		   summary = EXCLUDED.summary, issues = EXCLUDED.issues, highlighted = EXCLUDED.highlighted,
		   question = EXCLUDED.question, answer = EXCLUDED.answer,
		   summary_max_len = EXCLUDED.summary_max_len, chunks = EXCLUDED.chunks,
		   degraded = EXCLUDED.degraded, text_chars = EXCLUDED.text_chars`,
		b.ID, b.Title, b.SourceType, b.Tier, b.Summary, issues, b.Highlighted, b.Question, b.Answer,
		b.SummaryMaxLen, b.Chunks, b.Degraded, b.TextChars, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert brief: %w", err)
	}
	return nil
}

func (r *PgRepository) Get(ctx context.Context, id uuid.UUID) (*models.Brief, error) {
	b, err := scanBrief(r.db.QueryRow(ctx, `SELECT `+briefColumns+` FROM briefs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get brief: %w", err)
	}
	return b, nil
}

func (r *PgRepository) List(ctx context.Context, limit, offset int) ([]models.Brief, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+briefColumns+` FROM briefs ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list briefs: %w", err)
	}
	defer rows.Close()

	var out []models.Brief
	for rows.Next() {
		b, err := scanBrief(rows)
		if err != nil {
			return nil, fmt.Errorf("scan brief: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *PgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM briefs WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete brief: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanBrief(row pgx.Row) (*models.Brief, error) {
	var b models.Brief
	var issues []byte
	err := row.Scan(&b.ID, &b.Title, &b.SourceType, &b.Tier, &b.Summary, &issues, &b.Highlighted,
		&b.Question, &b.Answer, &b.SummaryMaxLen, &b.Chunks, &b.Degraded, &b.TextChars, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(issues, &b.Issues); err != nil {
		return nil, fmt.Errorf("unmarshal issues: %w", err)
	}
	return &b, nil
}

// MemoryRepository keeps briefs in process. Used when no database is configured.
type MemoryRepository struct {
	mu     sync.RWMutex
	briefs map[uuid.UUID]models.Brief
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{briefs: make(map[uuid.UUID]models.Brief)}
}

func (r *MemoryRepository) Save(_ context.Context, b *models.Brief) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	cp.Issues = append([]string(nil), b.Issues...)
	r.briefs[b.ID] = cp
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id uuid.UUID) (*models.Brief, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.briefs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (r *MemoryRepository) List(_ context.Context, limit, offset int) ([]models.Brief, error) {
	r.mu.RLock()
	all := make([]models.Brief, 0, len(r.briefs))
	for _, b := range r.briefs {
		all = append(all, b)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.briefs[id]; !ok {
		return ErrNotFound
	}
	delete(r.briefs, id)
	return nil
}
