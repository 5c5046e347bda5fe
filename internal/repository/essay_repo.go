package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"protopia/internal/domain"
)

// EssayRepository stores written answers. Rows are append-only per
// submission and removed only on a full assessment reset.
type EssayRepository interface {
	Create(ctx context.Context, a domain.EssayAnswer) error
	ListByUser(ctx context.Context, userID string) ([]domain.EssayAnswer, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type PgEssayRepository struct {
	pool *pgxpool.Pool
}

func NewPgEssayRepository(pool *pgxpool.Pool) *PgEssayRepository {
	return &PgEssayRepository{pool: pool}
}

func (r *PgEssayRepository) Create(ctx context.Context, a domain.EssayAnswer) error {
	const query = `
		INSERT INTO essay_answers (id, user_id, ordinal, text, typing_seconds, paste_detected, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	var emb any
	if a.Embedding != nil {
		emb = *a.Embedding
	}
	_, err := r.pool.Exec(ctx, query,
		a.ID,
		a.UserID,
		a.Ordinal,
		a.Text,
		a.TypingSeconds,
		a.PasteDetected,
		emb,
		a.CreatedAt,
	)
	return err
}

func (r *PgEssayRepository) ListByUser(ctx context.Context, userID string) ([]domain.EssayAnswer, error) {
	const query = `
		SELECT id, user_id, ordinal, text, typing_seconds, paste_detected, embedding, created_at
		FROM essay_answers
		WHERE user_id = $1
		ORDER BY created_at, ordinal
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []domain.EssayAnswer
	for rows.Next() {
		var a domain.EssayAnswer
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.Ordinal,
			&a.Text,
			&a.TypingSeconds,
			&a.PasteDetected,
			&a.Embedding,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *PgEssayRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM essay_answers WHERE user_id = $1`, userID)
	return err
}
