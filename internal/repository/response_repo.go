package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"protopia/internal/domain"
)

// ResponseRepository stores raw MCQ answers. Rows are always replaced
// wholesale on resubmission, never merged.
type ResponseRepository interface {
	Create(ctx context.Context, r domain.UserResponse) error
	DeleteByUser(ctx context.Context, userID string) error
}

// ScoreRepository stores the derived per-trait MCQ averages.
type ScoreRepository interface {
	ReplaceForUser(ctx context.Context, userID string, scores []domain.TraitScore) error
	MapByUser(ctx context.Context, userID string) (map[string]float64, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type PgResponseRepository struct {
	pool *pgxpool.Pool
}

func NewPgResponseRepository(pool *pgxpool.Pool) *PgResponseRepository {
	return &PgResponseRepository{pool: pool}
}

func (r *PgResponseRepository) Create(ctx context.Context, resp domain.UserResponse) error {
	const query = `
		INSERT INTO user_responses (id, user_id, question_id, answer)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query,
		resp.ID,
		resp.UserID,
		resp.QuestionID,
		resp.Answer,
	)
	return err
}

func (r *PgResponseRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_responses WHERE user_id = $1`, userID)
	return err
}

type PgScoreRepository struct {
	pool *pgxpool.Pool
}

func NewPgScoreRepository(pool *pgxpool.Pool) *PgScoreRepository {
	return &PgScoreRepository{pool: pool}
}

// ReplaceForUser wipes and rewrites the user's trait scores in one
// transaction so readers never observe a partial recomputation.
func (r *PgScoreRepository) ReplaceForUser(ctx context.Context, userID string, scores []domain.TraitScore) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM trait_scores WHERE user_id = $1`, userID); err != nil {
		return err
	}
	for _, s := range scores {
		if _, err := tx.Exec(ctx,
			`INSERT INTO trait_scores (user_id, trait, score) VALUES ($1, $2, $3)`,
			s.UserID, s.Trait, s.Score,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PgScoreRepository) MapByUser(ctx context.Context, userID string) (map[string]float64, error) {
	const query = `
		SELECT trait, score
		FROM trait_scores
		WHERE user_id = $1
		ORDER BY trait
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make(map[string]float64)
	for rows.Next() {
		var trait string
		var score float64
		if err := rows.Scan(&trait, &score); err != nil {
			return nil, err
		}
		scores[trait] = score
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}

func (r *PgScoreRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM trait_scores WHERE user_id = $1`, userID)
	return err
}
