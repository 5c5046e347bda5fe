package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"protopia/internal/domain"
)

// ResultRepository stores the composite final result, at most one live row
// per user.
type ResultRepository interface {
	Upsert(ctx context.Context, r domain.FinalResult) error
	GetByUser(ctx context.Context, userID string) (domain.FinalResult, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type PgResultRepository struct {
	pool *pgxpool.Pool
}

func NewPgResultRepository(pool *pgxpool.Pool) *PgResultRepository {
	return &PgResultRepository{pool: pool}
}

func (r *PgResultRepository) Upsert(ctx context.Context, res domain.FinalResult) error {
	topJSON, err := json.Marshal(res.TopTraits)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO final_results (user_id, final_score, verdict, top_traits, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id)
		DO UPDATE SET
			final_score = EXCLUDED.final_score,
			verdict = EXCLUDED.verdict,
			top_traits = EXCLUDED.top_traits,
			created_at = EXCLUDED.created_at
	`
	_, err = r.pool.Exec(ctx, query,
		res.UserID,
		res.FinalScore,
		res.Verdict,
		topJSON,
		res.CreatedAt,
	)
	return err
}

func (r *PgResultRepository) GetByUser(ctx context.Context, userID string) (domain.FinalResult, error) {
	const query = `
		SELECT user_id, final_score, verdict, top_traits, created_at
		FROM final_results
		WHERE user_id = $1
	`
	var res domain.FinalResult
	var topJSON []byte
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&res.UserID,
		&res.FinalScore,
		&res.Verdict,
		&topJSON,
		&res.CreatedAt,
	)
	if err != nil {
		return domain.FinalResult{}, err
	}
	if len(topJSON) > 0 {
		if err := json.Unmarshal(topJSON, &res.TopTraits); err != nil {
			return domain.FinalResult{}, err
		}
	}
	return res, nil
}

func (r *PgResultRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM final_results WHERE user_id = $1`, userID)
	return err
}
