package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"protopia/internal/domain"
)

// ProgressRepository owns the single per-user stage record. Every mutation
// is a single statement so readers never see a status without its dependent
// snapshot fields.
type ProgressRepository interface {
	GetOrCreate(ctx context.Context, userID string) (domain.Progress, error)
	SetStatus(ctx context.Context, userID string, status domain.Status) error
	// SaveSnapshot stores the essay snapshot and the new status together.
	SaveSnapshot(ctx context.Context, userID string, snapshot *domain.EssaySnapshot, status domain.Status) error
	// SaveVRScore stores the VR score and the new status together.
	SaveVRScore(ctx context.Context, userID string, score float64, status domain.Status) error
	// Reset returns the record to NOT_STARTED with snapshot and VR score cleared.
	Reset(ctx context.Context, userID string) error
}

type PgProgressRepository struct {
	pool *pgxpool.Pool
}

func NewPgProgressRepository(pool *pgxpool.Pool) *PgProgressRepository {
	return &PgProgressRepository{pool: pool}
}

func (r *PgProgressRepository) GetOrCreate(ctx context.Context, userID string) (domain.Progress, error) {
	const query = `
		INSERT INTO assessment_progress (user_id, status, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING user_id, status, essay_snapshot, vr_score, updated_at
	`
	var p domain.Progress
	var snapshotJSON []byte
	err := r.pool.QueryRow(ctx, query, userID, domain.StatusNotStarted, time.Now().UTC()).Scan(
		&p.UserID,
		&p.Status,
		&snapshotJSON,
		&p.VRScore,
		&p.UpdatedAt,
	)
	if err != nil {
		return domain.Progress{}, err
	}
	if len(snapshotJSON) > 0 {
		var snap domain.EssaySnapshot
		if err := json.Unmarshal(snapshotJSON, &snap); err != nil {
			return domain.Progress{}, err
		}
		p.EssaySnapshot = &snap
	}
	return p, nil
}

func (r *PgProgressRepository) SetStatus(ctx context.Context, userID string, status domain.Status) error {
	const query = `
		UPDATE assessment_progress
		SET status = $2, updated_at = $3
		WHERE user_id = $1
	`
	_, err := r.pool.Exec(ctx, query, userID, status, time.Now().UTC())
	return err
}

func (r *PgProgressRepository) SaveSnapshot(ctx context.Context, userID string, snapshot *domain.EssaySnapshot, status domain.Status) error {
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	const query = `
		UPDATE assessment_progress
		SET essay_snapshot = $2, status = $3, updated_at = $4
		WHERE user_id = $1
	`
	_, err = r.pool.Exec(ctx, query, userID, snapshotJSON, status, time.Now().UTC())
	return err
}

func (r *PgProgressRepository) SaveVRScore(ctx context.Context, userID string, score float64, status domain.Status) error {
	const query = `
		UPDATE assessment_progress
		SET vr_score = $2, status = $3, updated_at = $4
		WHERE user_id = $1
	`
	_, err := r.pool.Exec(ctx, query, userID, score, status, time.Now().UTC())
	return err
}

func (r *PgProgressRepository) Reset(ctx context.Context, userID string) error {
	const query = `
		UPDATE assessment_progress
		SET status = $2, essay_snapshot = NULL, vr_score = NULL, updated_at = $3
		WHERE user_id = $1
	`
	_, err := r.pool.Exec(ctx, query, userID, domain.StatusNotStarted, time.Now().UTC())
	return err
}
