package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"protopia/internal/domain"
)

// VRQuestionRepository is the spoken-interview question pool.
type VRQuestionRepository interface {
	Create(ctx context.Context, q domain.VRQuestion) error
	ListRandom(ctx context.Context, n int) ([]domain.VRQuestion, error)
}

// VRSessionRepository manages interview sessions. Answers live as an ordered
// JSON list on the session row; AppendAnswer and Complete are single-statement
// updates so concurrent duplicates cannot interleave partial state.
type VRSessionRepository interface {
	Create(ctx context.Context, s domain.VRSession) error
	GetByID(ctx context.Context, id, userID string) (domain.VRSession, error)
	AppendAnswer(ctx context.Context, id string, answer domain.VRAnswer) error
	Complete(ctx context.Context, id string, completedAt time.Time) error
	DeleteByUser(ctx context.Context, userID string) error
}

type PgVRQuestionRepository struct {
	pool *pgxpool.Pool
}

func NewPgVRQuestionRepository(pool *pgxpool.Pool) *PgVRQuestionRepository {
	return &PgVRQuestionRepository{pool: pool}
}

func (r *PgVRQuestionRepository) Create(ctx context.Context, q domain.VRQuestion) error {
	const query = `
		INSERT INTO vr_questions (id, text, pillar_key, pillar_name, tags)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query, q.ID, q.Text, q.PillarKey, q.PillarName, q.Tags)
	return err
}

func (r *PgVRQuestionRepository) ListRandom(ctx context.Context, n int) ([]domain.VRQuestion, error) {
	const query = `
		SELECT id, text, pillar_key, pillar_name, tags
		FROM vr_questions
		ORDER BY random()
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []domain.VRQuestion
	for rows.Next() {
		var q domain.VRQuestion
		if err := rows.Scan(&q.ID, &q.Text, &q.PillarKey, &q.PillarName, &q.Tags); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return questions, nil
}

type PgVRSessionRepository struct {
	pool *pgxpool.Pool
}

func NewPgVRSessionRepository(pool *pgxpool.Pool) *PgVRSessionRepository {
	return &PgVRSessionRepository{pool: pool}
}

func (r *PgVRSessionRepository) Create(ctx context.Context, s domain.VRSession) error {
	answers := s.Answers
	if answers == nil {
		answers = []domain.VRAnswer{}
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO vr_sessions (id, user_id, scenario, answers, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.pool.Exec(ctx, query, s.ID, s.UserID, s.Scenario, answersJSON, s.StartedAt, s.CompletedAt)
	return err
}

func (r *PgVRSessionRepository) GetByID(ctx context.Context, id, userID string) (domain.VRSession, error) {
	const query = `
		SELECT id, user_id, scenario, answers, started_at, completed_at
		FROM vr_sessions
		WHERE id = $1 AND user_id = $2
	`
	var s domain.VRSession
	var answersJSON []byte
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&s.ID,
		&s.UserID,
		&s.Scenario,
		&answersJSON,
		&s.StartedAt,
		&s.CompletedAt,
	)
	if err != nil {
		return domain.VRSession{}, err
	}
	if len(answersJSON) > 0 {
		if err := json.Unmarshal(answersJSON, &s.Answers); err != nil {
			return domain.VRSession{}, err
		}
	}
	return s, nil
}

func (r *PgVRSessionRepository) AppendAnswer(ctx context.Context, id string, answer domain.VRAnswer) error {
	answerJSON, err := json.Marshal(answer)
	if err != nil {
		return err
	}
	const query = `
		UPDATE vr_sessions
		SET answers = answers || $2::jsonb
		WHERE id = $1 AND completed_at IS NULL
	`
	_, err = r.pool.Exec(ctx, query, id, answerJSON)
	return err
}

func (r *PgVRSessionRepository) Complete(ctx context.Context, id string, completedAt time.Time) error {
	const query = `
		UPDATE vr_sessions
		SET completed_at = $2
		WHERE id = $1 AND completed_at IS NULL
	`
	_, err := r.pool.Exec(ctx, query, id, completedAt)
	return err
}

func (r *PgVRSessionRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM vr_sessions WHERE user_id = $1`, userID)
	return err
}
