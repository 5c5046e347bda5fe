package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"protopia/internal/domain"
)

// QuestionRepository is the MCQ bank contract used by the pool selector and
// the scorer.
type QuestionRepository interface {
	Create(ctx context.Context, q domain.Question) error
	GetByID(ctx context.Context, id string) (domain.Question, error)
	// ListByDemographics returns questions whose age group is "all" or the
	// given range and whose gender field is empty or matches. When
	// requireProfession is set the profession must appear in the tags.
	ListByDemographics(ctx context.Context, ageRange, gender, profession string, requireProfession bool) ([]domain.Question, error)
	ListAll(ctx context.Context) ([]domain.Question, error)
}

type PgQuestionRepository struct {
	pool *pgxpool.Pool
}

func NewPgQuestionRepository(pool *pgxpool.Pool) *PgQuestionRepository {
	return &PgQuestionRepository{pool: pool}
}

const questionColumns = `id, text, trait, profession_tags, age_group, COALESCE(gender_specific, ''), weight, reverse_score`

func (r *PgQuestionRepository) Create(ctx context.Context, q domain.Question) error {
	const query = `
		INSERT INTO questions (id, text, trait, profession_tags, age_group, gender_specific, weight, reverse_score)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		q.ID,
		q.Text,
		q.Trait,
		q.ProfessionTags,
		q.AgeGroup,
		q.GenderSpecific,
		q.Weight,
		q.ReverseScore,
	)
	return err
}

func (r *PgQuestionRepository) GetByID(ctx context.Context, id string) (domain.Question, error) {
	const query = `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE id = $1
	`
	var q domain.Question
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&q.ID,
		&q.Text,
		&q.Trait,
		&q.ProfessionTags,
		&q.AgeGroup,
		&q.GenderSpecific,
		&q.Weight,
		&q.ReverseScore,
	)
	return q, err
}

func (r *PgQuestionRepository) ListByDemographics(ctx context.Context, ageRange, gender, profession string, requireProfession bool) ([]domain.Question, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE age_group IN ('all', $1)
		  AND (gender_specific IS NULL OR gender_specific = '' OR gender_specific = $2)
	`
	args := []any{ageRange, gender}
	if requireProfession {
		query += ` AND $3 = ANY(profession_tags)`
		args = append(args, profession)
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanQuestions(rows)
}

func (r *PgQuestionRepository) ListAll(ctx context.Context) ([]domain.Question, error) {
	const query = `
		SELECT ` + questionColumns + `
		FROM questions
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanQuestions(rows)
}

type pgRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanQuestions(rows pgRows) ([]domain.Question, error) {
	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(
			&q.ID,
			&q.Text,
			&q.Trait,
			&q.ProfessionTags,
			&q.AgeGroup,
			&q.GenderSpecific,
			&q.Weight,
			&q.ReverseScore,
		); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return questions, nil
}
