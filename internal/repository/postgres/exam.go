package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"studyaid/internal/domain"
	"studyaid/internal/domain/models"
	"studyaid/internal/domain/repositories"
)

// PostgresExamRepository implements the ExamRepository interface
type PostgresExamRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewExamRepository creates a new exam repository
func NewExamRepository(config *RepositoryConfig) repositories.ExamRepository {
	return &PostgresExamRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts the exam header and its question batch. Run inside ExecTx;
// a failure on any question must roll back the header too.
func (r *PostgresExamRepository) Create(ctx context.Context, exam *models.Exam, questions []models.ExamQuestion) error {
	db := GetExecutor(ctx, r.pool)

	examQuery := fmt.Sprintf(`
		INSERT INTO %s (id, owner_id, title, topic, target_marks, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.tables.Exams)

	_, err := db.Exec(ctx, examQuery,
		exam.ID,
		exam.OwnerID,
		exam.Title,
		exam.Topic,
		exam.TargetMarks,
		exam.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create exam: %w", err)
	}

	questionQuery := fmt.Sprintf(`
		INSERT INTO %s (id, exam_id, question_number, question_text, marks, answer_text, model_answer)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.tables.ExamQuestions)

	for i := range questions {
		q := &questions[i]
		_, err := db.Exec(ctx, questionQuery,
			q.ID,
			q.ExamID,
			q.QuestionNumber,
			q.QuestionText,
			q.Marks,
			q.AnswerText,
			q.ModelAnswer,
		)
		if err != nil {
			return fmt.Errorf("create exam question %d: %w", q.QuestionNumber, err)
		}
	}

	return nil
}

// GetByID retrieves an exam with its questions ordered by question_number
func (r *PostgresExamRepository) GetByID(ctx context.Context, id, ownerID string) (*models.ExamWithQuestions, error) {
	db := GetExecutor(ctx, r.pool)

	examQuery := fmt.Sprintf(`
		SELECT id, owner_id, title, topic, target_marks, created_at
		FROM %s
		WHERE id = $1 AND owner_id = $2
	`, r.tables.Exams)

	var exam models.Exam
	err := db.QueryRow(ctx, examQuery, id, ownerID).Scan(
		&exam.ID,
		&exam.OwnerID,
		&exam.Title,
		&exam.Topic,
		&exam.TargetMarks,
		&exam.CreatedAt,
	)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("exam %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	questionQuery := fmt.Sprintf(`
		SELECT id, exam_id, question_number, question_text, marks, answer_text, model_answer
		FROM %s
		WHERE exam_id = $1
		ORDER BY question_number ASC
	`, r.tables.ExamQuestions)

	rows, err := db.Query(ctx, questionQuery, exam.ID)
	if err != nil {
		return nil, fmt.Errorf("list exam questions: %w", err)
	}
	defer rows.Close()

	var questions []models.ExamQuestion
	for rows.Next() {
		var q models.ExamQuestion
		err := rows.Scan(
			&q.ID,
			&q.ExamID,
			&q.QuestionNumber,
			&q.QuestionText,
			&q.Marks,
			&q.AnswerText,
			&q.ModelAnswer,
		)
		if err != nil {
			return nil, fmt.Errorf("scan exam question: %w", err)
		}
		questions = append(questions, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exam questions: %w", err)
	}

	return &models.ExamWithQuestions{Exam: exam, Questions: questions}, nil
}

// ListByOwner lists exam headers for an owner, newest first
func (r *PostgresExamRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Exam, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, title, topic, target_marks, created_at
		FROM %s
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, r.tables.Exams)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	defer rows.Close()

	var exams []models.Exam
	for rows.Next() {
		var exam models.Exam
		err := rows.Scan(
			&exam.ID,
			&exam.OwnerID,
			&exam.Title,
			&exam.Topic,
			&exam.TargetMarks,
			&exam.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan exam: %w", err)
		}
		exams = append(exams, exam)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exams: %w", err)
	}

	return exams, nil
}

// Delete removes an exam and its questions. Questions cascade with the
// exam; they have no identity of their own.
func (r *PostgresExamRepository) Delete(ctx context.Context, id, ownerID string) error {
	db := GetExecutor(ctx, r.pool)

	questionQuery := fmt.Sprintf(`
		DELETE FROM %s
		WHERE exam_id IN (SELECT id FROM %s WHERE id = $1 AND owner_id = $2)
	`, r.tables.ExamQuestions, r.tables.Exams)

	if _, err := db.Exec(ctx, questionQuery, id, ownerID); err != nil {
		return fmt.Errorf("delete exam questions: %w", err)
	}

	examQuery := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND owner_id = $2
	`, r.tables.Exams)

	result, err := db.Exec(ctx, examQuery, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("exam %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
