package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"camp_photos/internal/common"
	"camp_photos/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type SubmissionRepository interface {
	// Create inserts the row. A concurrent duplicate for the same
	// (user, challenge) pair loses to the UNIQUE constraint and observes
	// common.ErrConflict; the application never relies on check-then-insert
	// alone.
	Create(ctx context.Context, s *model.Submission) error
	UpdateImageURL(ctx context.Context, id, imageURL string) error
	FindByUserAndChallenge(ctx context.Context, userID, challengeID string) (*model.Submission, error)
	ExistsByUserAndChallenge(ctx context.Context, userID, challengeID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]model.Submission, error)
	ListAll(ctx context.Context) ([]model.Submission, error)
	ListByChallenge(ctx context.Context, challengeID string) ([]model.Submission, error)
	ListByChallengeIDs(ctx context.Context, challengeIDs []string) ([]model.Submission, error)
	CountByChallenge(ctx context.Context, challengeID string) (int, error)
	CountByDay(ctx context.Context, day int) (int, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

const submissionSelect = `
	SELECT s.id, s.image_url, s.uploaded_at, s.user_id, s.challenge_id,
	       u.username, c.title
	FROM submissions s
	JOIN users u ON s.user_id = u.id
	JOIN challenges c ON s.challenge_id = c.id`

func (r *pgSubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	query := `INSERT INTO submissions (id, image_url, user_id, challenge_id)
	          VALUES ($1, $2, $3, $4)
	          RETURNING uploaded_at`
	err := r.db.QueryRowContext(ctx, query, s.ID, s.ImageURL, s.UserID, s.ChallengeID).Scan(&s.UploadedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique (user_id, challenge_id)
			return fmt.Errorf("submission already exists for this challenge: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgSubmissionRepository.Create: %w", err)
	}
	return nil
}

// UpdateImageURL replaces only the image; uploaded_at keeps its creation
// value.
func (r *pgSubmissionRepository) UpdateImageURL(ctx context.Context, id, imageURL string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE submissions SET image_url = $1 WHERE id = $2`, imageURL, id)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.UpdateImageURL: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgSubmissionRepository) FindByUserAndChallenge(ctx context.Context, userID, challengeID string) (*model.Submission, error) {
	query := submissionSelect + ` WHERE s.user_id = $1 AND s.challenge_id = $2`
	s := &model.Submission{}
	err := r.db.QueryRowContext(ctx, query, userID, challengeID).Scan(
		&s.ID, &s.ImageURL, &s.UploadedAt, &s.UserID, &s.ChallengeID, &s.Username, &s.ChallengeTitle,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.FindByUserAndChallenge: %w", err)
	}
	return s, nil
}

func (r *pgSubmissionRepository) ExistsByUserAndChallenge(ctx context.Context, userID, challengeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM submissions WHERE user_id = $1 AND challenge_id = $2)`,
		userID, challengeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("pgSubmissionRepository.ExistsByUserAndChallenge: %w", err)
	}
	return exists, nil
}

func (r *pgSubmissionRepository) ListByUser(ctx context.Context, userID string) ([]model.Submission, error) {
	return r.list(ctx, submissionSelect+` WHERE s.user_id = $1 ORDER BY s.uploaded_at ASC`, userID)
}

func (r *pgSubmissionRepository) ListAll(ctx context.Context) ([]model.Submission, error) {
	return r.list(ctx, submissionSelect+` ORDER BY s.uploaded_at ASC`)
}

func (r *pgSubmissionRepository) ListByChallenge(ctx context.Context, challengeID string) ([]model.Submission, error) {
	return r.list(ctx, submissionSelect+` WHERE s.challenge_id = $1 ORDER BY s.uploaded_at ASC`, challengeID)
}

func (r *pgSubmissionRepository) ListByChallengeIDs(ctx context.Context, challengeIDs []string) ([]model.Submission, error) {
	if len(challengeIDs) == 0 {
		return []model.Submission{}, nil
	}
	placeholders := make([]string, len(challengeIDs))
	args := make([]interface{}, len(challengeIDs))
	for i, id := range challengeIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := submissionSelect +
		` WHERE s.challenge_id IN (` + strings.Join(placeholders, ",") + `) ORDER BY s.uploaded_at ASC`
	return r.list(ctx, query, args...)
}

func (r *pgSubmissionRepository) CountByChallenge(ctx context.Context, challengeID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions WHERE challenge_id = $1`, challengeID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("pgSubmissionRepository.CountByChallenge: %w", err)
	}
	return n, nil
}

func (r *pgSubmissionRepository) CountByDay(ctx context.Context, day int) (int, error) {
	query := `SELECT COUNT(*) FROM submissions s
	          JOIN challenges c ON s.challenge_id = c.id
	          WHERE c.day_number = $1`
	var n int
	if err := r.db.QueryRowContext(ctx, query, day).Scan(&n); err != nil {
		return 0, fmt.Errorf("pgSubmissionRepository.CountByDay: %w", err)
	}
	return n, nil
}

func (r *pgSubmissionRepository) list(ctx context.Context, query string, args ...interface{}) ([]model.Submission, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.list query: %w", err)
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.ImageURL, &s.UploadedAt, &s.UserID, &s.ChallengeID, &s.Username, &s.ChallengeTitle); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.list scan: %w", err)
		}
		submissions = append(submissions, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.list rows.Err: %w", err)
	}
	return submissions, nil
}
