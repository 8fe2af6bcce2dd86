package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"camp_photos/internal/common"
	"camp_photos/internal/domain/model"
)

type ChallengeRepository interface {
	Create(ctx context.Context, c *model.Challenge) error
	Update(ctx context.Context, c *model.Challenge) error
	FindByID(ctx context.Context, id string) (*model.Challenge, error)
	ListByDay(ctx context.Context, day int) ([]model.Challenge, error)
	ListDayNumbers(ctx context.Context) ([]int, error)
	// DeleteWithSubmissions removes a challenge and its submissions in one
	// transaction and returns the image URLs of the removed submissions so
	// the caller can clean up stored files.
	DeleteWithSubmissions(ctx context.Context, id string) ([]string, error)
}

type pgChallengeRepository struct {
	db *sql.DB
}

func NewPgChallengeRepository(db *sql.DB) ChallengeRepository {
	return &pgChallengeRepository{db: db}
}

func (r *pgChallengeRepository) Create(ctx context.Context, c *model.Challenge) error {
	query := `INSERT INTO challenges (id, title, slug, description, start_time, limit_time, day_number)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Title, c.Slug, c.Description, c.StartTime, c.LimitTime, c.DayNumber)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.Create: %w", err)
	}
	return nil
}

func (r *pgChallengeRepository) Update(ctx context.Context, c *model.Challenge) error {
	query := `UPDATE challenges SET
	            title = $1, slug = $2, description = $3, start_time = $4,
	            limit_time = $5, day_number = $6
	          WHERE id = $7`
	res, err := r.db.ExecContext(ctx, query, c.Title, c.Slug, c.Description, c.StartTime, c.LimitTime, c.DayNumber, c.ID)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgChallengeRepository) FindByID(ctx context.Context, id string) (*model.Challenge, error) {
	query := `SELECT id, title, slug, description, start_time, limit_time, day_number, created_at
	          FROM challenges WHERE id = $1`
	c := &model.Challenge{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Title, &c.Slug, &c.Description, &c.StartTime, &c.LimitTime, &c.DayNumber, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgChallengeRepository.FindByID: %w", err)
	}
	return c, nil
}

func (r *pgChallengeRepository) ListByDay(ctx context.Context, day int) ([]model.Challenge, error) {
	query := `SELECT id, title, slug, description, start_time, limit_time, day_number, created_at
	          FROM challenges WHERE day_number = $1 ORDER BY start_time ASC`
	rows, err := r.db.QueryContext(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.ListByDay: %w", err)
	}
	defer rows.Close()

	challenges := []model.Challenge{}
	for rows.Next() {
		var c model.Challenge
		if err := rows.Scan(&c.ID, &c.Title, &c.Slug, &c.Description, &c.StartTime, &c.LimitTime, &c.DayNumber, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgChallengeRepository.ListByDay scan: %w", err)
		}
		challenges = append(challenges, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.ListByDay rows.Err: %w", err)
	}
	return challenges, nil
}

func (r *pgChallengeRepository) ListDayNumbers(ctx context.Context) ([]int, error) {
	query := `SELECT DISTINCT day_number FROM challenges ORDER BY day_number ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.ListDayNumbers: %w", err)
	}
	defer rows.Close()

	days := []int{}
	for rows.Next() {
		var d int
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("pgChallengeRepository.ListDayNumbers scan: %w", err)
		}
		days = append(days, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.ListDayNumbers rows.Err: %w", err)
	}
	return days, nil
}

func (r *pgChallengeRepository) DeleteWithSubmissions(ctx context.Context, id string) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.DeleteWithSubmissions begin: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `DELETE FROM submissions WHERE challenge_id = $1 RETURNING image_url`, id)
	if err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.DeleteWithSubmissions delete submissions: %w", err)
	}
	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			rows.Close()
			return nil, fmt.Errorf("pgChallengeRepository.DeleteWithSubmissions scan: %w", err)
		}
		urls = append(urls, u)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("pgChallengeRepository.DeleteWithSubmissions rows.Err: %w", err)
	}
	rows.Close()

	res, err := tx.ExecContext(ctx, `DELETE FROM challenges WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.DeleteWithSubmissions delete challenge: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, common.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.DeleteWithSubmissions commit: %w", err)
	}
	return urls, nil
}
