package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"camp_photos/internal/common"
	"camp_photos/internal/domain/model"
	"camp_photos/internal/domain/repository"
	"camp_photos/internal/platform/cache"
	"camp_photos/internal/platform/storage"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type ChallengeService struct {
	challengeRepo  repository.ChallengeRepository
	submissionRepo repository.SubmissionRepository
	storage        storage.Storage
	cache          cache.Cache
	now            func() time.Time
}

func NewChallengeService(
	challengeRepo repository.ChallengeRepository,
	submissionRepo repository.SubmissionRepository,
	store storage.Storage,
	c cache.Cache,
) *ChallengeService {
	return &ChallengeService{
		challengeRepo:  challengeRepo,
		submissionRepo: submissionRepo,
		storage:        store,
		cache:          c,
		now:            time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *ChallengeService) WithClock(now func() time.Time) *ChallengeService {
	s.now = now
	return s
}

type ChallengeRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	LimitTime   time.Time `json:"limit_time"`
	DayNumber   int       `json:"day_number"`
}

func (r ChallengeRequest) validate() error {
	var fields []string
	if r.Title == "" {
		fields = append(fields, "title: must not be blank")
	}
	if r.StartTime.IsZero() {
		fields = append(fields, "start_time: must not be null")
	}
	if r.LimitTime.IsZero() {
		fields = append(fields, "limit_time: must not be null")
	}
	if r.DayNumber < 1 {
		fields = append(fields, "day_number: must be at least 1")
	}
	if len(fields) > 0 {
		return &common.ValidationError{Fields: fields}
	}
	if !r.LimitTime.After(r.StartTime) {
		return fmt.Errorf("limit time must be after start time: %w", common.ErrBadRequest)
	}
	return nil
}

func (s *ChallengeService) Create(ctx context.Context, req ChallengeRequest) (*model.ChallengeView, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	c := &model.Challenge{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Slug:        slug.Make(req.Title),
		Description: req.Description,
		StartTime:   req.StartTime,
		LimitTime:   req.LimitTime,
		DayNumber:   req.DayNumber,
	}
	if err := s.challengeRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}
	view := s.toView(ctx, *c, model.Anonymous())
	return &view, nil
}

func (s *ChallengeService) Update(ctx context.Context, id string, req ChallengeRequest) (*model.ChallengeView, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	c, err := s.challengeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldDay := c.DayNumber
	c.Title = req.Title
	c.Slug = slug.Make(req.Title)
	c.Description = req.Description
	c.StartTime = req.StartTime
	c.LimitTime = req.LimitTime
	c.DayNumber = req.DayNumber

	if err := s.challengeRepo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update challenge: %w", err)
	}

	// A moved deadline or day renumbering changes what is disclosable; cached
	// galleries must not outlive that.
	s.invalidateGalleries(ctx, c.ID, oldDay, c.DayNumber)

	view := s.toView(ctx, *c, model.Anonymous())
	return &view, nil
}

// Delete removes the challenge and its submissions in one transaction, then
// cleans up the stored files. File deletion is best-effort: the rows are
// already gone and a leftover file is not worth failing the request.
func (s *ChallengeService) Delete(ctx context.Context, id string) error {
	challenge, err := s.challengeRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	urls, err := s.challengeRepo.DeleteWithSubmissions(ctx, id)
	if err != nil {
		return err
	}
	for _, u := range urls {
		if err := s.storage.Delete(ctx, u); err != nil {
			log.Printf("failed to delete stored file %s: %v", u, err)
		}
	}

	s.invalidateGalleries(ctx, challenge.ID, challenge.DayNumber)
	return nil
}

// invalidateGalleries drops the cached public views touching a challenge.
// Failures are logged only; the database already holds the truth.
func (s *ChallengeService) invalidateGalleries(ctx context.Context, id string, days ...int) {
	if s.cache == nil {
		return
	}
	keys := []string{"public:challenge:" + id}
	seen := map[int]bool{}
	for _, d := range days {
		if !seen[d] {
			keys = append(keys, fmt.Sprintf("gallery:day:%d", d))
			seen[d] = true
		}
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		log.Printf("failed to invalidate gallery cache for challenge %s: %v", id, err)
	}
}

func (s *ChallengeService) GetByID(ctx context.Context, id string, ident model.Identity) (*model.ChallengeView, error) {
	c, err := s.challengeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := s.toView(ctx, *c, ident)
	return &view, nil
}

// GetByDay lists one day's challenges with per-identity status. Anonymous
// callers never see COMPLETED.
func (s *ChallengeService) GetByDay(ctx context.Context, day int, ident model.Identity) ([]model.ChallengeView, error) {
	challenges, err := s.challengeRepo.ListByDay(ctx, day)
	if err != nil {
		return nil, err
	}
	views := make([]model.ChallengeView, 0, len(challenges))
	for _, c := range challenges {
		views = append(views, s.toView(ctx, c, ident))
	}
	return views, nil
}

// AvailableDays lists every day that has challenges, with its aggregate
// state. A day is COMPLETED once all of its challenges have expired.
func (s *ChallengeService) AvailableDays(ctx context.Context) ([]model.DayView, error) {
	days, err := s.challengeRepo.ListDayNumbers(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()

	views := make([]model.DayView, 0, len(days))
	for _, day := range days {
		challenges, err := s.challengeRepo.ListByDay(ctx, day)
		if err != nil {
			return nil, err
		}
		count, err := s.submissionRepo.CountByDay(ctx, day)
		if err != nil {
			return nil, err
		}
		views = append(views, model.DayView{
			Day:             day,
			Status:          model.DayStatus(challenges, now),
			ChallengeCount:  len(challenges),
			SubmissionCount: count,
		})
	}
	return views, nil
}

func (s *ChallengeService) toView(ctx context.Context, c model.Challenge, ident model.Identity) model.ChallengeView {
	hasSubmission := false
	if !ident.IsAnonymous() {
		exists, err := s.submissionRepo.ExistsByUserAndChallenge(ctx, ident.User.ID, c.ID)
		if err != nil {
			log.Printf("failed to check submission existence for challenge %s: %v", c.ID, err)
		}
		hasSubmission = exists
	}

	count, err := s.submissionRepo.CountByChallenge(ctx, c.ID)
	if err != nil {
		log.Printf("failed to count submissions for challenge %s: %v", c.ID, err)
	}

	return model.ChallengeView{
		Challenge:       c,
		Status:          model.ChallengeStatus(c, hasSubmission, s.now()),
		SubmissionCount: count,
	}
}
