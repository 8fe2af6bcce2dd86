package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"camp_photos/internal/common"
	"camp_photos/internal/domain/model"
	"camp_photos/internal/domain/repository"
	"camp_photos/internal/platform/cache"
	"camp_photos/internal/platform/storage"

	"github.com/google/uuid"
)

type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	challengeRepo  repository.ChallengeRepository
	storage        storage.Storage
	cache          cache.Cache
	cacheTTL       time.Duration
	now            func() time.Time
}

func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	challengeRepo repository.ChallengeRepository,
	store storage.Storage,
	c cache.Cache,
	cacheTTL time.Duration,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: submissionRepo,
		challengeRepo:  challengeRepo,
		storage:        store,
		cache:          c,
		cacheTTL:       cacheTTL,
		now:            time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *SubmissionService) WithClock(now func() time.Time) *SubmissionService {
	s.now = now
	return s
}

// Create records the user's one submission for a challenge. The existence
// pre-check gives a friendly error in the common case; the UNIQUE constraint
// in the repository is what actually guarantees a single winner when two
// creates race.
func (s *SubmissionService) Create(ctx context.Context, user *model.User, challengeID, filename string, data []byte) (*model.Submission, error) {
	challenge, err := s.challengeRepo.FindByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	exists, err := s.submissionRepo.ExistsByUserAndChallenge(ctx, user.ID, challenge.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("you already uploaded a photo for this challenge, use PUT to replace it: %w", common.ErrConflict)
	}

	if err := s.checkUploadable(challenge, data); err != nil {
		return nil, err
	}

	imageURL, err := s.storage.Store(ctx, data, filename, challengeFolder(challenge))
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	submission := &model.Submission{
		ID:          uuid.NewString(),
		ImageURL:    imageURL,
		UserID:      user.ID,
		ChallengeID: challenge.ID,
	}
	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		// The row never landed; do not leave the file behind.
		if delErr := s.storage.Delete(ctx, imageURL); delErr != nil {
			log.Printf("failed to delete orphaned file %s: %v", imageURL, delErr)
		}
		return nil, err
	}

	submission.Username = user.Username
	submission.ChallengeTitle = challenge.Title
	return submission, nil
}

// Replace swaps the photo of an existing submission. UploadedAt keeps the
// original creation instant.
func (s *SubmissionService) Replace(ctx context.Context, user *model.User, challengeID, filename string, data []byte) (*model.Submission, error) {
	challenge, err := s.challengeRepo.FindByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	submission, err := s.submissionRepo.FindByUserAndChallenge(ctx, user.ID, challenge.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("no photo uploaded for this challenge yet: %w", common.ErrNotFound)
		}
		return nil, err
	}

	if err := s.checkUploadable(challenge, data); err != nil {
		return nil, err
	}

	// Old file removal is best-effort: data consistency is what matters.
	if err := s.storage.Delete(ctx, submission.ImageURL); err != nil {
		log.Printf("failed to delete previous file %s: %v", submission.ImageURL, err)
	}

	imageURL, err := s.storage.Store(ctx, data, filename, challengeFolder(challenge))
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	if err := s.submissionRepo.UpdateImageURL(ctx, submission.ID, imageURL); err != nil {
		return nil, err
	}
	submission.ImageURL = imageURL
	return submission, nil
}

func (s *SubmissionService) checkUploadable(challenge *model.Challenge, data []byte) error {
	// The deadline instant itself is already too late.
	if !s.now().Before(challenge.LimitTime) {
		return fmt.Errorf("time is up, the deadline was %s: %w",
			challenge.LimitTime.Format(time.RFC3339), common.ErrBadRequest)
	}
	if len(data) == 0 {
		return fmt.Errorf("uploaded file is empty: %w", common.ErrBadRequest)
	}
	return nil
}

func (s *SubmissionService) Mine(ctx context.Context, user *model.User) ([]model.Submission, error) {
	return s.submissionRepo.ListByUser(ctx, user.ID)
}

func (s *SubmissionService) All(ctx context.Context) ([]model.Submission, error) {
	return s.submissionRepo.ListAll(ctx)
}

// PublicByChallenge reveals a challenge's submissions to anonymous callers
// only after the deadline has passed.
func (s *SubmissionService) PublicByChallenge(ctx context.Context, challengeID string) ([]model.Submission, error) {
	challenge, err := s.challengeRepo.FindByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if !model.Disclosable(*challenge, s.now()) {
		return nil, fmt.Errorf("photos for this challenge are not public until %s: %w",
			challenge.LimitTime.Format(time.RFC3339), common.ErrForbidden)
	}

	key := "public:challenge:" + challenge.ID
	if cached, ok := s.cacheGet(ctx, key); ok {
		return cached, nil
	}

	submissions, err := s.submissionRepo.ListByChallenge(ctx, challenge.ID)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, submissions)
	return submissions, nil
}

// GalleryByDay unions the submissions of the day's already-expired
// challenges. Filtering happens on challenges, not on submissions, so an
// embargoed challenge leaks nothing, not even counts. Never fails for a day
// with no disclosable challenges; it returns an empty list.
func (s *SubmissionService) GalleryByDay(ctx context.Context, day int) ([]model.Submission, error) {
	challenges, err := s.challengeRepo.ListByDay(ctx, day)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var disclosableIDs []string
	for _, c := range challenges {
		if model.Disclosable(c, now) {
			disclosableIDs = append(disclosableIDs, c.ID)
		}
	}
	if len(disclosableIDs) == 0 {
		return []model.Submission{}, nil
	}

	key := fmt.Sprintf("gallery:day:%d", day)
	if cached, ok := s.cacheGet(ctx, key); ok {
		return cached, nil
	}

	submissions, err := s.submissionRepo.ListByChallengeIDs(ctx, disclosableIDs)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, submissions)
	return submissions, nil
}

// Disclosable galleries are effectively immutable (writes stop at the
// deadline), so a short TTL only has to cover admin deletions.
func (s *SubmissionService) cacheGet(ctx context.Context, key string) ([]model.Submission, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			log.Printf("cache get %s: %v", key, err)
		}
		return nil, false
	}
	var submissions []model.Submission
	if err := json.Unmarshal(raw, &submissions); err != nil {
		log.Printf("cache decode %s: %v", key, err)
		return nil, false
	}
	return submissions, true
}

func (s *SubmissionService) cacheSet(ctx context.Context, key string, submissions []model.Submission) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(submissions)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		log.Printf("cache set %s: %v", key, err)
	}
}

func challengeFolder(c *model.Challenge) string {
	return fmt.Sprintf("challenges/%d-%s", c.DayNumber, c.Slug)
}
