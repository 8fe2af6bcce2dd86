package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"camp_photos/internal/common"
	"camp_photos/internal/domain/model"
	"camp_photos/internal/platform/cache"
)

// In-memory collaborators mirroring the postgres repositories' contracts,
// including the unique-pair conflict on submission insert.

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User // by username
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*model.User{}}
}

func (r *memUserRepo) Create(ctx context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Username]; ok {
		return fmt.Errorf("username %q already taken: %w", u.Username, common.ErrConflict)
	}
	cp := *u
	cp.CreatedAt = time.Now()
	r.users[u.Username] = &cp
	return nil
}

func (r *memUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

type memSubmissionRepo struct {
	mu    sync.Mutex
	items map[string]*model.Submission // by id
	pairs map[string]string            // userID|challengeID -> submission id
	clock func() time.Time
}

func newMemSubmissionRepo() *memSubmissionRepo {
	return &memSubmissionRepo{
		items: map[string]*model.Submission{},
		pairs: map[string]string{},
		clock: time.Now,
	}
}

func pairKey(userID, challengeID string) string { return userID + "|" + challengeID }

func (r *memSubmissionRepo) Create(ctx context.Context, s *model.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey(s.UserID, s.ChallengeID)
	if _, ok := r.pairs[key]; ok {
		return fmt.Errorf("submission already exists for this challenge: %w", common.ErrConflict)
	}
	s.UploadedAt = r.clock()
	cp := *s
	r.items[s.ID] = &cp
	r.pairs[key] = s.ID
	return nil
}

func (r *memSubmissionRepo) UpdateImageURL(ctx context.Context, id, imageURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return common.ErrNotFound
	}
	s.ImageURL = imageURL
	return nil
}

func (r *memSubmissionRepo) FindByUserAndChallenge(ctx context.Context, userID, challengeID string) (*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.pairs[pairKey(userID, challengeID)]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *r.items[id]
	return &cp, nil
}

func (r *memSubmissionRepo) ExistsByUserAndChallenge(ctx context.Context, userID, challengeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pairs[pairKey(userID, challengeID)]
	return ok, nil
}

func (r *memSubmissionRepo) ListByUser(ctx context.Context, userID string) ([]model.Submission, error) {
	return r.filter(func(s *model.Submission) bool { return s.UserID == userID }), nil
}

func (r *memSubmissionRepo) ListAll(ctx context.Context) ([]model.Submission, error) {
	return r.filter(func(s *model.Submission) bool { return true }), nil
}

func (r *memSubmissionRepo) ListByChallenge(ctx context.Context, challengeID string) ([]model.Submission, error) {
	return r.filter(func(s *model.Submission) bool { return s.ChallengeID == challengeID }), nil
}

func (r *memSubmissionRepo) ListByChallengeIDs(ctx context.Context, challengeIDs []string) ([]model.Submission, error) {
	allowed := map[string]bool{}
	for _, id := range challengeIDs {
		allowed[id] = true
	}
	return r.filter(func(s *model.Submission) bool { return allowed[s.ChallengeID] }), nil
}

func (r *memSubmissionRepo) CountByChallenge(ctx context.Context, challengeID string) (int, error) {
	return len(r.filter(func(s *model.Submission) bool { return s.ChallengeID == challengeID })), nil
}

func (r *memSubmissionRepo) CountByDay(ctx context.Context, day int) (int, error) {
	// Fakes do not join; tests wire day counting through challenge IDs.
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items), nil
}

func (r *memSubmissionRepo) filter(keep func(*model.Submission) bool) []model.Submission {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Submission{}
	for _, s := range r.items {
		if keep(s) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out
}

type memChallengeRepo struct {
	mu          sync.Mutex
	items       map[string]*model.Challenge
	submissions *memSubmissionRepo
}

func newMemChallengeRepo(subs *memSubmissionRepo) *memChallengeRepo {
	return &memChallengeRepo{items: map[string]*model.Challenge{}, submissions: subs}
}

func (r *memChallengeRepo) Create(ctx context.Context, c *model.Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	cp.CreatedAt = time.Now()
	r.items[c.ID] = &cp
	return nil
}

func (r *memChallengeRepo) Update(ctx context.Context, c *model.Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[c.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *memChallengeRepo) FindByID(ctx context.Context, id string) (*model.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memChallengeRepo) ListByDay(ctx context.Context, day int) ([]model.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Challenge{}
	for _, c := range r.items {
		if c.DayNumber == day {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *memChallengeRepo) ListDayNumbers(ctx context.Context) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[int]bool{}
	for _, c := range r.items {
		seen[c.DayNumber] = true
	}
	days := []int{}
	for d := range seen {
		days = append(days, d)
	}
	sort.Ints(days)
	return days, nil
}

func (r *memChallengeRepo) DeleteWithSubmissions(ctx context.Context, id string) ([]string, error) {
	r.mu.Lock()
	if _, ok := r.items[id]; !ok {
		r.mu.Unlock()
		return nil, common.ErrNotFound
	}
	delete(r.items, id)
	r.mu.Unlock()

	subs, _ := r.submissions.ListByChallenge(ctx, id)
	r.submissions.mu.Lock()
	defer r.submissions.mu.Unlock()
	urls := []string{}
	for _, s := range subs {
		urls = append(urls, s.ImageURL)
		delete(r.submissions.items, s.ID)
		delete(r.submissions.pairs, pairKey(s.UserID, s.ChallengeID))
	}
	return urls, nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return nil, cache.ErrMiss
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

type memStorage struct {
	mu      sync.Mutex
	seq     int
	files   map[string][]byte
	deleted []string
}

func newMemStorage() *memStorage {
	return &memStorage{files: map[string][]byte{}}
}

func (s *memStorage) Store(ctx context.Context, data []byte, filename, folder string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	url := fmt.Sprintf("mem://%s/%d-%s", folder, s.seq, filename)
	s.files[url] = data
	return url, nil
}

func (s *memStorage) Delete(ctx context.Context, fileURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, fileURL)
	s.deleted = append(s.deleted, fileURL)
	return nil
}
