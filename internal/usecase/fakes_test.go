package usecase

import (
	"context"
	"sync"

	"github.com/kristinefung/personal-website-server/internal/core/domain"
	"github.com/kristinefung/personal-website-server/internal/repository"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User // keyed by id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok && !user.Deleted {
		copied := user
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email && !user.Deleted {
			copied := user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, user := range r.users {
		if !user.Deleted {
			out = append(out, user)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[user.ID]
	if !ok || existing.Deleted {
		return repository.ErrNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) SoftDelete(_ context.Context, id string, deletedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok || user.Deleted {
		return repository.ErrNotFound
	}
	user.Deleted = true
	user.UpdatedBy = deletedBy
	r.users[id] = user
	return nil
}

type fakeLoginLogRepo struct {
	mu      sync.Mutex
	records []domain.LoginRecord

	// staleTop, when set, is returned by MostRecentByUser instead of the real
	// latest row. Used to emulate two concurrent attempts reading the same
	// snapshot of the ledger.
	staleTop *domain.LoginRecord
}

func newFakeLoginLogRepo() *fakeLoginLogRepo {
	return &fakeLoginLogRepo{}
}

func (r *fakeLoginLogRepo) Append(_ context.Context, record domain.LoginRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func (r *fakeLoginLogRepo) MostRecentByUser(_ context.Context, userID string) (*domain.LoginRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.staleTop != nil {
		copied := *r.staleTop
		return &copied, nil
	}

	var latest *domain.LoginRecord
	for i := range r.records {
		record := r.records[i]
		if record.UserID != userID || record.Deleted {
			continue
		}
		if latest == nil || !record.CreatedAt.Before(latest.CreatedAt) {
			copied := record
			latest = &copied
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	return latest, nil
}

func (r *fakeLoginLogRepo) FindByToken(_ context.Context, sessionToken string) (*domain.LoginRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		record := r.records[i]
		if record.Deleted || record.SessionToken == nil {
			continue
		}
		if *record.SessionToken == sessionToken {
			copied := record
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeLoginLogRepo) RevokeByToken(_ context.Context, sessionToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	revoked := false
	for i := range r.records {
		if r.records[i].Deleted || r.records[i].SessionToken == nil {
			continue
		}
		if *r.records[i].SessionToken == sessionToken {
			r.records[i].Deleted = true
			revoked = true
		}
	}
	if !revoked {
		return repository.ErrNotFound
	}
	return nil
}

func (r *fakeLoginLogRepo) all() []domain.LoginRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.LoginRecord, len(r.records))
	copy(out, r.records)
	return out
}

func (r *fakeLoginLogRepo) latestFor(userID string) *domain.LoginRecord {
	record, err := r.MostRecentByUser(context.Background(), userID)
	if err != nil {
		return nil
	}
	return record
}
