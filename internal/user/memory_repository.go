package user

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Amityadav08/SLVNK-Backend/internal/apperr"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewMemoryRepository builds an in-memory user store for testing and for
// running in dev without a database. It enforces the same email/mobile
// uniqueness and newest-first ordering as the Mongo implementation.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]*User)}
}

func (r *memoryRepository) Create(_ context.Context, u *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, conflictError("email")
		}
		if existing.Mobile != "" && existing.Mobile == u.Mobile {
			return nil, conflictError("mobile")
		}
	}

	now := time.Now()
	stored := *u
	stored.ID = bson.NewObjectID()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.users[stored.ID.Hex()] = &stored

	out := stored
	return &out, nil
}

func (r *memoryRepository) GetByID(_ context.Context, id string) (*User, error) {
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		return nil, apperr.ErrMalformedID
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}

	out := *u
	return &out, nil
}

func (r *memoryRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			out := *u
			return &out, nil
		}
	}

	return nil, apperr.ErrNotFound
}

func (r *memoryRepository) Update(_ context.Context, id string, fields UpdateFields) (*User, error) {
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		return nil, apperr.ErrMalformedID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}

	if fields.Mobile != nil {
		for otherID, other := range r.users {
			if otherID != id && other.Mobile == *fields.Mobile {
				return nil, conflictError("mobile")
			}
		}
	}

	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}

	applyString(&u.FirstName, fields.FirstName)
	applyString(&u.LastName, fields.LastName)
	applyString(&u.Mobile, fields.Mobile)
	applyString(&u.PasswordHash, fields.PasswordHash)
	applyString(&u.Gender, fields.Gender)
	applyString(&u.DateOfBirth, fields.DateOfBirth)
	applyString(&u.Religion, fields.Religion)
	applyString(&u.Caste, fields.Caste)
	applyString(&u.MotherTongue, fields.MotherTongue)
	applyString(&u.MaritalStatus, fields.MaritalStatus)
	applyString(&u.Height, fields.Height)
	applyString(&u.Education, fields.Education)
	applyString(&u.Occupation, fields.Occupation)
	applyString(&u.AnnualIncome, fields.AnnualIncome)
	applyString(&u.Country, fields.Country)
	applyString(&u.State, fields.State)
	applyString(&u.City, fields.City)
	applyString(&u.About, fields.About)
	applyString(&u.ProfileImage, fields.ProfileImage)
	applyString(&u.Role, fields.Role)
	if fields.Age != nil {
		u.Age = *fields.Age
	}
	if fields.IsVerified != nil {
		u.IsVerified = *fields.IsVerified
	}
	if fields.IsActive != nil {
		u.IsActive = *fields.IsActive
	}
	u.UpdatedAt = time.Now()

	out := *u
	return &out, nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) (*User, error) {
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		return nil, apperr.ErrMalformedID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	delete(r.users, id)

	out := *u
	return &out, nil
}

func (r *memoryRepository) List(_ context.Context, page, limit int64, since time.Time) (Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.sorted(func(u *User) bool {
		return since.IsZero() || !u.CreatedAt.Before(since)
	})

	return paginate(matched, page, limit), nil
}

func (r *memoryRepository) Search(_ context.Context, f SearchFilter, excludeID string) (Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.sorted(func(u *User) bool {
		if excludeID != "" && u.ID.Hex() == excludeID {
			return false
		}
		return f.Matches(u)
	})

	return paginate(matched, f.Page, f.Limit), nil
}

// sorted returns copies of all matching records, newest first. Creation-time
// ties are broken by id so pagination stays deterministic.
func (r *memoryRepository) sorted(match func(*User) bool) []*User {
	matched := []*User{}
	for _, u := range r.users {
		if match(u) {
			out := *u
			matched = append(matched, &out)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.Hex() > matched[j].ID.Hex()
	})

	return matched
}

func paginate(matched []*User, page, limit int64) Page {
	total := int64(len(matched))

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return Page{
		Users:      matched[start:end],
		Total:      total,
		TotalPages: totalPages(total, limit),
		Page:       page,
		Limit:      limit,
	}
}
