// Package admin implements the privileged management surface consumed
// through the header-only admin gate.
package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Amityadav08/SLVNK-Backend/internal/apperr"
	"github.com/Amityadav08/SLVNK-Backend/internal/upload"
	"github.com/Amityadav08/SLVNK-Backend/internal/user"
)

// Service manages the user base on behalf of administrators.
type Service struct {
	repo    user.Repository
	uploads *upload.Store
	logger  zerolog.Logger
}

// NewService creates an admin service.
func NewService(repo user.Repository, uploads *upload.Store, logger zerolog.Logger) *Service {
	return &Service{repo: repo, uploads: uploads, logger: logger}
}

// List returns a page of users, newest first, optionally restricted to a
// temporal window computed against the server clock at request time.
func (s *Service) List(ctx context.Context, page, limit int64, tf user.TemporalFilter) (user.Page, error) {
	if !tf.Valid() {
		return user.Page{}, fmt.Errorf("%w: unknown filter %q", apperr.ErrValidation, tf)
	}

	f := user.SearchFilter{Page: page, Limit: limit}.Normalize(user.DefaultAdminLimit)

	since, _ := tf.Since(time.Now())
	return s.repo.List(ctx, f.Page, f.Limit, since)
}

// CreateParams carries an admin-initiated user creation. Unlike public
// registration it may set role and the verification/active flags directly.
type CreateParams struct {
	user.RegisterParams
	Role       string
	IsVerified bool
	IsActive   bool
}

// Create inserts a user record with the same upload admission and rollback
// contract as public registration, but without issuing a token.
func (s *Service) Create(ctx context.Context, p CreateParams) (*user.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := p.Role
	if role == "" {
		role = user.RoleUser
	}

	u := &user.User{
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Email:         p.Email,
		Mobile:        p.Mobile,
		PasswordHash:  string(hash),
		Role:          role,
		IsVerified:    p.IsVerified,
		IsActive:      p.IsActive,
		Gender:        p.Gender,
		DateOfBirth:   p.DateOfBirth,
		Age:           p.Age,
		Religion:      p.Religion,
		Caste:         p.Caste,
		MotherTongue:  p.MotherTongue,
		MaritalStatus: p.MaritalStatus,
		Height:        p.Height,
		Education:     p.Education,
		Occupation:    p.Occupation,
		AnnualIncome:  p.AnnualIncome,
		Country:       p.Country,
		State:         p.State,
		City:          p.City,
		About:         p.About,
	}

	var stored upload.StoredFile
	if p.Photo != nil {
		stored, err = s.uploads.Admit(p.Photo)
		if err != nil {
			return nil, err
		}
		u.ProfileImage = stored.PublicPath
	}

	created, err := s.repo.Create(ctx, u)
	if err != nil {
		if stored.Name != "" {
			if rerr := s.uploads.Remove(stored.Name); rerr != nil {
				s.logger.Error().Err(rerr).Str("file", stored.Name).Msg("rollback stored upload")
			}
		}
		return nil, err
	}

	return created, nil
}

// Get fetches a single user record.
func (s *Service) Get(ctx context.Context, id string) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateParams carries an admin partial edit, including the privileged
// fields the owner route cannot touch.
type UpdateParams struct {
	user.UpdateParams
	Role       *string
	IsVerified *bool
	IsActive   *bool
}

// Update applies an admin edit.
func (s *Service) Update(ctx context.Context, id string, p UpdateParams) (*user.User, error) {
	fields := user.UpdateFields{
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Mobile:        p.Mobile,
		Gender:        p.Gender,
		DateOfBirth:   p.DateOfBirth,
		Age:           p.Age,
		Religion:      p.Religion,
		Caste:         p.Caste,
		MotherTongue:  p.MotherTongue,
		MaritalStatus: p.MaritalStatus,
		Height:        p.Height,
		Education:     p.Education,
		Occupation:    p.Occupation,
		AnnualIncome:  p.AnnualIncome,
		Country:       p.Country,
		State:         p.State,
		City:          p.City,
		About:         p.About,
		Role:          p.Role,
		IsVerified:    p.IsVerified,
		IsActive:      p.IsActive,
	}

	if p.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*p.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hashStr := string(hash)
		fields.PasswordHash = &hashStr
	}

	return s.repo.Update(ctx, id, fields)
}

// Delete removes a user record and, best effort, its stored profile photo.
func (s *Service) Delete(ctx context.Context, id string) (*user.User, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	if deleted.ProfileImage != "" {
		if err := s.uploads.RemovePublic(deleted.ProfileImage); err != nil {
			s.logger.Warn().Err(err).Str("user_id", id).Msg("remove profile photo of deleted user")
		}
	}

	return deleted, nil
}
