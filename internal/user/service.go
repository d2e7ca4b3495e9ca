package user

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Amityadav08/SLVNK-Backend/internal/apperr"
	"github.com/Amityadav08/SLVNK-Backend/internal/auth"
	"github.com/Amityadav08/SLVNK-Backend/internal/upload"
)

// ErrInvalidCredentials hides whether a login failure was a missing account
// or a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service manages the member lifecycle: registration, login, profile reads,
// owner updates and filtered search.
type Service struct {
	repo    Repository
	tokens  *auth.Tokens
	uploads *upload.Store
	logger  zerolog.Logger
}

// NewService creates a user service.
func NewService(repo Repository, tokens *auth.Tokens, uploads *upload.Store, logger zerolog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, uploads: uploads, logger: logger}
}

// Caller identifies who is performing an operation: a verified subject or
// the admin bypass.
type Caller struct {
	ID    string
	Admin bool
}

// RegisterParams carries a registration request. Photo is the optional
// profile picture; nil means none was submitted.
type RegisterParams struct {
	FirstName     string
	LastName      string
	Email         string
	Mobile        string
	Password      string
	Gender        string
	DateOfBirth   string
	Age           int
	Religion      string
	Caste         string
	MotherTongue  string
	MaritalStatus string
	Height        string
	Education     string
	Occupation    string
	AnnualIncome  string
	Country       string
	State         string
	City          string
	About         string

	Photo *multipart.FileHeader
}

// Register admits the optional photo, creates the record and issues a token.
// If the record cannot be created after the photo was written, the photo is
// deleted before the error is returned; a stored file never survives without
// a committed record.
func (s *Service) Register(ctx context.Context, p RegisterParams) (*User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	u := &User{
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Email:         p.Email,
		Mobile:        p.Mobile,
		PasswordHash:  string(hash),
		Role:          RoleUser,
		IsActive:      true,
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
			return nil, "", err
		}
		u.ProfileImage = stored.PublicPath
	}

	created, err := s.repo.Create(ctx, u)
	if err != nil {
		s.rollbackUpload(stored)
		return nil, "", err
	}

	token, err := s.tokens.Issue(created.ID.Hex(), created.Role)
	if err != nil {
		return nil, "", err
	}

	return created, token, nil
}

// LoginParams carries a login request.
type LoginParams struct {
	Email    string
	Password string
}

// Login verifies credentials and issues a token.
func (s *Service) Login(ctx context.Context, p LoginParams) (*User, string, error) {
	u, err := s.repo.GetByEmail(ctx, p.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(p.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID.Hex(), u.Role)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

// Get fetches a single profile.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateParams carries an owner-initiated partial profile update. Role and
// the verification/active flags are deliberately absent; those are reachable
// only through the admin surface. A plaintext Password is re-hashed before
// storage.
type UpdateParams struct {
	FirstName     *string
	LastName      *string
	Mobile        *string
	Password      *string
	Gender        *string
	DateOfBirth   *string
	Age           *int
	Religion      *string
	Caste         *string
	MotherTongue  *string
	MaritalStatus *string
	Height        *string
	Education     *string
	Occupation    *string
	AnnualIncome  *string
	Country       *string
	State         *string
	City          *string
	About         *string
}

// Update applies a partial update after an ownership check: a caller may
// only modify their own record unless admitted through the admin bypass.
func (s *Service) Update(ctx context.Context, caller Caller, id string, p UpdateParams) (*User, error) {
	if !caller.Admin && caller.ID != id {
		return nil, apperr.ErrForbidden
	}

	fields := UpdateFields{
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

// Search runs the filtered, paginated profile search, excluding the caller's
// own record when the caller is a verified subject.
func (s *Service) Search(ctx context.Context, caller Caller, f SearchFilter) (Page, error) {
	return s.repo.Search(ctx, f.Normalize(DefaultSearchLimit), caller.ID)
}

// List is the public, unfiltered listing with pure pagination.
func (s *Service) List(ctx context.Context, page, limit int64) (Page, error) {
	f := SearchFilter{Page: page, Limit: limit}.Normalize(DefaultListLimit)
	return s.repo.List(ctx, f.Page, f.Limit, time.Time{})
}

func (s *Service) rollbackUpload(stored upload.StoredFile) {
	if stored.Name == "" {
		return
	}
	if err := s.uploads.Remove(stored.Name); err != nil {
		s.logger.Error().Err(err).Str("file", stored.Name).Msg("rollback stored upload")
	}
}
