package user

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Amityadav08/SLVNK-Backend/internal/apperr"
	"github.com/Amityadav08/SLVNK-Backend/internal/middleware"
	"github.com/Amityadav08/SLVNK-Backend/internal/upload"
)

// Handler exposes member endpoints.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a user HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

type registerInput struct {
	FirstName     string `form:"firstName"     validate:"required"`
	LastName      string `form:"lastName"      validate:"required"`
	Email         string `form:"email"         validate:"required,email"`
	Mobile        string `form:"mobile"        validate:"required,min=10,max=15"`
	Password      string `form:"password"      validate:"required,min=6"`
	Gender        string `form:"gender"        validate:"required"`
	DateOfBirth   string `form:"dateOfBirth"   validate:"omitempty,datetime=2006-01-02"`
	Age           int    `form:"age"           validate:"omitempty,gte=18,lte=100"`
	Religion      string `form:"religion"`
	Caste         string `form:"caste"`
	MotherTongue  string `form:"motherTongue"`
	MaritalStatus string `form:"maritalStatus"`
	Height        string `form:"height"`
	Education     string `form:"education"`
	Occupation    string `form:"occupation"`
	AnnualIncome  string `form:"annualIncome"`
	Country       string `form:"country"`
	State         string `form:"state"`
	City          string `form:"city"`
	About         string `form:"about"`
}

type authResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Register handles member onboarding, including the optional profile photo
// submitted as the multipart field "profileImage".
func (h *Handler) Register(c *fiber.Ctx) error {
	var in registerInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(in); err != nil {
		return err
	}

	params := RegisterParams{
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         in.Email,
		Mobile:        in.Mobile,
		Password:      in.Password,
		Gender:        in.Gender,
		DateOfBirth:   in.DateOfBirth,
		Age:           in.Age,
		Religion:      in.Religion,
		Caste:         in.Caste,
		MotherTongue:  in.MotherTongue,
		MaritalStatus: in.MaritalStatus,
		Height:        in.Height,
		Education:     in.Education,
		Occupation:    in.Occupation,
		AnnualIncome:  in.AnnualIncome,
		Country:       in.Country,
		State:         in.State,
		City:          in.City,
		About:         in.About,
	}

	// A missing file field is a valid registration without a photo.
	if fh, err := c.FormFile(upload.FieldName); err == nil {
		params.Photo = fh
	}

	u, token, err := h.service.Register(c.UserContext(), params)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(authResponse{Token: token, User: u})
}

type loginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and returns a fresh token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var in loginInput
	if err := decodeStrict(c.Body(), &in); err != nil {
		return err
	}
	if err := h.validate.Struct(in); err != nil {
		return err
	}

	u, token, err := h.service.Login(c.UserContext(), LoginParams{Email: in.Email, Password: in.Password})
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return fiber.NewError(http.StatusUnauthorized, ErrInvalidCredentials.Error())
		}
		return err
	}

	return c.JSON(authResponse{Token: token, User: u})
}

type listQuery struct {
	Page  int64 `query:"page"`
	Limit int64 `query:"limit"`
}

// List is the public paginated listing.
func (h *Handler) List(c *fiber.Ctx) error {
	var q listQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	page, err := h.service.List(c.UserContext(), q.Page, q.Limit)
	if err != nil {
		return err
	}

	return c.JSON(page)
}

type searchQuery struct {
	Gender   string `query:"gender"`
	MinAge   int    `query:"minAge"   validate:"omitempty,gte=0"`
	MaxAge   int    `query:"maxAge"   validate:"omitempty,gte=0"`
	Location string `query:"location"`
	Religion string `query:"religion"`
	Page     int64  `query:"page"`
	Limit    int64  `query:"limit"`
}

// Search runs the filtered profile search for the authenticated caller.
func (h *Handler) Search(c *fiber.Ctx) error {
	var q searchQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(q); err != nil {
		return err
	}

	page, err := h.service.Search(c.UserContext(), callerFrom(c), SearchFilter{
		Gender:   q.Gender,
		Location: q.Location,
		Religion: q.Religion,
		MinAge:   q.MinAge,
		MaxAge:   q.MaxAge,
		Page:     q.Page,
		Limit:    q.Limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(page)
}

// Get returns a single profile.
func (h *Handler) Get(c *fiber.Ctx) error {
	u, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(u)
}

type updateInput struct {
	FirstName     *string `json:"firstName"     validate:"omitempty,min=1"`
	LastName      *string `json:"lastName"      validate:"omitempty,min=1"`
	Mobile        *string `json:"mobile"        validate:"omitempty,min=10,max=15"`
	Password      *string `json:"password"      validate:"omitempty,min=6"`
	Gender        *string `json:"gender"`
	DateOfBirth   *string `json:"dateOfBirth"   validate:"omitempty,datetime=2006-01-02"`
	Age           *int    `json:"age"           validate:"omitempty,gte=18,lte=100"`
	Religion      *string `json:"religion"`
	Caste         *string `json:"caste"`
	MotherTongue  *string `json:"motherTongue"`
	MaritalStatus *string `json:"maritalStatus"`
	Height        *string `json:"height"`
	Education     *string `json:"education"`
	Occupation    *string `json:"occupation"`
	AnnualIncome  *string `json:"annualIncome"`
	Country       *string `json:"country"`
	State         *string `json:"state"`
	City          *string `json:"city"`
	About         *string `json:"about"`
}

// Update applies an owner-scoped partial profile update. Unknown fields are
// rejected at the boundary, which keeps role, verification and active flags
// out of reach of this route.
func (h *Handler) Update(c *fiber.Ctx) error {
	var in updateInput
	if err := decodeStrict(c.Body(), &in); err != nil {
		return err
	}
	if err := h.validate.Struct(in); err != nil {
		return err
	}

	u, err := h.service.Update(c.UserContext(), callerFrom(c), c.Params("id"), UpdateParams{
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Mobile:        in.Mobile,
		Password:      in.Password,
		Gender:        in.Gender,
		DateOfBirth:   in.DateOfBirth,
		Age:           in.Age,
		Religion:      in.Religion,
		Caste:         in.Caste,
		MotherTongue:  in.MotherTongue,
		MaritalStatus: in.MaritalStatus,
		Height:        in.Height,
		Education:     in.Education,
		Occupation:    in.Occupation,
		AnnualIncome:  in.AnnualIncome,
		Country:       in.Country,
		State:         in.State,
		City:          in.City,
		About:         in.About,
	})
	if err != nil {
		return err
	}

	return c.JSON(u)
}

func callerFrom(c *fiber.Ctx) Caller {
	if identity, ok := middleware.IdentityFrom(c); ok {
		return Caller{ID: identity.SubjectID, Admin: identity.Role == RoleAdmin}
	}
	return Caller{Admin: middleware.IsAdmin(c)}
}

func decodeStrict(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %s", apperr.ErrValidation, err.Error())
	}
	return nil
}
