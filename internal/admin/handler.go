package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Amityadav08/SLVNK-Backend/internal/apperr"
	"github.com/Amityadav08/SLVNK-Backend/internal/upload"
	"github.com/Amityadav08/SLVNK-Backend/internal/user"
)

// Handler exposes the admin CRUD endpoints.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs an admin HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

type listQuery struct {
	Page   int64  `query:"page"`
	Limit  int64  `query:"limit"`
	Filter string `query:"filter"`
}

// List returns the paginated user base, optionally narrowed to the last week
// or the current calendar month.
func (h *Handler) List(c *fiber.Ctx) error {
	var q listQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	page, err := h.service.List(c.UserContext(), q.Page, q.Limit, user.TemporalFilter(q.Filter))
	if err != nil {
		return err
	}

	return c.JSON(page)
}

type createInput struct {
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
	Role          string `form:"role"          validate:"omitempty,oneof=user admin"`
	IsVerified    bool   `form:"isVerified"`
	IsActive      bool   `form:"isActive"`
}

// Create inserts a user on behalf of an administrator.
func (h *Handler) Create(c *fiber.Ctx) error {
	var in createInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(in); err != nil {
		return err
	}

	params := CreateParams{
		RegisterParams: user.RegisterParams{
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
		},
		Role:       in.Role,
		IsVerified: in.IsVerified,
		IsActive:   in.IsActive,
	}

	if fh, err := c.FormFile(upload.FieldName); err == nil {
		params.Photo = fh
	}

	created, err := h.service.Create(c.UserContext(), params)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(created)
}

// Get returns a single user record.
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
	Role          *string `json:"role"          validate:"omitempty,oneof=user admin"`
	IsVerified    *bool   `json:"isVerified"`
	IsActive      *bool   `json:"isActive"`
}

// Update applies an admin edit, including role and flag changes.
func (h *Handler) Update(c *fiber.Ctx) error {
	var in updateInput
	if err := decodeStrict(c.Body(), &in); err != nil {
		return err
	}
	if err := h.validate.Struct(in); err != nil {
		return err
	}

	updated, err := h.service.Update(c.UserContext(), c.Params("id"), UpdateParams{
		UpdateParams: user.UpdateParams{
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
		},
		Role:       in.Role,
		IsVerified: in.IsVerified,
		IsActive:   in.IsActive,
	})
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

// Delete removes a user record.
func (h *Handler) Delete(c *fiber.Ctx) error {
	deleted, err := h.service.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"deleted": deleted.ID.Hex()})
}

func decodeStrict(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %s", apperr.ErrValidation, err.Error())
	}
	return nil
}
