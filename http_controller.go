package users

import (
	"regexp"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

var (
	loginPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	namePattern  = regexp.MustCompile(`^\p{L}+$`)
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// AccountsController handles the account management JSON routes.
type AccountsController struct {
	service    *AccountService
	auth       Authenticator
	logger     Logger
	contextKey string
}

// NewAccountsController creates the controller over the given service and
// authenticator.
func NewAccountsController(service *AccountService, auth Authenticator, cfg Config, logger Logger) *AccountsController {
	if logger == nil {
		logger = defLogger{}
	}

	contextKey := cfg.GetContextKey()
	if contextKey == "" {
		contextKey = DefaultContextKey
	}

	return &AccountsController{
		service:    service,
		auth:       auth,
		logger:     logger,
		contextKey: contextKey,
	}
}

// RegisterRoutes registers the account routes on the given group. Static
// segments go first so "active" or "self" never match the ":login" routes.
func (c *AccountsController) RegisterRoutes(users RouteRegistrar, auth RouteRegistrar) {
	users.Get("/active", c.ListActive).SetName("users.active")
	users.Get("/self", c.GetSelf).SetName("users.self")
	users.Get("/older-than/:years", c.ListOlderThan).SetName("users.older_than")
	users.Get("/by-login/:login", c.GetByLogin).SetName("users.by_login")
	users.Post("/", c.CreateUser).SetName("users.create")
	users.Put("/update/:login", c.UpdateUser).SetName("users.update")
	users.Put("/change-password/:login", c.ChangePassword).SetName("users.change_password")
	users.Put("/change-login/:login", c.ChangeLogin).SetName("users.change_login")
	users.Put("/restore/:login", c.RestoreUser).SetName("users.restore")
	users.Delete("/:login", c.DeleteUser).SetName("users.delete")

	auth.Post("/login", c.LoginPost).SetName("auth.login")
}

// CreateUserRequest is the account creation payload.
type CreateUserRequest struct {
	Login    string     `json:"login" form:"login"`
	Password string     `json:"password" form:"password"`
	Name     string     `json:"name" form:"name"`
	Gender   int        `json:"gender" form:"gender"`
	Birthday *time.Time `json:"birthday,omitempty" form:"birthday"`
	Admin    bool       `json:"admin" form:"admin"`
}

// Validate will run validation rules
func (r CreateUserRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(
				&r.Login,
				validation.Required,
				validation.Match(loginPattern),
			),
			validation.Field(
				&r.Password,
				validation.Required,
				validation.Match(loginPattern),
			),
			validation.Field(
				&r.Name,
				validation.Required,
				validation.Match(namePattern),
			),
			validation.Field(&r.Gender, validation.Min(0), validation.Max(2)),
		)
	}, "Invalid create user request payload")
}

// UpdateUserRequest is the partial profile update payload. Absent fields stay
// untouched.
type UpdateUserRequest struct {
	Name     *string    `json:"name,omitempty" form:"name"`
	Gender   *int       `json:"gender,omitempty" form:"gender"`
	Birthday *time.Time `json:"birthday,omitempty" form:"birthday"`
}

// Validate will run validation rules
func (r UpdateUserRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Match(namePattern)),
			validation.Field(&r.Gender, validation.Min(0), validation.Max(2)),
		)
	}, "Invalid update user request payload")
}

// ChangePasswordRequest carries the replacement secret.
type ChangePasswordRequest struct {
	NewPassword string `json:"new_password" form:"new_password"`
}

// Validate will run validation rules
func (r ChangePasswordRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(
				&r.NewPassword,
				validation.Required,
				validation.Match(loginPattern),
			),
		)
	}, "Invalid change password request payload")
}

// ChangeLoginRequest carries the replacement login.
type ChangeLoginRequest struct {
	NewLogin string `json:"new_login" form:"new_login"`
}

// Validate will run validation rules
func (r ChangeLoginRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(
				&r.NewLogin,
				validation.Required,
				validation.Match(loginPattern),
			),
		)
	}, "Invalid change login request payload")
}

// LoginRequest is the credential exchange payload.
type LoginRequest struct {
	Login    string `json:"login" form:"login"`
	Password string `json:"password" form:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Login, validation.Required),
			validation.Field(&r.Password, validation.Required),
		)
	}, "Invalid login request payload")
}

// CreateUser handles POST /api/users
func (c *AccountsController) CreateUser(ctx router.Context) error {
	payload := new(CreateUserRequest)
	if err := ctx.Bind(payload); err != nil {
		return c.renderError(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return c.renderValidationError(ctx, err)
	}

	record, err := c.service.Create(ctx.Context(), c.caller(ctx), NewAccount{
		Login:    payload.Login,
		Secret:   payload.Password,
		Name:     payload.Name,
		Gender:   payload.Gender,
		Birthday: payload.Birthday,
		Admin:    payload.Admin,
	})
	if err != nil {
		return c.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, accountResponse(record))
}

// ListActive handles GET /api/users/active
func (c *AccountsController) ListActive(ctx router.Context) error {
	records, err := c.service.ListActive(ctx.Context(), c.caller(ctx))
	if err != nil {
		return c.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"users": accountListResponse(records),
	})
}

// GetByLogin handles GET /api/users/by-login/:login
func (c *AccountsController) GetByLogin(ctx router.Context) error {
	login := ctx.Param("login")

	record, err := c.service.GetByLogin(ctx.Context(), c.caller(ctx), login)
	if err != nil {
		return c.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"name":      record.Name,
		"gender":    record.Gender,
		"birthday":  record.Birthday,
		"is_active": record.IsActive(),
		"role":      record.Role(),
	})
}

// GetSelf handles GET /api/users/self
func (c *AccountsController) GetSelf(ctx router.Context) error {
	record, err := c.service.GetSelf(ctx.Context(), c.caller(ctx))
	if err != nil {
		return c.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"login":     record.Login,
		"name":      record.Name,
		"gender":    record.Gender,
		"birthday":  record.Birthday,
		"is_active": record.IsActive(),
		"role":      record.Role(),
	})
}

// ListOlderThan handles GET /api/users/older-than/:years
func (c *AccountsController) ListOlderThan(ctx router.Context) error {
	years, err := strconv.Atoi(ctx.Param("years"))
	if err != nil {
		return c.renderError(ctx, ErrInvalidInput.WithMetadata(map[string]any{
			"years": ctx.Param("years"),
		}))
	}

	records, err := c.service.ListOlderThan(ctx.Context(), c.caller(ctx), years)
	if err != nil {
		return c.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"users": accountListResponse(records),
	})
}

// UpdateUser handles PUT /api/users/update/:login
func (c *AccountsController) UpdateUser(ctx router.Context) error {
	login := ctx.Param("login")

	payload := new(UpdateUserRequest)
	if err := ctx.Bind(payload); err != nil {
		return c.renderError(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return c.renderValidationError(ctx, err)
	}

	record, err := c.service.UpdateProfile(ctx.Context(), c.caller(ctx), login, ProfilePatch{
		Name:     payload.Name,
		Gender:   payload.Gender,
		Birthday: payload.Birthday,
	})
	if err != nil {
		return c.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, accountResponse(record))
}

// ChangePassword handles PUT /api/users/change-password/:login
func (c *AccountsController) ChangePassword(ctx router.Context) error {
	login := ctx.Param("login")

	payload := new(ChangePasswordRequest)
	if err := ctx.Bind(payload); err != nil {
		return c.renderError(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return c.renderValidationError(ctx, err)
	}

	record, err := c.service.ChangeSecret(ctx.Context(), c.caller(ctx), login, payload.NewPassword)
	if err != nil {
		return c.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, accountResponse(record))
}

// ChangeLogin handles PUT /api/users/change-login/:login
func (c *AccountsController) ChangeLogin(ctx router.Context) error {
	login := ctx.Param("login")

	payload := new(ChangeLoginRequest)
	if err := ctx.Bind(payload); err != nil {
		return c.renderError(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return c.renderValidationError(ctx, err)
	}

	record, err := c.service.ChangeLogin(ctx.Context(), c.caller(ctx), login, payload.NewLogin)
	if err != nil {
		return c.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, accountResponse(record))
}

// DeleteUser handles DELETE /api/users/:login?softDelete=
func (c *AccountsController) DeleteUser(ctx router.Context) error {
	login := ctx.Param("login")
	soft := ctx.Query("softDelete", "true") != "false"

	if err := c.service.Delete(ctx.Context(), c.caller(ctx), login, soft); err != nil {
		return c.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"login":       login,
		"soft_delete": soft,
	})
}

// RestoreUser handles PUT /api/users/restore/:login
func (c *AccountsController) RestoreUser(ctx router.Context) error {
	login := ctx.Param("login")

	record, err := c.service.Restore(ctx.Context(), c.caller(ctx), login)
	if err != nil {
		return c.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, accountResponse(record))
}

// LoginPost handles POST /api/auth/login
func (c *AccountsController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)
	if err := ctx.Bind(payload); err != nil {
		return c.renderError(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return c.renderValidationError(ctx, err)
	}

	token, err := c.auth.Login(ctx.Context(), payload.Login, payload.Password)
	if err != nil {
		return c.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"token": token,
	})
}

func (c *AccountsController) caller(ctx router.Context) Caller {
	return CallerFromRouterContext(ctx, c.contextKey)
}

func (c *AccountsController) renderError(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = router.StatusInternalServerError
	}

	if status >= router.StatusInternalServerError {
		c.logger.Error("request failed: %s category=%s", richErr.Message, richErr.Category)
	}

	return ctx.JSON(status, map[string]any{
		"error": richErr.Message,
		"code":  richErr.TextCode,
	})
}

func (c *AccountsController) renderValidationError(ctx router.Context, err *goerrors.Error) error {
	return ctx.JSON(router.StatusBadRequest, map[string]any{
		"error":      err.Message,
		"code":       ErrInvalidInput.TextCode,
		"validation": err.ValidationMap(),
	})
}

func bindError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "unable to decode request payload").
		WithTextCode(ErrInvalidInput.TextCode).
		WithCode(goerrors.CodeBadRequest)
}

func accountResponse(record *User) map[string]any {
	return map[string]any{
		"id":          record.ID,
		"login":       record.Login,
		"name":        record.Name,
		"gender":      record.Gender,
		"birthday":    record.Birthday,
		"is_active":   record.IsActive(),
		"role":        record.Role(),
		"created_at":  record.CreatedAt,
		"created_by":  record.CreatedBy,
		"modified_at": record.ModifiedAt,
		"modified_by": record.ModifiedBy,
		"revoked_at":  record.RevokedAt,
		"revoked_by":  record.RevokedBy,
	}
}

func accountListResponse(records []*User) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, record := range records {
		out = append(out, accountResponse(record))
	}
	return out
}
