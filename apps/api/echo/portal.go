package echoapi

import (
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studysitare/portal/core"
	"github.com/studysitare/portal/core/catalog"
	"github.com/studysitare/portal/core/progress"
	"github.com/studysitare/portal/core/user"
)

const (
	msgInvalidStudentLogin = "Invalid student ID or password"
	msgInvalidAdminLogin   = "Invalid email or password"
	msgStudentIDTaken      = "Student ID already registered"
	msgEmailTaken          = "Email already registered"
	msgRegistrationError   = "Error during registration"
	msgRegistrationOK      = "Registration successful!"
	msgAdminRegistrationOK = "Admin registration successful!"
	msgAccessDenied        = "Access denied"
)

type portalApi struct {
	logger     core.Logger
	validate   *validator.Validate
	translator ut.Translator

	usrSvc  *user.Service
	catSvc  *catalog.Service
	progSvc *progress.Service
}

func registerPortalAPI(app *echo.Echo, opts *Options) {
	api := portalApi{
		logger:     opts.Logger,
		validate:   opts.Validate,
		translator: opts.Translator,
		usrSvc:     opts.UserSvc,
		catSvc:     opts.CatalogSvc,
		progSvc:    opts.ProgressSvc,
	}

	app.GET("/", api.home)

	app.GET("/student/login", api.studentLoginPage)
	app.POST("/student/login", api.studentLogin)
	app.GET("/student/register", api.studentRegisterPage)
	app.POST("/student/register", api.studentRegister)

	app.GET("/admin/login", api.adminLoginPage)
	app.POST("/admin/login", api.adminLogin)
	app.GET("/admin/register", api.adminRegisterPage, requireAdmin())
	app.POST("/admin/register", api.adminRegister, requireAdmin())

	app.GET("/logout", api.logout, requireAuth("/student/login"))
	app.GET("/dashboard", api.dashboard, requireAuth("/student/login"))
	app.GET("/admin/dashboard", api.adminDashboard, requireAdmin())
	app.GET("/subject/:id", api.subjectDetail, requireAuth("/student/login"))
}

// pagePayload is the generic response for pages that would otherwise render
// a template; rendering is left to the consumer.
type pagePayload struct {
	Page    string  `json:"page"`
	Flashes []Flash `json:"flashes"`
}

// Handlers

func (api *portalApi) home(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, pagePayload{Page: "home", Flashes: popFlashes(ctx)})
}

func (api *portalApi) studentLoginPage(ctx echo.Context) error {
	// an authenticated session is sent to its dashboard without a credential re-check
	if _, err := getContextClaims(ctx); err == nil {
		return ctx.Redirect(http.StatusFound, "/dashboard")
	}
	return ctx.JSON(http.StatusOK, pagePayload{Page: "student_login", Flashes: popFlashes(ctx)})
}

func (api *portalApi) studentLogin(ctx echo.Context) error {
	if _, err := getContextClaims(ctx); err == nil {
		return ctx.Redirect(http.StatusFound, "/dashboard")
	}

	var data StudentLoginRequest
	if err := ctx.Bind(&data); err != nil || data.Validate(api.validate) != nil {
		addFlash(ctx, msgInvalidStudentLogin, flashError)
		return ctx.Redirect(http.StatusFound, "/student/login")
	}

	claims, err := authenticateStudent(ctx, api.usrSvc, data.StudentID, data.Password)
	if err != nil {
		if errors.Cause(err) == errAuthenticationFailed {
			addFlash(ctx, msgInvalidStudentLogin, flashError)
			return ctx.Redirect(http.StatusFound, "/student/login")
		}
		return errors.Wrap(err, "authenticating student")
	}
	return api.login(ctx, claims, "/dashboard")
}

func (api *portalApi) adminLoginPage(ctx echo.Context) error {
	if _, err := getContextClaims(ctx); err == nil {
		return ctx.Redirect(http.StatusFound, "/admin/dashboard")
	}
	return ctx.JSON(http.StatusOK, pagePayload{Page: "admin_login", Flashes: popFlashes(ctx)})
}

func (api *portalApi) adminLogin(ctx echo.Context) error {
	if _, err := getContextClaims(ctx); err == nil {
		return ctx.Redirect(http.StatusFound, "/admin/dashboard")
	}

	var data AdminLoginRequest
	if err := ctx.Bind(&data); err != nil || data.Validate(api.validate) != nil {
		addFlash(ctx, msgInvalidAdminLogin, flashError)
		return ctx.Redirect(http.StatusFound, "/admin/login")
	}

	claims, err := authenticateAdmin(ctx, api.usrSvc, data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == errAuthenticationFailed {
			addFlash(ctx, msgInvalidAdminLogin, flashError)
			return ctx.Redirect(http.StatusFound, "/admin/login")
		}
		return errors.Wrap(err, "authenticating admin")
	}
	return api.login(ctx, claims, "/admin/dashboard")
}

func (api *portalApi) login(ctx echo.Context, claims *Claims, dest string) error {
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	setSessionCookie(ctx, token)
	return ctx.Redirect(http.StatusFound, dest)
}

func (api *portalApi) studentRegisterPage(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, pagePayload{Page: "student_register", Flashes: popFlashes(ctx)})
}

func (api *portalApi) studentRegister(ctx echo.Context) error {
	var data user.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate, api.usrSvc); err != nil {
		if isDuplicateErr(err, user.ErrStudentIDExists) {
			addFlash(ctx, msgStudentIDTaken, flashError)
			return ctx.Redirect(http.StatusFound, "/student/register")
		}
		return err
	}

	if _, err := api.usrSvc.CreateStudent(ctx.Request().Context(), data); err != nil {
		// two concurrent registrations may both pass the pre-check; the
		// unique constraint decides who wins
		if errors.Cause(err) == user.ErrStudentIDExists {
			addFlash(ctx, msgStudentIDTaken, flashError)
		} else {
			api.logger.Error("creating student", errors.Wrap(err, "creating student"))
			addFlash(ctx, msgRegistrationError, flashError)
		}
		return ctx.Redirect(http.StatusFound, "/student/register")
	}

	addFlash(ctx, msgRegistrationOK, flashSuccess)
	return ctx.Redirect(http.StatusFound, "/student/login")
}

func (api *portalApi) adminRegisterPage(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, pagePayload{Page: "admin_register", Flashes: popFlashes(ctx)})
}

func (api *portalApi) adminRegister(ctx echo.Context) error {
	var data user.NewAdmin
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAdmin")
	}
	if err := data.Validate(api.validate, api.usrSvc); err != nil {
		if isDuplicateErr(err, user.ErrEmailExists) {
			addFlash(ctx, msgEmailTaken, flashError)
			return ctx.Redirect(http.StatusFound, "/admin/register")
		}
		return err
	}

	if _, err := api.usrSvc.CreateAdmin(ctx.Request().Context(), data); err != nil {
		if errors.Cause(err) == user.ErrEmailExists {
			addFlash(ctx, msgEmailTaken, flashError)
		} else {
			api.logger.Error("creating admin", errors.Wrap(err, "creating admin"))
			addFlash(ctx, msgRegistrationError, flashError)
		}
		return ctx.Redirect(http.StatusFound, "/admin/register")
	}

	addFlash(ctx, msgAdminRegistrationOK, flashSuccess)
	return ctx.Redirect(http.StatusFound, "/admin/login")
}

func (api *portalApi) logout(ctx echo.Context) error {
	clearSessionCookie(ctx)
	return ctx.Redirect(http.StatusFound, "/")
}

type dashboardPayload struct {
	Name string `json:"name"`
	progress.Overview
	Flashes []Flash `json:"flashes"`
}

func (api *portalApi) dashboard(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if claims.IsAdmin {
		return ctx.Redirect(http.StatusFound, "/admin/dashboard")
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound { // stale session
			clearSessionCookie(ctx)
			return ctx.Redirect(http.StatusFound, "/student/login")
		}
		return errors.Wrap(err, "getting context user")
	}

	overview, err := api.progSvc.Overview(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "building dashboard overview")
	}
	return ctx.JSON(http.StatusOK, dashboardPayload{
		Name:     usr.Name,
		Overview: overview,
		Flashes:  popFlashes(ctx),
	})
}

type adminDashboardPayload struct {
	Subjects []catalog.Subject `json:"subjects"`
	Students []user.User       `json:"students"`
	Flashes  []Flash           `json:"flashes"`
}

func (api *portalApi) adminDashboard(ctx echo.Context) error {
	subjects, err := api.catSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	students, err := api.usrSvc.QueryStudents(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if subjects == nil {
		subjects = []catalog.Subject{}
	}
	if students == nil {
		students = []user.User{}
	}
	return ctx.JSON(http.StatusOK, adminDashboardPayload{
		Subjects: subjects,
		Students: students,
		Flashes:  popFlashes(ctx),
	})
}

type subjectPayload struct {
	Subject catalog.Subject `json:"subject"`
	Flashes []Flash         `json:"flashes"`
}

func (api *portalApi) subjectDetail(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return errHttpNotFound
	}

	sub, err := api.catSvc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == catalog.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding subject by ID")
	}

	// a student only sees subjects of their own semester
	if !claims.IsAdmin && claims.Semester != sub.Semester {
		addFlash(ctx, msgAccessDenied, flashError)
		return ctx.Redirect(http.StatusFound, "/dashboard")
	}
	return ctx.JSON(http.StatusOK, subjectPayload{Subject: sub, Flashes: popFlashes(ctx)})
}

// isDuplicateErr reports whether err is a ValidationError wrapping the given
// duplicate-key sentinel.
func isDuplicateErr(err, sentinel error) bool {
	var vErr *core.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Err == sentinel
	}
	return false
}

type (
	StudentLoginRequest struct {
		StudentID string `json:"student_id" form:"student_id" validate:"required"`
		Password  string `json:"password" form:"password" validate:"required"`
	}

	AdminLoginRequest struct {
		Email    string `json:"email" form:"email" validate:"required"`
		Password string `json:"password" form:"password" validate:"required"`
	}
)

func (lr *StudentLoginRequest) Validate(validate *validator.Validate) error {
	lr.StudentID = core.CleanString(lr.StudentID, true /* lower */)
	return validate.Struct(lr)
}

func (lr *AdminLoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}
