package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studysitare/portal/core"
	"github.com/studysitare/portal/core/user"
)

const (
	sessionCookieName = "studysitare_session"
	contextClaimsKey  = "sessionClaims"
	contextUserKey    = "user"
)

// Claims represents the authenticated session transmitted via the session cookie.
type Claims struct {
	jwt.StandardClaims
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	StudentID string `json:"student_id,omitempty"`
	Semester  int    `json:"semester,omitempty"`
	IsAdmin   bool   `json:"is_admin,omitempty"`
}

func GetUserClaims(usr user.User) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Issuer:    core.Conf.GetString("appName"),
			Subject:   strconv.FormatInt(usr.ID, 10),
			ExpiresAt: now.Add(core.Conf.GetDuration("sessionExpirationDelta")).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name:      usr.Name,
		Email:     usr.Email.String,
		StudentID: usr.StudentID.String,
		Semester:  usr.Semester.Int,
		IsAdmin:   usr.IsAdmin,
	}
}

func (c *Claims) userID() int64 {
	id, _ := strconv.ParseInt(c.Subject, 10, 64)
	return id
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(core.Conf.GetString("secretKey")))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func parseToken(ss string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(ss, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return []byte(core.Conf.GetString("secretKey")), nil
	})
	if err != nil || !token.Valid {
		return nil, errUnauthorized
	}
	return claims, nil
}

func setSessionCookie(ctx echo.Context, token string) {
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(core.Conf.GetDuration("sessionExpirationDelta")),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionMiddleware verifies the session cookie, if any, and stashes the
// session Claims in the request context. Anonymous requests pass through.
func sessionMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if cookie, err := ctx.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
				if claims, err := parseToken(cookie.Value); err == nil {
					ctx.Set(contextClaimsKey, claims)
				}
			}
			return next(ctx)
		}
	}
}

func getContextClaims(ctx echo.Context) (*Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(*Claims); ok {
		return claims, nil
	}
	return nil, errUnauthorized
}

func getContextUser(ctx echo.Context, svc *user.Service) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return user.User{}, err
	}
	usr, err := svc.GetByID(ctx.Request().Context(), claims.userID())
	if err != nil {
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

// requireAuth redirects anonymous requests to the given login page.
func requireAuth(loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, err := getContextClaims(ctx); err != nil {
				return ctx.Redirect(http.StatusFound, loginPath)
			}
			return next(ctx)
		}
	}
}

// requireAdmin guards admin-only pages; non-admins get an access-denied
// flash and a redirect to the admin login.
func requireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil || !claims.IsAdmin {
				addFlash(ctx, "Access denied. Admin privileges required.", flashError)
				return ctx.Redirect(http.StatusFound, "/admin/login")
			}
			return next(ctx)
		}
	}
}

// authenticateStudent logs a student in by student ID. A missing account and
// a wrong password are indistinguishable to the caller.
func authenticateStudent(ctx echo.Context, svc *user.Service, studentID, pwd string) (*Claims, error) {
	usr, err := svc.GetStudentByStudentID(ctx.Request().Context(), studentID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "finding student by student ID")
	}
	return checkAndLogin(ctx, svc, usr, pwd)
}

// authenticateAdmin logs an admin in by email; symmetric to authenticateStudent.
func authenticateAdmin(ctx echo.Context, svc *user.Service, email, pwd string) (*Claims, error) {
	usr, err := svc.GetAdminByEmail(ctx.Request().Context(), email)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "finding admin by email")
	}
	return checkAndLogin(ctx, svc, usr, pwd)
}

func checkAndLogin(ctx echo.Context, svc *user.Service, usr user.User, pwd string) (*Claims, error) {
	if err := usr.CheckPassword(pwd); err != nil {
		return nil, errAuthenticationFailed
	}
	usr, err := svc.SetLastLogin(ctx.Request().Context(), usr)
	if err != nil {
		return nil, errors.Wrap(err, "setting lastLogin")
	}
	return GetUserClaims(usr), nil
}
