package tests

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/studysitare/portal/apps/api/echo"
	"github.com/studysitare/portal/core"
	"github.com/studysitare/portal/core/catalog"
	"github.com/studysitare/portal/core/progress"
	"github.com/studysitare/portal/core/user"
	emailsvc "github.com/studysitare/portal/services/email"
	logsvc "github.com/studysitare/portal/services/logger"
	sqliterepos "github.com/studysitare/portal/storage/database/sqlite"
	testutil "github.com/studysitare/portal/tests"
)

type testApp struct {
	server echoapi.Server

	usrRepo  user.Repository
	subjRepo catalog.Repository
	progRepo progress.Repository
}

func setup(t *testing.T) *testApp {
	t.Helper()

	// set up DB & repos
	db := testutil.PrepareDB(t)
	usrRepo := sqliterepos.NewUserRepository(db)
	subjRepo := sqliterepos.NewSubjectRepository(db)
	progRepo := sqliterepos.NewProgressRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock()
	usrSvc := user.NewService(usrRepo, mailSvc)
	catSvc := catalog.NewService(subjRepo)
	progSvc := progress.NewService(progRepo, subjRepo)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// set up server
	server := echoapi.NewServer(
		&echoapi.Options{
			DisableReqLogs: true,
			Logger:         logsvc.NewStdLogger(nil),
			Validate:       validate,
			Translator:     translator,
			UserSvc:        usrSvc,
			CatalogSvc:     catSvc,
			ProgressSvc:    progSvc,
		},
	)
	return &testApp{server: server, usrRepo: usrRepo, subjRepo: subjRepo, progRepo: progRepo}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newAuthRequest(method, path, sessionToken string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if sessionToken != "" {
		req.AddCookie(&http.Cookie{Name: "studysitare_session", Value: sessionToken})
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getSessionToken(t *testing.T, usr user.User) string {
	t.Helper()

	claims := echoapi.GetUserClaims(usr)
	token, err := echoapi.GenerateToken(claims)
	if err != nil {
		t.Fatalf("getSessionToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func checkRedirect(t *testing.T, rec *httptest.ResponseRecorder, wantLocation string) {
	t.Helper()

	if rec.Code != http.StatusFound {
		t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get("Location"); loc != wantLocation {
		t.Errorf("failed! location = %q; want %q", loc, wantLocation)
	}
}

// recordedFlashes decodes the flash cookie set on the response, if any.
func recordedFlashes(t *testing.T, rec *httptest.ResponseRecorder) []echoapi.Flash {
	t.Helper()

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name != "studysitare_flash" || cookie.Value == "" {
			continue
		}
		data, err := base64.URLEncoding.DecodeString(cookie.Value)
		if err != nil {
			t.Fatalf("decoding flash cookie failed: %v", err)
		}
		var flashes []echoapi.Flash
		if err := json.Unmarshal(data, &flashes); err != nil {
			t.Fatalf("unmarshalling flash cookie failed: %v", err)
		}
		return flashes
	}
	return nil
}

func checkFlash(t *testing.T, rec *httptest.ResponseRecorder, wantMsg string) {
	t.Helper()

	for _, flash := range recordedFlashes(t, rec) {
		if flash.Message == wantMsg {
			return
		}
	}
	t.Errorf("flash %q not found in response", wantMsg)
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "studysitare_session" {
			return cookie
		}
	}
	return nil
}
