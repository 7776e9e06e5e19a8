package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	testutil "github.com/studysitare/portal/tests"
)

func Test_portalApi_studentRegister(t *testing.T) {
	app := setup(t)

	body := marchallObj(t, map[string]interface{}{
		"name":             "Jane Doe",
		"student_id":       "s-001",
		"semester":         1,
		"password":         "pwd123",
		"password_confirm": "pwd123",
	})

	req, rec := newRequest(http.MethodPost, "/student/register", body)
	app.server.ServeHTTP(rec, req)
	checkRedirect(t, rec, "/student/login")
	checkFlash(t, rec, "Registration successful!")

	// second registration with the same student ID bounces back; no row written
	req, rec = newRequest(http.MethodPost, "/student/register", body)
	app.server.ServeHTTP(rec, req)
	checkRedirect(t, rec, "/student/register")
	checkFlash(t, rec, "Student ID already registered")

	students, err := app.usrRepo.QueryStudents(context.Background())
	if err != nil {
		t.Fatalf("QueryStudents() failed: %v", err)
	}
	if len(students) != 1 {
		t.Errorf("got %d students; want 1", len(students))
	}
	if !students[0].Semester.Valid || students[0].Semester.Int != 1 {
		t.Errorf("student semester = %+v; want 1", students[0].Semester)
	}
	if students[0].IsAdmin {
		t.Error("registered student has the admin flag")
	}
}

func Test_portalApi_studentLogin(t *testing.T) {
	app := setup(t)
	testutil.CreateStudent(t, app.usrRepo, "Jane", "s-001", 1, "pwd123")

	tests := []struct {
		name      string
		body      map[string]string
		wantDest  string
		wantFlash string
	}{
		{
			name: "ok", body: map[string]string{"student_id": "s-001", "password": "pwd123"},
			wantDest: "/dashboard",
		},
		{
			name: "wrong password", body: map[string]string{"student_id": "s-001", "password": "nope"},
			wantDest: "/student/login", wantFlash: "Invalid student ID or password",
		},
		{
			// an unknown ID is indistinguishable from a wrong password
			name: "unknown student ID", body: map[string]string{"student_id": "s-999", "password": "pwd123"},
			wantDest: "/student/login", wantFlash: "Invalid student ID or password",
		},
		{
			name: "missing fields", body: map[string]string{},
			wantDest: "/student/login", wantFlash: "Invalid student ID or password",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/student/login", marchallObj(t, tt.body))
			app.server.ServeHTTP(rec, req)
			checkRedirect(t, rec, tt.wantDest)
			if tt.wantFlash != "" {
				checkFlash(t, rec, tt.wantFlash)
				if sessionCookie(rec) != nil {
					t.Error("session cookie set on failed login")
				}
			} else {
				if cookie := sessionCookie(rec); cookie == nil || cookie.Value == "" {
					t.Error("session cookie not set on successful login")
				}
			}
		})
	}
}

func Test_portalApi_authedLoginRedirects(t *testing.T) {
	app := setup(t)
	student := testutil.CreateStudent(t, app.usrRepo, "Jane", "s-001", 1, "pwd123")
	admin := testutil.CreateAdmin(t, app.usrRepo, "Root", "root@test.cd", "pwd123")

	// an authenticated session is sent to its dashboard without re-checking credentials
	req, rec := newAuthRequest(http.MethodGet, "/student/login", getSessionToken(t, student))
	app.server.ServeHTTP(rec, req)
	checkRedirect(t, rec, "/dashboard")

	req, rec = newAuthRequest(http.MethodGet, "/admin/login", getSessionToken(t, admin))
	app.server.ServeHTTP(rec, req)
	checkRedirect(t, rec, "/admin/dashboard")

	req, rec = newAuthRequest(http.MethodPost, "/student/login", getSessionToken(t, student),
		marchallObj(t, map[string]string{"student_id": "s-001", "password": "wrong"}))
	app.server.ServeHTTP(rec, req)
	checkRedirect(t, rec, "/dashboard")
}

func Test_portalApi_adminLogin(t *testing.T) {
	app := setup(t)
	testutil.CreateAdmin(t, app.usrRepo, "Root", "root@test.cd", "pwd123")

	req, rec := newRequest(http.MethodPost, "/admin/login",
		marchallObj(t, map[string]string{"email": "root@test.cd", "password": "pwd123"}))
	app.server.ServeHTTP(rec, req)
	checkRedirect(t, rec, "/admin/dashboard")
	if sessionCookie(rec) == nil {
		t.Error("session cookie not set on successful admin login")
	}

	req, rec = newRequest(http.MethodPost, "/admin/login",
		marchallObj(t, map[string]string{"email": "root@test.cd", "password": "nope"}))
	app.server.ServeHTTP(rec, req)
	checkRedirect(t, rec, "/admin/login")
	checkFlash(t, rec, "Invalid email or password")
}

func Test_portalApi_dashboard(t *testing.T) {
	app := setup(t)
	student := testutil.CreateStudent(t, app.usrRepo, "Jane", "s-001", 1, "pwd123")
	maths := testutil.CreateSubject(t, app.subjRepo, "Mathematics", 1, "Basic mathematics and calculus")
	physics := testutil.CreateSubject(t, app.subjRepo, "Physics", 1, "")
	testutil.CreateSubject(t, app.subjRepo, "Programming", 2, "") // other semester; not shown

	testutil.CreateProgress(t, app.progRepo, student.ID, maths.ID, 3, 10)
	testutil.CreateProgress(t, app.progRepo, student.ID, physics.ID, 7, 10)

	// anonymous
	req, rec := newRequest(http.MethodGet, "/dashboard")
	app.server.ServeHTTP(rec, req)
	checkRedirect(t, rec, "/student/login")

	// student with progress
	req, rec = newAuthRequest(http.MethodGet, "/dashboard", getSessionToken(t, student))
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var payload struct {
		Name            string            `json:"name"`
		Subjects        []json.RawMessage `json:"subjects"`
		Progress        []json.RawMessage `json:"progress"`
		CompletedTopics int               `json:"completed_topics"`
		TotalTopics     int               `json:"total_topics"`
		OverallProgress int               `json:"overall_progress"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshalling dashboard failed: %v", err)
	}
	assert.Equal(t, "Jane", payload.Name)
	assert.Len(t, payload.Subjects, 2)
	assert.Len(t, payload.Progress, 2)
	assert.Equal(t, 10, payload.CompletedTopics)
	assert.Equal(t, 20, payload.TotalTopics)
	assert.Equal(t, 50, payload.OverallProgress)

	// a student without progress rows gets 0, not a division-by-zero failure
	fresh := testutil.CreateStudent(t, app.usrRepo, "Ken", "s-002", 1, "pwd123")
	req, rec = newAuthRequest(http.MethodGet, "/dashboard", getSessionToken(t, fresh))
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshalling dashboard failed: %v", err)
	}
	assert.Equal(t, 0, payload.OverallProgress)
	assert.Equal(t, 0, payload.TotalTopics)

	// admins do not have a student dashboard
	admin := testutil.CreateAdmin(t, app.usrRepo, "Root", "root@test.cd", "pwd123")
	req, rec = newAuthRequest(http.MethodGet, "/dashboard", getSessionToken(t, admin))
	app.server.ServeHTTP(rec, req)
	checkRedirect(t, rec, "/admin/dashboard")

}

func Test_portalApi_logout(t *testing.T) {
	app := setup(t)
	student := testutil.CreateStudent(t, app.usrRepo, "Jane", "s-001", 1, "pwd123")

	req, rec := newAuthRequest(http.MethodGet, "/logout", getSessionToken(t, student))
	app.server.ServeHTTP(rec, req)
	checkRedirect(t, rec, "/")

	cookie := sessionCookie(rec)
	if cookie == nil || cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Error("logout did not clear the session cookie")
	}

	// the cleared session no longer reaches the dashboard
	req, rec = newRequest(http.MethodGet, "/dashboard")
	app.server.ServeHTTP(rec, req)
	checkRedirect(t, rec, "/student/login")

	// logging out twice is fine
	req, rec = newAuthRequest(http.MethodGet, "/logout", getSessionToken(t, student))
	app.server.ServeHTTP(rec, req)
	checkRedirect(t, rec, "/")
}

func Test_portalApi_adminDashboard(t *testing.T) {
	app := setup(t)
	student := testutil.CreateStudent(t, app.usrRepo, "Jane", "s-001", 1, "pwd123")
	admin := testutil.CreateAdmin(t, app.usrRepo, "Root", "root@test.cd", "pwd123")
	testutil.CreateSubject(t, app.subjRepo, "Mathematics", 1, "")

	// anonymous and student sessions are denied
	for _, token := range []string{"", getSessionToken(t, student)} {
		req, rec := newAuthRequest(http.MethodGet, "/admin/dashboard", token)
		app.server.ServeHTTP(rec, req)
		checkRedirect(t, rec, "/admin/login")
		checkFlash(t, rec, "Access denied. Admin privileges required.")
	}

	req, rec := newAuthRequest(http.MethodGet, "/admin/dashboard", getSessionToken(t, admin))
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var payload struct {
		Subjects []json.RawMessage `json:"subjects"`
		Students []struct {
			Name string `json:"name"`
		} `json:"students"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshalling admin dashboard failed: %v", err)
	}
	assert.Len(t, payload.Subjects, 1)
	assert.Len(t, payload.Students, 1)
	assert.Equal(t, "Jane", payload.Students[0].Name)
}

func Test_portalApi_subjectDetail(t *testing.T) {
	app := setup(t)
	sem1Student := testutil.CreateStudent(t, app.usrRepo, "Jane", "s-001", 1, "pwd123")
	sem2Student := testutil.CreateStudent(t, app.usrRepo, "Ken", "s-002", 2, "pwd123")
	admin := testutil.CreateAdmin(t, app.usrRepo, "Root", "root@test.cd", "pwd123")
	maths := testutil.CreateSubject(t, app.subjRepo, "Mathematics", 1, "Basic mathematics and calculus")

	path := "/subject/" + strconv.FormatInt(maths.ID, 10)

	// anonymous
	req, rec := newRequest(http.MethodGet, path)
	app.server.ServeHTTP(rec, req)
	checkRedirect(t, rec, "/student/login")

	// matching semester
	req, rec = newAuthRequest(http.MethodGet, path, getSessionToken(t, sem1Student))
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	// a semester-2 student may not view a semester-1 subject
	req, rec = newAuthRequest(http.MethodGet, path, getSessionToken(t, sem2Student))
	app.server.ServeHTTP(rec, req)
	checkRedirect(t, rec, "/dashboard")
	checkFlash(t, rec, "Access denied")

	// admins see everything
	req, rec = newAuthRequest(http.MethodGet, path, getSessionToken(t, admin))
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	// unknown subject
	req, rec = newAuthRequest(http.MethodGet, "/subject/999", getSessionToken(t, sem1Student))
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusNotFound)
	}
}

func Test_portalApi_adminRegister(t *testing.T) {
	app := setup(t)
	student := testutil.CreateStudent(t, app.usrRepo, "Jane", "s-001", 1, "pwd123")
	admin := testutil.CreateAdmin(t, app.usrRepo, "Root", "root@test.cd", "pwd123")

	body := marchallObj(t, map[string]string{
		"name":             "Second Admin",
		"email":            "second@test.cd",
		"password":         "pwd123",
		"password_confirm": "pwd123",
	})

	// only admins may create admins
	req, rec := newAuthRequest(http.MethodPost, "/admin/register", getSessionToken(t, student), body)
	app.server.ServeHTTP(rec, req)
	checkRedirect(t, rec, "/admin/login")
	checkFlash(t, rec, "Access denied. Admin privileges required.")

	req, rec = newAuthRequest(http.MethodPost, "/admin/register", getSessionToken(t, admin), body)
	app.server.ServeHTTP(rec, req)
	checkRedirect(t, rec, "/admin/login")
	checkFlash(t, rec, "Admin registration successful!")

	created, err := app.usrRepo.GetAdminByEmail(context.Background(), "second@test.cd")
	if err != nil {
		t.Fatalf("GetAdminByEmail() failed: %v", err)
	}
	if !created.IsAdmin {
		t.Error("created user is not an admin")
	}
	if err = created.CheckPassword("pwd123"); err != nil {
		t.Errorf("created admin password check failed: %v", err)
	}

	// duplicate email bounces back
	req, rec = newAuthRequest(http.MethodPost, "/admin/register", getSessionToken(t, admin), body)
	app.server.ServeHTTP(rec, req)
	checkRedirect(t, rec, "/admin/register")
	checkFlash(t, rec, "Email already registered")

}
