package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/config"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/otp"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/hrms-backend-go/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/hrms-backend-go/internal/service/attendance"
	authService "github.com/cmlabs-hris/hrms-backend-go/internal/service/auth"
	employeeService "github.com/cmlabs-hris/hrms-backend-go/internal/service/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/service/file"
	leaveService "github.com/cmlabs-hris/hrms-backend-go/internal/service/leave"
	notificationService "github.com/cmlabs-hris/hrms-backend-go/internal/service/notification"
	payrollService "github.com/cmlabs-hris/hrms-backend-go/internal/service/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "secret123"

type nopMailer struct{}

func (nopMailer) SendOTP(to, name, code string, validFor time.Duration) error { return nil }
func (nopMailer) SendLeaveDecision(to string, data email.LeaveDecisionData) error {
	return nil
}
func (nopMailer) SendAccountCreated(to, name, loginURL string) error { return nil }

type testServer struct {
	handler http.Handler
	store   *memory.Store
	jwt     jwt.Service

	adminToken string
	staffToken string
	staff      employee.Employee
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	clk := &clock.Fixed{T: time.Date(2026, 1, 12, 8, 0, 0, 0, time.UTC)}
	jwtService, err := jwt.NewJWTService("test-secret", "15m", "24h")
	require.NoError(t, err)

	uploads := t.TempDir()
	localStorage, err := storage.NewLocalStorage(uploads, "http://localhost:8080/uploads")
	require.NoError(t, err)
	files := file.NewFileService(localStorage)

	notifications := notificationService.NewNotificationService(store.Notifications(), sse.NewHub(), clk, notificationService.Config{
		BatchSize:     10,
		FlushInterval: 10 * time.Millisecond,
		WorkerCount:   1,
		QueueSize:     10,
	})
	t.Cleanup(notifications.Stop)

	leaveCfg := config.LeaveConfig{DefaultPaidDays: 12, DefaultSickDays: 6}
	mailer := nopMailer{}

	handlers := Handlers{
		Auth: NewAuthHandler(jwtService, authService.NewAuthService(
			memory.Transactor{}, store.Users(), store.Employees(), store.RefreshTokens(),
			jwtService, otp.NewGenerator("HRMS", 10*time.Minute), mailer, clk, leaveCfg,
		), nil, "http://localhost:3000"),
		Employee: NewEmployeeHandler(employeeService.NewEmployeeService(
			memory.Transactor{}, store.Employees(), store.Users(), store.RefreshTokens(),
			files, mailer, leaveCfg, "http://localhost:3000",
		)),
		Attendance: NewAttendanceHandler(attendanceService.NewAttendanceService(store.Attendances(), clk, time.UTC)),
		Leave: NewLeaveHandler(leaveService.NewLeaveService(
			memory.Transactor{}, store.LeaveRequests(), store.Employees(), files, notifications, mailer, clk, time.UTC,
		)),
		Payroll:      NewPayrollHandler(payrollService.NewPayrollService(store.Payrolls(), store.Employees(), store.LeaveRequests(), notifications)),
		Notification: NewNotificationHandler(notifications, jwtService),
	}

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	router := NewRouter(RouterConfig{
		CORSOrigins:   []string{"http://localhost:3000"},
		UploadsDir:    uploads,
		UploadsPrefix: "/uploads",
	}, logger, jwtService, handlers)

	s := &testServer{handler: router, store: store, jwt: jwtService}
	s.adminToken, _ = s.seedUser(t, ctx, "admin@example.com", user.RoleAdmin, "EMP-0001", "Sari")
	s.staffToken, s.staff = s.seedUser(t, ctx, "budi@example.com", user.RoleEmployee, "EMP-0002", "Budi")
	return s
}

func (s *testServer) seedUser(t *testing.T, ctx context.Context, addr string, role user.Role, code, name string) (string, employee.Employee) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	hashStr := string(hash)

	u, err := s.store.Users().Create(ctx, user.User{
		Email:         addr,
		PasswordHash:  &hashStr,
		Role:          role,
		EmailVerified: true,
		IsActive:      true,
	})
	require.NoError(t, err)
	emp, err := s.store.Employees().Create(ctx, employee.Employee{
		UserID:       u.ID,
		EmployeeCode: code,
		FullName:     name,
		BaseSalary:   decimal.NewFromInt(6_000_000),
		LeaveBalance: employee.DefaultLeaveBalance(12, 6),
	})
	require.NoError(t, err)

	token, _, err := s.jwt.GenerateAccessToken(u.ID, addr, &emp.ID, role)
	require.NoError(t, err)
	return token, emp
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func TestAttendanceEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/attendance/check-in", s.staffToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var checkedIn struct {
		Status  string `json:"status"`
		CheckIn struct {
			IP *string `json:"ip"`
		} `json:"check_in"`
	}
	decode(t, rec, &checkedIn)
	assert.Equal(t, "present", checkedIn.Status)
	require.NotNil(t, checkedIn.CheckIn.IP)
	assert.Equal(t, "192.0.2.1", *checkedIn.CheckIn.IP)

	rec = s.do(t, http.MethodPost, "/api/v1/attendance/check-in", s.staffToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CONFLICT", decode(t, rec, nil).Error.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/attendance/today", s.staffToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var today struct {
		CheckedIn  bool `json:"checked_in"`
		CheckedOut bool `json:"checked_out"`
	}
	decode(t, rec, &today)
	assert.True(t, today.CheckedIn)
	assert.False(t, today.CheckedOut)

	rec = s.do(t, http.MethodGet, "/api/v1/attendance/me?startDate=2026-13-01", s.staffToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec, nil).Error.Details, "startDate")
}

func TestAttendanceAdminEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/v1/attendance/check-in", s.staffToken, nil)

	rec := s.do(t, http.MethodGet, "/api/v1/attendance/all", s.staffToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/attendance/all?date=2026-01-12", s.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Records []struct {
			ID string `json:"id"`
		} `json:"records"`
	}
	decode(t, rec, &list)
	require.Len(t, list.Records, 1)

	rec = s.do(t, http.MethodPut, "/api/v1/attendance/"+list.Records[0].ID, s.adminToken, map[string]string{
		"status":          "half-day",
		"override_reason": "left early with approval",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var overridden struct {
		Status string `json:"status"`
	}
	decode(t, rec, &overridden)
	assert.Equal(t, "half-day", overridden.Status)

	rec = s.do(t, http.MethodGet, "/api/v1/attendance/export?startDate=2026-01-01&endDate=2026-01-31", s.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attendance_20260101_20260131.xlsx")
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestMalformedIDIsNotFound(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodPut, "/api/v1/attendance/not-a-uuid", map[string]string{"status": "present"}},
		{http.MethodGet, "/api/v1/employees/not-a-uuid", nil},
		{http.MethodPut, "/api/v1/employees/not-a-uuid", map[string]string{"full_name": "Budi"}},
		{http.MethodDelete, "/api/v1/employees/not-a-uuid", nil},
		{http.MethodGet, "/api/v1/leaves/not-a-uuid", nil},
		{http.MethodPut, "/api/v1/leaves/not-a-uuid/approve", nil},
		{http.MethodPut, "/api/v1/leaves/not-a-uuid/reject", nil},
		{http.MethodGet, "/api/v1/payroll/not-a-uuid", nil},
		{http.MethodPut, "/api/v1/payroll/not-a-uuid/pay", nil},
		{http.MethodDelete, "/api/v1/payroll/not-a-uuid", nil},
		{http.MethodPut, "/api/v1/notifications/not-a-uuid/read", nil},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := s.do(t, tc.method, tc.path, s.adminToken, tc.body)
			assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
		})
	}
}

func TestLeaveEndpoints(t *testing.T) {
	s := newTestServer(t)

	apply := map[string]string{
		"leave_type": "paid",
		"start_date": "2026-01-14",
		"end_date":   "2026-01-16",
		"reason":     "family event",
	}
	rec := s.do(t, http.MethodPost, "/api/v1/leaves/apply", s.staffToken, apply)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		Duration int    `json:"duration"`
	}
	decode(t, rec, &created)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, 3, created.Duration)

	rec = s.do(t, http.MethodPost, "/api/v1/leaves/apply", s.staffToken, apply)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/leaves/"+created.ID+"/approve", s.staffToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/leaves/"+created.ID+"/approve", s.adminToken, map[string]string{"admin_comment": "enjoy"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPut, "/api/v1/leaves/"+created.ID+"/reject", s.adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CONFLICT", decode(t, rec, nil).Error.Code)

	emp, err := s.store.Employees().GetByID(context.Background(), s.staff.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, emp.LeaveBalance["paid"])

	rec = s.do(t, http.MethodPost, "/api/v1/leaves/apply", s.staffToken, map[string]string{
		"leave_type": "sick",
		"start_date": "2026-02-02",
		"end_date":   "2026-02-10",
		"reason":     "surgery",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INSUFFICIENT_BALANCE", decode(t, rec, nil).Error.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/leaves/me?status=approved", s.staffToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine struct {
		Requests []struct {
			ID string `json:"id"`
		} `json:"requests"`
	}
	decode(t, rec, &mine)
	assert.Len(t, mine.Requests, 1)
}

func TestLeaveApply_Multipart(t *testing.T) {
	s := newTestServer(t)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("data", `{"leave_type":"sick","start_date":"2026-01-13","end_date":"2026-01-13","reason":"flu"}`))
	part, err := form.CreateFormFile("attachment", "note.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/leaves/apply", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.staffToken)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		AttachmentURL *string `json:"attachment_url"`
	}
	decode(t, rec, &created)
	require.NotNil(t, created.AttachmentURL)
	assert.True(t, strings.HasPrefix(*created.AttachmentURL, "http://localhost:8080/uploads/leave-attachments/"))

	// The stored file is served back under /uploads.
	path := strings.TrimPrefix(*created.AttachmentURL, "http://localhost:8080")
	rec = s.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.4", rec.Body.String())
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "budi@example.com",
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, rec, &tokens)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "refresh_token", cookies[0].Name)

	rec = s.do(t, http.MethodGet, "/api/v1/auth/me", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Email string `json:"email"`
	}
	decode(t, rec, &me)
	assert.Equal(t, "budi@example.com", me.Email)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	req.AddCookie(cookies[0])
	logout := httptest.NewRecorder()
	s.handler.ServeHTTP(logout, req)
	require.Equal(t, http.StatusOK, logout.Code, logout.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/auth/me", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "budi@example.com",
		"password": "wrongpass1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/auth/login/google", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnauthenticated(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/v1/attendance/today", "/api/v1/leaves/me", "/api/v1/employees/me", "/api/v1/payroll/me"} {
		rec := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := s.do(t, http.MethodGet, "/api/v1/notifications/stream?token=nope", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEmployeeAndPayrollEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/employees?search=budi", s.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Employees []struct {
			ID string `json:"id"`
		} `json:"employees"`
	}
	decode(t, rec, &list)
	require.Len(t, list.Employees, 1)
	assert.Equal(t, s.staff.ID, list.Employees[0].ID)

	rec = s.do(t, http.MethodPut, "/api/v1/employees/me", s.staffToken, map[string]string{"phone_number": "+62 812-3456-7890"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/payroll", s.adminToken, map[string]interface{}{
		"employee_id": s.staff.ID,
		"month":       1,
		"year":        2026,
		"allowances":  "500000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var slip struct {
		ID        string          `json:"id"`
		NetSalary decimal.Decimal `json:"net_salary"`
	}
	decode(t, rec, &slip)
	assert.True(t, decimal.NewFromInt(6_500_000).Equal(slip.NetSalary), slip.NetSalary.String())

	rec = s.do(t, http.MethodPut, "/api/v1/payroll/"+slip.ID+"/pay", s.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/payroll/me?year=2026", s.staffToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine struct {
		Records []struct {
			Status string `json:"status"`
		} `json:"records"`
	}
	decode(t, rec, &mine)
	require.Len(t, mine.Records, 1)
	assert.Equal(t, "paid", mine.Records[0].Status)

	rec = s.do(t, http.MethodGet, "/api/v1/payroll/me?year=abc", s.staffToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmployeeAvatarUpload(t *testing.T) {
	s := newTestServer(t)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("avatar", "me.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/employees/me/avatar", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.staffToken)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var profile struct {
		AvatarURL *string `json:"avatar_url"`
	}
	decode(t, rec, &profile)
	require.NotNil(t, profile.AvatarURL)
	assert.Equal(t, ".png", filepath.Ext(*profile.AvatarURL))
}

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}
