package employee

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/config"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hrms-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/hrms-backend-go/internal/service/file"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeMailer struct {
	email.EmailService
	accounts []string
	loginURL string
}

func (f *fakeMailer) SendAccountCreated(to, name, loginURL string) error {
	f.accounts = append(f.accounts, to)
	f.loginURL = loginURL
	return nil
}

type fixture struct {
	svc    employee.EmployeeService
	store  *memory.Store
	mailer *fakeMailer
	admin  user.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()

	u, err := store.Users().Create(ctx, user.User{Email: "hr@example.com", Role: user.RoleAdmin, EmailVerified: true, IsActive: true})
	require.NoError(t, err)
	e, err := store.Employees().Create(ctx, employee.Employee{UserID: u.ID, EmployeeCode: "EMP-0100", FullName: "Sari Wulandari", Status: employee.StatusActive})
	require.NoError(t, err)

	local, err := storage.NewLocalStorage(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)

	mailer := &fakeMailer{}
	svc := NewEmployeeService(memory.Transactor{}, store.Employees(), store.Users(), store.RefreshTokens(),
		file.NewFileService(local), mailer, config.LeaveConfig{DefaultPaidDays: 12, DefaultSickDays: 6}, "http://app.local/")

	return &fixture{
		svc:    svc,
		store:  store,
		mailer: mailer,
		admin:  user.Principal{UserID: u.ID, EmployeeID: e.ID, Role: user.RoleAdmin},
	}
}

func createRequest(email string) employee.CreateEmployeeRequest {
	dept := "Engineering"
	hire := "2025-03-01"
	return employee.CreateEmployeeRequest{
		FullName:   "  Dewi Lestari ",
		Email:      email,
		Password:   "secret123",
		Department: &dept,
		HireDate:   &hire,
		BaseSalary: decimal.NewFromInt(9000000),
	}
}

func (f *fixture) principalOf(t *testing.T, resp employee.EmployeeResponse) user.Principal {
	t.Helper()
	return user.Principal{UserID: resp.UserID, EmployeeID: resp.ID, Role: user.Role(resp.Role)}
}

func TestCreateEmployee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateEmployee(ctx, f.admin, createRequest("Dewi@Example.com"))
	require.NoError(t, err)

	assert.Equal(t, "Dewi Lestari", resp.FullName)
	assert.Equal(t, "dewi@example.com", resp.Email)
	assert.Equal(t, "employee", resp.Role)
	assert.Equal(t, "EMP-0001", resp.EmployeeCode)
	assert.Equal(t, "2025-03-01", *resp.HireDate)
	assert.Equal(t, "active", resp.Status)
	assert.Equal(t, 12, resp.LeaveBalance[leave.TypePaid])
	assert.Equal(t, 6, resp.LeaveBalance[leave.TypeSick])
	assert.True(t, resp.BaseSalary.Equal(decimal.NewFromInt(9000000)))

	account, err := f.store.Users().GetByEmail(ctx, "dewi@example.com")
	require.NoError(t, err)
	assert.True(t, account.EmailVerified)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*account.PasswordHash), []byte("secret123")))

	assert.Equal(t, []string{"dewi@example.com"}, f.mailer.accounts)
	assert.Equal(t, "http://app.local/login", f.mailer.loginURL)
}

func TestCreateEmployee_Conflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateEmployee(ctx, f.admin, createRequest("dewi@example.com"))
	require.NoError(t, err)

	_, err = f.svc.CreateEmployee(ctx, f.admin, createRequest("dewi@example.com"))
	assert.ErrorIs(t, err, user.ErrUserEmailExists)

	req := createRequest("rudi@example.com")
	code := "EMP-0100"
	req.EmployeeCode = &code
	_, err = f.svc.CreateEmployee(ctx, f.admin, req)
	assert.ErrorIs(t, err, employee.ErrEmployeeCodeExists)

	_, err = f.svc.CreateEmployee(ctx, user.Principal{UserID: "x", EmployeeID: "y", Role: user.RoleEmployee}, createRequest("a@example.com"))
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)

	bad := createRequest("not-an-email")
	bad.Password = "short"
	_, err = f.svc.CreateEmployee(ctx, f.admin, bad)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "email")
	assert.Contains(t, verrs.ToMap(), "password")
}

func TestListEmployees(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, e := range []string{"dewi@example.com", "rudi@example.com", "tari@example.com"} {
		_, err := f.svc.CreateEmployee(ctx, f.admin, createRequest(e))
		require.NoError(t, err)
	}

	page, err := f.svc.ListEmployees(ctx, f.admin, employee.EmployeeFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Employees, 2)
	assert.Equal(t, int64(4), page.Pagination.Total)
	assert.Equal(t, int64(2), page.Pagination.TotalPages)
	assert.Equal(t, "EMP-0001", page.Employees[0].EmployeeCode)

	search, err := f.svc.ListEmployees(ctx, f.admin, employee.EmployeeFilter{Search: "RUDI"})
	require.NoError(t, err)
	require.Len(t, search.Employees, 1)
	assert.Equal(t, "rudi@example.com", search.Employees[0].Email)

	dept, err := f.svc.ListEmployees(ctx, f.admin, employee.EmployeeFilter{Department: "Engineering"})
	require.NoError(t, err)
	assert.Len(t, dept.Employees, 3)
}

func TestUpdateEmployee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateEmployee(ctx, f.admin, createRequest("dewi@example.com"))
	require.NoError(t, err)

	position := "Senior Engineer"
	salary := decimal.NewFromInt(12000000)
	resp, err := f.svc.UpdateEmployee(ctx, f.admin, created.ID, employee.UpdateEmployeeRequest{Position: &position, BaseSalary: &salary})
	require.NoError(t, err)
	assert.Equal(t, "Senior Engineer", *resp.Position)
	assert.True(t, resp.BaseSalary.Equal(salary))
	assert.Equal(t, "Engineering", *resp.Department)

	_, err = f.svc.UpdateEmployee(ctx, f.admin, "missing", employee.UpdateEmployeeRequest{Position: &position})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestDeactivateEmployee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateEmployee(ctx, f.admin, createRequest("dewi@example.com"))
	require.NoError(t, err)
	tokens := f.store.RefreshTokens()
	require.NoError(t, tokens.Create(ctx, created.UserID, "refresh-1", time.Now().Add(time.Hour), auth.SessionTrackingRequest{}))

	assert.ErrorIs(t, f.svc.DeactivateEmployee(ctx, f.admin, f.admin.EmployeeID), employee.ErrCannotDeactivateSelf)

	require.NoError(t, f.svc.DeactivateEmployee(ctx, f.admin, created.ID))

	got, err := f.svc.GetEmployee(ctx, f.admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "inactive", got.Status)

	account, err := f.store.Users().GetByID(ctx, created.UserID)
	require.NoError(t, err)
	assert.False(t, account.IsActive)

	_, err = tokens.GetActiveUserID(ctx, "refresh-1", time.Now())
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)

	assert.ErrorIs(t, f.svc.DeactivateEmployee(ctx, f.admin, created.ID), employee.ErrEmployeeAlreadyInactive)
}

func TestUpdateLeaveBalance_Merges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateEmployee(ctx, f.admin, createRequest("dewi@example.com"))
	require.NoError(t, err)

	resp, err := f.svc.UpdateLeaveBalance(ctx, f.admin, created.ID, employee.UpdateLeaveBalanceRequest{Balances: map[string]int{"paid": 3}})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.LeaveBalance[leave.TypePaid])
	assert.Equal(t, 6, resp.LeaveBalance[leave.TypeSick])

	_, err = f.svc.UpdateLeaveBalance(ctx, f.admin, created.ID, employee.UpdateLeaveBalanceRequest{Balances: map[string]int{"annual": 3}})
	assert.IsType(t, validator.ValidationErrors{}, err)
}

func TestSelfService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateEmployee(ctx, f.admin, createRequest("dewi@example.com"))
	require.NoError(t, err)
	me := f.principalOf(t, created)

	profile, err := f.svc.GetMyProfile(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, created.ID, profile.ID)

	phone := "+62 812-3456-7890"
	updated, err := f.svc.UpdateMyProfile(ctx, me, employee.UpdateProfileRequest{PhoneNumber: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, *updated.PhoneNumber)

	_, err = f.svc.GetMyProfile(ctx, user.Principal{UserID: "admin-without-profile", Role: user.RoleAdmin})
	assert.ErrorIs(t, err, user.ErrEmployeeProfileMissing)
}

func TestUploadMyAvatar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateEmployee(ctx, f.admin, createRequest("dewi@example.com"))
	require.NoError(t, err)
	me := f.principalOf(t, created)

	first, err := f.svc.UploadMyAvatar(ctx, me, employee.UploadAvatarRequest{File: strings.NewReader("png"), Filename: "me.png", Size: 3})
	require.NoError(t, err)
	require.NotNil(t, first.AvatarURL)

	second, err := f.svc.UploadMyAvatar(ctx, me, employee.UploadAvatarRequest{File: strings.NewReader("jpg"), Filename: "me.jpg", Size: 3})
	require.NoError(t, err)
	assert.NotEqual(t, *first.AvatarURL, *second.AvatarURL)

	_, err = f.svc.UploadMyAvatar(ctx, me, employee.UploadAvatarRequest{File: strings.NewReader("gif"), Filename: "me.gif", Size: 3})
	assert.ErrorIs(t, err, employee.ErrInvalidAvatar)

	_, err = f.svc.UploadMyAvatar(ctx, me, employee.UploadAvatarRequest{File: strings.NewReader(""), Filename: "me.png", Size: employee.MaxAvatarSize + 1})
	assert.IsType(t, validator.ValidationErrors{}, err)
}
