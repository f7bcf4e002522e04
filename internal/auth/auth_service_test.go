package auth_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"go-payroll/internal/auth"
	autherrors "go-payroll/internal/auth/errors"
	authMock "go-payroll/internal/auth/mock"
	"go-payroll/internal/employee"
	employeeerrors "go-payroll/internal/employee/errors"
	employeeMock "go-payroll/internal/employee/mock"
	rbacMock "go-payroll/internal/rbac/mock"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

func TestService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Setenv("JWT_SECRET", "test-secret")

	mockRepo := authMock.NewMockRepository(ctrl)
	mockRBAC := rbacMock.NewMockService(ctrl)
	mockEmployeeRepo := employeeMock.NewMockRepository(ctrl)

	service := auth.NewService(mockRepo, mockRBAC, mockEmployeeRepo)
	ctx := context.Background()

	password := "password123"
	pw, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	userID := uuid.New()
	companyID := uuid.New()
	employeeID := uuid.New()
	mockUser := &auth.User{
		ID:         userID,
		EmployeeID: &employeeID,
		CompanyID:  companyID,
		Email:      "admin@example.com",
		Password:   string(pw),
		Role:       "PAYROLL_ADMIN",
		IsActive:   true,
	}

	mockEmployeeRepo.EXPECT().
		FindByID(gomock.Any(), employeeID.String()).
		Return(&employee.Employee{ID: employeeID, CompanyID: companyID, EmployeeCode: "EMP-001"}, nil).
		AnyTimes()

	t.Run("Success Login", func(t *testing.T) {
		mockRepo.EXPECT().
			GetByEmail(ctx, mockUser.Email).
			Return(mockUser, nil)

		mockRBAC.EXPECT().
			LoadCompanyPolicy(companyID.String()).
			Return(nil)

		token, refreshToken, resp, err := service.Login(ctx, mockUser.Email, password)

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.NotEmpty(t, refreshToken)
		assert.Equal(t, mockUser.Email, resp.Email)
		assert.Equal(t, companyID.String(), resp.CompanyID)
		assert.Equal(t, "EMP-001", resp.EmployeeCode)
	})

	t.Run("Both tokens carry the identity claims", func(t *testing.T) {
		mockRepo.EXPECT().
			GetByEmail(ctx, mockUser.Email).
			Return(mockUser, nil)

		mockRBAC.EXPECT().
			LoadCompanyPolicy(companyID.String()).
			Return(nil)

		access, refresh, _, err := service.Login(ctx, mockUser.Email, password)
		assert.NoError(t, err)

		// Middleware mewajibkan user_id, employee_id, dan company_id;
		// refresh token juga harus membawanya supaya sesi bisa diperpanjang.
		for _, raw := range []string{access, refresh} {
			parsed, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) {
				return []byte(os.Getenv("JWT_SECRET")), nil
			})
			assert.NoError(t, err)
			claims := parsed.Claims.(jwt.MapClaims)
			assert.Equal(t, userID.String(), claims["user_id"])
			assert.Equal(t, employeeID.String(), claims["employee_id"])
			assert.Equal(t, companyID.String(), claims["company_id"])
		}
	})

	t.Run("Wrong Password", func(t *testing.T) {
		mockRepo.EXPECT().
			GetByEmail(ctx, mockUser.Email).
			Return(mockUser, nil)

		_, _, _, err := service.Login(ctx, mockUser.Email, "wrongpass")
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("Disabled Account", func(t *testing.T) {
		disabled := *mockUser
		disabled.IsActive = false

		mockRepo.EXPECT().
			GetByEmail(ctx, mockUser.Email).
			Return(&disabled, nil)

		_, _, _, err := service.Login(ctx, mockUser.Email, password)
		assert.ErrorIs(t, err, autherrors.ErrAccountDisabled)
	})
}

func TestService_RefreshToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Setenv("JWT_SECRET", "test-secret")

	mockRepo := authMock.NewMockRepository(ctrl)
	mockRBAC := rbacMock.NewMockService(ctrl)
	mockEmployeeRepo := employeeMock.NewMockRepository(ctrl)
	service := auth.NewService(mockRepo, mockRBAC, mockEmployeeRepo)
	ctx := context.Background()

	password := "password123"
	pw, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	userID := uuid.New()
	companyID := uuid.New()
	employeeID := uuid.New()
	mockUser := &auth.User{
		ID:         userID,
		EmployeeID: &employeeID,
		CompanyID:  companyID,
		Email:      "admin@example.com",
		Password:   string(pw),
		IsActive:   true,
	}

	mockEmployeeRepo.EXPECT().
		FindByID(gomock.Any(), employeeID.String()).
		Return(&employee.Employee{ID: employeeID, CompanyID: companyID, EmployeeCode: "EMP-001"}, nil).
		AnyTimes()

	login := func(t *testing.T) string {
		t.Helper()
		mockRepo.EXPECT().GetByEmail(ctx, mockUser.Email).Return(mockUser, nil)
		mockRBAC.EXPECT().LoadCompanyPolicy(companyID.String()).Return(nil)
		_, refresh, _, err := service.Login(ctx, mockUser.Email, password)
		assert.NoError(t, err)
		return refresh
	}

	t.Run("Success Refresh", func(t *testing.T) {
		refresh := login(t)

		mockRepo.EXPECT().GetByID(ctx, userID).Return(mockUser, nil)

		newAccess, newRefresh, resp, err := service.RefreshToken(ctx, refresh)
		assert.NoError(t, err)
		assert.NotEmpty(t, newAccess)
		assert.NotEmpty(t, newRefresh)
		assert.Equal(t, mockUser.Email, resp.Email)
	})

	t.Run("Disabled Account Cannot Refresh", func(t *testing.T) {
		refresh := login(t)

		disabled := *mockUser
		disabled.IsActive = false
		mockRepo.EXPECT().GetByID(ctx, userID).Return(&disabled, nil)

		_, _, _, err := service.RefreshToken(ctx, refresh)
		assert.ErrorIs(t, err, autherrors.ErrAccountDisabled)
	})

	t.Run("Garbage Token", func(t *testing.T) {
		_, _, _, err := service.RefreshToken(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, autherrors.ErrInvalidRefreshToken)
	})
}

func TestService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Setenv("JWT_SECRET", "test-secret")

	mockRepo := authMock.NewMockRepository(ctrl)
	mockRBAC := rbacMock.NewMockService(ctrl)
	mockEmployeeRepo := employeeMock.NewMockRepository(ctrl)
	service := auth.NewService(mockRepo, mockRBAC, mockEmployeeRepo)
	ctx := context.Background()

	t.Run("Success Register", func(t *testing.T) {
		cID := uuid.New()
		eID := uuid.New()

		req := auth.RegisterRequest{
			EmployeeID: eID.String(),
			Email:      "user@example.com",
			Name:       "John Doe",
			Password:   "password123",
		}

		// Company akun diambil dari employee-nya, bukan dari request.
		mockEmployeeRepo.EXPECT().
			FindByID(ctx, eID.String()).
			Return(&employee.Employee{
				ID:           eID,
				CompanyID:    cID,
				EmployeeCode: "EMP-007",
				FullName:     "John Doe",
				IsActive:     true,
			}, nil).
			Times(2) // sekali validasi, sekali untuk employee_code di response

		mockRepo.EXPECT().
			Create(ctx, gomock.Any()).
			Return(nil)

		mockRBAC.EXPECT().
			LoadCompanyPolicy(cID.String()).
			Return(nil)

		resp, err := service.Register(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, req.Email, resp.Email)
		assert.Equal(t, cID.String(), resp.CompanyID)
		assert.Equal(t, "EMP-007", resp.EmployeeCode)
	})

	t.Run("Employee Not Found", func(t *testing.T) {
		eID := uuid.New().String()
		req := auth.RegisterRequest{
			EmployeeID: eID,
			Email:      "user@example.com",
			Password:   "password123",
		}

		mockEmployeeRepo.EXPECT().
			FindByID(ctx, eID).
			Return(nil, errors.New("not found"))

		_, err := service.Register(ctx, req)
		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("Inactive Employee Rejected", func(t *testing.T) {
		cID := uuid.New()
		eID := uuid.New()
		req := auth.RegisterRequest{
			EmployeeID: eID.String(),
			Email:      "user@example.com",
			Password:   "password123",
		}

		mockEmployeeRepo.EXPECT().
			FindByID(ctx, eID.String()).
			Return(&employee.Employee{ID: eID, CompanyID: cID, IsActive: false}, nil)

		_, err := service.Register(ctx, req)
		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		cID := uuid.New()
		eID := uuid.New()
		req := auth.RegisterRequest{
			EmployeeID: eID.String(),
			Email:      "duplicate@example.com",
			Password:   "password123",
		}

		mockEmployeeRepo.EXPECT().
			FindByID(ctx, eID.String()).
			Return(&employee.Employee{ID: eID, CompanyID: cID, IsActive: true}, nil)

		mockRepo.EXPECT().
			Create(ctx, gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		_, err := service.Register(ctx, req)
		assert.ErrorIs(t, err, autherrors.ErrEmailAlreadyRegistered)
	})
}
