package user_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-payroll/internal/user"
	usererrors "go-payroll/internal/user/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeUserService struct {
	GetAllFn             func(ctx context.Context, companyID string) ([]user.UserResponse, error)
	GetAllWithRolesFn    func(ctx context.Context, companyID string) ([]user.UserWithRolesResponse, error)
	GetByIDFn            func(ctx context.Context, companyID, id string) (user.UserResponse, error)
	CreateFn             func(ctx context.Context, companyID string, req user.CreateUserRequest) (user.UserResponse, error)
	ToggleStatusFn       func(ctx context.Context, companyID, id string, isActive bool) error
	ChangePasswordFn     func(ctx context.Context, companyID, id, current, next string) error
	ResetPasswordFn      func(ctx context.Context, companyID, id, next string) error
	ForceResetPasswordFn func(ctx context.Context, companyID, id, next string) error
}

func (f *fakeUserService) GetAll(ctx context.Context, cid string) ([]user.UserResponse, error) {
	return f.GetAllFn(ctx, cid)
}

func (f *fakeUserService) GetAllWithRoles(ctx context.Context, cid string) ([]user.UserWithRolesResponse, error) {
	return f.GetAllWithRolesFn(ctx, cid)
}

func (f *fakeUserService) GetByID(ctx context.Context, cid, id string) (user.UserResponse, error) {
	return f.GetByIDFn(ctx, cid, id)
}

func (f *fakeUserService) Create(ctx context.Context, cid string, req user.CreateUserRequest) (user.UserResponse, error) {
	return f.CreateFn(ctx, cid, req)
}

func (f *fakeUserService) ToggleStatus(ctx context.Context, cid, id string, isActive bool) error {
	return f.ToggleStatusFn(ctx, cid, id, isActive)
}

func (f *fakeUserService) ChangePassword(ctx context.Context, cid, id, current, next string) error {
	return f.ChangePasswordFn(ctx, cid, id, current, next)
}

func (f *fakeUserService) ResetPassword(ctx context.Context, cid, id, next string) error {
	return f.ResetPasswordFn(ctx, cid, id, next)
}

func (f *fakeUserService) ForceResetPassword(ctx context.Context, cid, id, next string) error {
	return f.ForceResetPasswordFn(ctx, cid, id, next)
}

func setupHandler(svc user.Service) *user.Handler {
	return user.NewHandler(svc, zap.NewNop())
}

func TestUserHandler_GetAll(t *testing.T) {
	gin.SetMode(gin.TestMode)

	accounts := []user.UserResponse{
		{ID: "3", Email: "charlie@mail.com", FullName: "Charlie"},
		{ID: "1", Email: "alice@mail.com", FullName: "Alice"},
		{ID: "2", Email: "bob@mail.com", FullName: "Bob"},
	}

	t.Run("success", func(t *testing.T) {
		companyID := uuid.New().String()

		svc := &fakeUserService{
			GetAllFn: func(ctx context.Context, cid string) ([]user.UserResponse, error) {
				assert.Equal(t, companyID, cid)
				return accounts, nil
			},
		}

		h := setupHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Request = httptest.NewRequest(http.MethodGet, "/users", nil)
		c.Set("company_id", companyID)

		h.GetAll(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "alice@mail.com")
		// Default sort by email ascending.
		body := w.Body.String()
		assert.Less(t, strings.Index(body, "alice"), strings.Index(body, "bob"))
	})

	t.Run("filters by query on email and name", func(t *testing.T) {
		svc := &fakeUserService{
			GetAllFn: func(ctx context.Context, cid string) ([]user.UserResponse, error) {
				return accounts, nil
			},
		}

		h := setupHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Request = httptest.NewRequest(http.MethodGet, "/users?q=bob", nil)
		c.Set("company_id", uuid.New().String())

		h.GetAll(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "bob@mail.com")
		assert.NotContains(t, w.Body.String(), "alice@mail.com")
	})

	t.Run("paginates", func(t *testing.T) {
		svc := &fakeUserService{
			GetAllFn: func(ctx context.Context, cid string) ([]user.UserResponse, error) {
				return accounts, nil
			},
		}

		h := setupHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Request = httptest.NewRequest(http.MethodGet, "/users?page=2&page_size=2", nil)
		c.Set("company_id", uuid.New().String())

		h.GetAll(c)

		assert.Equal(t, http.StatusOK, w.Code)
		// Halaman kedua berisi sisa satu akun (charlie, urutan email).
		assert.Contains(t, w.Body.String(), "charlie@mail.com")
		assert.NotContains(t, w.Body.String(), "alice@mail.com")
	})

	t.Run("service error", func(t *testing.T) {
		svc := &fakeUserService{
			GetAllFn: func(ctx context.Context, cid string) ([]user.UserResponse, error) {
				return nil, assert.AnError
			},
		}

		h := setupHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Request = httptest.NewRequest(http.MethodGet, "/users", nil)
		c.Set("company_id", uuid.New().String())

		h.GetAll(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestUserHandler_GetByID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success", func(t *testing.T) {
		companyID := uuid.New().String()
		userID := uuid.New().String()

		svc := &fakeUserService{
			GetByIDFn: func(ctx context.Context, cid, id string) (user.UserResponse, error) {
				assert.Equal(t, companyID, cid)
				assert.Equal(t, userID, id)
				return user.UserResponse{ID: id, Email: "user@mail.com"}, nil
			},
		}

		h := setupHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Request = httptest.NewRequest(http.MethodGet, "/users/"+userID, nil)
		c.Set("company_id", companyID)
		c.Params = gin.Params{{Key: "id", Value: userID}}

		h.GetById(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "user@mail.com")
	})

	t.Run("not found maps to 404", func(t *testing.T) {
		svc := &fakeUserService{
			GetByIDFn: func(ctx context.Context, cid, id string) (user.UserResponse, error) {
				return user.UserResponse{}, usererrors.ErrUserNotFound
			},
		}

		h := setupHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Request = httptest.NewRequest(http.MethodGet, "/users/1", nil)
		c.Set("company_id", uuid.New().String())
		c.Params = gin.Params{{Key: "id", Value: "1"}}

		h.GetById(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUserHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success", func(t *testing.T) {
		companyID := uuid.New().String()
		employeeID := uuid.New().String()

		svc := &fakeUserService{
			CreateFn: func(ctx context.Context, cid string, req user.CreateUserRequest) (user.UserResponse, error) {
				assert.Equal(t, companyID, cid)
				assert.Equal(t, employeeID, req.EmployeeID)
				return user.UserResponse{Email: req.Email, FullName: "Kasun Perera"}, nil
			},
		}

		h := setupHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body := `{"employee_id":"` + employeeID + `","email":"op@mail.com","password":"password123"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("company_id", companyID)

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "Kasun Perera")
	})

	t.Run("short password rejected before service", func(t *testing.T) {
		svc := &fakeUserService{
			CreateFn: func(ctx context.Context, cid string, req user.CreateUserRequest) (user.UserResponse, error) {
				t.Fatal("service should not be called")
				return user.UserResponse{}, nil
			},
		}

		h := setupHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body := `{"employee_id":"` + uuid.New().String() + `","email":"op@mail.com","password":"short"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("company_id", uuid.New().String())

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate email maps to 409", func(t *testing.T) {
		svc := &fakeUserService{
			CreateFn: func(ctx context.Context, cid string, req user.CreateUserRequest) (user.UserResponse, error) {
				return user.UserResponse{}, usererrors.ErrUserAlreadyExists
			},
		}

		h := setupHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body := `{"employee_id":"` + uuid.New().String() + `","email":"op@mail.com","password":"password123"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("company_id", uuid.New().String())

		h.Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestUserHandler_ToggleStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("passes the flag through", func(t *testing.T) {
		companyID := uuid.New().String()
		userID := uuid.New().String()

		var got bool
		svc := &fakeUserService{
			ToggleStatusFn: func(ctx context.Context, cid, id string, isActive bool) error {
				assert.Equal(t, userID, id)
				got = isActive
				return nil
			},
		}

		h := setupHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Request = httptest.NewRequest(http.MethodPatch, "/users/"+userID+"/status", strings.NewReader(`{"is_active":false}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("company_id", companyID)
		c.Params = gin.Params{{Key: "id", Value: userID}}

		h.ToggleStatus(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, got)
	})

	t.Run("missing flag rejected", func(t *testing.T) {
		svc := &fakeUserService{
			ToggleStatusFn: func(ctx context.Context, cid, id string, isActive bool) error {
				t.Fatal("service should not be called")
				return nil
			},
		}

		h := setupHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Request = httptest.NewRequest(http.MethodPatch, "/users/1/status", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("company_id", uuid.New().String())
		c.Params = gin.Params{{Key: "id", Value: "1"}}

		h.ToggleStatus(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUserHandler_ChangePassword(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success", func(t *testing.T) {
		userID := uuid.New().String()

		svc := &fakeUserService{
			ChangePasswordFn: func(ctx context.Context, cid, id, current, next string) error {
				assert.Equal(t, "oldpassword", current)
				assert.Equal(t, "newpassword1", next)
				return nil
			},
		}

		h := setupHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body := `{"current_password":"oldpassword","new_password":"newpassword1"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/users/"+userID+"/change-password", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("company_id", uuid.New().String())
		c.Params = gin.Params{{Key: "id", Value: userID}}

		h.ChangePassword(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wrong current password maps to 400", func(t *testing.T) {
		svc := &fakeUserService{
			ChangePasswordFn: func(ctx context.Context, cid, id, current, next string) error {
				return usererrors.ErrWrongPassword
			},
		}

		h := setupHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body := `{"current_password":"guess","new_password":"newpassword1"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/users/1/change-password", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("company_id", uuid.New().String())
		c.Params = gin.Params{{Key: "id", Value: "1"}}

		h.ChangePassword(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUserHandler_ForceResetPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success", func(t *testing.T) {
		userID := uuid.New().String()

		var called bool
		svc := &fakeUserService{
			ForceResetPasswordFn: func(ctx context.Context, cid, id, next string) error {
				called = true
				assert.Equal(t, userID, id)
				return nil
			},
		}

		h := setupHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body := `{"new_password":"newpassword1"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/users/"+userID+"/force-reset-password", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("company_id", uuid.New().String())
		c.Params = gin.Params{{Key: "id", Value: userID}}

		h.ForceResetPassword(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, called)
	})
}
