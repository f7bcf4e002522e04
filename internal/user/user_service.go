package user

import (
	"context"
	"errors"
	"strings"

	"go-payroll/internal/employee"
	employeeerrors "go-payroll/internal/employee/errors"
	"go-payroll/internal/shared/contextutil"
	usererrors "go-payroll/internal/user/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock

// Service mengelola akun operator payroll dalam satu company: daftar akun,
// status aktif, dan siklus password. Pembuatan akun selalu divalidasi ke
// record employee supaya tidak ada akun yatim tanpa karyawan.
type Service interface {
	GetAll(ctx context.Context, companyID string) ([]UserResponse, error)
	GetAllWithRoles(ctx context.Context, companyID string) ([]UserWithRolesResponse, error)
	GetByID(ctx context.Context, companyID, id string) (UserResponse, error)

	Create(ctx context.Context, companyID string, req CreateUserRequest) (UserResponse, error)
	ToggleStatus(ctx context.Context, companyID string, id string, isActive bool) error

	ChangePassword(ctx context.Context, companyID, userID, currentPassword, newPassword string) error
	ResetPassword(ctx context.Context, companyID, userID, newPassword string) error
	ForceResetPassword(ctx context.Context, companyID, userID, newPassword string) error
}

type service struct {
	repo      Repository
	employees employee.Repository
}

func NewService(repo Repository, employees employee.Repository) Service {
	return &service{
		repo:      repo,
		employees: employees,
	}
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]UserResponse, error) {
	users, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = mapToResponse(u)
	}

	return resp, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (UserResponse, error) {
	u, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return UserResponse{}, usererrors.ErrUserNotFound
	}

	return mapToResponse(*u), nil
}

func (s *service) GetAllWithRoles(ctx context.Context, companyID string) ([]UserWithRolesResponse, error) {
	users, err := s.repo.FindAllByCompanyWithRoles(ctx, companyID)
	if err != nil {
		return nil, err
	}

	resp := make([]UserWithRolesResponse, 0, len(users))
	for _, u := range users {
		roles := []string{}
		if strings.TrimSpace(u.RolesRaw) != "" {
			roles = strings.Split(u.RolesRaw, ",")
		}

		resp = append(resp, UserWithRolesResponse{
			ID:             u.ID,
			EmployeeID:     u.EmployeeID,
			EmployeeNumber: u.EmployeeNumber,
			Email:          u.Email,
			FullName:       u.FullName,
			IsActive:       u.IsActive,
			Roles:          roles,
			CreatedAt:      u.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return resp, nil
}

// Create membuat akun operator untuk karyawan di company yang sama. Nama akun
// mengikuti nama karyawan, bukan input bebas dari klien.
func (s *service) Create(ctx context.Context, companyID string, req CreateUserRequest) (UserResponse, error) {
	l := contextutil.GetLogger(ctx, nil)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return UserResponse{}, usererrors.ErrInvalidCompanyID
	}

	empl, err := s.employees.FindByIDAndCompany(ctx, companyID, req.EmployeeID)
	if err != nil {
		return UserResponse{}, employeeerrors.ErrEmployeeNotFound
	}
	if !empl.IsActive {
		// Karyawan nonaktif tidak boleh dapat akun baru.
		return UserResponse{}, employeeerrors.ErrEmployeeNotFound
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		l.Error("failed to hash password", zap.Error(err))
		return UserResponse{}, err
	}

	u := &User{
		CompanyID:  companyUUID,
		EmployeeID: empl.ID,
		Name:       empl.FullName,
		Role:       "EMPLOYEE",
		Email:      req.Email,
		Password:   string(hashedPassword),
		IsActive:   true,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if isUniqueUserViolation(err) {
			return UserResponse{}, usererrors.ErrUserAlreadyExists
		}
		l.Error("failed to create operator account", zap.Error(err))
		return UserResponse{}, err
	}

	l.Info("operator account created",
		zap.String("email", u.Email),
		zap.String("employee_code", empl.EmployeeCode),
	)
	resp := mapToResponse(*u)
	resp.FullName = empl.FullName
	return resp, nil
}

func (s *service) ToggleStatus(ctx context.Context, companyID string, id string, isActive bool) error {
	l := contextutil.GetLogger(ctx, nil)

	u, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return usererrors.ErrUserNotFound
	}

	u.IsActive = isActive

	if err := s.repo.Update(ctx, u); err != nil {
		l.Error("failed to update operator status", zap.Error(err))
		return err
	}

	return nil
}

func (s *service) ChangePassword(ctx context.Context, companyID, userID, currentPassword, newPassword string) error {
	l := contextutil.GetLogger(ctx, nil)

	u, err := s.repo.FindByID(ctx, companyID, userID)
	if err != nil {
		return usererrors.ErrUserNotFound
	}
	if !u.IsActive {
		return usererrors.ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(currentPassword)); err != nil {
		return usererrors.ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		l.Error("failed to hash new password", zap.Error(err))
		return err
	}

	u.Password = string(hashed)
	return s.repo.Update(ctx, u)
}

func (s *service) ResetPassword(ctx context.Context, companyID, userID, newPassword string) error {
	u, err := s.repo.FindByID(ctx, companyID, userID)
	if err != nil {
		return usererrors.ErrUserNotFound
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	u.Password = string(hashed)
	return s.repo.Update(ctx, u)
}

// ForceResetPassword dipakai admin tanpa password lama; beda dengan
// ResetPassword hanya di otorisasi route-nya, bukan di sini.
func (s *service) ForceResetPassword(ctx context.Context, companyID, userID, newPassword string) error {
	return s.ResetPassword(ctx, companyID, userID, newPassword)
}

func mapToResponse(u User) UserResponse {
	resp := UserResponse{
		ID:         u.ID.String(),
		EmployeeID: u.EmployeeID.String(),
		Email:      u.Email,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if u.Employee != nil {
		resp.FullName = u.Employee.FullName
	}
	return resp
}

func isUniqueUserViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
