package user

import (
	"context"
	"time"

	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, companyID string, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAllByCompany(ctx context.Context, companyID string) ([]User, error)
	FindAllByCompanyWithRoles(ctx context.Context, companyID string) ([]UserWithRolesRow, error)
	Update(ctx context.Context, u *User) error
}

// UserWithRolesRow adalah hasil join user + employee + roles; RolesRaw berisi
// nama role yang digabung koma oleh string_agg.
type UserWithRolesRow struct {
	ID             string
	EmployeeID     string
	EmployeeNumber string
	Email          string
	FullName       string
	IsActive       bool
	RolesRaw       string
	CreatedAt      time.Time
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *repository) FindByID(ctx context.Context, companyID string, id string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Employee").
		First(&u, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	return &u, err
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]User, error) {
	var users []User

	err := r.db.WithContext(ctx).
		Joins("Employee").               // GORM otomatis join ke tabel employees
		Scopes(tenant.Scope(companyID)). // Menggunakan Scope untuk filter company_id
		Find(&users).Error

	return users, err
}

func (r *repository) FindAllByCompanyWithRoles(ctx context.Context, companyID string) ([]UserWithRolesRow, error) {
	var rows []UserWithRolesRow
	err := r.db.WithContext(ctx).
		Table("users u").
		Select(`u.id::text AS id, u.employee_id::text AS employee_id,
			e.employee_code AS employee_number, u.email, e.full_name,
			u.is_active, u.created_at,
			COALESCE(string_agg(ro.name, ',' ORDER BY ro.name), '') AS roles_raw`).
		Joins("JOIN employees e ON e.id = u.employee_id").
		Joins("LEFT JOIN employee_roles er ON er.employee_id = u.employee_id").
		Joins("LEFT JOIN roles ro ON ro.id = er.role_id").
		Where("u.company_id = ? AND u.deleted_at IS NULL", companyID).
		Group("u.id, u.employee_id, e.employee_code, u.email, e.full_name, u.is_active, u.created_at").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Save(u).Error
}
