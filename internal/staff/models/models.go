package models

import (
	"strings"
	"time"

	id "schemeportal/pkg/domain"
	"schemeportal/pkg/platform/validation"
	pkgvalidation "schemeportal/pkg/validation"
)

// Member is a staff profile for an identity that already exists upstream.
// Users without a profile are citizens.
type Member struct {
	UserID    id.UserID `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      id.Role   `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Privileged reports whether changing this role needs a super admin.
func Privileged(r id.Role) bool {
	return r.AtLeast(id.RoleAdmin)
}

type UpsertRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"notblank"`
	Role     string `json:"role" validate:"required,oneof=public_user analyst admin super_admin"`
}

func (r *UpsertRequest) Sanitize() {
	r.Email = strings.TrimSpace(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	r.Role = strings.TrimSpace(r.Role)
}

func (r *UpsertRequest) Normalize() {
	r.Email = strings.ToLower(r.Email)
	r.Role = strings.ToLower(r.Role)
}

func (r *UpsertRequest) Validate() error {
	if err := validation.CheckStringLength("email", r.Email, validation.MaxEmailLength); err != nil {
		return err
	}
	if err := validation.CheckStringLength("full_name", r.FullName, validation.MaxFullNameLength); err != nil {
		return err
	}
	return pkgvalidation.Validate(r)
}

type RoleRequest struct {
	Role string `json:"role" validate:"required,oneof=public_user analyst admin super_admin"`
}

func (r *RoleRequest) Normalize() {
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
}

func (r *RoleRequest) Validate() error {
	return pkgvalidation.Validate(r)
}

type ActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

func (r *ActiveRequest) Validate() error {
	return pkgvalidation.Validate(r)
}
