/* Field Research Portal (FRP) is a component of the TerraLab Research Data Platform.
License:

	[PROPER LEGALESE HERE...]

	INTERIM LICENSE DESCRIPTION:
	In spirit, this license:
	1. Allows <Third Party> to use, modify, and / or distribute this software in perpetuity so long as <Third Party> understands:
		a. The software is provided as is without guarantee of additional support from TerraLab in any form.
		b. The software is provided as is without guarantee of exclusivity.

	2. Prohibits <Third Party> from taking any action which might interfere with TerraLab's right to use, modify and / or distribute this software in perpetuity.
*/

package pkg

import (
	"github.com/go-playground/validator/v10" // go get github.com/go-playground/validator/v10
	"github.com/google/uuid"                 // go get github.com/google/uuid
)

/* PORTAL ROLES - EACH ROLE IMPLIES THOSE BELOW IT */
const ROLE_SUPER = "super"
const ROLE_ADMIN = "admin"
const ROLE_OPERATOR = "operator"
const ROLE_VIEWER = "viewer"

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primary_key"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Email     string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Password  string    `gorm:"type:varchar(100);not null"`
	Role      string    `gorm:"type:varchar(50);default:'viewer';not null"`
	CreatedAt int64     `gorm:"autoCreateTime:milli"`
	UpdatedAt int64     `gorm:"autoUpdateTime:milli"`
}

type RegisterUserInput struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,min=8"`
}

type LoginUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	CreatedAt int64     `json:"created_at"`
	UpdatedAt int64     `json:"updated_at"`
}

func (user *User) FilterUserRecord() UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

/* ROLE CHECKS - USED BY HANDLERS AFTER FRPAuth HAS SET c.Locals("role") */
func UserRole_Super(role interface{}) bool {
	return role == ROLE_SUPER
}
func UserRole_Admin(role interface{}) bool {
	return role == ROLE_SUPER || role == ROLE_ADMIN
}
func UserRole_Operator(role interface{}) bool {
	return UserRole_Admin(role) || role == ROLE_OPERATOR
}
func UserRole_Viewer(role interface{}) bool {
	return UserRole_Operator(role) || role == ROLE_VIEWER
}

var validate = validator.New()

type ErrorResponse struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Value string `json:"value,omitempty"`
}

func ValidateStruct[T any](payload T) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(payload)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			var element ErrorResponse
			element.Field = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}

/* ONE-OFF FIELD VALIDATION, eg. CONTACT FORM EMAIL */
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
