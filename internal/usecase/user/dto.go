package user

import (
	"time"

	domain "github.com/otikanelson/Darb-Networks-sub001/internal/domain/user"
)

// ProfileFields are the optional attributes shared by create and update requests.
type ProfileFields struct {
	CompanyName        *string `validate:"omitempty,max=100"`
	PhoneNumber        *string `validate:"omitempty,max=20"`
	Address            *string `validate:"omitempty,max=255"`
	NationalID         *string `validate:"omitempty,max=50"`
	RegistrationNumber *string `validate:"omitempty,max=50"`
	BankAccountNumber  *string `validate:"omitempty,max=50"`
	BankName           *string `validate:"omitempty,max=100"`
	ProfileImage       *string `validate:"omitempty,max=255"`
}

func (p ProfileFields) toDomain() domain.Profile {
	return domain.Profile{
		CompanyName:        p.CompanyName,
		PhoneNumber:        p.PhoneNumber,
		Address:            p.Address,
		NationalID:         p.NationalID,
		RegistrationNumber: p.RegistrationNumber,
		BankAccountNumber:  p.BankAccountNumber,
		BankName:           p.BankName,
		ProfileImage:       p.ProfileImage,
	}
}

// CreateUserRequest represents the request payload for registering a new user.
// IsActive and IsVerified default to true and false when nil.
type CreateUserRequest struct {
	Email      string `validate:"required,email,max=100"`
	Password   string `validate:"required,min=8,password_bytes"`
	FullName   string `validate:"required,min=2,max=100"`
	UserType   string `validate:"required,user_type"`
	IsActive   *bool
	IsVerified *bool
	ProfileFields
}

// CreateUserResponse represents the response payload after creating a user.
type CreateUserResponse struct {
	ID int64
}

// UpdateUserRequest represents a profile edit. Empty or nil fields are left unchanged.
type UpdateUserRequest struct {
	ID       int64  `validate:"required,gt=0"`
	Email    string `validate:"omitempty,email,max=100"`
	FullName string `validate:"omitempty,min=2,max=100"`
	UserType string `validate:"omitempty,user_type"`
	IsActive *bool
	ProfileFields
}

// UpdateUserResponse represents the response payload after updating a user.
type UpdateUserResponse struct {
	ID int64
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID int64
}

// DeleteUserResponse represents the response payload after deleting a user.
type DeleteUserResponse struct {
	ID int64
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID int64
}

// GetUserResponse represents the response payload for user details.
type GetUserResponse struct {
	User
}

// ListUsersRequest represents the request payload for listing users.
type ListUsersRequest struct {
	Query    string
	UserType string `validate:"omitempty,user_type"`
	IsActive *bool
	Page     int64
	Limit    int64
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users      []User
	Pagination *domain.Pagination
}

// VerifyEmailRequest marks a user's email address as confirmed.
type VerifyEmailRequest struct {
	ID int64
}

// VerifyEmailResponse carries the recorded verification time.
type VerifyEmailResponse struct {
	ID         int64
	VerifiedAt time.Time
}

// RecordLoginRequest stores a successful login for a user.
type RecordLoginRequest struct {
	ID int64
}

// RecordLoginResponse carries the recorded login time.
type RecordLoginResponse struct {
	ID        int64
	LastLogin time.Time
}

// ChangePasswordRequest replaces a user's password after checking the current one.
type ChangePasswordRequest struct {
	ID              int64  `validate:"required,gt=0"`
	CurrentPassword string `validate:"required"`
	NewPassword     string `validate:"required,min=8,password_bytes,nefield=CurrentPassword"`
}

// ChangePasswordResponse represents the response payload after a password change.
type ChangePasswordResponse struct {
	ID int64
}

// User is the outward view of a user. It never carries the password.
type User struct {
	ID                 int64
	Email              string
	FullName           string
	UserType           string
	CompanyName        *string
	PhoneNumber        *string
	Address            *string
	NationalID         *string
	RegistrationNumber *string
	BankAccountNumber  *string
	BankName           *string
	ProfileImage       *string
	IsActive           bool
	IsVerified         bool
	EmailVerifiedAt    *time.Time
	LastLogin          *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func toUserDTO(u *domain.User) User {
	return User{
		ID:                 u.ID,
		Email:              u.Email,
		FullName:           u.FullName,
		UserType:           u.UserType.String(),
		CompanyName:        u.CompanyName,
		PhoneNumber:        u.PhoneNumber,
		Address:            u.Address,
		NationalID:         u.NationalID,
		RegistrationNumber: u.RegistrationNumber,
		BankAccountNumber:  u.BankAccountNumber,
		BankName:           u.BankName,
		ProfileImage:       u.ProfileImage,
		IsActive:           u.IsActive,
		IsVerified:         u.IsVerified,
		EmailVerifiedAt:    u.EmailVerifiedAt,
		LastLogin:          u.LastLogin,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}
