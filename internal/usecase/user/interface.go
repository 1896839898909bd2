package user

import "context"

// UserUsecase defines the user account operations exposed to transports.
type UserUsecase interface {
	CreateUser(ctx context.Context, in CreateUserRequest) (*CreateUserResponse, error)
	UpdateUser(ctx context.Context, in UpdateUserRequest) (*UpdateUserResponse, error)
	DeleteUser(ctx context.Context, in DeleteUserRequest) (*DeleteUserResponse, error)
	GetUser(ctx context.Context, in GetUserRequest) (*GetUserResponse, error)
	ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error)
	VerifyEmail(ctx context.Context, in VerifyEmailRequest) (*VerifyEmailResponse, error)
	RecordLogin(ctx context.Context, in RecordLoginRequest) (*RecordLoginResponse, error)
	ChangePassword(ctx context.Context, in ChangePasswordRequest) (*ChangePasswordResponse, error)
}

var _ UserUsecase = (*Usecase)(nil)
