package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domain "github.com/otikanelson/Darb-Networks-sub001/internal/domain/user"
	usecase "github.com/otikanelson/Darb-Networks-sub001/internal/usecase/user"
	apperrors "github.com/otikanelson/Darb-Networks-sub001/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockUserUsecase is a mock implementation of user.UserUsecase
type MockUserUsecase struct {
	mock.Mock
}

func (m *MockUserUsecase) CreateUser(ctx context.Context, req usecase.CreateUserRequest) (*usecase.CreateUserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.CreateUserResponse), args.Error(1)
}

func (m *MockUserUsecase) GetUser(ctx context.Context, req usecase.GetUserRequest) (*usecase.GetUserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.GetUserResponse), args.Error(1)
}

func (m *MockUserUsecase) UpdateUser(ctx context.Context, req usecase.UpdateUserRequest) (*usecase.UpdateUserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.UpdateUserResponse), args.Error(1)
}

func (m *MockUserUsecase) DeleteUser(ctx context.Context, req usecase.DeleteUserRequest) (*usecase.DeleteUserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.DeleteUserResponse), args.Error(1)
}

func (m *MockUserUsecase) ListUsers(ctx context.Context, req usecase.ListUsersRequest) (*usecase.ListUsersResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ListUsersResponse), args.Error(1)
}

func (m *MockUserUsecase) VerifyEmail(ctx context.Context, req usecase.VerifyEmailRequest) (*usecase.VerifyEmailResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.VerifyEmailResponse), args.Error(1)
}

func (m *MockUserUsecase) RecordLogin(ctx context.Context, req usecase.RecordLoginRequest) (*usecase.RecordLoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.RecordLoginResponse), args.Error(1)
}

func (m *MockUserUsecase) ChangePassword(ctx context.Context, req usecase.ChangePasswordRequest) (*usecase.ChangePasswordResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ChangePasswordResponse), args.Error(1)
}

var _ usecase.UserUsecase = (*MockUserUsecase)(nil)

func setupTest(t *testing.T) (*gin.Engine, *MockUserUsecase) {
	gin.SetMode(gin.TestMode)
	mockUsecase := new(MockUserUsecase)
	h := NewUserHandler(mockUsecase, zaptest.NewLogger(t))

	r := gin.New()
	users := r.Group("/v1/users")
	users.POST("", h.CreateUser)
	users.GET("", h.ListUsers)
	users.GET("/:id", h.GetUser)
	users.PUT("/:id", h.UpdateUser)
	users.DELETE("/:id", h.DeleteUser)
	users.POST("/:id/verify", h.VerifyEmail)
	users.POST("/:id/login", h.RecordLogin)
	users.PUT("/:id/password", h.ChangePassword)

	t.Cleanup(func() { mockUsecase.AssertExpectations(t) })
	return r, mockUsecase
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func strPtr(s string) *string { return &s }

func TestCreateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		body := map[string]any{
			"email":        "amara@darb.africa",
			"password":     "s3cretpass",
			"full_name":    "Amara Obi",
			"user_type":    "founder",
			"company_name": "Obi Agritech",
		}

		mockUsecase.On("CreateUser", mock.Anything, mock.MatchedBy(func(req usecase.CreateUserRequest) bool {
			return req.Email == "amara@darb.africa" &&
				req.UserType == "founder" &&
				req.IsActive == nil &&
				req.CompanyName != nil && *req.CompanyName == "Obi Agritech"
		})).Return(&usecase.CreateUserResponse{ID: 7}, nil)

		w := doRequest(r, http.MethodPost, "/v1/users", body)

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp IDResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(7), resp.ID)
	})

	t.Run("Invalid Request Body", func(t *testing.T) {
		r, _ := setupTest(t)

		w := doRequest(r, http.MethodPost, "/v1/users", "invalid json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation_error", decodeError(t, w).Error)
	})

	t.Run("Missing Required Field", func(t *testing.T) {
		r, _ := setupTest(t)

		w := doRequest(r, http.MethodPost, "/v1/users", map[string]any{"email": "a@b.co"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Usecase Validation Error", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("CreateUser", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewValidationError("UserType", "must be one of founder, investor, admin"))

		w := doRequest(r, http.MethodPost, "/v1/users", map[string]any{
			"email": "x@y.co", "password": "s3cretpass", "full_name": "X Y", "user_type": "guest",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "validation_error", resp.Error)
		assert.Contains(t, resp.Message, "UserType")
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("CreateUser", mock.Anything, mock.Anything).Return(nil, apperrors.ErrEmailAlreadyTaken)

		w := doRequest(r, http.MethodPost, "/v1/users", map[string]any{
			"email": "x@y.co", "password": "s3cretpass", "full_name": "X Y", "user_type": "investor",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "already_exists", decodeError(t, w).Error)
	})
}

func TestGetUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		created := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)

		mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{ID: 1}).Return(&usecase.GetUserResponse{
			User: usecase.User{
				ID:        1,
				Email:     "amara@darb.africa",
				FullName:  "Amara Obi",
				UserType:  "founder",
				BankName:  strPtr("Zenith"),
				IsActive:  true,
				CreatedAt: created,
				UpdatedAt: created,
			},
		}, nil)

		w := doRequest(r, http.MethodGet, "/v1/users/1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp UserResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "amara@darb.africa", resp.Email)
		assert.Equal(t, "founder", resp.UserType)
		require.NotNil(t, resp.BankName)
		assert.Equal(t, "Zenith", *resp.BankName)
		assert.True(t, resp.IsActive)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("Invalid ID", func(t *testing.T) {
		r, _ := setupTest(t)

		for _, path := range []string{"/v1/users/abc", "/v1/users/0", "/v1/users/-3"} {
			w := doRequest(r, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, path)
			assert.Equal(t, "invalid_id", decodeError(t, w).Error)
		}
	})

	t.Run("Not Found", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{ID: 999}).
			Return(nil, apperrors.NewNotFoundError("user", "user not found: id=999"))

		w := doRequest(r, http.MethodGet, "/v1/users/999", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "not_found", decodeError(t, w).Error)
	})

	t.Run("Internal Error Is Hidden", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{ID: 2}).
			Return(nil, apperrors.NewInternalError("failed to get user", errors.New("connection refused")))

		w := doRequest(r, http.MethodGet, "/v1/users/2", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "internal_error", resp.Error)
		assert.NotContains(t, resp.Message, "connection refused")
	})
}

func TestUpdateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("UpdateUser", mock.Anything, mock.MatchedBy(func(req usecase.UpdateUserRequest) bool {
			return req.ID == 3 && req.FullName == "Amara O." && req.PhoneNumber != nil && *req.PhoneNumber == "+2348000000000"
		})).Return(&usecase.UpdateUserResponse{ID: 3}, nil)

		w := doRequest(r, http.MethodPut, "/v1/users/3", map[string]any{
			"full_name":    "Amara O.",
			"phone_number": "+2348000000000",
		})

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Email Taken", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("UpdateUser", mock.Anything, mock.Anything).Return(nil, apperrors.ErrEmailAlreadyTaken)

		w := doRequest(r, http.MethodPut, "/v1/users/3", map[string]any{"email": "taken@darb.africa"})

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestDeleteUser(t *testing.T) {
	r, mockUsecase := setupTest(t)
	mockUsecase.On("DeleteUser", mock.Anything, usecase.DeleteUserRequest{ID: 4}).
		Return(&usecase.DeleteUserResponse{ID: 4}, nil)

	w := doRequest(r, http.MethodDelete, "/v1/users/4", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp IDResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(4), resp.ID)
}

func TestListUsers(t *testing.T) {
	t.Run("Filters And Pagination", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("ListUsers", mock.Anything, mock.MatchedBy(func(req usecase.ListUsersRequest) bool {
			return req.Query == "obi" &&
				req.UserType == "investor" &&
				req.IsActive != nil && !*req.IsActive &&
				req.Page == 2 && req.Limit == 5
		})).Return(&usecase.ListUsersResponse{
			Users: []usecase.User{
				{ID: 6, Email: "a@darb.africa", UserType: "investor"},
			},
			Pagination: domain.NewPagination(6, 2, 5),
		}, nil)

		w := doRequest(r, http.MethodGet, "/v1/users?query=obi&user_type=investor&is_active=false&page=2&limit=5", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp ListUsersResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Users, 1)
		require.NotNil(t, resp.Pagination)
		assert.Equal(t, int64(6), resp.Pagination.Total)
		assert.Equal(t, int64(2), resp.Pagination.TotalPages)
	})

	t.Run("Defaults", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("ListUsers", mock.Anything, usecase.ListUsersRequest{Page: 1, Limit: 10}).
			Return(&usecase.ListUsersResponse{Users: []usecase.User{}, Pagination: domain.NewPagination(0, 1, 10)}, nil)

		w := doRequest(r, http.MethodGet, "/v1/users?page=zero", nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Invalid IsActive", func(t *testing.T) {
		r, _ := setupTest(t)

		w := doRequest(r, http.MethodGet, "/v1/users?is_active=maybe", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestVerifyEmail(t *testing.T) {
	r, mockUsecase := setupTest(t)
	at := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	mockUsecase.On("VerifyEmail", mock.Anything, usecase.VerifyEmailRequest{ID: 5}).
		Return(&usecase.VerifyEmailResponse{ID: 5, VerifiedAt: at}, nil)

	w := doRequest(r, http.MethodPost, "/v1/users/5/verify", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp VerifyEmailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, at.Equal(resp.EmailVerifiedAt))
}

func TestRecordLogin(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		at := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
		mockUsecase.On("RecordLogin", mock.Anything, usecase.RecordLoginRequest{ID: 5}).
			Return(&usecase.RecordLoginResponse{ID: 5, LastLogin: at}, nil)

		w := doRequest(r, http.MethodPost, "/v1/users/5/login", nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Inactive User", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("RecordLogin", mock.Anything, usecase.RecordLoginRequest{ID: 8}).
			Return(nil, apperrors.NewValidationError("id", "user is not active"))

		w := doRequest(r, http.MethodPost, "/v1/users/8/login", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeError(t, w).Message, "not active")
	})
}

func TestChangePassword(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("ChangePassword", mock.Anything, usecase.ChangePasswordRequest{
			ID: 5, CurrentPassword: "old-password", NewPassword: "new-password",
		}).Return(&usecase.ChangePasswordResponse{ID: 5}, nil)

		w := doRequest(r, http.MethodPut, "/v1/users/5/password", map[string]any{
			"current_password": "old-password",
			"new_password":     "new-password",
		})

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Missing Fields", func(t *testing.T) {
		r, _ := setupTest(t)

		w := doRequest(r, http.MethodPut, "/v1/users/5/password", map[string]any{"new_password": "x"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
