package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"zhiyi-cms/config"
	"zhiyi-cms/models"
	"zhiyi-cms/repositories"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"gopkg.in/go-playground/validator.v9"
	"gorm.io/gorm"
)

type AuthServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	db      *gorm.DB
	service AuthService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	config.SetJWT("test-secret", time.Hour)
	db := newTestDB(suite.T())
	suite.db = db
	suite.ctx = context.Background()
	suite.service = NewAuthService(repositories.NewUserRepository(db), validator.New(), zerolog.Nop())
}

func (suite *AuthServiceTestSuite) register() *models.AuthResponse {
	res, err := suite.service.Register(suite.ctx, models.RegisterRequest{Email: " Admin@Example.com ", Password: "secret1"})
	suite.Require().NoError(err)
	return res
}

func (suite *AuthServiceTestSuite) TestRegister_FirstAdminOnly() {
	exists, err := suite.service.AdminExists(suite.ctx)
	suite.Require().NoError(err)
	suite.False(exists)

	res := suite.register()
	suite.Equal("admin@example.com", res.User.Email)
	suite.Equal(models.RoleAdmin, res.User.Role)
	suite.NotEmpty(res.Token)

	exists, err = suite.service.AdminExists(suite.ctx)
	suite.Require().NoError(err)
	suite.True(exists)

	_, err = suite.service.Register(suite.ctx, models.RegisterRequest{Email: "second@example.com", Password: "secret2"})
	suite.ErrorIs(err, ErrAdminExists)
}

func (suite *AuthServiceTestSuite) TestRegister_ConcurrentRequestsCreateOneAdmin() {
	const attempts = 4

	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := suite.service.Register(suite.ctx, models.RegisterRequest{
				Email:    fmt.Sprintf("admin%d@example.com", i),
				Password: "secret1",
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		suite.ErrorIs(err, ErrAdminExists)
	}
	suite.Equal(1, succeeded)

	var admins int64
	suite.Require().NoError(suite.db.Model(&models.User{}).Count(&admins).Error)
	suite.Equal(int64(1), admins)
}

func (suite *AuthServiceTestSuite) TestRegister_PasswordTooLongForBcrypt() {
	_, err := suite.service.Register(suite.ctx, models.RegisterRequest{
		Email:    "admin@example.com",
		Password: strings.Repeat("x", 73),
	})
	validationErr, ok := err.(models.ErrorValidation)
	suite.Require().True(ok, "got %v", err)
	suite.Equal("password", validationErr.Field)

	exists, err := suite.service.AdminExists(suite.ctx)
	suite.Require().NoError(err)
	suite.False(exists)
}

func (suite *AuthServiceTestSuite) TestLogin() {
	registered := suite.register()

	res, err := suite.service.Login(suite.ctx, models.LoginRequest{Email: "admin@example.com", Password: "secret1"})
	suite.Require().NoError(err)
	suite.Equal(registered.User.ID, res.User.ID)

	token, err := jwt.Parse(res.Token, func(*jwt.Token) (interface{}, error) { return config.JWTSecret, nil })
	suite.Require().NoError(err)
	claims := token.Claims.(jwt.MapClaims)
	suite.Equal(registered.User.ID, claims["user_id"])
	suite.Equal("admin", claims["role"])

	_, err = suite.service.Login(suite.ctx, models.LoginRequest{Email: "admin@example.com", Password: "wrong"})
	suite.ErrorIs(err, models.ErrInvalidCredentials)

	_, err = suite.service.Login(suite.ctx, models.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	suite.ErrorIs(err, models.ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestChangePassword_FirstViolation() {
	user := suite.register().User

	tests := []struct {
		name  string
		req   models.ChangePasswordRequest
		field string
	}{
		{"everything empty", models.ChangePasswordRequest{}, "current_password"},
		{"short new password", models.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "abc", ConfirmPassword: "xyz"}, "new_password"},
		{"mismatch", models.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "secret2", ConfirmPassword: "secret3"}, "confirm_password"},
		{"unchanged", models.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "secret1", ConfirmPassword: "secret1"}, "new_password"},
		{"wrong current", models.ChangePasswordRequest{CurrentPassword: "nope123", NewPassword: "secret2", ConfirmPassword: "secret2"}, "current_password"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			err := suite.service.ChangePassword(suite.ctx, user.ID, tt.req)
			suite.Require().Error(err)
			validationErr, ok := err.(models.ErrorValidation)
			suite.Require().True(ok)
			suite.Equal(tt.field, validationErr.Field)
		})
	}
}

func (suite *AuthServiceTestSuite) TestChangePassword() {
	user := suite.register().User

	err := suite.service.ChangePassword(suite.ctx, user.ID, models.ChangePasswordRequest{
		CurrentPassword: "secret1",
		NewPassword:     "secret2",
		ConfirmPassword: "secret2",
	})
	suite.Require().NoError(err)

	_, err = suite.service.Login(suite.ctx, models.LoginRequest{Email: user.Email, Password: "secret1"})
	suite.ErrorIs(err, models.ErrInvalidCredentials)

	_, err = suite.service.Login(suite.ctx, models.LoginRequest{Email: user.Email, Password: "secret2"})
	suite.NoError(err)
}

func (suite *AuthServiceTestSuite) TestGetUserByID_Missing() {
	_, err := suite.service.GetUserByID(suite.ctx, "missing")
	suite.IsType(models.ErrorNotFound{}, err)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
