package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"zhiyi-cms/config"
	"zhiyi-cms/models"
	"zhiyi-cms/repositories"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/go-playground/validator.v9"
	"gorm.io/gorm"
)

const minPasswordLength = 6

var ErrAdminExists = models.ErrorConflict{Message: "an admin account already exists"}

type AuthService interface {
	AdminExists(ctx context.Context) (bool, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) error
}

type authService struct {
	userRepo repositories.UserRepository
	validate *validator.Validate
	log      zerolog.Logger
}

func NewAuthService(userRepo repositories.UserRepository, validate *validator.Validate, log zerolog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		validate: validate,
		log:      log.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) AdminExists(ctx context.Context) (bool, error) {
	count, err := s.userRepo.CountAdmins(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Register creates the first admin. Once one exists, registration is closed.
func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	exists, err := s.AdminExists(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAdminExists
	}

	hashedPassword, err := hashPassword("password", req.Password)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to hash password")
		return nil, err
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: hashedPassword,
		Role:     models.RoleAdmin,
	}

	if err := s.userRepo.CreateFirstAdmin(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrAdminExists) {
			return nil, ErrAdminExists
		}
		s.log.Error().Err(err).Msg("Failed to create admin")
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("Admin account registered")
	return s.respond(user)
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.log.Warn().Str("user_id", user.ID).Msg("Login rejected")
		return nil, models.ErrInvalidCredentials
	}

	return s.respond(user)
}

func (s *authService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrorNotFound{Message: "user not found"}
	}
	return user, err
}

// ChangePassword reports the first violated rule only, then checks the current password.
func (s *authService) ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) error {
	if err := validatePasswordChange(req); err != nil {
		return err
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return models.ErrorValidation{Field: "current_password", Message: "current password is incorrect"}
	}

	hashedPassword, err := hashPassword("new_password", req.NewPassword)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to hash password")
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to update password")
		return err
	}

	s.log.Info().Str("user_id", user.ID).Msg("Password changed")
	return nil
}

func validatePasswordChange(req models.ChangePasswordRequest) error {
	return firstViolation([]fieldCheck{
		{"current_password", req.CurrentPassword, []validation.Rule{
			validation.Required.Error("current password is required"),
		}},
		{"new_password", req.NewPassword, []validation.Rule{
			validation.Required.Error("new password is required"),
			validation.RuneLength(minPasswordLength, 0).Error("new password must be at least 6 characters"),
		}},
		{"confirm_password", req.ConfirmPassword, []validation.Rule{
			validation.By(func(interface{}) error {
				if req.ConfirmPassword != req.NewPassword {
					return errors.New("new password and confirmation do not match")
				}
				return nil
			}),
		}},
		{"new_password", req.NewPassword, []validation.Rule{
			validation.By(func(interface{}) error {
				if req.NewPassword == req.CurrentPassword {
					return errors.New("new password must differ from the current password")
				}
				return nil
			}),
		}},
	})
}

func (s *authService) respond(user *models.User) (*models.AuthResponse, error) {
	token, err := s.generateToken(user)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to sign token")
		return nil, models.ErrorInternalServer{Message: "failed to issue session token"}
	}

	return &models.AuthResponse{
		Token: token,
		User:  *user,
	}, nil
}

func (s *authService) generateToken(user *models.User) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     now.Add(config.JWTExpiration).Unix(),
		"iat":     now.Unix(),
		"nbf":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(config.JWTSecret)
	if err != nil {
		return "", err
	}

	return signedToken, nil
}

// hashPassword rejects input bcrypt cannot take as a validation error on field.
// Any other bcrypt failure is an ErrorInternalServer.
func hashPassword(field, password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", models.ErrorValidation{Field: field, Message: "password must be at most 72 bytes"}
	}
	if err != nil {
		return "", models.ErrorInternalServer{Message: "failed to secure password"}
	}
	return string(hashed), nil
}
