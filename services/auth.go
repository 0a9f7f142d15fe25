package services

import (
	"errors"
	"net/http"
	"time"

	"github.com/famquest/famquest_api/dto"
	"github.com/famquest/famquest_api/model"
	"github.com/famquest/famquest_api/shared"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	context.DefaultService

	sqlSvc    *PostgresService
	jwtSvc    *JWTService
	rewardSvc *RewardService
}

const AUTH_SVC = "auth_svc"

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	svc.rewardSvc = svc.Service(REWARD_SVC).(*RewardService)
	return nil
}

func (svc *AuthService) Register(req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	available, err := svc.sqlSvc.Users().IsUsernameAvailable(req.Username)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to check username")
	}
	if !available {
		return nil, shared.NewConflictError(nil, "Username is already taken")
	}

	available, err = svc.sqlSvc.Users().IsEmailAvailable(req.Email)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to check email")
	}
	if !available {
		return nil, shared.NewConflictError(nil, "Email is already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to hash password")
	}

	role := req.Role
	if role == "" {
		role = model.RoleChild
	}

	var birthday *time.Time
	if req.Birthday != "" {
		parsed, err := time.Parse("2006-01-02", req.Birthday)
		if err != nil {
			return nil, shared.NewBadRequestError(err, "Birthday must be YYYY-MM-DD")
		}
		birthday = &parsed
	}

	user := &model.User{
		Email:    req.Email,
		Username: req.Username,
		Password: string(hashedPassword),
		Role:     role,
		Birthday: birthday,
		IsActive: true,
	}
	if err := svc.sqlSvc.Users().CreateUser(user); err != nil {
		return nil, shared.NewInternalError(err, "Failed to create user")
	}

	if role == model.RoleChild {
		if err := svc.rewardSvc.InitializeAvatar(user.ID); err != nil {
			log.WithError(err).WithField("user_id", user.ID).Error("Failed to initialize avatar")
		}
	}

	return &dto.RegisterResponse{
		UserID:  user.ID,
		Message: "Registration successful",
	}, nil
}

func (svc *AuthService) Login(req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := svc.sqlSvc.Users().GetUserByEmailOrUsername(req.EmailOrUsername)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewUnauthorizedError(nil, "Invalid credentials")
		}
		return nil, shared.NewInternalError(err, "Failed to look up user")
	}

	if !user.IsActive {
		return nil, shared.NewForbiddenError(nil, "Account is disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, shared.NewUnauthorizedError(nil, "Invalid credentials")
	}

	tokens, err := svc.jwtSvc.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to issue tokens")
	}

	if err := svc.sqlSvc.Users().UpdateLastLogin(user.ID); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("Failed to record last login")
	}

	return &dto.LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
		User:         svc.toUserInfo(user),
	}, nil
}

func (svc *AuthService) RefreshToken(req dto.RefreshTokenRequest) (*dto.LoginResponse, error) {
	claims, err := svc.jwtSvc.VerifyJWTToken(req.RefreshToken)
	if err != nil {
		return nil, shared.NewUnauthorizedError(err, "Invalid refresh token")
	}

	user, err := svc.sqlSvc.Users().GetUser(claims.UserID)
	if err != nil {
		return nil, shared.NewUnauthorizedError(err, "Unknown user")
	}
	if !user.IsActive {
		return nil, shared.NewForbiddenError(nil, "Account is disabled")
	}

	tokens, err := svc.jwtSvc.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to issue tokens")
	}

	return &dto.LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
		User:         svc.toUserInfo(user),
	}, nil
}

func (svc *AuthService) GetProfile(userID string) (*dto.UserInfo, error) {
	user, err := svc.sqlSvc.Users().GetUser(userID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "User not found")
	}
	info := svc.toUserInfo(user)
	return &info, nil
}

func (svc *AuthService) toUserInfo(user *model.User) dto.UserInfo {
	return dto.UserInfo{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Role:        user.Role,
		FamilyID:    user.FamilyID,
		HonorPoints: user.HonorPoints,
		Birthday:    user.Birthday,
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}

// ==================== MIDDLEWARE ====================

func (svc *AuthService) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := svc.jwtSvc.ExtractTokenFromHeader(c.Get("Authorization"))
		if err != nil {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", err.Error())
		}

		claims, err := svc.jwtSvc.VerifyJWTToken(token)
		if err != nil {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", "Invalid JWT token")
		}
		if claims.UserID == "" {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", "Invalid user ID in token")
		}

		c.Locals(shared.UserID, claims.UserID)
		c.Locals(shared.UserRole, claims.Role)
		return c.Next()
	}
}

// RequireRole gates a route to one role, admin always passes.
func (svc *AuthService) RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		current, _ := c.Locals(shared.UserRole).(string)
		if current != role && current != model.RoleAdmin {
			return shared.ResponseJSON(c, http.StatusForbidden, "Forbidden", "Insufficient role")
		}
		return c.Next()
	}
}
