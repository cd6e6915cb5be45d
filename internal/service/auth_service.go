package service

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"go-printshop-ws/internal/model"
	"go-printshop-ws/internal/repository"
	"go-printshop-ws/internal/ws"
	"go-printshop-ws/pkg/jwt"
	"go-printshop-ws/pkg/validator"
)

var (
	ErrInvalidCredentials = errors.New("invalid username/email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSessionTimeout     = errors.New("session expired due to inactivity")
)

type AuthService interface {
	Login(identifier, password string) (*LoginResponse, error)
	Register(req *RegisterRequest) (*model.User, error)
	ResetPassword(email, oldPassword, newPassword string) error
	Logout(userID uuid.UUID) error
	ValidateToken(tokenString string) (*TokenValidationResponse, error)
	Heartbeat(userID uuid.UUID) error
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"` // Flat privileges array for easy checking
}

type TokenValidationResponse struct {
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullname" validate:"required"`
	Contact  string `json:"contact"`
}

type authService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	wsHub    *ws.Hub
}

func NewAuthService(userRepo repository.UserRepository, roleRepo repository.RoleRepository, hub *ws.Hub) AuthService {
	return &authService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		wsHub:    hub,
	}
}

// Login accepts the account email or username interchangeably.
func (s *authService) Login(identifier, password string) (*LoginResponse, error) {
	// 1. Find user by email, fall back to username
	user, err := s.userRepo.FindByEmail(identifier)
	if err != nil {
		user, err = s.userRepo.FindByUsername(identifier)
		if err != nil {
			return nil, ErrInvalidCredentials
		}
	}

	// 2. Check if user is active
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 3. Verify password
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// 4. Get role code
	roleCode := ""
	if user.Role != nil {
		roleCode = user.Role.Code
	}

	// 5. Single Session: Generate New Token Version
	newTokenVersion := uuid.New().String()
	now := time.Now()
	user.TokenVersion = newTokenVersion
	user.LastSeenAt = &now

	if err := s.userRepo.Update(user); err != nil {
		return nil, errors.New("failed to update session")
	}

	// 6. Generate JWT token with TokenVersion
	token, err := jwt.GenerateToken(user.ID, user.Username, user.Email, user.FullName, roleCode, user.GetPrivilegeCodes(), newTokenVersion)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

// Register creates a customer account with the default customer privileges.
// Staff accounts are created through user management instead.
func (s *authService) Register(req *RegisterRequest) (*model.User, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errors.New(validator.FirstError(errs))
	}

	if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
		return nil, errors.New("email already exists")
	}
	if existing, _ := s.userRepo.FindByUsername(req.Username); existing != nil {
		return nil, errors.New("username already exists")
	}

	role, err := s.roleRepo.FindByCode(model.RoleCustomer)
	if err != nil {
		return nil, errors.New("customer role not seeded")
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Contact:  req.Contact,
		RoleID:   &role.ID,
		IsActive: true,
	}
	user.CreatedBy = "self-registration"
	user.UpdatedBy = "self-registration"
	user.Privileges = role.Privileges

	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *authService) ResetPassword(email, oldPassword, newPassword string) error {
	// 1. Find user by email
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return ErrUserNotFound
	}

	// 2. Verify old password
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}

	// 3. Set new password
	if err := user.SetPassword(newPassword); err != nil {
		return errors.New("failed to hash new password")
	}

	// 4. Update in database
	return s.userRepo.UpdatePassword(user.ID, user.Password)
}

// Logout rotates the token version so the current JWT stops validating.
func (s *authService) Logout(userID uuid.UUID) error {
	return s.userRepo.UpdateTokenVersion(userID, uuid.New().String())
}

func (s *authService) ValidateToken(tokenString string) (*TokenValidationResponse, error) {
	// 1. Validate JWT token
	claims, err := jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	// 2. Find user by ID from token claims
	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	// 3. Check if user is still active
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 4. Check against DB for strict session (TokenVersion)
	if user.TokenVersion != claims.TokenVersion {
		return nil, errors.New("session expired (logged in on another device)")
	}

	// 5. Check Inactivity (LastSeenAt > 5 Minutes)
	if user.LastSeenAt == nil || time.Since(*user.LastSeenAt) > 5*time.Minute {
		return nil, ErrSessionTimeout
	}

	// 6. Return user info with role and privileges
	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) Heartbeat(userID uuid.UUID) error {
	// 1. Update timestamp di DB
	if err := s.userRepo.UpdateLastSeen(userID); err != nil {
		return err
	}

	// 2. Broadcast status "online" ke semua client
	go func() {
		payload := map[string]interface{}{
			"type":         "user_status_update",
			"user_id":      userID.String(),
			"status":       "online",
			"last_seen_at": time.Now(),
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()

	return nil
}
