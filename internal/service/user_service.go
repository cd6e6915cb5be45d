package service

import (
	"errors"

	"go-printshop-ws/internal/model"
	"go-printshop-ws/internal/repository"
	"go-printshop-ws/pkg/validator"

	"github.com/google/uuid"
)

var (
	ErrEmailExists    = errors.New("email already exists")
	ErrUsernameExists = errors.New("username already exists")
)

type UserService interface {
	CreateUser(req *CreateUserRequest, creatorID string) (*model.User, error)
	UpdateUser(userID uuid.UUID, req *UpdateUserRequest, updaterID string) (*model.User, error)
	SetUserActive(userID uuid.UUID, active bool) error
	UpdateUserPrivileges(userID uuid.UUID, privilegeCodes []string, updaterID string) (*model.User, error)
	GetAllUsers() ([]model.UserResponse, error)
	GetUserByID(id uuid.UUID) (*model.UserResponse, error)
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullname" validate:"required"`
	Contact  string `json:"contact"`
	RoleID   uint   `json:"role_id" validate:"required"`
}

type UpdateUserRequest struct {
	Username string  `json:"username" validate:"required,min=3"`
	Email    string  `json:"email" validate:"required,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"` // Optional
	FullName string  `json:"fullname" validate:"required"`
	Contact  string  `json:"contact"`
	RoleID   uint    `json:"role_id" validate:"required"`
	IsActive *bool   `json:"is_active"`
}

type userService struct {
	userRepo      repository.UserRepository
	privilegeRepo repository.PrivilegeRepository
	roleRepo      repository.RoleRepository
}

func NewUserService(userRepo repository.UserRepository, privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository) UserService {
	return &userService{
		userRepo:      userRepo,
		privilegeRepo: privilegeRepo,
		roleRepo:      roleRepo,
	}
}

func (s *userService) CreateUser(req *CreateUserRequest, creatorID string) (*model.User, error) {
	// 1. Validate request
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errors.New(validator.FirstError(errs))
	}

	// 2. Check uniqueness
	if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
		return nil, ErrEmailExists
	}
	if existing, _ := s.userRepo.FindByUsername(req.Username); existing != nil {
		return nil, ErrUsernameExists
	}

	// 3. Validate role exists
	role, err := s.roleRepo.FindByID(req.RoleID)
	if err != nil {
		return nil, errors.New("role not found")
	}

	// 4. Create user
	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Contact:  req.Contact,
		RoleID:   &req.RoleID,
		IsActive: true,
	}
	user.CreatedBy = creatorID
	user.UpdatedBy = creatorID

	// 5. Set password
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	// 6. Auto-assign privileges based on role
	user.Privileges = role.Privileges

	// 7. Save to database
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userService) UpdateUser(userID uuid.UUID, req *UpdateUserRequest, updaterID string) (*model.User, error) {
	// 1. Validate request
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errors.New(validator.FirstError(errs))
	}

	// 2. Find existing user
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	// 3. Check if email/username are being changed to a taken value
	if req.Email != user.Email {
		if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
			return nil, ErrEmailExists
		}
	}
	if req.Username != user.Username {
		if existing, _ := s.userRepo.FindByUsername(req.Username); existing != nil {
			return nil, ErrUsernameExists
		}
	}

	// 4. Validate role exists
	role, err := s.roleRepo.FindByID(req.RoleID)
	if err != nil {
		return nil, errors.New("role not found")
	}

	// 5. Update user fields
	user.Username = req.Username
	user.Email = req.Email
	user.FullName = req.FullName
	user.Contact = req.Contact
	user.RoleID = &req.RoleID
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedBy = updaterID

	// 6. Update password if provided
	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, errors.New("failed to hash password")
		}
	}

	// 7. Auto-update privileges based on role
	user.Privileges = role.Privileges

	// 8. Save to database
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	// 9. Reload and return
	return s.userRepo.FindByID(userID)
}

// SetUserActive disables or re-enables an account. Accounts are never
// deleted; their jobs and payments stay in history.
func (s *userService) SetUserActive(userID uuid.UUID, active bool) error {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return ErrUserNotFound
	}
	return s.userRepo.SetActive(userID, active)
}

func (s *userService) UpdateUserPrivileges(userID uuid.UUID, privilegeCodes []string, updaterID string) (*model.User, error) {
	// 1. Find user
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	// 2. Get privileges
	privileges, err := s.privilegeRepo.FindByCodes(privilegeCodes)
	if err != nil {
		return nil, errors.New("failed to find privileges")
	}

	// 3. Update privileges
	if err := s.userRepo.UpdatePrivileges(userID, privileges); err != nil {
		return nil, err
	}

	// 4. Update audit field
	user.UpdatedBy = updaterID
	s.userRepo.Update(user)

	// 5. Reload user with updated privileges
	return s.userRepo.FindByID(userID)
}

func (s *userService) GetAllUsers() ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	response := user.ToResponse()
	return &response, nil
}
