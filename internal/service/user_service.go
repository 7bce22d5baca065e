package service

import (
	"context"
	"crypto/subtle"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"inkpress/internal/jobs"
	"inkpress/internal/models"
	"inkpress/internal/repository"
	"inkpress/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const (
	maxBioLen       = 500
	defaultUserPage = 20
	maxUserPage     = 100
)

type UserService struct {
	userRepo   repository.UserRepository
	tokens     *TokenManager
	queue      JobSubmitter
	adminToken string
	hashCost   int
}

type RegisterInput struct {
	Name             string
	Email            string
	Password         string
	AdminAccessToken string
}

type LoginInput struct {
	Email    string
	Password string
	IP       string
}

// AuthResult is returned by Register and Authenticate.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// UpdateProfileInput carries a partial profile update. Nil fields are left unchanged.
type UpdateProfileInput struct {
	UserID       uint
	Name         *string
	Email        *string
	Password     *string
	Bio          *string
	ProfileImage *string
}

func NewUserService(userRepo repository.UserRepository, tokens *TokenManager, queue JobSubmitter, adminAccessToken string) *UserService {
	return &UserService{
		userRepo:   userRepo,
		tokens:     tokens,
		queue:      queue,
		adminToken: adminAccessToken,
		hashCost:   bcrypt.DefaultCost,
	}
}

// grantsAdmin compares the supplied token with the configured one in constant
// time. An unset configured token never matches.
func (s *UserService) grantsAdmin(supplied string) bool {
	if s.adminToken == "" || supplied == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(s.adminToken)) == 1
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	if err := validation.ValidateName(name); err != nil {
		return nil, validationErr(err)
	}
	email := validation.NormalizeEmail(in.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, validationErr(err)
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, validationErr(err)
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("A user with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	role := models.RoleMember
	if s.grantsAdmin(in.AdminAccessToken) {
		role = models.RoleAdmin
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	submitJob(ctx, s.queue, jobs.EmailWelcome, jobs.UserPayload{UserID: user.ID})
	return &AuthResult{User: user, Token: token}, nil
}

// Authenticate checks credentials. Unknown emails and wrong passwords fail identically.
func (s *UserService) Authenticate(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := validation.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	submitJob(ctx, s.queue, jobs.EmailLoginAlert, jobs.LoginAlertPayload{
		UserID: user.ID,
		IP:     in.IP,
		At:     time.Now().UTC(),
	})
	return &AuthResult{User: user, Token: token}, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validation.ValidateName(name); err != nil {
			return nil, validationErr(err)
		}
		user.Name = name
	}
	if in.Email != nil {
		email := validation.NormalizeEmail(*in.Email)
		if err := validation.ValidateEmail(email); err != nil {
			return nil, validationErr(err)
		}
		if email != user.Email {
			other, err := s.userRepo.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != user.ID {
				return nil, models.NewConflictError("A user with this email already exists")
			}
			user.Email = email
		}
	}
	if in.Password != nil {
		if err := validation.ValidatePassword(*in.Password); err != nil {
			return nil, validationErr(err)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.hashCost)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		user.Password = string(hash)
	}
	if in.Bio != nil {
		if utf8.RuneCountInString(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = *in.Bio
	}
	if in.ProfileImage != nil {
		img := strings.TrimSpace(*in.ProfileImage)
		if img != "" && !isHTTPURL(img) {
			return nil, models.NewValidationError("profile_image must be a valid URL")
		}
		user.ProfileImage = img
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers pages through every account. Only admins may call it.
func (s *UserService) ListUsers(ctx context.Context, caller Actor, page, pageSize int) ([]models.User, error) {
	if !caller.IsAdmin() {
		return nil, models.NewForbiddenError("Admin access required")
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultUserPage
	}
	if pageSize > maxUserPage {
		pageSize = maxUserPage
	}
	offset, ok := pageOffset(page, pageSize)
	if !ok {
		return []models.User{}, nil
	}
	return s.userRepo.List(ctx, pageSize, offset)
}

// DeleteUser removes targetID with everything it owns. Users may delete
// themselves; admins may delete anyone.
func (s *UserService) DeleteUser(ctx context.Context, caller Actor, targetID uint) error {
	if !caller.canModify(targetID) {
		return models.NewForbiddenError("You can only delete your own account")
	}
	return s.userRepo.DeleteCascade(ctx, targetID)
}

func (s *UserService) SetRole(ctx context.Context, targetID uint, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, models.NewValidationError("role must be one of: member admin")
	}
	if err := s.userRepo.SetRole(ctx, targetID, role); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, targetID)
}

func (s *UserService) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	if !role.Valid() {
		return nil, models.NewValidationError("role must be one of: member admin")
	}
	return s.userRepo.ListByRole(ctx, role)
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
