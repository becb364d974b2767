package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/partylinehq/partyline/internal/helpers"
	"github.com/partylinehq/partyline/internal/models"
	"github.com/supabase-community/gotrue-go/types"
)

type UserService struct {
	authRepo models.AuthRepo
	userRepo models.UserRepo
	cld      *cloudinary.Cloudinary
}

func NewUserService(authRepo models.AuthRepo, userRepo models.UserRepo, cld *cloudinary.Cloudinary) *UserService {
	return &UserService{
		authRepo: authRepo,
		userRepo: userRepo,
		cld:      cld,
	}
}

func (us *UserService) SignUp(ctx context.Context, email, password string) (*types.SignupResponse, error) {
	if err := models.Validate.Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("%w: invalid email", models.ErrInvalidInput)
	}
	if !helpers.IsPasswordStrong(password) {
		return nil, fmt.Errorf("%w: password is not strong enough", models.ErrInvalidInput)
	}
	return us.authRepo.SignUp(ctx, email, password)
}

func (us *UserService) SignIn(ctx context.Context, email, password string) (*types.TokenResponse, error) {
	if err := models.Validate.Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("%w: invalid email", models.ErrInvalidInput)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", models.ErrInvalidInput)
	}
	return us.authRepo.SignIn(ctx, email, password)
}

func (us *UserService) RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: refresh token is required", models.ErrInvalidInput)
	}
	return us.authRepo.Refresh(ctx, refreshToken)
}

// RegisterProfile creates the datastore profile for a verified identity.
// Fails with a conflict when the identity already registered.
func (us *UserService) RegisterProfile(ctx context.Context, authID string, user *models.User) (*models.User, error) {
	if strings.TrimSpace(authID) == "" {
		return nil, fmt.Errorf("%w: missing auth id", models.ErrInvalidInput)
	}
	user.AuthID = authID
	user.IsHost = false
	if err := models.Validate.Struct(user); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	return us.userRepo.CreateUser(ctx, user)
}

func (us *UserService) GetByAuthID(ctx context.Context, authID string) (*models.User, error) {
	if authID == "" {
		return nil, fmt.Errorf("%w: missing auth id", models.ErrInvalidInput)
	}
	return us.userRepo.GetUserByAuthID(ctx, authID)
}

func (us *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid user id", models.ErrInvalidInput)
	}
	return us.userRepo.GetUserByID(ctx, id)
}

// UploadAvatar pushes the image to Cloudinary and stores the served URL on
// the profile.
func (us *UserService) UploadAvatar(ctx context.Context, userID int64, imageData string) (string, error) {
	if strings.TrimSpace(imageData) == "" {
		return "", fmt.Errorf("%w: image data is required", models.ErrInvalidInput)
	}
	url, err := helpers.UploadImage(ctx, us.cld, imageData, helpers.AvatarFolder)
	if err != nil {
		return "", err
	}
	if err := us.userRepo.SetAvatarURL(ctx, userID, url); err != nil {
		return "", err
	}
	return url, nil
}

// BecomeHost is the stubbed host-onboarding flow: it creates the Host
// capability record and flips the user's host flag. Payment verification
// would slot in ahead of the record creation.
func (us *UserService) BecomeHost(ctx context.Context, userID int64) (*models.Host, error) {
	if _, err := us.userRepo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	return us.userRepo.CreateHost(ctx, userID)
}
