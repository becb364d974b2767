package models

import (
	"context"
	"fmt"
	"strings"

	"github.com/supabase-community/gotrue-go/types"
)

// AuthRepo is the identity provider boundary. The server never validates
// credentials itself; it forwards them and consumes the verified subject
// from the issued token.
type AuthRepo interface {
	SignUp(ctx context.Context, email, password string) (*types.SignupResponse, error)
	SignIn(ctx context.Context, email, password string) (*types.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*types.TokenResponse, error)
}

func (su *SupabaseRepo) SignUp(ctx context.Context, email, password string) (*types.SignupResponse, error) {
	res, err := su.supabaseClient.Auth.Signup(types.SignupRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		if strings.Contains(err.Error(), "User already Registered") ||
			strings.Contains(err.Error(), "unique constraint") {
			return nil, fmt.Errorf("email already in use: %w", ErrConflict)
		}
		return nil, fmt.Errorf("failed to sign up: %v", err)
	}
	return res, nil
}

func (su *SupabaseRepo) SignIn(ctx context.Context, email, password string) (*types.TokenResponse, error) {
	res, err := su.supabaseClient.Auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %v", err)
	}
	return res, nil
}

func (su *SupabaseRepo) Refresh(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	res, err := su.supabaseClient.Auth.RefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %v", err)
	}
	return res, nil
}
