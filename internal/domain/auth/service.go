package auth

import "context"

// Service issues and refreshes tokens. Registration and email flows live
// in the administration tooling, not here.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	LoginWithGoogle(ctx context.Context, code string) (LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (LoginResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}
