package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/foodbridge/foodbridge/internal/auth/token"
)

type Service interface {
	CreateAdmin(ctx context.Context, username, password string) (*Admin, error)
	AdminLogin(ctx context.Context, req AdminLoginRequest) (*AdminLoginResult, error)
	VerifyAdminToken(ctx context.Context, rawToken string) (*token.AdminClaims, error)

	OrgLogin(ctx context.Context, req OrgLoginRequest) (*OrgLoginResult, error)
	Authenticate(ctx context.Context, rawToken string) (*Session, error)
	Logout(ctx context.Context, rawToken string) error
}

type AdminLoginRequest struct {
	Username string
	Password string
}

type AdminLoginResult struct {
	Token     string
	ExpiresAt time.Time
}

type OrgLoginRequest struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

type OrgLoginResult struct {
	OrgID     snowflake.ID
	RawToken  string
	ExpiresAt time.Time
	SessionID snowflake.ID
}
