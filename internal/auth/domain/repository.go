package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// OrgCredentials is the minimum identity needed to verify a login.
type OrgCredentials struct {
	OrgID        snowflake.ID
	PasswordHash string
}

type Repository interface {
	FindAdminByUsername(ctx context.Context, username string) (*Admin, error)
	CreateAdmin(ctx context.Context, admin Admin) error
	FindOrgCredentialsByEmail(ctx context.Context, email string) (*OrgCredentials, error)
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	RevokeSession(ctx context.Context, sessionID snowflake.ID, at time.Time) error
	UpdateLastSeen(ctx context.Context, sessionID snowflake.ID, at time.Time) error
}
