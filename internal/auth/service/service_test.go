package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/foodbridge/foodbridge/internal/auth/domain"
	"github.com/foodbridge/foodbridge/internal/auth/password"
	"github.com/foodbridge/foodbridge/internal/auth/repository"
	"github.com/foodbridge/foodbridge/internal/auth/token"
	"github.com/foodbridge/foodbridge/internal/clock"
	sqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE admins (
		id INTEGER PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at DATETIME
	)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE sessions (
		id INTEGER PRIMARY KEY,
		org_id INTEGER NOT NULL,
		session_token_hash TEXT NOT NULL UNIQUE,
		user_agent TEXT,
		ip_address TEXT,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME,
		created_at DATETIME,
		last_seen_at DATETIME
	)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE organizations (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT,
		org_type TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		phone TEXT,
		address TEXT,
		description TEXT,
		metadata TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error)

	t.Cleanup(func() {
		db.Exec("DROP TABLE organizations")
		db.Exec("DROP TABLE sessions")
		db.Exec("DROP TABLE admins")
	})

	return db
}

func newTestService(t *testing.T, db *gorm.DB, clk clock.Clock) domain.Service {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	issuer, err := token.NewIssuer("test-secret", clk.Now)
	require.NoError(t, err)

	repo, sessionRepo := repository.New(db)
	return New(zaptest.NewLogger(t), repo, sessionRepo, issuer, node, clk)
}

func seedOrg(t *testing.T, db *gorm.DB, email, pass string) snowflake.ID {
	t.Helper()

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	id := node.Generate()

	hash, err := password.Hash(pass)
	require.NoError(t, err)

	require.NoError(t, db.Exec(
		`INSERT INTO organizations (id, name, slug, org_type, email, password_hash) VALUES (?, ?, ?, ?, ?, ?)`,
		id, "Helping Hands", "helping-hands", "CHARITY", email, hash,
	).Error)
	return id
}

func TestAdminLogin(t *testing.T) {
	db := newTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, clk)
	ctx := context.Background()

	admin, err := svc.CreateAdmin(ctx, "admin", "changeme123")
	require.NoError(t, err)
	require.NotNil(t, admin)

	t.Run("duplicate username rejected", func(t *testing.T) {
		_, err := svc.CreateAdmin(ctx, "admin", "otherpassword")
		assert.ErrorIs(t, err, domain.ErrAdminExists)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.AdminLogin(ctx, domain.AdminLoginRequest{Username: "admin", Password: "nope1234"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown username maps to invalid credentials", func(t *testing.T) {
		_, err := svc.AdminLogin(ctx, domain.AdminLoginRequest{Username: "ghost", Password: "changeme123"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("valid login issues verifiable token", func(t *testing.T) {
		res, err := svc.AdminLogin(ctx, domain.AdminLoginRequest{Username: "admin", Password: "changeme123"})
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		assert.True(t, res.ExpiresAt.After(clk.Now()))

		claims, err := svc.VerifyAdminToken(ctx, res.Token)
		require.NoError(t, err)
		assert.Equal(t, "admin", claims.Username)
		assert.Equal(t, admin.ID.String(), claims.AdminID)
	})
}

func TestOrgLogin(t *testing.T) {
	db := newTestDB(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, clk)
	ctx := context.Background()

	orgID := seedOrg(t, db, "kitchen@example.org", "soupkitchen1")

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.OrgLogin(ctx, domain.OrgLoginRequest{Email: "kitchen@example.org", Password: "wrong-pass"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.OrgLogin(ctx, domain.OrgLoginRequest{Email: "nobody@example.org", Password: "soupkitchen1"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("email is case insensitive", func(t *testing.T) {
		res, err := svc.OrgLogin(ctx, domain.OrgLoginRequest{Email: "Kitchen@Example.org", Password: "soupkitchen1"})
		require.NoError(t, err)
		assert.Equal(t, orgID, res.OrgID)
	})

	t.Run("session round trip", func(t *testing.T) {
		res, err := svc.OrgLogin(ctx, domain.OrgLoginRequest{
			Email:     "kitchen@example.org",
			Password:  "soupkitchen1",
			UserAgent: "console/1.0",
			IPAddress: "127.0.0.1",
		})
		require.NoError(t, err)
		require.NotEmpty(t, res.RawToken)

		session, err := svc.Authenticate(ctx, res.RawToken)
		require.NoError(t, err)
		assert.Equal(t, orgID, session.OrgID)
		assert.Equal(t, "console/1.0", session.UserAgent)

		require.NoError(t, svc.Logout(ctx, res.RawToken))

		_, err = svc.Authenticate(ctx, res.RawToken)
		assert.ErrorIs(t, err, domain.ErrSessionRevoked)
	})

	t.Run("expired session", func(t *testing.T) {
		res, err := svc.OrgLogin(ctx, domain.OrgLoginRequest{Email: "kitchen@example.org", Password: "soupkitchen1"})
		require.NoError(t, err)

		clk.Advance(sessionTTL + time.Minute)
		_, err = svc.Authenticate(ctx, res.RawToken)
		assert.ErrorIs(t, err, domain.ErrSessionExpired)
	})
}
