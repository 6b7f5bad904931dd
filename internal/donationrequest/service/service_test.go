package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/foodbridge/foodbridge/internal/clock"
	donationdomain "github.com/foodbridge/foodbridge/internal/donation/domain"
	donationrepository "github.com/foodbridge/foodbridge/internal/donation/repository"
	donationservice "github.com/foodbridge/foodbridge/internal/donation/service"
	"github.com/foodbridge/foodbridge/internal/donationrequest/domain"
	"github.com/foodbridge/foodbridge/internal/donationrequest/repository"
	"github.com/foodbridge/foodbridge/internal/observability/metrics"
	organizationrepository "github.com/foodbridge/foodbridge/internal/organization/repository"
	sqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type fixture struct {
	svc       domain.Service
	donations donationdomain.Service
	clk       *clock.FakeClock
	db        *gorm.DB
	donor     snowflake.ID
	recipient snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

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
	require.NoError(t, db.Exec(`CREATE TABLE donations (
		id INTEGER PRIMARY KEY,
		org_id INTEGER NOT NULL,
		food_type TEXT NOT NULL,
		food_name TEXT NOT NULL,
		quantity TEXT NOT NULL,
		quantity_unit TEXT NOT NULL,
		expiry_date DATETIME NOT NULL,
		pickup_address TEXT NOT NULL,
		contact_phone TEXT NOT NULL,
		refrigeration_required BOOLEAN NOT NULL DEFAULT FALSE,
		notes TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		requested_by INTEGER,
		requested_at DATETIME,
		metadata TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE donation_requests (
		id INTEGER PRIMARY KEY,
		org_id INTEGER NOT NULL,
		donation_id INTEGER NOT NULL,
		status TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		decided_by TEXT NOT NULL DEFAULT '',
		decided_at DATETIME,
		notification_shown BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error)
	t.Cleanup(func() {
		db.Exec("DROP TABLE donation_requests")
		db.Exec("DROP TABLE donations")
		db.Exec("DROP TABLE organizations")
	})

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	log := zaptest.NewLogger(t)
	m := metrics.NewNop()

	donations := donationservice.NewService(log, donationrepository.NewRepository(db), node, clk, m)
	orgs := organizationrepository.NewRepository(db)
	svc := NewService(log, repository.NewRepository(db), donations, orgs, node, clk, m)

	donor := node.Generate()
	recipient := node.Generate()
	for _, org := range []struct {
		id    snowflake.ID
		name  string
		email string
	}{
		{donor, "Green Grocer", "owner@greengrocer.example"},
		{recipient, "City Food Bank", "contact@cityfoodbank.org"},
	} {
		require.NoError(t, db.Exec(
			`INSERT INTO organizations (id, name, org_type, email, password_hash) VALUES (?, ?, ?, ?, ?)`,
			org.id, org.name, "NGO", org.email, "x",
		).Error)
	}

	return &fixture{svc: svc, donations: donations, clk: clk, db: db, donor: donor, recipient: recipient}
}

func (f *fixture) newDonation(t *testing.T) *donationdomain.Donation {
	t.Helper()
	donation, err := f.donations.Create(context.Background(), f.donor, donationdomain.CreateDonationRequest{
		FoodType:      "PRODUCE",
		FoodName:      "Apples",
		Quantity:      "20",
		QuantityUnit:  "kg",
		ExpiryDate:    f.clk.Now().Add(72 * time.Hour),
		PickupAddress: "12 Market St",
		ContactPhone:  "+1-555-0100",
	})
	require.NoError(t, err)
	return donation
}

func TestSubmit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	donation := f.newDonation(t)

	t.Run("own donation is rejected", func(t *testing.T) {
		_, err := f.svc.Submit(ctx, f.donor, donation.ID.String())
		assert.ErrorIs(t, err, donationdomain.ErrOwnDonation)
	})

	t.Run("submit reserves the donation", func(t *testing.T) {
		request, err := f.svc.Submit(ctx, f.recipient, donation.ID.String())
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, request.Status)
		assert.False(t, request.NotificationShown)

		got, err := f.donations.GetByID(ctx, donation.ID.String())
		require.NoError(t, err)
		assert.Equal(t, donationdomain.StatusReserved, got.Status)
	})

	t.Run("duplicate open request is rejected", func(t *testing.T) {
		_, err := f.svc.Submit(ctx, f.recipient, donation.ID.String())
		assert.ErrorIs(t, err, domain.ErrDuplicateOpen)
	})

	t.Run("reserved donation cannot be claimed by another org", func(t *testing.T) {
		other := snowflake.ID(987654)
		_, err := f.svc.Submit(ctx, other, donation.ID.String())
		assert.ErrorIs(t, err, donationdomain.ErrNotAvailable)
	})
}

func TestApprove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	donation := f.newDonation(t)

	request, err := f.svc.Submit(ctx, f.recipient, donation.ID.String())
	require.NoError(t, err)

	approved, err := f.svc.Approve(ctx, request.ID.String(), "admin-1", "pickup after 5pm")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, approved.Status)
	assert.Equal(t, "admin-1", approved.DecidedBy)
	require.NotNil(t, approved.DecidedAt)
	assert.Equal(t, "pickup after 5pm", approved.Notes)

	t.Run("decision is final", func(t *testing.T) {
		_, err := f.svc.Reject(ctx, request.ID.String(), "admin-2", "")
		assert.ErrorIs(t, err, domain.ErrAlreadyDecided)

		_, err = f.svc.Approve(ctx, request.ID.String(), "admin-2", "")
		assert.ErrorIs(t, err, domain.ErrAlreadyDecided)
	})

	t.Run("donation stays reserved", func(t *testing.T) {
		got, err := f.donations.GetByID(ctx, donation.ID.String())
		require.NoError(t, err)
		assert.Equal(t, donationdomain.StatusReserved, got.Status)
	})
}

func TestReject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	donation := f.newDonation(t)

	request, err := f.svc.Submit(ctx, f.recipient, donation.ID.String())
	require.NoError(t, err)

	rejected, err := f.svc.Reject(ctx, request.ID.String(), "admin-1", "too far away")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status)

	t.Run("rejection releases the donation", func(t *testing.T) {
		got, err := f.donations.GetByID(ctx, donation.ID.String())
		require.NoError(t, err)
		assert.Equal(t, donationdomain.StatusAvailable, got.Status)
		assert.Nil(t, got.RequestedBy)
	})

	t.Run("donation can be requested again", func(t *testing.T) {
		_, err := f.svc.Submit(ctx, f.recipient, donation.ID.String())
		assert.NoError(t, err)
	})
}

func TestMarkNotified(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	donation := f.newDonation(t)

	request, err := f.svc.Submit(ctx, f.recipient, donation.ID.String())
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, request.ID.String(), "admin-1", "")
	require.NoError(t, err)

	t.Run("only the requester may mark", func(t *testing.T) {
		err := f.svc.MarkNotified(ctx, f.donor, request.ID.String())
		assert.ErrorIs(t, err, domain.ErrNotRequester)
	})

	t.Run("marking is idempotent", func(t *testing.T) {
		require.NoError(t, f.svc.MarkNotified(ctx, f.recipient, request.ID.String()))
		require.NoError(t, f.svc.MarkNotified(ctx, f.recipient, request.ID.String()))

		got, err := f.svc.GetByID(ctx, request.ID.String())
		require.NoError(t, err)
		assert.True(t, got.NotificationShown)
	})
}

func TestListPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	donation := f.newDonation(t)

	request, err := f.svc.Submit(ctx, f.recipient, donation.ID.String())
	require.NoError(t, err)

	views, err := f.svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, request.ID, views[0].Request.ID)
	require.NotNil(t, views[0].Donation)
	assert.Equal(t, "Apples", views[0].Donation.FoodName)
	assert.Equal(t, "City Food Bank", views[0].OrganizationName)

	_, err = f.svc.Approve(ctx, request.ID.String(), "admin-1", "")
	require.NoError(t, err)

	views, err = f.svc.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestRequestsByOrg(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.newDonation(t)
	second := f.newDonation(t)

	r1, err := f.svc.Submit(ctx, f.recipient, first.ID.String())
	require.NoError(t, err)
	f.clk.Advance(time.Minute)
	r2, err := f.svc.Submit(ctx, f.recipient, second.ID.String())
	require.NoError(t, err)

	mine, err := f.svc.ListByOrg(ctx, f.recipient)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, r2.ID, mine[0].ID)
	assert.Equal(t, r1.ID, mine[1].ID)

	other, err := f.svc.ListByOrg(ctx, f.donor)
	require.NoError(t, err)
	assert.Empty(t, other)
}
