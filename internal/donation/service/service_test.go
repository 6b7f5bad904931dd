package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/foodbridge/foodbridge/internal/clock"
	"github.com/foodbridge/foodbridge/internal/donation/domain"
	"github.com/foodbridge/foodbridge/internal/donation/repository"
	"github.com/foodbridge/foodbridge/internal/observability/metrics"
	"github.com/foodbridge/foodbridge/pkg/db/pagination"
	sqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

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
	t.Cleanup(func() { db.Exec("DROP TABLE donations") })

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := NewService(zaptest.NewLogger(t), repository.NewRepository(db), node, clk, metrics.NewNop())
	return svc, clk
}

func validDonation(clk clock.Clock) domain.CreateDonationRequest {
	return domain.CreateDonationRequest{
		FoodType:      "PRODUCE",
		FoodName:      "Apples",
		Quantity:      "20",
		QuantityUnit:  "kg",
		ExpiryDate:    clk.Now().Add(72 * time.Hour),
		PickupAddress: "12 Market St",
		ContactPhone:  "+1-555-0100",
	}
}

func TestCreateDonation(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()
	donor := snowflake.ID(100)

	t.Run("missing required field", func(t *testing.T) {
		req := validDonation(clk)
		req.FoodName = " "
		_, err := svc.Create(ctx, donor, req)
		assert.ErrorIs(t, err, domain.ErrMissingField)
	})

	t.Run("expiry in the past", func(t *testing.T) {
		req := validDonation(clk)
		req.ExpiryDate = clk.Now().Add(-time.Hour)
		_, err := svc.Create(ctx, donor, req)
		assert.ErrorIs(t, err, domain.ErrExpiryInPast)
	})

	t.Run("created as available", func(t *testing.T) {
		donation, err := svc.Create(ctx, donor, validDonation(clk))
		require.NoError(t, err)
		assert.Equal(t, domain.StatusAvailable, donation.Status)
		assert.Equal(t, donor, donation.OrgID)
		assert.Nil(t, donation.RequestedBy)
	})
}

func TestBrowseExcludesOwnDonations(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()
	donor := snowflake.ID(100)
	other := snowflake.ID(200)

	mine, err := svc.Create(ctx, donor, validDonation(clk))
	require.NoError(t, err)
	theirs, err := svc.Create(ctx, other, validDonation(clk))
	require.NoError(t, err)

	visible, err := svc.ListAvailableFromOthers(ctx, donor)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, theirs.ID, visible[0].ID)

	own, err := svc.ListMine(ctx, donor)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].ID)
}

func TestReserve(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()
	donor := snowflake.ID(100)
	requester := snowflake.ID(200)

	donation, err := svc.Create(ctx, donor, validDonation(clk))
	require.NoError(t, err)

	t.Run("cannot reserve own donation", func(t *testing.T) {
		_, err := svc.Reserve(ctx, donation.ID, donor)
		assert.ErrorIs(t, err, domain.ErrOwnDonation)
	})

	t.Run("reserve flips status and records requester", func(t *testing.T) {
		reserved, err := svc.Reserve(ctx, donation.ID, requester)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusReserved, reserved.Status)
		require.NotNil(t, reserved.RequestedBy)
		assert.Equal(t, requester, *reserved.RequestedBy)
	})

	t.Run("second reserve loses", func(t *testing.T) {
		_, err := svc.Reserve(ctx, donation.ID, snowflake.ID(300))
		assert.ErrorIs(t, err, domain.ErrNotAvailable)
	})

	t.Run("release returns donation to the pool", func(t *testing.T) {
		require.NoError(t, svc.Release(ctx, donation.ID))
		got, err := svc.GetByID(ctx, donation.ID.String())
		require.NoError(t, err)
		assert.Equal(t, domain.StatusAvailable, got.Status)
		assert.Nil(t, got.RequestedBy)
	})
}

func TestCancel(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()
	donor := snowflake.ID(100)

	donation, err := svc.Create(ctx, donor, validDonation(clk))
	require.NoError(t, err)

	t.Run("only the owner may cancel", func(t *testing.T) {
		_, err := svc.Cancel(ctx, snowflake.ID(200), donation.ID.String())
		assert.ErrorIs(t, err, domain.ErrNotOwner)
	})

	t.Run("cancel from available", func(t *testing.T) {
		cancelled, err := svc.Cancel(ctx, donor, donation.ID.String())
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	})

	t.Run("cancel is only allowed while available", func(t *testing.T) {
		_, err := svc.Cancel(ctx, donor, donation.ID.String())
		assert.ErrorIs(t, err, domain.ErrDonationNotActive)
	})
}

func TestListPage(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()
	donor := snowflake.ID(100)

	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, donor, validDonation(clk))
		require.NoError(t, err)
	}

	t.Run("rejects unknown status filter", func(t *testing.T) {
		_, _, err := svc.ListPage(ctx, "BOGUS", pagination.Pagination{PageSize: 2})
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	})

	t.Run("walks all rows across pages", func(t *testing.T) {
		seen := map[snowflake.ID]bool{}
		page := pagination.Pagination{PageSize: 2}
		for {
			donations, info, err := svc.ListPage(ctx, "", page)
			require.NoError(t, err)
			for _, d := range donations {
				assert.False(t, seen[d.ID], "donation repeated across pages")
				seen[d.ID] = true
			}
			if !info.HasMore {
				break
			}
			require.NotEmpty(t, info.NextPageToken)
			page.PageToken = info.NextPageToken
		}
		assert.Len(t, seen, 5)
	})
}

func TestExpiringSoonScopedToOwner(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()
	donor := snowflake.ID(100)
	other := snowflake.ID(200)

	mine := validDonation(clk)
	mine.ExpiryDate = clk.Now().Add(24 * time.Hour)
	created, err := svc.Create(ctx, donor, mine)
	require.NoError(t, err)

	theirs := validDonation(clk)
	theirs.ExpiryDate = clk.Now().Add(24 * time.Hour)
	_, err = svc.Create(ctx, other, theirs)
	require.NoError(t, err)

	got, err := svc.ExpiringSoonMine(ctx, donor, 3*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, created.ID, got[0].ID)
}

func TestExpiry(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()
	donor := snowflake.ID(100)

	soon := validDonation(clk)
	soon.ExpiryDate = clk.Now().Add(24 * time.Hour)
	_, err := svc.Create(ctx, donor, soon)
	require.NoError(t, err)

	later := validDonation(clk)
	later.ExpiryDate = clk.Now().Add(30 * 24 * time.Hour)
	_, err = svc.Create(ctx, donor, later)
	require.NoError(t, err)

	t.Run("expiring soon window", func(t *testing.T) {
		expiring, err := svc.ExpiringSoon(ctx, 3*24*time.Hour)
		require.NoError(t, err)
		assert.Len(t, expiring, 1)
	})

	collected := validDonation(clk)
	collected.ExpiryDate = clk.Now().Add(24 * time.Hour)
	handedOver, err := svc.Create(ctx, donor, collected)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, handedOver.ID.String(), domain.StatusCollected)
	require.NoError(t, err)

	t.Run("sweep marks overdue donations expired", func(t *testing.T) {
		clk.Advance(48 * time.Hour)
		n, err := svc.ExpireSweep(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		expired, err := svc.ListByStatus(ctx, domain.StatusExpired)
		require.NoError(t, err)
		assert.Len(t, expired, 1)

		// sweep is idempotent
		n, err = svc.ExpireSweep(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 0, n)
	})

	t.Run("sweep leaves collected donations alone", func(t *testing.T) {
		got, err := svc.GetByID(ctx, handedOver.ID.String())
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCollected, got.Status)
	})
}
