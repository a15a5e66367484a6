package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cyphera/billing-reconciler/internal/db"
	"github.com/cyphera/billing-reconciler/internal/helpers"
	"github.com/cyphera/billing-reconciler/internal/mocks"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestUpsertParams(t *testing.T) {
	periodEnd := testNow.Add(30 * 24 * time.Hour)
	amount := decimal.RequireFromString("9.99")

	params := upsertParams(SubscriptionState{
		UserID:                 "u1",
		UserEmail:              " Person@Example.com ",
		Status:                 "active",
		PlanType:               "lunary_plus",
		ProviderCustomerID:     "cus_1",
		ProviderSubscriptionID: "sub_1",
		CurrentPeriodEnd:       &periodEnd,
		MonthlyAmountDue:       &amount,
		HasDiscount:            true,
		CouponID:               "WELCOME",
	})

	assert.Equal(t, "u1", params.UserID)
	assert.Equal(t, helpers.StringToPgText("Person@Example.com"), params.UserEmail)
	assert.Equal(t, "sub_1", params.ProviderSubscriptionID.String)
	assert.False(t, params.TrialEndsAt.Valid)
	assert.True(t, params.CurrentPeriodEnd.Time.Equal(periodEnd))
	assert.True(t, params.MonthlyAmountDue.Valid)
	assert.Equal(t, "9.99", params.MonthlyAmountDue.Decimal.StringFixed(2))
	assert.Equal(t, "WELCOME", params.CouponID.String)
}

func TestUpsertParams_EmptyEmailIsNull(t *testing.T) {
	params := upsertParams(SubscriptionState{UserID: "u1", UserEmail: "   ", Status: "active"})
	assert.False(t, params.UserEmail.Valid)
	assert.False(t, params.MonthlyAmountDue.Valid)
}

func TestUpsertParams_FreeNeverCarriesSubscription(t *testing.T) {
	params := upsertParams(SubscriptionState{UserID: "u1", Status: "free", ProviderSubscriptionID: "sub_1"})
	assert.False(t, params.ProviderSubscriptionID.Valid)
}

func TestWriter_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("changed", func(t *testing.T) {
		q := mocks.NewMockQuerierForTest(t)
		q.EXPECT().UpsertSubscription(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, arg db.UpsertSubscriptionParams) (int64, error) {
				assert.Equal(t, "u1", arg.UserID)
				return 1, nil
			})

		changed, err := NewWriter(q, zap.NewNop(), false).Upsert(ctx, SubscriptionState{UserID: "u1", Status: "active"})
		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("unchanged", func(t *testing.T) {
		q := mocks.NewMockQuerierForTest(t)
		q.EXPECT().UpsertSubscription(gomock.Any(), gomock.Any()).Return(int64(0), nil)

		changed, err := NewWriter(q, zap.NewNop(), false).Upsert(ctx, SubscriptionState{UserID: "u1", Status: "active"})
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("error", func(t *testing.T) {
		q := mocks.NewMockQuerierForTest(t)
		q.EXPECT().UpsertSubscription(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("deadlock detected"))

		_, err := NewWriter(q, zap.NewNop(), false).Upsert(ctx, SubscriptionState{UserID: "u1", Status: "active"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "u1")
		assert.Contains(t, err.Error(), "deadlock detected")
	})
}

func TestWriter_DryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	// No expectations: any call on the mock fails the test.
	q := mocks.NewMockQuerierForTest(t)
	w := NewWriter(q, zap.NewNop(), true)
	assert.True(t, w.DryRun())

	changed, err := w.Upsert(ctx, SubscriptionState{UserID: "u1", Status: "active"})
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = w.Cancel(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = w.ResetCustomer(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, changed)

	require.NoError(t, w.UpsertProfile(ctx, "u1", "cus_1"))
	require.NoError(t, w.RecordOrphan(ctx, OrphanRecord{ProviderSubscriptionID: "sub_1"}))
}

func TestWriter_CancelAndReset(t *testing.T) {
	ctx := context.Background()
	q := mocks.NewMockQuerierForTest(t)
	q.EXPECT().CancelSubscription(gomock.Any(), "u1").Return(int64(0), nil)
	q.EXPECT().ResetSubscriptionCustomer(gomock.Any(), "u2").Return(int64(1), nil)
	q.EXPECT().UpsertUserProfileCustomer(gomock.Any(), db.UpsertUserProfileCustomerParams{
		UserID:             "u2",
		ProviderCustomerID: helpers.StringToPgText("cus_2"),
	}).Return(nil)

	w := NewWriter(q, zap.NewNop(), false)

	changed, err := w.Cancel(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = w.ResetCustomer(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, changed)

	require.NoError(t, w.UpsertProfile(ctx, "u2", "cus_2"))
}

func TestWriter_NoEmailClobber(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.put(localRow("u1", "keep@example.com", "active", "cus_1", "sub_1"))

	w := NewWriter(store, zap.NewNop(), false)
	_, err := w.Upsert(ctx, SubscriptionState{
		UserID:                 "u1",
		Status:                 "past_due",
		PlanType:               "lunary_plus",
		ProviderCustomerID:     "cus_1",
		ProviderSubscriptionID: "sub_1",
	})
	require.NoError(t, err)

	row, ok := store.get("u1")
	require.True(t, ok)
	assert.Equal(t, "keep@example.com", row.UserEmail.String)
	assert.Equal(t, "past_due", row.Status)
}

func TestWriter_UpsertIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	w := NewWriter(store, zap.NewNop(), false)
	amount := decimal.RequireFromString("9.99")
	state := SubscriptionState{
		UserID:                 "u1",
		UserEmail:              "u1@example.com",
		Status:                 "active",
		PlanType:               "lunary_plus",
		ProviderCustomerID:     "cus_1",
		ProviderSubscriptionID: "sub_1",
		MonthlyAmountDue:       &amount,
	}

	changed, err := w.Upsert(ctx, state)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = w.Upsert(ctx, state)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, store.writeCount())
}
