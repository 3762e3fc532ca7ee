package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/loan-lifecycle/internal/domain/model"
	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

func newTestStore(t *testing.T, ttl time.Duration) (*DraftStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewDraftStore(client, ttl), mr
}

func TestDraftStore_SaveAndLoad(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	w, err := model.NewApplicationWizard(valueobject.LoanTypePersonal, now)
	require.NoError(t, err)
	w, err = w.UpdateApplicant(model.Applicant{
		FullName:       "Asha Rao",
		Age:            31,
		EmploymentType: valueobject.EmploymentPrivate,
		MonthlyIncome:  decimal.NewFromInt(85000),
	}, now)
	require.NoError(t, err)
	w, err = w.MarkDocumentUploaded("PAN Card", now)
	require.NoError(t, err)
	w, err = w.Next(now)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, w))

	got, err := store.Load(ctx, w.ID())
	require.NoError(t, err)
	assert.Equal(t, w.ID(), got.ID())
	assert.Equal(t, model.StepLoanDetails, got.Step())
	assert.Equal(t, "Asha Rao", got.Applicant().FullName)
	assert.True(t, got.Applicant().MonthlyIncome.Equal(decimal.NewFromInt(85000)))
	assert.Equal(t, []string{"PAN Card"}, got.UploadedDocuments())
	assert.True(t, got.LoanRequest().Principal.Equal(model.DefaultPrincipal))
}

func TestDraftStore_LoadMissing(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	_, err := store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, valueobject.ErrNotFound)
}

func TestDraftStore_Expiry(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	w, err := model.NewApplicationWizard(valueobject.LoanTypeHome, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, w))

	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+w.ID()))

	mr.FastForward(2 * time.Minute)
	_, err = store.Load(ctx, w.ID())
	assert.ErrorIs(t, err, valueobject.ErrNotFound)
}

func TestDraftStore_CorruptPayload(t *testing.T) {
	store, mr := newTestStore(t, 0)
	require.NoError(t, mr.Set(keyPrefix+"bad", "{not json"))

	_, err := store.Load(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, valueobject.ErrNotFound)
}

func TestDraftStore_Ping(t *testing.T) {
	store, mr := newTestStore(t, 0)
	assert.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}
