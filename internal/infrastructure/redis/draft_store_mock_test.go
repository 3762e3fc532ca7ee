package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/loan-lifecycle/internal/domain/model"
	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

func TestDraftStore_ServerErrors(t *testing.T) {
	ctx := context.Background()
	w, err := model.NewApplicationWizard(valueobject.LoanTypeEducation, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	data, err := json.Marshal(w.Snapshot())
	require.NoError(t, err)
	readonly := errors.New("READONLY You can't write against a read only replica")

	t.Run("save", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectSet(keyPrefix+w.ID(), data, 72*time.Hour).SetErr(readonly)

		err := NewDraftStore(client, 72*time.Hour).Save(ctx, w)
		assert.ErrorIs(t, err, readonly)
		assert.ErrorContains(t, err, "save draft "+w.ID())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative ttl saves without expiry", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectSet(keyPrefix+w.ID(), data, 0).SetVal("OK")

		require.NoError(t, NewDraftStore(client, -time.Second).Save(ctx, w))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("load", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet(keyPrefix + w.ID()).SetErr(errors.New("i/o timeout"))

		_, err := NewDraftStore(client, time.Hour).Load(ctx, w.ID())
		assert.ErrorContains(t, err, "i/o timeout")
		assert.NotErrorIs(t, err, valueobject.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("load miss", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet(keyPrefix + w.ID()).RedisNil()

		_, err := NewDraftStore(client, time.Hour).Load(ctx, w.ID())
		assert.ErrorIs(t, err, valueobject.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
