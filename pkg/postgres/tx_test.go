package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx records commit and rollback calls; other pgx.Tx methods are unused.
type fakeTx struct {
	pgx.Tx
	committed   bool
	rolledBack  bool
	commitErr   error
	rollbackErr error
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return f.commitErr
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolledBack = true
	return f.rollbackErr
}

type fakeStarter struct {
	tx       *fakeTx
	opts     pgx.TxOptions
	beginErr error
}

func (s *fakeStarter) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	s.opts = opts
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return s.tx, nil
}

func TestWithTransaction_Commits(t *testing.T) {
	starter := &fakeStarter{tx: &fakeTx{}}

	err := WithTransaction(context.Background(), starter, func(pgx.Tx) error { return nil })

	require.NoError(t, err)
	assert.True(t, starter.tx.committed)
	assert.False(t, starter.tx.rolledBack)
	assert.Equal(t, pgx.ReadCommitted, starter.opts.IsoLevel)
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	starter := &fakeStarter{tx: &fakeTx{}}
	boom := errors.New("boom")

	err := WithTransaction(context.Background(), starter, func(pgx.Tx) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.True(t, starter.tx.rolledBack)
	assert.False(t, starter.tx.committed)
}

func TestWithTransaction_RollbackFailureKeepsBothErrors(t *testing.T) {
	rbErr := errors.New("connection reset")
	starter := &fakeStarter{tx: &fakeTx{rollbackErr: rbErr}}
	boom := errors.New("boom")

	err := WithTransaction(context.Background(), starter, func(pgx.Tx) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, rbErr)
}

func TestWithTransaction_BeginAndCommitErrors(t *testing.T) {
	err := WithTransaction(context.Background(), &fakeStarter{beginErr: errors.New("pool closed")}, func(pgx.Tx) error {
		t.Fatal("fn must not run")
		return nil
	})
	assert.ErrorContains(t, err, "begin tx")

	starter := &fakeStarter{tx: &fakeTx{commitErr: errors.New("serialization failure")}}
	err = WithTxOptions(context.Background(), starter, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(pgx.Tx) error { return nil })
	assert.ErrorContains(t, err, "commit tx")
	assert.Equal(t, pgx.Serializable, starter.opts.IsoLevel)
}
