package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type mapStore struct {
	records map[string]Identity
}

func (m *mapStore) Lookup(_ context.Context, token string) (Identity, error) {
	id, ok := m.records[token]
	if !ok {
		return Identity{}, errors.New("not found")
	}
	return id, nil
}

func (m *mapStore) save(token string, id Identity) {
	if m.records == nil {
		m.records = map[string]Identity{}
	}
	m.records[token] = id
}

func TestMintValidateRoundTrip(t *testing.T) {
	store := &mapStore{}
	m := NewManager("secret", time.Hour, store)

	want := Identity{UserID: 7, Email: "a@b.c", DisplayName: "Ada"}
	token, expiresAt, err := m.Mint(want)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)
	store.save(token, want)

	got, err := m.Validate(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	store := &mapStore{}
	other := NewManager("other-secret", time.Hour, store)
	token, _, err := other.Mint(Identity{UserID: 1})
	require.NoError(t, err)
	store.save(token, Identity{UserID: 1})

	m := NewManager("secret", time.Hour, store)
	_, err = m.Validate(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	store := &mapStore{}
	m := NewManager("secret", -time.Minute, store)
	token, _, err := m.Mint(Identity{UserID: 1})
	require.NoError(t, err)
	store.save(token, Identity{UserID: 1})

	_, err = m.Validate(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsRevoked(t *testing.T) {
	store := &mapStore{}
	m := NewManager("secret", time.Hour, store)
	token, _, err := m.Mint(Identity{UserID: 1})
	require.NoError(t, err)
	// Never saved to the store: a logout deleted the record.

	_, err = m.Validate(context.Background(), token)
	require.ErrorIs(t, err, ErrRevokedToken)
}

func TestValidateRejectsEmpty(t *testing.T) {
	m := NewManager("secret", time.Hour, &mapStore{})
	_, err := m.Validate(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidToken)
}
