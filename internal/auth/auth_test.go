package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/kova/internal/apperr"
	"github.com/MrJamesThe3rd/kova/internal/auth"
)

func TestTokens_RoundTrip(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Hour)
	p := auth.Principal{UserID: uuid.New(), FirmID: uuid.New()}

	raw, err := tokens.Issue(p)
	require.NoError(t, err)

	got, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestTokens_Parse_Rejects(t *testing.T) {
	p := auth.Principal{UserID: uuid.New(), FirmID: uuid.New()}

	otherKey, err := auth.NewTokens("other", time.Hour).Issue(p)
	require.NoError(t, err)

	expired, err := auth.NewTokens("secret", -time.Minute).Issue(p)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "Garbage", raw: "not-a-token"},
		{name: "WrongKey", raw: otherKey},
		{name: "Expired", raw: expired},
	}

	tokens := auth.NewTokens("secret", time.Hour)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Parse(tt.raw)
			assert.ErrorIs(t, err, apperr.ErrUnauthorized)
		})
	}
}

func TestFromContext(t *testing.T) {
	_, err := auth.FromContext(context.Background())
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	p := auth.Principal{UserID: uuid.New(), FirmID: uuid.New()}
	got, err := auth.FromContext(auth.WithPrincipal(context.Background(), p))
	require.NoError(t, err)
	assert.Equal(t, p, got)
}
