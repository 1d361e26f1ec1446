package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medilink/internal/testutil"
	"medilink/models"
)

func TestIssueAndParseToken(t *testing.T) {
	tok, err := IssueToken("s3cr3t", Principal{ID: 7, Kind: models.PrincipalPharmacy}, time.Hour)
	require.NoError(t, err)

	p, err := ParseToken(tok, "s3cr3t")
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.ID)
	assert.True(t, p.IsPharmacy())
	assert.False(t, p.IsCustomer())
}

func TestParseToken_Rejects(t *testing.T) {
	good, err := IssueToken("s3cr3t", Principal{ID: 1, Kind: models.PrincipalUser}, time.Hour)
	require.NoError(t, err)
	expired, err := IssueToken("s3cr3t", Principal{ID: 1, Kind: models.PrincipalUser}, -time.Minute)
	require.NoError(t, err)

	cases := map[string]struct {
		token  string
		secret string
	}{
		"wrong secret": {good, "other"},
		"empty secret": {good, ""},
		"expired":      {expired, "s3cr3t"},
		"garbage":      {"not-a-jwt", "s3cr3t"},
		"unknown role": {testutil.GenerateJWTHS256(t, "s3cr3t", 1, "admin"), "s3cr3t"},
		"missing id":   {testutil.GenerateJWTHS256(t, "s3cr3t", 0, "user"), "s3cr3t"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(tc.token, tc.secret)
			assert.Error(t, err)
		})
	}
}

func TestParseBearer(t *testing.T) {
	tok := testutil.GenerateJWTHS256(t, "k", 3, "user")

	p, err := ParseBearer("bearer "+tok, "k")
	require.NoError(t, err)
	assert.Equal(t, models.PrincipalUser, p.Kind)

	_, err = ParseBearer(tok, "k")
	assert.Error(t, err)
	_, err = ParseBearer("Basic abc", "k")
	assert.Error(t, err)
}

func TestParseFromMD(t *testing.T) {
	tok := testutil.GenerateJWTHS256(t, "k", 9, "pharmacy")
	p, err := ParseFromMD(testutil.CtxWithBearer(context.Background(), tok), "k")
	require.NoError(t, err)
	assert.Equal(t, int64(9), p.ID)

	_, err = ParseFromMD(context.Background(), "k")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	_, err := HashPassword("abc")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	h, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, "hunter22"))
	assert.False(t, CheckPassword(h, "hunter23"))
}
