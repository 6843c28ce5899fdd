package room_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorai/mentorai/internal/errorz"
	"github.com/mentorai/mentorai/internal/krypto"
	"github.com/mentorai/mentorai/internal/room"
)

const (
	testAPIKey    = "APIxyzabc123"
	testAPISecret = "room-secret-for-tests"
)

func testMinter(t *testing.T) *room.TokenMinter {
	t.Helper()

	minter, err := room.NewTokenMinter(testAPIKey, krypto.NewSecret(testAPISecret))
	require.NoError(t, err)

	return minter
}

func Test_NewTokenMinter(t *testing.T) {
	t.Run("fail, missing key or secret", func(t *testing.T) {
		_, err := room.NewTokenMinter("", krypto.NewSecret(testAPISecret))
		assert.Error(t, err)

		_, err = room.NewTokenMinter(testAPIKey, krypto.NewSecret(""))
		assert.Error(t, err)
	})
}

func Test_TokenMinter_Mint(t *testing.T) {
	t.Run("ok, token carries the room grant", func(t *testing.T) {
		minter := testMinter(t)

		now := time.Date(2026, 5, 1, 14, 0, 0, 0, time.UTC)
		minter.NowFunc = func() time.Time {
			return now
		}

		token, err := minter.Mint("interview-42", "alice")
		require.NoError(t, err)

		claims := struct {
			jwt.RegisteredClaims
			Video room.Grant `json:"video"`
		}{}

		parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
			return []byte(testAPISecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(minter.NowFunc))
		require.NoError(t, err)
		require.True(t, parsed.Valid)

		assert.Equal(t, testAPIKey, claims.Issuer)
		assert.Equal(t, "alice", claims.Subject)
		assert.Equal(t, "interview-42", claims.Video.Room)
		assert.True(t, claims.Video.RoomJoin)
		assert.Equal(t, now.Add(room.TokenTTL).Unix(), claims.ExpiresAt.Unix())
	})

	t.Run("fail, missing room name", func(t *testing.T) {
		minter := testMinter(t)

		_, err := minter.Mint("", "alice")

		var invalid errorz.InvalidInput
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("fail, missing participant name", func(t *testing.T) {
		minter := testMinter(t)

		_, err := minter.Mint("interview-42", "")

		var invalid errorz.InvalidInput
		require.ErrorAs(t, err, &invalid)
	})
}
