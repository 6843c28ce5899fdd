// Package room mints access tokens for live interview rooms.
//
// The tokens follow the grant shape understood by the media server: an
// HS256 JWT carrying a video grant for a single room.
package room

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mentorai/mentorai/internal/errorz"
	"github.com/mentorai/mentorai/internal/krypto"
)

// TokenTTL is how long a minted room token remains valid.
const TokenTTL = 6 * time.Hour

// Grant allows a participant to join a single room.
type Grant struct {
	Room     string `json:"room"`
	RoomJoin bool   `json:"roomJoin"`
}

type grantClaims struct {
	jwt.RegisteredClaims
	Video Grant `json:"video"`
}

// TokenMinter mints room access tokens signed with the media server
// API key pair.
type TokenMinter struct {
	apiKey    string
	apiSecret krypto.Secret

	// NowFunc is called when the minter needs the current time.
	NowFunc func() time.Time
}

func NewTokenMinter(apiKey string, apiSecret krypto.Secret) (*TokenMinter, error) {
	if apiKey == "" || len(apiSecret.SecretValue()) == 0 {
		return nil, errors.New("api key and secret are required")
	}

	return &TokenMinter{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		NowFunc:   time.Now,
	}, nil
}

// Mint returns a token that allows participant to join room.
func (m *TokenMinter) Mint(room, participant string) (string, error) {
	var errs errorz.InvalidInput
	if room == "" {
		errs = append(errs, errorz.Keyed{Key: "roomName", Err: errors.New("is required")})
	}
	if participant == "" {
		errs = append(errs, errorz.Keyed{Key: "participantName", Err: errors.New("is required")})
	}
	if len(errs) > 0 {
		return "", errs
	}

	now := m.NowFunc()
	claims := grantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.apiKey,
			Subject:   participant,
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
		Video: Grant{
			Room:     room,
			RoomJoin: true,
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.apiSecret.SecretValue())
	if err != nil {
		return "", fmt.Errorf("failed to sign room token: %w", err)
	}

	return token, nil
}
