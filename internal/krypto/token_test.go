package krypto_test

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/mentorai/mentorai/internal/krypto"
)

func Test_Token_GenerateAndParse(t *testing.T) {
	t.Run("ok, round trip via string", func(t *testing.T) {
		token := must(krypto.GenerateToken())

		parsed, err := krypto.ParseToken(token.String())
		if err != nil {
			t.Fatalf("failed to parse token: %v", err)
		}

		if parsed != token {
			t.Errorf("wanted\n%v\ngot\n%v\n", token, parsed)
		}
	})

	failCases := map[string]string{
		"empty string": "",
		"too short":    "abcdef",
		"too long":     strings.Repeat("ab", 33),
		"invalid hex":  strings.Repeat("zz", 32),
	}

	for name, raw := range failCases {
		t.Run("fail, "+name, func(t *testing.T) {
			_, err := krypto.ParseToken(raw)
			if !errors.Is(err, krypto.ErrInvalidToken) {
				t.Fatalf("wanted error %v, got %v (via errors.Is)", krypto.ErrInvalidToken, err)
			}
		})
	}
}

func Test_Token_PreventLogExposure(t *testing.T) {
	token := must(krypto.GenerateToken())

	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("token", "token", token)

	s := buf.String()
	if !strings.Contains(s, krypto.SecretMarker) {
		t.Errorf("log output\n%s\ndoes not contain secret marker: %s", s, krypto.SecretMarker)
	}

	if strings.Contains(s, fmt.Sprint(token.String())) {
		t.Errorf("log output\n%s\ncontains the token", s)
	}
}
