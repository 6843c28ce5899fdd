// Package krypto contains the cryptographic primitives used by the rest
// of the application: random tokens, secret values, argon2id hashes and
// an AES-GCM encryptor.
package krypto

import "crypto/rand"

// SecretMarker is a string we can look for in logs to see if the app
// is accidentally exposing secrets.
const SecretMarker = "<!SECRET_REDACTED!>"

func randBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}
