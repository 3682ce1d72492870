package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
	"math/big"

	"golang.org/x/crypto/hkdf"
)

// TokenAlphabet is the character set used for share and invite tokens.
const TokenAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// TokenLength is the length of generated share and invite tokens.
const TokenLength = 21

// RandomToken returns a URL-safe random token of TokenLength characters.
func RandomToken() (string, error) {
	return RandomString(TokenLength)
}

func RandomString(n int) (string, error) {
	max := big.NewInt(int64(len(TokenAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = TokenAlphabet[idx.Int64()]
	}
	return string(b), nil
}

// DeriveKey derives a 32-byte key for one purpose from the application secret.
func DeriveKey(secret string, purpose string) ([]byte, error) {
	if secret == "" {
		return nil, errors.New("AUTH_SECRET must be set")
	}
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(secret), []byte("corralio"), []byte(purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}
