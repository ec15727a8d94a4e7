package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrClientUnknown  = errors.New("unknown client")
	ErrBadCredentials = errors.New("invalid client credentials")
)

// Clients maps an API client id to the bcrypt hash of its secret.
type Clients map[string]string

func (c Clients) Authenticate(clientID, secret string) error {
	hash, ok := c[clientID]
	if !ok {
		return ErrClientUnknown
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		return ErrBadCredentials
	}
	return nil
}

func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
