// Package credential stores the bearer token clipdeck sends to the backend.
package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenNotFound = errors.New("token not found")
	ErrNoSubject     = errors.New("token carries no user id")
)

const tokenFile = "token.json"

type Token struct {
	AccessToken string `json:"access_token"` // #nosec G117 - JSON field for the bearer token, not an exposed secret
	TokenType   string `json:"token_type"`
	UserID      string `json:"user_id,omitempty"`
}

// UserIDFromToken reads the user id from the token's JWT claims. The signature
// is not verified: only the backend can do that, the client just needs to know
// who it acts for.
func UserIDFromToken(accessToken string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	for _, key := range []string{"id", "userId", "sub"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return v, nil
		}
	}
	return "", ErrNoSubject
}

type TokenStorage struct {
	dir string
}

func NewTokenStorage(dir string) *TokenStorage {
	return &TokenStorage{dir: dir}
}

func (s *TokenStorage) Save(token *Token) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	return os.WriteFile(filepath.Join(s.dir, tokenFile), data, 0600)
}

func (s *TokenStorage) Load() (*Token, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, tokenFile)) // #nosec G304 -- fixed file name under the config dir
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to read token: %w", err)
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}

	return &token, nil
}

func (s *TokenStorage) Delete() error {
	err := os.Remove(filepath.Join(s.dir, tokenFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
