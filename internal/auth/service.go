package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// KeyPrefix starts every issued API key.
const KeyPrefix = "am_"

// lookupPrefixLen is how many leading key characters are stored in clear
// for candidate lookup.
const lookupPrefixLen = 8

// ErrInvalidKey is returned when the provided API key does not match any active account.
var ErrInvalidKey = errors.New("invalid or revoked API key")

// ErrInvalidRole is returned when creating an account with an unknown role.
var ErrInvalidRole = errors.New("invalid account role")

// Service provides authentication operations.
type Service struct {
	accounts   AccountRepository
	bcryptCost int
}

// NewService creates a new auth Service.
func NewService(accounts AccountRepository, bcryptCost int) *Service {
	return &Service{accounts: accounts, bcryptCost: bcryptCost}
}

// GenerateKey creates a new API key. Returns the raw key, its lookup prefix
// and the bcrypt hash. The raw key is 32 random bytes, base64url encoded,
// behind KeyPrefix.
func (s *Service) GenerateKey() (rawKey, prefix, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", "", fmt.Errorf("generating random bytes: %w", err)
	}

	rawKey = KeyPrefix + base64.RawURLEncoding.EncodeToString(b)
	prefix = rawKey[:lookupPrefixLen]

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(rawKey), s.bcryptCost)
	if err != nil {
		return "", "", "", fmt.Errorf("hashing key: %w", err)
	}

	return rawKey, prefix, string(hashBytes), nil
}

// CreateAccount issues a key and stores a new account. The raw key is
// returned once and never persisted.
func (s *Service) CreateAccount(ctx context.Context, name, role string) (*Account, string, error) {
	if !ValidRole(role) {
		return nil, "", ErrInvalidRole
	}

	rawKey, prefix, hash, err := s.GenerateKey()
	if err != nil {
		return nil, "", err
	}

	a := &Account{Name: name, Role: role, ApiKeyPrefix: prefix, ApiKeyHash: hash}
	if err := s.accounts.Create(ctx, a); err != nil {
		return nil, "", fmt.Errorf("creating account: %w", err)
	}

	return a, rawKey, nil
}

// Authenticate resolves a raw API key to an Identity. It extracts the prefix,
// looks up candidates, and bcrypt-compares each one.
func (s *Service) Authenticate(ctx context.Context, rawKey string) (*Identity, error) {
	if len(rawKey) < lookupPrefixLen {
		return nil, ErrInvalidKey
	}

	candidates, err := s.accounts.FindByPrefix(ctx, rawKey[:lookupPrefixLen])
	if err != nil {
		return nil, fmt.Errorf("finding accounts by prefix: %w", err)
	}

	for _, a := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(a.ApiKeyHash), []byte(rawKey)) == nil {
			return &Identity{AccountID: a.ID, Name: a.Name, Role: a.Role}, nil
		}
	}

	return nil, ErrInvalidKey
}

// BootstrapAdmin creates the initial admin account if the accounts table is
// empty and returns its raw key. With existing accounts it returns "".
func (s *Service) BootstrapAdmin(ctx context.Context) (string, error) {
	count, err := s.accounts.CountAll(ctx)
	if err != nil {
		return "", fmt.Errorf("counting accounts: %w", err)
	}
	if count > 0 {
		return "", nil
	}

	_, rawKey, err := s.CreateAccount(ctx, "admin", RoleAdmin)
	if err != nil {
		return "", fmt.Errorf("creating bootstrap admin: %w", err)
	}

	slog.Info("admin API key created", "key", rawKey)
	return rawKey, nil
}
