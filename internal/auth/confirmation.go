package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/BradenHooton/classdesk/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultConfirmationTTL is how long a delete confirmation stays valid
const DefaultConfirmationTTL = 5 * time.Minute

var (
	ErrConfirmationInvalid = errors.New("confirmation token invalid")
	ErrConfirmationUsed    = errors.New("confirmation token already used")
)

// ConfirmationManager issues and redeems single-use delete confirmations.
// A token is bound to the user, the list view and the row it was issued for.
type ConfirmationManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu   sync.Mutex
	used map[string]time.Time // jti -> expiry
}

// NewConfirmationManager creates a ConfirmationManager signing with secret
func NewConfirmationManager(secret string, ttl time.Duration) *ConfirmationManager {
	if ttl <= 0 {
		ttl = DefaultConfirmationTTL
	}
	return &ConfirmationManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		used:   make(map[string]time.Time),
	}
}

// Issue signs a confirmation for userID deleting rowID from view
func (m *ConfirmationManager) Issue(userID, view, rowID string) (string, error) {
	now := m.now()
	claims := &models.ConfirmationClaims{
		View:  view,
		RowID: rowID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign confirmation: %w", err)
	}
	return token, nil
}

// Redeem verifies a confirmation and marks it used. Each token is accepted
// once; a second redeem returns ErrConfirmationUsed.
func (m *ConfirmationManager) Redeem(token, userID, view, rowID string) error {
	claims := &models.ConfirmationClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(userID),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfirmationInvalid, err)
	}
	if claims.View != view || claims.RowID != rowID || claims.ID == "" {
		return ErrConfirmationInvalid
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, seen := m.used[claims.ID]; seen {
		return ErrConfirmationUsed
	}
	m.used[claims.ID] = claims.ExpiresAt.Time
	return nil
}

// Sweep forgets used tokens that expired before now and returns how many
// were removed. Expired tokens fail verification on their own.
func (m *ConfirmationManager) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for jti, expiry := range m.used {
		if now.After(expiry) {
			delete(m.used, jti)
			removed++
		}
	}
	return removed
}
