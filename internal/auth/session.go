package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arborview/enroll/internal/metrics"
	"github.com/arborview/enroll/internal/storage"
)

// SessionIssuer owns the refresh-token lifecycle.
//
// Each login anchors an append-only rotation chain: redeeming a token
// revokes it and links it to its successor. Presenting a token that is
// already revoked means the secret leaked after a legitimate rotation, so
// every token for that admin is revoked.
type SessionIssuer struct {
	store  Store
	tokens *TokenService
	logger *slog.Logger
}

// NewSessionIssuer creates a session issuer.
func NewSessionIssuer(store Store, tokens *TokenService, logger *slog.Logger) *SessionIssuer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionIssuer{store: store, tokens: tokens, logger: logger}
}

// IssueAdminSession starts a new session for an admin: a fresh refresh
// chain and a signed access token. The raw refresh secret is returned
// exactly once; only its hash is persisted.
func (s *SessionIssuer) IssueAdminSession(ctx context.Context, admin *storage.AdminUser) (*TokenPair, error) {
	secret, err := s.tokens.GenerateRefreshSecret()
	if err != nil {
		return nil, err
	}

	_, err = s.store.CreateRefreshToken(ctx, &storage.RefreshToken{
		AdminUserID: admin.ID,
		TokenHash:   s.tokens.HashRefreshSecret(secret),
		ExpiresAt:   s.tokens.RefreshExpiresAt(time.Now()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	accessToken, err := s.tokens.SignAccessToken(admin.ID, admin.Email)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: secret}, nil
}

// RefreshSession redeems a raw refresh secret for a new token pair,
// rotating the chain. Returns (nil, nil) when the secret is unusable:
// unknown, expired, or revoked. An unknown secret has no side effects; a
// revoked one triggers full revocation for its admin.
func (s *SessionIssuer) RefreshSession(ctx context.Context, rawToken string) (*TokenPair, error) {
	if rawToken == "" {
		return nil, nil
	}

	rec, err := s.store.GetRefreshTokenByHash(ctx, s.tokens.HashRefreshSecret(rawToken))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()

	if rec.RevokedAt != nil {
		// Reuse of a rotated token: either theft or a redeem race. Both are
		// treated as theft - fail closed and kill every session.
		metrics.RecordTokenReuse()
		s.logger.Warn("refresh token reuse detected, revoking all sessions",
			"admin_user_id", rec.AdminUserID, "token_id", rec.ID)
		if err := s.store.RevokeAllRefreshTokensForAdmin(ctx, rec.AdminUserID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if !rec.ExpiresAt.After(now) {
		// Natural expiry, no cascade.
		return nil, nil
	}

	secret, err := s.tokens.GenerateRefreshSecret()
	if err != nil {
		return nil, err
	}

	// Rotation: the insert of the successor and the revocation of the old
	// row commit together or not at all.
	err = s.store.WithTx(ctx, func(tx *storage.Tx) error {
		newRec, err := tx.CreateRefreshToken(ctx, &storage.RefreshToken{
			AdminUserID: rec.AdminUserID,
			TokenHash:   s.tokens.HashRefreshSecret(secret),
			ExpiresAt:   s.tokens.RefreshExpiresAt(now),
		})
		if err != nil {
			return err
		}
		return tx.MarkRefreshTokenRotated(ctx, rec.ID, newRec.ID)
	})
	if errors.Is(err, storage.ErrNotFound) {
		// The row was revoked between our read and the rotation update:
		// a concurrent redeem of the same secret won the race. The loser's
		// presentation is a second use of a rotated token, handled exactly
		// like a replay.
		metrics.RecordTokenReuse()
		s.logger.Warn("refresh token redeemed concurrently, revoking all sessions",
			"admin_user_id", rec.AdminUserID, "token_id", rec.ID)
		if err := s.store.RevokeAllRefreshTokensForAdmin(ctx, rec.AdminUserID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	admin, err := s.store.GetAdminByID(ctx, rec.AdminUserID)
	if errors.Is(err, storage.ErrNotFound) {
		// Admin deleted while the chain was live; orphan tokens die here.
		if err := s.store.RevokeAllRefreshTokensForAdmin(ctx, rec.AdminUserID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	accessToken, err := s.tokens.SignAccessToken(admin.ID, admin.Email)
	if err != nil {
		return nil, err
	}

	metrics.RecordTokenRotation()
	return &TokenPair{AccessToken: accessToken, RefreshToken: secret}, nil
}

// RevokeFromRawToken revokes the session a raw secret belongs to.
// Idempotent: absent or already-revoked tokens are a no-op. Used by logout.
func (s *SessionIssuer) RevokeFromRawToken(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}

	rec, err := s.store.GetRefreshTokenByHash(ctx, s.tokens.HashRefreshSecret(rawToken))
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if rec.RevokedAt != nil {
		return nil
	}

	return s.store.RevokeRefreshToken(ctx, rec.ID)
}
