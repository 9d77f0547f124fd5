// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-rest-common/internal/logger"
	"github.com/MKhiriev/go-rest-common/models"
)

// tokenRepository is the SQL-backed token store over "auth_tokens".
type tokenRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewTokenRepository constructs a [TokenRepository] backed by db.
func NewTokenRepository(db *DB, logger *logger.Logger) TokenRepository {
	logger.Debug().Msg("creating token repository")
	return &tokenRepository{
		db:     db,
		logger: logger,
	}
}

// FindUserByToken resolves key to its owner. A missing key yields
// [ErrTokenNotFound]; every other failure is wrapped.
func (r *tokenRepository) FindUserByToken(ctx context.Context, key string) (models.User, error) {
	query, args, err := buildSelectUserByTokenQuery(r.db.builder, key)
	if err != nil {
		return models.User{}, err
	}

	var u models.User
	row := r.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&u.UserID, &u.Username, &u.PasswordHash, &u.IsActive, &u.CreatedAt); err != nil {
		if isNoRows(err) {
			return models.User{}, ErrTokenNotFound
		}
		logger.FromContext(ctx).Err(err).Str("func", "*tokenRepository.FindUserByToken").Msg("error scanning user")
		return models.User{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return u, nil
}

func (r *tokenRepository) FindTokenByUserID(ctx context.Context, userID int64) (models.AuthToken, error) {
	query, args, err := buildSelectTokenByUserIDQuery(r.db.builder, userID)
	if err != nil {
		return models.AuthToken{}, err
	}

	var t models.AuthToken
	row := r.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&t.Key, &t.UserID, &t.CreatedAt); err != nil {
		if isNoRows(err) {
			return models.AuthToken{}, ErrTokenNotFound
		}
		logger.FromContext(ctx).Err(err).Str("func", "*tokenRepository.FindTokenByUserID").Msg("error scanning token")
		return models.AuthToken{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return t, nil
}

// CreateToken stores token. A second token for the same user, or a key
// collision, is reported as a wrapped unique violation so the caller can
// re-read the existing token.
func (r *tokenRepository) CreateToken(ctx context.Context, token models.AuthToken) (models.AuthToken, error) {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}

	query, args, err := buildInsertTokenQuery(r.db.builder, token.Key, token.UserID, token.CreatedAt)
	if err != nil {
		return models.AuthToken{}, err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*tokenRepository.CreateToken").Msg("error inserting token")
		if r.db.uniqueViolation(err) {
			return models.AuthToken{}, fmt.Errorf("%w: %w", ErrTokenAlreadyExists, err)
		}
		return models.AuthToken{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return token, nil
}

// DeleteToken removes the token with key, or returns [ErrTokenNotFound].
func (r *tokenRepository) DeleteToken(ctx context.Context, key string) error {
	query, args, err := buildDeleteTokenQuery(r.db.builder, key)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*tokenRepository.DeleteToken").Msg("error deleting token")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	if n == 0 {
		return ErrTokenNotFound
	}

	return nil
}
