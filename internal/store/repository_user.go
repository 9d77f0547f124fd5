package store

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-rest-common/internal/logger"
	"github.com/MKhiriev/go-rest-common/models"
)

// userRepository is the SQL-backed implementation of [UserRepository].
// It handles account creation and lookup against the "users" table.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser persists a new user record and returns it with the
// server-assigned UserID and CreatedAt.
//
// Error handling:
//   - unique violation on username → [ErrUsernameAlreadyExists].
//   - any other driver-level error → wrapped [ErrExecutingQuery].
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	user.CreatedAt = time.Now().UTC()
	query, args, err := buildInsertUserQuery(r.db.builder, user.Username, user.PasswordHash, user.IsActive, user.CreatedAt)
	if err != nil {
		return models.User{}, err
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&user.UserID); err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error inserting user")
		if r.db.uniqueViolation(err) {
			return models.User{}, ErrUsernameAlreadyExists
		}
		return models.User{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	user.Password = ""
	return user, nil
}

// FindUserByUsername retrieves the user whose username matches.
//
// Returns [ErrNoUserWasFound] when no row matches.
func (r *userRepository) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectUserByUsernameQuery(r.db.builder, username)
	if err != nil {
		return models.User{}, err
	}

	var u models.User
	row := r.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&u.UserID, &u.Username, &u.PasswordHash, &u.IsActive, &u.CreatedAt); err != nil {
		if isNoRows(err) {
			return models.User{}, ErrNoUserWasFound
		}
		log.Err(err).Str("func", "*userRepository.FindUserByUsername").Msg("error scanning user")
		return models.User{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return u, nil
}
