package store

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

var userColumns = []string{"user_id", "username", "password_hash", "is_active", "created_at"}

func qualified(table string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = table + "." + c
	}
	return out
}

func buildInsertUserQuery(b sq.StatementBuilderType, username, passwordHash string, isActive bool, createdAt time.Time) (string, []any, error) {
	query, args, err := b.Insert("users").
		Columns("username", "password_hash", "is_active", "created_at").
		Values(username, passwordHash, isActive, createdAt).
		Suffix("RETURNING user_id").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildSelectUserByUsernameQuery(b sq.StatementBuilderType, username string) (string, []any, error) {
	query, args, err := b.Select(userColumns...).
		From("users").
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildSelectUserByTokenQuery(b sq.StatementBuilderType, key string) (string, []any, error) {
	query, args, err := b.Select(qualified("u", userColumns)...).
		From("auth_tokens t").
		Join("users u ON u.user_id = t.user_id").
		Where(sq.Eq{"t.key": key}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildSelectTokenByUserIDQuery(b sq.StatementBuilderType, userID int64) (string, []any, error) {
	query, args, err := b.Select("key", "user_id", "created_at").
		From("auth_tokens").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildInsertTokenQuery(b sq.StatementBuilderType, key string, userID int64, createdAt time.Time) (string, []any, error) {
	query, args, err := b.Insert("auth_tokens").
		Columns("key", "user_id", "created_at").
		Values(key, userID, createdAt).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildDeleteTokenQuery(b sq.StatementBuilderType, key string) (string, []any, error) {
	query, args, err := b.Delete("auth_tokens").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}
