package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/microblog/internal/model"
)

// newPostgresMock 用 sqlmock 驱动 postgres 方言，校验生成的 SQL
func newPostgresMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestPostgres_FeedQueryShape(t *testing.T) {
	db, mock := newPostgresMock(t)

	rows := sqlmock.NewRows([]string{"id", "body", "timestamp", "user_id", "author_username", "author_email"}).
		AddRow(2, "hello", t0.Add(time.Minute), 7, "bob", "b@x.com").
		AddRow(1, "mine", t0, 3, "alice", "a@x.com")

	mock.ExpectQuery(`SELECT posts.id, posts.body, posts.timestamp, posts.user_id, ` +
		`authors.username AS author_username, authors.email AS author_email FROM "posts" ` +
		`JOIN users AS authors ON authors.id = posts.user_id ` +
		`LEFT JOIN followers ON followers.followed_id = authors.id ` +
		`WHERE \(?followers.follower_id = \$1 OR authors.id = \$2\)? ` +
		`GROUP BY posts.id, posts.body, posts.timestamp, posts.user_id, authors.username, authors.email ` +
		`ORDER BY posts.timestamp DESC, posts.id DESC`).
		WillReturnRows(rows)

	items, err := NewFeedRepository(db).FollowingPosts(context.Background(), 3, 0, 20)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "bob", items[0].AuthorUsername)
	assert.Equal(t, uint64(1), items[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UniqueViolationIsDuplicateKey(t *testing.T) {
	db, mock := newPostgresMock(t)

	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"})

	err := NewUserRepository(db).Create(context.Background(), &model.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_FollowUsesOnConflictDoNothing(t *testing.T) {
	db, mock := newPostgresMock(t)

	mock.ExpectExec(`INSERT INTO "followers" .* ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := NewFollowRepository(db).Create(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}
