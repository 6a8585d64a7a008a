package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_CountAll(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "comments" WHERE post_id = $1 AND "comments"."deleted_at" IS NULL`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountAll(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_CountTopLevel_ExcludesReplies(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "comments" WHERE (post_id = $1 AND parent_id IS NULL) AND "comments"."deleted_at" IS NULL`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountTopLevel(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_MarkRead_UsesConflictNoop(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	mock.ExpectExec(`(?s)INSERT INTO comment_reads .*ON CONFLICT \(comment_id, user_id\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkRead(context.Background(), 3, 9))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_DeleteByIDs_EmptyIsNoop(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	// No expectations registered: an empty slice must not touch the database.
	require.NoError(t, repo.DeleteByIDs(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
