package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPostRepository_GetByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE "posts"."id" = $1 AND "posts"."deleted_at" IS NULL ORDER BY "posts"."id" LIMIT $2`)).
		WithArgs(42, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	post, err := repo.GetByID(context.Background(), 42)
	assert.Error(t, err)
	assert.Nil(t, post)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_BumpActivity_GuardsMonotonicity(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	at := time.Now().UTC()

	mock.ExpectBegin()
	// The WHERE clause only matches rows whose last_activity is older.
	mock.ExpectExec(`UPDATE "posts" SET .*last_activity.* WHERE id = \$\d+ AND last_activity < \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, repo.BumpActivity(context.Background(), 1, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_SetVoteCounts(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "posts" SET .*downvotes.*upvotes.* WHERE id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SetVoteCounts(context.Background(), 1, 2, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_AdjustTotalComments_FloorsAtZero(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "posts" SET .*CASE WHEN total_comments \+ \$\d+ < 0 THEN 0 ELSE total_comments \+ \$\d+ END.*`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.AdjustTotalComments(context.Background(), 1, -3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_List_OrdersPinnedFirst(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	rows := sqlmock.NewRows([]string{"id", "title", "user_id", "pinned"}).
		AddRow(2, "pinned post", 1, true).
		AddRow(1, "active post", 1, false)
	mock.ExpectQuery(`SELECT \* FROM "posts" WHERE "posts"\."deleted_at" IS NULL ORDER BY pinned DESC,last_activity DESC LIMIT \$\d+`).
		WillReturnRows(rows)
	// Preload of the User association.
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(1, "author"))

	posts, err := repo.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.True(t, posts[0].Pinned)
	assert.NoError(t, mock.ExpectationsWereMet())
}
