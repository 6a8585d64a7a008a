package service

import (
	"context"
	"testing"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddComment_UpdatesCounters(t *testing.T) {
	e := newEngine(t, 1)
	ctx := context.Background()
	author := e.createUser(t, "author")
	commenter := e.createUser(t, "commenter")
	post := e.createPost(t, author.ID, "post")
	before := e.reloadPost(t, post.ID).LastActivity

	comment, err := e.threads.AddComment(ctx, AddCommentInput{
		PostID:  post.ID,
		UserID:  commenter.ID,
		Content: "first!",
	})
	require.NoError(t, err)
	assert.False(t, comment.IsReply())
	require.NotNil(t, comment.User)
	assert.Equal(t, "commenter", comment.User.Username)

	reloaded := e.reloadPost(t, post.ID)
	assert.Equal(t, 1, reloaded.TotalComments)
	assert.True(t, reloaded.LastActivity.After(before))
}

func TestAddComment_Validation(t *testing.T) {
	e := newEngine(t, 1)
	author := e.createUser(t, "author")
	post := e.createPost(t, author.ID, "post")

	_, err := e.threads.AddComment(context.Background(), AddCommentInput{
		PostID: post.ID,
		UserID: author.ID,
	})
	requireAppError(t, err, models.CodeValidation)
}

func TestAddReply_TwoLevelLimit(t *testing.T) {
	e := newEngine(t, 1)
	ctx := context.Background()
	author := e.createUser(t, "author")
	post := e.createPost(t, author.ID, "post")

	comment, err := e.threads.AddComment(ctx, AddCommentInput{
		PostID: post.ID, UserID: author.ID, Content: "top",
	})
	require.NoError(t, err)

	reply, err := e.threads.AddReply(ctx, AddReplyInput{
		PostID: post.ID, ParentID: comment.ID, UserID: author.ID, Content: "reply",
	})
	require.NoError(t, err)
	assert.True(t, reply.IsReply())

	// A reply cannot itself be replied to.
	_, err = e.threads.AddReply(ctx, AddReplyInput{
		PostID: post.ID, ParentID: reply.ID, UserID: author.ID, Content: "nested",
	})
	requireAppError(t, err, models.CodeInvalidState)
}

func TestAddReply_ParentOnDifferentPost(t *testing.T) {
	e := newEngine(t, 1)
	ctx := context.Background()
	author := e.createUser(t, "author")
	postA := e.createPost(t, author.ID, "a")
	postB := e.createPost(t, author.ID, "b")

	comment, err := e.threads.AddComment(ctx, AddCommentInput{
		PostID: postA.ID, UserID: author.ID, Content: "on a",
	})
	require.NoError(t, err)

	_, err = e.threads.AddReply(ctx, AddReplyInput{
		PostID: postB.ID, ParentID: comment.ID, UserID: author.ID, Content: "wrong post",
	})
	requireAppError(t, err, models.CodeInvalidState)
}

func TestDeleteComment_CascadesReplies(t *testing.T) {
	e := newEngine(t, 1)
	ctx := context.Background()
	author := e.createUser(t, "author")
	post := e.createPost(t, author.ID, "post")

	comment, err := e.threads.AddComment(ctx, AddCommentInput{
		PostID: post.ID, UserID: author.ID, Content: "top",
	})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := e.threads.AddReply(ctx, AddReplyInput{
			PostID: post.ID, ParentID: comment.ID, UserID: author.ID, Content: "r",
		})
		require.NoError(t, err)
	}
	require.Equal(t, 4, e.reloadPost(t, post.ID).TotalComments)

	require.NoError(t, e.threads.DeleteComment(ctx, comment.ID, author.ID))

	// Comment plus all three replies gone, counter back to zero.
	assert.Equal(t, 0, e.reloadPost(t, post.ID).TotalComments)
	var remaining int64
	require.NoError(t, e.db.Model(&models.Comment{}).
		Where("post_id = ?", post.ID).Count(&remaining).Error)
	assert.Equal(t, int64(0), remaining)
}

func TestDeleteComment_ReplyOnly(t *testing.T) {
	e := newEngine(t, 1)
	ctx := context.Background()
	author := e.createUser(t, "author")
	post := e.createPost(t, author.ID, "post")

	comment, err := e.threads.AddComment(ctx, AddCommentInput{
		PostID: post.ID, UserID: author.ID, Content: "top",
	})
	require.NoError(t, err)
	reply, err := e.threads.AddReply(ctx, AddReplyInput{
		PostID: post.ID, ParentID: comment.ID, UserID: author.ID, Content: "r",
	})
	require.NoError(t, err)

	require.NoError(t, e.threads.DeleteComment(ctx, reply.ID, author.ID))

	reloaded := e.reloadPost(t, post.ID)
	assert.Equal(t, 1, reloaded.TotalComments)

	thread, err := e.threads.GetThread(ctx, post.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, thread.Comments, 1)
	assert.Empty(t, thread.Comments[0].Replies)
}

func TestDeleteComment_AuthorOnly(t *testing.T) {
	e := newEngine(t, 1)
	ctx := context.Background()
	author := e.createUser(t, "author")
	other := e.createUser(t, "other")
	post := e.createPost(t, author.ID, "post")

	comment, err := e.threads.AddComment(ctx, AddCommentInput{
		PostID: post.ID, UserID: author.ID, Content: "top",
	})
	require.NoError(t, err)

	err = e.threads.DeleteComment(ctx, comment.ID, other.ID)
	requireAppError(t, err, models.CodeForbidden)
}

func TestGetThread_PaginatesTopLevelOnly(t *testing.T) {
	e := newEngine(t, 1)
	ctx := context.Background()
	author := e.createUser(t, "author")
	post := e.createPost(t, author.ID, "post")

	var firstComment *models.Comment
	for i := 0; i < 5; i++ {
		c, err := e.threads.AddComment(ctx, AddCommentInput{
			PostID: post.ID, UserID: author.ID, Content: uniqueName("c", i),
		})
		require.NoError(t, err)
		if firstComment == nil {
			firstComment = c
		}
	}
	for i := 0; i < 2; i++ {
		_, err := e.threads.AddReply(ctx, AddReplyInput{
			PostID: post.ID, ParentID: firstComment.ID, UserID: author.ID, Content: "r",
		})
		require.NoError(t, err)
	}

	page, err := e.threads.GetThread(ctx, post.ID, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Comments, 2)
	// TotalComments includes replies; TotalPages counts top-level only.
	assert.Equal(t, 7, page.TotalComments)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)

	last, err := e.threads.GetThread(ctx, post.ID, 3, 2)
	require.NoError(t, err)
	assert.Len(t, last.Comments, 1)
}

func TestMarkReplyRead_Idempotent(t *testing.T) {
	e := newEngine(t, 1)
	ctx := context.Background()
	author := e.createUser(t, "author")
	reader := e.createUser(t, "reader")
	post := e.createPost(t, author.ID, "post")

	comment, err := e.threads.AddComment(ctx, AddCommentInput{
		PostID: post.ID, UserID: author.ID, Content: "top",
	})
	require.NoError(t, err)
	reply, err := e.threads.AddReply(ctx, AddReplyInput{
		PostID: post.ID, ParentID: comment.ID, UserID: reader.ID, Content: "r",
	})
	require.NoError(t, err)

	require.NoError(t, e.threads.MarkReplyRead(ctx, reply.ID, author.ID))
	require.NoError(t, e.threads.MarkReplyRead(ctx, reply.ID, author.ID))

	var count int64
	require.NoError(t, e.db.Model(&models.CommentRead{}).
		Where("comment_id = ?", reply.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	readers, err := e.threads.ReplyReaders(ctx, reply.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{author.ID}, readers)

	// Top-level comments carry no read state.
	err = e.threads.MarkReplyRead(ctx, comment.ID, author.ID)
	requireAppError(t, err, models.CodeInvalidState)
	_, err = e.threads.ReplyReaders(ctx, comment.ID)
	requireAppError(t, err, models.CodeInvalidState)
}
