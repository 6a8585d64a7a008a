package service

import (
	"context"
	"testing"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentNotifiesPostAuthor(t *testing.T) {
	e := newEngine(t, 1)
	ctx := context.Background()
	alice := e.createUser(t, "alice")
	bob := e.createUser(t, "bob")
	post := e.createPost(t, alice.ID, "post")

	_, err := e.threads.AddComment(ctx, AddCommentInput{
		PostID: post.ID, UserID: bob.ID, Content: "hello",
	})
	require.NoError(t, err)

	feed, err := e.notifications.List(ctx, alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, feed.Notifications, 1)
	assert.Equal(t, models.NotificationComment, feed.Notifications[0].Type)
	assert.Equal(t, bob.ID, feed.Notifications[0].ActorID)
	assert.Equal(t, 1, feed.Unread)
}

func TestSelfCommentProducesNothing(t *testing.T) {
	e := newEngine(t, 1)
	ctx := context.Background()
	alice := e.createUser(t, "alice")
	post := e.createPost(t, alice.ID, "post")

	_, err := e.threads.AddComment(ctx, AddCommentInput{
		PostID: post.ID, UserID: alice.ID, Content: "talking to myself",
	})
	require.NoError(t, err)

	feed, err := e.notifications.List(ctx, alice.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, feed.Notifications)
	assert.Equal(t, 0, feed.Unread)
}

func TestReplyFanout(t *testing.T) {
	e := newEngine(t, 1)
	ctx := context.Background()
	alice := e.createUser(t, "alice")
	bob := e.createUser(t, "bob")
	carol := e.createUser(t, "carol")
	post := e.createPost(t, alice.ID, "post")

	comment, err := e.threads.AddComment(ctx, AddCommentInput{
		PostID: post.ID, UserID: bob.ID, Content: "bob's comment",
	})
	require.NoError(t, err)

	// Carol replies to Bob's comment on Alice's post: both Bob (parent
	// author) and Alice (post author) get exactly one record each.
	_, err = e.threads.AddReply(ctx, AddReplyInput{
		PostID: post.ID, ParentID: comment.ID, UserID: carol.ID, Content: "carol's reply",
	})
	require.NoError(t, err)

	bobFeed, err := e.notifications.List(ctx, bob.ID, 0)
	require.NoError(t, err)
	require.Len(t, bobFeed.Notifications, 1)
	assert.Equal(t, models.NotificationReply, bobFeed.Notifications[0].Type)
	assert.Equal(t, 1, bobFeed.Unread)

	aliceFeed, err := e.notifications.List(ctx, alice.ID, 0)
	require.NoError(t, err)
	// Alice has the comment notification from Bob plus the reply notification.
	require.Len(t, aliceFeed.Notifications, 2)
	assert.Equal(t, 2, aliceFeed.Unread)

	carolFeed, err := e.notifications.List(ctx, carol.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, carolFeed.Notifications)
}

func TestReplyToOwnCommentOnOthersPost(t *testing.T) {
	e := newEngine(t, 1)
	ctx := context.Background()
	alice := e.createUser(t, "alice")
	bob := e.createUser(t, "bob")
	post := e.createPost(t, alice.ID, "post")

	comment, err := e.threads.AddComment(ctx, AddCommentInput{
		PostID: post.ID, UserID: bob.ID, Content: "bob's comment",
	})
	require.NoError(t, err)

	// Bob replies to himself: only Alice is notified, once.
	_, err = e.threads.AddReply(ctx, AddReplyInput{
		PostID: post.ID, ParentID: comment.ID, UserID: bob.ID, Content: "bob again",
	})
	require.NoError(t, err)

	aliceFeed, err := e.notifications.List(ctx, alice.ID, 0)
	require.NoError(t, err)
	assert.Len(t, aliceFeed.Notifications, 2) // comment + reply activity

	bobFeed, err := e.notifications.List(ctx, bob.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, bobFeed.Notifications)
}

func TestPostAuthorRepliesOnOwnPost(t *testing.T) {
	e := newEngine(t, 1)
	ctx := context.Background()
	alice := e.createUser(t, "alice")
	bob := e.createUser(t, "bob")
	post := e.createPost(t, alice.ID, "post")

	comment, err := e.threads.AddComment(ctx, AddCommentInput{
		PostID: post.ID, UserID: bob.ID, Content: "bob's comment",
	})
	require.NoError(t, err)

	// Alice replies to Bob on her own post: only Bob is notified, and Alice
	// never receives a record about her own reply.
	_, err = e.threads.AddReply(ctx, AddReplyInput{
		PostID: post.ID, ParentID: comment.ID, UserID: alice.ID, Content: "thanks bob",
	})
	require.NoError(t, err)

	bobFeed, err := e.notifications.List(ctx, bob.ID, 0)
	require.NoError(t, err)
	require.Len(t, bobFeed.Notifications, 1)

	aliceFeed, err := e.notifications.List(ctx, alice.ID, 0)
	require.NoError(t, err)
	assert.Len(t, aliceFeed.Notifications, 1) // just Bob's original comment
}

func TestReset_IdempotentAndMarksRepliesRead(t *testing.T) {
	e := newEngine(t, 1)
	ctx := context.Background()
	alice := e.createUser(t, "alice")
	bob := e.createUser(t, "bob")
	post := e.createPost(t, bob.ID, "post")

	comment, err := e.threads.AddComment(ctx, AddCommentInput{
		PostID: post.ID, UserID: alice.ID, Content: "alice's comment",
	})
	require.NoError(t, err)
	reply, err := e.threads.AddReply(ctx, AddReplyInput{
		PostID: post.ID, ParentID: comment.ID, UserID: bob.ID, Content: "bob replies",
	})
	require.NoError(t, err)

	require.Equal(t, 1, e.reloadUser(t, alice.ID).UnreadNotifications)

	require.NoError(t, e.notifications.Reset(ctx, alice.ID))

	assert.Equal(t, 0, e.reloadUser(t, alice.ID).UnreadNotifications)
	feed, err := e.notifications.List(ctx, alice.ID, 0)
	require.NoError(t, err)
	for _, n := range feed.Notifications {
		assert.True(t, n.Read)
	}

	// Bob's reply under Alice's comment is now marked seen by Alice.
	var reads int64
	require.NoError(t, e.db.Model(&models.CommentRead{}).
		Where("comment_id = ? AND user_id = ?", reply.ID, alice.ID).
		Count(&reads).Error)
	assert.Equal(t, int64(1), reads)

	// A second reset changes nothing.
	require.NoError(t, e.notifications.Reset(ctx, alice.ID))
	assert.Equal(t, 0, e.reloadUser(t, alice.ID).UnreadNotifications)
	require.NoError(t, e.db.Model(&models.CommentRead{}).
		Where("comment_id = ? AND user_id = ?", reply.ID, alice.ID).
		Count(&reads).Error)
	assert.Equal(t, int64(1), reads)
}

func TestRecountUnread(t *testing.T) {
	e := newEngine(t, 1)
	ctx := context.Background()
	alice := e.createUser(t, "alice")
	bob := e.createUser(t, "bob")
	post := e.createPost(t, alice.ID, "post")

	for i := 0; i < 3; i++ {
		_, err := e.threads.AddComment(ctx, AddCommentInput{
			PostID: post.ID, UserID: bob.ID, Content: uniqueName("c", i),
		})
		require.NoError(t, err)
	}

	// Corrupt the cached counter, then repair from the rows.
	require.NoError(t, e.db.Model(&models.User{}).
		Where("id = ?", alice.ID).
		Update("unread_notifications", 42).Error)

	require.NoError(t, e.notifications.RecountUnread(ctx, alice.ID))
	assert.Equal(t, 3, e.reloadUser(t, alice.ID).UnreadNotifications)
}

func TestNotificationTextPreviewTruncated(t *testing.T) {
	e := newEngine(t, 1)
	ctx := context.Background()
	alice := e.createUser(t, "alice")
	bob := e.createUser(t, "bob")
	post := e.createPost(t, alice.ID, "post")

	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	_, err := e.threads.AddComment(ctx, AddCommentInput{
		PostID: post.ID, UserID: bob.ID, Content: string(long),
	})
	require.NoError(t, err)

	feed, err := e.notifications.List(ctx, alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, feed.Notifications, 1)
	assert.Len(t, feed.Notifications[0].Text, notificationPreviewLen)
}
