package posts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnector/internal/posts"
	"devconnector/internal/testsupport"
)

func TestCreate(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	author := testsupport.CreateTestUser(t, db, "Author", "author@example.com", "password123")

	t.Run("snapshots author name and avatar", func(t *testing.T) {
		post, err := posts.Create(db, author, "  hello world  ")
		require.NoError(t, err)

		assert.NotEmpty(t, post.ID)
		assert.Equal(t, "hello world", post.Text)
		assert.Equal(t, author.ID, post.UserID)
		assert.Equal(t, "Author", post.Name)
		assert.Equal(t, author.Avatar, post.Avatar)
		assert.Empty(t, post.Likes)
		assert.NotNil(t, post.Likes)
	})

	t.Run("rejects empty text", func(t *testing.T) {
		_, err := posts.Create(db, author, "   ")
		assert.Error(t, err)
	})
}

func TestListAndFind(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	author := testsupport.CreateTestUser(t, db, "Author", "lister@example.com", "password123")
	first, err := posts.Create(db, author, "first")
	require.NoError(t, err)
	second, err := posts.Create(db, author, "second")
	require.NoError(t, err)

	list, err := posts.List(db)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, first.ID, list[1].ID)

	found, err := posts.FindByID(db, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", found.Text)

	_, err = posts.FindByID(db, "5f1d7f0e9c1b2a0017c0ffee")
	assert.ErrorIs(t, err, posts.ErrPostNotFound)
	_, err = posts.FindByID(db, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, posts.ErrPostNotFound)
}

func TestDelete(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	author := testsupport.CreateTestUser(t, db, "Author", "deleter@example.com", "password123")
	stranger := testsupport.CreateTestUser(t, db, "Stranger", "stranger@example.com", "password123")

	post, err := posts.Create(db, author, "to be removed")
	require.NoError(t, err)
	_, err = posts.LikePost(db, post.ID, stranger.ID)
	require.NoError(t, err)

	t.Run("only the author may delete", func(t *testing.T) {
		err := posts.Delete(db, post.ID, stranger.ID)
		assert.ErrorIs(t, err, posts.ErrNotAuthorized)

		_, err = posts.FindByID(db, post.ID)
		assert.NoError(t, err)
	})

	t.Run("author deletes post and its likes", func(t *testing.T) {
		require.NoError(t, posts.Delete(db, post.ID, author.ID))

		_, err := posts.FindByID(db, post.ID)
		assert.ErrorIs(t, err, posts.ErrPostNotFound)

		var likes int64
		require.NoError(t, db.Model(&posts.Like{}).Where("post_id = ?", post.ID).Count(&likes).Error)
		assert.Zero(t, likes)
	})

	t.Run("unknown post", func(t *testing.T) {
		err := posts.Delete(db, post.ID, author.ID)
		assert.ErrorIs(t, err, posts.ErrPostNotFound)
	})
}

func TestLikeAndUnlike(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	author := testsupport.CreateTestUser(t, db, "Author", "liked@example.com", "password123")
	fan := testsupport.CreateTestUser(t, db, "Fan", "fan@example.com", "password123")
	post, err := posts.Create(db, author, "like me")
	require.NoError(t, err)

	t.Run("second like by the same user is rejected", func(t *testing.T) {
		likes, err := posts.LikePost(db, post.ID, fan.ID)
		require.NoError(t, err)
		require.Len(t, likes, 1)
		assert.Equal(t, fan.ID, likes[0].UserID)

		_, err = posts.LikePost(db, post.ID, fan.ID)
		assert.ErrorIs(t, err, posts.ErrAlreadyLiked)

		found, err := posts.FindByID(db, post.ID)
		require.NoError(t, err)
		assert.Len(t, found.Likes, 1)
	})

	t.Run("likes are newest first", func(t *testing.T) {
		likes, err := posts.LikePost(db, post.ID, author.ID)
		require.NoError(t, err)
		require.Len(t, likes, 2)
		assert.Equal(t, author.ID, likes[0].UserID)
	})

	t.Run("unlike removes exactly one like", func(t *testing.T) {
		likes, err := posts.UnlikePost(db, post.ID, fan.ID)
		require.NoError(t, err)
		require.Len(t, likes, 1)
		assert.Equal(t, author.ID, likes[0].UserID)

		_, err = posts.UnlikePost(db, post.ID, fan.ID)
		assert.ErrorIs(t, err, posts.ErrNotLiked)
	})

	t.Run("unknown post", func(t *testing.T) {
		_, err := posts.LikePost(db, "00000000-0000-0000-0000-000000000000", fan.ID)
		assert.ErrorIs(t, err, posts.ErrPostNotFound)
		_, err = posts.UnlikePost(db, "garbage", fan.ID)
		assert.ErrorIs(t, err, posts.ErrPostNotFound)
	})
}

func TestComments(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	author := testsupport.CreateTestUser(t, db, "Author", "commented@example.com", "password123")
	commenter := testsupport.CreateTestUser(t, db, "Commenter", "commenter@example.com", "password123")
	post, err := posts.Create(db, author, "discuss")
	require.NoError(t, err)

	comments, err := posts.AddComment(db, post.ID, commenter, "first!")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Commenter", comments[0].Name)
	assert.Equal(t, commenter.ID, comments[0].UserID)

	comments, err = posts.AddComment(db, post.ID, author, "thanks")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "thanks", comments[0].Text)

	_, err = posts.DeleteComment(db, post.ID, comments[1].ID, author.ID)
	assert.ErrorIs(t, err, posts.ErrNotAuthorized, "the post author cannot delete someone else's comment")

	_, err = posts.DeleteComment(db, post.ID, "00000000-0000-0000-0000-000000000000", commenter.ID)
	assert.ErrorIs(t, err, posts.ErrCommentNotFound)

	remaining, err := posts.DeleteComment(db, post.ID, comments[1].ID, commenter.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "thanks", remaining[0].Text)

	_, err = posts.AddComment(db, post.ID, commenter, " ")
	assert.Error(t, err)
}
