package db

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordViewDeduplicates(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	user := mustCreateUser(t, repo, "viewer", "viewer@example.com")
	threadID := mustCreateThread(t, repo, user.ID, "Тема")

	require.NoError(t, repo.RecordView(threadID, "user:1"))
	require.NoError(t, repo.RecordView(threadID, "user:1"))
	require.NoError(t, repo.RecordView(threadID, "user:2"))
	require.NoError(t, repo.RecordView(threadID, "anon:127.0.0.1:curl"))

	thread, err := repo.GetThreadByID(threadID)
	require.NoError(t, err)
	// Три уникальных ключа, повтор не считается.
	assert.Equal(t, int64(3), thread.Views)
}

func TestRecordViewUnknownThread(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	assert.ErrorIs(t, repo.RecordView(999, "user:1"), ErrNotFound)
}

func TestToggleLike(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	author := mustCreateUser(t, repo, "author", "author@example.com")
	liker := mustCreateUser(t, repo, "liker", "liker@example.com")
	threadID := mustCreateThread(t, repo, author.ID, "Тема")
	postID, err := repo.AddReply(threadID, author.ID, "ответ")
	require.NoError(t, err)

	likes, liked, err := repo.ToggleLike(postID, liker.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(1), likes)

	// Повторный вызов снимает лайк.
	likes, liked, err = repo.ToggleLike(postID, liker.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, int64(0), likes)

	likes, liked, err = repo.ToggleLike(postID, liker.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(1), likes)
}

func TestToggleLikeUnknownPost(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	user := mustCreateUser(t, repo, "liker", "liker@example.com")
	_, _, err := repo.ToggleLike(999, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleReaction(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	author := mustCreateUser(t, repo, "author", "author@example.com")
	other := mustCreateUser(t, repo, "other", "other@example.com")
	threadID := mustCreateThread(t, repo, author.ID, "Тема")
	postID, err := repo.AddReply(threadID, author.ID, "ответ")
	require.NoError(t, err)

	summary, err := repo.ToggleReaction(postID, author.ID, "fire")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"fire": 1}, summary)

	summary, err = repo.ToggleReaction(postID, other.ID, "fire")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"fire": 2}, summary)

	// Одна и та же пара пользователь+эмодзи снимается повтором, разные
	// эмодзи живут независимо.
	summary, err = repo.ToggleReaction(postID, author.ID, "heart")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"fire": 2, "heart": 1}, summary)

	summary, err = repo.ToggleReaction(postID, author.ID, "fire")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"fire": 1, "heart": 1}, summary)
}

func TestReactionsForPosts(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	author := mustCreateUser(t, repo, "author", "author@example.com")
	threadID := mustCreateThread(t, repo, author.ID, "Тема")
	first, err := repo.AddReply(threadID, author.ID, "раз")
	require.NoError(t, err)
	second, err := repo.AddReply(threadID, author.ID, "два")
	require.NoError(t, err)

	_, err = repo.ToggleReaction(first, author.ID, "fire")
	require.NoError(t, err)

	result, err := repo.ReactionsForPosts([]int64{first, second, 999})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"fire": 1}, result[strconv.FormatInt(first, 10)])
	assert.NotContains(t, result, strconv.FormatInt(second, 10))
	assert.NotContains(t, result, "999")

	empty, err := repo.ReactionsForPosts(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGrantRep(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	author := mustCreateUser(t, repo, "author", "author@example.com")
	fan := mustCreateUser(t, repo, "fan", "fan@example.com")
	threadID := mustCreateThread(t, repo, author.ID, "Тема")
	postID, err := repo.AddReply(threadID, author.ID, "ответ")
	require.NoError(t, err)

	reputation, err := repo.GrantRep(postID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reputation)

	// Повторная выдача тем же пользователем запрещена.
	_, err = repo.GrantRep(postID, fan.ID)
	assert.ErrorIs(t, err, ErrAlreadyGranted)

	updated, err := repo.GetUserByID(author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.Reputation)
}

func TestGrantRepSelf(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	author := mustCreateUser(t, repo, "author", "author@example.com")
	threadID := mustCreateThread(t, repo, author.ID, "Тема")
	postID, err := repo.AddReply(threadID, author.ID, "ответ")
	require.NoError(t, err)

	_, err = repo.GrantRep(postID, author.ID)
	assert.ErrorIs(t, err, ErrSelfGrant)

	_, err = repo.GrantRep(999, author.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
