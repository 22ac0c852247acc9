package db

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadListOrder(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	user := mustCreateUser(t, repo, "author", "author@example.com")
	first := mustCreateThread(t, repo, user.ID, "Первая")
	second := mustCreateThread(t, repo, user.ID, "Вторая")
	third := mustCreateThread(t, repo, user.ID, "Третья")
	require.NoError(t, repo.TogglePinned(first))

	// Ответ во вторую тему делает её самой свежей.
	_, err := repo.AddReply(second, user.ID, "бамп")
	require.NoError(t, err)

	threads, err := repo.ThreadList("")
	require.NoError(t, err)
	require.Len(t, threads, 3)

	// Закреплённая тема первая, дальше по свежести обновления.
	assert.Equal(t, first, threads[0].ID)
	assert.Equal(t, second, threads[1].ID)
	assert.Equal(t, third, threads[2].ID)

	assert.Equal(t, "author", threads[0].AuthorName)
	assert.Equal(t, int64(1), threads[0].ReplyCount)
	assert.Equal(t, int64(2), threads[1].ReplyCount)
	require.NotNil(t, threads[1].LastPostTime)
}

func TestThreadListUnknownCategoryDoesNotFilter(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	user := mustCreateUser(t, repo, "author", "author@example.com")
	mustCreateThread(t, repo, user.ID, "Тема")

	threads, err := repo.ThreadList("no-such-slug")
	require.NoError(t, err)
	assert.Len(t, threads, 1)

	threads, err = repo.ThreadList("general")
	require.NoError(t, err)
	assert.Len(t, threads, 1)
}

func TestThreadDetail(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	author := mustCreateUser(t, repo, "author", "author@example.com")
	fan := mustCreateUser(t, repo, "fan", "fan@example.com")
	category, err := repo.GetCategoryBySlug("general")
	require.NoError(t, err)
	threadID, err := repo.CreateThread("Тема", category.ID, author.ID, "первый пост", []string{"go", "sqlite"})
	require.NoError(t, err)
	postID, err := repo.AddReply(threadID, author.ID, "ответ")
	require.NoError(t, err)
	_, err = repo.GrantRep(postID, fan.ID)
	require.NoError(t, err)

	detail, err := repo.ThreadDetail(threadID, fmt.Sprintf("user:%d", fan.ID))
	require.NoError(t, err)

	assert.Equal(t, "Тема", detail.Title)
	assert.Equal(t, "general", detail.CategorySlug)
	assert.Equal(t, []string{"go", "sqlite"}, detail.Tags)
	require.Len(t, detail.Posts, 2)
	assert.Equal(t, "первый пост", detail.Posts[0].Content)
	assert.False(t, detail.Posts[0].RepGiven)
	assert.True(t, detail.Posts[1].RepGiven)

	// Анонимный ключ не видит своих REP.
	detail, err = repo.ThreadDetail(threadID, "anon:127.0.0.1:curl")
	require.NoError(t, err)
	assert.False(t, detail.Posts[1].RepGiven)
}

func TestThreadDetailNotFound(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	_, err := repo.ThreadDetail(999, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProfile(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	author := mustCreateUser(t, repo, "author", "author@example.com")
	threadID := mustCreateThread(t, repo, author.ID, "Тема")
	_, err := repo.AddReply(threadID, author.ID, "ответ")
	require.NoError(t, err)

	profile, err := repo.Profile("author")
	require.NoError(t, err)
	assert.Equal(t, int64(2), profile.PostCount)
	assert.Equal(t, int64(1), profile.ThreadCount)
	assert.Equal(t, int64(0), profile.PluginCount)
	require.Len(t, profile.RecentActivity, 2)
	assert.Equal(t, "ответ", profile.RecentActivity[0].Title)
	assert.Equal(t, "Тема", profile.RecentActivity[0].ThreadTitle)

	_, err = repo.Profile("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListUsers(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	mustCreateUser(t, repo, "alpha", "alpha@example.com")
	mustCreateUser(t, repo, "beta", "beta@example.com")

	users, err := repo.ListUsers("")
	require.NoError(t, err)
	// Плюс посевные admin и kanekiq.
	assert.Len(t, users, 4)

	filtered, err := repo.ListUsers("alp")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "alpha", filtered[0].Username)
	// Свежесозданный пользователь считается онлайн.
	assert.Equal(t, 1, filtered[0].IsOnline)
}

func TestSiteStats(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	user := mustCreateUser(t, repo, "author", "author@example.com")
	mustCreateThread(t, repo, user.ID, "Тема")

	stats, err := repo.SiteStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Threads)
	assert.Equal(t, int64(1), stats.Posts)
	assert.Equal(t, int64(3), stats.Users)
	assert.Equal(t, int64(0), stats.Plugins)
}

func TestAdminThreads(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	user := mustCreateUser(t, repo, "author", "author@example.com")
	threadID := mustCreateThread(t, repo, user.ID, "Тема")
	require.NoError(t, repo.ToggleHidden(threadID))

	// Скрытые темы остаются видимыми в панели.
	threads, err := repo.AdminThreads()
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, 1, threads[0].Hidden)
	assert.Equal(t, "author", threads[0].AuthorName)
}
