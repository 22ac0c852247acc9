package db

import (
	"testing"

	"github.com/Kenkanekiqwe/yotaapp/internal/config"
	"github.com/Kenkanekiqwe/yotaapp/internal/models"
)

func setupTestRepo(t *testing.T) *Repository {
	repo, err := NewRepository(&config.Config{DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("Ошибка создания репозитория: %v", err)
	}
	if err := repo.RunMigrations(); err != nil {
		t.Fatalf("Ошибка миграций: %v", err)
	}
	return repo
}

func mustCreateUser(t *testing.T, repo *Repository, username, email string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: email}
	if err := repo.CreateUser(user, "password123"); err != nil {
		t.Fatalf("Ошибка создания пользователя %s: %v", username, err)
	}
	return user
}

func mustCreateThread(t *testing.T, repo *Repository, authorID int64, title string) int64 {
	t.Helper()
	category, err := repo.GetCategoryBySlug("general")
	if err != nil {
		t.Fatalf("Ошибка загрузки категории: %v", err)
	}
	threadID, err := repo.CreateThread(title, category.ID, authorID, "первый пост", nil)
	if err != nil {
		t.Fatalf("Ошибка создания темы: %v", err)
	}
	return threadID
}

func TestCreateUser(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	user := &models.User{
		Email:    "test@example.com",
		Username: "testuser",
	}

	err := repo.CreateUser(user, "password123")
	if err != nil {
		t.Errorf("Ошибка создания пользователя: %v", err)
	}
	if user.ID == 0 {
		t.Error("Ожидался ненулевой ID пользователя")
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	mustCreateUser(t, repo, "testuser", "test@example.com")
	dup := &models.User{Username: "TestUser", Email: "other@example.com"}
	if err := repo.CreateUser(dup, "password123"); err != ErrConflict {
		t.Errorf("Ожидался ErrConflict, получено: %v", err)
	}
}

func TestCheckPassword(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	user := mustCreateUser(t, repo, "testuser", "test@example.com")
	loaded, err := repo.GetUserByUsername("testuser")
	if err != nil {
		t.Fatalf("Ошибка загрузки пользователя: %v", err)
	}
	if loaded.ID != user.ID {
		t.Errorf("Ожидался ID %d, получено %d", user.ID, loaded.ID)
	}
	if !repo.CheckPassword(loaded, "password123") {
		t.Error("Верный пароль отклонён")
	}
	if repo.CheckPassword(loaded, "wrongpass") {
		t.Error("Неверный пароль принят")
	}
}

func TestSeedData(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	admin, err := repo.GetUserByUsername("admin")
	if err != nil {
		t.Fatalf("Админ не создан при инициализации: %v", err)
	}
	if admin.Role != "admin" {
		t.Errorf("Ожидалась роль admin, получено %s", admin.Role)
	}
	if _, err := repo.GetUserByUsername("kanekiq"); err != nil {
		t.Errorf("Пользователь kanekiq не создан при инициализации: %v", err)
	}
	if _, err := repo.GetCategoryBySlug("general"); err != nil {
		t.Errorf("Категория general не создана: %v", err)
	}
	if repo.GetSetting("enableCaptcha", "") != "1" {
		t.Error("Настройка enableCaptcha не создана")
	}
	if repo.GetSetting("registrationEnabled", "") != "1" {
		t.Error("Настройка registrationEnabled не создана")
	}
}

func TestCreateThread(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	user := mustCreateUser(t, repo, "author", "author@example.com")
	threadID := mustCreateThread(t, repo, user.ID, "Тестовая тема")

	thread, err := repo.GetThreadByID(threadID)
	if err != nil {
		t.Fatalf("Ошибка загрузки темы: %v", err)
	}
	if thread.Title != "Тестовая тема" {
		t.Errorf("Ожидался заголовок 'Тестовая тема', получено %q", thread.Title)
	}
}

func TestCreateThreadUnknownCategory(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	user := mustCreateUser(t, repo, "author", "author@example.com")
	if _, err := repo.CreateThread("Тема", 999, user.ID, "пост", nil); err != ErrNotFound {
		t.Errorf("Ожидался ErrNotFound, получено: %v", err)
	}
}

func TestAddReply(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	user := mustCreateUser(t, repo, "author", "author@example.com")
	threadID := mustCreateThread(t, repo, user.ID, "Тема")

	postID, err := repo.AddReply(threadID, user.ID, "ответ")
	if err != nil {
		t.Errorf("Ошибка добавления ответа: %v", err)
	}
	if postID == 0 {
		t.Error("Ожидался ненулевой ID поста")
	}
}

func TestAddReplyLockedThread(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	user := mustCreateUser(t, repo, "author", "author@example.com")
	threadID := mustCreateThread(t, repo, user.ID, "Тема")
	if err := repo.ToggleLocked(threadID); err != nil {
		t.Fatalf("Ошибка закрытия темы: %v", err)
	}

	if _, err := repo.AddReply(threadID, user.ID, "ответ"); err != ErrLocked {
		t.Errorf("Ожидался ErrLocked, получено: %v", err)
	}
}

func TestToggleBan(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	user := mustCreateUser(t, repo, "victim", "victim@example.com")
	if err := repo.ToggleBan(user.ID, "Спам", 1); err != nil {
		t.Fatalf("Ошибка блокировки: %v", err)
	}

	banned, _ := repo.GetUserByID(user.ID)
	if banned.Banned != 1 {
		t.Error("Пользователь не заблокирован")
	}
	info := repo.LatestBan(user.ID)
	if info.Reason != "Спам" {
		t.Errorf("Ожидалась причина 'Спам', получено %q", info.Reason)
	}

	// Повторный вызов снимает блокировку.
	if err := repo.ToggleBan(user.ID, "", 1); err != nil {
		t.Fatalf("Ошибка разблокировки: %v", err)
	}
	unbanned, _ := repo.GetUserByID(user.ID)
	if unbanned.Banned != 0 {
		t.Error("Пользователь не разблокирован")
	}
}

func TestCreatePlugin(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	user := mustCreateUser(t, repo, "author", "author@example.com")
	plugin := &models.Plugin{Name: "Test Plugin", Slug: "test-plugin", AuthorID: user.ID, Version: "1.0"}
	if err := repo.CreatePlugin(plugin); err != nil {
		t.Fatalf("Ошибка создания плагина: %v", err)
	}

	dup := &models.Plugin{Name: "Other", Slug: "test-plugin", AuthorID: user.ID, Version: "1.0"}
	if err := repo.CreatePlugin(dup); err != ErrConflict {
		t.Errorf("Ожидался ErrConflict, получено: %v", err)
	}
}

func TestCreateReport(t *testing.T) {
	repo := setupTestRepo(t)
	defer repo.Close()

	user := mustCreateUser(t, repo, "reporter", "reporter@example.com")
	report := &models.Report{Type: "post", ContentID: "1", ReporterID: user.ID, ContentSummary: "Спам"}
	if err := repo.CreateReport(report); err != nil {
		t.Errorf("Ошибка создания жалобы: %v", err)
	}
}
