package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func disableCaptcha(t *testing.T, env *testEnv) {
	t.Helper()
	require.NoError(t, env.repo.SaveSettings(map[string]string{"enableCaptcha": "0"}))
}

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv(t)
	disableCaptcha(t, env)

	rec := env.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"username": "NewUser", "email": "new@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Contains(t, body, "user")
	user := body["user"].(map[string]any)
	// Имя приводится к нижнему регистру, хеш пароля не сериализуется.
	assert.Equal(t, "newuser", user["username"])
	assert.Equal(t, "user", user["role"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "PasswordHash")
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	disableCaptcha(t, env)

	cases := []struct {
		name string
		body map[string]any
		want string
	}{
		{"empty", map[string]any{"password": "password123"}, "Email и username не могут быть пустыми"},
		{"short username", map[string]any{"username": "ab", "email": "a@b.com", "password": "password123"}, "Имя пользователя должно быть от 3 до 30 символов"},
		{"short password", map[string]any{"username": "valid", "email": "a@b.com", "password": "123"}, "Пароль должен быть от 6 до 50 символов"},
		{"bad email", map[string]any{"username": "valid", "email": "not-an-email", "password": "password123"}, "Некорректный формат email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/auth/register", tc.body)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.want, decodeBody(t, rec)["error"])
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	env := newTestEnv(t)
	disableCaptcha(t, env)
	env.createUser(t, "taken")

	rec := env.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"username": "Taken", "email": "other@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Пользователь с таким именем или email уже существует", decodeBody(t, rec)["error"])
}

func TestRegisterDisabled(t *testing.T) {
	env := newTestEnv(t)
	disableCaptcha(t, env)
	require.NoError(t, env.repo.SaveSettings(map[string]string{"registrationEnabled": "0"}))

	rec := env.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"username": "newuser", "email": "new@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Регистрация временно отключена", decodeBody(t, rec)["error"])
}

func TestRegisterCaptchaFlow(t *testing.T) {
	env := newTestEnv(t)

	// Капча включена посевом, без ответа регистрация не проходит.
	rec := env.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"username": "newuser", "email": "new@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Введите ответ капчи", decodeBody(t, rec)["error"])

	c := env.captcha.Issue()
	rec = env.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"username": "newuser", "email": "new@example.com", "password": "password123",
		"captchaId": c.ID, "captchaAnswer": c.A + c.B + 1,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Неверный ответ капчи", decodeBody(t, rec)["error"])

	// Челлендж одноразовый: повтор с верным ответом уже истёк.
	rec = env.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"username": "newuser", "email": "new@example.com", "password": "password123",
		"captchaId": c.ID, "captchaAnswer": c.A + c.B,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Капча истекла. Обновите и попробуйте снова", decodeBody(t, rec)["error"])

	c = env.captcha.Issue()
	rec = env.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"username": "newuser", "email": "new@example.com", "password": "password123",
		"captchaId": c.ID, "captchaAnswer": c.A + c.B,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeBody(t, rec), "user")
}

func TestCaptchaAnswerAsString(t *testing.T) {
	env := newTestEnv(t)

	c := env.captcha.Issue()
	rec := env.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"username": "newuser", "email": "new@example.com", "password": "password123",
		"captchaId": c.ID, "captchaAnswer": fmt.Sprintf("%d", c.A+c.B),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeBody(t, rec), "user")
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)
	disableCaptcha(t, env)
	user := env.createUser(t, "someone")

	rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"username": "someone", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Contains(t, body, "user")
	assert.Equal(t, float64(user.ID), body["user"].(map[string]any)["id"])

	// Неверный пароль и неизвестное имя дают один и тот же ответ.
	for _, creds := range []map[string]any{
		{"username": "someone", "password": "wrongpass"},
		{"username": "ghost", "password": "password123"},
	} {
		rec = env.do(t, http.MethodPost, "/api/auth/login", creds)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Неверное имя пользователя или пароль", decodeBody(t, rec)["error"])
	}
}

func TestLoginBanned(t *testing.T) {
	env := newTestEnv(t)
	disableCaptcha(t, env)
	user := env.createUser(t, "troll")
	require.NoError(t, env.repo.ToggleBan(user.ID, "Спам", 1))

	rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"username": "troll", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["banned"])
	assert.Equal(t, "Ваш аккаунт заблокирован", body["error"])
	banInfo := body["banInfo"].(map[string]any)
	assert.Equal(t, "Спам", banInfo["reason"])
	assert.Equal(t, "admin", banInfo["bannedBy"])
}

func TestVerifyEndpoint(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "someone")

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/auth/verify?userId=%d", user.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["valid"])

	rec = env.do(t, http.MethodGet, "/api/auth/verify?userId=999", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["valid"])

	rec = env.do(t, http.MethodGet, "/api/auth/verify", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["valid"])
}

func TestVerifyBanned(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "troll")
	require.NoError(t, env.repo.ToggleBan(user.ID, "Спам", 1))

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/auth/verify?userId=%d", user.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["banned"])
	assert.NotContains(t, body, "banInfo")

	// POST-вариант дополняет ответ деталями блокировки.
	rec = env.do(t, http.MethodPost, "/api/auth/verify", map[string]any{"userId": user.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, true, body["banned"])
	assert.Equal(t, "Спам", body["banInfo"].(map[string]any)["reason"])
}
