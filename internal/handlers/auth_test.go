package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"manageros/internal/auth"
	"manageros/internal/models"
)

func seedUser(t *testing.T, db *gorm.DB, email, password, role string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := models.User{Nome: "Teste", Email: email, Senha: string(hash), Role: role}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestLoginSuccess(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "admin@test", "segredo", models.RoleAdmin)
	h := NewAuthHandler(db)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"admin@test","senha":"segredo"}`))
	w := httptest.NewRecorder()
	h.Login(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	got := decodeBody(t, w)
	if got["role"] != models.RoleAdmin || got["email"] != "admin@test" {
		t.Fatalf("unexpected body: %v", got)
	}
	tok, _ := got["token"].(string)
	if uid, ok := auth.ParseToken(tok); !ok || uid != user.ID {
		t.Fatalf("returned token invalid: %q", tok)
	}
	if len(w.Result().Cookies()) == 0 {
		t.Fatal("session cookie not set")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "u@test", "certa", models.RoleUser)
	h := NewAuthHandler(db)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"u@test","senha":"errada"}`))
	w := httptest.NewRecorder()
	h.Login(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"ninguem@test","senha":"x"}`))
	w := httptest.NewRecorder()
	h.Login(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
}

func TestRegisterCreatesUserRoleDefaultsToUser(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db)

	body := `{"nome":"Novo","email":"novo@test","senha":"senha123","role":"superuser"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Register(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var user models.User
	if err := db.Where("email = ?", "novo@test").First(&user).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if user.Role != models.RoleUser {
		t.Fatalf("unknown role must fall back to user, got %q", user.Role)
	}
	if user.Senha == "senha123" {
		t.Fatal("password stored in clear")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "dup@test", "x", models.RoleUser)
	h := NewAuthHandler(db)

	body := `{"nome":"Outro","email":"dup@test","senha":"y"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Register(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "email_ja_cadastrado") {
		t.Fatalf("unexpected error body: %s", w.Body.String())
	}
}

func TestMeReturnsSessionUser(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "me@test", "x", models.RoleUser)
	h := NewAuthHandler(db)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), user.ID))
	w := httptest.NewRecorder()
	h.Me(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	got := decodeBody(t, w)
	if got["email"] != "me@test" {
		t.Fatalf("unexpected body: %v", got)
	}
	if _, leaked := got["senha"]; leaked {
		t.Fatal("password hash leaked in response")
	}
}

func TestUserDeleteRefusesAdmins(t *testing.T) {
	db := setupTestDB(t)
	admin := seedUser(t, db, "admin@test", "x", models.RoleAdmin)
	plain := seedUser(t, db, "user@test", "x", models.RoleUser)
	h := NewUserHandler(db)

	w := httptest.NewRecorder()
	h.Delete(w, withID(httptest.NewRequest(http.MethodDelete, "/api/usuarios/1", nil), admin.ID))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin target got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.Delete(w, withID(httptest.NewRequest(http.MethodDelete, "/api/usuarios/2", nil), plain.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for plain user got %d", w.Code)
	}
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 remaining user got %d", count)
	}
}
