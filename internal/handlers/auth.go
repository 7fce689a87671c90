package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"manageros/internal/auth"
	"manageros/internal/httpx"
	"manageros/internal/models"
	"manageros/internal/validation"
)

type AuthHandler struct {
	DB *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler { return &AuthHandler{DB: db} }

type loginReq struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

type registerReq struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Senha string `json:"senha"`
	Role  string `json:"role"`
}

// Login: POST /api/auth/login. On success the signed session token is both
// set as a cookie and returned in the body for Bearer-style clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("email", req.Email, v)
	validation.Required("senha", req.Senha, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusUnauthorized, "credenciais_invalidas", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "falha_no_login", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Senha), []byte(req.Senha)) != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "credenciais_invalidas", nil)
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"id":    user.ID,
		"email": user.Email,
		"nome":  user.Nome,
		"role":  user.Role,
		"token": auth.TokenFor(user.ID),
	})
}

// Register: POST /api/auth/register (admin only, enforced by the router).
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("nome", req.Nome, v)
	validation.Required("email", req.Email, v)
	validation.Required("senha", req.Senha, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	role := req.Role
	if role != models.RoleAdmin {
		role = models.RoleUser
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_criar_usuario", nil)
		return
	}
	user := models.User{Nome: req.Nome, Email: req.Email, Senha: string(hash), Role: role}
	if err := h.DB.Create(&user).Error; err != nil {
		if isDuplicate(err) {
			httpx.JSONError(w, http.StatusBadRequest, "email_ja_cadastrado", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_criar_usuario", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": user.ID, "message": "Usuário cadastrado com sucesso"})
}

// Me: GET /api/auth/me returns the session user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "nao_autenticado", nil)
		return
	}
	var user models.User
	if err := h.DB.First(&user, uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			auth.ClearSession(w)
			httpx.JSONError(w, http.StatusUnauthorized, "nao_autenticado", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_carregar_usuario", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// Logout: POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Sessão encerrada"})
}

// isDuplicate covers both sqlite ("UNIQUE constraint failed") and postgres
// ("duplicate key value") unique violations without driver-specific imports.
func isDuplicate(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE") || strings.Contains(msg, "duplicate")
}
