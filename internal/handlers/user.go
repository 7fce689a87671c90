package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"manageros/internal/httpx"
	"manageros/internal/models"
)

// UserHandler covers account administration. Both routes sit behind the
// admin middleware.
type UserHandler struct {
	DB *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler { return &UserHandler{DB: db} }

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	var users []models.User
	if err := h.DB.Order("nome").Find(&users).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_listar_usuarios", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

// Delete refuses to remove admin accounts, so the system can never be left
// without one.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "usuario_nao_encontrado", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_carregar_usuario", nil)
		return
	}
	if user.IsAdmin() {
		httpx.JSONError(w, http.StatusForbidden, "nao_e_possivel_deletar_administrador", nil)
		return
	}
	if err := h.DB.Delete(&models.User{}, id).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_deletar_usuario", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Usuário deletado com sucesso"})
}
