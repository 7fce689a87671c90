package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"manageros/internal/httpx"
	"manageros/internal/models"
	"manageros/internal/validation"
)

type ClientHandler struct {
	DB *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler { return &ClientHandler{DB: db} }

type clientReq struct {
	Nome     string `json:"nome"`
	CpfCnpj  string `json:"cpf_cnpj"`
	Endereco string `json:"endereco"`
	Telefone string `json:"telefone"`
	Email    string `json:"email"`
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req clientReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("nome", req.Nome, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	client := models.Client{Nome: req.Nome, CpfCnpj: req.CpfCnpj, Endereco: req.Endereco, Telefone: req.Telefone, Email: req.Email}
	if err := h.DB.Create(&client).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_criar_cliente", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": client.ID, "message": "Cliente cadastrado com sucesso"})
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	var clients []models.Client
	if err := h.DB.Order("nome").Find(&clients).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_listar_clientes", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, clients)
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var client models.Client
	if err := h.DB.First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "cliente_nao_encontrado", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_carregar_cliente", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req clientReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("nome", req.Nome, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	updates := map[string]any{"nome": req.Nome, "cpf_cnpj": req.CpfCnpj, "endereco": req.Endereco, "telefone": req.Telefone, "email": req.Email}
	res := h.DB.Model(&models.Client{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_atualizar_cliente", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "cliente_nao_encontrado", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Cliente atualizado com sucesso"})
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	res := h.DB.Delete(&models.Client{}, id)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_deletar_cliente", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "cliente_nao_encontrado", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Cliente deletado com sucesso"})
}
