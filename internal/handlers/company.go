package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"manageros/internal/httpx"
	"manageros/internal/logostore"
	"manageros/internal/models"
	"manageros/internal/validation"
)

type CompanyHandler struct {
	DB    *gorm.DB
	Logos *logostore.Store
}

func NewCompanyHandler(db *gorm.DB, logos *logostore.Store) *CompanyHandler {
	return &CompanyHandler{DB: db, Logos: logos}
}

type companyReq struct {
	Nome            string `json:"nome"`
	CNPJ            string `json:"cnpj"`
	Endereco        string `json:"endereco"`
	Telefone        string `json:"telefone"`
	TelefoneCelular string `json:"telefone_celular"`
	TelefoneFixo    string `json:"telefone_fixo"`
	Email           string `json:"email"`
	// Logo is a data URI on writes; anything else leaves the stored file as is.
	Logo string `json:"logo"`
}

// Create: POST /api/empresas
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req companyReq
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

	company := models.Company{
		Nome:            req.Nome,
		CNPJ:            req.CNPJ,
		Endereco:        req.Endereco,
		Telefone:        req.Telefone,
		TelefoneCelular: req.TelefoneCelular,
		TelefoneFixo:    req.TelefoneFixo,
		Email:           req.Email,
	}
	if data, ok := decodeDataURI(req.Logo); ok {
		name, err := h.Logos.Put(data)
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_salvar_logo", nil)
			return
		}
		company.Logo = name
	}
	if err := h.DB.Create(&company).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_criar_empresa", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": company.ID, "message": "Empresa cadastrada com sucesso"})
}

// List: GET /api/empresas
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	var companies []models.Company
	if err := h.DB.Order("nome").Find(&companies).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_listar_empresas", nil)
		return
	}
	for i := range companies {
		h.attachLogo(&companies[i])
	}
	httpx.JSON(w, http.StatusOK, companies)
}

// Get: GET /api/empresas/{id}
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var company models.Company
	if err := h.DB.First(&company, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "empresa_nao_encontrada", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_carregar_empresa", nil)
		return
	}
	h.attachLogo(&company)
	httpx.JSON(w, http.StatusOK, company)
}

// Update: PUT /api/empresas/{id}. A new logo file is durably written before
// the database row points at it; only then is the previous file removed.
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var company models.Company
	if err := h.DB.First(&company, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "empresa_nao_encontrada", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_carregar_empresa", nil)
		return
	}
	var req companyReq
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

	oldLogo := company.Logo
	newLogo := oldLogo
	if data, ok := decodeDataURI(req.Logo); ok {
		name, err := h.Logos.Put(data)
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_salvar_logo", nil)
			return
		}
		newLogo = name
	}

	updates := map[string]any{
		"nome":             req.Nome,
		"cnpj":             req.CNPJ,
		"endereco":         req.Endereco,
		"telefone":         req.Telefone,
		"telefone_celular": req.TelefoneCelular,
		"telefone_fixo":    req.TelefoneFixo,
		"email":            req.Email,
		"logo":             newLogo,
	}
	if err := h.DB.Model(&models.Company{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		if newLogo != oldLogo {
			_ = h.Logos.Delete(newLogo)
		}
		httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_atualizar_empresa", nil)
		return
	}
	if newLogo != oldLogo && oldLogo != "" {
		_ = h.Logos.Delete(oldLogo)
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Empresa atualizada com sucesso"})
}

// Delete: DELETE /api/empresas/{id}. The logo file goes with the row.
func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var company models.Company
	if err := h.DB.First(&company, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "empresa_nao_encontrada", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_carregar_empresa", nil)
		return
	}
	if err := h.DB.Delete(&models.Company{}, id).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_deletar_empresa", nil)
		return
	}
	if company.Logo != "" {
		_ = h.Logos.Delete(company.Logo)
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Empresa deletada com sucesso"})
}

func (h *CompanyHandler) attachLogo(c *models.Company) {
	if c.Logo == "" {
		return
	}
	if b, err := h.Logos.Get(c.Logo); err == nil {
		c.LogoData = encodeDataURI(b)
	}
}
