package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"manageros/internal/httpx"
	"manageros/internal/services"
	"manageros/internal/validation"
)

type OrderHandler struct {
	Svc *services.OrderService
}

func NewOrderHandler(svc *services.OrderService) *OrderHandler { return &OrderHandler{Svc: svc} }

// orderReq mirrors what the frontend sends. DataConclusao arrives as a bare
// date string from the form's date input, so it is parsed here rather than
// letting encoding/json reject it.
type orderReq struct {
	Numero        string               `json:"numero"`
	EmpresaID     uint                 `json:"empresa_id"`
	ClienteID     uint                 `json:"cliente_id"`
	Status        string               `json:"status"`
	DataConclusao string               `json:"data_conclusao"`
	Descricao     string               `json:"descricao"`
	Observacoes   string               `json:"observacoes"`
	Itens         []services.ItemInput `json:"itens"`
}

func (req *orderReq) toInput() (services.OrderInput, validation.Violations) {
	v := validation.Violations{}
	validation.RequiredID("empresa_id", req.EmpresaID, v)
	validation.RequiredID("cliente_id", req.ClienteID, v)
	in := services.OrderInput{
		Numero:      req.Numero,
		EmpresaID:   req.EmpresaID,
		ClienteID:   req.ClienteID,
		Status:      req.Status,
		Descricao:   req.Descricao,
		Observacoes: req.Observacoes,
		Itens:       req.Itens,
	}
	if req.DataConclusao != "" {
		t, err := time.Parse("2006-01-02", req.DataConclusao)
		if err != nil {
			t, err = time.Parse(time.RFC3339, req.DataConclusao)
		}
		if err != nil {
			v["data_conclusao"] = "data inválida"
		} else {
			in.DataConclusao = &t
		}
	}
	return in, v
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req orderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	in, v := req.toInput()
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	id, err := h.Svc.Create(in)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_criar_ordem", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "message": "Ordem de serviço criada com sucesso"})
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Svc.List()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_listar_ordens", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

// Get returns the flat shape the frontend's detail and print views consume:
// order fields plus the joined company and client columns and the item list.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	agg, err := h.Svc.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "ordem_nao_encontrada", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_carregar_ordem", nil)
		return
	}
	out := map[string]any{
		"id":               agg.Order.ID,
		"numero":           agg.Order.Numero,
		"empresa_id":       agg.Order.EmpresaID,
		"cliente_id":       agg.Order.ClienteID,
		"data_criacao":     agg.Order.DataCriacao,
		"data_conclusao":   agg.Order.DataConclusao,
		"status":           agg.Order.Status,
		"descricao":        agg.Order.Descricao,
		"observacoes":      agg.Order.Observacoes,
		"total":            agg.Order.Total,
		"empresa_nome":     agg.Company.Nome,
		"cnpj":             agg.Company.CNPJ,
		"endereco":         agg.Company.Endereco,
		"telefone":         agg.Company.Telefone,
		"telefone_celular": agg.Company.TelefoneCelular,
		"telefone_fixo":    agg.Company.TelefoneFixo,
		"email":            agg.Company.Email,
		"logo":             agg.Company.Logo,
		"cliente_nome":     agg.Client.Nome,
		"cpf_cnpj":         agg.Client.CpfCnpj,
		"cliente_endereco": agg.Client.Endereco,
		"cliente_telefone": agg.Client.Telefone,
		"cliente_email":    agg.Client.Email,
		"itens":            agg.Items,
	}
	if len(agg.Logo) > 0 {
		out["logoData"] = encodeDataURI(agg.Logo)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req orderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	in, v := req.toInput()
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.Svc.Update(id, in); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "ordem_nao_encontrada", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_atualizar_ordem", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Ordem de serviço atualizada com sucesso"})
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Svc.Delete(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "ordem_nao_encontrada", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_deletar_ordem", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Ordem de serviço deletada com sucesso"})
}
