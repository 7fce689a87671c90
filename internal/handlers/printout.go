package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"

	"manageros/internal/httpx"
	"manageros/internal/render"
	"manageros/internal/services"
)

// PrintHandler serves the two printable forms of an order: a standalone HTML
// document for the browser's print dialog and a downloadable PDF.
type PrintHandler struct {
	Svc *services.OrderService
}

func NewPrintHandler(svc *services.OrderService) *PrintHandler { return &PrintHandler{Svc: svc} }

// HTML: GET /imprimir/{id}. Errors come back as a minimal HTML page since
// the browser opens this route directly in a new tab.
func (h *PrintHandler) HTML(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeHTMLNotFound(w)
		return
	}
	agg, err := h.Svc.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeHTMLNotFound(w)
			return
		}
		log.Printf("print html: order %d: %v", id, err)
		http.Error(w, "erro interno", http.StatusInternalServerError)
		return
	}

	// Render to a buffer first so a template failure never sends half a page.
	var buf bytes.Buffer
	if err := render.InvoiceHTML(&buf, agg); err != nil {
		log.Printf("print html: render order %d: %v", id, err)
		http.Error(w, "erro interno", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// PDF: GET /pdf/{id}.
func (h *PrintHandler) PDF(w http.ResponseWriter, r *http.Request) {
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
	pdf, err := render.InvoicePDF(agg)
	if err != nil {
		log.Printf("print pdf: order %d: %v", id, err)
		httpx.JSONError(w, http.StatusInternalServerError, "falha_ao_gerar_pdf", nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "ordem-servico-"+agg.Order.Numero+".pdf"))
	_, _ = w.Write(pdf)
}

func writeHTMLNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("<html><body><h1>Ordem não encontrada</h1></body></html>"))
}
