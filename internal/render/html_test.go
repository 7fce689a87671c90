package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"manageros/internal/models"
	"manageros/internal/services"
)

func sampleAggregate() *services.OrderAggregate {
	return &services.OrderAggregate{
		Order: models.Order{
			ID:          1,
			Numero:      "OS-20250415-0001",
			Status:      models.OrderStatusOpen,
			DataCriacao: time.Date(2025, 4, 15, 10, 0, 0, 0, time.UTC),
			Descricao:   "Revisão completa",
			Observacoes: "Retirada na sexta",
		},
		Company: models.Company{Nome: "Oficina Central", CNPJ: "12.345.678/0001-90", Email: "contato@oficina.com"},
		Client:  models.Client{Nome: "João da Silva", CpfCnpj: "123.456.789-00"},
		Items: []models.OrderItem{
			{Descricao: "Troca de óleo", Quantidade: 2, ValorUnitario: 10, Subtotal: 20},
			{Descricao: "Filtro", Quantidade: 1, ValorUnitario: 5, Subtotal: 5},
		},
	}
}

func TestInvoiceHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := InvoiceHTML(&buf, sampleAggregate()); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"OS-20250415-0001",
		"Oficina Central",
		"João da Silva",
		"Troca de óleo",
		"R$ 25.00",
		"Revisão completa",
		"Retirada na sexta",
		"Aberta",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "data:image/png") {
		t.Error("logo rendered without logo bytes")
	}
}

func TestInvoiceHTMLWithLogo(t *testing.T) {
	agg := sampleAggregate()
	agg.Logo = testPNG(t, 4, 4)

	var buf bytes.Buffer
	if err := InvoiceHTML(&buf, agg); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "data:image/png;base64,") {
		t.Error("logo data URI missing")
	}
}

func TestInvoiceHTMLEscapesUserInput(t *testing.T) {
	agg := sampleAggregate()
	agg.Client.Nome = `<script>alert("x")</script>`

	var buf bytes.Buffer
	if err := InvoiceHTML(&buf, agg); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(buf.String(), "<script>alert") {
		t.Error("client name not escaped")
	}
}

func TestStatusLabel(t *testing.T) {
	cases := map[string]string{
		"aberta":       "Aberta",
		"em_andamento": "Em andamento",
		"concluida":    "Concluída",
		"cancelada":    "Cancelada",
		"outro":        "outro",
	}
	for in, want := range cases {
		if got := StatusLabel(in); got != want {
			t.Errorf("StatusLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
