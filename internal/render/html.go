package render

import (
	"encoding/base64"
	"html/template"
	"io"
	"time"

	"manageros/internal/services"
)

var invoiceTpl = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"brl":         brl,
	"qty":         fmtQty,
	"date":        fmtDate,
	"datetime":    fmtDateTime,
	"orDash":      orDash,
	"statusLabel": StatusLabel,
}).Parse(invoiceHTML))

type invoicePage struct {
	*services.OrderAggregate
	LogoURI     template.URL
	Total       float64
	GeneratedAt time.Time
}

// InvoiceHTML writes the printable order document. It is a pure function of
// the aggregate: the logo bytes are already resolved by the aggregate builder.
func InvoiceHTML(w io.Writer, agg *services.OrderAggregate) error {
	page := invoicePage{
		OrderAggregate: agg,
		Total:          agg.Total(),
		GeneratedAt:    time.Now(),
	}
	if len(agg.Logo) > 0 {
		// html/template filters data: URLs by default; the payload is
		// re-encoded from stored bytes, not caller input.
		page.LogoURI = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(agg.Logo))
	}
	return invoiceTpl.Execute(w, page)
}

// StatusLabel maps a stored status to its display form.
func StatusLabel(s string) string {
	switch s {
	case "aberta":
		return "Aberta"
	case "em_andamento":
		return "Em andamento"
	case "concluida":
		return "Concluída"
	case "cancelada":
		return "Cancelada"
	}
	return s
}

const invoiceHTML = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Ordem de Serviço {{.Order.Numero}}</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; padding: 15px; background-color: white; color: #333; line-height: 1.6; }
  .container { max-width: 900px; margin: 0 auto; padding: 30px; }
  .header { margin-bottom: 30px; border-bottom: 2px solid #667eea; padding-bottom: 15px; }
  .header-top { display: flex; justify-content: space-between; align-items: flex-start; margin-bottom: 10px; }
  .logo { max-width: 80px; max-height: 80px; object-fit: contain; }
  .company-info { flex: 1; margin-left: 15px; }
  .company-info h1 { margin: 0 0 5px 0; color: #2c3e50; font-size: 16px; font-weight: 700; }
  .company-details p { margin: 1px 0; color: #555; font-size: 10px; line-height: 1.3; }
  .order-number { text-align: right; }
  .order-number .caption { font-size: 12px; color: #666; font-weight: 600; margin-bottom: 6px; text-transform: uppercase; }
  .order-number .value { font-size: 26px; color: #667eea; font-weight: 700; }
  .section { margin-bottom: 25px; page-break-inside: avoid; }
  .section-title { background-color: #667eea; color: white; padding: 10px 15px; margin-bottom: 15px; font-weight: 600; font-size: 13px; text-transform: uppercase; letter-spacing: 0.5px; }
  .info-grid { display: grid; grid-template-columns: 1fr 1fr; gap: 15px; margin-bottom: 15px; }
  .info-block { padding: 12px; background-color: #f8f9fa; border-left: 3px solid #667eea; }
  .info-block label { font-weight: 600; color: #2c3e50; display: block; margin-bottom: 4px; font-size: 12px; }
  .info-block p { margin: 0; color: #555; font-size: 13px; }
  table { width: 100%; border-collapse: collapse; margin: 15px 0; font-size: 12px; }
  th { background-color: #667eea; color: white; padding: 10px; text-align: left; font-weight: 600; border: 1px solid #667eea; text-transform: uppercase; font-size: 11px; }
  td { border: 1px solid #ddd; padding: 9px 10px; background-color: white; }
  tbody tr:nth-child(even) td { background-color: #f9f9f9; }
  .total-row td { background-color: #f0f0f0 !important; font-weight: 600; border: 1px solid #667eea; padding: 11px 10px; }
  .footer { margin-top: 30px; padding-top: 15px; border-top: 1px solid #ddd; text-align: center; color: #999; font-size: 10px; }
  @media print {
    body { padding: 0; }
    .container { max-width: 100%; padding: 20px; }
    .section, table { page-break-inside: avoid; }
    .footer { display: none; }
  }
</style>
</head>
<body>
<div class="container">
  <div class="header">
    <div class="header-top">
      {{if .LogoURI}}<img src="{{.LogoURI}}" alt="Logo" class="logo">{{end}}
      <div class="company-info">
        <h1>{{.Company.Nome}}</h1>
      </div>
      <div class="order-number">
        <div class="caption">Ordem de Serviço</div>
        <div class="value">{{.Order.Numero}}</div>
      </div>
    </div>
    <div class="company-details" style="margin-top: 8px;">
      <p><strong>CNPJ:</strong> {{orDash .Company.CNPJ}}</p>
      <p><strong>Endereço:</strong> {{orDash .Company.Endereco}}</p>
      <p><strong>Telefone Celular:</strong> {{orDash .Company.TelefoneCelular}}</p>
      <p><strong>Telefone Fixo:</strong> {{orDash .Company.TelefoneFixo}}</p>
      <p><strong>Telefone:</strong> {{orDash .Company.Telefone}}</p>
      <p><strong>Email:</strong> {{orDash .Company.Email}}</p>
    </div>
  </div>

  <div class="section">
    <div class="section-title">Informações da Ordem</div>
    <div class="info-grid">
      <div class="info-block">
        <label>Data de Criação:</label>
        <p>{{date .Order.DataCriacao}}</p>
      </div>
      <div class="info-block">
        <label>Status:</label>
        <p>{{statusLabel .Order.Status}}</p>
      </div>
    </div>
  </div>

  <div class="section">
    <div class="section-title">Dados do Cliente</div>
    <div class="info-grid">
      <div class="info-block">
        <label>Nome:</label>
        <p>{{.Client.Nome}}</p>
      </div>
      <div class="info-block">
        <label>CPF/CNPJ:</label>
        <p>{{orDash .Client.CpfCnpj}}</p>
      </div>
      <div class="info-block">
        <label>Telefone:</label>
        <p>{{orDash .Client.Telefone}}</p>
      </div>
      <div class="info-block">
        <label>Email:</label>
        <p>{{orDash .Client.Email}}</p>
      </div>
    </div>
    <div class="info-block">
      <label>Endereço:</label>
      <p>{{orDash .Client.Endereco}}</p>
    </div>
  </div>

  {{if .Order.Descricao}}
  <div class="section">
    <div class="section-title">Descrição da Ordem</div>
    <p style="color: #555; line-height: 1.6;">{{.Order.Descricao}}</p>
  </div>
  {{end}}

  <div class="section">
    <div class="section-title">Itens da Ordem</div>
    <table>
      <thead>
        <tr>
          <th>Descrição</th>
          <th style="text-align: center;">Quantidade</th>
          <th style="text-align: right;">Valor Unitário</th>
          <th style="text-align: right;">Subtotal</th>
        </tr>
      </thead>
      <tbody>
        {{range .Items}}
        <tr>
          <td>{{.Descricao}}</td>
          <td style="text-align: center;">{{qty .Quantidade}}</td>
          <td style="text-align: right;">{{brl .ValorUnitario}}</td>
          <td style="text-align: right;">{{brl .Subtotal}}</td>
        </tr>
        {{end}}
        <tr class="total-row">
          <td colspan="3" style="text-align: right;">TOTAL:</td>
          <td style="text-align: right;">{{brl .Total}}</td>
        </tr>
      </tbody>
    </table>
  </div>

  {{if .Order.Observacoes}}
  <div class="section">
    <div class="section-title">Observações</div>
    <p style="color: #555; line-height: 1.6;">{{.Order.Observacoes}}</p>
  </div>
  {{end}}

  <div class="footer">
    <p>Documento gerado em {{datetime .GeneratedAt}}</p>
  </div>
</div>
</body>
</html>
`
