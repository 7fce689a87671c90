package render

import (
	"bytes"
	"fmt"
	"image/png"
	"time"

	"github.com/phpdave11/gofpdf"

	"manageros/internal/services"
)

// Page geometry in points (A4 portrait). The break threshold and watermark
// placement mirror the layout the print shop signed off on.
const (
	pageWidth  = 595.28
	marginX    = 30.0
	tableWidth = 535.0
	rowHeight  = 18.0

	// If the next item row would start below this, a new page is opened.
	pageBreakY = 720.0

	watermarkWidth = 500.0
	watermarkY     = 500.0
	watermarkAlpha = 0.08

	footerY = 750.0
)

// Item table column geometry: fixed proportional widths so the numeric
// columns stay right-aligned and comparable down the page.
const (
	colDescX    = marginX
	colDescW    = 290.0
	colQtyX     = 320.0
	colQtyW     = 70.0
	colPriceX   = 400.0
	colPriceW   = 70.0
	colSubX     = 480.0
	colSubW     = 70.0
	cellPadY    = 4.0
	cellTextPad = 5.0
)

type rgb struct{ r, g, b int }

var (
	accent    = rgb{102, 126, 234} // #667eea
	darkText  = rgb{44, 62, 80}    // #2c3e50
	zebraFill = rgb{249, 249, 249} // #f9f9f9
	totalFill = rgb{232, 234, 246} // #e8eaf6
	grayText  = rgb{153, 153, 153} // #999999
)

// InvoicePDF renders the paginated order document and returns the bytes.
func InvoicePDF(agg *services.OrderAggregate) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// A corrupt logo file degrades to a logo-less document; it must never
	// fail the whole render.
	logoAspect := 0.0
	if len(agg.Logo) > 0 {
		if cfg, err := png.DecodeConfig(bytes.NewReader(agg.Logo)); err == nil && cfg.Width > 0 {
			logoAspect = float64(cfg.Height) / float64(cfg.Width)
			opt := gofpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader("logo", opt, bytes.NewReader(agg.Logo))
		}
	}
	hasLogo := logoAspect > 0

	// Low-opacity logo at a fixed offset; drawn on every page, including
	// pages opened mid-table.
	watermark := func() {
		if !hasLogo {
			return
		}
		h := watermarkWidth * logoAspect
		x := (pageWidth - watermarkWidth) / 2
		pdf.SetAlpha(watermarkAlpha, "Normal")
		pdf.ImageOptions("logo", x, watermarkY, watermarkWidth, h, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		pdf.SetAlpha(1.0, "Normal")
	}

	setColor := func(c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }

	label := func(x, y, w float64, text string) {
		pdf.SetFont("Helvetica", "B", 8)
		setColor(accent)
		pdf.SetXY(x, y)
		pdf.CellFormat(w, 10, tr(text), "", 0, "L", false, 0, "")
	}
	value := func(x, y, w float64, text string) {
		pdf.SetFont("Helvetica", "", 9)
		setColor(rgb{0, 0, 0})
		pdf.SetXY(x, y)
		pdf.CellFormat(w, 10, tr(orDash(text)), "", 0, "L", false, 0, "")
	}
	// wrapped value for fields that can span lines; returns the rendered height
	valueWrapped := func(x, y, w float64, text string) float64 {
		pdf.SetFont("Helvetica", "", 9)
		setColor(rgb{0, 0, 0})
		lines := pdf.SplitLines([]byte(tr(orDash(text))), w)
		pdf.SetXY(x, y)
		pdf.MultiCell(w, 11, tr(orDash(text)), "", "L", false)
		return float64(len(lines)) * 11
	}

	pdf.AddPage()
	watermark()

	y := 20.0

	// Centered logo on top, aspect preserved.
	if hasLogo {
		logoW := 150.0
		logoH := logoW * logoAspect
		pdf.ImageOptions("logo", (pageWidth-logoW)/2, y, logoW, logoH, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		y += logoH + 15
	}

	// Company name centered, separator below.
	pdf.SetFont("Helvetica", "B", 15)
	setColor(darkText)
	pdf.SetXY(marginX, y)
	pdf.CellFormat(tableWidth, 16, tr(agg.Company.Nome), "", 0, "C", false, 0, "")
	y += 16
	pdf.SetDrawColor(accent.r, accent.g, accent.b)
	pdf.SetLineWidth(1)
	pdf.Line(150, y, 445, y)
	y += 12

	// Company details in a two-column grid.
	const col1X, col2X = marginX, 310.0
	const col1W, col2W = 260.0, 255.0

	label(col1X, y, 35, "CNPJ:")
	value(col1X+35, y, col1W-35, agg.Company.CNPJ)
	label(col2X, y, 90, "Telefone Celular:")
	value(col2X+90, y, col2W-90, agg.Company.TelefoneCelular)
	y += 12

	addrY := y
	label(col1X, y, 50, "Endereço:")
	addrH := valueWrapped(col1X+50, y, col1W-50, agg.Company.Endereco)
	label(col2X, addrY, 90, "Telefone Fixo:")
	value(col2X+90, addrY, col2W-90, agg.Company.TelefoneFixo)
	y = addrY + addrH + 8

	label(col1X, y, 35, "Email:")
	value(col1X+35, y, col1W-35, agg.Company.Email)
	label(col2X, y, 90, "Telefone:")
	value(col2X+90, y, col2W-90, agg.Company.Telefone)
	y += 20

	// Order number block pinned to the top right.
	const osX, osW = 400.0, 165.0
	osY := 20.0
	pdf.SetFont("Helvetica", "B", 10)
	setColor(rgb{0, 0, 0})
	pdf.SetXY(osX, osY)
	pdf.CellFormat(osW, 11, tr("ORDEM DE SERVIÇO"), "", 0, "R", false, 0, "")
	osY += 12
	pdf.SetFont("Helvetica", "B", 16)
	setColor(accent)
	pdf.SetXY(osX, osY)
	pdf.CellFormat(osW, 17, tr("#"+agg.Order.Numero), "", 0, "R", false, 0, "")
	osY += 18
	pdf.SetFont("Helvetica", "", 8)
	setColor(rgb{0, 0, 0})
	pdf.SetXY(osX, osY)
	pdf.CellFormat(osW, 9, tr("Data: "+fmtDate(agg.Order.DataCriacao)), "", 0, "R", false, 0, "")
	osY += 10
	pdf.SetXY(osX, osY)
	pdf.CellFormat(osW, 9, tr("Status: "+StatusLabel(agg.Order.Status)), "", 0, "R", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginX, y, pageWidth-marginX, y)
	y += 15

	// Client block.
	pdf.SetFont("Helvetica", "B", 11)
	setColor(accent)
	pdf.SetXY(marginX, y)
	pdf.CellFormat(tableWidth, 12, tr("DADOS DO CLIENTE"), "", 0, "L", false, 0, "")
	y += 15

	clientY := y
	label(marginX, clientY, 260, "Nome:")
	value(marginX, clientY+12, 260, agg.Client.Nome)
	label(marginX, clientY+28, 260, "CPF/CNPJ:")
	value(marginX, clientY+40, 260, agg.Client.CpfCnpj)
	label(col2X, clientY, 260, "Telefone:")
	value(col2X, clientY+12, 260, agg.Client.Telefone)
	label(col2X, clientY+28, 260, "Email:")
	value(col2X, clientY+40, 260, agg.Client.Email)
	y = clientY + 60
	label(marginX, y, 60, "Endereço:")
	addrH = valueWrapped(marginX, y+12, tableWidth, agg.Client.Endereco)
	y += 12 + addrH + 10

	// Description kept without a background so the watermark shows through.
	if agg.Order.Descricao != "" {
		pdf.SetFont("Helvetica", "B", 11)
		setColor(accent)
		pdf.SetXY(marginX, y)
		pdf.CellFormat(tableWidth, 12, tr("DESCRIÇÃO DA ORDEM"), "", 0, "L", false, 0, "")
		y += 15
		y += valueWrapped(marginX, y, tableWidth, agg.Order.Descricao) + 10
	}

	// Item table.
	pdf.SetFont("Helvetica", "B", 11)
	setColor(rgb{0, 0, 0})
	pdf.SetXY(marginX, y)
	pdf.CellFormat(tableWidth, 12, tr("ITENS DA ORDEM"), "", 0, "L", false, 0, "")
	y += 15

	headerRow := func(atY float64) {
		pdf.SetFillColor(accent.r, accent.g, accent.b)
		pdf.Rect(marginX, atY, tableWidth, rowHeight, "F")
		pdf.SetFont("Helvetica", "B", 9)
		setColor(rgb{255, 255, 255})
		pdf.SetXY(colDescX+cellTextPad, atY+cellPadY)
		pdf.CellFormat(colDescW-cellTextPad, 10, tr("Descrição"), "", 0, "L", false, 0, "")
		pdf.SetXY(colQtyX, atY+cellPadY)
		pdf.CellFormat(colQtyW, 10, "Qtd", "", 0, "C", false, 0, "")
		pdf.SetXY(colPriceX, atY+cellPadY)
		pdf.CellFormat(colPriceW, 10, "Valor Unit.", "", 0, "R", false, 0, "")
		pdf.SetXY(colSubX, atY+cellPadY)
		pdf.CellFormat(colSubW, 10, "Subtotal", "", 0, "R", false, 0, "")
	}
	headerRow(y)
	y += rowHeight

	for i, item := range agg.Items {
		if y > pageBreakY {
			pdf.AddPage()
			watermark()
			y = 30
		}
		if i%2 == 0 {
			pdf.SetFillColor(zebraFill.r, zebraFill.g, zebraFill.b)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.Rect(marginX, y, tableWidth, rowHeight, "F")

		pdf.SetFont("Helvetica", "", 8)
		setColor(rgb{0, 0, 0})
		pdf.SetXY(colDescX+cellTextPad, y+cellPadY)
		pdf.CellFormat(colDescW-cellTextPad, 10, tr(item.Descricao), "", 0, "L", false, 0, "")
		pdf.SetXY(colQtyX, y+cellPadY)
		pdf.CellFormat(colQtyW, 10, fmtQty(item.Quantidade), "", 0, "C", false, 0, "")
		pdf.SetXY(colPriceX, y+cellPadY)
		pdf.CellFormat(colPriceW, 10, tr(brl(item.ValorUnitario)), "", 0, "R", false, 0, "")
		pdf.SetXY(colSubX, y+cellPadY)
		pdf.CellFormat(colSubW, 10, tr(brl(item.Subtotal)), "", 0, "R", false, 0, "")

		y += rowHeight
	}

	// Total row with distinct styling right after the last item.
	if y > pageBreakY {
		pdf.AddPage()
		watermark()
		y = 30
	}
	pdf.SetFillColor(totalFill.r, totalFill.g, totalFill.b)
	pdf.Rect(marginX, y, tableWidth, rowHeight, "F")
	pdf.SetFont("Helvetica", "B", 9)
	setColor(rgb{0, 0, 0})
	pdf.SetXY(colPriceX, y+cellPadY)
	pdf.CellFormat(colPriceW, 10, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.SetXY(colSubX, y+cellPadY)
	pdf.CellFormat(colSubW, 10, tr(brl(agg.Total())), "", 0, "R", false, 0, "")
	y += rowHeight + 15

	if agg.Order.Observacoes != "" {
		pdf.SetFont("Helvetica", "B", 11)
		setColor(rgb{0, 0, 0})
		pdf.SetXY(marginX, y)
		pdf.CellFormat(tableWidth, 12, tr("OBSERVAÇÕES"), "", 0, "L", false, 0, "")
		y += 14
		y += valueWrapped(marginX, y, 505, agg.Order.Observacoes)
	}

	// Footer only on the logical end of content, at a fixed offset.
	pdf.SetFont("Helvetica", "", 8)
	setColor(grayText)
	pdf.SetXY(marginX, footerY)
	pdf.CellFormat(505, 10, tr(fmt.Sprintf("Documento gerado em %s", fmtDateTime(time.Now()))), "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
