// Package pdf превращает коммерческое предложение в постраничный PDF.
// Рендер детерминирован: одинаковый вход даёт байт-в-байт одинаковый
// документ, дата создания PDF привязана к дате предложения.
package pdf

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/ignatzorin/kp-backend/internal/format"
	"github.com/ignatzorin/kp-backend/internal/models"
)

// Геометрия листа A4 в пунктах, колонки таблицы повторяют исходный макет.
const (
	pageWidth    = 595.28
	pageMargin   = 48.0
	contentWidth = pageWidth - 2*pageMargin

	qtyX   = 330.0
	priceX = 400.0
	totalX = 490.0

	itemColWidth = qtyX - pageMargin - 8
	descIndent   = 12.0
	descColWidth = qtyX - pageMargin - descIndent

	titleSize   = 20.0
	titleLineHt = 25.0
	bodySize    = 12.0
	bodyLineHt  = 15.0
	descSize    = 10.0
	descLineHt  = 13.0

	sectionGap = 14.0
	halfGap    = 7.0
	descGap    = 4.0
	rowGap     = 6.0

	uploadsURLPrefix = "/uploads"
)

// Renderer собирает PDF предложения. Безопасен для одновременного
// использования: всё состояние документа живёт внутри одного вызова Render.
type Renderer struct {
	fontsDir   string
	uploadsDir string
	currency   string
	client     *http.Client
}

// NewRenderer создаёт рендерер.
// fetchTimeout ограничивает сетевые загрузки картинок.
func NewRenderer(fontsDir, uploadsDir, currency string, fetchTimeout time.Duration) *Renderer {
	return &Renderer{
		fontsDir:   fontsDir,
		uploadsDir: uploadsDir,
		currency:   currency,
		client:     &http.Client{Timeout: fetchTimeout},
	}
}

// Render превращает предложение в PDF. Все предварительные проверки
// (существование предложения) — на вызывающем: после начала генерации
// ошибку клиенту уже не вернуть.
func (r *Renderer) Render(p *models.Proposal) ([]byte, error) {
	return r.draw(p, r.build(p))
}

// Filename возвращает имя файла для скачивания.
func Filename(p *models.Proposal) string {
	return p.ProposalNumber + ".pdf"
}

// newDocument создаёт пустой документ с нужной геометрией.
func newDocument(createdAt time.Time) *fpdf.Fpdf {
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)
	doc.SetCatalogSort(true)
	doc.SetCreationDate(createdAt.UTC())
	return doc
}

// draw рисует блоки сверху вниз одним проходом. Начертание передаётся
// каждой операции явно, вертикальный курсор — это Y документа.
func (r *Renderer) draw(p *models.Proposal, blocks []block) ([]byte, error) {
	doc := newDocument(p.CreatedAt)
	faces := resolveFonts(doc, r.fontsDir)
	if faces.family == "" {
		// Регистрация TrueType провалилась и документ испорчен —
		// начинаем заново со встроенным шрифтом.
		doc = newDocument(p.CreatedAt)
		faces = faceSet{family: "Helvetica"}
	}

	doc.AddPage()

	for _, b := range blocks {
		switch blk := b.(type) {
		case textBlock:
			r.drawText(doc, faces, blk)
		case gapBlock:
			doc.SetY(doc.GetY() + blk.height)
		case imageBlock:
			r.drawImage(doc, blk)
		case tableBlock:
			r.drawTable(doc, faces, blk)
		case totalBlock:
			r.drawTotal(doc, faces, blk)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: не удалось сформировать документ: %w", err)
	}

	return buf.Bytes(), nil
}

func (r *Renderer) drawText(doc *fpdf.Fpdf, faces faceSet, blk textBlock) {
	setFace(doc, faces, blk.bold, blk.size)
	doc.SetX(pageMargin)
	doc.MultiCell(contentWidth, blk.lineHt, faces.text(blk.text), "", "L", false)
}

// drawImage встраивает картинку во всю ширину контента, курсор уходит
// под нижний край.
func (r *Renderer) drawImage(doc *fpdf.Fpdf, blk imageBlock) {
	opts := fpdf.ImageOptions{ImageType: blk.imageType}
	doc.RegisterImageOptionsReader(blk.name, opts, bytes.NewReader(blk.data))
	doc.ImageOptions(blk.name, pageMargin, doc.GetY(), contentWidth, 0, true, opts, 0, "")
}

// drawTable рисует шапку и строки таблицы позиций. Высота строки
// считается по измеренной высоте переноса названия и описания, числовые
// колонки выравниваются по верхней границе строки.
func (r *Renderer) drawTable(doc *fpdf.Fpdf, faces faceSet, blk tableBlock) {
	_, pageHeight := doc.GetPageSize()
	bottom := pageHeight - pageMargin

	headerY := doc.GetY()
	setFace(doc, faces, true, bodySize)
	doc.Text(pageMargin, headerY+bodySize, faces.text("Позиция"))
	doc.Text(qtyX, headerY+bodySize, faces.text("Кол-во"))
	doc.Text(priceX, headerY+bodySize, faces.text("Цена"))
	doc.Text(totalX, headerY+bodySize, faces.text("Сумма"))
	doc.SetY(headerY + bodyLineHt + rowGap)

	for _, row := range blk.rows {
		name := faces.text(row.name)
		description := faces.text(row.description)

		setFace(doc, faces, true, bodySize)
		nameHeight := float64(len(doc.SplitText(name, itemColWidth))) * bodyLineHt

		rowHeight := nameHeight
		if description != "" {
			setFace(doc, faces, false, descSize)
			rowHeight += descGap + float64(len(doc.SplitText(description, descColWidth)))*descLineHt
		}

		y := doc.GetY()
		if y+rowHeight > bottom {
			doc.AddPage()
			y = doc.GetY()
		}

		setFace(doc, faces, false, bodySize)
		doc.Text(qtyX, y+bodySize, strconv.Itoa(row.quantity))
		doc.Text(priceX, y+bodySize, faces.text(format.Currency(row.unitPriceCents, r.currency)))
		doc.Text(totalX, y+bodySize, faces.text(format.Currency(row.totalCents, r.currency)))

		setFace(doc, faces, true, bodySize)
		doc.SetXY(pageMargin, y)
		doc.MultiCell(itemColWidth, bodyLineHt, name, "", "L", false)

		if description != "" {
			setFace(doc, faces, false, descSize)
			doc.SetTextColor(68, 68, 68)
			doc.SetXY(pageMargin+descIndent, y+nameHeight+descGap)
			doc.MultiCell(descColWidth, descLineHt, description, "", "L", false)
			doc.SetTextColor(0, 0, 0)
		}

		doc.SetY(y + rowHeight + rowGap)
	}
}

// drawTotal печатает строку «Итого» жирным у колонки суммы.
func (r *Renderer) drawTotal(doc *fpdf.Fpdf, faces faceSet, blk totalBlock) {
	setFace(doc, faces, true, bodySize)
	doc.SetX(totalX - 40)
	doc.MultiCell(pageWidth-pageMargin-(totalX-40), bodyLineHt, faces.text(blk.text), "", "L", false)
}

// setFace выставляет шрифт для конкретной операции рисования.
func setFace(doc *fpdf.Fpdf, faces faceSet, bold bool, size float64) {
	style := ""
	if bold {
		style = "B"
	}
	doc.SetFont(faces.family, style, size)
}
