package pdf

import (
	"fmt"

	"github.com/ignatzorin/kp-backend/internal/format"
	"github.com/ignatzorin/kp-backend/internal/models"
	"github.com/ignatzorin/kp-backend/internal/service"
)

// Документ собирается в два прохода: build подтягивает данные (включая
// фаллибельные загрузки картинок) и выдаёт упорядоченный список блоков,
// draw синхронно рисует их сверху вниз. Блоки не знают про курсор и
// шрифтовое состояние — это дело прохода рисования.
type block interface {
	blockMarker()
}

// textBlock — один абзац текста с фиксированным начертанием.
type textBlock struct {
	text   string
	bold   bool
	size   float64
	lineHt float64
}

// gapBlock — вертикальный отступ между секциями.
type gapBlock struct {
	height float64
}

// imageBlock — уже загруженная и проверенная картинка.
type imageBlock struct {
	name      string
	data      []byte
	imageType string
}

// tableRow — строка таблицы позиций с посчитанной суммой.
type tableRow struct {
	name           string
	description    string
	quantity       int
	unitPriceCents int64
	totalCents     int64
}

// tableBlock — таблица позиций вместе с итогом.
type tableBlock struct {
	rows          []tableRow
	subtotalCents int64
}

// totalBlock — строка «Итого».
type totalBlock struct {
	text string
}

func (textBlock) blockMarker()  {}
func (gapBlock) blockMarker()   {}
func (imageBlock) blockMarker() {}
func (tableBlock) blockMarker() {}
func (totalBlock) blockMarker() {}

// build превращает предложение в список блоков в порядке макета.
func (r *Renderer) build(p *models.Proposal) []block {
	blocks := make([]block, 0, 16)

	if p.CoverImageURL != nil {
		if data, imageType, ok := r.fetchImage(*p.CoverImageURL); ok {
			blocks = append(blocks, imageBlock{name: "cover", data: data, imageType: imageType})
			blocks = append(blocks, gapBlock{height: sectionGap})
		}
	}

	blocks = append(blocks,
		textBlock{text: p.Title, bold: true, size: titleSize, lineHt: titleLineHt},
		gapBlock{height: halfGap},
		textBlock{text: "Номер КП: " + p.ProposalNumber, size: bodySize, lineHt: bodyLineHt},
		textBlock{text: "Дата: " + format.Date(p.CreatedAt), size: bodySize, lineHt: bodyLineHt},
	)
	if p.ValidUntil != nil {
		blocks = append(blocks, textBlock{text: "Действительно до: " + format.Date(*p.ValidUntil), size: bodySize, lineHt: bodyLineHt})
	}
	blocks = append(blocks, gapBlock{height: sectionGap})

	if p.ClientName != nil || p.CompanyName != nil {
		blocks = append(blocks, textBlock{text: "Клиент:", bold: true, size: bodySize, lineHt: bodyLineHt})
		if p.ClientName != nil {
			blocks = append(blocks, textBlock{text: *p.ClientName, size: bodySize, lineHt: bodyLineHt})
		}
		if p.CompanyName != nil {
			blocks = append(blocks, textBlock{text: *p.CompanyName, size: bodySize, lineHt: bodyLineHt})
		}
		if p.ClientEmail != nil {
			blocks = append(blocks, textBlock{text: *p.ClientEmail, size: bodySize, lineHt: bodyLineHt})
		}
		blocks = append(blocks, gapBlock{height: sectionGap})
	}

	if p.Summary != nil {
		blocks = append(blocks,
			textBlock{text: "Краткое описание", bold: true, size: bodySize, lineHt: bodyLineHt},
			textBlock{text: *p.Summary, size: bodySize, lineHt: bodyLineHt},
			gapBlock{height: sectionGap},
		)
	}

	table := tableBlock{rows: make([]tableRow, 0, len(p.Items))}
	for i := range p.Items {
		item := &p.Items[i]
		row := tableRow{
			name:           fmt.Sprintf("%d. %s", i+1, item.Name),
			quantity:       item.Quantity,
			unitPriceCents: item.UnitPriceCents,
			totalCents:     int64(item.Quantity) * item.UnitPriceCents,
		}
		if item.Description != nil {
			row.description = *item.Description
		}
		table.rows = append(table.rows, row)
	}
	table.subtotalCents = service.CalculateTotals(p.Items)

	blocks = append(blocks,
		table,
		gapBlock{height: sectionGap},
		totalBlock{text: "Итого: " + format.Currency(table.subtotalCents, r.currency)},
	)

	if p.PreNotesImageURL != nil {
		if data, imageType, ok := r.fetchImage(*p.PreNotesImageURL); ok {
			blocks = append(blocks, gapBlock{height: sectionGap})
			blocks = append(blocks, imageBlock{name: "prenotes", data: data, imageType: imageType})
		}
	}

	if p.Notes != nil {
		blocks = append(blocks,
			gapBlock{height: sectionGap},
			textBlock{text: "Дополнительные условия", bold: true, size: bodySize, lineHt: bodyLineHt},
			textBlock{text: *p.Notes, size: bodySize, lineHt: bodyLineHt},
		)
	}

	return blocks
}
