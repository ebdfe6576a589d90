package pdf

import (
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
)

// faceSet — шрифтовая пара документа. Выбирается один раз и действует на
// весь документ: жирное начертание запрашивается стилем "B" той же семьи.
type faceSet struct {
	family   string
	embedded bool
}

// text готовит строку к отрисовке выбранной семьёй. Встроенная Helvetica
// работает с однобайтовой таблицей ширин, и руны за пределами ASCII в ней
// либо ломают измерение переносов, либо превращаются в мусорные байты.
// В деградированном режиме такие руны заменяются на '?'.
func (f faceSet) text(s string) string {
	if f.embedded {
		return s
	}

	runes := []rune(s)
	for i, r := range runes {
		if r > 127 {
			runes[i] = '?'
		}
	}
	return string(runes)
}

// fontCandidates перечисляет TrueType-семьи в порядке предпочтения.
// Обе должны корректно отображать кириллицу.
var fontCandidates = []struct {
	family  string
	regular string
	bold    string
}{
	{"DejaVu", "DejaVuSans.ttf", "DejaVuSans-Bold.ttf"},
	{"PTSans", "PTSans-Regular.ttf", "PTSans-Bold.ttf"},
}

// resolveFonts регистрирует первую доступную TrueType-семью из каталога
// шрифтов. Если ни одной нет, остаётся встроенная Helvetica — она не
// содержит кириллических глифов, это осознанно деградированный режим
// на самый крайний случай.
func resolveFonts(doc *fpdf.Fpdf, fontsDir string) faceSet {
	for _, candidate := range fontCandidates {
		regular := filepath.Join(fontsDir, candidate.regular)
		bold := filepath.Join(fontsDir, candidate.bold)
		if !fileExists(regular) || !fileExists(bold) {
			continue
		}

		doc.AddUTF8Font(candidate.family, "", regular)
		doc.AddUTF8Font(candidate.family, "B", bold)
		if doc.Err() {
			// Битый файл шрифта делает документ непригодным,
			// вызывающий пересоздаст его без TrueType.
			return faceSet{}
		}

		return faceSet{family: candidate.family, embedded: true}
	}

	return faceSet{family: "Helvetica"}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
