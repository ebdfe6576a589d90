package pdf

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"

	"github.com/ignatzorin/kp-backend/internal/logger"
)

// maxImageBytes ограничивает размер подтягиваемой картинки.
const maxImageBytes = 20 << 20

// Типы картинок, которые умеет встраивать fpdf.
var imageTypes = map[string]string{
	"jpg": "JPG",
	"png": "PNG",
	"gif": "GIF",
}

// fetchImage достаёт картинку по URL предложения: корневой относительный
// путь читается из локального хранилища загрузок, абсолютный http(s) —
// по сети с таймаутом. Любой сбой — не ошибка рендера: картинка просто
// выпадает из документа.
func (r *Renderer) fetchImage(src string) ([]byte, string, bool) {
	data, err := r.readImageSource(src)
	if err != nil {
		if logger.Log != nil {
			logger.Log.WithError(err).WithField("src", src).Debug("pdf: картинка пропущена")
		}
		return nil, "", false
	}

	kind, err := filetype.Match(data)
	if err != nil {
		return nil, "", false
	}

	imageType, ok := imageTypes[kind.Extension]
	if !ok {
		return nil, "", false
	}

	// Проверяем, что картинка действительно декодируется: битые данные,
	// переданные напрямую в fpdf, портят весь документ.
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, "", false
	}

	return data, imageType, true
}

func (r *Renderer) readImageSource(src string) ([]byte, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		resp, err := r.client.Get(src)
		if err != nil {
			return nil, fmt.Errorf("pdf: загрузка картинки %s: %w", src, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("pdf: загрузка картинки %s: статус %d", src, resp.StatusCode)
		}

		// Читаем на байт больше лимита: обрезанная большая картинка
		// проходит проверку заголовка, но портит документ при встраивании.
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
		if err != nil {
			return nil, fmt.Errorf("pdf: чтение картинки %s: %w", src, err)
		}
		if int64(len(data)) > maxImageBytes {
			return nil, fmt.Errorf("pdf: картинка %s превышает лимит %d байт", src, maxImageBytes)
		}
		return data, nil
	}

	if strings.HasPrefix(src, "/") {
		// Корневые пути вида /uploads/... обслуживаются локальным
		// хранилищем загрузок.
		relative := strings.TrimPrefix(src, uploadsURLPrefix)
		if relative == src {
			return nil, fmt.Errorf("pdf: неизвестный локальный путь %s", src)
		}

		name := filepath.FromSlash(strings.TrimPrefix(relative, "/"))
		if !filepath.IsLocal(name) {
			// Путь с ".." выводит за пределы каталога загрузок.
			return nil, fmt.Errorf("pdf: недопустимый путь картинки %s", src)
		}

		path := filepath.Join(r.uploadsDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("pdf: чтение файла %s: %w", path, err)
		}
		return data, nil
	}

	return nil, fmt.Errorf("pdf: неподдерживаемый URL картинки %s", src)
}
