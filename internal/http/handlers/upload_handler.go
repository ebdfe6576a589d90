package handlers

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"

	"github.com/ignatzorin/kp-backend/internal/dto"
	"github.com/ignatzorin/kp-backend/internal/storage"
)

// Расширения по фактическому типу содержимого. Тип определяется по
// сигнатуре файла, заявленному имени и Content-Type не доверяем.
// Набор совпадает с форматами, которые умеет встраивать PDF рендерер:
// принять картинку, которая никогда не попадёт в документ, хуже отказа.
var allowedImageExtensions = map[string]string{
	"jpg": ".jpg",
	"png": ".png",
	"gif": ".gif",
}

// UploadHandler принимает картинки для обложек и иллюстраций предложений.
type UploadHandler struct {
	storage *storage.ImageStorage
}

// NewUploadHandler создаёт новый хэндлер.
func NewUploadHandler(store *storage.ImageStorage) *UploadHandler {
	return &UploadHandler{storage: store}
}

// Upload обрабатывает POST /api/uploads.
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "файл не передан"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "не удалось прочитать файл"})
		return
	}
	defer file.Close()

	// Для определения типа достаточно первых байт файла.
	head := make([]byte, 261)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": "не удалось прочитать файл"})
		return
	}
	head = head[:n]

	kind, err := filetype.Match(head)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "не удалось определить тип файла"})
		return
	}

	ext, ok := allowedImageExtensions[kind.Extension]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "допустимы только изображения (jpg, png, gif)"})
		return
	}

	reader := io.MultiReader(bytes.NewReader(head), file)
	fileName, size, err := h.storage.Save(c.Request.Context(), ext, reader)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.UploadResponse{
		URL:  "/uploads/" + fileName,
		Size: size,
	})
}
