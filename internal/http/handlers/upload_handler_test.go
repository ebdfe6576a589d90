package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadRequest(t *testing.T, fileName string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest("POST", "/uploads", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadHandler_NoFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &UploadHandler{storage: nil}
	r.POST("/uploads", handler.Upload)

	req, _ := http.NewRequest("POST", "/uploads", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadHandler_RejectsNonImage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &UploadHandler{storage: nil}
	r.POST("/uploads", handler.Upload)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "doc.txt", []byte("просто текст")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadHandler_RejectsWebp(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &UploadHandler{storage: nil}
	r.POST("/uploads", handler.Upload)

	// Рендерер не умеет встраивать webp, поэтому и загрузка отклоняется.
	webp := append([]byte("RIFF"), 0x24, 0x00, 0x00, 0x00)
	webp = append(webp, []byte("WEBPVP8 ")...)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "cover.webp", webp))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
