package export

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

type Handler struct {
	service *Service
}

// NewHTTPHandler serves signed downloads of export files under
// /exports/files/{name}.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || !strings.Contains(r.URL.Path, "/files/") {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	h.handleDownload(w, r)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.EscapedPath(), "/")
	idx := strings.LastIndex(path, "/")
	if idx == -1 || idx == len(path)-1 {
		http.Error(w, "missing export file name", http.StatusBadRequest)
		return
	}
	fileName, err := url.PathUnescape(path[idx+1:])
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid export file name: %v", err), http.StatusBadRequest)
		return
	}
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if err := h.service.ValidateDownloadToken(fileName, token); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	file, err := h.service.OpenFile(fileName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	contentType := FormatCSV.MimeType()
	if strings.HasSuffix(fileName, "."+string(FormatXLSX)) {
		contentType = FormatXLSX.MimeType()
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", fileName))
	http.ServeContent(w, r, fileName, info.ModTime(), file)
}
