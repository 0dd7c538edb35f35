package receipt

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/des0late-dev/Receipt-Scanner-Movie-Search-App/internal/extraction"
)

// maxUploadSize bounds multipart uploads; phone photos run large.
const maxUploadSize = int64(50 << 20) // 50MB

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// jsonError writes a JSON error body the way the client screens expect
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// readUpload pulls the image out of a multipart form
func readUpload(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, "", err
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return data, uploadContentType(header), nil
}

func uploadContentType(header *multipart.FileHeader) string {
	contentType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// handleAnalyzeReceipt runs extraction on an uploaded image without
// persisting anything. The client shows the result and asks the user to
// confirm before saving.
func (s *Server) handleAnalyzeReceipt(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := readUpload(r)
	if err != nil {
		slog.Error("Error reading upload", "error", err)
		jsonError(w, "No file provided", http.StatusBadRequest)
		return
	}

	fields, err := s.service.Analyze(r.Context(), data, contentType)
	if err != nil {
		slog.Error("Error analyzing receipt", "error", err)
		jsonError(w, "Failed to analyze receipt", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(fields); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleSaveReceipt appends one record. When the form carries a "fields"
// value (the previously analyzed and confirmed data) it is saved as-is;
// otherwise extraction runs first.
func (s *Server) handleSaveReceipt(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := readUpload(r)
	if err != nil {
		slog.Error("Error reading upload", "error", err)
		jsonError(w, "No file provided", http.StatusBadRequest)
		return
	}

	var rec *Receipt
	if raw := r.FormValue("fields"); raw != "" {
		var fields extraction.Fields
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			jsonError(w, "Invalid fields payload", http.StatusBadRequest)
			return
		}
		rec, err = s.service.Save(&fields, data, contentType)
	} else {
		rec, err = s.service.Process(r.Context(), data, contentType)
	}
	if err != nil {
		slog.Error("Error saving receipt", "error", err)
		jsonError(w, "Failed to save receipt", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(rec); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleListReceipts returns the list view's current contents
func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	receipts := s.listView.Receipts()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(receipts); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleRefreshReceipts is the user-invoked reload
func (s *Server) handleRefreshReceipts(w http.ResponseWriter, r *http.Request) {
	s.listView.Refresh()
	s.handleListReceipts(w, r)
}

// handleGetReceiptImage returns the stored image for a receipt
func (s *Server) handleGetReceiptImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Receipt ID required", http.StatusBadRequest)
		return
	}
	data, err := s.service.GetImage(id)
	if err != nil {
		corsError(w, "Image not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Write(data)
}

// handleDeleteReceipt deletes one receipt. The client performs the
// confirmation dialog and signals it with confirm=true.
func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Receipt ID required", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("confirm") != "true" {
		jsonError(w, "Confirmation required", http.StatusBadRequest)
		return
	}
	if err := s.listView.DeleteOne(id); err != nil {
		slog.Error("Error deleting receipt", "id", id, "error", err)
		jsonError(w, "Failed to delete receipt", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteAllReceipts clears the store
func (s *Server) handleDeleteAllReceipts(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		jsonError(w, "Confirmation required", http.StatusBadRequest)
		return
	}
	if err := s.listView.DeleteAll(); err != nil {
		slog.Error("Error clearing receipts", "error", err)
		jsonError(w, "Failed to clear receipts", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleSearchMovies proxies the title-search endpoint
func (s *Server) handleSearchMovies(w http.ResponseWriter, r *http.Request) {
	if s.movies == nil {
		jsonError(w, "Movie search is not configured", http.StatusServiceUnavailable)
		return
	}

	query := r.URL.Query().Get("query")
	if strings.TrimSpace(query) == "" {
		jsonError(w, "Please enter a search term", http.StatusBadRequest)
		return
	}

	result, err := s.movies.Search(r.Context(), query)
	if err != nil {
		slog.Error("Error searching movies", "error", err)
		jsonError(w, "Failed to load movies", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleMovieDetails proxies the title-detail endpoint
func (s *Server) handleMovieDetails(w http.ResponseWriter, r *http.Request) {
	if s.movies == nil {
		jsonError(w, "Movie search is not configured", http.StatusServiceUnavailable)
		return
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		corsError(w, "Invalid movie ID", http.StatusBadRequest)
		return
	}

	details, err := s.movies.Details(r.Context(), id)
	if err != nil {
		slog.Error("Error loading movie details", "id", id, "error", err)
		jsonError(w, "Could not load details", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(details); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}
