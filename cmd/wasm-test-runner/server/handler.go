package server

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"
)

// Routes with fixed responses. The bin alias is the production asset path of the
// binary, so the harness page can be served unmodified.
const (
	RootPath     = "/"
	WASMPath     = "/hello_web.wasm"
	WASMBinAlias = "/tests/hello-web/hello_web_bin"
)

const wasmContentType = "application/wasm"

// Handler serves the harness page, the WASM binary and static files.
type Handler struct {
	htmlPath  string
	wasmPath  string
	staticDir string
	logger    *zap.Logger
}

// NewHandler returns a Handler. Requests outside the fixed routes are resolved
// under staticDir.
func NewHandler(htmlPath, wasmPath, staticDir string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		htmlPath:  htmlPath,
		wasmPath:  wasmPath,
		staticDir: staticDir,
		logger:    logger,
	}
}

// ServeHTTP routes r: exact root, exact WASM path, WASM alias, then static lookup.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch r.URL.Path {
	case RootPath:
		h.serveFile(w, r, h.htmlPath, ContentType(h.htmlPath))
	case WASMPath, WASMBinAlias:
		h.serveFile(w, r, h.wasmPath, wasmContentType)
	default:
		filePath := h.staticPath(r.URL.Path)
		h.serveFile(w, r, filePath, ContentType(filePath))
	}
}

// staticPath maps a request path to a file under the static directory.
// Cleaning against "/" keeps ".." segments from escaping it.
func (h *Handler) staticPath(urlPath string) string {
	return filepath.Join(h.staticDir, filepath.FromSlash(path.Clean("/"+urlPath)))
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, filePath, contentType string) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			h.logger.Warn("File not found", zap.String("path", filePath))
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("File not found"))
			return
		}
		code := errorCode(err)
		h.logger.Error("Server error", zap.String("path", filePath), zap.String("code", code), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Server Error: " + code))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	w.Write(content)
}

// ContentType picks the response type from the file extension; anything
// unrecognised is served as HTML.
func ContentType(filePath string) string {
	switch filepath.Ext(filePath) {
	case ".js":
		return "text/javascript"
	case ".css":
		return "text/css"
	case ".json":
		return "application/json"
	case ".wasm":
		return wasmContentType
	default:
		return "text/html"
	}
}
