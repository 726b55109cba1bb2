package bridge

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/redgrab-cli/redgrab/key"
	"github.com/redgrab-cli/redgrab/log"
	"github.com/spf13/viper"
)

// Handler serves bridge messages over HTTP.
type Handler struct {
	dispatcher *Dispatcher
	validator  *validator.Validate
}

// NewHandler builds the HTTP surface over a dispatcher.
func NewHandler(dispatcher *Dispatcher) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		validator:  validator.New(),
	}
}

// Router mounts every bridge endpoint.
func (h *Handler) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/download", h.download)
		r.Post("/scan", h.scan)
		r.Post("/highlight", h.highlight)
		r.Post("/load-more", h.loadMore)
		r.Get("/status", h.status)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

// Serve blocks on the configured listen address.
func (h *Handler) Serve() error {
	address := viper.GetString(key.ServeAddress)
	log.Infof("bridge listening on %s", address)

	return http.ListenAndServe(address, h.Router())
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	var request DownloadRequest
	if !h.decode(w, r, &request) {
		return
	}

	writeJSON(w, http.StatusOK, h.dispatcher.Download(r.Context(), request))
}

func (h *Handler) scan(w http.ResponseWriter, r *http.Request) {
	var request ScanRequest
	if !h.decode(w, r, &request) {
		return
	}

	response, err := h.dispatcher.Scan(r.Context(), request)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) highlight(w http.ResponseWriter, r *http.Request) {
	var request HighlightRequest
	if !h.decode(w, r, &request) {
		return
	}

	h.dispatcher.Highlight(request)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) loadMore(w http.ResponseWriter, r *http.Request) {
	var request LoadMoreRequest
	if !h.decode(w, r, &request) {
		return
	}

	h.dispatcher.LoadMore(request)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.dispatcher.Status())
}

// decode unmarshals and validates a request body, answering 400 itself
// when either step fails.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validator.Struct(into); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warnf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
