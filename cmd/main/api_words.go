package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/CTAG07/wordweaver/pkg/markov"
	"github.com/CTAG07/wordweaver/pkg/registry"
	"golang.org/x/sync/semaphore"
)

const (
	// maxWordsPerRequest bounds the n parameter of /api/words.
	maxWordsPerRequest = 100
	// maxWordLength caps every word the API generates, and is the default max_len.
	maxWordLength = 64
)

// WordsAPI holds the dependencies for the word generation API handlers.
type WordsAPI struct {
	reg     *registry.Registry
	options func() []markov.Option
	logger  *slog.Logger

	// loads limits how many chains are being loaded and sampled at once.
	loads *semaphore.Weighted
}

// NewWordsAPI creates a new instance of the WordsAPI. options is called for every
// chain the API loads, and at most maxLoads requests build a chain concurrently.
func NewWordsAPI(reg *registry.Registry, options func() []markov.Option, maxLoads int, logger *slog.Logger) *WordsAPI {
	if maxLoads < 1 {
		maxLoads = 1
	}
	return &WordsAPI{
		reg:     reg,
		options: options,
		logger:  logger,
		loads:   semaphore.NewWeighted(int64(maxLoads)),
	}
}

// RegisterRoutes sets up the routing for all /api endpoints.
func (a *WordsAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/models", a.handleModels)
	mux.HandleFunc("/api/words", a.handleWords)
}

// ModelResponse describes a stored model.
type ModelResponse struct {
	Name      string    `json:"name"`
	Symbols   int       `json:"symbols"`
	CreatedAt time.Time `json:"created_at"`
}

// WordsResponse carries generated words.
type WordsResponse struct {
	Model string   `json:"model"`
	Words []string `json:"words"`
}

// handleModels lists the stored models.
func (a *WordsAPI) handleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	models, err := a.reg.GetModelInfos(r.Context())
	if err != nil {
		a.logger.Error("Failed to get model infos", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve models: %v", err))
		return
	}
	resp := make([]ModelResponse, 0, len(models))
	for _, m := range models {
		resp = append(resp, ModelResponse{
			Name:      m.Name,
			Symbols:   utf8.RuneCountInString(m.Vertices),
			CreatedAt: m.CreatedAt,
		})
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// handleWords generates words from a stored model: GET /api/words?model=name&n=5&max_len=12.
// Words never exceed maxWordLength, so a model that rarely reaches Boundary cannot
// hold a load slot indefinitely.
// Each request loads its own chain, so no chain is ever shared between requests.
func (a *WordsAPI) handleWords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	query := r.URL.Query()
	name := query.Get("model")
	if name == "" {
		respondWithError(w, http.StatusBadRequest, "Missing 'model' parameter")
		return
	}
	n, err := intParam(query.Get("n"), 1)
	if err != nil || n < 1 || n > maxWordsPerRequest {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("'n' must be an integer between 1 and %d", maxWordsPerRequest))
		return
	}
	maxLength, err := intParam(query.Get("max_len"), 0)
	if err != nil || maxLength < 0 || maxLength > maxWordLength {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("'max_len' must be an integer between 0 and %d", maxWordLength))
		return
	}
	if maxLength == 0 {
		maxLength = maxWordLength
	}

	if err = a.loads.Acquire(r.Context(), 1); err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "Request cancelled")
		return
	}
	defer a.loads.Release(1)

	chain, err := a.reg.LoadModel(r.Context(), name, a.options()...)
	if errors.Is(err, registry.ErrModelNotFound) {
		respondWithError(w, http.StatusNotFound, fmt.Sprintf("Model '%s' not found", name))
		return
	}
	if err != nil {
		a.logger.Error("Failed to load model", "model_name", name, "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load model: %v", err))
		return
	}

	words := make([]string, n)
	for i := range words {
		words[i] = titleCase(chain.Generate(markov.WithMaxLength(maxLength)))
	}
	a.logger.Debug("Served generated words", "model_name", name, "count", n)
	respondWithJSON(w, http.StatusOK, WordsResponse{Model: name, Words: words})
}

// intParam parses an optional integer query parameter.
func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		err := json.NewEncoder(w).Encode(payload)
		if err != nil {
			fmt.Printf("ERROR: Failed to encode JSON response: %v\n", err)
		}
	}
}
