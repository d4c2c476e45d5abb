package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/gorewood/bloglog/internal/draft"
	"github.com/gorewood/bloglog/internal/journal"
	"github.com/gorewood/bloglog/internal/llm"
)

// Handler serves the /api routes for one project.
type Handler struct {
	store  *journal.Store
	gen    *draft.Generator
	logger *slog.Logger
}

// NewHandler returns a Handler over store. gen may be nil, in which case
// generate and summarize report that no LLM is configured.
func NewHandler(store *journal.Store, gen *draft.Generator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: store, gen: gen, logger: logger}
}

type metadataRequest struct {
	ProjectName     string `json:"projectName"`
	Problem         string `json:"problem"`
	Goals           string `json:"goals"`
	SuccessCriteria string `json:"successCriteria"`
}

type captureRequest struct {
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

func (c captureRequest) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Summary, validation.Required.Error("Summary is required")),
	)
}

type scratchpadBody struct {
	Content string `json:"content"`
}

type generateRequest struct {
	Style string `json:"style"`
}

func (g generateRequest) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.Style,
			validation.Required.Error("style is required"),
			validation.In(journal.StyleTimeline, journal.StyleNarrative).Error("style must be timeline or narrative"),
		),
	)
}

type summarizeRequest struct {
	Conversation string `json:"conversation"`
}

func (s summarizeRequest) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Conversation, validation.Required.Error("Conversation text is required")),
	)
}

// GetMetadata returns the metadata document, or null when there is none.
func (h *Handler) GetMetadata(w http.ResponseWriter, _ *http.Request) {
	meta, err := h.store.ReadMetadata()
	if err != nil {
		h.internalError(w, "reading metadata", err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// PostMetadata creates any missing project layout and writes the metadata,
// keeping the original initialization time.
func (h *Handler) PostMetadata(w http.ResponseWriter, r *http.Request) {
	var req metadataRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.ProjectName) == "" {
		req.ProjectName = journal.DefaultProjectName
	}

	if err := h.store.EnsureLayout(); err != nil {
		h.internalError(w, "creating project layout", err)
		return
	}
	meta, err := h.store.WriteMetadata(journal.Metadata{
		ProjectName:     req.ProjectName,
		Problem:         req.Problem,
		Goals:           req.Goals,
		SuccessCriteria: req.SuccessCriteria,
	})
	if err != nil {
		h.internalError(w, "writing metadata", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "metadata": meta})
}

// GetTimeline returns {"entries": [...]} in append order.
func (h *Handler) GetTimeline(w http.ResponseWriter, _ *http.Request) {
	entries, err := h.store.ReadTimeline()
	if err != nil {
		h.internalError(w, "reading timeline", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// Capture records a conversation summary.
func (h *Handler) Capture(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Summary = strings.TrimSpace(req.Summary)
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, firstError(err))
		return
	}

	entry, err := h.store.Append(journal.Conversation(req.Summary, req.Tags))
	if errors.Is(err, journal.ErrNotInitialized) {
		writeError(w, http.StatusBadRequest, "Project not initialized. Visit /init first.")
		return
	}
	if err != nil {
		h.internalError(w, "saving conversation", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "entry": entry})
}

// GetScratchpad returns {"content": "..."}; "" when there is no scratchpad.
func (h *Handler) GetScratchpad(w http.ResponseWriter, _ *http.Request) {
	content, err := h.store.ReadScratchpad()
	if err != nil {
		h.internalError(w, "reading scratchpad", err)
		return
	}
	writeJSON(w, http.StatusOK, scratchpadBody{Content: content})
}

// PostScratchpad replaces the scratchpad.
func (h *Handler) PostScratchpad(w http.ResponseWriter, r *http.Request) {
	var req scratchpadBody
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.store.WriteScratchpad(req.Content); err != nil {
		h.internalError(w, "saving scratchpad", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Generate writes a draft of the requested style.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, firstError(err))
		return
	}
	if h.gen == nil {
		writeError(w, http.StatusInternalServerError, "no LLM configured")
		return
	}

	d, err := h.gen.Generate(r.Context(), req.Style)
	switch {
	case errors.Is(err, draft.ErrNoEntries):
		writeError(w, http.StatusBadRequest, "No timeline entries found.")
		return
	case err != nil:
		h.llmError(w, "generating draft", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"content":  d.Content,
		"filename": d.Filename,
		"filepath": d.Path,
	})
}

// Summarize condenses a pasted conversation.
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Conversation = strings.TrimSpace(req.Conversation)
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, firstError(err))
		return
	}
	if h.gen == nil {
		writeError(w, http.StatusInternalServerError, "no LLM configured")
		return
	}

	summary, err := h.gen.Summarize(r.Context(), req.Conversation)
	if err != nil {
		h.llmError(w, "summarizing", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "summary": summary})
}

func (h *Handler) internalError(w http.ResponseWriter, action string, err error) {
	h.logger.Error(action+" failed", slog.String("error", err.Error()))
	writeError(w, http.StatusInternalServerError, err.Error())
}

// llmError reports a generation failure. The message of a missing
// credential names the variable to set.
func (h *Handler) llmError(w http.ResponseWriter, action string, err error) {
	if errors.Is(err, llm.ErrMissingAPIKey) {
		h.logger.Warn(action+" skipped", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.internalError(w, action, err)
}

// firstError flattens an ozzo validation.Errors to one message.
func firstError(err error) string {
	var errs validation.Errors
	if errors.As(err, &errs) {
		for _, e := range errs {
			return e.Error()
		}
	}
	return err.Error()
}
