package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/beautyhome/studio-api/internal/content"
)

// HandleGetContent returns a section document, or its default scaffold when
// none is stored. Admin credential fields in settings are only returned to
// an authenticated administrator.
// GET /content/{section}
func (h *Handler) HandleGetContent(w http.ResponseWriter, r *http.Request) {
	section, err := content.ParseSection(chi.URLParam(r, "section"))
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}

	doc := h.store.GetDocument(r.Context(), section)
	if section == content.Settings {
		if _, ok := h.gate.Authenticate(r); !ok {
			doc = content.RedactAdmin(doc)
		}
	}
	writeDocument(w, doc)
}

// HandlePutContent replaces a section document.
// PUT /content/{section}
func (h *Handler) HandlePutContent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "section")
	if _, err := content.ParseSection(name); err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to read request body")
		return
	}

	doc, err := h.store.PutDocument(r.Context(), name, body)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to save content")
		return
	}

	h.log(r).Info("content updated", "section", name, "bytes", len(doc))
	writeDocument(w, doc)
}
