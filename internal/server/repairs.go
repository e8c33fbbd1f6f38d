package server

import (
	"net/http"

	"garagehub/pkg/domain"
)

const maxAttachmentBytes = 20 * 1024 * 1024

func (s *Server) handleRepairs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		repairs, err := s.app.ListRepairs(r.Context())
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": repairs, "count": len(repairs)})
	case http.MethodPost:
		var repair domain.Repair
		if !decodeBody(w, r, &repair) {
			return
		}
		created, err := s.app.CreateRepair(r.Context(), repair)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w)
	}
}

// /repairs/{id}, /repairs/{id}/finish,
// /repairs/{id}/attachments[/{name}]
func (s *Server) handleRepairByID(w http.ResponseWriter, r *http.Request) {
	parts := pathRest(r, "/repairs")
	switch {
	case len(parts) == 1:
		s.handleRepairDoc(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "finish":
		s.handleFinishRepair(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "attachments":
		s.handleUploadAttachment(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "attachments":
		s.handleAttachmentURL(w, r, parts[0], parts[2])
	default:
		notFound(w, "not found")
	}
}

func (s *Server) handleRepairDoc(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		repair, err := s.app.GetRepair(r.Context(), id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, repair)
	case http.MethodPut:
		patch, ok := decodePatch(w, r)
		if !ok {
			return
		}
		repair, err := s.app.UpdateRepair(r.Context(), id, patch)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, repair)
	case http.MethodDelete:
		if err := s.app.DeleteRepair(r.Context(), id); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleFinishRepair(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var fin domain.RepairFinish
	if !decodeBody(w, r, &fin) {
		return
	}
	finished, err := s.app.FinishRepair(r.Context(), id, fin)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, finished)
}

func (s *Server) handleUploadAttachment(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxAttachmentBytes)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required (field: file)")
		return
	}
	defer file.Close()
	key, err := s.app.UploadAttachment(r.Context(), id, header.Filename, file, header.Size)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"key": key})
}

func (s *Server) handleAttachmentURL(w http.ResponseWriter, r *http.Request, id, name string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	url, err := s.app.AttachmentURL(r.Context(), id, name)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
