package http

import (
	"context"
	"net/http"

	"github.com/furuknap/marketmaster/internal/storage/snapshot"
)

// BackupService exports and restores the full application state.
type BackupService interface {
	Export(ctx context.Context) (snapshot.Snapshot, error)
	Import(ctx context.Context, snap snapshot.Snapshot) error
}

// HandleBackup serves /backup: GET downloads a snapshot of the full state,
// POST replaces the state with an uploaded snapshot.
func HandleBackup(svc BackupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			exportBackup(svc, w, r)
		case http.MethodPost:
			importBackup(svc, w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func exportBackup(svc BackupService, w http.ResponseWriter, r *http.Request) {
	snap, err := svc.Export(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="marketmaster-backup.json"`)
	w.WriteHeader(http.StatusOK)
	_ = snapshot.Encode(w, snap)
}

func importBackup(svc BackupService, w http.ResponseWriter, r *http.Request) {
	snap, err := snapshot.Decode(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid snapshot")
		return
	}
	if err := svc.Import(r.Context(), snap); err != nil {
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
