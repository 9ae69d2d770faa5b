package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/brgy-egov/assets-api/internal/report"
)

// HandleExportRequests returns an HTTP handler that downloads all requests as
// an xlsx workbook.
func HandleExportRequests(svc RequestReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqs, err := svc.ListAll(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}

		file, err := report.BuildRequestsWorkbook(reqs)
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		filename := fmt.Sprintf("asset-requests-%s.xlsx", time.Now().UTC().Format(time.DateOnly))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		if err := file.Write(w); err != nil {
			// Headers are already out; nothing sensible left to send.
			return
		}
	}
}
