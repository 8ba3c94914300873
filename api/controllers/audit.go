package controllers

import (
	"net/http"
	"strings"

	"github.com/davegutierrez/shoplite-backend/api/responses"
	"github.com/davegutierrez/shoplite-backend/api/validators"
	"github.com/davegutierrez/shoplite-backend/internal/audit"
	apperrors "github.com/davegutierrez/shoplite-backend/pkg/errors"
	"github.com/davegutierrez/shoplite-backend/pkg/logger"
)

const auditDefaultLimit = 50

// AuditListByEntity returns the recent audit trail for one entity.
func AuditListByEntity(svc audit.Reader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, apperrors.New(apperrors.CodeInternal, "audit service unavailable"))
			return
		}

		entityType := strings.TrimSpace(r.URL.Query().Get("entity_type"))
		if entityType == "" {
			responses.WriteError(r.Context(), logg, w, apperrors.New(apperrors.CodeValidation, "entity_type is required"))
			return
		}
		entityID, err := validators.ParseQueryUUID(r, "entity_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if entityID == nil {
			responses.WriteError(r.Context(), logg, w, apperrors.New(apperrors.CodeValidation, "entity_id is required"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", auditDefaultLimit, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListByEntity(r.Context(), entityType, *entityID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
