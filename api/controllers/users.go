package controllers

import (
	"net/http"

	"github.com/davegutierrez/shoplite-backend/api/responses"
	"github.com/davegutierrez/shoplite-backend/api/validators"
	"github.com/davegutierrez/shoplite-backend/internal/audit"
	"github.com/davegutierrez/shoplite-backend/internal/auth"
	"github.com/davegutierrez/shoplite-backend/internal/users"
	"github.com/davegutierrez/shoplite-backend/pkg/enums"
	apperrors "github.com/davegutierrez/shoplite-backend/pkg/errors"
	"github.com/davegutierrez/shoplite-backend/pkg/logger"
)

// UserRegister creates an operator account. The owner check lives in the
// register service as well as the router role gate.
func UserRegister(svc auth.RegisterService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, apperrors.New(apperrors.CodeInternal, "register service unavailable"))
			return
		}

		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload auth.RegisterStaffRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Register(r.Context(), auth.Actor{UserID: userID, Role: role}, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// UserList returns every operator account.
func UserList(repo *users.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, apperrors.New(apperrors.CodeInternal, "users repository unavailable"))
			return
		}

		rows, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, apperrors.Wrap(apperrors.CodeInternal, err, "listing users"))
			return
		}

		out := make([]users.UserResponse, 0, len(rows))
		for i := range rows {
			out = append(out, users.ToResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// UserDeactivate disables an account so its tokens stop working at the next
// session check. An owner cannot deactivate themselves.
func UserDeactivate(repo *users.Repository, recorder audit.Recorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, apperrors.New(apperrors.CodeInternal, "users repository unavailable"))
			return
		}

		actorID, _, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		targetID, err := pathUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if targetID == actorID {
			responses.WriteError(r.Context(), logg, w, apperrors.New(apperrors.CodeStateConflict, "cannot deactivate your own account"))
			return
		}

		if _, err := repo.FindByID(r.Context(), targetID); err != nil {
			responses.WriteError(r.Context(), logg, w, apperrors.New(apperrors.CodeNotFound, "user not found"))
			return
		}
		if err := repo.SetActive(r.Context(), targetID, false); err != nil {
			responses.WriteError(r.Context(), logg, w, apperrors.Wrap(apperrors.CodeInternal, err, "deactivating user"))
			return
		}

		updated, err := repo.FindByID(r.Context(), targetID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, apperrors.Wrap(apperrors.CodeInternal, err, "loading user"))
			return
		}

		if recorder != nil {
			recorder.Record(r.Context(), audit.Entry{
				ActorUserID: actorID,
				Action:      enums.AuditActionUserDeactivated,
				EntityType:  "user",
				EntityID:    targetID,
			})
		}
		responses.WriteSuccess(w, users.ToResponse(updated))
	}
}
