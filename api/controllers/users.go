package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orderdeskhq/orderdesk-backend/api/responses"
	"github.com/orderdeskhq/orderdesk-backend/api/validators"
	"github.com/orderdeskhq/orderdesk-backend/internal/users"
	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/orderdeskhq/orderdesk-backend/pkg/errors"
	"github.com/orderdeskhq/orderdesk-backend/pkg/logger"
)

type createStaffRequest struct {
	Email string  `json:"email" validate:"required,email"`
	Name  string  `json:"name" validate:"required"`
	Phone *string `json:"phone,omitempty"`
	Role  string  `json:"role" validate:"required,oneof=SUPER_ADMIN ADMIN CALL_AGENT"`
}

type createStaffResponse struct {
	User         users.UserDTO `json:"user"`
	TempPassword string        `json:"temp_password"`
}

// UserCreateStaff provisions a staff or call agent account. The generated
// temporary password is returned exactly once.
func UserCreateStaff(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createStaffRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, err := enums.ParseUserRole(body.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown role"))
			return
		}

		user, tempPassword, err := svc.CreateStaff(r.Context(), users.CreateStaffInput{
			Email: body.Email,
			Name:  body.Name,
			Phone: body.Phone,
			Role:  role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, createStaffResponse{
			User:         users.FromModel(user),
			TempPassword: tempPassword,
		})
	}
}

// UserGet returns one account by id.
func UserGet(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.ParsePathUUID(chi.URLParam(r, "userID"), "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, users.FromModel(user))
	}
}

// UserListCallAgents lists accounts holding the call agent role.
func UserListCallAgents(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agents, err := svc.ListCallAgents(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]users.UserDTO, 0, len(agents))
		for i := range agents {
			out = append(out, users.FromModel(&agents[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
