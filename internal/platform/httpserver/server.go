package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	provisioningservice "launchdesk/contexts/launch-operations/provisioning-service"
	provisioningerrors "launchdesk/contexts/launch-operations/provisioning-service/domain/errors"
	provisioninghttp "launchdesk/contexts/launch-operations/provisioning-service/transport/http"
	requestservice "launchdesk/contexts/launch-operations/request-service"
	requesterrors "launchdesk/contexts/launch-operations/request-service/domain/errors"
	"launchdesk/contexts/launch-operations/request-service/domain/entities"
	requesthttp "launchdesk/contexts/launch-operations/request-service/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "launchdesk/internal/platform/httpserver/docs"
)

type Server struct {
	mux          *http.ServeMux
	logger       *slog.Logger
	addr         string
	requests     requestservice.Module
	provisioning provisioningservice.Module
}

func New(
	requests requestservice.Module,
	provisioning provisioningservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:          http.NewServeMux(),
		logger:       logger,
		addr:         addr,
		requests:     requests,
		provisioning: provisioning,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/launch-requests", s.handleCreateRequest)
	s.mux.HandleFunc("GET /api/launch-requests", s.handleListRequests)
	s.mux.HandleFunc("GET /api/launch-requests/{request_id}", s.handleGetRequest)
	s.mux.HandleFunc("PATCH /api/launch-requests/{request_id}", s.handleUpdateRequest)
	s.mux.HandleFunc("DELETE /api/launch-requests/{request_id}", s.handleDeleteRequest)

	s.mux.HandleFunc("POST /api/launch-requests/{request_id}/submit", s.transitionHandler(entities.TransitionSubmit))
	s.mux.HandleFunc("POST /api/launch-requests/{request_id}/accept", s.transitionHandler(entities.TransitionAccept))
	s.mux.HandleFunc("POST /api/launch-requests/{request_id}/mark-ready", s.transitionHandler(entities.TransitionMarkReady))
	s.mux.HandleFunc("POST /api/launch-requests/{request_id}/launch", s.transitionHandler(entities.TransitionLaunch))
	s.mux.HandleFunc("POST /api/launch-requests/{request_id}/close", s.transitionHandler(entities.TransitionClose))
	s.mux.HandleFunc("POST /api/launch-requests/{request_id}/reopen", s.transitionHandler(entities.TransitionReopen))

	s.mux.HandleFunc("POST /api/launch-requests/{request_id}/assign-editors", s.handleAssignEditors)
	s.mux.HandleFunc("POST /api/launch-requests/{request_id}/assign-buyers", s.handleAssignBuyers)
	s.mux.HandleFunc("POST /api/launch-requests/{request_id}/reassign-head", s.handleReassignHead)
	s.mux.HandleFunc("POST /api/launch-requests/{request_id}/uploads", s.handleUpload)

	s.mux.HandleFunc("POST /api/launch-requests/{request_id}/revoke-access", s.handleRevokeAccess)
	s.mux.HandleFunc("GET /api/media-folders/{folder_id}", s.handleFolderContents)
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, userRole, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req requesthttp.CreateRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRequestError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.requests.Handler.CreateRequestHandler(r.Context(), userID, userRole, req)
	if err != nil {
		writeRequestDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	userID, userRole, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	resp, err := s.requests.Handler.ListRequestsHandler(
		r.Context(),
		userID,
		userRole,
		query.Get("status"),
		query.Get("request_type"),
	)
	if err != nil {
		writeRequestDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	resp, err := s.requests.Handler.GetRequestHandler(r.Context(), r.PathValue("request_id"))
	if err != nil {
		writeRequestDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateRequest(w http.ResponseWriter, r *http.Request) {
	userID, userRole, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req requesthttp.UpdateRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRequestError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.requests.Handler.UpdateRequestHandler(r.Context(), userID, userRole, r.PathValue("request_id"), req)
	if err != nil {
		writeRequestDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteRequest(w http.ResponseWriter, r *http.Request) {
	userID, userRole, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if err := s.requests.Handler.DeleteRequestHandler(r.Context(), userID, userRole, r.PathValue("request_id")); err != nil {
		writeRequestDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) transitionHandler(op entities.TransitionOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, ok := s.requireUser(w, r)
		if !ok {
			return
		}
		req := requesthttp.TransitionRequest{}
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeRequestError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
				return
			}
		}
		resp, err := s.requests.Handler.TransitionHandler(r.Context(), userID, r.PathValue("request_id"), op, req)
		if err != nil {
			writeRequestDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleAssignEditors(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req requesthttp.AssignEditorsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRequestError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.requests.Handler.AssignEditorsHandler(r.Context(), userID, r.PathValue("request_id"), req)
	if err != nil {
		writeRequestDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssignBuyers(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req requesthttp.AssignBuyersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRequestError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.requests.Handler.AssignBuyersHandler(r.Context(), userID, r.PathValue("request_id"), req)
	if err != nil {
		writeRequestDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReassignHead(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req requesthttp.ReassignHeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRequestError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.requests.Handler.ReassignHeadHandler(r.Context(), userID, r.PathValue("request_id"), req)
	if err != nil {
		writeRequestDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req requesthttp.UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRequestError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.requests.Handler.UploadHandler(r.Context(), userID, r.PathValue("request_id"), req)
	if err != nil {
		writeRequestDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleRevokeAccess(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req provisioninghttp.RevokeAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProvisioningError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.provisioning.Handler.RevokeAccessHandler(r.Context(), userID, r.PathValue("request_id"), req); err != nil {
		writeProvisioningDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFolderContents(w http.ResponseWriter, r *http.Request) {
	resp, err := s.provisioning.Handler.FolderContentsHandler(r.Context(), r.PathValue("folder_id"))
	if err != nil {
		writeProvisioningDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeRequestError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", "", false
	}
	return userID, strings.TrimSpace(r.Header.Get("X-User-Role")), true
}

func writeRequestDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, requesterrors.ErrRequestNotFound),
		errors.Is(err, requesterrors.ErrUploadNotFound),
		errors.Is(err, requesterrors.ErrBuyerAssignmentNotFound),
		errors.Is(err, requesterrors.ErrUserNotFound):
		writeRequestError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, requesterrors.ErrInvalidStatusTransition):
		writeRequestError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, requesterrors.ErrAssignmentMismatch):
		writeRequestError(w, http.StatusConflict, "assignment_mismatch", err.Error())
	case errors.Is(err, requesterrors.ErrRequestNotEditable):
		writeRequestError(w, http.StatusConflict, "request_not_editable", err.Error())
	case errors.Is(err, requesterrors.ErrPermissionDenied):
		writeRequestError(w, http.StatusForbidden, "permission_denied", err.Error())
	case errors.Is(err, requesterrors.ErrInvalidRequestInput):
		writeRequestError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeRequestError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeProvisioningDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, provisioningerrors.ErrFolderNotFound),
		errors.Is(err, provisioningerrors.ErrAssetNotFound),
		errors.Is(err, provisioningerrors.ErrUploadNotFound):
		writeProvisioningError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, provisioningerrors.ErrInvalidProvision):
		writeProvisioningError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeProvisioningError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeRequestError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, requesthttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeProvisioningError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, provisioninghttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
