package queries

import (
	"context"
	"log/slog"
	"strings"

	"launchdesk/contexts/launch-operations/request-service/domain/entities"
	"launchdesk/contexts/launch-operations/request-service/ports"
)

type ListRequestsQuery struct {
	ActorID     string
	ActorRole   entities.Role
	Status      string
	RequestType string
}

type ListRequestsUseCase struct {
	Requests ports.RequestRepository
	Logger   *slog.Logger
}

// Execute lists one canonical entity shape; the actor's role narrows
// the filter rather than changing the projection.
func (uc ListRequestsUseCase) Execute(ctx context.Context, query ListRequestsQuery) ([]entities.LaunchRequest, error) {
	filter := ports.RequestFilter{
		Status:      entities.RequestStatus(strings.TrimSpace(query.Status)),
		RequestType: entities.RequestType(strings.TrimSpace(query.RequestType)),
	}

	actorID := strings.TrimSpace(query.ActorID)
	switch query.ActorRole {
	case entities.RoleAdmin:
		// Admins see everything.
	case entities.RoleCreativeHead:
		filter.HeadID = actorID
	case entities.RoleEditor:
		filter.EditorID = actorID
	case entities.RoleBuyerHead:
		filter.HeadID = actorID
	case entities.RoleBuyer:
		filter.BuyerID = actorID
	default:
		filter.CreatedBy = actorID
	}

	return uc.Requests.ListRequests(ctx, filter)
}
