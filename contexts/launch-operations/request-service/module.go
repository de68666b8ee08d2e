package requestservice

import (
	"log/slog"

	httpadapter "launchdesk/contexts/launch-operations/request-service/adapters/http"
	"launchdesk/contexts/launch-operations/request-service/adapters/memory"
	"launchdesk/contexts/launch-operations/request-service/application/commands"
	"launchdesk/contexts/launch-operations/request-service/application/queries"
	"launchdesk/contexts/launch-operations/request-service/application/workers"
	"launchdesk/contexts/launch-operations/request-service/domain/entities"
	"launchdesk/contexts/launch-operations/request-service/ports"

	"github.com/go-playground/validator/v10"
)

type Module struct {
	Handler httpadapter.Handler
	Relay   workers.OutboxRelay
	Store   *memory.Store
}

type Dependencies struct {
	Requests      ports.RequestRepository
	Transitions   ports.TransitionRepository
	Editors       ports.EditorAssignmentRepository
	Buyers        ports.BuyerAssignmentRepository
	Uploads       ports.UploadRepository
	Reassignments ports.ReassignmentRepository
	Outbox        ports.OutboxWriter
	OutboxReader  ports.OutboxRepository
	Publisher     ports.EventPublisher
	Users         ports.UserDirectory
	Storage       ports.ObjectStorage
	Notifier      ports.Notifier
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	BatchSize     int
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	createRequest := commands.CreateRequestUseCase{
		Requests: deps.Requests,
		Buyers:   deps.Buyers,
		Outbox:   deps.Outbox,
		Users:    deps.Users,
		Notifier: deps.Notifier,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	}
	updateRequest := commands.UpdateRequestUseCase{
		Requests: deps.Requests,
		Clock:    deps.Clock,
		Logger:   deps.Logger,
	}
	deleteRequest := commands.DeleteRequestUseCase{
		Requests: deps.Requests,
		Logger:   deps.Logger,
	}
	transition := commands.TransitionRequestUseCase{
		Transitions: deps.Transitions,
		Notifier:    deps.Notifier,
		Clock:       deps.Clock,
		Logger:      deps.Logger,
	}
	assignEditors := commands.AssignEditorsUseCase{
		Requests: deps.Requests,
		Editors:  deps.Editors,
		Clock:    deps.Clock,
		Logger:   deps.Logger,
	}
	assignBuyers := commands.AssignBuyersUseCase{
		Requests: deps.Requests,
		Buyers:   deps.Buyers,
		Users:    deps.Users,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	}
	reassignHead := commands.ReassignHeadUseCase{
		Requests:      deps.Requests,
		Reassignments: deps.Reassignments,
		Users:         deps.Users,
		Clock:         deps.Clock,
		IDGen:         deps.IDGen,
		Logger:        deps.Logger,
	}
	upload := commands.UploadUseCase{
		Requests: deps.Requests,
		Uploads:  deps.Uploads,
		Storage:  deps.Storage,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	}
	getRequest := queries.GetRequestUseCase{
		Requests:      deps.Requests,
		Editors:       deps.Editors,
		Buyers:        deps.Buyers,
		Uploads:       deps.Uploads,
		Reassignments: deps.Reassignments,
		Logger:        deps.Logger,
	}
	listRequests := queries.ListRequestsUseCase{
		Requests: deps.Requests,
		Logger:   deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			CreateRequest: createRequest,
			UpdateRequest: updateRequest,
			DeleteRequest: deleteRequest,
			Transition:    transition,
			AssignEditors: assignEditors,
			AssignBuyers:  assignBuyers,
			ReassignHead:  reassignHead,
			Upload:        upload,
			GetRequest:    getRequest,
			ListRequests:  listRequests,
			Validate:      validator.New(),
			Logger:        deps.Logger,
		},
		Relay: workers.OutboxRelay{
			Outbox:    deps.OutboxReader,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			BatchSize: deps.BatchSize,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.LaunchRequest, publisher ports.EventPublisher, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Requests:      store,
		Transitions:   store,
		Editors:       store,
		Buyers:        store,
		Uploads:       store,
		Reassignments: store,
		Outbox:        store,
		OutboxReader:  store,
		Publisher:     publisher,
		Users:         store,
		Storage:       store,
		Notifier:      store,
		Clock:         store,
		IDGen:         store,
		Logger:        logger,
	})
	module.Store = store
	return module
}
