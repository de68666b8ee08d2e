package provisioningservice

import (
	"log/slog"

	httpadapter "launchdesk/contexts/launch-operations/provisioning-service/adapters/http"
	"launchdesk/contexts/launch-operations/provisioning-service/adapters/memory"
	"launchdesk/contexts/launch-operations/provisioning-service/application/commands"
	"launchdesk/contexts/launch-operations/provisioning-service/application/workers"
	"launchdesk/contexts/launch-operations/provisioning-service/ports"

	"github.com/go-playground/validator/v10"
)

type Module struct {
	Handler  httpadapter.Handler
	Consumer workers.ProvisioningConsumer
	Store    *memory.Store
}

type Dependencies struct {
	Folders       ports.FolderRepository
	Permissions   ports.PermissionRepository
	Assets        ports.AssetRepository
	BuyerFolders  ports.BuyerFolderStore
	Uploads       ports.UploadSource
	Subscriber    ports.EventSubscriber
	ConsumerGroup string
	RouteUploads  bool
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	provision := commands.ProvisionBuyerUseCase{
		Folders:      deps.Folders,
		Permissions:  deps.Permissions,
		Assets:       deps.Assets,
		BuyerFolders: deps.BuyerFolders,
		Uploads:      deps.Uploads,
		Clock:        deps.Clock,
		IDGen:        deps.IDGen,
		Logger:       deps.Logger,
	}
	route := commands.RouteUploadUseCase{
		Assets:       deps.Assets,
		Permissions:  deps.Permissions,
		BuyerFolders: deps.BuyerFolders,
		Clock:        deps.Clock,
		IDGen:        deps.IDGen,
		Logger:       deps.Logger,
	}
	revoke := commands.RevokeAccessUseCase{
		Folders:      deps.Folders,
		Permissions:  deps.Permissions,
		Assets:       deps.Assets,
		BuyerFolders: deps.BuyerFolders,
		Clock:        deps.Clock,
		Logger:       deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			RevokeAccess: revoke,
			Folders:      deps.Folders,
			Assets:       deps.Assets,
			Validate:     validator.New(),
			Logger:       deps.Logger,
		},
		Consumer: workers.ProvisioningConsumer{
			Subscriber:    deps.Subscriber,
			Provision:     provision,
			Route:         route,
			ConsumerGroup: deps.ConsumerGroup,
			RouteUploads:  deps.RouteUploads,
			Logger:        deps.Logger,
		},
	}
}

// NewInMemoryModule wires the folder store in memory. The pointer store
// and upload source cross service boundaries, so the caller supplies
// them.
func NewInMemoryModule(
	buyerFolders ports.BuyerFolderStore,
	uploads ports.UploadSource,
	subscriber ports.EventSubscriber,
	logger *slog.Logger,
) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Folders:       store,
		Permissions:   store,
		Assets:        store,
		BuyerFolders:  buyerFolders,
		Uploads:       uploads,
		Subscriber:    subscriber,
		ConsumerGroup: "provisioning-service",
		RouteUploads:  true,
		Clock:         store,
		IDGen:         store,
		Logger:        logger,
	})
	module.Store = store
	return module
}
