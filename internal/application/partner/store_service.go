package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/nextstock/backend/internal/domain/partner"
	"github.com/nextstock/backend/internal/domain/shared"
)

// StoreService handles store-related business operations
type StoreService struct {
	storeRepo      partner.StoreRepository
	eventPublisher shared.EventPublisher
}

// NewStoreService creates a new StoreService
func NewStoreService(storeRepo partner.StoreRepository) *StoreService {
	return &StoreService{storeRepo: storeRepo}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *StoreService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new store. The first store created becomes the default.
func (s *StoreService) Create(ctx context.Context, req CreateStoreRequest) (*StoreResponse, error) {
	exists, err := s.storeRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Store with this code already exists")
	}

	store, err := partner.NewStore(req.Code, req.Name)
	if err != nil {
		return nil, err
	}

	if req.Phone != "" || req.Email != "" || req.Address != "" || req.City != "" || req.Notes != "" {
		if err := store.Update(req.Name, req.Phone, req.Email, req.Address, req.City, req.Notes); err != nil {
			return nil, err
		}
	}

	total, err := s.storeRepo.Count(ctx, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}
	if total == 0 {
		store.MarkDefault()
	}

	if err := s.storeRepo.Save(ctx, store); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, store)

	response := ToStoreResponse(store)
	return &response, nil
}

// GetByID retrieves a store by ID
func (s *StoreService) GetByID(ctx context.Context, storeID uuid.UUID) (*StoreResponse, error) {
	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}

	response := ToStoreResponse(store)
	return &response, nil
}

// GetDefault retrieves the default store
func (s *StoreService) GetDefault(ctx context.Context) (*StoreResponse, error) {
	store, err := s.storeRepo.FindDefault(ctx)
	if err != nil {
		return nil, err
	}

	response := ToStoreResponse(store)
	return &response, nil
}

// List retrieves all stores
func (s *StoreService) List(ctx context.Context) ([]StoreResponse, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = 200
	filter.OrderBy = "code"
	filter.OrderDir = "asc"

	stores, err := s.storeRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]StoreResponse, len(stores))
	for i := range stores {
		responses[i] = ToStoreResponse(&stores[i])
	}
	return responses, nil
}

// Update updates a store
func (s *StoreService) Update(ctx context.Context, storeID uuid.UUID, req UpdateStoreRequest) (*StoreResponse, error) {
	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}

	name := store.Name
	phone := store.Phone
	email := store.Email
	address := store.Address
	city := store.City
	notes := store.Notes
	if req.Name != nil {
		name = *req.Name
	}
	if req.Phone != nil {
		phone = *req.Phone
	}
	if req.Email != nil {
		email = *req.Email
	}
	if req.Address != nil {
		address = *req.Address
	}
	if req.City != nil {
		city = *req.City
	}
	if req.Notes != nil {
		notes = *req.Notes
	}

	if err := store.Update(name, phone, email, address, city, notes); err != nil {
		return nil, err
	}

	if err := s.storeRepo.Save(ctx, store); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, store)

	response := ToStoreResponse(store)
	return &response, nil
}

// SetDefault marks a store as the default, clearing the previous default
func (s *StoreService) SetDefault(ctx context.Context, storeID uuid.UUID) (*StoreResponse, error) {
	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}

	if !store.IsActive() {
		return nil, shared.NewDomainError("INVALID_STATE", "An inactive store cannot be the default")
	}

	if err := s.storeRepo.ClearDefault(ctx); err != nil {
		return nil, err
	}

	store.MarkDefault()

	if err := s.storeRepo.Save(ctx, store); err != nil {
		return nil, err
	}

	response := ToStoreResponse(store)
	return &response, nil
}

// Enable reactivates a store
func (s *StoreService) Enable(ctx context.Context, storeID uuid.UUID) (*StoreResponse, error) {
	return s.changeStatus(ctx, storeID, (*partner.Store).Enable)
}

// Disable deactivates a store
func (s *StoreService) Disable(ctx context.Context, storeID uuid.UUID) (*StoreResponse, error) {
	return s.changeStatus(ctx, storeID, (*partner.Store).Disable)
}

func (s *StoreService) changeStatus(ctx context.Context, storeID uuid.UUID, transition func(*partner.Store) error) (*StoreResponse, error) {
	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}

	if err := transition(store); err != nil {
		return nil, err
	}

	if err := s.storeRepo.Save(ctx, store); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, store)

	response := ToStoreResponse(store)
	return &response, nil
}

func (s *StoreService) publishEvents(ctx context.Context, store *partner.Store) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range store.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	store.ClearDomainEvents()
}
