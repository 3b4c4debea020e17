package printing

import (
	"context"

	"github.com/google/uuid"

	"github.com/nextstock/backend/internal/domain/shared"
)

// PrintJobRepository defines the persistence interface for render jobs
type PrintJobRepository interface {
	shared.StoreRepository[PrintJob]
	FindByDocument(ctx context.Context, docType DocType, documentID uuid.UUID) ([]PrintJob, error)
}
