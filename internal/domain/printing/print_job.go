package printing

import (
	"time"

	"github.com/google/uuid"

	"github.com/nextstock/backend/internal/domain/shared"
)

// DocType represents the type of document that can be rendered
type DocType string

const (
	DocTypeReceipt  DocType = "RECEIPT"  // Sale receipt
	DocTypeProforma DocType = "PROFORMA" // Proforma invoice
)

// IsValid checks if the DocType is a valid value
func (d DocType) IsValid() bool {
	return d == DocTypeReceipt || d == DocTypeProforma
}

// String returns the string representation of DocType
func (d DocType) String() string {
	return string(d)
}

// JobStatus represents the lifecycle of a render job
type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusRendering JobStatus = "RENDERING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
)

// String returns the string representation of JobStatus
func (s JobStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	switch s {
	case JobStatusPending:
		return target == JobStatusRendering || target == JobStatusFailed
	case JobStatusRendering:
		return target == JobStatusCompleted || target == JobStatusFailed
	case JobStatusFailed:
		return target == JobStatusRendering // Retry
	}
	return false
}

// PrintJob tracks one PDF render of a sale receipt or proforma invoice.
// Completed renders are archived to object storage; ArchiveKey is the
// storage location.
type PrintJob struct {
	shared.StoreAggregateRoot
	DocumentType   DocType   `gorm:"size:20;not null;index"`
	DocumentID     uuid.UUID `gorm:"type:uuid;not null;index"`
	DocumentNumber string    `gorm:"size:30;not null"`
	Status         JobStatus `gorm:"size:20;not null;index"`
	ArchiveKey     string    `gorm:"size:300"` // Object storage key of the rendered PDF
	ErrorMessage   string    `gorm:"size:1000"`
	RenderedAt     *time.Time
	RequestedBy    *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PrintJob) TableName() string {
	return "print_jobs"
}

// NewPrintJob creates a new render job for a document
func NewPrintJob(storeID uuid.UUID, docType DocType, documentID uuid.UUID, documentNumber string, requestedBy uuid.UUID) (*PrintJob, error) {
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOC_TYPE", "Unknown document type")
	}
	if documentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DOCUMENT", "Document ID cannot be empty")
	}
	if documentNumber == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number cannot be empty")
	}

	job := &PrintJob{
		StoreAggregateRoot: shared.NewStoreAggregateRootWithCreator(storeID, requestedBy),
		DocumentType:       docType,
		DocumentID:         documentID,
		DocumentNumber:     documentNumber,
		Status:             JobStatusPending,
		RequestedBy:        &requestedBy,
	}

	return job, nil
}

// StartRendering marks the job as rendering
func (j *PrintJob) StartRendering() error {
	if !j.Status.CanTransitionTo(JobStatusRendering) {
		return shared.NewDomainError("INVALID_STATE", "Cannot start rendering from status "+j.Status.String())
	}

	j.Status = JobStatusRendering
	j.ErrorMessage = ""
	j.touch()

	return nil
}

// Complete marks the job as completed with the archive location
func (j *PrintJob) Complete(archiveKey string) error {
	if !j.Status.CanTransitionTo(JobStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE", "Cannot complete from status "+j.Status.String())
	}
	if archiveKey == "" {
		return shared.NewDomainError("INVALID_ARCHIVE_KEY", "Archive key cannot be empty")
	}

	now := time.Now()
	j.Status = JobStatusCompleted
	j.ArchiveKey = archiveKey
	j.RenderedAt = &now
	j.touch()

	return nil
}

// Fail marks the job as failed with the render error
func (j *PrintJob) Fail(message string) error {
	if !j.Status.CanTransitionTo(JobStatusFailed) {
		return shared.NewDomainError("INVALID_STATE", "Cannot fail from status "+j.Status.String())
	}

	j.Status = JobStatusFailed
	j.ErrorMessage = message
	j.touch()

	return nil
}

func (j *PrintJob) touch() {
	j.UpdatedAt = time.Now()
	j.IncrementVersion()
}
