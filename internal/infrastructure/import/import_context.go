package csvimport

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EntityType names a kind of record the importer knows how to load.
type EntityType string

const (
	EntityProducts   EntityType = "products"
	EntityCustomers  EntityType = "customers"
	EntityCategories EntityType = "categories"
)

// ValidEntityTypes lists every importable entity type.
func ValidEntityTypes() []EntityType {
	return []EntityType{EntityProducts, EntityCustomers, EntityCategories}
}

// IsValidEntityType reports whether t names an importable entity type.
func IsValidEntityType(t string) bool {
	return slices.Contains(ValidEntityTypes(), EntityType(t))
}

// ImportState tracks where a session is in the validate-then-execute
// flow.
type ImportState string

const (
	StateCreated    ImportState = "created"
	StateValidating ImportState = "validating"
	StateValidated  ImportState = "validated"
	StateImporting  ImportState = "importing"
	StateCompleted  ImportState = "completed"
	StateFailed     ImportState = "failed"
	StateCancelled  ImportState = "cancelled"
)

func isTerminalState(s ImportState) bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// ImportSession records one upload and its validation outcome. Sessions
// live server-side between the validate call and the execute call.
type ImportSession struct {
	ID          uuid.UUID        `json:"id"`
	UserID      uuid.UUID        `json:"user_id"`
	EntityType  EntityType       `json:"entity_type"`
	FileName    string           `json:"file_name"`
	FileSize    int64            `json:"file_size"`
	State       ImportState      `json:"state"`
	TotalRows   int              `json:"total_rows"`
	ValidRows   int              `json:"valid_rows"`
	ErrorRows   int              `json:"error_rows"`
	Errors      []RowError       `json:"errors,omitempty"`
	Preview     []map[string]any `json:"preview,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// NewImportSession starts a session in the created state.
func NewImportSession(userID uuid.UUID, entityType EntityType, fileName string, fileSize int64) *ImportSession {
	now := time.Now()
	return &ImportSession{
		ID:         uuid.New(),
		UserID:     userID,
		EntityType: entityType,
		FileName:   fileName,
		FileSize:   fileSize,
		State:      StateCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
		Errors:     make([]RowError, 0),
		Preview:    make([]map[string]any, 0),
	}
}

// UpdateState moves the session to a new state, stamping CompletedAt
// when the state is terminal.
func (s *ImportSession) UpdateState(state ImportState) {
	now := time.Now()
	s.State = state
	s.UpdatedAt = now
	if isTerminalState(state) {
		s.CompletedAt = &now
	}
}

// SetValidationResult copies the outcome of a validate pass onto the
// session.
func (s *ImportSession) SetValidationResult(result *ValidationResult) {
	s.TotalRows = result.TotalRows
	s.ValidRows = result.ValidRows
	s.ErrorRows = result.ErrorRows
	s.Errors = result.Errors
	s.Preview = result.Preview
	s.UpdatedAt = time.Now()
}

// IsValid reports whether every row passed validation.
func (s *ImportSession) IsValid() bool { return s.ErrorRows == 0 }

// ImportContext holds the per-run state of a validation pass: the
// parser, the configured validators, and which rows passed or failed.
// Safe for concurrent row recording.
type ImportContext struct {
	ctx             context.Context
	cancel          context.CancelFunc
	session         *ImportSession
	parser          *CSVParser
	fieldValidator  *FieldValidator
	refValidator    *ReferenceValidator
	uniqueValidator *UniquenessValidator
	errors          *ErrorCollection

	mu           sync.RWMutex
	validRows    []*Row
	errorRowNums map[int]bool
}

// ImportContextOption configures an ImportContext.
type ImportContextOption func(*ImportContext)

func WithFieldValidator(v *FieldValidator) ImportContextOption {
	return func(ic *ImportContext) { ic.fieldValidator = v }
}

func WithReferenceValidator(v *ReferenceValidator) ImportContextOption {
	return func(ic *ImportContext) { ic.refValidator = v }
}

func WithUniquenessValidator(v *UniquenessValidator) ImportContextOption {
	return func(ic *ImportContext) { ic.uniqueValidator = v }
}

// NewImportContext wraps ctx with a cancel so a running validation can
// be aborted.
func NewImportContext(ctx context.Context, session *ImportSession, opts ...ImportContextOption) *ImportContext {
	runCtx, cancel := context.WithCancel(ctx)
	ic := &ImportContext{
		ctx:          runCtx,
		cancel:       cancel,
		session:      session,
		errors:       NewErrorCollection(100),
		validRows:    make([]*Row, 0),
		errorRowNums: make(map[int]bool),
	}
	for _, opt := range opts {
		opt(ic)
	}
	return ic
}

func (ic *ImportContext) Context() context.Context { return ic.ctx }
func (ic *ImportContext) Session() *ImportSession  { return ic.session }
func (ic *ImportContext) Parser() *CSVParser       { return ic.parser }
func (ic *ImportContext) SetParser(p *CSVParser)   { ic.parser = p }
func (ic *ImportContext) Errors() *ErrorCollection { return ic.errors }

// Cancel aborts the run and marks the session cancelled.
func (ic *ImportContext) Cancel() {
	ic.cancel()
	ic.session.UpdateState(StateCancelled)
}

func (ic *ImportContext) ValidRows() []*Row {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	return ic.validRows
}

func (ic *ImportContext) AddValidRow(row *Row) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.validRows = append(ic.validRows, row)
}

func (ic *ImportContext) MarkRowError(rowNum int) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.errorRowNums[rowNum] = true
}

func (ic *ImportContext) HasRowError(rowNum int) bool {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	return ic.errorRowNums[rowNum]
}

func (ic *ImportContext) ErrorCount() int {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	return len(ic.errorRowNums)
}

// ImportProcessor runs the validate pass over an uploaded file with
// configured limits and lookups.
type ImportProcessor struct {
	maxFileSize     int64
	maxRows         int
	maxErrors       int
	previewRows     int
	referenceLookup func(refType, value string) (bool, error)
	uniqueLookup    func(entityType, field, value string) (bool, error)
}

// ProcessorOption configures an ImportProcessor.
type ProcessorOption func(*ImportProcessor)

func WithMaxFileSize(size int64) ProcessorOption {
	return func(p *ImportProcessor) { p.maxFileSize = size }
}

func WithMaxRows(rows int) ProcessorOption {
	return func(p *ImportProcessor) { p.maxRows = rows }
}

func WithMaxErrors(errors int) ProcessorOption {
	return func(p *ImportProcessor) { p.maxErrors = errors }
}

func WithPreviewRows(rows int) ProcessorOption {
	return func(p *ImportProcessor) { p.previewRows = rows }
}

// WithReferenceLookup supplies the function used to resolve foreign
// references, e.g. a category code to an existing category.
func WithReferenceLookup(fn func(refType, value string) (bool, error)) ProcessorOption {
	return func(p *ImportProcessor) { p.referenceLookup = fn }
}

// WithUniqueLookup supplies the function used to detect values that
// already exist in the database.
func WithUniqueLookup(fn func(entityType, field, value string) (bool, error)) ProcessorOption {
	return func(p *ImportProcessor) { p.uniqueLookup = fn }
}

// NewImportProcessor applies opts over sane defaults: 10MB files, 100k
// rows, 100 reported errors, 5 preview rows.
func NewImportProcessor(opts ...ProcessorOption) *ImportProcessor {
	p := &ImportProcessor{
		maxFileSize: 10 << 20,
		maxRows:     100_000,
		maxErrors:   100,
		previewRows: 5,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Validate parses and validates the whole file without writing
// anything. The returned result carries the valid rows so a follow-up
// execute can apply them directly.
func (p *ImportProcessor) Validate(ctx context.Context, session *ImportSession, reader io.Reader, rules []FieldRule) (*ValidationResult, error) {
	session.UpdateState(StateValidating)

	parser, err := NewCSVParser(reader)
	if err != nil {
		session.UpdateState(StateFailed)
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		session.UpdateState(StateFailed)
		return nil, err
	}

	fieldValidator := NewFieldValidator(rules, p.maxErrors)
	var refValidator *ReferenceValidator
	if p.referenceLookup != nil {
		refValidator = NewReferenceValidator(p.referenceLookup, p.maxErrors)
	}
	var uniqueValidator *UniquenessValidator
	if p.uniqueLookup != nil {
		uniqueValidator = NewUniquenessValidator(p.uniqueLookup, p.maxErrors)
	}

	importCtx := NewImportContext(ctx, session,
		WithFieldValidator(fieldValidator),
		WithReferenceValidator(refValidator),
		WithUniquenessValidator(uniqueValidator),
	)
	importCtx.SetParser(parser)

	result := NewValidationResult(session.ID.String())
	var totalRows, validRows, errorRows int

	for {
		select {
		case <-ctx.Done():
			session.UpdateState(StateCancelled)
			return nil, ctx.Err()
		default:
		}

		row, err := parser.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			importCtx.Errors().Add(NewRowError(parser.CurrentRow(), "", ErrCodeImportCSVParsing, err.Error()))
			errorRows++
			continue
		}
		if row.IsEmpty() {
			continue
		}

		totalRows++
		if totalRows > p.maxRows {
			importCtx.Errors().Add(NewRowError(row.LineNumber, "", ErrCodeImportValidation,
				"exceeded maximum number of rows"))
			break
		}

		if p.rowHasErrors(row, rules, importCtx) {
			errorRows++
			importCtx.MarkRowError(row.LineNumber)
			continue
		}

		validRows++
		importCtx.AddValidRow(row)
		if len(result.Preview) < p.previewRows {
			preview := make(map[string]any, len(row.Data))
			for k, v := range row.Data {
				preview[k] = v
			}
			result.AddPreview(preview)
		}
	}

	result.SetCounts(totalRows, validRows, errorRows)
	result.SetErrors(p.mergeErrors(importCtx))
	result.Rows = importCtx.ValidRows()

	session.SetValidationResult(result)
	if errorRows > 0 {
		session.UpdateState(StateFailed)
	} else {
		session.UpdateState(StateValidated)
	}
	return result, nil
}

// rowHasErrors runs all configured validators against one row. Every
// validator records its own errors; this only reports pass/fail.
func (p *ImportProcessor) rowHasErrors(row *Row, rules []FieldRule, ic *ImportContext) bool {
	failed := !ic.fieldValidator.ValidateRow(row)

	for _, rule := range rules {
		if ic.refValidator != nil && rule.Reference != "" {
			value := row.Get(rule.Column)
			if !ic.refValidator.ValidateReference(row.LineNumber, rule.Column, rule.Reference, value) {
				failed = true
			}
		}
		if ic.uniqueValidator != nil && rule.Unique {
			value := row.Get(rule.Column)
			if !ic.uniqueValidator.ValidateUnique(row.LineNumber, rule.Column, string(ic.session.EntityType), value) {
				failed = true
			}
		}
	}
	return failed
}

// mergeErrors folds the per-validator collections into one capped
// collection for the response.
func (p *ImportProcessor) mergeErrors(ic *ImportContext) *ErrorCollection {
	merged := NewErrorCollection(p.maxErrors)
	for _, e := range ic.Errors().Errors() {
		merged.Add(e)
	}
	for _, e := range ic.fieldValidator.Errors().Errors() {
		merged.Add(e)
	}
	if ic.refValidator != nil {
		for _, e := range ic.refValidator.Errors().Errors() {
			merged.Add(e)
		}
	}
	if ic.uniqueValidator != nil {
		for _, e := range ic.uniqueValidator.Errors().Errors() {
			merged.Add(e)
		}
	}
	return merged
}

// SessionStore persists import sessions between the validate and
// execute calls.
type SessionStore interface {
	Save(session *ImportSession) error
	Get(id uuid.UUID) (*ImportSession, error)
	GetByUser(userID uuid.UUID, limit int) ([]*ImportSession, error)
	Delete(id uuid.UUID) error
}

// InMemorySessionStore keeps sessions in a map with a TTL. Good enough
// for a single-node deployment; sessions are disposable.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*ImportSession
	ttl      time.Duration
	stopCh   chan struct{}
}

// NewInMemorySessionStore starts the store and its cleanup loop.
func NewInMemorySessionStore(ttl time.Duration) *InMemorySessionStore {
	s := &InMemorySessionStore{
		sessions: make(map[uuid.UUID]*ImportSession),
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

func (s *InMemorySessionStore) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// Stop ends the background cleanup loop.
func (s *InMemorySessionStore) Stop() {
	close(s.stopCh)
}

func (s *InMemorySessionStore) Save(session *ImportSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

// Get returns nil without error when the session is missing or past
// its TTL.
func (s *InMemorySessionStore) Get(id uuid.UUID) (*ImportSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok || s.expired(session) {
		return nil, nil
	}
	return session, nil
}

func (s *InMemorySessionStore) GetByUser(userID uuid.UUID, limit int) ([]*ImportSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*ImportSession
	for _, session := range s.sessions {
		if session.UserID != userID || s.expired(session) {
			continue
		}
		result = append(result, session)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (s *InMemorySessionStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Cleanup drops every expired session.
func (s *InMemorySessionStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.sessions {
		if s.expired(session) {
			delete(s.sessions, id)
		}
	}
}

func (s *InMemorySessionStore) expired(session *ImportSession) bool {
	return time.Since(session.CreatedAt) > s.ttl
}
