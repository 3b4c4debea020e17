package catalog

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nextstock/backend/internal/domain/catalog"
	"github.com/nextstock/backend/internal/domain/shared"
	"github.com/nextstock/backend/internal/domain/shared/valueobject"
	csvimport "github.com/nextstock/backend/internal/infrastructure/import"
)

// ImportService loads products into the catalog from uploaded CSV files.
// Files are validated in full before any row is applied; a file with
// validation errors imports nothing.
type ImportService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	logger       *zap.Logger
}

// NewImportService creates a new ImportService
func NewImportService(productRepo catalog.ProductRepository, categoryRepo catalog.CategoryRepository, logger *zap.Logger) *ImportService {
	return &ImportService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// ImportResult reports the outcome of a product import
type ImportResult struct {
	SessionID uuid.UUID             `json:"session_id"`
	DryRun    bool                  `json:"dry_run"`
	TotalRows int                   `json:"total_rows"`
	ValidRows int                   `json:"valid_rows"`
	ErrorRows int                   `json:"error_rows"`
	Created   int                   `json:"created"`
	Errors    []csvimport.RowError  `json:"errors,omitempty"`
	Preview   []map[string]any      `json:"preview,omitempty"`
	State     csvimport.ImportState `json:"state"`
}

// productRules returns the validation rules for the product CSV layout.
// Expected columns: sku, name, description, barcode, category_code, unit,
// cost_price, sale_price, tax_rate. Only sku, name and sale_price are
// mandatory.
func productRules() []csvimport.FieldRule {
	return []csvimport.FieldRule{
		csvimport.Field("sku").Required().String().Length(1, 50).Unique().Build(),
		csvimport.Field("name").Required().String().Length(1, 200).Build(),
		csvimport.Field("description").String().MaxLength(2000).Build(),
		csvimport.Field("barcode").String().MaxLength(50).Build(),
		csvimport.Field("category_code").Reference("category").Build(),
		csvimport.Field("unit").String().MaxLength(20).Build(),
		csvimport.Field("cost_price").Decimal().MinValue(decimal.Zero).Build(),
		csvimport.Field("sale_price").Required().Decimal().MinValue(decimal.Zero).Build(),
		csvimport.Field("tax_rate").Decimal().Range(decimal.Zero, decimal.NewFromInt(100)).Build(),
	}
}

// ImportProducts validates the CSV and, unless dryRun is set, creates a
// product per valid row. SKUs already in the catalog are reported as row
// errors rather than overwritten.
func (s *ImportService) ImportProducts(ctx context.Context, userID uuid.UUID, fileName string, fileSize int64, reader io.Reader, dryRun bool) (*ImportResult, error) {
	session := csvimport.NewImportSession(userID, csvimport.EntityProducts, fileName, fileSize)

	processor := csvimport.NewImportProcessor(
		csvimport.WithReferenceLookup(s.lookupReference),
		csvimport.WithUniqueLookup(s.lookupUnique),
	)

	validation, err := processor.Validate(ctx, session, reader, productRules())
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		SessionID: session.ID,
		DryRun:    dryRun,
		TotalRows: validation.TotalRows,
		ValidRows: validation.ValidRows,
		ErrorRows: validation.ErrorRows,
		Errors:    validation.Errors,
		Preview:   validation.Preview,
		State:     session.State,
	}

	if dryRun || !validation.IsValid() {
		return result, nil
	}

	session.UpdateState(csvimport.StateImporting)
	created, err := s.applyRows(ctx, validation.Rows)
	result.Created = created
	if err != nil {
		session.UpdateState(csvimport.StateFailed)
		result.State = session.State
		return result, err
	}

	session.UpdateState(csvimport.StateCompleted)
	result.State = session.State

	s.logger.Info("product import completed",
		zap.String("session_id", session.ID.String()),
		zap.String("file", fileName),
		zap.Int("created", created),
	)

	return result, nil
}

func (s *ImportService) applyRows(ctx context.Context, rows []*csvimport.Row) (int, error) {
	created := 0
	for _, row := range rows {
		product, err := s.buildProduct(ctx, row)
		if err != nil {
			return created, err
		}
		if err := s.productRepo.Save(ctx, product); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *ImportService) buildProduct(ctx context.Context, row *csvimport.Row) (*catalog.Product, error) {
	salePrice, err := decimal.NewFromString(row.Get("sale_price"))
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PRICE", "Invalid sale price on row")
	}

	product, err := catalog.NewProduct(row.Get("sku"), row.Get("name"), valueobject.NewMoneyXOF(salePrice))
	if err != nil {
		return nil, err
	}

	if description, barcode := row.Get("description"), row.Get("barcode"); description != "" || barcode != "" {
		if err := product.Update(row.Get("name"), description, barcode); err != nil {
			return nil, err
		}
	}

	if code := row.Get("category_code"); code != "" {
		category, err := s.categoryRepo.FindByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		product.SetCategory(&category.ID)
	}

	if unit := row.Get("unit"); unit != "" {
		if err := product.SetUnit(unit); err != nil {
			return nil, err
		}
	}

	if raw := row.Get("cost_price"); raw != "" {
		cost, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_PRICE", "Invalid cost price on row")
		}
		if err := product.SetPrices(valueobject.NewMoneyXOF(cost), valueobject.NewMoneyXOF(salePrice)); err != nil {
			return nil, err
		}
	}

	if raw := row.Get("tax_rate"); raw != "" {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_TAX_RATE", "Invalid tax rate on row")
		}
		if err := product.SetTaxRate(rate); err != nil {
			return nil, err
		}
	}

	return product, nil
}

func (s *ImportService) lookupReference(refType, value string) (bool, error) {
	if refType != "category" {
		return false, nil
	}
	return s.categoryRepo.ExistsByCode(context.Background(), value)
}

func (s *ImportService) lookupUnique(entityType, field, value string) (bool, error) {
	if entityType != string(csvimport.EntityProducts) || field != "sku" {
		return false, nil
	}
	return s.productRepo.ExistsBySKU(context.Background(), value)
}
