package csvimport

import (
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FieldType names the parse applied to a column before range checks.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "int"
	TypeDecimal FieldType = "decimal"
	TypeDate    FieldType = "date"
	TypeEmail   FieldType = "email"
	TypeBool    FieldType = "bool"
	TypeUUID    FieldType = "uuid"
)

// FieldRule is the full validation contract for one CSV column.
type FieldRule struct {
	Column      string
	Type        FieldType
	Required    bool
	MinLength   int
	MaxLength   int
	MinValue    *decimal.Decimal
	MaxValue    *decimal.Decimal
	Pattern     *regexp.Regexp
	PatternDesc string
	DateFormat  string
	Unique      bool
	Reference   string // referenced entity kind, e.g. "category"
	CustomFunc  func(value string) error
}

// FieldRuleBuilder assembles a FieldRule fluently.
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field starts a rule for the named column. Columns default to
// optional strings; dates default to the 2006-01-02 layout.
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{rule: FieldRule{
		Column:     column,
		Type:       TypeString,
		DateFormat: "2006-01-02",
	}}
}

func (b *FieldRuleBuilder) Required() *FieldRuleBuilder { b.rule.Required = true; return b }
func (b *FieldRuleBuilder) Unique() *FieldRuleBuilder   { b.rule.Unique = true; return b }

func (b *FieldRuleBuilder) String() *FieldRuleBuilder  { b.rule.Type = TypeString; return b }
func (b *FieldRuleBuilder) Int() *FieldRuleBuilder     { b.rule.Type = TypeInt; return b }
func (b *FieldRuleBuilder) Decimal() *FieldRuleBuilder { b.rule.Type = TypeDecimal; return b }
func (b *FieldRuleBuilder) Date() *FieldRuleBuilder    { b.rule.Type = TypeDate; return b }
func (b *FieldRuleBuilder) Email() *FieldRuleBuilder   { b.rule.Type = TypeEmail; return b }
func (b *FieldRuleBuilder) Bool() *FieldRuleBuilder    { b.rule.Type = TypeBool; return b }
func (b *FieldRuleBuilder) UUID() *FieldRuleBuilder    { b.rule.Type = TypeUUID; return b }

func (b *FieldRuleBuilder) DateFormat(layout string) *FieldRuleBuilder {
	b.rule.DateFormat = layout
	return b
}

func (b *FieldRuleBuilder) MinLength(n int) *FieldRuleBuilder { b.rule.MinLength = n; return b }
func (b *FieldRuleBuilder) MaxLength(n int) *FieldRuleBuilder { b.rule.MaxLength = n; return b }

func (b *FieldRuleBuilder) Length(min, max int) *FieldRuleBuilder {
	b.rule.MinLength = min
	b.rule.MaxLength = max
	return b
}

func (b *FieldRuleBuilder) MinValue(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &v
	return b
}

func (b *FieldRuleBuilder) MaxValue(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MaxValue = &v
	return b
}

func (b *FieldRuleBuilder) Range(min, max decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &min
	b.rule.MaxValue = &max
	return b
}

func (b *FieldRuleBuilder) Pattern(expr, description string) *FieldRuleBuilder {
	b.rule.Pattern = regexp.MustCompile(expr)
	b.rule.PatternDesc = description
	return b
}

func (b *FieldRuleBuilder) Reference(refType string) *FieldRuleBuilder {
	b.rule.Reference = refType
	return b
}

func (b *FieldRuleBuilder) Custom(fn func(value string) error) *FieldRuleBuilder {
	b.rule.CustomFunc = fn
	return b
}

func (b *FieldRuleBuilder) Build() FieldRule { return b.rule }

// FieldValidator applies column rules to rows, tracking in-file
// duplicates for Unique columns. Rules run in declaration order so
// errors come out stable.
type FieldValidator struct {
	rules     []FieldRule
	firstSeen map[string]map[string]int // column -> value -> line first seen
	errors    *ErrorCollection
}

func NewFieldValidator(rules []FieldRule, maxErrors int) *FieldValidator {
	return &FieldValidator{
		rules:     rules,
		firstSeen: make(map[string]map[string]int),
		errors:    NewErrorCollection(maxErrors),
	}
}

// ValidateRow runs every rule against the row. It returns false when
// any check fails; the individual failures land in Errors.
func (v *FieldValidator) ValidateRow(row *Row) bool {
	ok := true
	for i := range v.rules {
		if !v.validateField(row, &v.rules[i]) {
			ok = false
		}
	}
	return ok
}

func (v *FieldValidator) validateField(row *Row, rule *FieldRule) bool {
	value := row.Get(rule.Column)

	if value == "" {
		if rule.Required {
			v.errors.AddRequiredError(row.LineNumber, rule.Column)
			return false
		}
		return true
	}

	if err := parseAs(value, rule.Type, rule.DateFormat); err != nil {
		v.errors.AddTypeError(row.LineNumber, rule.Column, string(rule.Type), value)
		return false
	}

	ok := true
	if (rule.MinLength > 0 && len(value) < rule.MinLength) ||
		(rule.MaxLength > 0 && len(value) > rule.MaxLength) {
		v.errors.AddLengthError(row.LineNumber, rule.Column, rule.MinLength, rule.MaxLength)
		ok = false
	}

	if rule.Type == TypeInt || rule.Type == TypeDecimal {
		if !v.checkRange(row.LineNumber, rule, value) {
			ok = false
		}
	}

	if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
		v.errors.AddPatternError(row.LineNumber, rule.Column, rule.PatternDesc, value)
		ok = false
	}

	if rule.Unique && !v.checkFirstSeen(row.LineNumber, rule.Column, value) {
		ok = false
	}

	if rule.CustomFunc != nil {
		if err := rule.CustomFunc(value); err != nil {
			v.errors.AddValidationError(row.LineNumber, rule.Column, ErrCodeImportValidation, err.Error())
			ok = false
		}
	}
	return ok
}

func (v *FieldValidator) checkRange(line int, rule *FieldRule, value string) bool {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return false
	}
	inRange := (rule.MinValue == nil || !d.LessThan(*rule.MinValue)) &&
		(rule.MaxValue == nil || !d.GreaterThan(*rule.MaxValue))
	if !inRange {
		min, max := 0.0, 0.0
		if rule.MinValue != nil {
			min, _ = rule.MinValue.Float64()
		}
		if rule.MaxValue != nil {
			max, _ = rule.MaxValue.Float64()
		}
		v.errors.AddRangeError(line, rule.Column, min, max)
	}
	return inRange
}

func (v *FieldValidator) checkFirstSeen(line int, column, value string) bool {
	seen := v.firstSeen[column]
	if seen == nil {
		seen = make(map[string]int)
		v.firstSeen[column] = seen
	}
	if first, dup := seen[value]; dup {
		v.errors.Add(NewRowErrorWithValue(line, column, ErrCodeImportDuplicateInFile,
			fmt.Sprintf("duplicate value '%s' (first seen in row %d)", value, first), value))
		return false
	}
	seen[value] = line
	return true
}

func parseAs(value string, t FieldType, dateLayout string) error {
	switch t {
	case TypeInt:
		_, err := strconv.ParseInt(value, 10, 64)
		return err
	case TypeDecimal:
		_, err := decimal.NewFromString(value)
		return err
	case TypeDate:
		_, err := time.Parse(dateLayout, value)
		return err
	case TypeEmail:
		_, err := mail.ParseAddress(value)
		return err
	case TypeBool:
		switch strings.ToLower(value) {
		case "true", "false", "1", "0", "yes", "no", "y", "n":
			return nil
		}
		return fmt.Errorf("invalid boolean value: %s", value)
	case TypeUUID:
		_, err := uuid.Parse(value)
		return err
	default:
		return nil
	}
}

// Errors returns the accumulated field errors.
func (v *FieldValidator) Errors() *ErrorCollection { return v.errors }

// Reset clears duplicate tracking and errors for reuse.
func (v *FieldValidator) Reset() {
	v.firstSeen = make(map[string]map[string]int)
	v.errors.Clear()
}

// ReferenceValidator checks that referenced codes exist, memoizing
// lookups so a file with one category code hits the store once.
type ReferenceValidator struct {
	lookup func(refType, value string) (bool, error)
	known  map[string]map[string]bool
	errors *ErrorCollection
}

func NewReferenceValidator(lookup func(refType, value string) (bool, error), maxErrors int) *ReferenceValidator {
	return &ReferenceValidator{
		lookup: lookup,
		known:  make(map[string]map[string]bool),
		errors: NewErrorCollection(maxErrors),
	}
}

// ValidateReference reports whether value resolves to an existing
// refType entity. Empty values pass; optional references are enforced
// by a Required rule instead.
func (v *ReferenceValidator) ValidateReference(line int, column, refType, value string) bool {
	if value == "" {
		return true
	}

	cache := v.known[refType]
	if cache == nil {
		cache = make(map[string]bool)
		v.known[refType] = cache
	}

	exists, cached := cache[value]
	if !cached {
		var err error
		exists, err = v.lookup(refType, value)
		if err != nil {
			v.errors.AddValidationError(line, column, ErrCodeImportValidation,
				fmt.Sprintf("error checking %s reference: %v", refType, err))
			return false
		}
		cache[value] = exists
	}

	if !exists {
		v.errors.AddReferenceError(line, column, value, refType)
		return false
	}
	return true
}

// Errors returns the accumulated reference errors.
func (v *ReferenceValidator) Errors() *ErrorCollection { return v.errors }

// Reset clears the lookup cache and errors.
func (v *ReferenceValidator) Reset() {
	v.known = make(map[string]map[string]bool)
	v.errors.Clear()
}

// UniquenessValidator rejects values that already exist in the store,
// e.g. a SKU present in the catalog.
type UniquenessValidator struct {
	lookup func(entityType, field, value string) (bool, error)
	errors *ErrorCollection
}

func NewUniquenessValidator(lookup func(entityType, field, value string) (bool, error), maxErrors int) *UniquenessValidator {
	return &UniquenessValidator{
		lookup: lookup,
		errors: NewErrorCollection(maxErrors),
	}
}

// ValidateUnique reports whether value is absent from the store.
func (v *UniquenessValidator) ValidateUnique(line int, column, entityType, value string) bool {
	if value == "" {
		return true
	}
	exists, err := v.lookup(entityType, column, value)
	if err != nil {
		v.errors.AddValidationError(line, column, ErrCodeImportValidation,
			fmt.Sprintf("error checking uniqueness: %v", err))
		return false
	}
	if exists {
		v.errors.AddDuplicateError(line, column, value, true)
		return false
	}
	return true
}

// Errors returns the accumulated uniqueness errors.
func (v *UniquenessValidator) Errors() *ErrorCollection { return v.errors }
