package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/samber/lo"

	"invoicedesk/internal/domain/settings"
)

// ValueType is the JSON-level kind a rule expects.
type ValueType string

const (
	TypeString  ValueType = "string"
	TypeNumber  ValueType = "number"
	TypeBoolean ValueType = "boolean"
	TypeObject  ValueType = "object"
	TypeArray   ValueType = "array"
)

// Rule constrains the values accepted for one key path.
type Rule struct {
	Type     ValueType
	Enum     []any
	Min      *float64
	Max      *float64
	Required bool
	Default  any
}

func bound(v float64) *float64 { return &v }

func oneOf(values ...string) []any {
	return lo.Map(values, func(s string, _ int) any { return s })
}

var rules = map[string]*Rule{
	KeyAppLanguage:         {Type: TypeString, Enum: oneOf("en", "hi"), Required: true},
	KeyAppAutoSave:         {Type: TypeBoolean},
	KeyAppAutoSaveInterval: {Type: TypeNumber, Min: bound(5), Max: bound(3600)},

	KeyTally:             {Type: TypeObject},
	KeyTallyEnabled:      {Type: TypeBoolean},
	KeyTallyHost:         {Type: TypeString, Required: true},
	KeyTallyPort:         {Type: TypeNumber, Min: bound(1), Max: bound(65535)},
	KeyTallyCompanyName:  {Type: TypeString},
	KeyTallySyncInterval: {Type: TypeNumber, Min: bound(1), Max: bound(1440)},

	KeySelectedTemplate:       {Type: TypeString, Enum: oneOf(TemplateIDs...), Required: true},
	KeyTemplateSettings:       {Type: TypeObject},
	KeyTemplateCustomizations: {Type: TypeObject},
	KeyInvoiceDefaults:        {Type: TypeObject},
	KeyInvoiceCurrency:        {Type: TypeString, Enum: oneOf("INR", "USD", "EUR", "GBP", "AED", "SGD"), Required: true},
	KeyInvoiceCGSTRate:        {Type: TypeNumber, Min: bound(0), Max: bound(50)},
	KeyInvoiceSGSTRate:        {Type: TypeNumber, Min: bound(0), Max: bound(50)},
	KeyInvoiceIGSTRate:        {Type: TypeNumber, Min: bound(0), Max: bound(100)},
	KeyInvoicePaymentTerms:    {Type: TypeNumber, Min: bound(0), Max: bound(365)},
	KeyInvoicePrefix:          {Type: TypeString, Required: true},
	KeyInvoiceNotes:           {Type: TypeString},
	KeyInvoiceNumberingNext:   {Type: TypeNumber, Min: bound(1)},
	KeyInvoiceNumberingPad:    {Type: TypeNumber, Min: bound(1), Max: bound(10)},
	KeyInvoiceNumberingYearly: {Type: TypeBoolean},

	KeyDefaultCompanyID: {Type: TypeString},
	KeyCompanyInitials:  {Type: TypeObject},

	KeyUITheme:            {Type: TypeString, Enum: oneOf(Themes...), Required: true},
	KeyUISidebarCollapsed: {Type: TypeBoolean},
	KeyUIZoomLevel:        {Type: TypeNumber, Min: bound(50), Max: bound(200)},
	KeyUIDateFormat:       {Type: TypeString, Enum: oneOf("DD/MM/YYYY", "MM/DD/YYYY", "YYYY-MM-DD")},
	KeyUITablePageSize:    {Type: TypeNumber, Min: bound(5), Max: bound(200)},
	KeyUIShowWelcome:      {Type: TypeBoolean},
}

func init() {
	for keyPath, r := range rules {
		r.Default, _ = DefaultFor(keyPath)
	}
}

// RuleFor returns the validation rule for keyPath, if any.
func RuleFor(keyPath string) (Rule, bool) {
	r, ok := rules[keyPath]
	if !ok {
		return Rule{}, false
	}
	return *r, true
}

// RuleKeys lists every key path that carries a rule.
func RuleKeys() []string {
	return lo.Keys(rules)
}

// Validate checks value against the rule for keyPath. Key paths without a
// rule accept any value.
func Validate(keyPath string, value any) error {
	if _, err := SplitKeyPath(keyPath); err != nil {
		return err
	}
	r, ok := rules[keyPath]
	if !ok {
		return nil
	}
	return r.check(keyPath, value)
}

// ValidateTree validates value at keyPath and, when value is an object,
// every nested key path that carries a rule.
func ValidateTree(keyPath string, value any) error {
	if err := Validate(keyPath, value); err != nil {
		return err
	}
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	for _, k := range lo.Keys(m) {
		if k == "" || strings.Contains(k, ".") {
			continue
		}
		if err := ValidateTree(keyPath+"."+k, m[k]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Rule) check(keyPath string, value any) error {
	if value == nil {
		if r.Required {
			return settings.NewValidationError(keyPath, value, "value is required")
		}
		return nil
	}

	switch r.Type {
	case TypeString:
		s, ok := value.(string)
		if !ok {
			return settings.NewValidationError(keyPath, value, fmt.Sprintf("expected string, got %T", value))
		}
		if r.Required && s == "" {
			return settings.NewValidationError(keyPath, value, "value is required")
		}
	case TypeNumber:
		n, ok := toFloat(value)
		if !ok {
			return settings.NewValidationError(keyPath, value, fmt.Sprintf("expected number, got %T", value))
		}
		if r.Min != nil && n < *r.Min {
			return settings.NewValidationError(keyPath, value, fmt.Sprintf("must be at least %v", *r.Min))
		}
		if r.Max != nil && n > *r.Max {
			return settings.NewValidationError(keyPath, value, fmt.Sprintf("must be at most %v", *r.Max))
		}
	case TypeBoolean:
		if _, ok := value.(bool); !ok {
			return settings.NewValidationError(keyPath, value, fmt.Sprintf("expected boolean, got %T", value))
		}
	case TypeObject:
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
			return settings.NewValidationError(keyPath, value, fmt.Sprintf("expected object, got %T", value))
		}
	case TypeArray:
		kind := reflect.ValueOf(value).Kind()
		if kind != reflect.Slice && kind != reflect.Array {
			return settings.NewValidationError(keyPath, value, fmt.Sprintf("expected array, got %T", value))
		}
	}

	if len(r.Enum) > 0 && !lo.Contains(r.Enum, value) {
		return settings.NewValidationError(keyPath, value, fmt.Sprintf("must be one of %v", r.Enum))
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
