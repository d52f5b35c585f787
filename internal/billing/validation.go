package billing

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/vsbilling/vsbilling/internal/shared"
)

// billNumberPattern caps the sequence at 18 digits so it always fits a
// Postgres bigint; the reconcile SQL applies the same bound.
var billNumberPattern = regexp.MustCompile(`^VS(\d{1,18})$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func billValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
		_ = v.RegisterValidation("billnumber", func(fl validator.FieldLevel) bool {
			_, ok := ParseBillNumber(fl.Field().String())
			return ok
		})
		validate = v
	})
	return validate
}

// ValidateBill checks the pre-conditions a caller must enforce before saving:
// contact fields present, an issued bill number, and every item named with a
// positive quantity and price. It returns a *shared.ValidationError.
func ValidateBill(b Bill) error {
	fields := make(map[string]string)
	for _, f := range []struct{ key, value string }{
		{"name", b.Name}, {"mobile", b.Mobile}, {"village_city", b.VillageCity},
	} {
		if strings.TrimSpace(f.value) == "" {
			fields[f.key] = "is required"
		}
	}

	err := billValidator().Struct(b)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			key := fieldKey(fe)
			if _, exists := fields[key]; exists {
				continue
			}
			fields[key] = fieldMessage(fe)
		}
	} else if err != nil {
		return err
	}

	if len(fields) > 0 {
		return shared.NewValidationError(fields)
	}
	return nil
}

// fieldKey strips the root struct name: "Bill.items[0].quantity" becomes "items[0].quantity".
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must not be negative"
	case "oneof":
		return "must be one of " + fe.Param()
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "billnumber":
		return "must be an issued bill number (VS followed by digits)"
	default:
		return "is invalid"
	}
}

// ParseBillNumber extracts the sequence from a "VS<digits>" bill number.
func ParseBillNumber(s string) (int64, bool) {
	m := billNumberPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatBillNumber renders a sequence as a bill number.
func FormatBillNumber(n int64) string {
	return "VS" + strconv.FormatInt(n, 10)
}
