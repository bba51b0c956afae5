package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/arcflow/arcflow-backend/pkg/briefing/schema"
	"github.com/arcflow/arcflow-backend/pkg/briefing/types"
)

const (
	CHECK_POSITIVE_NUMBER = "positive_number"
	CHECK_DAYS_RANGE      = "days_range"
	CHECK_INTEGER_RANGE   = "integer_range"
)

// RegisterChecks adds the domain answer checks used by the catalog schemas.
func RegisterChecks(checks *schema.CheckRegistry) {
	checks.Register(CHECK_POSITIVE_NUMBER, positiveNumber)
	checks.Register(CHECK_DAYS_RANGE, daysRange)
	checks.Register(CHECK_INTEGER_RANGE, integerRange)
}

func NewCheckRegistry() *schema.CheckRegistry {
	checks := schema.NewCheckRegistry()
	RegisterChecks(checks)
	return checks
}

// parseNumber accepts "1250", "1250.5", "1.250,5" and "1250,5".
func parseNumber(value string) (float64, error) {
	v := strings.TrimSpace(value)
	v = strings.TrimSuffix(v, "m²")
	v = strings.TrimSpace(v)
	if strings.Contains(v, ",") {
		v = strings.ReplaceAll(v, ".", "")
		v = strings.ReplaceAll(v, ",", ".")
	}
	return strconv.ParseFloat(v, 64)
}

func positiveNumber(value types.AnswerValue, _ map[string]string) error {
	if value.IsList {
		return errors.New("expected a number")
	}
	n, err := parseNumber(value.Text)
	if err != nil {
		return errors.New("expected a number")
	}
	if n <= 0 {
		return errors.New("value must be greater than zero")
	}
	return nil
}

func intParam(params map[string]string, name string) (int, bool, error) {
	raw, ok := params[name]
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s parameter: %s", name, raw)
	}
	return v, true, nil
}

func checkIntegerBounds(value types.AnswerValue, params map[string]string, unit string) error {
	if value.IsList {
		return errors.New("expected a whole number")
	}
	n, err := strconv.Atoi(strings.TrimSpace(value.Text))
	if err != nil {
		return errors.New("expected a whole number")
	}
	min, hasMin, err := intParam(params, "min")
	if err != nil {
		return err
	}
	max, hasMax, err := intParam(params, "max")
	if err != nil {
		return err
	}
	if hasMin && n < min {
		return fmt.Errorf("must be at least %d%s", min, unit)
	}
	if hasMax && n > max {
		return fmt.Errorf("must be at most %d%s", max, unit)
	}
	return nil
}

func integerRange(value types.AnswerValue, params map[string]string) error {
	return checkIntegerBounds(value, params, "")
}

// daysRange defaults to a deadline between 1 and 3650 days.
func daysRange(value types.AnswerValue, params map[string]string) error {
	p := map[string]string{"min": "1", "max": "3650"}
	for k, v := range params {
		p[k] = v
	}
	return checkIntegerBounds(value, p, " days")
}
