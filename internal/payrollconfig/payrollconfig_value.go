package payrollconfig

import (
	"encoding/json"
	"strconv"
	"strings"

	configerrors "go-payroll/internal/payrollconfig/errors"

	"github.com/shopspring/decimal"
)

// ConfigValue adalah tagged variant dari nilai konfigurasi. Pemanggil memilih
// coercion sesuai ValueType; salah tipe menghasilkan ErrConfigTypeError.
type ConfigValue struct {
	Type string
	raw  string
}

func NewConfigValue(valueType, raw string) ConfigValue {
	return ConfigValue{Type: valueType, raw: raw}
}

func (v ConfigValue) Raw() string {
	return v.raw
}

func (v ConfigValue) Decimal() (decimal.Decimal, error) {
	if v.Type != ValueDecimal {
		return decimal.Zero, configerrors.ErrConfigTypeError
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v.raw))
	if err != nil {
		return decimal.Zero, configerrors.ErrConfigTypeError
	}
	return d, nil
}

func (v ConfigValue) Int() (int, error) {
	if v.Type != ValueInteger {
		return 0, configerrors.ErrConfigTypeError
	}
	n, err := strconv.Atoi(strings.TrimSpace(v.raw))
	if err != nil {
		return 0, configerrors.ErrConfigTypeError
	}
	return n, nil
}

// Percent mengembalikan nilai persen apa adanya (8 berarti 8%).
func (v ConfigValue) Percent() (decimal.Decimal, error) {
	if v.Type != ValuePercentage {
		return decimal.Zero, configerrors.ErrConfigTypeError
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v.raw))
	if err != nil {
		return decimal.Zero, configerrors.ErrConfigTypeError
	}
	return d, nil
}

// Fraction = Percent / 100, siap dikalikan ke base.
func (v ConfigValue) Fraction() (decimal.Decimal, error) {
	p, err := v.Percent()
	if err != nil {
		return decimal.Zero, err
	}
	return p.Div(decimal.NewFromInt(100)), nil
}

func (v ConfigValue) Bool() (bool, error) {
	if v.Type != ValueBoolean {
		return false, configerrors.ErrConfigTypeError
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v.raw))
	if err != nil {
		return false, configerrors.ErrConfigTypeError
	}
	return b, nil
}

func (v ConfigValue) Text() (string, error) {
	if v.Type != ValueText {
		return "", configerrors.ErrConfigTypeError
	}
	return v.raw, nil
}

func (v ConfigValue) JSON(target any) error {
	if v.Type != ValueJSON {
		return configerrors.ErrConfigTypeError
	}
	if err := json.Unmarshal([]byte(v.raw), target); err != nil {
		return configerrors.ErrConfigTypeError
	}
	return nil
}
