package money

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency валюта платформы
const DefaultCurrency = "INR"

// ErrOverflow сумма не помещается в int64 в минимальных единицах
var ErrOverflow = errors.New("money: amount overflows minor units")

var printer = message.NewPrinter(language.English)

// Format форматирует сумму в основных единицах: "INR 10,000"
func Format(amount int64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return printer.Sprintf("%s %d", code, amount)
	}
	return printer.Sprintf("%s %d", unit.String(), amount)
}

// ToMinorUnits переводит сумму в минимальные единицы валюты (рупии -> пайсы)
func ToMinorUnits(amount int64, code string) (int64, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return 0, fmt.Errorf("money: unknown currency %q: %w", code, err)
	}
	scale, _ := currency.Standard.Rounding(unit)
	factor := int64(1)
	for i := 0; i < scale; i++ {
		factor *= 10
	}
	if amount > math.MaxInt64/factor || amount < math.MinInt64/factor {
		return 0, fmt.Errorf("%w: %d %s", ErrOverflow, amount, code)
	}
	return amount * factor, nil
}

// FromMinorUnits переводит сумму из минимальных единиц в основные (с округлением вверх)
func FromMinorUnits(minor int64, code string) (int64, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return 0, fmt.Errorf("money: unknown currency %q: %w", code, err)
	}
	scale, _ := currency.Standard.Rounding(unit)
	factor := int64(1)
	for i := 0; i < scale; i++ {
		factor *= 10
	}
	return (minor + factor - 1) / factor, nil
}
