package payment

import (
	"fmt"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
)

// ComputeInstallment считает первый платеж и остаток по плану рассрочки.
// Всегда выполняется installment + due == total
func ComputeInstallment(total int64, plan domain.InstallmentPlan) (installment int64, due int64, err error) {
	if total <= 0 || total > domain.MaxPackagePrice {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidAmount, total)
	}
	if !plan.IsValid() {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidPlan, plan)
	}

	switch plan {
	case domain.PlanFull:
		installment = total
	case domain.PlanThreeInstalment:
		installment = ceilDiv(total*domain.ThreePartFirstPercent, 100)
	default:
		installment = ceilDiv(total, int64(plan))
	}

	return installment, total - installment, nil
}

// NextInstallment считает сумму очередного платежа по существующему бронированию.
// paidInstallments - число уже оплаченных частей, возвращается номер следующей части
func NextInstallment(total, due int64, plan domain.InstallmentPlan, paidInstallments int) (amount int64, index int, err error) {
	if !plan.IsValid() {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidPlan, plan)
	}
	if due <= 0 {
		return 0, 0, ErrNothingDue
	}
	if total <= 0 || total > domain.MaxPackagePrice || due > total {
		return 0, 0, fmt.Errorf("%w: total=%d due=%d", ErrInvalidAmount, total, due)
	}

	index = paidInstallments + 1

	switch {
	case index >= int(plan):
		// последняя часть всегда закрывает остаток
		amount = due
	case plan == domain.PlanThreeInstalment && index == 2:
		amount = ceilDiv(total*domain.ThreePartSecondPercent, 100)
	default:
		amount = ceilDiv(total, int64(plan))
	}

	if amount > due {
		amount = due
	}
	return amount, index, nil
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
