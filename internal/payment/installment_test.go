package payment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
)

func TestComputeInstallment(t *testing.T) {
	tests := []struct {
		name        string
		total       int64
		plan        domain.InstallmentPlan
		installment int64
		due         int64
	}{
		{name: "full payment", total: 10000, plan: 1, installment: 10000, due: 0},
		{name: "three part plan", total: 10000, plan: 3, installment: 3000, due: 7000},
		{name: "three part plan rounds up", total: 9999, plan: 3, installment: 3000, due: 6999},
		{name: "two part plan rounds up", total: 9999, plan: 2, installment: 5000, due: 4999},
		{name: "four part plan", total: 10001, plan: 4, installment: 2501, due: 7500},
		{name: "small total", total: 1, plan: 6, installment: 1, due: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			installment, due, err := ComputeInstallment(tt.total, tt.plan)
			require.NoError(t, err)
			assert.Equal(t, tt.installment, installment)
			assert.Equal(t, tt.due, due)
		})
	}
}

func TestComputeInstallment_SumsToTotal(t *testing.T) {
	for total := int64(1); total <= 2000; total += 7 {
		for plan := domain.PlanFull; plan <= domain.MaxInstallmentPlan; plan++ {
			installment, due, err := ComputeInstallment(total, plan)
			require.NoError(t, err)
			assert.Equal(t, total, installment+due, "total=%d plan=%d", total, plan)
			assert.GreaterOrEqual(t, due, int64(0))
		}
	}
}

func TestComputeInstallment_Errors(t *testing.T) {
	_, _, err := ComputeInstallment(0, 1)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, _, err = ComputeInstallment(100, 0)
	assert.ErrorIs(t, err, ErrInvalidPlan)

	_, _, err = ComputeInstallment(100, domain.MaxInstallmentPlan+1)
	assert.ErrorIs(t, err, ErrInvalidPlan)

	// total*30 переполнил бы int64
	_, _, err = ComputeInstallment(math.MaxInt64/10, domain.PlanThreeInstalment)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, _, err = NextInstallment(math.MaxInt64/10, math.MaxInt64/20, domain.PlanThreeInstalment, 1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestComputeInstallment_LargestPrice(t *testing.T) {
	installment, due, err := ComputeInstallment(domain.MaxPackagePrice, domain.PlanThreeInstalment)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxPackagePrice*30/100, installment)
	assert.Equal(t, domain.MaxPackagePrice, installment+due)
}

func TestNextInstallment_ThreePartPlan(t *testing.T) {
	amount, index, err := NextInstallment(10000, 7000, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), amount)
	assert.Equal(t, 2, index)

	amount, index, err = NextInstallment(10000, 3000, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), amount)
	assert.Equal(t, 3, index)

	_, _, err = NextInstallment(10000, 0, 3, 3)
	assert.ErrorIs(t, err, ErrNothingDue)
}

func TestNextInstallment_EvenPlanClosesRemainder(t *testing.T) {
	total := int64(9999)
	installment, due, err := ComputeInstallment(total, 4)
	require.NoError(t, err)

	paid := installment
	for i := 1; due > 0; i++ {
		amount, index, err := NextInstallment(total, due, 4, i)
		require.NoError(t, err)
		assert.Equal(t, i+1, index)
		assert.LessOrEqual(t, amount, due)
		due -= amount
		paid += amount
		require.LessOrEqual(t, index, 4)
	}
	assert.Equal(t, total, paid)
}

func TestNextInstallment_CappedAtDue(t *testing.T) {
	amount, index, err := NextInstallment(10000, 500, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(500), amount)
	assert.Equal(t, 2, index)
}
