// internal/domain/fee.go
package domain

import (
	"qrispay-ledger/internal/util"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// ComputeAdminFee computes the admin fee and net amount for a gross amount at
// the given percentage. The fee is rounded with decimal.Round(0), which rounds
// half away from zero; for the non-negative amounts handled here that is
// round-half-up. The results always reconcile: fee + net == gross.
func ComputeAdminFee(grossAmount int64, feePercentage decimal.Decimal) (fee int64, net int64, err error) {
	if grossAmount < 0 || feePercentage.IsNegative() {
		return 0, 0, util.ErrInvalidInput
	}

	fee = decimal.NewFromInt(grossAmount).
		Mul(feePercentage).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()

	return fee, grossAmount - fee, nil
}
