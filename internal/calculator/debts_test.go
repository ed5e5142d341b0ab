package calculator

import (
	"errors"
	"math"
	"testing"

	"github.com/mmynk/hisaab/internal/models"
)

func TestApplyPayment(t *testing.T) {
	tests := []struct {
		name        string
		amount      float64
		paidAmount  float64
		payment     float64
		wantErr     error
		wantPaid    float64
		wantSettled bool
	}{
		{
			name:        "full payment settles the debt",
			amount:      1000,
			payment:     1000,
			wantPaid:    1000,
			wantSettled: true,
		},
		{
			name:     "near-full payment stays unsettled",
			amount:   1000,
			payment:  999.99,
			wantPaid: 999.99,
		},
		{
			name:        "final installment settles",
			amount:      500,
			paidAmount:  400,
			payment:     100,
			wantPaid:    500,
			wantSettled: true,
		},
		{
			name:       "partial installment accumulates",
			amount:     500,
			paidAmount: 100,
			payment:    150,
			wantPaid:   250,
		},
		{
			name:       "overpayment is rejected",
			amount:     500,
			paidAmount: 400,
			payment:    150,
			wantErr:    models.ErrOverpayment,
		},
		{
			name:    "zero payment is rejected",
			amount:  500,
			payment: 0,
			wantErr: models.ErrNonPositivePayment,
		},
		{
			name:    "negative payment is rejected",
			amount:  500,
			payment: -10,
			wantErr: models.ErrNonPositivePayment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyPayment(tt.amount, tt.paidAmount, tt.payment)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ApplyPayment() error = %v, want %v", err, tt.wantErr)
				}
				if !models.IsValidation(err) {
					t.Errorf("expected a ValidationError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyPayment() unexpected error: %v", err)
			}
			if math.Abs(got.PaidAmount-tt.wantPaid) > 1e-9 {
				t.Errorf("PaidAmount = %v, want %v", got.PaidAmount, tt.wantPaid)
			}
			if got.IsSettled != tt.wantSettled {
				t.Errorf("IsSettled = %v, want %v", got.IsSettled, tt.wantSettled)
			}
		})
	}
}
