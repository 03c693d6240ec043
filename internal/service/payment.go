package service

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Method is a payment method. The set is closed: anything that is not an
// installment plan is paid instantly.
type Method string

const (
	MethodPix    Method = "pix"
	MethodCredit Method = "credit"
)

const (
	MinInstallments = 1
	MaxInstallments = 12
)

// monthly interest added per installment beyond the second
var interestStep = decimal.New(2, -2)

// ParseMethod maps a client supplied method name to a Method. Unknown names
// fall back to pix.
func ParseMethod(s string) Method {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "credit", "card", "installment", "credito", "cartao", "cartão":
		return MethodCredit
	default:
		return MethodPix
	}
}

// PaymentResult is the priced outcome of a payment. Installments and
// InstallmentValue are nil for instant payments.
type PaymentResult struct {
	Installments      *int
	InterestCents     int64
	TotalWithInterest int64
	InstallmentValue  *int64
	Message           string
}

// Processor prices an amount for one payment method.
type Processor interface {
	Method() Method
	Process(amountCents int64, installments *int) PaymentResult
}

// InstantProcessor charges the amount as is.
type InstantProcessor struct{}

func (InstantProcessor) Method() Method { return MethodPix }

func (InstantProcessor) Process(amountCents int64, _ *int) PaymentResult {
	return PaymentResult{
		TotalWithInterest: amountCents,
		Message:           "Pago " + FormatBRL(amountCents) + " via PIX",
	}
}

// InstallmentProcessor splits the amount into n installments. One and two
// installments are interest free; from the third on every extra
// installment adds 2% over the whole amount.
type InstallmentProcessor struct{}

func (InstallmentProcessor) Method() Method { return MethodCredit }

func (InstallmentProcessor) Process(amountCents int64, installments *int) PaymentResult {
	n := MinInstallments
	if installments != nil && *installments > 0 {
		n = *installments
	}

	total := amountCents
	if n >= 3 {
		factor := decimal.NewFromInt(1).Add(interestStep.Mul(decimal.NewFromInt(int64(n - 2))))
		// Round(0) rounds half away from zero
		total = decimal.NewFromInt(amountCents).Mul(factor).Round(0).IntPart()
	}
	interest := total - amountCents
	if interest < 0 {
		interest = 0
	}
	per := ceilDiv(total, int64(n))

	return PaymentResult{
		Installments:      &n,
		InterestCents:     interest,
		TotalWithInterest: total,
		InstallmentValue:  &per,
		Message:           "Pago " + FormatBRL(amountCents) + " via Cartão",
	}
}

// ProcessorFor returns the processor implementing m.
func ProcessorFor(m Method) Processor {
	if m == MethodCredit {
		return InstallmentProcessor{}
	}
	return InstantProcessor{}
}

// ComputePayment prices amountCents for method. Installments are only
// read by the installment plan and must already be within range.
func ComputePayment(amountCents int64, method Method, installments *int) PaymentResult {
	return ProcessorFor(method).Process(amountCents, installments)
}

// FormatBRL renders cents as Brazilian reais, e.g. 1050 -> "R$ 10,50".
func FormatBRL(cents int64) string {
	return "R$ " + strings.Replace(decimal.New(cents, -2).StringFixed(2), ".", ",", 1)
}

func ceilDiv(a, b int64) int64 {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}
