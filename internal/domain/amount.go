package domain

// amount.go — aritmética de punto fijo a escala 1e8.
//
// El contrato PredictionMarketplace opera con enteros escalados por 10^8 y
// división entera que trunca hacia cero. Todo el cálculo de settlement pasa
// por este tipo: nunca float, nunca redondeo. Un resultado que no cabe en
// int64 es un error (ErrAmountOverflow), jamás un wraparound silencioso.

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Scale es el divisor implícito de todos los montos del ledger (10^8).
const Scale = 100_000_000

// ErrAmountOverflow se devuelve cuando una operación no cabe en int64.
// La clasificación del poll afectado se descarta y se loguea (nunca se
// publica un monto truncado por wraparound).
var ErrAmountOverflow = errors.New("domain: amount overflow")

// Amount es un monto del ledger: entero con signo escalado por Scale.
// El valor cero es utilizable directamente.
type Amount int64

// NewAmount construye un Amount desde el entero crudo del ledger.
func NewAmount(raw int64) Amount { return Amount(raw) }

// AmountFromBig convierte un entero del wire (uint256) validando que quepa.
func AmountFromBig(v *big.Int) (Amount, error) {
	if v == nil {
		return 0, fmt.Errorf("domain.AmountFromBig: nil value")
	}
	if !v.IsInt64() {
		return 0, fmt.Errorf("domain.AmountFromBig: %s: %w", v.String(), ErrAmountOverflow)
	}
	return Amount(v.Int64()), nil
}

// Raw devuelve el entero subyacente sin escalar.
func (a Amount) Raw() int64 { return int64(a) }

// IsZero devuelve true si el monto es exactamente cero.
func (a Amount) IsZero() bool { return a == 0 }

// IsPositive devuelve true si el monto es estrictamente mayor que cero.
func (a Amount) IsPositive() bool { return a > 0 }

// Cmp compara dos montos: -1 si a < b, 0 si iguales, +1 si a > b.
func (a Amount) Cmp(b Amount) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Add suma dos montos con chequeo de overflow.
func (a Amount) Add(b Amount) (Amount, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, fmt.Errorf("domain.Amount.Add: %d + %d: %w", a, b, ErrAmountOverflow)
	}
	return sum, nil
}

// Sub resta b de a con chequeo de overflow. El resultado puede ser negativo
// (PnL es un monto con signo).
func (a Amount) Sub(b Amount) (Amount, error) {
	diff := a - b
	if (b < 0 && diff < a) || (b > 0 && diff > a) {
		return 0, fmt.Errorf("domain.Amount.Sub: %d - %d: %w", a, b, ErrAmountOverflow)
	}
	return diff, nil
}

// MulInt multiplica por un escalar entero usando intermedio ancho.
func (a Amount) MulInt(n int64) (Amount, error) {
	wide := new(big.Int).Mul(big.NewInt(int64(a)), big.NewInt(n))
	return amountFromWide(wide, "MulInt")
}

// Mul multiplica dos montos de punto fijo: (a × b) / Scale con intermedio
// en big.Int y truncamiento hacia cero al reescalar.
func (a Amount) Mul(b Amount) (Amount, error) {
	wide := new(big.Int).Mul(big.NewInt(int64(a)), big.NewInt(int64(b)))
	wide.Quo(wide, big.NewInt(Scale))
	return amountFromWide(wide, "Mul")
}

// Div divide dos montos de punto fijo: (a × Scale) / b, truncando hacia cero.
func (a Amount) Div(b Amount) (Amount, error) {
	if b == 0 {
		return 0, fmt.Errorf("domain.Amount.Div: division by zero")
	}
	wide := new(big.Int).Mul(big.NewInt(int64(a)), big.NewInt(Scale))
	wide.Quo(wide, big.NewInt(int64(b)))
	return amountFromWide(wide, "Div")
}

// MulDiv calcula (a × mul) / div en UN solo paso: multiplicación ancha
// seguida de una única división truncante. El orden multiplica-luego-divide
// replica bit a bit la expresión entera del contrato y no debe reasociarse.
func (a Amount) MulDiv(mul, div Amount) (Amount, error) {
	if div == 0 {
		return 0, fmt.Errorf("domain.Amount.MulDiv: division by zero")
	}
	wide := new(big.Int).Mul(big.NewInt(int64(a)), big.NewInt(int64(mul)))
	wide.Quo(wide, big.NewInt(int64(div)))
	return amountFromWide(wide, "MulDiv")
}

// MulQuo calcula (a × num) / den con escalares enteros en un solo paso
// truncante. Es la forma de las fracciones del contrato (fee 3/100,
// volumen mínimo 4/100): truncar por separado divergiría del ledger.
func (a Amount) MulQuo(num, den int64) (Amount, error) {
	if den == 0 {
		return 0, fmt.Errorf("domain.Amount.MulQuo: division by zero")
	}
	wide := new(big.Int).Mul(big.NewInt(int64(a)), big.NewInt(num))
	wide.Quo(wide, big.NewInt(den))
	return amountFromWide(wide, "MulQuo")
}

// Decimal renderiza el monto como decimal legible con prec dígitos
// fraccionarios (0..8), truncando, nunca redondeando. Solo para
// presentación: ningún cálculo de settlement parte de esta cadena.
func (a Amount) Decimal(prec int) string {
	if prec < 0 {
		prec = 0
	}
	if prec > 8 {
		prec = 8
	}

	v := int64(a)
	neg := v < 0
	if neg {
		v = -v
	}

	whole := v / Scale
	frac := v % Scale

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	fmt.Fprintf(&sb, "%d", whole)
	if prec > 0 {
		fracStr := fmt.Sprintf("%08d", frac)
		sb.WriteByte('.')
		sb.WriteString(fracStr[:prec])
	}
	return sb.String()
}

// String implementa fmt.Stringer con la precisión completa del ledger.
func (a Amount) String() string { return a.Decimal(8) }

// amountFromWide colapsa el intermedio big.Int a Amount validando el rango.
func amountFromWide(wide *big.Int, op string) (Amount, error) {
	if !wide.IsInt64() {
		return 0, fmt.Errorf("domain.Amount.%s: result %s: %w", op, wide.String(), ErrAmountOverflow)
	}
	return Amount(wide.Int64()), nil
}
