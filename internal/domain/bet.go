package domain

// Poll es la proyección de solo lectura de un poll del contrato.
// Una vez Resolved=true el registro es inmutable; MaxPrice y los pools
// pueden seguir cambiando entre refrescos mientras no esté resuelto.
type Poll struct {
	ID          uint64
	Question    string
	EndTime     int64 // timestamp nativo del ledger, en segundos
	TargetPrice Amount
	MaxPrice    Amount // precio máximo observado durante la vida del poll
	TotalYes    Amount // pool agregado del lado YES
	TotalNo     Amount // pool agregado del lado NO
	Resolved    bool
}

// TotalPool devuelve YES + NO.
func (p Poll) TotalPool() (Amount, error) {
	return p.TotalYes.Add(p.TotalNo)
}

// Wager es la apuesta del usuario en un poll concreto.
// Un wager con ambos lados en cero no es participación: se excluye de
// todos los conjuntos aguas abajo.
type Wager struct {
	PollID uint64
	Yes    Amount
	No     Amount
}

// IsZero devuelve true si el usuario no tiene stake en el poll.
func (w Wager) IsZero() bool { return w.Yes.IsZero() && w.No.IsZero() }

// Total devuelve el stake completo del usuario (ambos lados).
func (w Wager) Total() (Amount, error) { return w.Yes.Add(w.No) }

// BetStatus es la variante de clasificación de una apuesta.
type BetStatus int

const (
	// StatusActive — el poll aún no está resuelto.
	StatusActive BetStatus = iota
	// StatusWon — poll resuelto y el lado del usuario coincide con el outcome.
	StatusWon
	// StatusLost — poll resuelto y el lado del usuario no coincide.
	StatusLost
)

// String devuelve el nombre legible del estado.
func (s BetStatus) String() string {
	switch s {
	case StatusActive:
		return "ACTIVE"
	case StatusWon:
		return "WON"
	case StatusLost:
		return "LOST"
	}
	return "UNKNOWN"
}

// Bet es una apuesta clasificada: el par (poll, wager) más el resultado del
// settlement. Es una función pura del estado del ledger en el momento del
// fetch; no se persiste, se recalcula entera en cada ciclo.
type Bet struct {
	Poll  Poll
	Wager Wager

	Status BetStatus

	// Outcome solo es significativo para polls resueltos:
	// true = ganó YES, false = ganó NO.
	Outcome bool

	// Payout y Profit solo aplican a StatusWon. Profit = payout − stake del
	// lado ganador; puede ser negativo si el poll no alcanzó el volumen
	// mínimo y el payout quedó en cero.
	Payout Amount
	Profit Amount

	// Loss solo aplica a StatusLost: el stake completo del poll.
	Loss Amount
}

// Stake devuelve el stake total del usuario en este poll (ambos lados).
func (b Bet) Stake() (Amount, error) { return b.Wager.Total() }
