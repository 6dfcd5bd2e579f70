package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/ayush035/syn-Polygon/internal/domain"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime el snapshot del ciclo en el modo configurado.
func (c *Console) Notify(_ context.Context, stats domain.Stats) error {
	if c.table {
		c.printFull(stats)
	} else {
		c.printCompact(stats)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(stats domain.Stats) {
	now := time.Now().Format("15:04:05")
	total := len(stats.Active) + len(stats.Won) + len(stats.Lost)

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d bets → A:%d W:%d L:%d | wagered %s won %s pnl %s",
		now, total, len(stats.Active), len(stats.Won), len(stats.Lost),
		stats.TotalWagered.Decimal(2), stats.TotalWon.Decimal(2), signedDecimal(stats.TotalPnL, 2))

	if stats.ResolvedCount() > 0 {
		fmt.Fprintf(&sb, " | winrate %.1f%% roi %.1f%%", stats.WinRate(), stats.ROI())
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime la tabla completa de apuestas más el resumen.
func (c *Console) printFull(stats domain.Stats) {
	now := time.Now().Format("15:04:05")
	total := len(stats.Active) + len(stats.Won) + len(stats.Lost)

	fmt.Fprintf(c.out, "\n[%s] %d bets — active:%d won:%d lost:%d\n",
		now, total, len(stats.Active), len(stats.Won), len(stats.Lost))

	if total > 0 {
		c.printTable(stats)
	}
	c.printSummary(stats)
}

// printTable imprime una fila por apuesta, en orden ascendente de poll.
func (c *Console) printTable(stats domain.Stats) {
	table := tablewriter.NewWriter(c.out)
	table.Header("Poll", "Status", "Question", "End", "Stake", "Target", "Max", "Result")

	for _, group := range [][]domain.Bet{stats.Active, stats.Won, stats.Lost} {
		for _, b := range group {
			table.Append(
				fmt.Sprintf("%d", b.Poll.ID),
				b.Status.String(),
				truncate(b.Poll.Question, 40),
				time.Unix(b.Poll.EndTime, 0).UTC().Format("2006-01-02"),
				stakeLabel(b),
				b.Poll.TargetPrice.Decimal(2),
				b.Poll.MaxPrice.Decimal(2),
				resultLabel(b),
			)
		}
	}

	table.Render()
}

// printSummary imprime los totales agregados del ciclo.
func (c *Console) printSummary(stats domain.Stats) {
	fmt.Fprintf(c.out, "\n  Total wagered: %s\n", stats.TotalWagered.Decimal(8))
	fmt.Fprintf(c.out, "  Total won:     %s\n", stats.TotalWon.Decimal(8))
	fmt.Fprintf(c.out, "  Total PnL:     %s\n", signedDecimal(stats.TotalPnL, 8))

	if stats.ResolvedCount() > 0 {
		fmt.Fprintf(c.out, "  Win rate:      %.1f%% (%d/%d)\n",
			stats.WinRate(), len(stats.Won), stats.ResolvedCount())
	}
	if stats.TotalWagered.IsPositive() {
		fmt.Fprintf(c.out, "  ROI:           %.1f%%\n", stats.ROI())
	}
	fmt.Fprintln(c.out)
}

// stakeLabel resume el stake del usuario marcando el lado.
func stakeLabel(b domain.Bet) string {
	switch {
	case b.Wager.Yes.IsPositive() && b.Wager.No.IsPositive():
		return fmt.Sprintf("Y:%s N:%s", b.Wager.Yes.Decimal(2), b.Wager.No.Decimal(2))
	case b.Wager.Yes.IsPositive():
		return "YES " + b.Wager.Yes.Decimal(2)
	default:
		return "NO " + b.Wager.No.Decimal(2)
	}
}

// resultLabel muestra payout/profit o pérdida según el estado.
func resultLabel(b domain.Bet) string {
	switch b.Status {
	case domain.StatusWon:
		return fmt.Sprintf("payout %s (%s)", b.Payout.Decimal(2), signedDecimal(b.Profit, 2))
	case domain.StatusLost:
		return "-" + b.Loss.Decimal(2)
	}
	return "-"
}

// signedDecimal antepone '+' a los montos positivos (PnL legible).
func signedDecimal(a domain.Amount, prec int) string {
	s := a.Decimal(prec)
	if a.IsPositive() {
		return "+" + s
	}
	return s
}

// truncate corta la pregunta a maxLen caracteres.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
