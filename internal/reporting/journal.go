package reporting

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/tradesentry/signal-sentry-bot/internal/risk"
)

// Journal collects closed trades for end-of-session reporting.
type Journal struct {
	mu     sync.Mutex
	trades []risk.ClosedTrade
}

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{}
}

// Append records a closed trade.
func (j *Journal) Append(trade risk.ClosedTrade) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.trades = append(j.trades, trade)
}

// Trades returns a snapshot of the recorded trades.
func (j *Journal) Trades() []risk.ClosedTrade {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]risk.ClosedTrade, len(j.trades))
	copy(out, j.trades)
	return out
}

// Summary aggregates the journal.
type Summary struct {
	TotalTrades int
	Wins        int
	Losses      int
	WinRate     float64
	NetPnL      float64
}

// Summarize computes the aggregate stats of the recorded trades.
func (j *Journal) Summarize() Summary {
	j.mu.Lock()
	defer j.mu.Unlock()

	s := Summary{TotalTrades: len(j.trades)}
	for _, t := range j.trades {
		s.NetPnL += t.PnL
		if t.PnL > 0 {
			s.Wins++
		} else {
			s.Losses++
		}
	}
	if s.TotalTrades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.TotalTrades)
	}
	return s
}

// RenderConsole writes the trade table and summary to w.
func (j *Journal) RenderConsole(w io.Writer) {
	trades := j.Trades()
	summary := j.Summarize()

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Symbol", "Side", "Entry", "Exit", "Qty", "P&L", "P&L %", "Reason", "Held"})

	for i, trade := range trades {
		t.AppendRow(table.Row{
			i + 1,
			trade.Symbol,
			trade.Side,
			fmt.Sprintf("%.4f", trade.Entry),
			fmt.Sprintf("%.4f", trade.Exit),
			fmt.Sprintf("%.4f", trade.Quantity),
			fmt.Sprintf("%+.2f", trade.PnL),
			fmt.Sprintf("%+.2f%%", trade.ProfitPct),
			trade.Reason,
			trade.HoldingTime.Round(time.Second),
		})
	}

	t.AppendFooter(table.Row{"", "", "", "", "", "",
		fmt.Sprintf("%+.2f", summary.NetPnL),
		fmt.Sprintf("win %.0f%%", summary.WinRate*100),
		fmt.Sprintf("%d trades", summary.TotalTrades), ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})
	t.Render()
}
