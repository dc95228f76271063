package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"bulkinvoicer/internal/logger"
	"bulkinvoicer/pkg/models"
)

// MonthlyBalance is one (client, calendar month) row of the periodic
// summary. Balance is the cumulative invoiced-minus-received over the
// client's entire history up to and including the month; Open is the
// previous month's Balance.
type MonthlyBalance struct {
	Client      string          `json:"client"`
	DisplayName string          `json:"client_display_name"`
	Month       time.Time       `json:"month"`
	Open        decimal.Decimal `json:"open"`
	Invoiced    decimal.Decimal `json:"invoiced"`
	Received    decimal.Decimal `json:"received"`
	Balance     decimal.Decimal `json:"balance"`
}

// AggregateBalance is the all-clients rollup of MonthlyBalance rows for
// one month. CloseDate is the last day of the month.
type AggregateBalance struct {
	Month     time.Time       `json:"month"`
	CloseDate time.Time       `json:"close_date"`
	Open      decimal.Decimal `json:"open"`
	Invoiced  decimal.Decimal `json:"invoiced"`
	Received  decimal.Decimal `json:"received"`
	Balance   decimal.Decimal `json:"balance"`
}

type monthlyActivity struct {
	invoiced decimal.Decimal
	received decimal.Decimal
}

// ComputeMonthlyClientBalances builds one row per client per calendar month
// in [start, end], from the close views of the history.
//
// Every client gets a row for every month of the window, activity or not,
// so closing balances carry forward through silent months. The running
// balance is accumulated over all history from inception; the window filter
// is applied only after the accumulation, so a truncated window never
// resets the running total. The close views must cover full history up to
// the window end, not just the report window.
func ComputeMonthlyClientBalances(
	start, end time.Time,
	invoicesClose []models.Invoice,
	receiptsClose []models.Receipt,
	clients []models.Client,
) []MonthlyBalance {
	log := logger.WithComponent("ledger")
	log.Info().
		Time("start", start).
		Time("end", end).
		Msg("Generating periodic summary")

	activity := make(map[string]map[time.Time]*monthlyActivity)
	bucket := func(client string, month time.Time) *monthlyActivity {
		if activity[client] == nil {
			activity[client] = make(map[time.Time]*monthlyActivity)
		}
		if activity[client][month] == nil {
			activity[client][month] = &monthlyActivity{
				invoiced: decimal.Zero,
				received: decimal.Zero,
			}
		}
		return activity[client][month]
	}

	for _, inv := range invoicesClose {
		b := bucket(inv.Client, monthOf(inv.Date))
		b.invoiced = b.invoiced.Add(inv.Total)
	}
	for _, rec := range receiptsClose {
		b := bucket(rec.Client, monthOf(rec.Date))
		b.received = b.received.Add(rec.Amount)
	}

	windowStart := monthOf(start)
	windowEnd := monthOf(end)

	var rows []MonthlyBalance
	for _, client := range clients {
		months := make(map[time.Time]bool)
		for month := range activity[client.Name] {
			months[month] = true
		}
		for month := windowStart; !month.After(windowEnd); month = month.AddDate(0, 1, 0) {
			months[month] = true
		}

		ordered := make([]time.Time, 0, len(months))
		for month := range months {
			ordered = append(ordered, month)
		}
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })

		running := decimal.Zero
		for _, month := range ordered {
			invoiced := decimal.Zero
			received := decimal.Zero
			if b := activity[client.Name][month]; b != nil {
				invoiced = b.invoiced
				received = b.received
			}

			open := running
			running = running.Add(invoiced).Sub(received)

			// Cumulate first, filter after.
			if month.Before(start) || month.After(end) {
				continue
			}

			rows = append(rows, MonthlyBalance{
				Client:      client.Name,
				DisplayName: client.Label(),
				Month:       month,
				Open:        open,
				Invoiced:    invoiced,
				Received:    received,
				Balance:     running,
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Month.Equal(rows[j].Month) {
			return rows[i].Month.Before(rows[j].Month)
		}
		return rows[i].Client < rows[j].Client
	})

	return rows
}

// SummarizeBalanceData rolls MonthlyBalance rows up across clients into one
// row per month, dropping months with no invoiced and no received activity.
// Per-client rows keep their silent months; only the rollup omits them.
func SummarizeBalanceData(rows []MonthlyBalance) []AggregateBalance {
	byMonth := make(map[time.Time]*AggregateBalance)
	for _, row := range rows {
		agg := byMonth[row.Month]
		if agg == nil {
			agg = &AggregateBalance{
				Month:     row.Month,
				CloseDate: monthEnd(row.Month),
				Open:      decimal.Zero,
				Invoiced:  decimal.Zero,
				Received:  decimal.Zero,
				Balance:   decimal.Zero,
			}
			byMonth[row.Month] = agg
		}
		agg.Open = agg.Open.Add(row.Open)
		agg.Invoiced = agg.Invoiced.Add(row.Invoiced)
		agg.Received = agg.Received.Add(row.Received)
		agg.Balance = agg.Balance.Add(row.Balance)
	}

	out := make([]AggregateBalance, 0, len(byMonth))
	for _, agg := range byMonth {
		if agg.Invoiced.IsZero() && agg.Received.IsZero() {
			continue
		}
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func monthEnd(month time.Time) time.Time {
	return month.AddDate(0, 1, -1)
}
