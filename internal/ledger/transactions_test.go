package ledger

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bulkinvoicer/pkg/models"
)

func TestBuildClientTransactions_RunningBalancePerClient(t *testing.T) {
	invoices := []models.Invoice{
		invoice("INV-1", "C1", day(2024, 1, 1), 100),
		invoice("INV-A", "C2", day(2024, 1, 2), 30),
		invoice("INV-2", "C1", day(2024, 1, 3), 50),
	}
	receipts := []models.Receipt{
		receipt("REC-1", "C1", day(2024, 1, 2), 40),
		receipt("REC-2", "C2", day(2024, 1, 4), 10),
	}

	ledger := BuildClientTransactions(day(2024, 1, 1), day(2024, 1, 31), invoices, receipts)

	require.Len(t, ledger, 5)

	var c1, c2 []Transaction
	for _, entry := range ledger {
		switch entry.Client {
		case "C1":
			c1 = append(c1, entry)
		case "C2":
			c2 = append(c2, entry)
		}
	}

	require.Len(t, c1, 3)
	assert.True(t, c1[0].Amount.Equal(dec(100)))
	assert.True(t, c1[1].Amount.Equal(dec(-40)))
	assert.True(t, c1[2].Amount.Equal(dec(50)))
	assert.True(t, c1[0].Balance.Equal(dec(100)))
	assert.True(t, c1[1].Balance.Equal(dec(60)))
	assert.True(t, c1[2].Balance.Equal(dec(110)))

	require.Len(t, c2, 2)
	assert.True(t, c2[0].Balance.Equal(dec(30)))
	assert.True(t, c2[1].Balance.Equal(dec(20)))
}

func TestBuildClientTransactions_SortedByDate(t *testing.T) {
	invoices := []models.Invoice{
		invoice("INV-2", "C1", day(2024, 1, 5), 50),
		invoice("INV-1", "C1", day(2024, 1, 1), 100),
	}
	receipts := []models.Receipt{
		receipt("REC-1", "C1", day(2024, 1, 3), 60),
	}

	ledger := BuildClientTransactions(day(2024, 1, 1), day(2024, 1, 31), invoices, receipts)

	assert.True(t, sort.SliceIsSorted(ledger, func(i, j int) bool {
		return ledger[i].Date.Before(ledger[j].Date)
	}))
	assert.Equal(t, []string{"INV-1", "REC-1", "INV-2"}, references(ledger))
}

func TestBuildClientTransactions_WindowBoundariesInclusive(t *testing.T) {
	invoices := []models.Invoice{
		invoice("INV-1", "C1", day(2024, 1, 1), 10),
		invoice("INV-2", "C1", day(2024, 1, 2), 20),
		invoice("INV-3", "C1", day(2024, 1, 3), 30),
	}
	receipts := []models.Receipt{
		receipt("REC-1", "C1", day(2024, 1, 2), 5),
	}

	ledger := BuildClientTransactions(day(2024, 1, 2), day(2024, 1, 2), invoices, receipts)

	assert.ElementsMatch(t, []string{"INV-2", "REC-1"}, references(ledger))

	// Balances reflect the excluded history before the window.
	for _, entry := range ledger {
		if entry.Reference == "INV-2" {
			assert.True(t, entry.Balance.Equal(dec(30)), "10 carried in + 20")
		}
	}
}

func TestBuildClientTransactions_OnlyReceipts(t *testing.T) {
	receipts := []models.Receipt{
		receipt("REC-1", "C1", day(2024, 1, 1), 25),
		receipt("REC-2", "C1", day(2024, 1, 2), 10),
	}

	ledger := BuildClientTransactions(day(2024, 1, 1), day(2024, 1, 31), nil, receipts)

	require.Len(t, ledger, 2)
	assert.Equal(t, TransactionReceipt, ledger[0].Type)
	assert.True(t, ledger[0].Balance.Equal(dec(-25)))
	assert.True(t, ledger[1].Balance.Equal(dec(-35)))
}

func TestBuildClientTransactions_TypeAndReferenceMapping(t *testing.T) {
	invoices := []models.Invoice{invoice("INV-100", "C1", day(2024, 2, 1), 200)}
	receipts := []models.Receipt{receipt("REC-200", "C1", day(2024, 2, 2), 150)}

	ledger := BuildClientTransactions(time.Time{}, time.Time{}, invoices, receipts)

	require.Len(t, ledger, 2)
	assert.Equal(t, TransactionInvoice, ledger[0].Type)
	assert.Equal(t, "INV-100", ledger[0].Reference)
	assert.True(t, ledger[0].Amount.Equal(dec(200)))
	assert.Equal(t, TransactionReceipt, ledger[1].Type)
	assert.True(t, ledger[1].Amount.Equal(dec(-150)))
	assert.True(t, ledger[1].Balance.Equal(dec(50)))
}

func references(ledger []Transaction) []string {
	refs := make([]string, len(ledger))
	for i, entry := range ledger {
		refs[i] = entry.Reference
	}
	return refs
}
