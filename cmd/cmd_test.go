package cmd

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/simonvc/pocketledger/internal/ledger"
	"github.com/simonvc/pocketledger/internal/service"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWhen(t *testing.T) {
	got, err := parseWhen("2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), got)

	got, err = parseWhen("2024-03-05T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())

	_, err = parseWhen("yesterday")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("start", "2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, civil.Date{Year: 2024, Month: 2, Day: 29}, d)

	_, err = parseDate("start", "2024-13-01")
	assert.ErrorContains(t, err, "--start")
}

func txnCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addTxnFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestApplyTxnFlagsOverlaysChangedOnly(t *testing.T) {
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	in := service.TransactionInput{
		Amount: decimal.NewFromInt(10), Type: ledger.Expense, Description: "lunch",
		Date: at, WalletID: "w1", CategoryID: "c1",
	}

	cmd := txnCommand(t, "--amount", "12.50", "--description", "dinner")
	require.NoError(t, applyTxnFlags(cmd, &in))

	assert.True(t, decimal.RequireFromString("12.50").Equal(in.Amount))
	assert.Equal(t, "dinner", in.Description)
	assert.Equal(t, ledger.Expense, in.Type)
	assert.Equal(t, "w1", in.WalletID)
	assert.Equal(t, "c1", in.CategoryID)
	assert.Equal(t, at, in.Date)
}

func TestApplyTxnFlagsTransferDropsCategory(t *testing.T) {
	in := service.TransactionInput{Type: ledger.Expense, WalletID: "w1", CategoryID: "c1"}
	cmd := txnCommand(t, "--type", "transfer", "--to-wallet", "w2")
	require.NoError(t, applyTxnFlags(cmd, &in))
	assert.Equal(t, ledger.Transfer, in.Type)
	assert.Equal(t, "w2", in.ToWalletID)
	assert.Empty(t, in.CategoryID)

	in = service.TransactionInput{Type: ledger.Transfer, WalletID: "w1", ToWalletID: "w2"}
	cmd = txnCommand(t, "--type", "income", "--category", "salary")
	require.NoError(t, applyTxnFlags(cmd, &in))
	assert.Empty(t, in.ToWalletID)
	assert.Equal(t, "salary", in.CategoryID)
}

func TestApplyTxnFlagsRejectsBadInput(t *testing.T) {
	var in service.TransactionInput
	assert.Error(t, applyTxnFlags(txnCommand(t, "--amount", "ten"), &in))
	assert.Error(t, applyTxnFlags(txnCommand(t, "--date", "soon"), &in))
}

func TestSignedAmount(t *testing.T) {
	txn := ledger.Transaction{
		Type: ledger.Transfer, Amount: decimal.NewFromInt(25),
		WalletID: "w1", ToWalletID: "w2",
	}
	assert.Equal(t, "-25.00", signedAmount(txn, "w1"))
	assert.Equal(t, "25.00", signedAmount(txn, "w2"))
	assert.Equal(t, "25.00", signedAmount(txn, "other"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefgh..", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "Café ..", truncate("Café au lait", 7), "cuts on rune boundaries")
	assert.Equal(t, "日本..", truncate("日本語の財布", 4))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "a", truncate("abc", 1))
	assert.Empty(t, truncate("abc", 0))
	assert.Empty(t, truncate("abc", -1))
}
