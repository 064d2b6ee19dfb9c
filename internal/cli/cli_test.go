package cli

import (
	"bytes"
	"context"
	"testing"

	"fintrack/internal/config"
	"fintrack/internal/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "ada@example.com"
	testPassword = "secret123"
)

// newTestCLI returns a command runner sharing one in-memory App across
// invocations, signed in as the test user.
func newTestCLI(t *testing.T) (*App, func(args ...string) (string, error)) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("FINTRACK_EMAIL", testEmail)
	t.Setenv("FINTRACK_PASSWORD", testPassword)

	cfg := config.Default()
	cfg.DataBackend = config.BackendMemory
	app, err := NewApp(context.Background(), cfg, log.Discard(), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	_, err = app.Auth.SignUp(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		opts := &rootOptions{}
		opts.openApp = func(context.Context, string) (*App, error) { return app, nil }
		cmd := newRootCommand(opts)
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(args)
		err := cmd.ExecuteContext(context.Background())
		return out.String(), err
	}
	return app, run
}

func TestNewApp_MemoryGetsRandomSecret(t *testing.T) {
	cfg := config.Default()
	cfg.DataBackend = config.BackendMemory
	app, err := NewApp(context.Background(), cfg, log.Discard(), "")
	require.NoError(t, err)
	defer app.Close()

	assert.Len(t, cfg.JWTSecret, 2*config.MinJWTSecretLength)
	assert.Nil(t, app.Backend.Events)
	assert.NoError(t, app.Backend.Store.Ping(context.Background()))
}

func TestAddCommand(t *testing.T) {
	app, run := newTestCLI(t)

	out, err := run("add", "transaction", "--set",
		"date=2024-03-05,type=Expenditure,name=Lunch,category=Food,method=Cash,amount=12.50")
	require.NoError(t, err)
	assert.Contains(t, out, "Created transaction")

	out, err = run("add", "notes", "--set", "heading=Plan,content=Save more")
	require.NoError(t, err)
	assert.Contains(t, out, "Created note")

	session, err := app.Auth.SignIn(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	txs, err := app.Gateways.Transactions.List(context.Background(), session.UserID).Unwrap()
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "12.5", txs[0].Amount.String())
	assert.Equal(t, "2024-03-05", txs[0].Date.String())
}

func TestAddCommand_Invalid(t *testing.T) {
	_, run := newTestCLI(t)

	_, err := run("add", "budget", "--set", "category=Food,amount=-5,month=March,year=2024")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount:")

	_, err = run("add", "budget", "--set", "colour=red")
	require.Error(t, err)

	_, err = run("add", "widget", "--set", "name=x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown record type")
}

func TestReportCommands(t *testing.T) {
	_, run := newTestCLI(t)

	_, err := run("add", "budget", "--set", "category=Food,amount=100,month=March,year=2024")
	require.NoError(t, err)
	_, err = run("add", "transaction", "--set",
		"date=2024-03-05,type=Expenditure,name=Lunch,category=Food,method=Cash,amount=40")
	require.NoError(t, err)
	_, err = run("add", "asset", "--set", "name=Savings,amount=1000,currency=AED")
	require.NoError(t, err)

	out, err := run("report", "budget", "--month", "March", "--year", "2024")
	require.NoError(t, err)
	assert.Contains(t, out, "BUDGET")
	assert.Contains(t, out, "Food")
	assert.Contains(t, out, "100.00")
	assert.Contains(t, out, "60.00")

	out, err = run("report", "methods", "--month", "3", "--year", "2024")
	require.NoError(t, err)
	assert.Contains(t, out, "Cash")
	assert.Contains(t, out, "40.00")

	out, err = run("report", "yearly", "--year", "2024")
	require.NoError(t, err)
	assert.Contains(t, out, "Mar")
	assert.Contains(t, out, "Food")

	out, err = run("report", "monthly", "--year", "2024")
	require.NoError(t, err)
	assert.Contains(t, out, "MONTHLY BALANCE")
	assert.Contains(t, out, "March")
	assert.Contains(t, out, "-40.00")
	assert.NotContains(t, out, "April")

	out, err = run("report", "assets")
	require.NoError(t, err)
	assert.Contains(t, out, "Savings")
	assert.Contains(t, out, "1000.00")

	_, err = run("report", "yearly", "--type", "Gift")
	assert.Error(t, err)

	_, err = run("report", "budget", "--month", "Smarch", "--year", "2024")
	assert.Error(t, err)
}

func TestSignInFailure(t *testing.T) {
	_, run := newTestCLI(t)
	t.Setenv("FINTRACK_PASSWORD", "wrong-password")

	_, err := run("report", "assets")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid email or password")
}

func TestMigrateRejectsMemoryBackend(t *testing.T) {
	_, run := newTestCLI(t)

	_, err := run("migrate", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no schema to migrate")
}

func TestNormalizeType(t *testing.T) {
	for in, want := range map[string]string{
		"transaction":  "transaction",
		"Transactions": "transaction",
		" assets ":     "asset",
		"note":         "note",
	} {
		assert.Equal(t, want, normalizeType(in), in)
	}
}

func TestFieldErrors(t *testing.T) {
	err := fieldErrors(map[string]string{"name": "Name is required", "amount": "Amount must be a positive number"})
	assert.Equal(t, "invalid record:\n  amount: Amount must be a positive number\n  name: Name is required", err.Error())
}
