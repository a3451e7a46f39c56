package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"budget/internal/config"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATA_BACKEND", "SQLITE_DB_PATH", "ITEMS_FILE", "SEED_FILE", "BUDGET_TABLE",
		"AMQP_URL", "LOG_LEVEL", "HISTORY_FILE", "PROMPT_MAX_ATTEMPTS",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("SEED_FILE", filepath.Join(t.TempDir(), "none.txt"))
}

func TestRun_PayReport(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "items.json")
	doc := `{
		// hand edited
		"_default": [
			{"id": "a", "title": "Rent", "cost": 90000, "priority": 10, "interval": "monthly"},
		],
		"holiday": [
			{"id": "b", "title": "Flights", "cost": 25000, "priority": 3, "interval": "weekly"}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "default table",
			args: []string{"--items-file", path, "40000"},
			want: "Base pay is £400.00\nMoney spent on items is £300.00\nMoney left over is £100.00\n",
		},
		{
			name: "named table",
			args: []string{"-b", "json", "--items-file", path, "-t", "holiday", "30000"},
			want: "Base pay is £300.00\nMoney spent on items is £250.00\nMoney left over is £50.00\n",
		},
		{
			name: "pay too small for anything",
			args: []string{"--items-file=" + path, "100"},
			want: "Base pay is £1.00\nMoney spent on items is £0.00\nMoney left over is £1.00\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer

			code := run(context.Background(), tt.args, &out, &errOut)

			require.Equal(t, 0, code, errOut.String())
			require.Equal(t, tt.want, out.String())
		})
	}
}

func TestRun_MemoryBackendWithoutItems(t *testing.T) {
	isolateEnv(t)
	var out, errOut bytes.Buffer

	code := run(context.Background(), []string{"--backend", "memory", "50000"}, &out, &errOut)

	require.Equal(t, 0, code, errOut.String())
	require.Equal(t, "Base pay is £500.00\nMoney spent on items is £0.00\nMoney left over is £500.00\n", out.String())
}

func TestRun_SQLiteBackend(t *testing.T) {
	isolateEnv(t)
	var out, errOut bytes.Buffer
	db := filepath.Join(t.TempDir(), "budget.db")

	code := run(context.Background(), []string{"-b", "sqlite", "--db", db, "0"}, &out, &errOut)

	require.Equal(t, 0, code, errOut.String())
	require.Contains(t, out.String(), "Money left over is £0.00")
	_, err := os.Stat(db)
	require.NoError(t, err)
}

func TestRun_Errors(t *testing.T) {
	isolateEnv(t)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{name: "negative pay", args: []string{"-b", "memory", "--", "-5"}, wantCode: 2, wantErr: "non-negative integer"},
		{name: "fractional pay", args: []string{"-b", "memory", "12.5"}, wantCode: 2, wantErr: "non-negative integer"},
		{name: "two arguments", args: []string{"1", "2"}, wantCode: 2, wantErr: "at most one argument"},
		{name: "unknown flag", args: []string{"--nope"}, wantCode: 2, wantErr: "unknown flag"},
		{name: "bad backend", args: []string{"-b", "sheets", "100"}, wantCode: 1, wantErr: "invalid data backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer

			code := run(context.Background(), tt.args, &out, &errOut)

			require.Equal(t, tt.wantCode, code)
			require.Contains(t, errOut.String(), tt.wantErr)
			require.Empty(t, out.String())
		})
	}
}

func TestRun_Help(t *testing.T) {
	for _, arg := range []string{"-h", "--help"} {
		var out, errOut bytes.Buffer

		code := run(context.Background(), []string{arg}, &out, &errOut)

		require.Equal(t, 0, code)
		require.Contains(t, out.String(), "Usage: budget [options] [pay]")
	}
}

func TestOptionsApply(t *testing.T) {
	opts, rest, err := parseFlags([]string{"-t", "holiday", "--db", "x.db", "123"})
	require.NoError(t, err)
	require.Equal(t, []string{"123"}, rest)

	c := &config.Config{DataBackend: "json", SQLiteDBPath: "env.db", DefaultTable: "env"}
	opts.apply(c)
	require.Equal(t, "holiday", c.DefaultTable)
	require.Equal(t, "x.db", c.SQLiteDBPath)
	require.Equal(t, "json", c.DataBackend, "unset flags keep env values")
}
