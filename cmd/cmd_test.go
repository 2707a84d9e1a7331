package cmd

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arvowealth/portfolio"
	"github.com/arvowealth/portfolio/date"
	"github.com/google/subcommands"
)

// setup points the commands to a fresh ledger directory and returns it.
func setup(t *testing.T) string {
	t.Helper()
	for _, name := range []string{"GEMINI_API_KEY", "ARVO_GEMINI_API_KEY", "GOOGLE_API_KEY", "ARVO_LEDGER_DIR", "ARVO_OWNER", "ARVO_QUOTES_URL", "ARVO_CURRENCY"} {
		t.Setenv(name, "")
	}
	dir := t.TempDir()
	config := filepath.Join(dir, "arvo.toml")
	content := "[ledger]\ndir = " + `"` + filepath.ToSlash(filepath.Join(dir, "ledgers")) + `"` + "\nowner = \"test\"\n\n[logging]\nlevel = \"error\"\n"
	if err := os.WriteFile(config, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	oldConfig, oldOwner := *configFile, *ownerFlag
	*configFile, *ownerFlag = config, ""
	t.Cleanup(func() { *configFile, *ownerFlag = oldConfig, oldOwner })
	return dir
}

// run parses args for c and executes it.
func run(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("%s %v: %v", c.Name(), args, err)
	}
	return c.Execute(context.Background(), f)
}

func loadLedger(t *testing.T) *portfolio.Ledger {
	t.Helper()
	a, err := openApp()
	if err != nil {
		t.Fatal(err)
	}
	l, err := a.ledger(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestOperationCommands(t *testing.T) {
	setup(t)
	if got := run(t, newOperationCmd(portfolio.Buy), "-d", "2025-01-10", "-t", "petr4", "-q", "100", "-p", "10,00", "-c", "1"); got != subcommands.ExitSuccess {
		t.Fatalf("buy = %v, want success", got)
	}
	if got := run(t, newOperationCmd(portfolio.Sell), "-d", "2025-02-10", "-t", "PETR4", "-q", "50", "-p", "12"); got != subcommands.ExitSuccess {
		t.Fatalf("sell = %v, want success", got)
	}
	if got := run(t, newOperationCmd(portfolio.Contribution), "-d", "2025-02-11", "-t", "TESOURO SELIC 2029", "-q", "0.5", "-p", "15000"); got != subcommands.ExitSuccess {
		t.Fatalf("contribute = %v, want success", got)
	}
	if got := run(t, newOperationCmd(portfolio.Buy), "-t", "PETR4", "-q", "-1", "-p", "12"); got != subcommands.ExitUsageError {
		t.Errorf("buy of a negative quantity = %v, want usage error", got)
	}
	if got := run(t, newOperationCmd(portfolio.Buy), "-t", "PETR4"); got != subcommands.ExitUsageError {
		t.Errorf("buy without quantity = %v, want usage error", got)
	}

	l := loadLedger(t)
	if l.Len() != 3 {
		t.Fatalf("ledger has %d operations, want 3", l.Len())
	}
	positions := portfolio.ComputePositions(l)
	if len(positions) != 2 || positions[0].Ticker != "PETR4" || !positions[0].AverageCost.Equal(portfolio.M(10.01, "BRL")) {
		t.Errorf("positions = %v", positions)
	}
	if positions[1].AssetClass != portfolio.TreasuryBond {
		t.Errorf("class of %s = %v, want treasury bond", positions[1].Ticker, positions[1].AssetClass)
	}
}

func TestRmCmd(t *testing.T) {
	setup(t)
	run(t, newOperationCmd(portfolio.Buy), "-d", "2025-01-10", "-t", "PETR4", "-q", "1", "-p", "10")
	run(t, newOperationCmd(portfolio.Buy), "-d", "2025-01-11", "-t", "VALE3", "-q", "1", "-p", "60")
	l := loadLedger(t)
	var first string
	for _, op := range l.Operations() {
		first = op.ID
		break
	}

	if got := run(t, &rmCmd{}, first[:8]); got != subcommands.ExitSuccess {
		t.Fatalf("rm = %v, want success", got)
	}
	if got := run(t, &rmCmd{}, "does-not-exist"); got != subcommands.ExitFailure {
		t.Errorf("rm of an unknown id = %v, want failure", got)
	}
	if l := loadLedger(t); l.Len() != 1 {
		t.Errorf("ledger has %d operations after rm, want 1", l.Len())
	}
}

func TestResolveID(t *testing.T) {
	l := portfolio.NewLedger()
	for _, id := range []string{"abc123", "abd456", "xyz"} {
		op := portfolio.NewOperation(date.New(2025, 1, 10), portfolio.Buy, "PETR4", portfolio.Q(1), portfolio.M(10, "BRL"), portfolio.M(0, "BRL"), portfolio.Equity)
		op.ID = id
		l.Append(op)
	}
	testCases := []struct {
		prefix  string
		want    string
		wantErr bool
	}{
		{"xyz", "xyz", false},
		{"abc", "abc123", false},
		{"ab", "", true},
		{"q", "", true},
		{"", "", true},
	}
	for _, tc := range testCases {
		got, err := resolveID(l, tc.prefix)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("resolveID(%q) = %q, %v, want %q (error %v)", tc.prefix, got, err, tc.want, tc.wantErr)
		}
	}
}

func TestImportCmd(t *testing.T) {
	dir := setup(t)
	csv := filepath.Join(dir, "ops.csv")
	content := "data;ativo;tipo;quantidade;preco\n10/01/2025;PETR4;Compra;100;10,00\n11/01/2025;VALE3;Split;1;60\n"
	if err := os.WriteFile(csv, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if got := run(t, &importCmd{}, "-n", csv); got != subcommands.ExitFailure {
		t.Errorf("dry run with a rejected row = %v, want failure", got)
	}
	if l := loadLedger(t); l.Len() != 0 {
		t.Fatalf("dry run recorded %d operations", l.Len())
	}
	run(t, &importCmd{}, csv)
	if l := loadLedger(t); l.Len() != 1 {
		t.Fatalf("import recorded %d operations, want 1", l.Len())
	}

	// re-importing an exported ledger skips known operations.
	export := filepath.Join(dir, "export.jsonl")
	f, err := os.Create(export)
	if err != nil {
		t.Fatal(err)
	}
	if err := portfolio.EncodeLedger(f, loadLedger(t)); err != nil {
		t.Fatal(err)
	}
	f.Close()
	if got := run(t, &importCmd{}, export); got != subcommands.ExitSuccess {
		t.Errorf("import of a jsonl ledger = %v, want success", got)
	}
	if l := loadLedger(t); l.Len() != 1 {
		t.Errorf("re-import duplicated operations: %d", l.Len())
	}

	if got := run(t, &importCmd{}, filepath.Join(dir, "note.xls")); got != subcommands.ExitFailure {
		t.Errorf("import of an unsupported file = %v, want failure", got)
	}
}

func TestReportCommands(t *testing.T) {
	setup(t)
	run(t, newOperationCmd(portfolio.Buy), "-d", "2024-01-10", "-t", "PETR4", "-q", "3000", "-p", "10")
	run(t, newOperationCmd(portfolio.Sell), "-d", "2024-05-10", "-t", "PETR4", "-q", "2000", "-p", "15")

	testCases := []struct {
		name string
		cmd  subcommands.Command
		args []string
	}{
		{"holding", &holdingCmd{}, []string{"-d", "2024-06-01"}},
		{"allocation", &allocationCmd{}, nil},
		{"tax", &taxCmd{}, []string{"-y", "2024"}},
		{"tax flat margin", &taxCmd{}, []string{"-method", "flat-margin", "-json"}},
		{"returns", &returnsCmd{}, []string{"-y", "2024", "-b", "CDI"}},
		{"rebalance", &rebalanceCmd{}, []string{"-target", "PETR4=100"}},
		{"log", &logCmd{}, []string{"-p", "year", "-d", "2024-12-31", "-t", "petr4"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := run(t, tc.cmd, tc.args...); got != subcommands.ExitSuccess {
				t.Errorf("%s %v = %v, want success", tc.cmd.Name(), tc.args, got)
			}
		})
	}

	if got := run(t, &taxCmd{}, "-method", "fifo"); got != subcommands.ExitUsageError {
		t.Errorf("tax -method fifo = %v, want usage error", got)
	}
	if got := run(t, &logCmd{}, "-head", "1", "-tail", "1"); got != subcommands.ExitUsageError {
		t.Errorf("log -head -tail = %v, want usage error", got)
	}
}

func TestPublishCmd(t *testing.T) {
	dir := setup(t)
	run(t, newOperationCmd(portfolio.Buy), "-d", "2024-01-10", "-t", "PETR4", "-q", "100", "-p", "10")
	run(t, newOperationCmd(portfolio.Sell), "-d", "2024-03-10", "-t", "PETR4", "-q", "50", "-p", "12")

	fm := filepath.Join(dir, "fm.tpl")
	if err := os.WriteFile(fm, []byte("---\nperiod: {{.Period.Identifier}}\n---"), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "site")
	if got := run(t, &publishCmd{}, "-o", out, "-frontmatter", fm, "-b", "CDI"); got != subcommands.ExitSuccess {
		t.Fatalf("publish = %v, want success", got)
	}
	for _, name := range []string{"holding.md", "allocation.md", "tax.md", "returns.md", "index.html", "holding/monthly/2024-01.md"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("publish did not write %s: %v", name, err)
		}
	}
	january, err := os.ReadFile(filepath.Join(out, "holding", "monthly", "2024-01.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(january), "---\nperiod: 2024-01\n---\n# Holding on 2024-01-31") {
		t.Errorf("monthly report =\n%s", january)
	}
}

func TestMarketCommandsRequireGemini(t *testing.T) {
	setup(t)
	for _, c := range []subcommands.Command{&treasuryCmd{}, &marketCmd{}} {
		if got := run(t, c); got != subcommands.ExitFailure {
			t.Errorf("%s without an API key = %v, want failure", c.Name(), got)
		}
	}
}

func TestGenerateMonths(t *testing.T) {
	testCases := []struct {
		name  string
		start date.Date
		end   date.Date
		want  []string
	}{
		{"no operations", date.Date{}, date.New(2025, 3, 1), []string{}},
		{"current month is not over", date.New(2025, 3, 1), date.New(2025, 3, 20), []string{}},
		{"cross-year boundary", date.New(2024, 11, 15), date.New(2025, 1, 31), []string{"2024-11", "2024-12", "2025-01"}},
		{"partial last month", date.New(2024, 11, 15), date.New(2025, 1, 30), []string{"2024-11", "2024-12"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := generateMonths(tc.start, tc.end)
			ids := make([]string, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.Identifier())
			}
			if strings.Join(ids, ",") != strings.Join(tc.want, ",") {
				t.Errorf("generateMonths() = %v, want %v", ids, tc.want)
			}
		})
	}
}

func TestParseTargets(t *testing.T) {
	got, err := parseTargets("petr4=40, VALE3=60%")
	if err != nil {
		t.Fatalf("parseTargets() unexpected error: %v", err)
	}
	if len(got) != 2 || got["PETR4"] != 40 || got["VALE3"] != 60 {
		t.Errorf("parseTargets() = %v", got)
	}
	if got, err := parseTargets(""); got != nil || err != nil {
		t.Errorf("parseTargets(\"\") = %v, %v, want nil targets", got, err)
	}
	for _, bad := range []string{"PETR4", "PETR4=x", "PETR4=-1"} {
		if _, err := parseTargets(bad); err == nil {
			t.Errorf("parseTargets(%q) succeeded, want an error", bad)
		}
	}
}

func TestParseYears(t *testing.T) {
	got, err := parseYears("2024, 2025")
	if err != nil || len(got) != 2 || got[0] != 2024 || got[1] != 2025 {
		t.Errorf("parseYears() = %v, %v", got, err)
	}
	if _, err := parseYears("24"); err == nil {
		t.Error("parseYears(24) succeeded, want an error")
	}
}
