package main_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	main "pricewatch/cmd/pricewatch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// saltPage carries a schema.org Product block, the strongest signal the
// resolution pipeline knows.
const saltPage = `<html><head>
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"Product","name":"Active Salt","offers":{"@type":"Offer","price":"249.00","priceCurrency":"INR"}}
</script>
</head><body><h1>Active Salt</h1></body></html>`

// bareOilPage has no price and no bot interstitial, which resolves as out
// of stock and triggers a failure snapshot.
const bareOilPage = `<html><head><title>Gold Oil</title></head><body><h1>Gold Oil</h1><p>Check back soon.</p></body></html>`

// writeCatalog writes a single-retailer CSV catalog with the given rows.
func writeCatalog(t *testing.T, dir string, rows ...string) string {
	t.Helper()

	content := "Brand,Product,Pack Size,LocalMart\n"
	for _, row := range rows {
		content += row + "\n"
	}

	path := filepath.Join(dir, "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestMain_RunCommand(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, saltPage)
	}))
	defer srv.Close()

	tmp := t.TempDir()
	catalog := writeCatalog(t, tmp, "Tata,Active Salt,1kg,"+srv.URL+"/salt")
	csvOut := filepath.Join(tmp, "ledger.csv")
	dbPath := filepath.Join(tmp, "test.db")

	m := main.NewMain()
	m.DBPath = dbPath

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"run", catalog, "--engine", "http", "--csv-out", csvOut, "--rps", "100"}, stdout, stderr)
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, "Checking 1 listings")
	assert.Contains(t, out, "Active Salt @ LocalMart: ₹249.00")
	assert.Contains(t, out, "1 resolved, 0 failed")
	assert.Empty(t, stderr.String())

	ledger, err := os.ReadFile(csvOut)
	require.NoError(t, err)
	assert.Contains(t, string(ledger), "Brand,Product,Pack Size,LocalMart,Last Checked")
	assert.Contains(t, string(ledger), "₹249.00")

	// The observation survives the run and is readable by the history
	// command through a fresh Main.
	records := &bytes.Buffer{}
	m2 := main.NewMain()
	m2.DBPath = dbPath
	require.NoError(t, m2.Run(context.Background(), []string{"history", "Salt"}, records, stderr))
	assert.Contains(t, records.String(), "1 observations")
	assert.Contains(t, records.String(), "₹249.00")
	assert.Contains(t, records.String(), "LocalMart")

	runs := &bytes.Buffer{}
	m3 := main.NewMain()
	m3.DBPath = dbPath
	require.NoError(t, m3.Run(context.Background(), []string{"history"}, runs, stderr))
	assert.Contains(t, runs.String(), "1 products, 1 listings: 1 resolved, 0 failed")
}

func TestMain_RunCommand_ArchivesFailedListings(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, bareOilPage)
	}))
	defer srv.Close()

	tmp := t.TempDir()
	catalog := writeCatalog(t, tmp, "Fortune,Gold Oil,1L,"+srv.URL+"/oil")
	archiveDir := filepath.Join(tmp, "errors")

	m := main.NewMain()
	m.DBPath = filepath.Join(tmp, "test.db")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"run", catalog, "--engine", "http", "--archive-dir", archiveDir, "--rps", "100"}, stdout, stderr)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "Out of Stock")
	assert.Contains(t, stdout.String(), "0 resolved, 1 failed")

	snapshot, err := os.ReadFile(filepath.Join(archiveDir, "error_Gold_Oil.md"))
	require.NoError(t, err)
	assert.Contains(t, string(snapshot), "url: "+srv.URL+"/oil")
	assert.Contains(t, string(snapshot), "status: out_of_stock")
	assert.Contains(t, string(snapshot), "Gold Oil")
}

func TestMain_RunCommand_MissingCatalog(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()

	m := main.NewMain()
	m.DBPath = filepath.Join(tmp, "test.db")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"run", filepath.Join(tmp, "nope.csv"), "--engine", "http"}, stdout, stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load catalog")
	assert.Contains(t, stderr.String(), "error:")
}

func TestMain_RulesCommand(t *testing.T) {
	t.Parallel()

	t.Run("prints the built-in rules by default", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		require.NoError(t, m.Run(context.Background(), []string{"rules"}, stdout, stderr))

		out := stdout.String()
		for _, name := range []string{"snapdeal", "meesho", "amazon", "flipkart"} {
			assert.Contains(t, out, name)
		}
	})

	t.Run("prints rules from a file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "rules.yaml")
		content := "rules:\n" +
			"  - name: localmart\n" +
			"    match: localmart.example\n" +
			"    selectors:\n" +
			"      - query: span.price\n" +
			"        contains: \"₹\"\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		m := main.NewMain()
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		require.NoError(t, m.Run(context.Background(), []string{"rules", "--rules", path}, stdout, stderr))
		assert.Contains(t, stdout.String(), `localmart (match "localmart.example")`)
		assert.Contains(t, stdout.String(), `span.price (contains "₹")`)
	})

	t.Run("rejects a rule file with no rules", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rules: []\n"), 0644))

		m := main.NewMain()
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"rules", "--rules", path}, stdout, stderr)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no rules")
	})
}

func TestMain_HistoryCommand_EmptyDatabase(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()

	m := main.NewMain()
	m.DBPath = filepath.Join(tmp, "test.db")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	require.NoError(t, m.Run(context.Background(), []string{"history"}, stdout, stderr))
	assert.Contains(t, stdout.String(), "No runs recorded yet.")

	stdout.Reset()
	m2 := main.NewMain()
	m2.DBPath = m.DBPath
	require.NoError(t, m2.Run(context.Background(), []string{"history", "salt"}, stdout, stderr))
	assert.Contains(t, stdout.String(), `No observations match "salt".`)
}

func TestMain_WatchCommand_RejectsBadSchedule(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()

	m := main.NewMain()
	m.DBPath = filepath.Join(tmp, "test.db")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"watch", "catalog.csv", "--engine", "http", "--schedule", "whenever"}, stdout, stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schedule")
	assert.Contains(t, stderr.String(), "error:")
}
