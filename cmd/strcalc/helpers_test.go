package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"mercator-hq/strcalc/pkg/journal"
)

// resetFlags restores every command flag to its default.
func resetFlags(t *testing.T) {
	t.Helper()

	cfgFile = ""
	verbose = false

	evalFlags.format = "text"
	evalFlags.explain = false
	evalFlags.record = false

	lintFlags.file = ""
	lintFlags.format = "text"
	lintFlags.progress = false

	testFlags.suiteFile = ""
	testFlags.format = "text"

	serveFlags.listenAddress = ""
	serveFlags.logLevel = ""
	serveFlags.dryRun = false

	journalFlags.since = ""
	journalFlags.until = ""
	journalFlags.outcome = ""
	journalFlags.issueType = ""
	journalFlags.source = ""
	journalFlags.limit = journal.DefaultQueryLimit
	journalFlags.offset = 0
	journalFlags.format = "text"
	journalFlags.output = ""
	journalFlags.days = -1
	journalFlags.maxRecords = -1

	t.Cleanup(func() { cfgFile = "" })
}

// newTestCommand returns a command whose streams are buffers.
func newTestCommand(stdin string) (cmd *cobra.Command, stdout, stderr *bytes.Buffer) {
	stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
	cmd = &cobra.Command{}
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetContext(context.Background())
	return cmd, stdout, stderr
}

// useJournalConfig writes a config whose journal lives in a temp dir,
// points --config at it and returns the journal path.
func useJournalConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "journal.db")
	content := "journal:\n" +
		"  enabled: true\n" +
		"  sqlite:\n" +
		"    path: " + dbPath + "\n" +
		"  retention:\n" +
		"    archive_path: \"\"\n"

	path := filepath.Join(dir, "strcalc.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgFile = path
	return dbPath
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
