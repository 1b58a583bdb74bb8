package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"linksift/internal/config"
	"linksift/internal/policy"
	"linksift/internal/scraper"
)

func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	return cmd, out
}

func newCmdAdmitter(t *testing.T) *policy.Admitter {
	t.Helper()
	admitter, err := policy.NewAdmitter(config.DefaultConfig())
	if err != nil {
		t.Fatalf("NewAdmitter() error: %v", err)
	}
	return admitter
}

func TestFilterURLsFromArgs(t *testing.T) {
	cmd, out := newTestCommand()

	args := []string{
		"https://ngs.ics.uci.edu/page",
		"https://www.ics.uci.edu/file.pdf",
		"https://www.math.uci.edu",
		"https://www.ics.uci.edu/calendar/2024",
	}
	if err := filterURLs(cmd, newCmdAdmitter(t), args, ""); err != nil {
		t.Fatalf("filterURLs() error: %v", err)
	}

	lines := strings.Fields(out.String())
	if len(lines) != 1 || lines[0] != "https://ngs.ics.uci.edu/page" {
		t.Errorf("output = %v, expected only the admitted URL", lines)
	}
}

func TestFilterURLsFromInputFile(t *testing.T) {
	cmd, out := newTestCommand()

	input := filepath.Join(t.TempDir(), "urls.txt")
	content := strings.Join([]string{
		"# seed candidates",
		"",
		"https://www.cs.uci.edu/research",
		"https://www.ics.uci.edu/logo.png",
	}, "\n")
	if err := os.WriteFile(input, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write input file: %v", err)
	}

	if err := filterURLs(cmd, newCmdAdmitter(t), nil, input); err != nil {
		t.Fatalf("filterURLs() error: %v", err)
	}

	lines := strings.Fields(out.String())
	if len(lines) != 1 || lines[0] != "https://www.cs.uci.edu/research" {
		t.Errorf("output = %v, expected only the admitted URL", lines)
	}
}

func TestFilterURLsFromStdin(t *testing.T) {
	cmd, out := newTestCommand()
	cmd.SetIn(strings.NewReader("https://www.informatics.uci.edu/faculty\n"))

	if err := filterURLs(cmd, newCmdAdmitter(t), nil, ""); err != nil {
		t.Fatalf("filterURLs() error: %v", err)
	}

	if got := strings.TrimSpace(out.String()); got != "https://www.informatics.uci.edu/faculty" {
		t.Errorf("output = %q, expected the admitted URL", got)
	}
}

func TestFilterURLsMissingInputFile(t *testing.T) {
	cmd, _ := newTestCommand()
	if err := filterURLs(cmd, newCmdAdmitter(t), nil, "/nonexistent/urls.txt"); err == nil {
		t.Error("expected error for missing input file")
	}
}

func TestScrapePages(t *testing.T) {
	cmd, out := newTestCommand()

	page := filepath.Join(t.TempDir(), "page.html")
	body := `<html><body>
		<a href="/admitted">ok</a>
		<a href="/styles.css">css</a>
		<a href="https://www.math.uci.edu/off">off-domain</a>
	</body></html>`
	if err := os.WriteFile(page, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write page file: %v", err)
	}

	cfg := config.DefaultConfig()
	sc := scraper.New(cfg, newCmdAdmitter(t), nil)

	err := scrapePages(cmd, sc, []string{page}, []string{"https://www.ics.uci.edu/index"})
	if err != nil {
		t.Fatalf("scrapePages() error: %v", err)
	}

	lines := strings.Fields(out.String())
	if len(lines) != 1 || lines[0] != "https://www.ics.uci.edu/admitted" {
		t.Errorf("output = %v, expected only the admitted link", lines)
	}
}

func TestScrapePagesMismatchedFlags(t *testing.T) {
	cmd, _ := newTestCommand()
	sc := scraper.New(config.DefaultConfig(), newCmdAdmitter(t), nil)

	if err := scrapePages(cmd, sc, []string{"a.html", "b.html"}, []string{"https://www.ics.uci.edu"}); err == nil {
		t.Error("expected error for mismatched --page/--page-url counts")
	}
}

func TestScrapePagesMissingFile(t *testing.T) {
	cmd, _ := newTestCommand()
	sc := scraper.New(config.DefaultConfig(), newCmdAdmitter(t), nil)

	if err := scrapePages(cmd, sc, []string{"/nonexistent/page.html"}, []string{"https://www.ics.uci.edu"}); err == nil {
		t.Error("expected error for missing page file")
	}
}
