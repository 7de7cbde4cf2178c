// Package report renders a finished run into human-readable artifacts.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/markdown"

	"github.com/will-x86/wordhound"
)

// Summary describes one finished run.
type Summary struct {
	RunID     string
	Seeds     []string
	Words     int
	Domains   []string
	Added     int64
	Processed int64
	Started   time.Time
	Finished  time.Time
}

// WriteMarkdown renders the run report: an overview table, every page with
// matches and every failure.
func WriteMarkdown(w io.Writer, sum Summary, results []*wordhound.Result) error {
	counts := make(map[wordhound.Status]int)
	for _, r := range results {
		counts[r.Status]++
	}

	md := markdown.NewMarkdown(w)
	md.H1("Crawl report").
		PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Run", "Started", "Duration", "Added", "Processed", "Found", "Not found", "Failed"},
		Rows: [][]string{{
			sum.RunID,
			sum.Started.Format(time.RFC3339),
			sum.Finished.Sub(sum.Started).Round(time.Millisecond).String(),
			fmt.Sprintf("%d", sum.Added),
			fmt.Sprintf("%d", sum.Processed),
			fmt.Sprintf("%d", counts[wordhound.StatusFound]),
			fmt.Sprintf("%d", counts[wordhound.StatusNotFound]),
			fmt.Sprintf("%d", counts[wordhound.StatusFailed]),
		}},
	})

	if len(sum.Seeds) > 0 {
		md.H2("Seeds").
			BulletList(sum.Seeds...)
	}
	if len(sum.Domains) > 0 {
		md.H2("Interesting domains").
			BulletList(sum.Domains...)
	}

	var matches, failures [][]string
	for _, r := range results {
		switch r.Status {
		case wordhound.StatusFound:
			matches = append(matches, []string{
				cell(r.URL),
				cell(strings.Join(r.Matches, ", ")),
				fmt.Sprintf("%d", len(r.Links)),
				cell(r.Screenshot),
			})
		case wordhound.StatusFailed:
			failures = append(failures, []string{
				cell(r.URL),
				string(r.ErrorKind),
				cell(r.Detail),
			})
		}
	}

	md.H2("Matches")
	if len(matches) == 0 {
		md.PlainText("No page matched the dictionary.")
	} else {
		md.Table(markdown.TableSet{
			Header: []string{"URL", "Words", "Links", "Screenshot"},
			Rows:   matches,
		})
	}

	md.H2("Failures")
	if len(failures) == 0 {
		md.PlainText("No fetch failures.")
	} else {
		md.Table(markdown.TableSet{
			Header: []string{"URL", "Kind", "Detail"},
			Rows:   failures,
		})
	}

	md.HorizontalRule().
		PlainText(fmt.Sprintf("Generated at %s.", sum.Finished.Format(time.RFC3339)))

	return md.Build()
}

// cell escapes pipes and truncates long values so table rows stay intact.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", "\\|")
	if len(s) > 120 {
		return s[:117] + "..."
	}
	return s
}
