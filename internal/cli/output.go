package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-chapters/internal/chapter"
	"github.com/alnah/go-chapters/internal/config"
	"github.com/alnah/go-chapters/internal/format"
	"github.com/alnah/go-chapters/internal/pipeline"
)

// Report file suffixes, appended to the source base name.
const (
	silencesSuffix = "_silences.txt"
	chaptersSuffix = "_chapters.txt"
)

// reportOptions controls how run results are rendered to disk.
type reportOptions struct {
	OutputDir      string // Resolved output directory; empty means cwd.
	TimestampsOnly bool   // Chapters report carries timestamps without text.
	Fixup          bool   // Standardize transcribed headings before writing.
}

// reportPaths are the resolved destinations for one run's reports.
type reportPaths struct {
	Silences string
	Chapters string
}

// reportPathsFor derives report paths from the source file name.
// "audiobook.mp3" yields "audiobook_silences.txt" and
// "audiobook_chapters.txt" in the output directory.
func reportPathsFor(sourcePath, outputDir string) reportPaths {
	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	return reportPaths{
		Silences: config.ResolveOutputPath("", outputDir, base+silencesSuffix),
		Chapters: config.ResolveOutputPath("", outputDir, base+chaptersSuffix),
	}
}

// renderSilences formats the silence report: one HH:MM:SS line per
// detected silence end, the points where speech resumes.
func renderSilences(silences []chapter.Interval) string {
	var b strings.Builder
	for _, iv := range silences {
		b.WriteString(format.Timestamp(iv.End))
		b.WriteByte('\n')
	}
	return b.String()
}

// renderChapters formats the chapter report: one mark per line as
// "text<TAB>timestamp", or bare timestamps when timestampsOnly is set.
func renderChapters(marks []chapter.Mark, timestampsOnly, fixup bool) string {
	var b strings.Builder
	for _, m := range marks {
		if timestampsOnly {
			b.WriteString(format.Timestamp(m.Timestamp))
			b.WriteByte('\n')
			continue
		}
		text := m.Text
		if fixup {
			text = chapter.Fixup(text)
		}
		fmt.Fprintf(&b, "%s\t%s\n", text, format.Timestamp(m.Timestamp))
	}
	return b.String()
}

// writeReports persists both reports for a run. Reruns overwrite prior
// reports so a corrected run never leaves stale files behind. The two
// files are independent, so they are written concurrently.
func writeReports(res *pipeline.Result, opts reportOptions) (reportPaths, error) {
	paths := reportPathsFor(res.Source, opts.OutputDir)

	var g errgroup.Group
	g.Go(func() error {
		return writeReport(paths.Silences, renderSilences(res.Silences))
	})
	g.Go(func() error {
		return writeReport(paths.Chapters, renderChapters(res.Marks, opts.TimestampsOnly, opts.Fixup))
	})
	if err := g.Wait(); err != nil {
		return paths, err
	}
	return paths, nil
}

// writeReport writes one report file.
func writeReport(path, content string) error {
	// #nosec G306 -- report files are meant to be user-readable
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write report %s: %w", filepath.Base(path), err)
	}
	return nil
}

// summarize prints the run outcome to w in the style of the progress
// output: counts first, then where the reports landed.
func summarize(res *pipeline.Result, paths reportPaths) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Detected %d silences, %d chapter marks", len(res.Silences), len(res.Marks))
	if res.Skipped > 0 {
		fmt.Fprintf(&b, " (%d silences skipped)", res.Skipped)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Silence report: %s\n", paths.Silences)
	fmt.Fprintf(&b, "Chapter report: %s\n", paths.Chapters)
	return b.String()
}
