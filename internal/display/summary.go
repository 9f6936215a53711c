package display

import (
	"path/filepath"
	"strings"

	"github.com/backmassage/lomux/internal/history"
	"github.com/backmassage/lomux/internal/pipeline"
	"github.com/backmassage/lomux/internal/preset"
)

// LogBatchHeader describes the batch about to run.
func LogBatchHeader(log Logger, inputs int, outputDir string, p preset.Preset, ps preset.ParameterSet, dryRun bool) {
	log.Info("Found %d input(s)", inputs)
	log.Info("Preset: %s (%s)", p, ps.Describe(p))
	if len(ps.Extra) > 0 {
		log.Info("Extra engine args: %s", strings.Join(ps.Extra, " "))
	}
	log.Info("Output: %s", outputDir)
	if dryRun {
		log.Warn("Dry run: commands are printed, nothing is converted")
	}
}

// LogSummary prints counts, failures, and output totals for a finished
// batch.
func LogSummary(log Logger, res pipeline.BatchResult, dryRun bool) {
	s := res.Stats()
	log.Info("==============================")
	log.Info("Done: %d succeeded, %d failed, %d skipped, %d aborted",
		s.Succeeded, s.Failed, s.Skipped, s.Aborted)
	log.Info("Summary report (batch %s):", ShortID(res.ID))
	log.Info("  Total files processed: %d", s.Total)
	log.Info("  Elapsed: %s", FormatDuration(res.Finished.Sub(res.Started)))

	for _, o := range res.Outcomes {
		if o.Status == pipeline.StatusFailed {
			log.Error("  Failed: %s (%s)", o.Job.Name(), o.Reason)
		}
	}

	if dryRun {
		log.Info("  Total output size: n/a (dry run)")
		return
	}
	if s.Succeeded == 0 {
		return
	}
	log.Success("  Total output size: %s (input %s, %s)",
		FormatBytes(s.TotalOutputBytes),
		FormatBytes(s.TotalInputBytes),
		FormatBytesWithSign(s.TotalOutputBytes-s.TotalInputBytes))
}

// LogHistory prints stored batches, newest first.
func LogHistory(log Logger, batches []history.Batch) {
	if len(batches) == 0 {
		log.Info("No batches recorded")
		return
	}
	for _, b := range batches {
		log.Info("%s  %s  %-4s  %d job(s): %d ok, %d failed, %d skipped, %d aborted  -> %s",
			ShortID(b.ID),
			b.StartedAt.Local().Format("2006-01-02 15:04"),
			b.Preset,
			len(b.Jobs),
			b.Count(string(pipeline.StatusSucceeded)),
			b.Count(string(pipeline.StatusFailed)),
			b.Count(string(pipeline.StatusSkipped)),
			b.Count(string(pipeline.StatusAborted)),
			b.OutputDir)
		for _, j := range b.Jobs {
			if j.Status == string(pipeline.StatusFailed) {
				log.Warn("    %s: %s", filepath.Base(j.InputPath), j.Reason)
			}
		}
	}
}
