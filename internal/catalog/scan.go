package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"fxchain/internal/analyzer"
	"fxchain/internal/logging"
	"fxchain/internal/params"
	"fxchain/internal/services"
	"fxchain/internal/textutil"
)

// ScanOutcome classifies what a scan did for one plugin.
type ScanOutcome int

const (
	// OutcomeScanned means the analyzer ran and the parameter set was replaced.
	OutcomeScanned ScanOutcome = iota
	// OutcomeFresh means the bundle was unchanged since the last scan and
	// the analyzer was not invoked.
	OutcomeFresh
	// OutcomeNoParams means the analyzer ran but the report yielded no
	// parameters; the plugin keeps its previous scan state.
	OutcomeNoParams
)

// ScanResult describes a single plugin scan.
type ScanResult struct {
	Plugin     *Plugin
	Outcome    ScanOutcome
	ParamCount int
}

// ScanSummary aggregates a multi-plugin scan.
type ScanSummary struct {
	Scanned  int
	Fresh    int
	NoParams int
	Failed   int
}

// Scanner drives catalog scans against the analyzer's listing contract.
type Scanner struct {
	store  *Store
	lister analyzer.Lister
	logger *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewScanner constructs a scanner over the given store and lister.
func NewScanner(store *Store, lister analyzer.Lister, logger *slog.Logger) *Scanner {
	return &Scanner{
		store:  store,
		lister: lister,
		logger: logging.NewComponentLogger(logger, "catalog"),
		now:    time.Now,
	}
}

// Scan upserts the descriptor for path and refreshes its parameters unless
// the bundle is unchanged since the last successful scan. Analyzer failures
// leave the plugin's previous scan state untouched.
func (s *Scanner) Scan(ctx context.Context, path string) (ScanResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ScanResult{}, fmt.Errorf("stat bundle: %w", err)
	}

	plugin, err := s.store.Upsert(ctx, path, textutil.DisplayName(path))
	if err != nil {
		return ScanResult{}, err
	}

	if plugin.Scanned() && plugin.LastScanned >= info.ModTime().Unix() {
		s.logger.Debug("bundle unchanged, skipping scan",
			logging.String(logging.FieldPlugin, plugin.Name),
			logging.String("path", path))
		return ScanResult{Plugin: plugin, Outcome: OutcomeFresh}, nil
	}

	report, err := s.lister.ListParams(ctx, path)
	if err != nil {
		return ScanResult{}, services.Wrap(services.ErrExternalTool, "catalog", "scan", path, err)
	}

	parsed := params.Parse(report)
	if len(parsed) == 0 {
		s.logger.Warn("report yielded no parameters, leaving plugin uncataloged",
			logging.String(logging.FieldPlugin, plugin.Name),
			logging.String("path", path))
		return ScanResult{Plugin: plugin, Outcome: OutcomeNoParams}, nil
	}

	if err := s.store.ReplaceParams(ctx, plugin.ID, parsed, s.now()); err != nil {
		return ScanResult{}, fmt.Errorf("persist params: %w", err)
	}

	plugin, err = s.store.GetByID(ctx, plugin.ID)
	if err != nil {
		return ScanResult{}, err
	}

	s.logger.Info("plugin scanned",
		logging.String(logging.FieldPlugin, plugin.Name),
		logging.String("path", path),
		logging.Int("params", len(parsed)))
	return ScanResult{Plugin: plugin, Outcome: OutcomeScanned, ParamCount: len(parsed)}, nil
}

// ScanAll scans every path, continuing past per-plugin failures.
func (s *Scanner) ScanAll(ctx context.Context, paths []string) ScanSummary {
	var summary ScanSummary
	for _, path := range paths {
		result, err := s.Scan(ctx, path)
		if err != nil {
			summary.Failed++
			s.logger.Error("plugin scan failed",
				logging.String("path", path),
				logging.Error(err))
			continue
		}
		switch result.Outcome {
		case OutcomeScanned:
			summary.Scanned++
		case OutcomeFresh:
			summary.Fresh++
		case OutcomeNoParams:
			summary.NoParams++
		}
	}
	return summary
}
