// Package review runs the full checkpoint pipeline over a set of files:
// evaluate, classify, assemble, waive, filter, deduplicate and summarise.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/codewithboateng/oversight/internal/assembler"
	"github.com/codewithboateng/oversight/internal/dedup"
	"github.com/codewithboateng/oversight/internal/evaluator"
	"github.com/codewithboateng/oversight/internal/ir"
	"github.com/codewithboateng/oversight/internal/rules"
	"github.com/codewithboateng/oversight/internal/rulesdsl"
	"github.com/codewithboateng/oversight/internal/severity"
	"github.com/codewithboateng/oversight/internal/shared"
	"github.com/codewithboateng/oversight/internal/storage"
)

type Options struct {
	Registry   *rules.Registry
	Classifier *severity.Classifier
	Assembler  assembler.Assembler
	Context    severity.Context
	Evaluator  evaluator.Options
	Waivers    []storage.Waiver
	// Source labels the run (a repository or directory name).
	Source string
}

// OptionsFromConfig builds pipeline options from cfg, registering the
// configured checkpoint packs and rule settings on reg.
func OptionsFromConfig(cfg shared.Config, reg *rules.Registry) (Options, error) {
	for _, pack := range cfg.Analysis.CheckpointPacks {
		n, err := rulesdsl.LoadAndRegister(pack, reg)
		if err != nil {
			return Options{}, fmt.Errorf("checkpoint pack: %w", err)
		}
		zap.L().Debug("checkpoint pack loaded", zap.String("pack", pack), zap.Int("checkpoints", n))
	}
	cl, err := severity.FromConfig(cfg.Severity.ContextRules)
	if err != nil {
		return Options{}, fmt.Errorf("severity context rules: %w", err)
	}
	th, err := ir.ParseSeverity(cfg.Rules.SeverityThreshold)
	if err != nil {
		return Options{}, fmt.Errorf("rules.severity_threshold: %w", err)
	}
	disabled := map[string]bool{}
	for _, id := range cfg.Rules.Disabled {
		disabled[id] = true
	}
	reg.SetSettings(rules.Settings{SeverityThreshold: th, Disabled: disabled})

	return Options{
		Registry:   reg,
		Classifier: cl,
		Assembler:  assembler.Assembler{MaxEvidenceLines: cfg.Analysis.MaxEvidenceLines},
		Context: severity.Context{
			Visibility:  cfg.Project.Visibility,
			Environment: cfg.Project.Environment,
		},
		Evaluator: evaluator.Options{
			MaxMatchesPerCheckpoint: cfg.Analysis.MaxMatchesPerCheckpoint,
			MaxFileBytes:            cfg.Analysis.MaxFileBytes,
			Workers:                 cfg.Analysis.Workers,
		},
	}, nil
}

// Analyze reviews paths and returns the run. Assembly errors do not stop
// the run: the findings that did assemble are returned together with the
// joined errors.
func Analyze(ctx context.Context, paths []string, opts Options) (ir.Run, error) {
	reg := opts.Registry
	if reg == nil {
		reg = rules.Builtin()
	}
	cl := opts.Classifier
	if cl == nil {
		cl = severity.New(nil)
	}

	run := ir.Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Source:    opts.Source,
		IRVersion: ir.Version,
		Files:     paths,
	}
	settings := reg.Settings()
	run.Context = ir.Context{
		Visibility:          opts.Context.Visibility,
		Environment:         opts.Context.Environment,
		SeverityThreshold:   settings.SeverityThreshold,
		DisabledCheckpoints: settings.DisabledList(),
	}

	matches, err := evaluator.EvaluateFiles(ctx, paths, reg, opts.Evaluator)
	if err != nil {
		return run, err
	}

	var errs []error
	findings := make([]ir.Finding, 0, len(matches))
	for _, m := range matches {
		cp, err := reg.Lookup(m.CheckpointID)
		if err != nil {
			// The pack was swapped out between evaluation and lookup.
			errs = append(errs, err)
			continue
		}
		sev := cl.Classify(m, cp, opts.Context)
		f, err := opts.Assembler.Assemble(assembler.ClassifiedMatch{Match: m, Severity: sev}, cp)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		findings = append(findings, f)
	}

	findings, waived := rules.ApplyWaivers(findings, opts.Waivers)
	run.Context.WaivedCount = waived

	kept := findings[:0]
	for _, f := range findings {
		if reg.SeverityOK(f.Severity) {
			kept = append(kept, f)
		}
	}

	run.Findings = uniqueIDs(dedup.Deduplicate(kept))
	run.Summary = ir.Summarize(run.Findings)

	zap.L().Info("review complete",
		zap.String("run", run.ID),
		zap.Int("files", len(paths)),
		zap.Int("matches", len(matches)),
		zap.Int("findings", len(run.Findings)),
		zap.Int("waived", waived),
		zap.Int("errors", len(errs)),
	)
	return run, errors.Join(errs...)
}

// uniqueIDs keeps ids distinct within a run; order is preserved.
func uniqueIDs(fs []ir.Finding) []ir.Finding {
	seen := make(map[string]struct{}, len(fs))
	seq := 0
	for i := range fs {
		id := fs[i].ID
		if _, dup := seen[id]; id == "" || dup {
			for {
				seq++
				id = fmt.Sprintf("%s-%06d", fs[i].CheckpointID, seq)
				if _, dup := seen[id]; !dup {
					break
				}
			}
			fs[i].ID = id
		}
		seen[id] = struct{}{}
	}
	return fs
}
