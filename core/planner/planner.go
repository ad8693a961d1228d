// Package planner orchestrates import planning: schema lookup, remote
// fetch, reconciliation, rendering and binding in that order.
//
// Distinct addresses are planned concurrently; requests for the same address
// are serialized so at most one reconciliation per address is in flight. The
// ledger write is the single commit point and happens only after a complete,
// validated attribute set and rendered block exist, so cancellation mid-fetch
// never leaves a partial binding.
package planner

import (
	"bytes"
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"import-planner/core/emit"
	"import-planner/core/fetch"
	"import-planner/core/ledger"
	"import-planner/core/reconcile"
	"import-planner/core/schema"
	"import-planner/core/types"
	"import-planner/internal/errors"
	"import-planner/internal/logging"
)

// Options configure a planner
type Options struct {
	// Emit controls rendering (sensitive value reveal)
	Emit emit.Options

	// Concurrency bounds the PlanAll worker pool
	Concurrency int
}

// DefaultOptions returns sensible planner defaults
func DefaultOptions() Options {
	return Options{Concurrency: 8}
}

// Result is the outcome of one import request. Exactly one of Err or the
// artifact fields is meaningful; Request is always set so failures report
// their address.
type Result struct {
	// Request is the originating import request
	Request types.ImportRequest `json:"request"`

	// Binding is the recorded (or pre-existing idempotent) binding
	Binding *types.Binding `json:"binding,omitempty"`

	// Block is the rendered resource block
	Block *types.RenderedBlock `json:"block,omitempty"`

	// ImportBlock is the companion import declaration
	ImportBlock *types.RenderedBlock `json:"import_block,omitempty"`

	// Err is the per-request failure, nil on success
	Err error `json:"-"`
}

// Artifact concatenates the import declaration and the resource block into
// the writable output for one request
func (r *Result) Artifact() []byte {
	if r.Block == nil {
		return nil
	}
	var buf bytes.Buffer
	if r.ImportBlock != nil {
		buf.Write(r.ImportBlock.Source)
		buf.WriteByte('\n')
	}
	buf.Write(r.Block.Source)
	return buf.Bytes()
}

// Planner plans import requests
type Planner struct {
	registry *schema.Registry
	fetcher  *fetch.Fetcher
	ledger   *ledger.Ledger
	locks    *ledger.AddressLocks
	opts     Options
	now      func() time.Time
}

// New creates a planner. The schema registry, fetcher and ledger are
// injected; the planner owns no ambient state.
func New(registry *schema.Registry, fetcher *fetch.Fetcher, l *ledger.Ledger, opts Options) *Planner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultOptions().Concurrency
	}
	return &Planner{
		registry: registry,
		fetcher:  fetcher,
		ledger:   l,
		locks:    ledger.NewAddressLocks(),
		opts:     opts,
		now:      time.Now,
	}
}

// Plan processes one import request end to end
func (p *Planner) Plan(ctx context.Context, req types.ImportRequest) *Result {
	res := &Result{Request: req}
	res.Err = p.plan(ctx, req, res)
	if res.Err != nil {
		logging.Warn("import request failed",
			zap.String("address", req.To.String()),
			zap.String("external_id", req.ID.String()),
			zap.String("error_type", string(errors.TypeOf(res.Err))),
			zap.Error(res.Err))
	}
	return res
}

func (p *Planner) plan(ctx context.Context, req types.ImportRequest, res *Result) error {
	addr, err := types.ParseAddress(req.To.String())
	if err != nil {
		return errors.Parsing("invalid target address", err)
	}

	// at most one in-flight reconciliation per address
	unlock := p.locks.Lock(addr)
	defer unlock()

	sch, err := p.registry.Lookup(addr.Type())
	if err != nil {
		return err
	}

	raw, err := p.fetcher.Fetch(ctx, addr.Type(), req.ID)
	if err != nil {
		return err
	}
	fetchedAt := p.now()

	set, err := reconcile.Reconcile(sch, raw)
	if err != nil {
		return err
	}

	block, err := emit.Render(sch, addr.Name(), set, p.opts.Emit)
	if err != nil {
		return err
	}

	binding, err := p.ledger.Record(ctx, addr, req.ID, fetchedAt)
	if err != nil {
		return err
	}

	res.Binding = binding
	res.Block = block
	res.ImportBlock = emit.RenderImport(addr, req.ID)
	return nil
}

// PlanAll processes a batch of requests with a bounded worker pool.
// Results come back in input order; a failed request never aborts the batch.
func (p *Planner) PlanAll(ctx context.Context, reqs []types.ImportRequest) []*Result {
	results := make([]*Result, len(reqs))
	if len(reqs) == 0 {
		return results
	}

	workers := p.opts.Concurrency
	if workers > len(reqs) {
		workers = len(reqs)
	}

	indices := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indices {
				results[i] = p.Plan(ctx, reqs[i])
			}
		}()
	}

	for i := range reqs {
		indices <- i
	}
	close(indices)
	wg.Wait()

	return results
}
