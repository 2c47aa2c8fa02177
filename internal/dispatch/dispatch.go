// Package dispatch fans page recognition out across a bounded worker pool
// and collects results back in page order.
//
// Output order always equals input page order, independent of completion
// order: each task writes into its own slot of a pre-sized result slice. A
// failed page degrades only its own slot (empty text, zero confidence,
// error populated); sibling pages are never cancelled.
package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/Pietr00ass/OCR-SG/internal/document"
	"github.com/Pietr00ass/OCR-SG/internal/errs"
	"github.com/Pietr00ass/OCR-SG/internal/log"
)

// RecognizeFunc runs OCR on a single page.
type RecognizeFunc func(ctx context.Context, page document.PageImage) (document.PageResult, error)

// Dispatcher owns the worker pool. It is safe for concurrent use and must
// be closed by the caller.
type Dispatcher struct {
	pool        *ants.PoolWithFunc
	pageTimeout time.Duration
}

type pageParam struct {
	ctx       context.Context
	page      document.PageImage
	recognize RecognizeFunc
	timeout   time.Duration
	results   []document.PageResult
	wg        *sync.WaitGroup
}

// New creates a dispatcher with the given worker count and per-page time
// budget. A non-positive timeout disables the budget.
func New(workers int, pageTimeout time.Duration) (*Dispatcher, error) {
	if workers <= 0 {
		return nil, errors.New("worker count must be greater than 0")
	}
	pool, err := ants.NewPoolWithFunc(workers, func(args any) {
		param, ok := args.(*pageParam)
		if !ok {
			panic("dispatch pool args type error")
		}
		defer param.wg.Done()
		param.results[param.page.Index] = runPage(param)
	})
	if err != nil {
		return nil, err
	}
	return &Dispatcher{pool: pool, pageTimeout: pageTimeout}, nil
}

// Close releases the worker pool.
func (d *Dispatcher) Close() {
	d.pool.Release()
}

// Run recognizes all pages and returns per-page results in input order.
// Page indices must be dense and zero-based, matching loader output.
func (d *Dispatcher) Run(ctx context.Context, pages []document.PageImage, recognize RecognizeFunc) []document.PageResult {
	results := make([]document.PageResult, len(pages))
	var wg sync.WaitGroup
	for _, page := range pages {
		wg.Add(1)
		param := &pageParam{
			ctx:       ctx,
			page:      page,
			recognize: recognize,
			timeout:   d.pageTimeout,
			results:   results,
			wg:        &wg,
		}
		if err := d.pool.Invoke(param); err != nil {
			results[page.Index] = degraded(page.Index, err)
			wg.Done()
		}
	}
	wg.Wait()
	return results
}

// runPage executes one page task. Pages whose job was cancelled before a
// worker claimed them degrade immediately; a page already being recognized
// runs to completion and is reported as timed out only to the caller.
func runPage(param *pageParam) document.PageResult {
	if err := param.ctx.Err(); err != nil {
		return degraded(param.page.Index, err)
	}

	ctx := param.ctx
	var cancel context.CancelFunc
	if param.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, param.timeout)
		defer cancel()
	}

	done := make(chan document.PageResult, 1)
	go func() {
		result, err := param.recognize(ctx, param.page)
		if err != nil {
			// Page-level failures are expected degradation; anything of
			// another class reaching the pool is worth a louder log.
			if errs.IsPageLevel(err) {
				log.Warnf("page %d degraded: %v", param.page.Index, err)
			} else {
				log.Errorf("page %d failed: %v", param.page.Index, err)
			}
			done <- degraded(param.page.Index, err)
			return
		}
		result.Page = param.page.Index
		done <- result
	}()

	select {
	case result := <-done:
		return result
	case <-ctx.Done():
		log.Warnf("page %d exceeded its time budget", param.page.Index)
		return degraded(param.page.Index, errs.PageTimeout(param.page.Index, ctx.Err()))
	}
}

// degraded builds the placeholder result for a failed page.
func degraded(page int, err error) document.PageResult {
	return document.PageResult{
		Page:  page,
		Boxes: []document.WordBox{},
		Error: err.Error(),
	}
}
