// Package orchestrate fans a list of Markdown files out across a
// bounded pool of concurrent file executors.
package orchestrate

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/temoc-project/temoc/internal/portpool"
	"github.com/temoc-project/temoc/internal/runner"
	"github.com/temoc-project/temoc/internal/slim"
)

// ConnectorFor builds the Connector an Executor should use to reach
// the SUT bound to port. Config owns the command template and
// TCP-vs-stdio choice; orchestrate only needs to plug a concrete port
// in per lease.
type ConnectorFor func(port int) slim.Connector

// Options configures a Run.
type Options struct {
	PoolSize     int
	BasePort     int
	Deadline     time.Duration // zero means no deadline
	ConnectorFor ConnectorFor
	Log          *logrus.Logger
}

// Run executes every file in files, at most opts.PoolSize at a time,
// each against its own leased port, and returns their Reports in the
// order files were given — matching spec.md §5's "no ordering
// guarantee between files, reports collected and printed in file
// order" rule.
func Run(ctx context.Context, files []string, opts Options) []runner.Report {
	if opts.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Deadline)
		defer cancel()
	}

	pool := portpool.New(opts.BasePort, opts.PoolSize)
	reports := make([]runner.Report, len(files))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.PoolSize)

	var mu sync.Mutex
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			lease, err := pool.Acquire(gCtx)
			if err != nil {
				mu.Lock()
				reports[i] = runner.Report{File: path, Aborted: true, AbortErr: err}
				mu.Unlock()
				return nil
			}
			defer lease.Release()

			opts.Log.Debugf("%s: leased port %d", path, lease.Port)
			exec := runner.NewExecutor(opts.ConnectorFor(lease.Port), opts.Log)
			report := exec.Run(gCtx, path)

			mu.Lock()
			reports[i] = report
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return reports
}
