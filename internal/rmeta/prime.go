package rmeta

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// PrimeAll concurrently warms the CRAN memo/cache for every package in pkgs.
// This is the one place the provider steps outside the otherwise strictly
// synchronous design (§5): the packages are independent cache entries, so
// update-cache can fan them out, while the solver itself never calls this
// and stays single-threaded. A bounded errgroup keeps concurrency in check
// and the first error cancels the remaining fetches.
func (p *Provider) PrimeAll(ctx context.Context, pkgs []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, pkg := range pkgs {
		pkg := pkg
		g.Go(func() error {
			_, err := p.GetCRANVersions(gctx, pkg)
			return err
		})
	}
	return g.Wait()
}
