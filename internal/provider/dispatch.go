package provider

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ready-set-deploy/rsd/internal/component"
	"github.com/ready-set-deploy/rsd/internal/rsderrors"
	"github.com/ready-set-deploy/rsd/internal/system"
)

// Gather runs a single provider's Gather, restricted to qualifier if given,
// and wraps any failure as ErrGatherFailed.
func Gather(ctx context.Context, reg *Registry, providerID string, qualifier []string) (system.System, error) {
	log := logrus.WithField("provider", providerID)
	p, err := reg.Lookup(providerID)
	if err != nil {
		return system.System{}, err
	}
	sys, err := p.Gather(ctx, qualifier)
	if err != nil {
		err = rsderrors.Wrap(rsderrors.ErrGatherFailed, rsderrors.Key{Type: providerID}, "gather %s: %s", providerID, err)
		log.WithError(err).Error("gather failed")
		return system.System{}, err
	}
	log.WithField("components", sys.Len()).Debug("gather complete")
	return sys, nil
}

// Render dispatches a diff component to the provider named by its own key's
// type, and wraps any failure as ErrRenderFailed.
func Render(ctx context.Context, reg *Registry, diff component.Component) ([]string, error) {
	log := logrus.WithField("provider", diff.Key.Type).WithField("key", diff.Key.String())
	p, err := reg.Lookup(diff.Key.Type)
	if err != nil {
		return nil, err
	}
	cmds, err := p.Render(ctx, diff)
	if err != nil {
		err = rsderrors.Wrap(rsderrors.ErrRenderFailed, rsderrors.Key{Type: diff.Key.Type, Qualifier: diff.Key.Qualifier}, "render %s: %s", diff.Key, err)
		log.WithError(err).Error("render failed")
		return nil, err
	}
	log.WithField("commands", len(cmds)).Debug("render complete")
	return cmds, nil
}

type gatherResult struct {
	sys system.System
	err error
}

// GatherAll iterates every registered provider and folds their bulk-gather
// results into one host full-state (spec.md 4.4). Providers run concurrently
// (section 5: "a gather-all run MAY dispatch per-provider gather operations
// in parallel"); a failing provider is isolated via go-multierror rather than
// aborting the others, and successful results are combined in canonical
// (provider id) order regardless of completion order, per the determinism
// requirement right-biased Atom combine imposes (section 5, design note 9).
func GatherAll(ctx context.Context, reg *Registry) (system.System, error) {
	ids := reg.IDs()
	logrus.WithField("providers", ids).Info("gather-all starting")
	results := make([]gatherResult, len(ids))

	eg, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		eg.Go(func() error {
			p, err := reg.Lookup(id)
			if err != nil {
				results[i] = gatherResult{err: err}
				return nil
			}
			sys, err := p.Gather(gctx, nil)
			if err != nil {
				err = rsderrors.Wrap(rsderrors.ErrGatherFailed, rsderrors.Key{Type: id}, "gather-all: provider %q: %s", id, err)
			}
			results[i] = gatherResult{sys: sys, err: err}
			// Always return nil: a per-provider failure must not cancel the
			// shared context and abort its siblings.
			return nil
		})
	}
	_ = eg.Wait()

	out := system.New()
	var merr *multierror.Error
	for _, r := range results {
		if r.err != nil {
			merr = multierror.Append(merr, r.err)
			continue
		}
		combined, err := system.Combine(out, r.sys)
		if err != nil {
			merr = multierror.Append(merr, err)
			continue
		}
		out = combined
	}
	err := merr.ErrorOrNil()
	if err != nil {
		logrus.WithError(err).Warn("gather-all completed with provider failures")
	}
	return out, err
}
