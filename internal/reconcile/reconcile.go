// Package reconcile computes and applies the difference between a local
// secret map and the remote secret.
package reconcile

import (
	"context"
	"strings"

	"github.com/systmms/aws-secrets/internal/errors"
	"github.com/systmms/aws-secrets/internal/secrets"
)

// Mode selects how local and remote maps are combined.
type Mode string

const (
	// ModeMerge overlays local values on the remote map and removes nothing.
	ModeMerge Mode = "merge"
	// ModeOverwrite replaces the remote map with the local one.
	ModeOverwrite Mode = "overwrite"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeMerge:
		return ModeMerge, nil
	case ModeOverwrite:
		return ModeOverwrite, nil
	}
	return "", errors.New(errors.KindConfiguration, "Invalid sync mode %q (expected merge or overwrite)", s)
}

// Store is the part of the secret store the reconciler needs.
type Store interface {
	Fetch(ctx context.Context) (*secrets.Map, error)
	Update(ctx context.Context, m *secrets.Map) error
}

// Change is one added or changed key and its new value.
type Change struct {
	Key   string
	Value string
}

// Plan is the outcome of comparing local against remote.
type Plan struct {
	Mode    Mode
	Target  *secrets.Map
	Added   []Change
	Changed []Change
	Removed []string
}

// Modified is the number of keys that are new or carry a different value.
func (p Plan) Modified() int {
	return len(p.Added) + len(p.Changed)
}

// Empty reports whether applying the plan would leave the remote untouched.
func (p Plan) Empty() bool {
	return p.Modified() == 0 && len(p.Removed) == 0
}

// Compute builds the plan for pushing local to remote. Neither input is
// modified.
func Compute(local, remote *secrets.Map, mode Mode) Plan {
	plan := Plan{Mode: mode}

	for key, value := range local.All() {
		current, ok := remote.Get(key)
		switch {
		case !ok:
			plan.Added = append(plan.Added, Change{Key: key, Value: value})
		case current != value:
			plan.Changed = append(plan.Changed, Change{Key: key, Value: value})
		}
	}

	if mode == ModeOverwrite {
		plan.Target = local.Clone()
		for key := range remote.All() {
			if !local.Has(key) {
				plan.Removed = append(plan.Removed, key)
			}
		}
		return plan
	}

	plan.Target = remote.Clone()
	for key, value := range local.All() {
		plan.Target.Set(key, value)
	}
	return plan
}

// Options controls Run.
type Options struct {
	Mode   Mode
	DryRun bool
}

// Result is a computed plan and whether it was written.
type Result struct {
	Plan
	Applied bool
}

// Run fetches the remote snapshot, computes the plan and, unless DryRun is
// set, writes the target with a single update.
func Run(ctx context.Context, store Store, local *secrets.Map, opts Options) (Result, error) {
	mode := opts.Mode
	if mode == "" {
		mode = ModeMerge
	}

	remote, err := store.Fetch(ctx)
	if err != nil {
		return Result{}, err
	}

	res := Result{Plan: Compute(local, remote, mode)}
	if opts.DryRun {
		return res, nil
	}

	if err := store.Update(ctx, res.Target); err != nil {
		return res, err
	}
	res.Applied = true
	return res, nil
}
