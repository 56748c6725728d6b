package dispatch

import (
	"context"

	"github.com/marmos91/tcnfs/internal/client/compound"
	"github.com/marmos91/tcnfs/pkg/tcfile"
)

// Renamev renames each pair's From to To. Both paths are invalidated in the
// Handle Cache regardless of whether the whole batch ultimately succeeds,
// since a partially-applied batch still changed the namespace for every
// pair processed before the failure point.
func (d *Dispatcher) Renamev(ctx context.Context, pairs []tcfile.RenamePair, cwd string) Result {
	ops := make([]compound.IntendedOp, len(pairs))
	for i, p := range pairs {
		ops[i] = compound.IntendedOp{Kind: compound.KindRename, File: p.From, Target: p.To}
	}

	_, result := d.runBatch(ctx, ops, cwd)
	limit := len(pairs)
	if !result.OK {
		limit = result.FailedIndex + 1
	}
	for i := 0; i < limit && i < len(pairs); i++ {
		if pairs[i].From.Kind == tcfile.RefPath {
			d.Handles.Invalidate(pairs[i].From.Path)
		}
		if pairs[i].To.Kind == tcfile.RefPath {
			d.Handles.Invalidate(pairs[i].To.Path)
		}
	}
	return result
}

// Removev removes each entry in refs, invalidating its cached handle.
func (d *Dispatcher) Removev(ctx context.Context, refs []tcfile.FileRef, cwd string) Result {
	ops := make([]compound.IntendedOp, len(refs))
	for i, r := range refs {
		ops[i] = compound.IntendedOp{Kind: compound.KindRemove, File: r}
	}

	_, result := d.runBatch(ctx, ops, cwd)
	limit := len(refs)
	if !result.OK {
		limit = result.FailedIndex + 1
	}
	for i := 0; i < limit && i < len(refs); i++ {
		if refs[i].Kind == tcfile.RefPath {
			d.Handles.Invalidate(refs[i].Path)
		}
	}
	return result
}

// Mkdirv creates each entry in specs as a directory with the given attrs.
// The new directory's handle is not seeded into the Handle Cache here: a
// CREATE result carries no filehandle, so a reference to the new directory
// still costs one LOOKUP on first use.
func (d *Dispatcher) Mkdirv(ctx context.Context, specs []tcfile.AttrSpec, cwd string) Result {
	ops := make([]compound.IntendedOp, len(specs))
	for i, s := range specs {
		ops[i] = compound.IntendedOp{Kind: compound.KindMkdir, File: s.File, Attrs: s.Attrs}
	}
	_, result := d.runBatch(ctx, ops, cwd)
	return result
}
