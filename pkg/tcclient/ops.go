package tcclient

import (
	"context"

	"github.com/marmos91/tcnfs/internal/client/dispatch"
	"github.com/marmos91/tcnfs/pkg/tcfile"
)

// cwdSnapshot returns the Context's current working directory under its own lock,
// for use as the cwd argument to every dispatcher call.
func (c *Context) cwdSnapshot() string {
	c.cwdMu.Lock()
	defer c.cwdMu.Unlock()
	return c.cwd
}

// Chdir changes this Context's current working directory. path is not
// resolved against the server here; resolution happens lazily the next
// time a CWD-relative FileRef is used, matching the original API's chdir
// (no network round trip).
func (c *Context) Chdir(path string) {
	c.cwdMu.Lock()
	defer c.cwdMu.Unlock()
	c.cwd = path
}

// Getcwd returns this Context's current working directory.
func (c *Context) Getcwd() string {
	return c.cwdSnapshot()
}

// FileFromPath builds a FileRef naming path, resolved against this
// Context's CWD if relative.
func FileFromPath(path string) tcfile.FileRef { return tcfile.PathRef(path) }

// FileCurrent builds a FileRef referring to the previous op's target
// within the same batch.
func FileCurrent() tcfile.FileRef { return tcfile.CurrentRef() }

// FileFromFd builds a FileRef naming a descriptor previously returned by
// Openv.
func FileFromFd(fd tcfile.Descriptor) tcfile.FileRef { return tcfile.DescriptorRef(fd) }

// Readv reads each vec.Length bytes at vec.Offset into vec.Buffer, stopping
// at the first failing op. is_transaction (spec.md §6) maps to
// Transactional on the Context's Dispatcher, set once at Init rather than
// per-call; a caller needing transactional semantics for only some batches
// should use a dedicated Context.
func (c *Context) Readv(ctx context.Context, vecs []tcfile.IoVec) Result {
	return c.dispatcher.Readv(ctx, vecs, c.cwdSnapshot())
}

// Writev writes each vec.Buffer at vec.Offset, creating the target when
// vec.IsCreation is set.
func (c *Context) Writev(ctx context.Context, vecs []tcfile.IoVec) Result {
	return c.dispatcher.Writev(ctx, vecs, c.cwdSnapshot())
}

// Getattrsv fetches the attributes named by each spec's mask into
// spec.Attrs.
func (c *Context) Getattrsv(ctx context.Context, specs []tcfile.AttrSpec) Result {
	return c.dispatcher.Getattrsv(ctx, specs, c.cwdSnapshot())
}

// Setattrsv applies each spec's masked attributes.
func (c *Context) Setattrsv(ctx context.Context, specs []tcfile.AttrSpec) Result {
	return c.dispatcher.Setattrsv(ctx, specs, c.cwdSnapshot())
}

// Renamev renames each pair's From to To.
func (c *Context) Renamev(ctx context.Context, pairs []tcfile.RenamePair) Result {
	return c.dispatcher.Renamev(ctx, pairs, c.cwdSnapshot())
}

// Removev removes each named file.
func (c *Context) Removev(ctx context.Context, refs []tcfile.FileRef) Result {
	return c.dispatcher.Removev(ctx, refs, c.cwdSnapshot())
}

// Mkdirv creates each named directory with the given attributes.
func (c *Context) Mkdirv(ctx context.Context, specs []tcfile.AttrSpec) Result {
	return c.dispatcher.Mkdirv(ctx, specs, c.cwdSnapshot())
}

// Copyv copies each spec's Length bytes from Src to Dst.
func (c *Context) Copyv(ctx context.Context, specs []tcfile.CopySpec) Result {
	return c.copier.Copyv(ctx, specs, c.cwdSnapshot())
}

// Listdir lists up to maxEntries entries of dir, fetching the attributes
// named by mask for each.
func (c *Context) Listdir(ctx context.Context, dir tcfile.FileRef, mask tcfile.AttrMask, maxEntries int) ([]Entry, error) {
	entries, err := c.lister.List(ctx, dir, c.cwdSnapshot(), mask, maxEntries)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{Name: e.Name, Attrs: e.Attrs}
	}
	return out, nil
}

// Entry is one Listdir result: a name plus whatever attributes mask
// selected.
type Entry struct {
	Name  string
	Attrs tcfile.Attrs
}

// Openv opens each spec's path and returns one Descriptor per successful
// open.
func (c *Context) Openv(ctx context.Context, specs []dispatch.OpenSpec) ([]tcfile.Descriptor, Result) {
	return c.dispatcher.Openv(ctx, specs, c.cwdSnapshot())
}

// Closev closes each of fds.
func (c *Context) Closev(ctx context.Context, fds []tcfile.Descriptor) Result {
	return c.dispatcher.Closev(ctx, fds)
}
