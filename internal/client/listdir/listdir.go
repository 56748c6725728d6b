// Package listdir drives the paged READDIR sequence a single listdir call
// expands into: one or more ReaddirPage compounds anchored at the same
// directory, chained by (cookie, cookieverf), until the server's EOF flag
// is set or the caller's max_entries is reached.
package listdir

import (
	"context"
	"fmt"

	"github.com/marmos91/tcnfs/internal/client/dispatch"
	"github.com/marmos91/tcnfs/internal/nfs4"
	"github.com/marmos91/tcnfs/pkg/tcfile"
)

// Entry is one directory entry returned to the caller: a name plus whatever
// attributes the mask selected.
type Entry struct {
	Name  string
	Attrs tcfile.Attrs
}

// initialPageCount is the starting page size in entries; List doubles it on
// every round that still hasn't hit EOF, mirroring the original API's
// growing-output-buffer contract instead of picking one fixed page size.
const initialPageCount = 64

// Lister pages through a directory's READDIR stream on behalf of listdir.
type Lister struct {
	Dispatcher *dispatch.Dispatcher
}

// New builds a Lister over d.
func New(d *dispatch.Dispatcher) *Lister {
	return &Lister{Dispatcher: d}
}

// List reads up to maxEntries entries from dir, applying mask client-side to
// each page's decoded Fattr. A page is requested at double the previous
// page's size until the server reports EOF or maxEntries is reached. The
// first page's cookie verifier is remembered and resent on every subsequent
// page; a verifier mismatch (surfaced by the dispatcher as ESTALE) aborts
// the walk with whatever entries were already collected.
func (l *Lister) List(ctx context.Context, dir tcfile.FileRef, cwd string, mask tcfile.AttrMask, maxEntries int) ([]Entry, error) {
	var (
		entries    []Entry
		cookie     uint64
		cookieVerf [8]byte
		pageCount  = initialPageCount
	)

	for {
		page, result := l.Dispatcher.ReaddirPage(ctx, dir, cwd, mask, cookie, cookieVerf, uint32(pageCount))
		if !result.OK {
			return entries, fmt.Errorf("readdir: errno %d", result.Errno)
		}

		for _, e := range page.Entries {
			entries = append(entries, Entry{Name: e.Name, Attrs: filterAttrs(e.Attrs, mask)})
			if maxEntries > 0 && len(entries) >= maxEntries {
				return entries, nil
			}
		}

		if page.EOF || len(page.Entries) == 0 {
			return entries, nil
		}

		if cookie == 0 {
			cookieVerf = page.CookieVerf
		}
		cookie = page.Entries[len(page.Entries)-1].Cookie
		pageCount *= 2
	}
}

// filterAttrs keeps only the fields mask selects, since the server's Fattr
// may carry more than the caller asked for.
func filterAttrs(f nfs4.Fattr, mask tcfile.AttrMask) tcfile.Attrs {
	a := tcfile.Attrs{Mask: mask}
	if mask.Has(tcfile.AttrMode) {
		a.Mode = f.Mode
	}
	if mask.Has(tcfile.AttrSize) {
		a.Size = f.Size
	}
	if mask.Has(tcfile.AttrUID) {
		a.UID = f.Owner
	}
	if mask.Has(tcfile.AttrGID) {
		a.GID = f.Group
	}
	if mask.Has(tcfile.AttrRdev) {
		a.Rdev = f.Rawdev
	}
	if mask.Has(tcfile.AttrNlink) {
		a.Nlink = f.Nlink
	}
	if mask.Has(tcfile.AttrAtime) {
		a.Atime = tcfile.Timespec{Sec: f.Atime.Seconds, Nsec: f.Atime.Nseconds}
	}
	if mask.Has(tcfile.AttrMtime) {
		a.Mtime = tcfile.Timespec{Sec: f.Mtime.Seconds, Nsec: f.Mtime.Nseconds}
	}
	if mask.Has(tcfile.AttrCtime) {
		a.Ctime = tcfile.Timespec{Sec: f.Ctime.Seconds, Nsec: f.Ctime.Nseconds}
	}
	return a
}
