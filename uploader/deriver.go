package uploader

import (
	"github.com/moyoez/deeddesk-go/tool"
	"github.com/moyoez/deeddesk-go/types"
)

// HandleSource creates and frees the transient resources previews render from.
type HandleSource interface {
	Create(file types.RawFile) string
	Revoke(handle string)
}

// Deriver keeps the preview descriptors in step with the selection and is the only
// owner of their handles. owned maps handle -> descriptor id; handles are unique even
// when ids collide.
type Deriver struct {
	source HandleSource

	derived  bool
	version  uint64
	previews []types.PreviewDescriptor
	owned    map[string]string
	closed   bool

	// onLiveChange is called with the number of live handles after every change.
	onLiveChange func(live int)
}

func NewDeriver(source HandleSource) *Deriver {
	return &Deriver{
		source: source,
		owned:  make(map[string]string),
	}
}

// Derive returns the descriptors for files at version. The same version returns the
// previous descriptors without touching any handle. A new version acquires fresh
// handles first and then releases every handle of the previous derivation exactly once.
func (d *Deriver) Derive(files []types.RawFile, version uint64) []types.PreviewDescriptor {
	if d.closed {
		return nil
	}
	if d.derived && d.version == version {
		return d.snapshot()
	}

	previews := make([]types.PreviewDescriptor, 0, len(files))
	owned := make(map[string]string, len(files))
	for i, f := range files {
		id := tool.PreviewID(f.Name, f.Size, f.LastModified)
		handle := d.source.Create(f)
		owned[handle] = id
		previews = append(previews, types.PreviewDescriptor{
			ID:         id,
			Index:      i,
			Name:       f.Name,
			Size:       f.Size,
			SizeText:   tool.FormatBytes(f.Size),
			MimeType:   f.MimeType,
			PreviewURL: handle,
		})
	}

	d.releaseAll()
	d.owned = owned
	d.previews = previews
	d.version = version
	d.derived = true
	d.reportLive()
	return d.snapshot()
}

// Previews returns the current descriptors without deriving.
func (d *Deriver) Previews() []types.PreviewDescriptor {
	return d.snapshot()
}

// Live is the number of handles currently owned.
func (d *Deriver) Live() int {
	return len(d.owned)
}

// Close releases every owned handle. Later calls are no-ops.
func (d *Deriver) Close() {
	if d.closed {
		return
	}
	d.releaseAll()
	d.previews = nil
	d.closed = true
	d.reportLive()
}

func (d *Deriver) releaseAll() {
	for handle := range d.owned {
		d.source.Revoke(handle)
	}
	d.owned = make(map[string]string)
}

func (d *Deriver) reportLive() {
	if d.onLiveChange != nil {
		d.onLiveChange(len(d.owned))
	}
}

func (d *Deriver) snapshot() []types.PreviewDescriptor {
	out := make([]types.PreviewDescriptor, len(d.previews))
	copy(out, d.previews)
	return out
}
