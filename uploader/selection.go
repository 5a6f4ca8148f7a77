package uploader

import (
	"strings"

	"github.com/moyoez/deeddesk-go/types"
)

// Selection is the ordered list of picked files. Every mutation that changes the
// list bumps version, which is what the deriver keys its recomputation on.
type Selection struct {
	files   []types.RawFile
	version uint64
}

// IsImage reports whether a mime type is accepted into the selection.
func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

// Add appends the image candidates and silently drops the rest.
func (s *Selection) Add(candidates []types.RawFile) (added int, dropped int) {
	picked := make([]types.RawFile, 0, len(candidates))
	for _, f := range candidates {
		if IsImage(f.MimeType) {
			picked = append(picked, f)
		}
	}
	if len(picked) == 0 {
		return 0, len(candidates)
	}
	next := make([]types.RawFile, 0, len(s.files)+len(picked))
	next = append(next, s.files...)
	s.files = append(next, picked...)
	s.version++
	return len(picked), len(candidates) - len(picked)
}

// RemoveAt removes the file at index. Out of range is a no-op and reports false.
func (s *Selection) RemoveAt(index int) bool {
	if index < 0 || index >= len(s.files) {
		return false
	}
	next := make([]types.RawFile, 0, len(s.files)-1)
	next = append(next, s.files[:index]...)
	s.files = append(next, s.files[index+1:]...)
	s.version++
	return true
}

// Clear empties the list. It reports false when the list was already empty.
func (s *Selection) Clear() bool {
	if len(s.files) == 0 {
		return false
	}
	s.files = nil
	s.version++
	return true
}

// Files returns a copy of the current list.
func (s *Selection) Files() []types.RawFile {
	out := make([]types.RawFile, len(s.files))
	copy(out, s.files)
	return out
}

func (s *Selection) Len() int {
	return len(s.files)
}

func (s *Selection) Version() uint64 {
	return s.version
}

// TotalSize sums the sizes of every selected file.
func (s *Selection) TotalSize() int64 {
	var total int64
	for _, f := range s.files {
		total += f.Size
	}
	return total
}
