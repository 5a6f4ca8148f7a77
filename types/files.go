package types

import "io"

// ContentSource is the opaque binary content behind a picked file.
type ContentSource interface {
	Open() (io.ReadCloser, error)
}

// RawFile is one file handed over by the file chooser.
// It is never mutated after creation; identity inside a selection is positional.
type RawFile struct {
	Name         string        `json:"name"`
	Size         int64         `json:"size"`
	MimeType     string        `json:"mimeType"`
	LastModified int64         `json:"lastModified"` // unix millis
	Content      ContentSource `json:"-"`
}

// PreviewDescriptor is the renderable view of a selected file.
type PreviewDescriptor struct {
	ID         string `json:"id"` // name-size-lastModified, not unique
	Index      int    `json:"index"`
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	SizeText   string `json:"sizeText"`
	MimeType   string `json:"mimeType"`
	PreviewURL string `json:"previewUrl"`
}

// FilePathsRequest adds files from the local filesystem.
// POST /api/self/v1/files/paths
type FilePathsRequest struct {
	FileUrls []string `json:"fileUrls"` // file:/// urls or plain paths
}
