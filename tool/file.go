package tool

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/moyoez/deeddesk-go/types"
)

// PathContent reads a file from disk each time it is opened.
type PathContent string

func (p PathContent) Open() (io.ReadCloser, error) {
	return os.Open(string(p))
}

// BytesContent holds a picked file in memory.
type BytesContent []byte

func (b BytesContent) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

// ParseFileURL accepts file:/// urls and plain paths and returns a filesystem path.
func ParseFileURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty file url")
	}
	if !strings.Contains(raw, "://") {
		return raw, nil
	}
	parsedUrl, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid fileUrl: %v", err)
	}
	if parsedUrl.Scheme != "file" {
		return "", fmt.Errorf("only file:// protocol is supported for fileUrl")
	}
	return parsedUrl.Path, nil
}

// RawFileFromPath stats path and sniffs its mime type from content.
func RawFileFromPath(filePath string) (types.RawFile, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return types.RawFile{}, fmt.Errorf("failed to stat file: %v", err)
	}
	if fileInfo.IsDir() {
		return types.RawFile{}, fmt.Errorf("path is a directory, not a file")
	}

	fileType := "application/octet-stream"
	if mtype, err := mimetype.DetectFile(filePath); err == nil {
		fileType = mtype.String()
	} else {
		DefaultLogger.Debugf("Mime detection failed for %s: %v", filePath, err)
	}

	return types.RawFile{
		Name:         filepath.Base(filePath),
		Size:         fileInfo.Size(),
		MimeType:     fileType,
		LastModified: fileInfo.ModTime().UnixMilli(),
		Content:      PathContent(filePath),
	}, nil
}

// RawFileFromBytes builds an in-memory file. An empty declared type is sniffed from data.
func RawFileFromBytes(name, declaredType string, lastModified int64, data []byte) types.RawFile {
	fileType := strings.TrimSpace(declaredType)
	if fileType == "" || fileType == "application/octet-stream" {
		fileType = mimetype.Detect(data).String()
	}
	return types.RawFile{
		Name:         name,
		Size:         int64(len(data)),
		MimeType:     fileType,
		LastModified: lastModified,
		Content:      BytesContent(data),
	}
}
