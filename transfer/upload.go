package transfer

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"

	"github.com/moyoez/deeddesk-go/tool"
	"github.com/moyoez/deeddesk-go/types"
)

// DefaultFieldName is the form field every file part is sent under.
const DefaultFieldName = "files"

// MaxResponseBytes caps how much of a response body is read.
const MaxResponseBytes = 32 << 20

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Client posts a batch of files as one multipart request.
type Client struct {
	HTTP      *http.Client
	FieldName string
	// OnBytes is called with every chunk of file content written to the body.
	OnBytes func(n int)
}

// NewClient uses the shared tool HTTP client when c is nil.
func NewClient(c *http.Client) *Client {
	if c == nil {
		c = tool.GetHttpClient()
	}
	return &Client{HTTP: c, FieldName: DefaultFieldName}
}

// Send streams files (and then fields, in key order) to uploadURL and returns the settled
// response with its body read. Any status is returned as a response; only transport
// failures are errors. The transport closes the pipe, which stops the writer goroutine.
func (c *Client) Send(ctx context.Context, uploadURL string, files []types.RawFile, fields map[string]string) (*types.RawResponse, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("invalid parameters: files must not be empty")
	}
	fieldName := c.FieldName
	if fieldName == "" {
		fieldName = DefaultFieldName
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeMultipart(ctx, mw, fieldName, files, fields, c.OnBytes))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, pr)
	if err != nil {
		pr.CloseWithError(err)
		return nil, fmt.Errorf("failed to create upload request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json, text/plain, */*")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = tool.GetHttpClient()
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send upload request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close response body: %v", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload response body: %w", err)
	}

	tool.DefaultLogger.Infof("Upload request to %s settled: %s (%d bytes)", uploadURL, resp.Status, len(body))
	return &types.RawResponse{
		StatusCode:  resp.StatusCode,
		Status:      resp.Status,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func writeMultipart(ctx context.Context, mw *multipart.Writer, fieldName string, files []types.RawFile, fields map[string]string, onBytes func(int)) error {
	for _, file := range files {
		if err := writeFilePart(ctx, mw, fieldName, file, onBytes); err != nil {
			return err
		}
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := mw.WriteField(k, fields[k]); err != nil {
			return fmt.Errorf("failed to write form field %s: %v", k, err)
		}
	}
	return mw.Close()
}

func writeFilePart(ctx context.Context, mw *multipart.Writer, fieldName string, file types.RawFile, onBytes func(int)) error {
	if file.Content == nil {
		return fmt.Errorf("file %s has no content", file.Name)
	}
	contentType := file.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(fieldName), quoteEscaper.Replace(file.Name)))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create part for %s: %v", file.Name, err)
	}

	src, err := file.Content.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %v", file.Name, err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close %s: %v", file.Name, err)
		}
	}()
	if _, err := tool.CopyWithContext(ctx, part, src, onBytes); err != nil {
		return fmt.Errorf("failed to write %s: %v", file.Name, err)
	}
	return nil
}
