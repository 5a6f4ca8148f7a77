package tool

import (
	"context"
	"fmt"
	"io"
)

// CopyWithContext copies from src to dst while respecting context cancellation.
// onWrite, when set, is called with the size of every chunk written.
func CopyWithContext(ctx context.Context, dst io.Writer, src io.Reader, onWrite func(n int)) (int64, error) {
	buf := make([]byte, 256*1024)
	var written int64
	for {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		nr, readErr := src.Read(buf)
		if nr > 0 {
			nw, writeErr := dst.Write(buf[0:nr])
			if nw < 0 || nr < nw {
				nw = 0
				if writeErr == nil {
					writeErr = fmt.Errorf("invalid write result")
				}
			}
			written += int64(nw)
			if onWrite != nil && nw > 0 {
				onWrite(nw)
			}
			if writeErr != nil {
				return written, writeErr
			}
			if nr != nw {
				return written, io.ErrShortWrite
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				return written, nil
			}
			return written, readErr
		}
	}
}
