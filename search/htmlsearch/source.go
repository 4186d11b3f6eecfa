package htmlsearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/BaSui01/fluentwait/types"
)

// Source produces the HTML document a Search parses.
type Source interface {
	// Name identifies the source in logs and errors.
	Name() string
	// Open returns a reader over the current document.
	Open(ctx context.Context) (io.ReadCloser, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc struct {
	Label string
	Fn    func(ctx context.Context) (io.ReadCloser, error)
}

// Name implements Source.
func (s SourceFunc) Name() string { return s.Label }

// Open implements Source.
func (s SourceFunc) Open(ctx context.Context) (io.ReadCloser, error) { return s.Fn(ctx) }

// StringSource serves a fixed document.
func StringSource(name, html string) Source {
	return SourceFunc{Label: name, Fn: func(context.Context) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(html)), nil
	}}
}

// FileSource reads the document from path on every open.
func FileSource(path string) Source {
	return SourceFunc{Label: "file://" + path, Fn: func(context.Context) (io.ReadCloser, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, types.NewError(types.ErrSourceUnreadable, "failed to open document").WithCause(err)
		}
		return f, nil
	}}
}

// URLSource fetches the document with GET on every open. A nil client
// uses http.DefaultClient.
func URLSource(url string, client *http.Client) Source {
	if client == nil {
		client = http.DefaultClient
	}
	return SourceFunc{Label: url, Fn: func(ctx context.Context) (io.ReadCloser, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, types.NewError(types.ErrSourceUnreadable, "invalid document url").WithCause(err)
		}
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
		resp, err := client.Do(req)
		if err != nil {
			return nil, types.NewError(types.ErrSourceUnreadable, "failed to fetch document").
				WithCause(err).WithRetryable(true)
		}
		if resp.StatusCode >= http.StatusBadRequest {
			resp.Body.Close()
			return nil, types.NewError(types.ErrSourceUnreadable, fmt.Sprintf("GET %s: %s", url, resp.Status)).
				WithRetryable(resp.StatusCode >= http.StatusInternalServerError)
		}
		return resp.Body, nil
	}}
}
