package transport

import (
	"context"
	"io"
	"net/http"

	"github.com/storacha/go-cacao/core/result/failure"
)

// Channel sends a request to a remote endpoint and returns its response.
type Channel interface {
	Request(ctx context.Context, request HTTPRequest) (HTTPResponse, error)
}

type HTTPRequest interface {
	Headers() http.Header
	Body() io.Reader
}

// HTTPResponse is a response from a [Channel]. Callers must close the body.
type HTTPResponse interface {
	Status() int
	Headers() http.Header
	Body() io.ReadCloser
}

type HTTPError interface {
	failure.Failure
	Status() int
	Headers() http.Header
}
