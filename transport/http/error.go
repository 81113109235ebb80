package http

import (
	"fmt"
	nethttp "net/http"

	"github.com/storacha/go-cacao/core/ipld"
	"github.com/storacha/go-cacao/core/result/failure"
	fdm "github.com/storacha/go-cacao/core/result/failure/datamodel"
	"github.com/storacha/go-cacao/transport"
)

// HTTPErrorName is the name of failures raised for unexpected HTTP statuses.
const HTTPErrorName = "HTTPError"

type httpError struct {
	message string
	status  int
	headers nethttp.Header
}

var _ failure.IPLDBuilderFailure = (*httpError)(nil)

func (err *httpError) Error() string {
	return err.message
}

func (err *httpError) Name() string {
	return HTTPErrorName
}

func (err *httpError) Status() int {
	return err.status
}

func (err *httpError) Headers() nethttp.Header {
	return err.headers
}

func (err *httpError) ToIPLD() (ipld.Node, error) {
	name := HTTPErrorName
	field := fmt.Sprintf("status %d", err.status)
	model := fdm.FailureModel{Name: &name, Message: err.message, Field: &field}
	return model.ToIPLD()
}

func NewHTTPError(message string, status int, headers nethttp.Header) transport.HTTPError {
	return &httpError{message, status, headers}
}
