package api

import (
	"context"
	"net/http"
)

// Sender is the raw request surface: one call, one buffered Response.
// Commands that pass endpoints straight through depend on this instead of
// *Client so they can be tested with a fake.
type Sender interface {
	Send(ctx context.Context, method, endpoint string, headers http.Header, body []byte) (*Response, error)
	SendAsync(ctx context.Context, method, endpoint string, headers http.Header, body []byte) (*Future[*Response], error)
}

// Requester is what the resource helpers need: a JSON round trip that
// decodes success bodies into result and error bodies into *APIError.
//
// Resource helpers take a Requester rather than *Client so that path
// construction and payload shapes can be tested without HTTP:
//
//	type recordingRequester struct{ method, endpoint string }
//	func (r *recordingRequester) do(ctx context.Context, method, endpoint string, body, result any) error {
//		r.method, r.endpoint = method, endpoint
//		return nil
//	}
type Requester interface {
	do(ctx context.Context, method, endpoint string, body, result any) error
}
