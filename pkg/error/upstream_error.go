package error

import "net/http"

// UpstreamError is the only failure a client can observe for data reads:
// no cache, no snapshot, and the scraping provider failed.
type UpstreamError string

func (err UpstreamError) Error() string {
	return string(err)
}

func (err UpstreamError) ErrCode() string {
	return "UPSTREAM_ERROR"
}

func (err UpstreamError) StatusCode() int {
	return http.StatusBadGateway
}
