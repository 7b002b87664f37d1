package testutil

import (
	"net/http"
	"time"

	"salesintel/pkg/requestcontext"
)

// WithReceiptTime stamps the request as if the requesttime middleware ran.
func WithReceiptTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}

// WithRequestID stamps the request as if the requestid middleware ran.
func WithRequestID(req *http.Request, id string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), id))
}
