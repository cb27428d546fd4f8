package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// LambdaHandler adapts h to AWS Lambda function URL invocations.
func LambdaHandler(h http.Handler) func(context.Context, events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	return func(ctx context.Context, req events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
		r, err := lambdaRequest(ctx, req)
		if err != nil {
			return events.LambdaFunctionURLResponse{}, err
		}
		w := newBufferedResponse()
		h.ServeHTTP(w, r)
		return w.lambdaResponse(), nil
	}
}

func lambdaRequest(ctx context.Context, req events.LambdaFunctionURLRequest) (*http.Request, error) {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode request body: %w", err)
		}
		body = decoded
	}
	path := req.RawPath
	if path == "" {
		path = req.RequestContext.HTTP.Path
	}
	if req.RawQueryString != "" {
		path += "?" + req.RawQueryString
	}
	r, err := http.NewRequestWithContext(ctx, req.RequestContext.HTTP.Method, path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, v := range req.Headers {
		r.Header.Set(k, v)
	}
	r.RemoteAddr = req.RequestContext.HTTP.SourceIP
	return r, nil
}

type bufferedResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: http.Header{}}
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(code int) {
	if b.status == 0 {
		b.status = code
	}
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedResponse) lambdaResponse() events.LambdaFunctionURLResponse {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	headers := make(map[string]string, len(b.header))
	for k, v := range b.header {
		headers[k] = strings.Join(v, ",")
	}
	return events.LambdaFunctionURLResponse{
		StatusCode: b.status,
		Headers:    headers,
		Body:       b.body.String(),
	}
}
