package fetch

import (
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("kindle-notebook/fetch")

// instrument wraps every request in a span. Headers are not recorded since
// they carry the session cookies.
func instrument(client *resty.Client) {
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		ctx, _ := tracer.Start(req.Context(), "http "+req.Method,
			trace.WithAttributes(attribute.String("http.url", req.URL)))
		req.SetContext(ctx)
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		span := trace.SpanFromContext(res.Request.Context())
		defer span.End()
		span.SetAttributes(
			attribute.Int("http.status_code", res.StatusCode()),
			attribute.Int("http.response_size", len(res.Body())),
		)
		if res.StatusCode() >= 400 {
			span.SetStatus(codes.Error, fmt.Sprintf("status %d", res.StatusCode()))
		}
		return nil
	})
	client.OnError(func(req *resty.Request, err error) {
		span := trace.SpanFromContext(req.Context())
		defer span.End()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	})
}
