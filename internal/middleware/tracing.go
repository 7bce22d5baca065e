package middleware

import (
	"fmt"
	"strings"

	"inkpress/internal/models"
	"inkpress/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Span attributes naming the content a request touched.
const (
	AttrPostRef   = attribute.Key("inkpress.post.ref")
	AttrCommentID = attribute.Key("inkpress.comment.id")
	AttrTag       = attribute.Key("inkpress.tag")
	AttrErrorCode = attribute.Key("inkpress.error.code")
)

// TracingMiddleware opens a server span per request. The span is renamed to
// the matched route once routing is done, so /api/posts/42 and
// /api/posts/hello report as one operation, and carries the post, comment or
// tag the route addressed.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))
		ctx, span := observability.Tracer.Start(ctx, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.path", c.Path()),
				attribute.String("http.ip", c.IP()),
				attribute.String("http.user_agent", c.Get(fiber.HeaderUserAgent)),
			),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Locals("traceID", traceID)
		c.Set("X-Trace-ID", traceID)
		if requestID := c.Locals("requestid"); requestID != nil {
			span.SetAttributes(attribute.String("request.id", fmt.Sprint(requestID)))
		}
		c.SetUserContext(ctx)

		err := c.Next()

		route := c.Route().Path
		span.SetName(c.Method() + " " + route)
		span.SetAttributes(attribute.String("http.route", route))
		span.SetAttributes(contentAttributes(route, c.Params)...)

		status := c.Response().StatusCode()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if code, ok := c.Locals(models.LocalErrorCode).(string); ok && code != "" {
			span.SetAttributes(AttrErrorCode.String(code))
		}
		if userID := c.Locals("userID"); userID != nil {
			span.SetAttributes(attribute.String("user.id", fmt.Sprint(userID)))
		}
		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case status >= fiber.StatusInternalServerError:
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
		}
		return err
	}
}

// contentAttributes maps the parameters of post, comment and tag routes onto
// span attributes.
func contentAttributes(route string, param func(string, ...string) string) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	switch {
	case strings.HasPrefix(route, "/api/posts/slug/"):
		attrs = append(attrs, AttrPostRef.String(param("slug")))
	case strings.HasPrefix(route, "/api/posts/tag/"):
		attrs = append(attrs, AttrTag.String(param("tag")))
	case strings.HasPrefix(route, "/api/posts/:id"):
		attrs = append(attrs, AttrPostRef.String(param("id")))
	case strings.HasPrefix(route, "/api/comments/:id"):
		attrs = append(attrs, AttrCommentID.String(param("id")))
	}
	return attrs
}
