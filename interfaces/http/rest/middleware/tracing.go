package middleware

import (
	"net/http"

	"github.com/aws/aws-xray-sdk-go/xray"

	"teamcal-backend/pkg/observability"
)

// Tracing opens an X-Ray subsegment per request. Outside an existing
// trace, as in local runs and tests, there is no parent segment and the
// request passes through untouched.
func Tracing(tracer *observability.Tracer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if xray.GetSegment(r.Context()) == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx, seg := tracer.StartSubsegment(r.Context(), "router")
			tracer.AddAnnotation(ctx, "method", r.Method)
			tracer.AddAnnotation(ctx, "path", r.URL.Path)
			next.ServeHTTP(w, r.WithContext(ctx))
			seg.Close(nil)
		})
	}
}
