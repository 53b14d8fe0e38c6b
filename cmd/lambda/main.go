package main

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"

	"teamcal-backend/infrastructure/config"
	"teamcal-backend/infrastructure/di"
	"teamcal-backend/interfaces/http/rest"
)

var (
	// chiLambda wraps the chi router for API Gateway integration
	chiLambda *chiadapter.ChiLambdaV2

	container *di.Container

	coldStart     = true
	coldStartTime time.Time
)

// init runs during cold start. The background outbox relay is not
// started here; the scheduled relay function drains it instead.
func init() {
	coldStartTime = time.Now()

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	handler := rest.NewRouter(container).Setup()
	chiRouter, ok := handler.(*chi.Mux)
	if !ok {
		log.Fatal("Router did not produce a chi.Mux")
	}
	chiLambda = chiadapter.NewV2(chiRouter)

	log.Printf("Cold start completed in %v", time.Since(coldStartTime))
}

// Handler proxies API Gateway requests through the chi router. Tokens
// are validated in-process by the router's middleware, so no authorizer
// context needs translating here.
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	resp, err := chiLambda.ProxyWithContextV2(ctx, req)

	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	if coldStart {
		resp.Headers["X-Cold-Start"] = "true"
		resp.Headers["X-Cold-Start-Duration"] = time.Since(coldStartTime).String()
		coldStart = false
	}
	if req.RequestContext.RequestID != "" {
		resp.Headers["X-Request-ID"] = req.RequestContext.RequestID
	}

	return resp, err
}

func main() {
	lambda.Start(Handler)
}
