package main

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"branchpoint-backend/internal/app"
	"branchpoint-backend/internal/config"
)

var chiLambda *chiadapter.ChiLambdaV2

// init runs during cold start.
func init() {
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}

	container, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	mux, ok := container.Handler.(*chi.Mux)
	if !ok {
		logger.Fatal("handler is not a chi mux")
	}
	chiLambda = chiadapter.NewV2(mux)

	logger.Info("cold start complete", zap.Duration("took", time.Since(start)))
}

// Handler proxies API Gateway V2 events into the chi router.
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return chiLambda.ProxyWithContextV2(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
