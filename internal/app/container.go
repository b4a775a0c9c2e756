// Package app assembles the application's dependency graph. Both the
// standalone server and the Lambda entrypoint build a Container and serve
// its Handler.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"branchpoint-backend/internal/config"
	"branchpoint-backend/internal/handlers"
	"branchpoint-backend/internal/repository"
	"branchpoint-backend/internal/repository/ddb"
	"branchpoint-backend/internal/repository/memory"
	"branchpoint-backend/internal/service/decision"
	"branchpoint-backend/internal/service/narrative"
	"branchpoint-backend/pkg/observability"
)

// Container holds the wired application.
type Container struct {
	Config     config.Config
	Logger     *zap.Logger
	Repository repository.Repository
	Narrative  *narrative.Service
	Decisions  *decision.Service
	Metrics    *observability.Metrics
	Watcher    *config.Watcher
	Handler    http.Handler
}

// New builds the container from configuration. AWS clients are only
// created for the backends that need them, so the in-memory/mock pairing
// starts with no credentials at all.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	needsAWS := cfg.StoreBackend == config.StoreDynamoDB || cfg.NarrativeProvider == config.ProviderBedrock

	var awsCfg aws.Config
	if needsAWS {
		loaded, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		awsCfg = loaded
	}

	var repo repository.Repository
	switch cfg.StoreBackend {
	case config.StoreDynamoDB:
		repo = ddb.NewRepository(dynamodb.NewFromConfig(awsCfg), cfg.TableName, cfg.IndexName)
	default:
		repo = memory.NewRepository()
	}

	var provider narrative.Provider
	switch cfg.NarrativeProvider {
	case config.ProviderBedrock:
		provider = narrative.NewBedrockProvider(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockTimeout)
	default:
		provider = narrative.NewMockProvider()
	}

	metrics := observability.NewMetrics()
	narrativeSvc := narrative.NewService(provider, cfg.ModelID, cfg.BranchModelID, logger)
	narrativeSvc.OnFallback(metrics.AdapterFallbacks.Inc)
	decisionSvc := decision.NewService(repo, narrativeSvc, logger)

	watcher, err := config.NewWatcher(cfg.OverridesPath, logger)
	if err != nil {
		return nil, fmt.Errorf("start overrides watcher: %w", err)
	}
	watcher.OnChange(func(o config.Overrides) {
		narrativeSvc.SetModels(o.ModelID, o.BranchModelID)
		logger.Info("model routing updated",
			zap.String("modelId", o.ModelID),
			zap.String("branchModelId", o.BranchModelID),
		)
	})
	if current := watcher.Current(); current.ModelID != "" || current.BranchModelID != "" {
		narrativeSvc.SetModels(current.ModelID, current.BranchModelID)
	}

	router := handlers.NewRouter(
		handlers.NewDecisionHandler(decisionSvc, metrics, logger),
		handlers.NewGenerateHandler(narrativeSvc, metrics, logger),
		metrics,
		logger,
	)

	return &Container{
		Config:     cfg,
		Logger:     logger,
		Repository: repo,
		Narrative:  narrativeSvc,
		Decisions:  decisionSvc,
		Metrics:    metrics,
		Watcher:    watcher,
		Handler:    router.Handler(),
	}, nil
}

// Close releases background resources.
func (c *Container) Close() {
	if c.Watcher != nil {
		c.Watcher.Stop()
	}
}
