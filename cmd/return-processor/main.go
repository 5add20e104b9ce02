package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	awsclient "github.com/stateline/stateline-api/client/aws"
	"github.com/stateline/stateline-api/db"
	"github.com/stateline/stateline-api/logger"
	"github.com/stateline/stateline-api/services"
	"github.com/stateline/stateline-api/stateconfig"
	"github.com/stateline/stateline-api/types/api/params"
	"github.com/stateline/stateline-api/types/business"
)

const (
	stageProd  = "prod"
	stageDev   = "dev"
	stageLocal = "local"
)

// maxConcurrentReturns bounds how many profiles are processed at once.
const maxConcurrentReturns = 4

// ReturnBatchEvent is the invocation payload: a batch of financial
// snapshots to process and store, one per profile. An event with a tax year
// and no items triggers a nexus analysis sweep over every profile registered
// for that year instead.
type ReturnBatchEvent struct {
	TaxYear int               `json:"tax_year"`
	Items   []ReturnBatchItem `json:"items"`
}

// ReturnBatchItem pairs a profile with its financial snapshot.
type ReturnBatchItem struct {
	ProfileID uuid.UUID                     `json:"profile_id"`
	Data      params.MultistateBusinessData `json:"data"`
}

// BatchResult summarizes one batch run.
type BatchResult struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Application holds the dependencies for the Lambda handler.
type Application struct {
	profileService *services.ProfileService
}

// HandleRequest processes every item in the batch, bounded by
// maxConcurrentReturns workers. Item failures are counted, not fatal.
func (app *Application) HandleRequest(ctx context.Context, event ReturnBatchEvent) (BatchResult, error) {
	logger.Info("Starting return batch",
		zap.Int("tax_year", event.TaxYear),
		zap.Int("items", len(event.Items)))

	if len(event.Items) == 0 && event.TaxYear > 0 {
		return app.sweepTaxYear(ctx, event.TaxYear)
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		sem    = make(chan struct{}, maxConcurrentReturns)
		result = BatchResult{Total: len(event.Items)}
	)

	for _, item := range event.Items {
		wg.Add(1)
		sem <- struct{}{}
		go func(item ReturnBatchItem) {
			defer wg.Done()
			defer func() { <-sem }()

			_, err := app.profileService.ProcessAndStoreReturn(ctx, item.ProfileID, item.Data)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				logger.Error("Failed to process return",
					zap.String("profile_id", item.ProfileID.String()),
					zap.Error(err))
				return
			}
			result.Succeeded++
		}(item)
	}
	wg.Wait()

	logger.Info("Return batch finished",
		zap.Int("total", result.Total),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed))

	if result.Failed == result.Total && result.Total > 0 {
		return result, fmt.Errorf("all %d returns in batch failed", result.Total)
	}
	return result, nil
}

// sweepTaxYear re-runs the nexus evaluation for every profile registered for
// the tax year, against each profile's stored activities.
func (app *Application) sweepTaxYear(ctx context.Context, taxYear int) (BatchResult, error) {
	profiles, err := app.profileService.ListProfilesByTaxYear(ctx, taxYear)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to load profiles for tax year %d: %w", taxYear, err)
	}

	result := BatchResult{Total: len(profiles)}
	asOf := time.Now().UTC()
	for _, profile := range profiles {
		statuses, err := app.profileService.AnalyzeProfile(ctx, profile.ID, params.BusinessFinancials{}, asOf)
		if err != nil {
			result.Failed++
			logger.Error("Failed to analyze profile",
				zap.String("profile_id", profile.ID.String()),
				zap.Error(err))
			continue
		}
		result.Succeeded++
		logger.Info("Analyzed profile",
			zap.String("profile_id", profile.ID.String()),
			zap.String("home_state", profile.HomeState),
			zap.Int("nexus_states", countNexusStates(statuses)))
	}

	logger.Info("Tax year sweep finished",
		zap.Int("tax_year", taxYear),
		zap.Int("total", result.Total),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed))

	if result.Failed == result.Total && result.Total > 0 {
		return result, fmt.Errorf("all %d profile analyses failed", result.Total)
	}
	return result, nil
}

func countNexusStates(statuses map[string]map[business.TaxType]business.NexusStatus) int {
	count := 0
	for _, byTaxType := range statuses {
		for _, status := range byTaxType {
			if status.HasNexus {
				count++
				break
			}
		}
	}
	return count
}

func main() {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	stage := os.Getenv("STAGE")
	if stage == "" {
		stage = stageLocal
		log.Printf("Warning: STAGE environment variable not set, defaulting to '%s'", stage)
	}
	if stage != stageProd && stage != stageDev && stage != stageLocal {
		log.Fatalf("Invalid STAGE environment variable: '%s'", stage)
	}

	logger.InitLogger(stage)
	logger.Info("Cold start: initializing return processor", zap.String("stage", stage))
	defer func() {
		_ = logger.Sync()
	}()

	ctx := context.Background()

	secretsClient, err := awsclient.NewSecretsManagerClient(ctx)
	if err != nil {
		logger.Fatal("Failed to initialize AWS Secrets Manager client", zap.Error(err))
	}

	dsn, err := secretsClient.GetSecretString(ctx, "DATABASE_URL_ARN", "DATABASE_URL")
	if err != nil || dsn == "" {
		logger.Fatal("Failed to get DATABASE_URL", zap.Error(err))
	}

	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		logger.Fatal("Unable to connect to database", zap.Error(err))
	}
	// The pool persists across warm invocations; Lambda owns shutdown.
	dbQueries := db.New(pool)

	registry := stateconfig.NewRegistry()
	nexusService := services.NewNexusService(registry)
	rateService := services.NewRateService()
	apportionmentService := services.NewApportionmentService(registry, rateService)
	returnService := services.NewMultistateReturnService(apportionmentService)

	app := &Application{
		profileService: services.NewProfileService(dbQueries, nexusService, returnService),
	}

	// Local mode: read the batch event from a file instead of Lambda.
	if stage == stageLocal && len(os.Args) > 1 {
		runLocal(ctx, app, os.Args[1])
		return
	}

	lambda.Start(app.HandleRequest)
}

func runLocal(ctx context.Context, app *Application, eventPath string) {
	raw, err := os.ReadFile(eventPath)
	if err != nil {
		logger.Fatal("Failed to read event file", zap.String("path", eventPath), zap.Error(err))
	}

	var event ReturnBatchEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		logger.Fatal("Failed to parse event file", zap.String("path", eventPath), zap.Error(err))
	}

	result, err := app.HandleRequest(ctx, event)
	if err != nil {
		logger.Fatal("Batch failed", zap.Error(err))
	}
	logger.Info("Local batch complete",
		zap.Int("total", result.Total),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed))
}
