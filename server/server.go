package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	awsclient "github.com/stateline/stateline-api/client/aws"
	"github.com/stateline/stateline-api/db"
	"github.com/stateline/stateline-api/handlers"
	"github.com/stateline/stateline-api/logger"
	"github.com/stateline/stateline-api/middleware"
	"github.com/stateline/stateline-api/services"
	"github.com/stateline/stateline-api/stateconfig"
)

const (
	StageProd  = "prod"
	StageDev   = "dev"
	StageLocal = "local"
)

var (
	nexusHandler         *handlers.NexusHandler
	apportionmentHandler *handlers.ApportionmentHandler
	returnHandler        *handlers.ReturnHandler
	profileHandler       *handlers.ProfileHandler
	stateConfigHandler   *handlers.StateConfigHandler
	healthHandler        *handlers.HealthHandler

	commonServices *handlers.CommonServices

	defaultRateLimiter *middleware.RateLimiter
)

func isValidStage(stage string) bool {
	return stage == StageProd || stage == StageDev || stage == StageLocal
}

// InitializeHandlers wires configuration, database, engines, and handlers.
func InitializeHandlers() {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	stage := os.Getenv("STAGE")
	if stage == "" {
		stage = StageLocal
		log.Printf("Warning: STAGE environment variable not set, defaulting to '%s'", stage)
	}
	if !isValidStage(stage) {
		log.Fatalf("Invalid STAGE environment variable: '%s'. Must be one of: %s, %s, %s",
			stage, StageProd, StageDev, StageLocal)
	}

	logger.InitLogger(stage)
	logger.Info("Initializing handlers for stage", zap.String("stage", stage))

	ctx := context.Background()

	dsn := resolveDatabaseURL(ctx, stage)

	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		logger.Fatal("Unable to connect to database", zap.Error(err))
	}
	dbQueries := db.New(pool)

	registry := loadRegistry()

	nexusService := services.NewNexusService(registry)
	rateService := services.NewRateService()
	apportionmentService := services.NewApportionmentService(registry, rateService)
	returnService := services.NewMultistateReturnService(apportionmentService)
	profileService := services.NewProfileService(dbQueries, nexusService, returnService)

	commonServices = handlers.NewCommonServices(handlers.CommonServicesConfig{
		DB:                   dbQueries,
		Registry:             registry,
		Logger:               logger.Log,
		NexusService:         nexusService,
		ApportionmentService: apportionmentService,
		ReturnService:        returnService,
		ProfileService:       profileService,
	})

	nexusHandler = handlers.NewNexusHandler(commonServices)
	apportionmentHandler = handlers.NewApportionmentHandler(commonServices)
	returnHandler = handlers.NewReturnHandler(commonServices)
	profileHandler = handlers.NewProfileHandler(commonServices)
	stateConfigHandler = handlers.NewStateConfigHandler(commonServices)
	healthHandler = handlers.NewHealthHandler(commonServices)

	defaultRateLimiter = middleware.NewRateLimiter(100, 200)
}

// resolveDatabaseURL builds the DSN either from Secrets Manager credentials
// in deployed stages or from DATABASE_URL locally.
func resolveDatabaseURL(ctx context.Context, stage string) string {
	secretsClient, err := awsclient.NewSecretsManagerClient(ctx)
	if err != nil {
		logger.Fatal("Failed to initialize AWS Secrets Manager client", zap.Error(err))
	}

	if stage == StageProd || stage == StageDev {
		dbEndpoint := os.Getenv("DB_HOST")
		dbName := os.Getenv("DB_NAME")
		dbSSLMode := os.Getenv("DB_SSLMODE")

		if dbEndpoint == "" || dbName == "" {
			logger.Fatal("Missing required DB environment variables for deployed stage (DB_HOST, DB_NAME)")
		}
		if dbSSLMode == "" {
			dbSSLMode = "require"
			logger.Warn("DB_SSLMODE not set, defaulting to 'require'")
		}

		var secretData struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := secretsClient.GetSecretJSON(ctx, "RDS_SECRET_ARN", &secretData); err != nil {
			logger.Fatal("Failed to retrieve or parse RDS secret", zap.Error(err))
		}
		if secretData.Username == "" || secretData.Password == "" {
			logger.Fatal("Username or password not found in RDS secret data")
		}

		return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
			url.QueryEscape(secretData.Username),
			url.QueryEscape(secretData.Password),
			dbEndpoint, dbName, dbSSLMode)
	}

	dsn, err := secretsClient.GetSecretString(ctx, "DATABASE_URL_ARN", "DATABASE_URL")
	if err != nil || dsn == "" {
		logger.Fatal("Failed to get DATABASE_URL", zap.Error(err))
	}
	return dsn
}

// loadRegistry builds the state rule table, applying YAML overrides when
// STATE_CONFIG_OVERRIDES points at a file.
func loadRegistry() *stateconfig.Registry {
	overridePath := os.Getenv("STATE_CONFIG_OVERRIDES")
	if overridePath == "" {
		return stateconfig.NewRegistry()
	}

	registry, err := stateconfig.NewRegistryFromYAML(overridePath)
	if err != nil {
		logger.Fatal("Failed to load state config overrides",
			zap.String("path", overridePath),
			zap.Error(err))
	}
	logger.Info("Loaded state config overrides", zap.String("path", overridePath))
	return registry
}

// InitializeRoutes registers middleware and the API surface.
func InitializeRoutes(router *gin.Engine) {
	router.Use(configureCORS())
	router.Use(middleware.CorrelationIDMiddleware())
	router.Use(defaultRateLimiter.Middleware())

	router.GET("/health", healthHandler.Check)

	// Health for raw lambda url check
	router.GET("/:stage/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		nexus := v1.Group("/nexus")
		{
			nexus.POST("/economic-check", nexusHandler.CheckEconomicNexus)
			nexus.POST("/physical-presence-check", nexusHandler.CheckPhysicalPresence)
			nexus.POST("/income-tax-check", nexusHandler.CheckIncomeTaxNexus)
			nexus.POST("/status", nexusHandler.GetAllNexusStatus)
			nexus.POST("/threshold-monitor", nexusHandler.MonitorThresholds)
			nexus.POST("/validate", nexusHandler.ValidateNexusData)
		}

		apportionment := v1.Group("/apportionment")
		{
			apportionment.POST("/calculate", apportionmentHandler.Calculate)
			apportionment.POST("/validate", apportionmentHandler.Validate)
		}

		returns := v1.Group("/returns")
		{
			returns.POST("/process", returnHandler.Process)
		}

		profiles := v1.Group("/profiles")
		{
			profiles.GET("", profileHandler.ListProfiles)
			profiles.POST("", profileHandler.CreateProfile)
			profiles.GET("/:profile_id", profileHandler.GetProfile)
			profiles.DELETE("/:profile_id", profileHandler.DeleteProfile)
			profiles.POST("/:profile_id/activities", profileHandler.RecordActivity)
			profiles.GET("/:profile_id/activities", profileHandler.ListActivities)
			profiles.POST("/:profile_id/analyze", profileHandler.AnalyzeProfile)
			profiles.POST("/:profile_id/returns", returnHandler.ProcessForProfile)
			profiles.GET("/:profile_id/returns", returnHandler.ListForProfile)
			profiles.GET("/:profile_id/returns/:return_id", returnHandler.GetForProfile)
		}

		states := v1.Group("/states")
		{
			states.GET("", stateConfigHandler.ListStates)
			states.GET("/:state_code", stateConfigHandler.GetState)
		}
	}
}

// configureCORS returns a configured CORS middleware
func configureCORS() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()

	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	if originsEnv == "" {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	} else {
		origins := strings.Split(originsEnv, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		corsConfig.AllowOrigins = origins
	}

	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Correlation-ID"}
	corsConfig.ExposeHeaders = []string{
		"X-RateLimit-Limit",
		"X-RateLimit-Remaining",
		"Retry-After",
		"X-Correlation-ID",
	}
	corsConfig.AllowCredentials = os.Getenv("CORS_ALLOW_CREDENTIALS") == "true"

	return cors.New(corsConfig)
}
