package router

import (
	"github.com/dared22/mealplanner/internal/config"
	"github.com/dared22/mealplanner/internal/handler"
	"github.com/dared22/mealplanner/internal/middleware"
	"github.com/dared22/mealplanner/internal/pkg/jwt"
	"github.com/dared22/mealplanner/internal/pkg/session"
	"github.com/dared22/mealplanner/internal/planner/coordinator"
	"github.com/dared22/mealplanner/internal/repository"
	"github.com/dared22/mealplanner/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Dependencies holds all dependencies needed for router setup
type Dependencies struct {
	DB             *gorm.DB
	RedisClient    *redis.Client
	JWTManager     jwt.JWTManager
	SessionManager session.SessionManager
	RateLimiter    *middleware.RateLimiter

	// Services
	AuthService  service.AuthService
	UserService  service.UserService
	AIAPIService service.AIAPIService

	// Repositories
	RatingRepo repository.RatingRepository

	// Meal plan generation
	Coordinator *coordinator.Coordinator
}

// SetupRouter configures and returns the Gin router with all routes and middleware
func SetupRouter(deps *Dependencies) *gin.Engine {
	// Set Gin mode based on configuration
	if config.GlobalConfig.App.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware stack (order matters!)
	// 1. Recovery - catch panics first
	router.Use(middleware.RecoveryMiddleware(nil))

	// 2. Logging - log all requests
	router.Use(middleware.LoggingMiddleware(nil))

	// 3. CORS - handle cross-origin requests
	corsConfig := middleware.DefaultCORSConfig()
	if config.GlobalConfig.App.Mode == "release" {
		// In production, specify allowed origins
		// corsConfig = middleware.ProductionCORSConfig([]string{"https://yourdomain.com"})
	}
	router.Use(middleware.CORSMiddleware(corsConfig))

	// 4. Security - input sanitization and security headers
	router.Use(middleware.SecurityMiddleware(nil))

	// Health check endpoint (no authentication required)
	healthHandler := handler.NewHealthHandler()
	router.GET("/health", healthHandler.HealthCheck)

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		setupPublicRoutes(v1, deps)

		// Protected routes (authentication required)
		setupProtectedRoutes(v1, deps)
	}

	return router
}

// setupPublicRoutes configures public API routes (no authentication)
func setupPublicRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	authHandler := handler.NewAuthHandler(deps.AuthService)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
	}
}

// setupProtectedRoutes configures protected API routes (authentication required)
func setupProtectedRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	// Create protected group with authentication and rate limiting
	protected := rg.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWTManager, deps.SessionManager))
	protected.Use(deps.RateLimiter.RateLimitMiddleware())

	// Initialize handlers
	authHandler := handler.NewAuthHandler(deps.AuthService)
	userHandler := handler.NewUserHandler(deps.UserService)
	aiAPIHandler := handler.NewAIAPIHandler(deps.AIAPIService)
	plannerHandler := handler.NewPlannerHandler(deps.Coordinator, deps.RatingRepo, config.GlobalConfig.Planner)

	// Auth routes (logout requires authentication)
	{
		protected.POST("/auth/logout", authHandler.Logout)
	}

	// User routes
	user := protected.Group("/user")
	{
		user.GET("/profile", userHandler.GetProfile)
		user.PUT("/profile", userHandler.UpdateProfile)
		user.POST("/body-data", userHandler.AddBodyData)
		user.GET("/body-data", userHandler.GetBodyDataHistory)
		user.POST("/fitness-goals", userHandler.SetFitnessGoals)
		user.GET("/fitness-goals", userHandler.GetFitnessGoals)
		user.PUT("/fitness-goals", userHandler.UpdateFitnessGoals)
	}

	// AI API management routes
	aiAPIs := protected.Group("/ai-apis")
	{
		aiAPIs.POST("", aiAPIHandler.AddAPI)
		aiAPIs.GET("", aiAPIHandler.ListAPIs)
		aiAPIs.GET("/:id", aiAPIHandler.GetAPI)
		aiAPIs.PUT("/:id", aiAPIHandler.UpdateAPI)
		aiAPIs.DELETE("/:id", aiAPIHandler.DeleteAPI)
		aiAPIs.POST("/:id/test", aiAPIHandler.TestAPI)
		aiAPIs.POST("/:id/set-default", aiAPIHandler.SetDefault)
	}

	// Meal plan generation routes (§6.1, §6.2), with stricter rate
	// limiting on the generation endpoint itself.
	mealPlans := protected.Group("/meal-plans")
	{
		generation := mealPlans.Group("")
		generation.Use(deps.RateLimiter.AIGenerationRateLimitMiddleware())
		generation.POST("/generate", plannerHandler.GenerateMealPlan)

		mealPlans.GET("/generate/:requestId", plannerHandler.GetGenerationStatus)
		mealPlans.DELETE("/generate/:requestId", plannerHandler.CancelGeneration)
	}

	// Recipe rating routes, the source data for get_likes/get_dislikes
	// (§6.4).
	recipes := protected.Group("/recipes")
	{
		recipes.POST("/rating", plannerHandler.RateRecipe)
	}
}
