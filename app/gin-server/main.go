package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/elzaeemwork/autoreply-backend/config"
	"github.com/elzaeemwork/autoreply-backend/internal/api/handlers"
	"github.com/elzaeemwork/autoreply-backend/internal/api/middleware"
	"github.com/elzaeemwork/autoreply-backend/internal/api/routes"
	"github.com/elzaeemwork/autoreply-backend/internal/cache"
	"github.com/elzaeemwork/autoreply-backend/internal/logger"
	"github.com/elzaeemwork/autoreply-backend/internal/messenger"
	"github.com/elzaeemwork/autoreply-backend/internal/models"
	"github.com/elzaeemwork/autoreply-backend/internal/providers/llm"
	mongorepo "github.com/elzaeemwork/autoreply-backend/internal/repositories/mongo"
	pgrepo "github.com/elzaeemwork/autoreply-backend/internal/repositories/postgres"
	"github.com/elzaeemwork/autoreply-backend/internal/services"
	"github.com/elzaeemwork/autoreply-backend/internal/storage"
	"github.com/elzaeemwork/autoreply-backend/internal/workers"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()
	ctx := context.Background()

	if err := config.InitPostgres(); err != nil {
		log.WithError(err).Fatal("PostgreSQL init failed")
	}
	log.Info("PostgreSQL connected")

	if err := config.PostgresDB.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Message{},
		&models.Order{},
		&models.StoreProfile{},
		&models.ActivationCode{},
	); err != nil {
		log.WithError(err).Fatal("PostgreSQL migration failed")
	}

	if err := config.InitMongo(); err != nil {
		log.WithError(err).Fatal("MongoDB init failed")
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.WithError(err).Fatal("MongoDB index setup failed")
	}
	log.Info("MongoDB connected")

	if err := config.InitRedis(); err != nil {
		log.WithError(err).Fatal("Redis init failed")
	}
	log.Info("Redis connected")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	mongoDB := os.Getenv("MONGO_DB")
	if mongoDB == "" {
		mongoDB = "autoreply"
	}

	// Repositories
	userRepo := pgrepo.NewUserRepo(config.PostgresDB)
	productRepo := pgrepo.NewProductRepo(config.PostgresDB)
	messageRepo := pgrepo.NewMessageRepo(config.PostgresDB)
	orderRepo := pgrepo.NewOrderRepo(config.PostgresDB)
	storeRepo := pgrepo.NewStoreProfileRepo(config.PostgresDB)
	codeRepo := pgrepo.NewActivationCodeRepo(config.PostgresDB)
	credRepo := mongorepo.NewPageCredentialRepo(config.MongoClient.Database(mongoDB))

	rc := cache.NewRedisCache(config.RedisClient)

	// Generation provider
	provider, err := llm.NewVertexGemini(ctx,
		os.Getenv("GEMINI_PROJECT_ID"),
		os.Getenv("GEMINI_LOCATION"),
		os.Getenv("GEMINI_MODEL"),
	)
	if err != nil {
		log.WithError(err).Fatal("Vertex Gemini init failed")
	}
	defer provider.Close()

	// Image storage is optional; product uploads 503 without it.
	var uploader storage.Uploader
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		up, err := storage.NewGCSUploader(ctx, bucket)
		if err != nil {
			log.WithError(err).Fatal("GCS init failed")
		}
		uploader = up
	} else {
		log.Warn("GCS_BUCKET not set; product image uploads disabled")
	}

	// Services
	userSvc := services.NewUserService(userRepo, codeRepo, jwtSecret, log)
	productSvc := services.NewProductService(productRepo, rc)
	storeSvc := services.NewStoreService(storeRepo, rc)
	orderSvc := services.NewOrderService(orderRepo, productRepo, log)
	chatSvc := services.NewChatService(messageRepo, orderRepo, productSvc, storeSvc, provider, log)
	adminSvc := services.NewAdminService(userRepo, codeRepo, orderRepo, productRepo,
		os.Getenv("ADMIN_USERNAME"), os.Getenv("ADMIN_PASSWORD"), jwtSecret, log)
	fbSvc := services.NewFacebookService(credRepo)

	// Webhook worker pool
	pool := &workers.WebhookWorkerPool{
		Redis:       config.RedisClient,
		Credentials: credRepo,
		Chat:        chatSvc,
		Sender:      messenger.NewFacebookSender(),
		Logger:      log,
	}
	if err := pool.Start(ctx); err != nil {
		log.WithError(err).Fatal("webhook worker start failed")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		Auth:     handlers.NewAuthHandler(userSvc),
		Chat:     handlers.NewChatHandler(chatSvc),
		Product:  handlers.NewProductHandler(productSvc, uploader),
		Order:    handlers.NewOrderHandler(orderSvc),
		Store:    handlers.NewStoreHandler(storeSvc),
		Admin:    handlers.NewAdminHandler(adminSvc),
		Facebook: handlers.NewFacebookHandler(fbSvc),
		Webhook:  handlers.NewWebhookHandler(config.RedisClient, workers.WebhookStream, os.Getenv("FACEBOOK_VERIFY_TOKEN"), log),
		WS:       handlers.NewWSHandler(chatSvc, userSvc),
		Users:    userSvc,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
