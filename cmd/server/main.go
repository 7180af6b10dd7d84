package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/cmd/middleware"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/api"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/api/handlers"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/configuration"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/office"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/pipeline"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/services"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}
	cfg := configuration.Load()

	tracer.Start(tracer.WithService("docgen-service"))
	defer tracer.Stop()

	if err := middleware.InitAuth(cfg.KeycloakUrl); err != nil {
		log.Fatalf("Failed to initialize OIDC auth: %v", err)
	}

	store, err := storage.ConnectPostgres(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	storage.Initialize(store)

	if err := services.InitializeMinio(
		cfg.MinIO.Endpoint,
		cfg.MinIO.AccessKey,
		cfg.MinIO.SecretKey,
		cfg.MinIO.BucketName,
		cfg.MinIO.PublicBaseURL,
		cfg.MinIO.UseSSL,
	); err != nil {
		log.Fatalf("Failed to initialize MinIO: %v", err)
	}

	if _, _, err := services.ConnectNATS(cfg.NATSURL); err != nil {
		log.Printf("Warning: NATS unavailable, events disabled: %v", err)
	} else {
		if _, err := services.SubscribeEvent("documents.shared", "docgen-inbox-consumer", handlers.HandleDocumentShared); err != nil {
			log.Printf("Warning: failed to subscribe to documents.shared: %v", err)
		}
	}

	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		log.Fatalf("Failed to create temp dir %s: %v", cfg.TempDir, err)
	}

	officeClient := office.NewClient(cfg.Office.BaseURL, time.Duration(cfg.Office.TimeoutSeconds)*time.Second)
	generator := &pipeline.Generator{
		Objects: services.GetMinioService(),
		Store:   storage.Get(),
		Scanner: &services.ClamScanner{URL: cfg.CLAMAVURL},
		TempDir: cfg.TempDir,
	}
	handlers.Configure(generator, officeClient, cfg.TempDir)

	setupGracefulShutdown()

	r := gin.Default()
	r.Use(gintrace.Middleware("docgen-service"))

	api.RegisterRoutes(r)

	log.Printf("Server starting on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Shutting down gracefully...")
		os.Exit(0)
	}()
}
