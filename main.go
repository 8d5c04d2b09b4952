package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"rebooks-backend/internal/api"
	"rebooks-backend/internal/chat"
	"rebooks-backend/internal/config"
	"rebooks-backend/internal/db"
	"rebooks-backend/internal/images"
	"rebooks-backend/internal/mailer"
	"rebooks-backend/internal/notify"
	"rebooks-backend/internal/payment"
	"rebooks-backend/internal/repository"
	"rebooks-backend/internal/services"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()
	client, database, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	if err := db.EnsureIndexes(ctx, database); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	// repositories
	userRepo := repository.NewMongoUserRepo(database)
	bookRepo := repository.NewMongoBookRepo(database)
	cartRepo := repository.NewMongoCartRepo(database)
	orderRepo := repository.NewMongoOrderRepo(database)
	savedRepo := repository.NewMongoSavedBooksRepo(database)
	chatRepo := repository.NewMongoChatRepo(database)
	messageRepo := repository.NewMongoMessageRepo(database)
	txRunner := repository.NewMongoTxRunner(client)

	// external collaborators
	gateway := payment.NewStripeGateway(cfg.StripeSecretKey)
	imageStore, err := images.NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		log.Fatalf("Failed to initialize image store: %v", err)
	}
	mail := mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	notifier := notify.NewEmailNotifier(mail)

	// services
	userService := services.NewUserService(userRepo, mail, []byte(cfg.JWTSecret), cfg.FrontendURL)
	bookService := services.NewBookService(bookRepo, imageStore, cfg.DefaultCoverImageURL)
	cartService := services.NewCartService(cartRepo, bookRepo, gateway)
	orderService := services.NewOrderService(orderRepo, cartRepo, bookRepo, userRepo, txRunner, notifier)
	savedService := services.NewSavedBooksService(savedRepo, bookRepo)
	chatService := services.NewChatService(chatRepo, messageRepo, userRepo)
	hub := chat.NewHub(chatService)

	r := gin.Default()
	app := api.New(userService, bookService, cartService, orderService, savedService, chatService, hub)
	app.SetupRoutes(r, cfg.CORSOrigin)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
