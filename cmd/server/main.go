package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/forum/internal/config"
	"github.com/Skotchmaster/forum/internal/es"
	"github.com/Skotchmaster/forum/internal/handlers"
	"github.com/Skotchmaster/forum/internal/logging"
	mwauth "github.com/Skotchmaster/forum/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/forum/internal/middleware/logging"
	"github.com/Skotchmaster/forum/internal/mykafka"
	"github.com/Skotchmaster/forum/internal/repo"
	"github.com/Skotchmaster/forum/internal/seed"
	"github.com/Skotchmaster/forum/internal/service"
	"github.com/Skotchmaster/forum/internal/token"
	httpserver "github.com/Skotchmaster/forum/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("Ошибка инициализации БД: %v", err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	codec := token.NewCodec([]byte(configuration.JWT_SECRET))
	userRepo := &repo.UserRepo{DB: db}
	postRepo := &repo.PostRepo{DB: db}

	if err := seed.BootstrapAdmin(context.Background(), userRepo, configuration.ADMIN_PASSWORD); err != nil {
		log.Fatalf("admin bootstrap error: %v", err)
	}

	var prod *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		prod = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	}

	postHandler := &handlers.PostHandler{Posts: postRepo, Producer: prod}
	searchHandler := &handlers.SearchHandler{}
	if configuration.ES_URL != "" {
		client, err := es.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
		postHandler.ES = client
		postHandler.Index = "posts"
		searchHandler.ES = client
		searchHandler.Index = "posts"
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:            db,
		Auth:          &mwauth.Middleware{Codec: codec},
		AuthHandler:   &handlers.AuthHandler{Auth: &service.AuthService{Users: userRepo, Codec: codec}, Producer: prod},
		PostHandler:   postHandler,
		UserHandler:   &handlers.UserHandler{Users: userRepo, Posts: postRepo},
		SearchHandler: searchHandler,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
