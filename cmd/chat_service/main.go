package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat_message_service/internal/chat/app"
	"chat_message_service/internal/chat/repository"
	"chat_message_service/internal/chat/router"
	"chat_message_service/pkg/config"
	"chat_message_service/pkg/database"
	"chat_message_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath)
	cfg := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)
	cfg.ApplyDefaults()

	// 1. 連線 PostgreSQL (存訊息)
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		cfg.PostgreSQL.Host, cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Database, cfg.PostgreSQL.Port)
	db, err := database.NewPGConnection(database.Connection{
		ConnectStr: dsn,

		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to postgreSQL database after retries",
			zap.String("address", fmt.Sprintf("[%s]", dsn)),
			zap.Error(err),
		)
	}

	msgRepo := repository.NewMessageRepository(db)
	if err := msgRepo.AutoMigrate(); err != nil {
		logger.Log.Fatal("資料表遷移失敗", zap.Error(err))
	}

	// 2. 連線 RabbitMQ (訊息 fanout 的 broker)
	rabbitURL := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.IP, cfg.RabbitMQ.Port)
	conn, err := database.ConnectRabbitMQWithRetry(database.Connection{
		ConnectStr:    rabbitURL,
		RetryCount:    cfg.RabbitMQ.RetryCount,
		RetryInterval: time.Duration(cfg.RabbitMQ.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("RabbitMQ 連線失敗", zap.Error(err))
	}
	defer conn.Close()

	rabbitChannel, err := database.GetRabbitMQChannelWithRetry(conn, cfg.RabbitMQ.RetryCount, time.Duration(cfg.RabbitMQ.RetryInterval))
	if err != nil {
		logger.Log.Fatal("取得 RabbitMQ Channel 失敗", zap.Error(err))
	}
	defer rabbitChannel.Close()

	// 宣告 exchange / queue 並綁定 routing key
	if err := database.DeclareChatTopology(rabbitChannel, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.Queue, cfg.RabbitMQ.RoutingKey); err != nil {
		logger.Log.Fatal("宣告 RabbitMQ topology 失敗", zap.Error(err))
	}

	// 3. 初始化 Repository 與 UseCase
	broker := repository.NewBrokerRepository(rabbitChannel)
	hub := app.NewHub(cfg.Message.BroadcastTimeout)
	messageUC := app.NewMessageUseCase(msgRepo, broker, cfg)

	// 4. 啟動 Dispatcher（獨立長駐 goroutine，消費 queue 後 fanout）
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dispatcher := app.NewDispatcher(broker, hub, cfg.RabbitMQ.Queue)
	go func() {
		if err := dispatcher.Start(ctx); err != nil {
			logger.Log.Errorf("dispatcher 結束:", err)
		}
	}()

	// 5. 啟動 Fiber
	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ChatServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r, app.NewMessageHandler(messageUC), app.NewChatWebsocketHandler(messageUC, hub))

	// 收到訊號時優雅關閉：先停 dispatcher，再關 Fiber
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Log.Info("shutting down...")
		cancel()
		if err := r.Shutdown(); err != nil {
			logger.Log.Errorf("fiber shutdown error:", err)
		}
	}()

	port := ":" + cfg.Port
	logger.Log.Info("Chat Service listening on " + port)
	if err := r.Listen(port); err != nil {
		logger.Log.Fatal("Failed to start Fiber", zap.Error(err))
	}

	logger.Log.Sync()
}
