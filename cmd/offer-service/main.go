// cmd/offer-service/main.go
package main

import (
	"flag"
	"os"

	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"gpoffer/internal/pkg/bootstrap"
	"gpoffer/internal/pkg/logger"
	"gpoffer/internal/pkg/mq"
	"gpoffer/internal/pkg/redis"
	offerapp "gpoffer/internal/service/offer/application"
	offerinfra "gpoffer/internal/service/offer/infrastructure"
	"gpoffer/internal/service/offer/infrastructure/adapter"
	offerhttp "gpoffer/internal/service/offer/interfaces"
	pointsapp "gpoffer/internal/service/points/application"
	pointsinfra "gpoffer/internal/service/points/infrastructure"
	pointshttp "gpoffer/internal/service/points/interfaces"
)

const serviceName = "offer-service"

func main() {
	configPath := flag.String("config", "", "path to yaml config file")
	flag.Parse()

	cfg, err := bootstrap.LoadConfig(*configPath)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to load config")
	}

	// 1. 基础设施：MySQL / Redis / Kafka
	db, err := gorm.Open(mysql.Open(cfg.MySQLDSN()), &gorm.Config{})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to connect to mysql")
	}

	offerRepo := offerinfra.NewGormOfferRepository(db)
	if err := offerRepo.AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to migrate offer tables")
	}
	accountRepo := pointsinfra.NewGormAccountRepository(db)
	if err := accountRepo.AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to migrate points tables")
	}

	redisClient := redis.NewClient(cfg.Infra.Redis.Addr)
	kafkaWriter := mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.Topic)
	defer kafkaWriter.Close()

	// 2. 组装服务
	tracer := otel.Tracer(serviceName)
	pointsService := pointsapp.NewPointsService(accountRepo, tracer)

	offerService := offerapp.NewOfferApplicationService(
		offerRepo,
		offerinfra.NewGormParticipantRepository(db),
		offerinfra.NewGormSettingsRepository(db),
		adapter.NewPointsLocalAdapter(pointsService),
		adapter.NewKYCHTTPAdapter(kycBaseURL(), tracer),
		adapter.NewRedisOfferLocker(redisClient),
		adapter.SystemClock{},
		adapter.NewEventKafkaAdapter(kafkaWriter),
		tracer,
	)

	// 3. 注册路由并启动
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        cfg.App.Port,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			offerhttp.NewOfferHandler(offerService).RegisterRoutes(appCtx.Mux)
			pointshttp.NewWalletHandler(pointsService).RegisterRoutes(appCtx.Mux)
		},
	})
}

func kycBaseURL() string {
	// KYC 验证是外部协作方，本服务只查询结论
	if v := os.Getenv("KYC_SERVICE_URL"); v != "" {
		return v
	}
	return "http://localhost:8090"
}
