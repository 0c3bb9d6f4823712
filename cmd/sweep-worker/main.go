// cmd/sweep-worker/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"gpoffer/internal/pkg/bootstrap"
	"gpoffer/internal/pkg/logger"
	"gpoffer/internal/pkg/mq"
	"gpoffer/internal/pkg/redis"
	"gpoffer/internal/pkg/tracing"
	"gpoffer/internal/pkg/zookeeper"
	offerapp "gpoffer/internal/service/offer/application"
	offerinfra "gpoffer/internal/service/offer/infrastructure"
	"gpoffer/internal/service/offer/infrastructure/adapter"
	pointsapp "gpoffer/internal/service/points/application"
	pointsinfra "gpoffer/internal/service/points/infrastructure"
)

const serviceName = "sweep-worker"

// sweep worker 周期性地把截止时间已过的 Active 报价结算为成团/流团。
// 可以多实例冗余部署：状态迁移靠数据库上的 compare-and-set 去重，
// 同一报价至多一次迁移被提交，输掉竞争的实例只记一条日志。
func main() {
	configPath := flag.String("config", "", "path to yaml config file")
	flag.Parse()

	cfg, err := bootstrap.LoadConfig(*configPath)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to load config")
	}

	tp, err := tracing.InitTracerProvider(serviceName, cfg.Infra.Jaeger.Endpoint)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}
	defer tp.Shutdown(context.Background())

	db, err := gorm.Open(mysql.Open(cfg.MySQLDSN()), &gorm.Config{})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to connect to mysql")
	}
	redisClient := redis.NewClient(cfg.Infra.Redis.Addr)
	kafkaWriter := mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.Topic)
	defer kafkaWriter.Close()

	tracer := otel.Tracer(serviceName)
	pointsService := pointsapp.NewPointsService(pointsinfra.NewGormAccountRepository(db), tracer)
	offerService := offerapp.NewOfferApplicationService(
		offerinfra.NewGormOfferRepository(db),
		offerinfra.NewGormParticipantRepository(db),
		offerinfra.NewGormSettingsRepository(db),
		adapter.NewPointsLocalAdapter(pointsService),
		adapter.NewStaticKYCProvider(), // sweep 不会触发发布检查，占位即可
		adapter.NewRedisOfferLocker(redisClient),
		adapter.SystemClock{},
		adapter.NewEventKafkaAdapter(kafkaWriter),
		tracer,
	)

	// 配置了 ZooKeeper 时用选主锁避免多实例同时扫描，
	// 没配置时退化为本地执行，靠 CAS 保证迁移不重复
	var sweepLock sweepLocker
	if servers := cfg.Infra.Zookeeper.Servers; len(servers) > 0 {
		zkConn, err := zookeeper.Connect(servers, 10*time.Second)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("failed to connect to zookeeper")
		}
		defer zkConn.Close()
		sweepLock = zkConn.NewLock("expiry-sweep")
	}

	ctx, cancel := context.WithCancel(context.Background())
	go runSweepLoop(ctx, offerService, cfg.App.SweepInterval, sweepLock)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Logger.Info().Msg("sweep worker shutting down")
	cancel()
}

// sweepLocker 是 zk.Lock 的最小接口。
type sweepLocker interface {
	Lock() error
	Unlock() error
}

// runSweepLoop 按固定间隔触发一轮到期扫描。
func runSweepLoop(ctx context.Context, service *offerapp.OfferApplicationService, interval time.Duration, lock sweepLocker) {
	logger.Logger.Info().Dur("interval", interval).Msg("expiry sweep loop started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			result, err := runSweepOnce(ctx, service, lock)
			if err != nil {
				logger.Logger.Error().Err(err).Msg("expiry sweep failed")
				continue
			}
			if result.Scanned > 0 {
				logger.Logger.Info().
					Int("scanned", result.Scanned).
					Int("fulfilled", result.Fulfilled).
					Int("expired", result.Expired).
					Int("conflicts", result.Conflicts).
					Msg("expiry sweep completed")
			}
		case <-ctx.Done():
			return
		}
	}
}

// runSweepOnce 执行一轮扫描。配置了选主锁时各实例的扫描串行执行，
// 后执行的实例只会看到已被结算过的报价。
func runSweepOnce(ctx context.Context, service *offerapp.OfferApplicationService, lock sweepLocker) (*offerapp.SweepResult, error) {
	if lock != nil {
		if err := lock.Lock(); err != nil {
			return nil, err
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				logger.Logger.Error().Err(err).Msg("failed to release sweep lock")
			}
		}()
	}
	return service.RunExpirySweep(ctx)
}
