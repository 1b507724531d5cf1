package app

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/halls510/developerstore-sales-api-sub001/configs"
	"github.com/halls510/developerstore-sales-api-sub001/internal/adapter/cache"
	httpadapter "github.com/halls510/developerstore-sales-api-sub001/internal/adapter/http"
	"github.com/halls510/developerstore-sales-api-sub001/internal/adapter/http/middleware"
	"github.com/halls510/developerstore-sales-api-sub001/internal/adapter/kafka"
	"github.com/halls510/developerstore-sales-api-sub001/internal/adapter/queue"
	"github.com/halls510/developerstore-sales-api-sub001/internal/adapter/repo"
	"github.com/halls510/developerstore-sales-api-sub001/internal/domain"
	"github.com/halls510/developerstore-sales-api-sub001/internal/logging"
	"github.com/halls510/developerstore-sales-api-sub001/internal/usecase"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	logger := logging.Init(cfg.App.Name, "./logs/app.log")
	logger.Info("sales-api: starting up")

	// database
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	err = db.PingContext(pingCtx)
	cancelPing()
	if err != nil {
		return nil, nil, err
	}

	// redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, nil, err
	}

	// rabbitmq
	conn, err := amqp091.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}

	// fulfillment gateway
	grpcConn, closeGRPC, err := InitFulfillmentConn(cfg)
	if err != nil {
		return nil, nil, err
	}
	probe := FulfillmentProbe(grpcConn, cfg.Fulfillment.Timeout)

	// stores
	cartRepo := repo.NewMySQLCartRepo(db)
	saleRepo := repo.NewMySQLSaleRepo(db)
	productRepo := repo.NewMySQLProductRepo(db)
	outboxRepo := repo.NewMySQLOutboxRepo(db)
	checkoutStore := repo.NewMySQLCheckoutStore(db)
	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
	saleCache := cache.NewRedisSaleCache(rdb, cfg.Cache.TTL)
	bus := repo.NewOutboxEventBus(outboxRepo)

	// outbox relay drains event intents to the broker
	publisher, err := queue.NewSaleEventPublisher(ch)
	if err != nil {
		return nil, nil, err
	}
	relayCtx, stopRelay := context.WithCancel(context.Background())
	relay := queue.NewOutboxRelay(outboxRepo, publisher, cfg.Outbox.Interval, cfg.Outbox.BatchSize, logging.New("outbox"))
	go func() { _ = relay.Start(relayCtx) }()

	// consumers
	if err := setupPaymentQueue(ch, saleRepo, bus); err != nil {
		stopRelay()
		return nil, nil, err
	}
	if err := setupShipmentListener(cfg, saleRepo, bus, saleCache); err != nil {
		stopRelay()
		return nil, nil, err
	}

	// use cases
	rules := discountRules(cfg)
	cartSvc := usecase.NewCartService(cartRepo, productRepo, rules)
	checkoutUC := usecase.NewCheckout(cartRepo, saleRepo, checkoutStore, idem, rules, cfg.App.Branch)
	createUC := usecase.NewCreateSale(saleRepo, productRepo, bus, rules)
	updateUC := usecase.NewUpdateSale(saleRepo, productRepo, bus, rules)
	cancelSaleUC := usecase.NewCancelSale(saleRepo, bus, saleCache)
	cancelItemUC := usecase.NewCancelItem(saleRepo, bus, saleCache)

	// handlers + router
	cartHandler := httpadapter.NewCartHandler(cartSvc, checkoutUC)
	saleHandler := httpadapter.NewSaleHandler(createUC, updateUC, cancelSaleUC, cancelItemUC, saleRepo, saleCache)
	productHandler := httpadapter.NewProductHandler(productRepo)
	tokenHandler := httpadapter.NewTokenHandler(cfg)
	authz := middleware.NewAuthz(cfg)
	router := httpadapter.NewRouter(cartHandler, saleHandler, productHandler, tokenHandler, authz, probe)

	cleanup := func() {
		stopRelay()
		_ = ch.Close()
		_ = conn.Close()
		_ = db.Close()
		_ = rdb.Close()
		closeGRPC()
	}

	return &App{Router: router}, cleanup, nil
}

func setupPaymentQueue(ch *amqp091.Channel, sales usecase.SaleStore, bus usecase.EventBus) error {
	if err := queue.EnsurePaymentQueue(ch); err != nil {
		return err
	}
	h := queue.NewPaymentConfirmedHandler(sales, bus)

	router := queue.NewRouter(ch, logging.New("rmq"), queue.WithPrefetch(50))
	router.Register("sale.payment.q", queue.JSONHandler[usecase.PaymentConfirmedMsg]{HandleFunc: h.HandlePayment})
	return router.Start()
}

func setupShipmentListener(cfg configs.Config, sales usecase.SaleStore, bus usecase.EventBus, saleCache usecase.SaleCache) error {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		return err
	}

	h := kafka.NewShipmentStatusHandler(sales, bus, saleCache)
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.TopicShipments}, h.Handle, logging.New("kafka"))

	go func() {
		if err := consumer.Start(context.Background()); err != nil {
			logging.Base().Error("shipment consumer stopped", "err", err)
		}
	}()
	return nil
}

// discountRules maps the config policy onto the domain value object,
// falling back to the default tiers when unset.
func discountRules(cfg configs.Config) domain.DiscountRules {
	if cfg.Discount.MaxPerProduct <= 0 || len(cfg.Discount.Tiers) == 0 {
		return domain.DefaultDiscountRules()
	}
	rules := domain.DiscountRules{MaxPerProduct: cfg.Discount.MaxPerProduct}
	for _, t := range cfg.Discount.Tiers {
		rules.Tiers = append(rules.Tiers, domain.DiscountTier{
			MinQuantity: t.MinQuantity,
			Percent:     decimal.NewFromFloat(t.Percent),
		})
	}
	// highest threshold wins
	sort.Slice(rules.Tiers, func(i, j int) bool {
		return rules.Tiers[i].MinQuantity > rules.Tiers[j].MinQuantity
	})
	return rules
}
