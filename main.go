package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"productapi/internal/config"
	"productapi/internal/database"
	"productapi/internal/handlers"
	"productapi/internal/repositories"
	"productapi/internal/services"
	"productapi/pkg/rabbitmq"
)

func main() {
	if err := newRootCommand(viper.New()).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCommand builds the productapi command. Flags are bound into v so they
// take precedence over environment variables and defaults.
func newRootCommand(v *viper.Viper) *cobra.Command {
	config.SetDefaults(v)

	cmd := &cobra.Command{
		Use:          "productapi",
		Short:        "Serve the Product REST API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("port", "", "address to listen on, e.g. :8080 ("+config.KeyAppPort+")")
	flags.String("db-driver", "", "postgres, sqlite or memory ("+config.KeyDatabaseDriver+")")
	flags.String("db-dsn", "", "database connection string ("+config.KeyDatabaseDSN+")")
	flags.String("rabbitmq-url", "", "AMQP URL for product events, empty to disable ("+config.KeyRabbitMQURL+")")

	for key, flag := range map[string]string{
		config.KeyAppPort:        "port",
		config.KeyDatabaseDriver: "db-driver",
		config.KeyDatabaseDSN:    "db-dsn",
		config.KeyRabbitMQURL:    "rabbitmq-url",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", flag, err))
		}
	}
	return cmd
}

// NewApp builds the Fiber application around the given product store.
// publisher may be nil to disable product events.
func NewApp(repo repositories.ProductRepository, publisher services.EventPublisher) *fiber.App {
	productService := services.NewProductService(repo, publisher)

	app := fiber.New(fiber.Config{
		AppName:      handlers.ServiceName,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	handlers.NewIndexHandler(publisher != nil).RegisterRoutes(app)
	handlers.NewProductHandler(productService).RegisterRoutes(app)
	return app
}

func serve(cfg config.Config) error {
	repo, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var publisher services.EventPublisher
	if cfg.EventsEnabled() {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue})
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		defer mqClient.Close()
		publisher = mqClient
	} else {
		log.Println("RABBITMQ_URL is empty, product events are disabled")
	}

	app := NewApp(repo, publisher)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server on port %s", cfg.AppPort)
		listenErr <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
	return nil
}

// openStore returns the product store selected by cfg and a func that releases it.
func openStore(cfg config.Config) (repositories.ProductRepository, func(), error) {
	if cfg.DatabaseDriver == config.DriverMemory {
		log.Println("Using in-memory product store")
		return repositories.NewMemoryProductRepository(), func() {}, nil
	}

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := database.Close(db); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
	return repositories.NewGORMProductRepository(db), closeDB, nil
}
