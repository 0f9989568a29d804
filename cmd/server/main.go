package main

import (
	"context"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stafflink/backoffice/internal/server"
	"github.com/stafflink/backoffice/modules"
	taskservices "github.com/stafflink/backoffice/modules/tasks/services"
	"github.com/stafflink/backoffice/pkg/application"
	"github.com/stafflink/backoffice/pkg/authz"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/configuration"
	"github.com/stafflink/backoffice/pkg/eventbus"
)

const overdueSweepInterval = time.Hour

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
		DBOpts:   conf.Database.Opts,
	})
	if err := modules.Load(app); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}
	if err := app.Migrations().Up(context.Background()); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}

	authzService, err := authz.NewService(authz.Config{
		Mode:   authz.Mode(conf.Authz.Mode),
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("failed to init authorization: %v", err)
	}
	authz.SetDefault(authzService)

	sweepCtx := composables.WithPool(context.Background(), pool)
	app.Service(taskservices.OverdueService{}).(*taskservices.OverdueService).Start(sweepCtx, overdueSweepInterval)

	serverInstance, err := server.Default(&server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
		Pool:          pool,
	})
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}
	log.Printf("Listening on: %s\n", conf.SocketAddress)
	if err := serverInstance.Start(conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
