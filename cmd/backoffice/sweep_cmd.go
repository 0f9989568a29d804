package main

import (
	"fmt"

	"github.com/spf13/cobra"

	taskpersistence "github.com/stafflink/backoffice/modules/tasks/infrastructure/persistence"
	taskservices "github.com/stafflink/backoffice/modules/tasks/services"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/configuration"
	"github.com/stafflink/backoffice/pkg/eventbus"
)

// newSweepCmd runs a single overdue-task sweep. The server runs the same
// sweep on a ticker; this command exists for cron-style setups.
func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Notify assignees of overdue tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.Use()
			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			logger := conf.Logger()
			sweeper := taskservices.NewOverdueService(
				taskpersistence.NewTaskRepository(),
				taskpersistence.NewNotificationRepository(),
				eventbus.NewEventPublisher(logger),
				logger,
			)
			if err := sweeper.Run(composables.WithPool(cmd.Context(), pool)); err != nil {
				return err
			}
			fmt.Println("overdue sweep completed")
			return nil
		},
	}
}
