package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stafflink/backoffice/migrations"
	"github.com/stafflink/backoffice/pkg/application"
	"github.com/stafflink/backoffice/pkg/configuration"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	manager := func() application.MigrationManager {
		conf := configuration.Use()
		m := application.NewMigrationManager(conf.Database.Opts, conf.Logger())
		m.RegisterSchema(migrations.FS, ".")
		return m
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := manager().Up(cmd.Context()); err != nil {
					return err
				}
				fmt.Println("migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := manager().Down(cmd.Context()); err != nil {
					return err
				}
				fmt.Println("migration rolled back")
				return nil
			},
		},
	)
	return cmd
}
