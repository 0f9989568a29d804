package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/stafflink/backoffice/modules/core/domain/aggregates/user"
	"github.com/stafflink/backoffice/pkg/configuration"
)

// menuSeed is the default sidebar. Paths are unique, so reseeding is a no-op.
var menuSeed = []struct {
	label string
	path  string
	icon  string
	order int
}{
	{"Dashboard", "/dashboard", "chart-bar", 10},
	{"Tasks", "/tasks", "clipboard-list", 20},
	{"Leads", "/leads", "funnel", 30},
	{"Follow-ups", "/follow-ups", "bell", 40},
	{"Call logs", "/call-logs", "phone", 50},
	{"Meetings", "/meetings", "calendar", 60},
	{"Departments", "/departments", "building-office", 70},
	{"Job roles", "/job-roles", "identification", 80},
	{"Users", "/users", "users", 90},
	{"Assets", "/assets", "computer-desktop", 100},
}

func newSeedCmd() *cobra.Command {
	var (
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed menu items and the superadmin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := seedMenuItems(cmd.Context(), pool); err != nil {
				return err
			}
			return seedSuperadmin(cmd.Context(), pool, email, password)
		},
	}
	cmd.Flags().StringVar(&email, "email", "admin@localhost", "superadmin email")
	cmd.Flags().StringVar(&password, "password", "", "superadmin password (required)")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func seedMenuItems(ctx context.Context, pool *pgxpool.Pool) error {
	for _, item := range menuSeed {
		_, err := pool.Exec(ctx, `
			INSERT INTO menu_items (label, path, icon, sort_order)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (path) DO NOTHING`,
			item.label, item.path, item.icon, item.order,
		)
		if err != nil {
			return fmt.Errorf("seed menu item %s: %w", item.path, err)
		}
	}
	fmt.Printf("seeded %d menu items\n", len(menuSeed))
	return nil
}

// seedSuperadmin inserts the tenant-less superadmin. The partial unique index
// on (tenant_id, email) does not cover NULL tenants, so existence is checked
// explicitly.
func seedSuperadmin(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE tenant_id IS NULL AND email = $1 AND role = 'superadmin'
		)`, email).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		fmt.Printf("superadmin %s already exists\n", email)
		return nil
	}

	hash, err := user.HashPassword(password, configuration.Use().Auth.BcryptCost)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO users (tenant_id, first_name, last_name, email, password, role)
		VALUES (NULL, 'Super', 'Admin', $1, $2, 'superadmin')`,
		email, hash,
	)
	if err != nil {
		return fmt.Errorf("seed superadmin: %w", err)
	}
	fmt.Printf("superadmin %s created\n", email)
	return nil
}
