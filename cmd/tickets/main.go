package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Manav129/RAG-CHATBOT/internal/storage/tickets"
	"github.com/Manav129/RAG-CHATBOT/pkg/config"
)

// tickets is the operator CLI for the ticket database: inspect the
// queue without hitting the API, and prune finished tickets.
func main() {
	godotenv.Load()

	root := &cobra.Command{
		Use:          "tickets",
		Short:        "Inspect and maintain the support ticket database",
		SilenceUsage: true,
	}

	root.AddCommand(listCommand())
	root.AddCommand(pruneCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func listCommand() *cobra.Command {
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show ticket counts and the most recent tickets",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			ctx := context.Background()

			stats, err := store.CountStats(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Total tickets: %d\n", stats.Total)
			fmt.Printf("  open:        %d\n", stats.Open)
			fmt.Printf("  in_progress: %d\n", stats.InProgress)
			fmt.Printf("  resolved:    %d\n", stats.Resolved)
			fmt.Printf("  closed:      %d\n\n", stats.Closed)

			list, err := store.List(ctx, status, limit)
			if err != nil {
				return err
			}

			for _, ticket := range list {
				query := ticket.CustomerQuery
				if len(query) > 80 {
					query = query[:80] + "..."
				}
				fmt.Printf("%s  [%s/%s]  %s\n", ticket.TicketID, ticket.Status, ticket.Priority, query)
				fmt.Printf("  category: %s  created: %s\n", ticket.Category, ticket.CreatedAt.Format("2006-01-02 15:04"))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (open, in_progress, resolved, closed)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum tickets to show")

	return cmd
}

func pruneCommand() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete every ticket in the given status",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}

			removed, err := store.DeleteWhereStatus(context.Background(), status)
			if err != nil {
				return err
			}

			fmt.Printf("Deleted %d %s tickets\n", removed, status)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "closed", "status of tickets to delete")

	return cmd
}

func openStore() (*tickets.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}

	var db *gorm.DB
	switch cfg.Database.Driver {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.Database.DSN()), gormCfg)
	case "mysql":
		db, err = gorm.Open(mysql.Open(cfg.Database.DSN()), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ticket database: %w", err)
	}

	return tickets.NewStore(db)
}
