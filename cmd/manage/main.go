// Command manage runs administrative tasks against the foodgram database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
)

var (
	timeout time.Duration

	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
)

var rootCmd = &cobra.Command{
	Use:           "manage",
	Short:         "Foodgram management commands",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logger, err = logging.New(cfg.Env, cfg.LogLevel)
		if err != nil {
			return err
		}
		db, err = database.New(cfg, logger)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	loadIngredientsCmd.Flags().StringVar(&ingredientsFile, "file", "data/ingredients.csv", "CSV file with name,measurement_unit rows")

	createTagCmd.Flags().StringVar(&tagName, "name", "", "Tag name (required)")
	createTagCmd.Flags().StringVar(&tagColor, "color", "", "Tag colour as #RRGGBB (required)")
	createTagCmd.Flags().StringVar(&tagSlug, "slug", "", "Tag slug (required)")
	_ = createTagCmd.MarkFlagRequired("name")
	_ = createTagCmd.MarkFlagRequired("color")
	_ = createTagCmd.MarkFlagRequired("slug")

	createUserCmd.Flags().StringVar(&userEmail, "email", "", "Email address (required)")
	createUserCmd.Flags().StringVar(&userName, "username", "", "Username (required)")
	createUserCmd.Flags().StringVar(&userFirstName, "first-name", "", "First name (required)")
	createUserCmd.Flags().StringVar(&userLastName, "last-name", "", "Last name (required)")
	createUserCmd.Flags().StringVar(&userPassword, "password", "", "Password (required)")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("username")
	_ = createUserCmd.MarkFlagRequired("first-name")
	_ = createUserCmd.MarkFlagRequired("last-name")
	_ = createUserCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(loadIngredientsCmd)
	rootCmd.AddCommand(createTagCmd)
	rootCmd.AddCommand(createUserCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// commandContext bounds a command by the --timeout flag
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}
