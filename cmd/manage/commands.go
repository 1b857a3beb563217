package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gin-gonic/gin/binding"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/importer"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

var (
	ingredientsFile string

	tagName  string
	tagColor string
	tagSlug  string

	userEmail     string
	userName      string
	userFirstName string
	userLastName  string
	userPassword  string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.RunMigrations(db, logger); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
		return nil
	},
}

var loadIngredientsCmd = &cobra.Command{
	Use:   "load-ingredients",
	Short: "Import the ingredient catalogue from CSV",
	Long: `Reads headerless name,measurement_unit rows and inserts them into the
ingredient catalogue. Pairs that already exist are left untouched, so the
command can be re-run safely.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		f, err := os.Open(ingredientsFile)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", ingredientsFile, err)
		}
		defer f.Close()

		read, created, err := loadIngredients(ctx, db, f)
		if err != nil {
			return err
		}
		logger.Info("ingredients loaded",
			zap.String("file", ingredientsFile),
			zap.Int("read", read),
			zap.Int64("created", created),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d of %d ingredients.\n", created, read)
		return nil
	},
}

var createTagCmd = &cobra.Command{
	Use:   "create-tag",
	Short: "Create a recipe tag",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		tag, err := createTag(ctx, db, tagName, tagColor, tagSlug)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created tag %d (%s).\n", tag.ID, tag.Slug)
		return nil
	},
}

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Register a user account",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		user, err := createUser(ctx, db, &types.RegisterRequest{
			Email:     userEmail,
			Username:  userName,
			FirstName: userFirstName,
			LastName:  userLastName,
			Password:  userPassword,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created user %d (%s).\n", user.ID, user.Username)
		return nil
	},
}

func loadIngredients(ctx context.Context, db *gorm.DB, r io.Reader) (int, int64, error) {
	ingredients, err := importer.ReadIngredients(r)
	if err != nil {
		return 0, 0, err
	}
	created, err := service.NewIngredientService(db).BulkCreate(ctx, ingredients)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to store ingredients: %w", err)
	}
	return len(ingredients), created, nil
}

func createTag(ctx context.Context, db *gorm.DB, name, color, slug string) (*models.Tag, error) {
	return service.NewTagService(db).CreateTag(ctx, &types.CreateTagRequest{
		Name:  name,
		Color: color,
		Slug:  slug,
	})
}

// createUser applies the same binding rules as POST /api/users before registering
func createUser(ctx context.Context, db *gorm.DB, req *types.RegisterRequest) (*models.User, error) {
	if err := validation.RegisterBindings(); err != nil {
		return nil, err
	}
	if err := binding.Validator.ValidateStruct(req); err != nil {
		return nil, validation.FromBinding(err)
	}
	return service.NewAuthService(db, "", 0, nil).Register(ctx, req)
}
