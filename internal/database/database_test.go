package database

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

func TestRunMigrationsSQLite(t *testing.T) {
	db, err := Open(sqlite.Open(SQLiteDSN(t.TempDir() + "/test.db")))
	require.NoError(t, err)

	require.NoError(t, RunMigrations(db, zap.NewNop()))

	for _, table := range []string{"users", "follows", "tags", "ingredients", "recipes", "recipe_tags", "recipe_ingredients", "favourite_recipes", "shopping_carts"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestUniqueViolationIsTranslated(t *testing.T) {
	db, err := Open(sqlite.Open(SQLiteDSN(t.TempDir() + "/test.db")))
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db, zap.NewNop()))

	require.NoError(t, db.Create(&models.Ingredient{Name: "flour", MeasurementUnit: "g"}).Error)
	err = db.Create(&models.Ingredient{Name: "flour", MeasurementUnit: "g"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestRunMigrationsPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-based test in short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "testuser",
				"POSTGRES_PASSWORD": "testpass",
				"POSTGRES_DB":       "testdb",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := "host=" + host + " port=" + port.Port() + " user=testuser password=testpass dbname=testdb sslmode=disable"
	db, err := Open(postgres.Open(dsn))
	require.NoError(t, err)

	log := zap.NewNop()
	require.NoError(t, RunMigrations(db, log))
	// second run is a no-op
	require.NoError(t, RunMigrations(db, log))

	var applied int64
	require.NoError(t, db.Table("migrations").Count(&applied).Error)
	assert.EqualValues(t, 1, applied)

	err = db.Create(&models.Tag{Name: "Lunch", Color: "#ZZZZZZ", Slug: "lunch"}).Error
	assert.Error(t, err, "colour check constraint")
}
