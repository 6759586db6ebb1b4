package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"otabridge/config"
	"otabridge/infras/postgres"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

const migrationSource = "file://migrations/postgres"

var ErrUnknownAction = errors.New("unknown migration action")

func getConnection(config *config.Config) (*migrate.Migrate, error) {
	dsn := postgres.WriteDSN(config)

	if table := config.DB.Postgres.MigrationTable; table != "" {
		separator := "?"
		if strings.Contains(dsn, "?") {
			separator = "&"
		}

		dsn += separator + "x-migrations-table=" + table
	}

	mig, err := migrate.New(migrationSource, dsn)
	if err != nil {
		return nil, fmt.Errorf("error creating migrate instance: %w", err)
	}

	return mig, nil
}

// Runner applies one migration action: up, down (one step), step-up or drop (all down).
func Runner(config *config.Config, action string) error {
	steps := map[string]func(m *migrate.Migrate) error{
		"up":      func(m *migrate.Migrate) error { return m.Up() },
		"down":    func(m *migrate.Migrate) error { return m.Steps(-1) },
		"step-up": func(m *migrate.Migrate) error { return m.Steps(1) },
		"drop":    func(m *migrate.Migrate) error { return m.Down() },
	}

	step, ok := steps[action]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}

	mig, err := getConnection(config)
	if err != nil {
		return err
	}
	defer mig.Close()

	if err = step(mig); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error running migration %s: %w", action, err)
	}

	log.Info().Str("action", action).Msg("Database migration finished")

	return nil
}

func Up(config *config.Config) error {
	return Runner(config, "up")
}
