package postgres

//nolint:revive
import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"otabridge/config"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	postgresMaxIdleConnection = 10
	postgresMaxOpenConnection = 10
	postgresConnMaxLifetime   = 30 * time.Minute
)

var ErrNotConnected = errors.New("database not connected")

type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

type endpoint struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	SSLMode  string
}

func New(config *config.Config) *Connection {
	pg := config.DB.Postgres

	return &Connection{
		Read: connect("read", endpoint{
			Host: pg.Read.Host, Port: pg.Read.Port, Username: pg.Read.Username, Password: pg.Read.Password,
			Name: pg.Prefix + pg.Read.Name, SSLMode: pg.Read.SSLMode,
		}, pg.MaxRetry, pg.RetryWaitTime),
		Write: connect("write", endpoint{
			Host: pg.Write.Host, Port: pg.Write.Port, Username: pg.Write.Username, Password: pg.Write.Password,
			Name: pg.Prefix + pg.Write.Name, SSLMode: pg.Write.SSLMode,
		}, pg.MaxRetry, pg.RetryWaitTime),
	}
}

// Ping checks both pools; used by the health endpoint.
func (c *Connection) Ping(ctx context.Context) error {
	for name, db := range map[string]*sqlx.DB{"read": c.Read, "write": c.Write} {
		if db == nil {
			return fmt.Errorf("%s: %w", name, ErrNotConnected)
		}

		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("failed to ping %s database: %w", name, err)
		}
	}

	return nil
}

func (c *Connection) Close() {
	for _, db := range []*sqlx.DB{c.Read, c.Write} {
		if db == nil {
			continue
		}

		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database connection")
		}
	}
}

// DSN renders the lib/pq connection URL for an endpoint.
func (e endpoint) DSN() string {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(e.Username, e.Password),
		Host:     net.JoinHostPort(e.Host, e.Port),
		Path:     e.Name,
		RawQuery: url.Values{"sslmode": []string{e.SSLMode}}.Encode(),
	}

	return dsn.String()
}

func connect(name string, target endpoint, maxRetry, waitSeconds int) *sqlx.DB {
	for retry := range max(maxRetry, 1) {
		sqlDB, err := sqlx.Connect("postgres", target.DSN())
		if err == nil {
			log.Info().
				Str("name", name).
				Str("host", target.Host).
				Str("dbName", target.Name).
				Msg("Connected to database")

			sqlDB.SetMaxIdleConns(postgresMaxIdleConnection)
			sqlDB.SetMaxOpenConns(postgresMaxOpenConnection)
			sqlDB.SetConnMaxLifetime(postgresConnMaxLifetime)

			return sqlDB
		}

		log.Error().
			Err(err).
			Str("name", name).
			Str("host", target.Host).
			Str("dbName", target.Name).
			Int("attempt", retry+1).
			Msg("Failed connecting to database, retrying")

		time.Sleep(time.Duration(waitSeconds) * time.Second)
	}

	return nil
}

// WriteDSN is the connection URL of the write pool, used by migrations.
func WriteDSN(config *config.Config) string {
	pg := config.DB.Postgres

	return endpoint{
		Host: pg.Write.Host, Port: pg.Write.Port, Username: pg.Write.Username, Password: pg.Write.Password,
		Name: pg.Prefix + pg.Write.Name, SSLMode: pg.Write.SSLMode,
	}.DSN()
}
