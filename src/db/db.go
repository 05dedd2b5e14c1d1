package db

import (
	"context"
	"fmt"

	"triggers-triumphs-api/src/config"

	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"
	"github.com/rs/zerolog/log"
)

// Init initializes and returns a postgres database connection object.
func Init(cfg config.Config) (*pg.DB, error) {
	dbAddr := fmt.Sprintf("%s:%s", cfg.DBHost, cfg.DBPort)

	if cfg.DBPassword == "" {
		return nil, fmt.Errorf("missing postgres password. Export \"TNT_DB_PASS=<your_password>\"")
	}

	conn := pg.Connect(&pg.Options{
		Addr:     dbAddr,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
	})

	// Print SQL queries to logger if loglevel is set to debug.
	conn.AddQueryHook(loggerHook{})

	err := conn.Ping(context.Background())
	if err != nil {
		return nil, err
	}

	return conn, nil
}

// CreateSchema creates the tables for the given models if they do not
// already exist.
func CreateSchema(conn *pg.DB, models ...interface{}) error {
	for _, model := range models {
		err := conn.Model(model).CreateTable(&orm.CreateTableOptions{
			IfNotExists: true,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

type loggerHook struct{}

func (h loggerHook) BeforeQuery(ctx context.Context, evt *pg.QueryEvent) (context.Context, error) {
	q, err := evt.FormattedQuery()
	if err != nil {
		return nil, err
	}

	if evt.Err != nil {
		log.Debug().Msgf("%s executing a query:\n%s\n", evt.Err, q)
	} else {
		log.Debug().Msg(string(q))
	}

	return ctx, nil
}

func (loggerHook) AfterQuery(context.Context, *pg.QueryEvent) error {
	return nil
}
