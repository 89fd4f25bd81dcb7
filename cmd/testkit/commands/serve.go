package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	rootconfig "github.com/workshopstudio/taskapi/config"
	"github.com/workshopstudio/taskapi/internal/config"
	"github.com/workshopstudio/taskapi/internal/constants"
	"github.com/workshopstudio/taskapi/internal/db"
	"github.com/workshopstudio/taskapi/internal/db/repos"
	"github.com/workshopstudio/taskapi/internal/gateway"
	applog "github.com/workshopstudio/taskapi/internal/logger"
	"github.com/workshopstudio/taskapi/internal/tasks"
)

// Store kinds accepted by serve
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreDynamoDB = "dynamodb"
)

const (
	flagStore      = "store"
	flagSQLitePath = "sqlite-path"
	flagAddr       = "addr"
	flagStage      = "stage"
)

func newServeCmd(_ *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task API locally behind an API Gateway emulator",
		Long: `Serve the task API handler over HTTP. Requests are converted into API
Gateway proxy events the same way the deployed REST API does it.

Stores:
  memory    throwaway sqlite database (default)
  sqlite    sqlite database file at --sqlite-path
  postgres  postgres database configured through DB_* variables
  dynamodb  the DynamoDB table in TABLE_NAME; change events go to
            NOTIFY_FUNCTION and deleted tasks are archived to BUCKET_NAME`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, _ := cmd.Flags().GetString(flagStore)
			sqlitePath, _ := cmd.Flags().GetString(flagSQLitePath)
			addr, _ := cmd.Flags().GetString(flagAddr)
			stage, _ := cmd.Flags().GetString(flagStage)

			store, handlerOpts, closeStore, err := openStore(kind, sqlitePath)
			if err != nil {
				return err
			}
			defer closeStore()

			log := applog.Get()
			handler := tasks.NewHandler(store, append(handlerOpts, tasks.WithLogger(log))...)
			app := gateway.New(handler.Handle, gateway.Config{Stage: stage, Log: log})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				if err := app.Shutdown(); err != nil {
					log.WithError(err).Warn("Failed to shut down server")
				}
			}()

			log.WithFields(map[string]interface{}{"addr": addr, "store": kind, "stage": stage}).Info("Serving task API")
			return app.Listen(addr)
		},
	}

	cmd.Flags().String(flagStore, StoreMemory, "Task store: memory, sqlite, postgres or dynamodb")
	cmd.Flags().String(flagSQLitePath, "tasks.db", "Database file for the sqlite store")
	cmd.Flags().String(flagAddr, ":8080", "Address to listen on")
	cmd.Flags().String(flagStage, gateway.DefaultStage, "Stage reported in proxy request contexts")
	return cmd
}

// openStore opens the named store. The returned func releases it.
func openStore(kind, sqlitePath string) (tasks.Store, []tasks.HandlerOption, func(), error) {
	noop := func() {}

	switch kind {
	case StoreMemory, StoreSQLite, StorePostgres:
		database, err := openDatabase(kind, sqlitePath)
		if err != nil {
			return nil, nil, noop, err
		}
		closeDB := func() {
			if err := db.Close(database); err != nil {
				applog.Get().WithError(err).Warn("Failed to close database")
			}
		}
		return repos.NewTaskRepository(database), nil, closeDB, nil

	case StoreDynamoDB:
		consts := config.FromEnv()
		clients, err := newClients(consts.Region)
		if err != nil {
			return nil, nil, noop, fmt.Errorf("failed to create AWS clients: %w", err)
		}
		notifier := &tasks.Notifier{
			Lambda:       clients.Lambda,
			S3:           clients.S3,
			FunctionName: rootconfig.GetEnv(constants.EnvNotifyFunction, ""),
			Bucket:       consts.BucketName,
		}
		store := tasks.NewDynamoStore(clients.DynamoDB, consts.TableName)
		return store, []tasks.HandlerOption{tasks.WithNotifier(notifier)}, noop, nil

	default:
		return nil, nil, noop, fmt.Errorf("unknown store %q", kind)
	}
}

func openDatabase(kind, sqlitePath string) (*gorm.DB, error) {
	switch kind {
	case StoreMemory:
		return db.OpenSQLite(db.MemoryDSN)
	case StoreSQLite:
		return db.OpenSQLite(sqlitePath)
	default:
		return db.New(postgresOptions())
	}
}

// postgresOptions reads the connection settings from DB_* variables. Unset
// values fall back to the db package defaults.
func postgresOptions() db.Options {
	opts := db.Options{
		Host:     rootconfig.GetEnv(constants.EnvDBHost, ""),
		User:     rootconfig.GetEnv(constants.EnvDBUser, ""),
		Password: rootconfig.GetEnv(constants.EnvDBPassword, ""),
		DBName:   rootconfig.GetEnv(constants.EnvDBName, ""),
		Port:     rootconfig.GetEnvInt(constants.EnvDBPort, 0),
		LogLevel: logger.Warn,
	}
	if mode := rootconfig.GetEnv(constants.EnvDBSSLMode, ""); mode != "" {
		enabled := mode != "disable"
		opts.SSLEnabled = &enabled
	}
	return opts
}
