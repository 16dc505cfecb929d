// Package cmd holds the gallery command line: the web server and operator tooling.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sidhant-sriv/gallery-api/config"
	"github.com/sidhant-sriv/gallery-api/db"
	"github.com/sidhant-sriv/gallery-api/logger"
	"github.com/sidhant-sriv/gallery-api/models"
	"github.com/sidhant-sriv/gallery-api/store"
)

// env is what every subcommand works with once configuration is loaded.
type env struct {
	cfg   config.Config
	log   *zap.Logger
	cats  []models.Category
	store store.ItemStore
	json  *store.JSONStore
	conn  *gorm.DB
}

func NewRootCommand() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "gallery",
		Short:         "Gallery site and image collection tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["skipEnv"] == "true" {
				return nil
			}
			loaded, err := loadEnv()
			if err != nil {
				return err
			}
			*e = *loaded
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if e.log == nil {
				return nil
			}
			return e.close()
		},
	}

	root.AddCommand(
		newServeCommand(e),
		newItemsCommand(e),
		newCheckCommand(e),
		newImportCommand(e),
		newHashPasswordCommand(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.GinMode != "release")
	if err != nil {
		return nil, err
	}
	cats, err := config.LoadCategories(cfg.CategoriesFile, cfg.DataDir, cfg.PublicDir)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, log: log, cats: cats, json: store.NewJSONStore(cats, log)}
	switch cfg.StoreBackend {
	case config.BackendJSON:
		e.store = e.json
	default:
		conn, err := db.Open(cfg, log)
		if err != nil {
			return nil, err
		}
		if err := db.MakeMigration(conn); err != nil {
			_ = db.Close(conn)
			return nil, err
		}
		e.conn = conn
		e.store = store.NewDBStore(conn, cats, log)
	}
	return e, nil
}

func (e *env) close() error {
	_ = e.log.Sync()
	if e.conn != nil {
		return db.Close(e.conn)
	}
	return nil
}
