// Package main provides the CLI entry point for catalogd, the
// SBOM/advisory catalog's query engine and group hierarchy service.
package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/trustify-project/catalogd/config"
	"github.com/trustify-project/catalogd/internal/group"
	"github.com/trustify-project/catalogd/internal/httpapi"
)

func main() {
	cfg := config.NewConfig()

	rootCmd := &cobra.Command{
		Use:           "catalogd",
		Short:         "SBOM/advisory catalog query engine and group service",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(cfg)
		},
	}
	cfg.RegisterFlags(rootCmd.Flags())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("--%s is required", cfg.Flags.DatabaseURL)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("resolve timezone %q: %w", cfg.Timezone, err)
	}
	group.Columns.Clock = func() time.Time { return time.Now().In(loc) }

	svc := group.NewService(db)
	svc.MaxHierarchyDepth = cfg.MaxHierarchyDepth
	svc.MaxNameLength = cfg.MaxNameLength

	api := httpapi.New(svc)
	api.MaxPathDepth = cfg.MaxPathDepth

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	api.Routes(r)
	r.Get("/v2/sbom/{sbomID}/licenses", httpapi.Licenses(db))

	logrus.WithField("addr", cfg.Addr()).Info("starting catalogd")
	return http.ListenAndServe(cfg.Addr(), r)
}
