package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/motorcat/internal/app"
	"github.com/JonMunkholm/motorcat/internal/catalog"
	"github.com/JonMunkholm/motorcat/internal/importer"
	"github.com/JonMunkholm/motorcat/internal/storage/postgres"
)

func newImportCmd(c *cli) *cobra.Command {
	var (
		encoding string
		sheet    string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import an .xlsx or .csv spreadsheet into the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, closeStore, err := app.OpenStore(ctx, c.cfg.Database)
			if err != nil {
				return err
			}
			defer closeStore()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			icfg := app.ImporterConfig(c.cfg.Import)
			if encoding != "" {
				icfg.Read.Encoding = importer.ParseEncoding(encoding)
			}
			icfg.Read.Sheet = sheet

			run, err := importer.NewService(store, icfg, c.logger).Import(ctx, f, filepath.Base(args[0]))
			if err != nil {
				return fmt.Errorf("%s: %w", catalog.MapError(err).Message, err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(run)
			}
			printRun(cmd, run)
			return nil
		},
	}

	cmd.Flags().StringVar(&encoding, "encoding", "", "CSV encoding: auto, utf-8 or windows-1251 (default from IMPORT_ENCODING)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "xlsx sheet name (default: first sheet)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run as JSON")
	return cmd
}

func printRun(cmd *cobra.Command, run importer.Run) {
	out := cmd.OutOrStdout()
	s := run.Stats
	fmt.Fprintf(out, "%s: created %d, updated %d, errors %d, processed %d of %d\n",
		run.FileName, s.Created, s.Updated, s.Errors, s.Processed, s.Total)
	for _, row := range run.Failed {
		uid := row.UID
		if uid == "" {
			uid = "-"
		}
		fmt.Fprintf(out, "  row %d (uid %s): %s\n", row.Line, uid, row.Error)
	}
	if run.Error != "" {
		fmt.Fprintf(out, "warning: %s\n", run.Error)
	}
}

func newPurgeCmd(c *cli) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every listing in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("confirmation required: re-run with --yes")
			}

			ctx := cmd.Context()
			store, closeStore, err := app.OpenStore(ctx, c.cfg.Database)
			if err != nil {
				return err
			}
			defer closeStore()

			n, err := store.DeleteAll(ctx)
			if err != nil {
				return err
			}
			c.logger.Warn("catalog purged", "deleted", n)
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d listings\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting all listings")
	return cmd
}

// newResolveCmd prints what a category slug matches and the predicate a
// listing request for it would run. It needs no storage.
func newResolveCmd(c *cli) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "resolve [slug]",
		Short: "Show the labels and filter predicate for a category slug",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := ""
			if len(args) == 1 {
				slug = args[0]
			}

			values, err := parseQuery(query)
			if err != nil {
				return err
			}
			spec := catalog.ParseFilterSpec(slug, values)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "name:      %s\n", catalog.DisplayName(slug))
			if slug != "" {
				known := "mapped"
				if !catalog.IsKnownSlug(slug) {
					known = "unmapped, matched literally"
				}
				fmt.Fprintf(out, "labels:    %s (%s)\n", strings.Join(catalog.Resolve(slug), ", "), known)
			}
			fmt.Fprintf(out, "predicate: %s\n", catalog.Builder{}.Build(slug, spec))
			fmt.Fprintf(out, "page:      offset %d, limit %d, sort %s\n", spec.Offset, spec.Limit, spec.Sort)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", `listing query string, e.g. "brands=Toyota&priceTo=3000000"`)
	return cmd
}

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the PostgreSQL schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Database.IsMemory() {
				return errors.New("migrate needs a postgres DATABASE_URL")
			}

			ctx := cmd.Context()
			pool, err := postgres.Open(ctx, c.cfg.Database.URL, postgres.PoolConfig{MaxConns: 1})
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgres.Migrate(ctx, pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	}
}

func parseQuery(q string) (url.Values, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(strings.TrimSpace(q), "?"))
	if err != nil {
		return nil, fmt.Errorf("invalid --query: %w", err)
	}
	return values, nil
}
