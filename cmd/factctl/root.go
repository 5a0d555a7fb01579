package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/factgraph/backend/internal/database"
	"github.com/factgraph/backend/internal/setup"
	"github.com/factgraph/backend/internal/util"
	"github.com/factgraph/backend/pkg/common"
	"github.com/factgraph/backend/pkg/graph"
	"github.com/factgraph/backend/pkg/store"
	"github.com/factgraph/backend/pkg/store/memory"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "factctl",
		Short:         "Operate the fact graph from the command line",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newMigrateCmd(), newIngestCmd(), newPreviewCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate [up|down]",
		Short: "Apply or roll back the SQL migrations",
		Long:  longMigrate,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := ""
			if len(args) == 1 {
				direction = args[0]
			}
			d, err := database.ParseDirection(direction)
			if err != nil {
				return err
			}
			return database.Migrate(util.GetEnv("DATABASE_URL"), dir, d)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", util.GetEnvString("MIGRATIONS_PATH", "migrations"), "directory holding the migration files")
	return cmd
}

func newIngestCmd() *cobra.Command {
	var caseID int64
	cmd := &cobra.Command{
		Use:   "ingest --case <id> <file>",
		Short: "Extract facts from a text file into a stored case",
		Long:  longIngest,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if caseID <= 0 {
				return errors.New("--case is required")
			}
			text, err := readDocument(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := database.Connect(ctx, util.GetEnv("DATABASE_URL"))
			if err != nil {
				return err
			}
			defer pool.Close()

			client, err := setup.AIClientFromEnv()
			if err != nil {
				return err
			}
			pipeline, st, err := setup.PostgresPipeline(pool, client)
			if err != nil {
				return err
			}
			if _, err := st.GetCase(ctx, caseID); err != nil {
				return fmt.Errorf("case %d: %w", caseID, err)
			}

			res, err := pipeline.IngestDocument(ctx, caseID, text)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d facts, skipped %d\n", res.FactsCreated, res.Skipped)
			setup.LogMetrics(client)
			return nil
		},
	}
	cmd.Flags().Int64Var(&caseID, "case", 0, "id of the case to ingest into")
	return cmd
}

func newPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview <file>",
		Short: "Build the graph of a text file in memory and print it",
		Long:  longPreview,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readDocument(args[0])
			if err != nil {
				return err
			}
			client, err := setup.AIClientFromEnv()
			if err != nil {
				return err
			}
			st := memory.New()
			pipeline, err := setup.Pipeline(client, st, nil)
			if err != nil {
				return err
			}
			if err := preview(cmd.Context(), pipeline, st, text, cmd.OutOrStdout()); err != nil {
				return err
			}
			setup.LogMetrics(client)
			return nil
		},
	}
}

// ingester is the part of *graph.Pipeline preview needs.
type ingester interface {
	IngestDocument(ctx context.Context, caseID int64, text string) (graph.IngestResult, error)
}

// preview ingests text into a fresh case of st and writes the resulting
// graph to out.
func preview(ctx context.Context, p ingester, st store.GraphStorage, text string, out io.Writer) error {
	c, err := st.CreateCase(ctx, common.Case{Title: "preview"})
	if err != nil {
		return err
	}
	res, err := p.IngestDocument(ctx, c.ID, text)
	if err != nil {
		return err
	}
	g, err := st.GetCaseGraph(ctx, c.ID, nil)
	if err != nil {
		return err
	}
	printGraph(out, g)
	fmt.Fprintf(out, "\n%d facts, %d skipped, %d relationships\n", res.FactsCreated, res.Skipped, len(g.Links))
	return nil
}

func printGraph(out io.Writer, g common.Graph) {
	fmt.Fprintln(out, "Facts:")
	for _, f := range g.Nodes {
		fmt.Fprintf(out, "  [%d] (%s) %s\n", f.ID, f.Topic, f.Content)
	}
	fmt.Fprintln(out, "Relationships:")
	for _, r := range g.Links {
		fmt.Fprintf(out, "  %d -> %d %s %d\n", r.SourceID, r.TargetID, r.Type, r.Strength)
	}
}

func readDocument(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%s is not UTF-8 text", path)
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "", fmt.Errorf("%s is empty", path)
	}
	return text, nil
}

var longMigrate = `
Apply or roll back the SQL migrations against DATABASE_URL.

Examples:
  # Bring the schema up to date.
  factctl migrate up

  # Drop every table.
  factctl migrate down
`

var longIngest = `
Extract facts from a UTF-8 text file and link them into an existing case.

Examples:
  factctl ingest --case 3 interview.txt
`

var longPreview = `
Extract facts from a UTF-8 text file into a throwaway in-memory case and
print the facts and relationships. Nothing is written to the database.

Examples:
  factctl preview interview.txt
`
