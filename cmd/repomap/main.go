// Command repomap is a minimal entry point over the analysis facade. The
// CLI surface proper (colorized rendering, table/JSON formatters, session
// persistence) is out of scope for this module per spec.md §1; this binary
// exists only so the facade has a runnable consumer, in the teacher's own
// cmd/<name>/main.go + cmd/root.go shape.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"repomap/internal/config"
	"repomap/internal/logging"
	"repomap/internal/repomap"
)

var (
	projectRoot string
	log         = logging.NewLoggerWithName("cmd")
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "repomap",
		Short: "RepoMap static code-intelligence engine",
		Long: `repomap answers three questions about a source repository: which
identifiers exist, how files depend on each other, and what the blast
radius of changing a file would be.`,
	}
	root.PersistentFlags().StringVar(&projectRoot, "root", ".", "project root to analyze")
	root.AddCommand(newAnalyzeCmd(), newSearchCmd(), newCyclesCmd(), newCentralityCmd(), newImpactCmd())
	return root
}

func loadFacade() (*repomap.Facade, config.Configuration, error) {
	abs, err := os.Getwd()
	if err != nil {
		return nil, config.Configuration{}, err
	}
	root := projectRoot
	if root == "." {
		root = abs
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, config.Configuration{}, repomap.NewConfigError("invalid configuration", err)
	}
	return repomap.NewFacade(cfg, log), cfg, nil
}

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Discover files, extract tags, and build the dependency graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			facade, _, err := loadFacade()
			if err != nil {
				return err
			}
			info, err := facade.AnalyzeProject(context.Background(), nil)
			if err != nil {
				return err
			}
			fmt.Printf("run %s: %d files, %d identifiers, %dms\n",
				info.RunID, info.FileCount, info.IdentifierCount, info.ElapsedMillis)
			for ext, count := range info.FileTypeHistogram {
				fmt.Printf("  %s: %d\n", ext, count)
			}
			return nil
		},
	}
}

func newSearchCmd() *cobra.Command {
	var kind string
	var threshold float64
	var maxResults int
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the identifier universe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			facade, cfg, err := loadFacade()
			if err != nil {
				return err
			}
			if _, err := facade.AnalyzeProject(context.Background(), nil); err != nil {
				return err
			}
			if maxResults <= 0 {
				maxResults = cfg.Root.MaxResults
			}
			resp := facade.SearchIdentifiers(repomap.SearchRequest{
				Query:      args[0],
				Kind:       repomap.MatchKind(kind),
				Threshold:  threshold,
				MaxResults: maxResults,
			})
			for _, r := range resp.Results {
				fmt.Printf("%.2f\t%s\t%s:%d\n", r.Score, r.Identifier, r.Path, r.Line)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "fuzzy", "match kind: fuzzy, semantic, hybrid")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.7, "score threshold")
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "max results (default from config)")
	return cmd
}

func newCyclesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cycles",
		Short: "List dependency cycles",
		RunE: func(cmd *cobra.Command, args []string) error {
			facade, _, err := loadFacade()
			if err != nil {
				return err
			}
			if _, err := facade.AnalyzeProject(context.Background(), nil); err != nil {
				return err
			}
			cycles, err := facade.FindCycles()
			if err != nil {
				return err
			}
			for _, c := range cycles {
				fmt.Println(c)
			}
			return nil
		},
	}
}

func newCentralityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "centrality",
		Short: "Rank files by composite structural importance",
		RunE: func(cmd *cobra.Command, args []string) error {
			facade, _, err := loadFacade()
			if err != nil {
				return err
			}
			if _, err := facade.AnalyzeProject(context.Background(), nil); err != nil {
				return err
			}
			vec, err := facade.CentralityScores()
			if err != nil {
				return err
			}
			for path, score := range vec.Composite {
				fmt.Printf("%.4f\t%s\n", score, path)
			}
			return nil
		},
	}
}

func newImpactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "impact [files...]",
		Short: "Report the blast radius of changing the given files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			facade, _, err := loadFacade()
			if err != nil {
				return err
			}
			if _, err := facade.AnalyzeProject(context.Background(), nil); err != nil {
				return err
			}
			report, err := facade.ImpactOf(args)
			if err != nil {
				return err
			}
			fmt.Printf("risk: %.2f\n", report.RiskScore)
			fmt.Printf("direct: %v\n", report.Direct)
			fmt.Printf("transitive: %v\n", report.Transitive)
			fmt.Printf("suggested tests: %v\n", report.SuggestedTests)
			return nil
		},
	}
}
