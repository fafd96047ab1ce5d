package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parcelgraph/internal/address"
	"github.com/parcelgraph/internal/audit"
	"github.com/parcelgraph/internal/config"
	"github.com/parcelgraph/internal/owner"
	"github.com/parcelgraph/internal/pipeline"
	"github.com/parcelgraph/internal/source"
	"github.com/parcelgraph/internal/web"
)

func main() {
	config.LoadEnv()

	rootCmd := &cobra.Command{
		Use:   "parcelgraph",
		Short: "Parcel entity resolution pipeline",
		Long:  `Resolves parcel addresses against geocoded candidates, builds ownership ledgers, and emits linked per-entity JSON records`,
	}

	rootCmd.AddCommand(createRunCmd())
	rootCmd.AddCommand(createMatchCmd())
	rootCmd.AddCommand(createOwnersCmd())
	rootCmd.AddCommand(createReviewCmd())
	rootCmd.AddCommand(createStatsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// createRunCmd creates the batch processing command
func createRunCmd() *cobra.Command {
	cfg := pipeline.Config{}
	var watch bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process every parcel document in the input directory",
		Run: func(cmd *cobra.Command, args []string) {
			p, err := pipeline.New(cfg)
			if err != nil {
				log.Fatalf("Failed to initialize pipeline: %v", err)
			}
			defer p.Close()

			summary, err := p.Run(context.Background())
			if err != nil {
				log.Fatalf("Batch run failed: %v", err)
			}
			summary.Print()

			if watch {
				if err := p.Watch(context.Background()); err != nil {
					log.Fatalf("Watcher failed: %v", err)
				}
			}
		},
	}

	cmd.Flags().StringVar(&cfg.SeedPath, "seed", config.GetEnv("SEED_PATH", "seed.csv"), "Seed reference CSV")
	cmd.Flags().StringVar(&cfg.CandidateDir, "candidates", config.GetEnv("CANDIDATE_DIR", "candidates"), "Geocoded candidate directory")
	cmd.Flags().StringVar(&cfg.DocumentDir, "documents", config.GetEnv("DOCUMENT_DIR", "documents"), "Extracted document directory")
	cmd.Flags().StringVar(&cfg.AttributeDir, "attributes", config.GetEnv("ATTRIBUTE_DIR", "attributes"), "Structure/utility/layout attribute directory")
	cmd.Flags().StringVar(&cfg.DataDir, "out", config.GetEnv("DATA_DIR", "data"), "Output directory for entity records")
	cmd.Flags().IntVar(&cfg.Workers, "workers", config.GetEnvInt("WORKERS", 4), "Concurrent parcel workers")
	cmd.Flags().Float64Var(&cfg.Threshold, "min-similarity", config.GetEnvFloat("MIN_SIMILARITY", address.FuzzyThreshold), "Fuzzy match acceptance threshold")
	cmd.Flags().StringVar(&cfg.KeywordsPath, "keywords", config.GetEnv("KEYWORDS_PATH", ""), "Company keyword YAML file (empty for built-in)")
	cmd.Flags().StringVar(&cfg.AuditPath, "audit-db", config.GetEnv("AUDIT_DB", ""), "Audit SQLite database (empty to disable)")
	cmd.Flags().StringVar(&cfg.AuditLabel, "run-label", "", "Label for the audit run")
	cmd.Flags().BoolVar(&cfg.Debug, "debug", config.GetEnvBool("DEBUG", false), "Enable debug output")
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep watching the document directory after the batch")

	return cmd
}

// createMatchCmd creates a one-off address resolution command
func createMatchCmd() *cobra.Command {
	var candidateFile string
	var threshold float64
	var debugOut bool

	cmd := &cobra.Command{
		Use:   "match [address]",
		Short: "Resolve a single free-text address against a candidate file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			parsed := address.Parse(args[0])
			fmt.Printf("Parsed: number=%q pre=%q street=%q suffix=%q post=%q unit=%q\n",
				parsed.Number, parsed.PreDirectional, parsed.Street,
				parsed.Suffix, parsed.PostDirectional, parsed.Unit)

			if candidateFile == "" {
				return
			}
			dir, parcelID := splitCandidatePath(candidateFile)
			candidates, err := source.LoadCandidates(dir, parcelID)
			if err != nil {
				log.Fatalf("Failed to load candidates: %v", err)
			}

			matcher := address.NewMatcher()
			matcher.Threshold = threshold
			matcher.Debug = debugOut
			match := matcher.Resolve(parsed, candidates)
			if match == nil {
				fmt.Println("No candidates to match against")
				return
			}
			fmt.Printf("Matched via %s (score %.3f): %s %s\n",
				match.Method, match.Score, match.Candidate.Number, match.Candidate.Street)
		},
	}

	cmd.Flags().StringVar(&candidateFile, "candidates", "", "Candidate JSON file")
	cmd.Flags().Float64Var(&threshold, "min-similarity", address.FuzzyThreshold, "Fuzzy match acceptance threshold")
	cmd.Flags().BoolVar(&debugOut, "debug", false, "Enable debug output")
	return cmd
}

// splitCandidatePath splits a candidate JSON path into the directory and
// parcel-id form the loader expects.
func splitCandidatePath(path string) (dir, parcelID string) {
	return filepath.Dir(path), strings.TrimSuffix(filepath.Base(path), ".json")
}

// createOwnersCmd creates an owner classification debug command
func createOwnersCmd() *cobra.Command {
	var keywordsPath string

	cmd := &cobra.Command{
		Use:   "owners [name...]",
		Short: "Classify raw ownership names",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			classifier, err := owner.LoadClassifier(keywordsPath)
			if err != nil {
				log.Fatalf("Failed to load classifier: %v", err)
			}
			for _, raw := range args {
				for _, name := range owner.SplitJoint(raw) {
					c := classifier.Classify(name)
					if c.Kind == owner.KindCompany {
						fmt.Printf("%-40s company  %s\n", name, c.Company)
					} else {
						fmt.Printf("%-40s person   first=%q middle=%q last=%q\n",
							name, c.Person.First, c.Person.Middle, c.Person.Last)
					}
				}
			}
		},
	}

	cmd.Flags().StringVar(&keywordsPath, "keywords", "", "Company keyword YAML file (empty for built-in)")
	return cmd
}

// createReviewCmd creates the audit review web server command
func createReviewCmd() *cobra.Command {
	cfg := web.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Serve the audit review API",
		Run: func(cmd *cobra.Command, args []string) {
			server, err := web.NewServer(cfg)
			if err != nil {
				log.Fatalf("Failed to start review server: %v", err)
			}
			if err := server.Start(); err != nil {
				log.Fatalf("Review server failed: %v", err)
			}
		},
	}

	cmd.Flags().StringVar(&cfg.Database.Path, "db", config.GetEnv("AUDIT_DB", cfg.Database.Path), "Audit SQLite database")
	cmd.Flags().StringVar(&cfg.Server.Host, "host", config.GetEnv("HOST", cfg.Server.Host), "Listen host")
	cmd.Flags().IntVar(&cfg.Server.Port, "port", config.GetEnvInt("PORT", cfg.Server.Port), "Listen port")
	return cmd
}

// createStatsCmd creates the audit stats command
func createStatsCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print match-method statistics from the audit database",
		Run: func(cmd *cobra.Command, args []string) {
			store, err := audit.Open(dbPath)
			if err != nil {
				log.Fatalf("Failed to open audit database: %v", err)
			}
			defer store.Close()

			stats, err := store.Stats()
			if err != nil {
				log.Fatalf("Failed to read stats: %v", err)
			}
			if len(stats) == 0 {
				fmt.Println("No decisions recorded yet")
				return
			}
			fmt.Printf("%-12s %8s %10s\n", "METHOD", "COUNT", "AVG SCORE")
			for _, st := range stats {
				fmt.Printf("%-12s %8d %10.3f\n", st.Method, st.Count, st.AvgScore)
			}
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", config.GetEnv("AUDIT_DB", "audit.db"), "Audit SQLite database")
	return cmd
}
