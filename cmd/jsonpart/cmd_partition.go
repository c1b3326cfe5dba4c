package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	internal "github.com/MajidSas/json-parser-spark/jsonpart"
	"github.com/MajidSas/json-parser-spark/jsonpart/config"
	"github.com/MajidSas/json-parser-spark/jsonpart/dfa"
	"github.com/MajidSas/json-parser-spark/jsonpart/fs"
	"github.com/MajidSas/json-parser-spark/jsonpart/partition"
	"github.com/MajidSas/json-parser-spark/jsonpart/stats"
	"github.com/MajidSas/json-parser-spark/jsonpart/token"
)

func newPartitionCmd() *cobra.Command {
	var (
		configPath string
		query      string
		speculate  bool
	)

	cmd := &cobra.Command{
		Use:   "partition <path>",
		Short: "Compute partition descriptors for a JSON dataset",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Filepath = args[0]
			}
			if cfg.Filepath == "" {
				return fmt.Errorf("no input path given")
			}
			if speculate {
				cfg.Speculation = true
			}
			return runPartition(cmd.Context(), cfg, query)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file path")
	cmd.Flags().StringVarP(&query, "query", "q", "", "projection path, e.g. $.store.book[*].title")
	cmd.Flags().BoolVar(&speculate, "speculate", false, "use the speculation strategy")

	return cmd
}

func runPartition(ctx context.Context, cfg *config.Config, query string) error {
	logger := internal.GetLogger()

	if query == "" {
		return fmt.Errorf("a projection query is required")
	}
	proj, err := dfa.ParsePath(query)
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}

	fsys := fs.NewOS()
	opts := partition.Options{
		Path:              cfg.Filepath,
		Recursive:         cfg.Recursive,
		PathGlobFilter:    cfg.PathGlobFilter,
		HDFSPath:          cfg.HDFSPath,
		Encoding:          cfg.Encoding,
		Parallelism:       cfg.Parallelism,
		MinPartitionBytes: cfg.MinPartitionBytes,
		MaxPartitionBytes: cfg.MaxPartitionBytes,
	}

	var table *stats.SpeculationTable
	if cfg.Speculation {
		table, err = sampleStats(fsys, cfg, proj)
		if err != nil {
			return err
		}
	}

	p := partition.New(fsys, proj, table, opts)

	var descs []partition.Descriptor
	if cfg.Speculation {
		descs, err = p.Speculate(ctx)
		if errors.Is(err, partition.ErrSpeculationImpossible) {
			logger.Warn().Err(err).Msg("falling back to full pass")
			descs, err = p.FullPass(ctx)
		}
	} else {
		descs, err = p.FullPass(ctx)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	for _, d := range descs {
		if err := enc.Encode(d); err != nil {
			return err
		}
	}
	return nil
}

// sampleStats builds the speculation anchor table from a sample of the
// first matching input file.
func sampleStats(fsys fs.FileSystem, cfg *config.Config, proj *dfa.DFA) (*stats.SpeculationTable, error) {
	buckets, err := partition.Bucketize(fsys, partition.Options{
		Path:           cfg.Filepath,
		Recursive:      cfg.Recursive,
		PathGlobFilter: cfg.PathGlobFilter,
		HDFSPath:       cfg.HDFSPath,
		Parallelism:    cfg.Parallelism,
	})
	if err != nil || len(buckets) == 0 {
		return nil, err
	}

	src, _, err := token.GetInputStream(fsys, buckets[0].Path, "")
	if err != nil {
		return nil, err
	}
	defer src.Close()

	docStats := stats.NewDocumentStats()
	sampler := stats.NewSampler(docStats, cfg.StatsSampleBytes)
	if err := sampler.Sample(src); err != nil {
		return nil, err
	}

	return stats.BuildTable(docStats, proj.ResolveKeyState), nil
}
