package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"go-blur-bench/pkg/bench"
	"go-blur-bench/pkg/blur"
	"go-blur-bench/pkg/config"
	"go-blur-bench/pkg/executor"
	"go-blur-bench/pkg/imagestore"
	"go-blur-bench/pkg/logger"
	"go-blur-bench/pkg/queue"
	"go-blur-bench/pkg/stats"
	"go-blur-bench/pkg/status"
)

// imageExts are the extensions, lower case, picked up from directory arguments
var imageExts = []string{".png", ".jpg", ".jpeg", ".bmp", ".gif"}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <image|dir>...",
		Short: "Blur a batch of images with both strategies and report timings",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runBenchmark,
	}

	cmd.Flags().Int("radius", 5, "Blur radius; kernel size is 2*radius+1")
	cmd.Flags().Float64("sigma", 0, "Gaussian sigma (0 derives it from the kernel size)")
	cmd.Flags().Int("workers", 0, "Parallel workers (default: number of CPUs)")
	cmd.Flags().String("output-dir", "", "Write blurred images here instead of overwriting the sources")
	cmd.Flags().String("redis", "", "Redis address to publish status events to")
	return cmd
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	v, err := config.New(configFile)
	if err != nil {
		return err
	}
	for key, flag := range map[string]string{
		"radius":     "radius",
		"sigma":      "sigma",
		"workers":    "workers",
		"output_dir": "output-dir",
		"redis.addr": "redis",
	} {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	if debug {
		v.Set("debug", true)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Debug)
	slog.SetDefault(log)

	sinks := status.Multi{status.Log{Logger: log}}
	if cfg.Redis.Enabled() {
		redisClient, err := queue.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Stream, cfg.Redis.MaxLen)
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer redisClient.Close()
		sinks = append(sinks, redisClient.Sink(log))
		log.Info("publishing status events", "redis", cfg.Redis.Addr, "stream", redisClient.StatusStream())
	}
	sink := status.Serialize(sinks)

	paths, err := expandPaths(args)
	if err != nil {
		return err
	}

	store := imagestore.NewStore(sink, log)
	adm, err := store.Admit(paths)
	if err != nil {
		return err
	}
	log.Info("batch ready", "images", store.Count(), "loaded", adm.Admitted, "resized", len(adm.Resized), "skipped", len(adm.Skipped), "write_failed", len(adm.WriteFailed))

	runner := bench.NewRunner(
		store,
		executor.NewParallel(cfg.Workers, sink, log),
		executor.NewSequential(sink, log),
		sink,
		log,
	)

	report, err := runner.Run(cmd.Context(), blur.Request{
		Radius:    cfg.Radius,
		Sigma:     cfg.Sigma,
		OutputDir: cfg.OutputDir,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := stats.WriteReport(out, report); err != nil {
		return err
	}
	fmt.Fprintln(out, stats.ExecutionTimeLine(report.Parallel))
	fmt.Fprintln(out, stats.ExecutionTimeLine(report.Sequential))
	return nil
}

// expandPaths replaces directory arguments with the images they contain, sorted by name.
// Extensions are matched case-insensitively.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to find input files: %w", err)
		}
		var found []string
		for _, entry := range entries {
			if entry.IsDir() || !lo.Contains(imageExts, strings.ToLower(filepath.Ext(entry.Name()))) {
				continue
			}
			found = append(found, filepath.Join(arg, entry.Name()))
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}
	return lo.Uniq(paths), nil
}
