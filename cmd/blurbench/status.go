package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"go-blur-bench/pkg/config"
	"go-blur-bench/pkg/queue"
	"go-blur-bench/pkg/status"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the most recent status events published to Redis",
		Args:  cobra.NoArgs,
		RunE:  showStatus,
	}

	cmd.Flags().String("redis", "", "Redis address the status events were published to")
	cmd.Flags().String("stream", "", "Status stream name")
	cmd.Flags().Int64("count", 20, "Number of events to print")
	return cmd
}

func showStatus(cmd *cobra.Command, args []string) error {
	v, err := config.New(configFile)
	if err != nil {
		return err
	}
	for key, flag := range map[string]string{
		"redis.addr":   "redis",
		"redis.stream": "stream",
	} {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	if !cfg.Redis.Enabled() {
		return errors.New("no Redis address configured; pass --redis or set redis.addr")
	}

	count, err := cmd.Flags().GetInt64("count")
	if err != nil {
		return err
	}
	if count <= 0 {
		return fmt.Errorf("count must be positive, got %d", count)
	}

	redisClient, err := queue.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Stream, cfg.Redis.MaxLen)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisClient.Close()

	events, err := redisClient.ReadStatus(count)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", redisClient.StatusStream(), err)
	}

	out := cmd.OutOrStdout()
	for _, ev := range events {
		fmt.Fprintln(out, formatEvent(ev))
	}
	return nil
}

func formatEvent(ev status.Event) string {
	line := fmt.Sprintf("%s %-5s %-10s", ev.Time.Format("15:04:05"), ev.Level, ev.Source)
	if ev.Path != "" {
		line += " " + ev.Path + ":"
	}
	return line + " " + ev.Message
}
