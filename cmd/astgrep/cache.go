package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxhq/astgrep/internal/audit"
	"github.com/oxhq/astgrep/internal/rulecache"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the on-disk compiled-ruleset cache and audit log",
	}
	cmd.AddCommand(newCacheStatsCmd(), newCacheClearCmd())
	return cmd
}

func newCacheStatsCmd() *cobra.Command {
	var ruleID string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print ruleset-cache entry count and size, and optionally a rule's audit hit count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := rulecache.Open(cfg.CacheDir)
			if err != nil {
				return fmt.Errorf("opening ruleset cache: %w", err)
			}
			count, totalBytes, err := cache.Stats()
			if err != nil {
				return fmt.Errorf("reading ruleset cache stats: %w", err)
			}
			fmt.Printf("ruleset cache: %d entries, %d bytes (%s)\n", count, totalBytes, cfg.CacheDir)

			if ruleID != "" {
				log, err := audit.Open(cfg.AuditDBPath)
				if err != nil {
					return fmt.Errorf("opening audit log: %w", err)
				}
				defer log.Close()
				hits, err := log.CountByRule(ruleID)
				if err != nil {
					return fmt.Errorf("counting findings for %s: %w", ruleID, err)
				}
				fmt.Printf("rule %s: %d recorded findings (%s)\n", ruleID, hits, cfg.AuditDBPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&ruleID, "rule", "", "also print the audit-log finding count for this rule id")
	return cmd
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every entry from the ruleset cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := rulecache.Open(cfg.CacheDir)
			if err != nil {
				return fmt.Errorf("opening ruleset cache: %w", err)
			}
			if err := cache.Clear(); err != nil {
				return fmt.Errorf("clearing ruleset cache: %w", err)
			}
			fmt.Println("ruleset cache cleared")
			return nil
		},
	}
}
