package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/oxhq/astgrep/internal/abi"
	"github.com/oxhq/astgrep/internal/audit"
	"github.com/oxhq/astgrep/internal/codec"
	"github.com/oxhq/astgrep/internal/diffutil"
	"github.com/oxhq/astgrep/internal/rulecache"
	sx "github.com/oxhq/astgrep/internal/sitter"
)

// FileReport is one source file's findings, the unit `astgrep scan` emits
// per glob match.
type FileReport struct {
	File     string          `json:"file"`
	Findings []codec.Finding `json:"findings"`
}

func newScanCmd() *cobra.Command {
	var (
		rulesetPath string
		lang        string
		showDiff    bool
		diffContext int
		remoteCache bool
		useAudit    bool
	)

	cmd := &cobra.Command{
		Use:   "scan <glob...>",
		Short: "Apply a compiled ruleset to every file matched by the given globs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := uuid.NewString()

			bytecode, err := os.ReadFile(rulesetPath)
			if err != nil {
				return fmt.Errorf("reading ruleset %s: %w", rulesetPath, err)
			}

			if cfg.CacheEnabled {
				if err := warmRulesetCache(bytecode, rulesetPath, remoteCache); err != nil && cfg.Verbose {
					logger.Printf("run %s: ruleset cache warm failed: %v", runID, err)
				}
			}

			rsHandle := abi.Default.LoadRuleset(bytecode)
			if rsHandle == 0 {
				return fmt.Errorf("ruleset %s failed to decode or compile", rulesetPath)
			}
			defer abi.Default.FreeRuleset(rsHandle)

			l, ok := sx.ParseLang(lang)
			if !ok {
				l, ok = sx.ParseLang(cfg.DefaultLang)
				if !ok {
					l = sx.LangJavaScript
				}
			}

			var auditLog *audit.Log
			if useAudit || cfg.AuditEnabled {
				auditLog, err = audit.Open(cfg.AuditDBPath)
				if err != nil {
					return fmt.Errorf("opening audit log: %w", err)
				}
				defer auditLog.Close()
				if err := auditLog.RecordRun(runID, rulesetPath); err != nil {
					return fmt.Errorf("recording scan run: %w", err)
				}
			}

			var reports []FileReport
			for _, g := range args {
				matches, err := doublestar.FilepathGlob(g)
				if err != nil {
					return fmt.Errorf("expanding glob %q: %w", g, err)
				}
				for _, path := range matches {
					report, findings, err := scanFile(rsHandle, l, path, showDiff, diffContext)
					if err != nil {
						logger.Printf("run %s: %s: %v", runID, path, err)
						continue
					}
					reports = append(reports, report)
					if auditLog != nil && len(findings) > 0 {
						if err := auditLog.RecordFindings(runID, findings); err != nil {
							logger.Printf("run %s: audit write failed: %v", runID, err)
						}
					}
				}
			}

			out, err := json.MarshalIndent(reports, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding findings: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&rulesetPath, "ruleset", "r", "", "compiled §6.2 bytecode ruleset file (.rsbc)")
	cmd.MarkFlagRequired("ruleset")
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "source language (js, ts, tsx); defaults to config")
	cmd.Flags().BoolVarP(&showDiff, "diff", "D", false, "preview each fix template as a unified diff (scan never writes files)")
	cmd.Flags().IntVarP(&diffContext, "diff-context", "C", 3, "lines of context for --diff")
	cmd.Flags().BoolVar(&remoteCache, "remote-cache", false, "sync the ruleset cache with the configured libsql/Turso database")
	cmd.Flags().BoolVar(&useAudit, "audit", false, "record findings to the audit log")

	return cmd
}

func scanFile(rsHandle int, lang sx.Lang, path string, showDiff bool, diffContext int) (FileReport, []audit.Finding, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return FileReport{}, nil, fmt.Errorf("reading: %w", err)
	}

	srcHandle := abi.Default.CompileSource(lang, string(src))
	if srcHandle == 0 {
		return FileReport{}, nil, fmt.Errorf("parse failed")
	}
	defer abi.Default.FreeSource(srcHandle)

	findingsJSON := abi.Default.ApplyRuleset(rsHandle, srcHandle)
	var findings []codec.Finding
	if err := json.Unmarshal(findingsJSON, &findings); err != nil {
		return FileReport{}, nil, fmt.Errorf("decoding findings: %w", err)
	}

	var auditFindings []audit.Finding
	for _, f := range findings {
		for _, m := range f.Matches {
			auditFindings = append(auditFindings, audit.Finding{
				RuleID: f.RuleID, Severity: f.Severity, Source: path,
				StartByte: m.StartByte, EndByte: m.EndByte,
			})
			if showDiff && f.Fix != "" {
				original := string(src[m.StartByte:m.EndByte])
				proposed := diffutil.SubstituteFix(f.Fix, m.Bindings)
				fmt.Print(diffutil.Preview(path, original, proposed, diffContext))
			}
		}
	}

	return FileReport{File: path, Findings: findings}, auditFindings, nil
}

func warmRulesetCache(bytecode []byte, rulesetPath string, remote bool) error {
	cache, err := rulecache.Open(cfg.CacheDir)
	if err != nil {
		return err
	}
	digest := rulecache.Digest(bytecode)
	if _, hit := cache.Lookup(digest); hit {
		return nil
	}
	meta, err := json.Marshal(map[string]string{"source_path": rulesetPath})
	if err != nil {
		return err
	}
	ruleCount := 0 // the rule count is not known before decode, so the entry stores 0
	if err := cache.Store(digest, bytecode, ruleCount, meta); err != nil {
		return err
	}
	if remote && cfg.RemoteCacheURL != "" {
		rs, err := rulecache.DialRemote(cfg.RemoteCacheURL, cfg.RemoteCacheAuth)
		if err != nil {
			return err
		}
		defer rs.Close()
		return rs.Push(digest, bytecode, ruleCount)
	}
	return nil
}
