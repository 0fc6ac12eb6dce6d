package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/astgrep/internal/abi"
	sx "github.com/oxhq/astgrep/internal/sitter"
)

func newMatchCmd() *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "match <pattern> <file>",
		Short: "One-shot structural match of a pattern against a source file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patternStr, path := args[0], args[1]

			l, ok := sx.ParseLang(lang)
			if !ok {
				l, ok = sx.ParseLang(cfg.DefaultLang)
				if !ok {
					l = sx.LangJavaScript
				}
			}

			src, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}

			buf := abi.Default.StructMatch(patternStr, string(src), l)
			if len(buf) == 0 {
				fmt.Println("no matches")
				return nil
			}
			fmt.Printf("%d bytes of binary match-list output (count=%d)\n", len(buf), matchCount(buf))
			return nil
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "source language (js, ts, tsx); defaults to config")
	return cmd
}

// matchCount reads the leading little-endian u32 count off a §4.6 binary
// match-list buffer, for the CLI's one-line human summary.
func matchCount(buf []byte) uint32 {
	if len(buf) < 4 {
		return 0
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
}
