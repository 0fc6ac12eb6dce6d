package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/astgrep/internal/abi"
	sx "github.com/oxhq/astgrep/internal/sitter"
)

func newNodeInfoCmd() *cobra.Command {
	var (
		lang     string
		startArg int
		endArg   int
		children bool
		named    bool
	)

	cmd := &cobra.Command{
		Use:   "node-info <file>",
		Short: "Print §4.5 node-info JSON for the root node, or a byte range within it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

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

			srcHandle := abi.Default.CompileSource(l, string(src))
			if srcHandle == 0 {
				return fmt.Errorf("%s: parse failed", path)
			}
			defer abi.Default.FreeSource(srcHandle)

			isRoot := startArg == 0 && endArg == 0
			var out []byte
			switch {
			case children && named:
				out = abi.Default.NodeNamedChildren(srcHandle, startArg, endArg, isRoot)
			case children:
				out = abi.Default.NodeChildren(srcHandle, startArg, endArg, isRoot)
			case isRoot:
				out = abi.Default.NodeRoot(srcHandle)
			default:
				out = abi.Default.NodeInfo(srcHandle, startArg, endArg, isRoot)
			}

			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "source language (js, ts, tsx); defaults to config")
	cmd.Flags().IntVar(&startArg, "start", 0, "byte offset of range start (0 with --end=0 selects the root)")
	cmd.Flags().IntVar(&endArg, "end", 0, "byte offset of range end")
	cmd.Flags().BoolVar(&children, "children", false, "print children instead of the node itself")
	cmd.Flags().BoolVar(&named, "named-only", false, "with --children, list only named children")

	return cmd
}
