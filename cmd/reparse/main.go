package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/aledsdavies/reparse/runtime/ast"
	"github.com/aledsdavies/reparse/runtime/grammar"
	"github.com/aledsdavies/reparse/runtime/ini"
)

const version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:           "reparse",
		Short:         "EBNF combinator parsing toolkit",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newGrammarCmd())
	root.AddCommand(newParseCmd())
	root.AddCommand(newIniCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newGrammarCmd compiles a grammar file and prints the canonical rule
// table.
func newGrammarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grammar <file.bnf>",
		Short: "Compile a grammar file and print its rule table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading grammar: %w", err)
			}
			table, err := grammar.Parse(args[0], src)
			if err != nil {
				return fmt.Errorf("compiling grammar: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), table.String())
			return nil
		},
	}
}

// newParseCmd compiles a grammar, then parses each input file with it and
// prints the resulting AST.
func newParseCmd() *cobra.Command {
	var grammarFile string
	var rootRule string

	cmd := &cobra.Command{
		Use:   "parse --grammar <file.bnf> <input>...",
		Short: "Parse input files with a compiled grammar and print the AST",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(grammarFile)
			if err != nil {
				return fmt.Errorf("reading grammar: %w", err)
			}
			table, err := grammar.Parse(grammarFile, src)
			if err != nil {
				return fmt.Errorf("compiling grammar: %w", err)
			}

			inputs, err := expandGlobs(args)
			if err != nil {
				return err
			}

			for _, input := range inputs {
				var tree *ast.Tree
				if rootRule != "" {
					tree, err = ast.NewTreeFromTable(table, rootRule)
				} else {
					tree, err = grammar.GenerateTree(table)
				}
				if err != nil {
					return err
				}

				content, err := os.ReadFile(input)
				if err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
				node, err := tree.Parse(input, content)
				if err != nil {
					return fmt.Errorf("parsing %s: %w", input, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "== %s\n%s", input, ast.PrintNodeTree(node))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&grammarFile, "grammar", "", "Grammar file to compile")
	cmd.Flags().StringVar(&rootRule, "rule", "", "Root rule name (default: first rule in the grammar)")
	_ = cmd.MarkFlagRequired("grammar")
	return cmd
}

// newIniCmd parses INI files and prints their dump form.
func newIniCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ini <input>...",
		Short: "Parse INI files and print their contents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := expandGlobs(args)
			if err != nil {
				return err
			}
			for _, input := range inputs {
				content, err := os.ReadFile(input)
				if err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
				file, err := ini.Parse(input, content)
				if err != nil {
					return fmt.Errorf("parsing %s: %w", input, err)
				}
				fmt.Fprint(cmd.OutOrStdout(), file.String())
			}
			return nil
		},
	}
}

// expandGlobs resolves each argument as a doublestar pattern against the
// working directory, passing non-pattern paths through untouched.
func expandGlobs(args []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		if !containsGlobMeta(arg) {
			inputs = append(inputs, arg)
			continue
		}
		base := "."
		pattern := filepath.ToSlash(arg)
		matches, err := doublestar.Glob(os.DirFS(base), pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("pattern %q matched no files", arg)
		}
		inputs = append(inputs, matches...)
	}
	return inputs, nil
}

func containsGlobMeta(s string) bool {
	for _, c := range s {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
