// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/exam-engine/internal/diagnose"
	"github.com/pdiddy/exam-engine/internal/emit"
	"github.com/pdiddy/exam-engine/internal/segment"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Inspect a document before parsing",
	Long: `Check reports whether a document exists and can be read, its SHA-256
and BLAKE3 checksums, whether the container decodes, and how many
identifier markers of each convention it contains. Use it to find out why
a parse failed or which --convention a document needs.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Bool("json", false, "print the report as JSON")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	r := diagnose.Check(args[0])

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		if err := emit.WriteJSON(os.Stdout, r); err != nil {
			return err
		}
	} else {
		printCheck(r)
	}

	if !r.OK() {
		return fmt.Errorf("%s: %s", r.Path, strings.Join(r.Problems, "; "))
	}
	return nil
}

func printCheck(r diagnose.Report) {
	fmt.Fprintf(os.Stdout, "%-12s %s\n", "path", r.Path)
	fmt.Fprintf(os.Stdout, "%-12s %v\n", "exists", r.Exists)
	if r.Exists {
		fmt.Fprintf(os.Stdout, "%-12s %d bytes, %s\n", "size", r.Size, r.Mode)
	}
	fmt.Fprintf(os.Stdout, "%-12s %v\n", "readable", r.Readable)
	if r.Hashes != nil {
		fmt.Fprintf(os.Stdout, "%-12s %s\n", "sha256", r.Hashes.SHA256)
		fmt.Fprintf(os.Stdout, "%-12s %s\n", "blake3", r.Hashes.BLAKE3)
	}
	fmt.Fprintf(os.Stdout, "%-12s %v\n", "decodes", r.Decodes)
	if r.Decodes {
		fmt.Fprintf(os.Stdout, "%-12s %d\n", "paragraphs", r.Paragraphs)
		for _, conv := range []segment.Convention{segment.BracketTag, segment.DottedNumeral} {
			fmt.Fprintf(os.Stdout, "%-12s %d\n", conv.String()+" ids", r.Markers[conv.String()])
		}
		if conv, ok := r.Suggested(); ok {
			fmt.Fprintf(os.Stdout, "%-12s %s\n", "convention", conv)
		}
	}
	for _, p := range r.Problems {
		fmt.Fprintf(os.Stdout, "problem: %s\n", p)
	}
}
