package main

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/career-path/internal/observability"
	"github.com/jonathan/career-path/internal/skills"
	"github.com/jonathan/career-path/internal/types"
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare two career paths against your current skills",
	Long: `Compares the skills two career paths require against the skills you already have and
recommends the path with fewer gaps. No reasoning service is needed.

Example:
  career_path compare --current python,sql --path1 python,aws --path2 python,azure --name1 "AWS" --name2 "Azure"`,
	RunE: runCompareCmd,
}

var (
	compareCurrent []string
	comparePath1   []string
	comparePath2   []string
	compareName1   string
	compareName2   string
	compareJSON    bool
)

func init() {
	compareCmd.Flags().StringSliceVar(&compareCurrent, "current", nil, "Current skills (comma-separated)")
	compareCmd.Flags().StringSliceVar(&comparePath1, "path1", nil, "Skills required by the first path (comma-separated)")
	compareCmd.Flags().StringSliceVar(&comparePath2, "path2", nil, "Skills required by the second path (comma-separated)")
	compareCmd.Flags().StringVar(&compareName1, "name1", "", "Name of the first path")
	compareCmd.Flags().StringVar(&compareName2, "name2", "", "Name of the second path")
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "Print the comparison as JSON")

	rootCmd.AddCommand(compareCmd)
}

func runCompareCmd(cmd *cobra.Command, _ []string) error {
	req := types.CompareRequest{
		CurrentSkills: compareCurrent,
		Path1Skills:   comparePath1,
		Path2Skills:   comparePath2,
		Path1Name:     compareName1,
		Path2Name:     compareName2,
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	cmp := skills.CompareCareerPaths(req.CurrentSkills, req.Path1Skills, req.Path2Skills, req.Path1Name, req.Path2Name)

	if compareJSON {
		data, err := json.MarshalIndent(cmp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal comparison: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintComparison(&cmp)
	return nil
}
