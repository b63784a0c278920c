package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/career-path/internal/ingestion"
	"github.com/jonathan/career-path/internal/observability"
	"github.com/jonathan/career-path/internal/pipeline"
	"github.com/jonathan/career-path/internal/types"
	"github.com/jonathan/career-path/internal/validation"
	"github.com/spf13/cobra"
)

var roadmapCmd = &cobra.Command{
	Use:   "roadmap",
	Short: "Generate a career roadmap from a resume",
	Long: `Runs the full roadmap pipeline once: resume analysis -> job parsing -> gap analysis ->
learning path -> critical review -> roadmap graph.

The resume may be a .txt, .md, .pdf or .docx file. Repeat --job for each target role.`,
	RunE: runRoadmapCmd,
}

var (
	roadmapResume         string
	roadmapJobs           []string
	roadmapJobDescription string
	roadmapJobURL         string
	roadmapSpecialty      string
	roadmapOut            string
	roadmapVerbose        bool
)

func init() {
	roadmapCmd.Flags().StringVarP(&roadmapResume, "resume", "r", "", "Path to resume file (.txt, .md, .pdf, .docx)")
	roadmapCmd.Flags().StringArrayVarP(&roadmapJobs, "job", "j", nil, "Target job title (repeatable)")
	roadmapCmd.Flags().StringVar(&roadmapJobDescription, "job-description", "", "Path to a job posting text file")
	roadmapCmd.Flags().StringVar(&roadmapJobURL, "job-url", "", "URL to fetch a job posting from (ignored with --job-description)")
	roadmapCmd.Flags().StringVarP(&roadmapSpecialty, "specialty", "s", "", "Specialty focus, e.g. \"machine learning\"")
	roadmapCmd.Flags().StringVarP(&roadmapOut, "out", "o", "", "Write the roadmap JSON to this file")
	roadmapCmd.Flags().BoolVarP(&roadmapVerbose, "verbose", "v", false, "Print a report of every stage")

	_ = roadmapCmd.MarkFlagRequired("resume")
	rootCmd.AddCommand(roadmapCmd)
}

func runRoadmapCmd(cmd *cobra.Command, _ []string) error {
	req, err := roadmapRequestFromFlags()
	if err != nil {
		return err
	}

	cfg, err := loadAppConfig(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = roadmapVerbose
	}
	logger := newLogger(cfg)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	b, err := newBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	if req.JobDescription == "" && req.JobURL != "" {
		logger.Info("fetching job posting from %s", req.JobURL)
		text, err := ingestion.NewFetcher(nil).FetchJobDescription(ctx, req.JobURL)
		if err != nil {
			logger.Warn("continuing without job posting: %v", err)
		} else {
			req.JobDescription = text
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, cfg.WorkflowTimeout())
	defer cancel()

	state := b.runner.RunWithOptions(runCtx, pipeline.Input{
		ResumeText:     req.ResumeText,
		TargetJobs:     validation.SanitizeList(req.TargetJobs, cfg.MaxTargetJobs),
		JobDescription: req.JobDescription,
		SpecialtyFocus: req.SpecialtyInfo,
	}, pipeline.RunOptions{
		OnProgress: func(event pipeline.ProgressEvent) {
			if event.Degraded {
				logger.Warn("stage %s degraded after %dms: %s", event.Stage, event.Duration, event.Error)
				return
			}
			logger.Info("stage %s done in %dms", event.Stage, event.Duration)
		},
	})

	if cfg.Verbose {
		observability.NewPrinter(cmd.OutOrStdout()).PrintRun(state)
	}
	return writeRoadmap(cmd, state, cfg.Verbose)
}

// roadmapRequestFromFlags loads the input files and validates them with the
// same rules the API applies.
func roadmapRequestFromFlags() (*types.RoadmapRequest, error) {
	resumeText, err := ingestion.LoadResume(roadmapResume)
	if err != nil {
		return nil, err
	}

	req := &types.RoadmapRequest{
		ResumeText:    resumeText,
		TargetJobs:    roadmapJobs,
		JobURL:        strings.TrimSpace(roadmapJobURL),
		SpecialtyInfo: strings.TrimSpace(roadmapSpecialty),
	}
	if roadmapJobDescription != "" {
		data, err := os.ReadFile(roadmapJobDescription)
		if err != nil {
			return nil, fmt.Errorf("failed to read job description: %w", err)
		}
		req.JobDescription = ingestion.CleanText(string(data))
	}

	if len(req.TargetJobs) == 0 {
		return nil, fmt.Errorf("at least one --job must be provided")
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if err := validation.ValidateTargetJobs(req.TargetJobs); err != nil {
		return nil, err
	}
	if err := validation.ValidateResumeText(req.ResumeText, validation.MinResumeLength, validation.MaxResumeLength); err != nil {
		return nil, err
	}
	return req, nil
}

func writeRoadmap(cmd *cobra.Command, state *types.PipelineState, verbose bool) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal roadmap: %w", err)
	}

	if roadmapOut != "" {
		if err := os.WriteFile(roadmapOut, data, 0644); err != nil {
			return fmt.Errorf("failed to write roadmap: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Roadmap written to %s\n", roadmapOut)
		return nil
	}
	if !verbose {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	}
	return nil
}
