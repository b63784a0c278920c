package pipeline

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/career-path/internal/llm"
	"github.com/jonathan/career-path/internal/prompts"
	"github.com/jonathan/career-path/internal/types"
	"github.com/jonathan/career-path/internal/validation"
)

// maxKeyTerms bounds how many posting keywords are suggested to the model.
const maxKeyTerms = 20

type jobRequirements struct {
	Required   []string `json:"required"`
	NiceToHave []string `json:"nice_to_have"`
}

type jobResult struct {
	required   []string
	niceToHave []string
	err        error
}

// parseJobs extracts requirements for every target job concurrently. A job
// whose call fails gets empty lists; the other jobs keep their results.
func (r *Runner) parseJobs(ctx context.Context, state *types.PipelineState) Update {
	jobs := state.TargetJobs
	if len(jobs) == 0 {
		return Update{}
	}

	var posting string
	if strings.TrimSpace(state.JobDescription) != "" {
		posting = truncateRunes(state.JobDescription, r.opts.MaxResumeLength*2)
		posting = validation.GuardPromptInput(posting, "job description", r.logger)
	}

	results := make([]jobResult, len(jobs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.MaxConcurrentJobCalls)
	for i, job := range jobs {
		g.Go(func() error {
			defer func() {
				if rec := recover(); rec != nil {
					results[i] = jobResult{err: fmt.Errorf("panicked: %v", rec)}
				}
			}()
			required, nice, err := r.parseJob(gCtx, job, posting, state.SpecialtyFocus)
			results[i] = jobResult{required: required, niceToHave: nice, err: err}
			return nil
		})
	}
	_ = g.Wait()

	required := make(map[string][]string, len(jobs))
	niceToHave := make(map[string][]string, len(jobs))
	var failures []string
	for i, job := range jobs {
		res := results[i]
		if res.err != nil {
			failures = append(failures, fmt.Sprintf("job %q: %v", job, res.err))
			required[job] = []string{}
			niceToHave[job] = []string{}
			continue
		}
		required[job] = res.required
		niceToHave[job] = res.niceToHave
	}

	update := Update{
		Apply: func(s *types.PipelineState) {
			s.RequiredSkills = required
			s.NiceToHaveSkills = niceToHave
		},
	}
	if len(failures) > 0 {
		update.Err = fmt.Errorf("parsing %d of %d jobs failed: %s", len(failures), len(jobs), strings.Join(failures, "; "))
	}
	return update
}

func (r *Runner) parseJob(ctx context.Context, job, posting, specialty string) ([]string, []string, error) {
	prompt, err := r.jobPrompt(job, posting, specialty)
	if err != nil {
		return nil, nil, err
	}

	var result jobRequirements
	if err := r.callStructured(ctx, llm.StageJobParser, prompt, &result); err != nil {
		return nil, nil, err
	}
	return cleanSkills(result.Required), cleanSkills(result.NiceToHave), nil
}

func (r *Runner) jobPrompt(job, posting, specialty string) (string, error) {
	data := map[string]string{
		"JobTitle":       job,
		"SpecialtyFocus": "",
		"KeyTerms":       "",
	}

	if specialty = strings.TrimSpace(specialty); specialty != "" {
		section, err := prompts.Render(prompts.RoadmapFile, "parse-job-specialty", map[string]string{"Specialty": specialty})
		if err != nil {
			return "", err
		}
		data["SpecialtyFocus"] = section
	}

	input := ""
	if posting != "" {
		terms := validation.ExtractKeywords(posting, 3, maxKeyTerms)
		if len(terms) > 0 {
			section, err := prompts.Render(prompts.RoadmapFile, "parse-job-key-terms", map[string]string{"Terms": strings.Join(terms, ", ")})
			if err != nil {
				return "", err
			}
			data["KeyTerms"] = section
		}
		input = validation.QuoteExternalContent(posting, "job description")
	}

	desc, err := prompts.Render(prompts.RoadmapFile, "parse-job", data)
	if err != nil {
		return "", err
	}
	return llm.BuildExtractionPrompt(llm.JobRequirementsSchema(desc), input), nil
}
