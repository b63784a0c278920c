package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jonathan/career-path/internal/pipeline"
	"github.com/jonathan/career-path/internal/progress"
	"github.com/jonathan/career-path/internal/skills"
	"github.com/jonathan/career-path/internal/types"
	"github.com/jonathan/career-path/internal/validation"
)

// maxTargetJobs caps target jobs after deduplication; validation already rejects more.
const maxTargetJobs = 5

// RoadmapResponse represents the response for roadmap generation
type RoadmapResponse struct {
	RoadmapID      string                `json:"roadmap_id"`
	Nodes          []types.GraphNode     `json:"nodes"`
	Edges          []types.GraphEdge     `json:"edges"`
	Milestones     []types.Milestone     `json:"milestones"`
	SkillGaps      []types.GapEntry      `json:"skill_gaps"`
	Courses        []types.Course        `json:"courses"`
	Projects       []types.Project       `json:"projects"`
	Certifications []types.Certification `json:"certifications"`
	FitScore       int                   `json:"fit_score"`
	MatchedSkills  []string              `json:"matched_skills"`
	CurrentSkills  []string              `json:"current_skills"`
	CriticalReview *types.CriticalReview `json:"critical_review"`
	WorkflowStatus types.WorkflowStatus  `json:"workflow_status"`
	Error          string                `json:"error,omitempty"`
	DegradedStages []string              `json:"degraded_stages,omitempty"`
}

// ProgressResponse represents the response for progress lookups and updates
type ProgressResponse struct {
	Progress             *types.RoadmapProgress   `json:"progress"`
	CompletionPercentage float64                  `json:"completion_percentage"`
	Statistics           types.ProgressStatistics `json:"statistics"`
}

// HealthCheck is the outcome of one health probe.
type HealthCheck struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// HealthResponse represents the response for /health
type HealthResponse struct {
	Status              string                 `json:"status"`
	WorkflowInitialized bool                   `json:"workflow_initialized"`
	Checks              map[string]HealthCheck `json:"checks"`
}

// handleHealth reports whether the pipeline is wired and the backend is reachable.
// It always answers 200; a failing check turns the status to degraded.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:              "healthy",
		WorkflowInitialized: s.runner != nil,
		Checks:              map[string]HealthCheck{},
	}

	if s.cfg.APIKeyConfigured {
		resp.Checks["credentials"] = HealthCheck{OK: true, Message: "API key configured"}
	} else {
		resp.Checks["credentials"] = HealthCheck{OK: false, Message: "no API key configured"}
	}

	if s.backend != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.backend.Ping(ctx); err != nil {
			resp.Checks["backend"] = HealthCheck{OK: false, Message: "backend error: " + err.Error()}
		} else {
			resp.Checks["backend"] = HealthCheck{OK: true, Message: "backend reachable"}
		}
	}

	for _, check := range resp.Checks {
		if !check.OK {
			resp.Status = "degraded"
		}
	}
	if !resp.WorkflowInitialized {
		resp.Status = "degraded"
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// decodeRoadmapRequest decodes and validates a generation request, writing the
// error response itself when it returns false.
func (s *Server) decodeRoadmapRequest(w http.ResponseWriter, r *http.Request) (*types.RoadmapRequest, bool) {
	var req types.RoadmapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return nil, false
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, err)
		return nil, false
	}
	if err := validation.ValidateTargetJobs(req.TargetJobs); err != nil {
		s.writeError(w, err)
		return nil, false
	}
	if err := validation.ValidateResumeText(req.ResumeText, validation.MinResumeLength, validation.MaxResumeLength); err != nil {
		s.writeError(w, err)
		return nil, false
	}
	if s.runner == nil {
		s.logger.Error("roadmap requested but the pipeline is not initialized")
		s.errorResponse(w, http.StatusInternalServerError, "Workflow not initialized")
		return nil, false
	}
	return &req, true
}

// pipelineInput builds the run input, fetching the job posting when only a URL was given.
// A failed fetch is logged and the run proceeds without a posting.
func (s *Server) pipelineInput(ctx context.Context, req *types.RoadmapRequest) pipeline.Input {
	description := req.JobDescription
	if description == "" && req.JobURL != "" && s.fetchJob != nil {
		text, err := s.fetchJob(ctx, req.JobURL)
		if err != nil {
			s.logger.Warn("fetching job posting %s failed: %v", req.JobURL, err)
		} else {
			description = text
		}
	}

	return pipeline.Input{
		ResumeText:     req.ResumeText,
		TargetJobs:     validation.SanitizeList(req.TargetJobs, maxTargetJobs),
		JobDescription: description,
		SpecialtyFocus: req.SpecialtyInfo,
	}
}

// runRoadmap executes the pipeline under the workflow timeout and starts
// progress tracking for the resulting gaps.
func (s *Server) runRoadmap(ctx context.Context, req *types.RoadmapRequest, opts pipeline.RunOptions) RoadmapResponse {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.WorkflowTimeout)
	defer cancel()

	in := s.pipelineInput(ctx, req)
	s.logger.Info("generating roadmap for %d jobs", len(in.TargetJobs))
	state := s.runner.RunWithOptions(ctx, in, opts)

	roadmapID := progress.NewRoadmapID()
	gapSkills := make([]string, 0, len(state.SkillGaps))
	for _, gap := range state.SkillGaps {
		gapSkills = append(gapSkills, gap.Skill)
	}
	s.tracker.Create(roadmapID, req.UserID, gapSkills)

	s.logger.Info("roadmap %s generated with %d nodes", roadmapID, len(state.Nodes))
	return newRoadmapResponse(roadmapID, state)
}

func newRoadmapResponse(roadmapID string, state *types.PipelineState) RoadmapResponse {
	return RoadmapResponse{
		RoadmapID:      roadmapID,
		Nodes:          state.Nodes,
		Edges:          state.Edges,
		Milestones:     state.Milestones,
		SkillGaps:      state.SkillGaps,
		Courses:        state.Courses,
		Projects:       state.Projects,
		Certifications: state.Certifications,
		FitScore:       state.FitScore,
		MatchedSkills:  state.MatchedSkills,
		CurrentSkills:  state.CurrentSkills,
		CriticalReview: state.CriticalReview,
		WorkflowStatus: state.WorkflowStatus,
		Error:          state.Error,
		DegradedStages: state.DegradedStages,
	}
}

// handleGenerate runs the pipeline and returns the roadmap. Degraded runs still answer 200.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRoadmapRequest(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, s.runRoadmap(r.Context(), req, pipeline.RunOptions{}))
}

// handleGenerateStream runs the pipeline and streams a stage event after every
// stage, then the result.
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRoadmapRequest(w, r)
	if !ok {
		return
	}

	stream, err := newRoadmapStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	opts := pipeline.RunOptions{
		OnProgress: func(event pipeline.ProgressEvent) {
			if err := stream.WriteStage(event); err != nil {
				s.logger.Debug("stream client gone: %v", err)
			}
		},
	}
	resp := s.runRoadmap(r.Context(), req, opts)

	if err := stream.WriteResult(resp); err != nil {
		s.logger.Warn("writing stream result failed: %v", err)
		return
	}
	if err := stream.WriteComplete(resp); err != nil {
		s.logger.Debug("stream client gone: %v", err)
	}
}

func (s *Server) progressResponse(p *types.RoadmapProgress) ProgressResponse {
	return ProgressResponse{
		Progress:             p,
		CompletionPercentage: s.tracker.CompletionPercentage(p.RoadmapID),
		Statistics:           s.tracker.Statistics(p.RoadmapID),
	}
}

// handleGetProgress returns the progress of a roadmap
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, ok := s.tracker.Get(id)
	if !ok {
		s.writeError(w, progress.ErrRoadmapNotFound)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.progressResponse(p))
}

// handleUpdateProgress sets the status of one skill on a roadmap
func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	skill := r.PathValue("skill")

	var req types.ProgressUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	notes := validation.SanitizeText(req.Notes, 2000)
	if _, err := s.tracker.UpdateSkillStatus(id, skill, req.Status, notes); err != nil {
		s.writeError(w, err)
		return
	}

	p, ok := s.tracker.Get(id)
	if !ok {
		s.writeError(w, progress.ErrRoadmapNotFound)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.progressResponse(p))
}

// handleCompare compares two career paths against the caller's current skills
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req types.CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	result := skills.CompareCareerPaths(req.CurrentSkills, req.Path1Skills, req.Path2Skills, req.Path1Name, req.Path2Name)
	s.jsonResponse(w, http.StatusOK, result)
}

// handleEffort estimates the learning effort for a set of skill gaps
func (s *Server) handleEffort(w http.ResponseWriter, r *http.Request) {
	var req types.EffortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, skills.CalculateLearningEffort(req.SkillGaps, req.DifficultyMap))
}

// handleCacheStats returns response cache counters
func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	if s.cache == nil {
		s.jsonResponse(w, http.StatusOK, map[string]any{"enabled": false})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"enabled": true, "stats": s.cache.Stats()})
}

// handleCacheClear empties the response cache
func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		s.jsonResponse(w, http.StatusOK, map[string]any{"enabled": false, "cleared": false})
		return
	}
	if err := s.cache.Clear(r.Context()); err != nil {
		s.logger.Error("cache clear failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to clear cache")
		return
	}
	s.logger.Info("response cache cleared")
	s.jsonResponse(w, http.StatusOK, map[string]any{"enabled": true, "cleared": true})
}

// handleRateLimitStats returns the caller's usage of the generation endpoint
func (s *Server) handleRateLimitStats(w http.ResponseWriter, r *http.Request) {
	clientID := s.extractClientID(r)
	const endpoint = "/api/roadmaps/generate"
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"client_id": clientID,
		"endpoint":  endpoint,
		"stats":     s.rateLimiter.Stats(clientID, endpoint, http.MethodPost),
	})
}
