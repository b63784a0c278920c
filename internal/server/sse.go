package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonathan/career-path/internal/pipeline"
)

// roadmapStream writes one roadmap run as Server-Sent Events: a "stage" event
// per pipeline stage, then "result" with the roadmap, then "complete".
type roadmapStream struct {
	w        http.ResponseWriter
	flusher  http.Flusher
	stages   int
	degraded []string
}

// StreamSummary is the payload of the closing "complete" event.
type StreamSummary struct {
	RoadmapID      string   `json:"roadmap_id"`
	Status         string   `json:"status"`
	StagesRun      int      `json:"stages_run"`
	DegradedCount  int      `json:"degraded_count"`
	DegradedStages []string `json:"degraded_stages"`
	NodeCount      int      `json:"node_count"`
	FitScore       int      `json:"fit_score"`
}

func newRoadmapStream(w http.ResponseWriter) (*roadmapStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	return &roadmapStream{w: w, flusher: flusher, degraded: []string{}}, nil
}

func (s *roadmapStream) writeEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteStage sends a stage event and records whether the stage degraded.
func (s *roadmapStream) WriteStage(event pipeline.ProgressEvent) error {
	s.stages++
	if event.Degraded {
		s.degraded = append(s.degraded, string(event.Stage))
	}
	return s.writeEvent("stage", event)
}

// WriteResult sends the finished roadmap.
func (s *roadmapStream) WriteResult(resp RoadmapResponse) error {
	return s.writeEvent("result", resp)
}

// WriteComplete closes the stream with a summary of the run.
func (s *roadmapStream) WriteComplete(resp RoadmapResponse) error {
	return s.writeEvent("complete", StreamSummary{
		RoadmapID:      resp.RoadmapID,
		Status:         string(resp.WorkflowStatus),
		StagesRun:      s.stages,
		DegradedCount:  len(s.degraded),
		DegradedStages: s.degraded,
		NodeCount:      len(resp.Nodes),
		FitScore:       resp.FitScore,
	})
}
