// Package ctxfilter implements C3: reducing a FullContext to the view an
// agent of a given kind is allowed to see, honoring per-kind field
// allowlists and size caps (spec §4.3).
package ctxfilter

import (
	"github.com/tailored-agentic-units/orchestrator/orchestrate/orchestrator"
)

const (
	defaultMaxFiles        = 10
	defaultMaxDependencies = 5
)

// Options tunes the reduction. Zero-value Options uses the spec defaults.
type Options struct {
	MaxFiles            int
	MaxDependencies     int
	IncludeErrorContext bool
	AttemptNumber       int
	ErrorContext        string
}

func (o Options) maxFiles() int {
	if o.MaxFiles > 0 {
		return o.MaxFiles
	}
	return defaultMaxFiles
}

// View is a closed sum of the three possible filtered views. Exactly one of
// Full/Worker/QC is non-nil, reflecting which agentKind produced it.
type View struct {
	Full   *orchestrator.FullContext
	Worker *orchestrator.WorkerContext
	QC     *orchestrator.QCContext
}

// Filter reduces full to the view appropriate for agentKind.
func Filter(full orchestrator.FullContext, agentKind orchestrator.AgentKind, opts Options) View {
	switch agentKind {
	case orchestrator.KindPM:
		clone := full
		clone.Files = append([]string(nil), full.Files...)
		clone.AllFiles = append([]string(nil), full.AllFiles...)
		return View{Full: &clone}

	case orchestrator.KindQC:
		worker := buildWorkerContext(full, opts)
		return View{QC: &orchestrator.QCContext{
			WorkerContext:        worker,
			OriginalRequirements: full.Requirements,
			VerificationCriteria: nil,
			WorkerOutput:         "",
		}}

	default: // orchestrator.KindWorker and any other value default to worker policy
		worker := buildWorkerContext(full, opts)
		return View{Worker: &worker}
	}
}

// FilterQC is the QC-specific entry point, since QCContext additionally
// needs verificationCriteria and workerOutput which are not part of
// FullContext (they come from the task definition and the worker's prior
// attempt, respectively).
func FilterQC(full orchestrator.FullContext, criteria []string, workerOutput string, opts Options) orchestrator.QCContext {
	worker := buildWorkerContext(full, opts)
	return orchestrator.QCContext{
		WorkerContext:        worker,
		OriginalRequirements: full.Requirements,
		VerificationCriteria: append([]string(nil), criteria...),
		WorkerOutput:         workerOutput,
	}
}

func buildWorkerContext(full orchestrator.FullContext, opts Options) orchestrator.WorkerContext {
	files := full.Files
	if max := opts.maxFiles(); len(files) > max {
		files = files[:max]
	}

	w := orchestrator.WorkerContext{
		TaskID:       full.TaskID,
		Title:        full.Title,
		Requirements: full.Requirements,
		Description:  full.Description,
		Files:        append([]string(nil), files...),
		Status:       full.Status,
		Priority:     full.Priority,
	}

	if opts.IncludeErrorContext {
		w.AttemptNumber = opts.AttemptNumber
		w.ErrorContext = opts.ErrorContext
	}

	return w
}

// byteSize approximates the serialized size of a context by summing the
// lengths of its string-valued fields and collection elements. It is a
// metric for the reduction-ratio property (spec §4.3, §8), not a wire
// format.
func byteSize(full orchestrator.FullContext) int {
	n := len(full.TaskID) + len(full.Title) + len(full.Requirements) + len(full.Description)
	n += len(full.Research) + len(full.PlanningNotes) + len(full.FullSubgraph)
	for _, f := range full.Files {
		n += len(f)
	}
	for _, f := range full.AllFiles {
		n += len(f)
	}
	return n
}

func workerByteSize(w orchestrator.WorkerContext) int {
	n := len(w.TaskID) + len(w.Title) + len(w.Requirements) + len(w.Description) + len(w.ErrorContext)
	for _, f := range w.Files {
		n += len(f)
	}
	return n
}

// Metrics computes the reduction metrics for full -> the default worker
// view of full (spec §4.3's metrics(full, view) contract).
func Metrics(full orchestrator.FullContext, opts Options) orchestrator.FilterMetrics {
	worker := buildWorkerContext(full, opts)

	original := byteSize(full)
	filtered := workerByteSize(worker)

	var reduction float64
	if original > 0 {
		reduction = 100 * (1 - float64(filtered)/float64(original))
	}

	return orchestrator.FilterMetrics{
		OriginalSize:     original,
		FilteredSize:     filtered,
		ReductionPercent: reduction,
		FieldsRemoved:    []string{"research", "planningNotes", "allFiles", "fullSubgraph"},
		FieldsRetained:   []string{"taskId", "title", "requirements", "description", "files", "status", "priority"},
	}
}
