package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kernelrag/internal/domain"
	"kernelrag/internal/workflow"
)

// ContextSeparator joins retrieved chunk texts into the context string.
const ContextSeparator = "\n\n---\n\n"

// Stage identifies a pipeline phase, reported to the observer as each phase
// begins so front ends can render progress.
type Stage int

const (
	StageEmbedding Stage = iota
	StageRetrieval
	StageAnswering
)

func (s Stage) String() string {
	switch s {
	case StageEmbedding:
		return "embedding"
	case StageRetrieval:
		return "retrieval"
	case StageAnswering:
		return "answering"
	}
	return "unknown"
}

// Observer receives stage-entry notifications during Ask.
type Observer func(stage Stage)

// Failure discriminates the terminal outcome of a query.
type Failure int

const (
	FailureNone Failure = iota
	FailureVectorization
	FailureRetrieval
	FailureNoContext
	FailureAnswer
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureVectorization:
		return "vectorization_failed"
	case FailureRetrieval:
		return "retrieval_failed"
	case FailureNoContext:
		return "no_context_found"
	case FailureAnswer:
		return "answer_failed"
	}
	return "unknown"
}

// Result is the single terminal outcome of one query. Exactly one of Answer
// (with FailureNone) or Failure is meaningful; Context carries the retrieved
// text whenever retrieval got that far.
type Result struct {
	Answer  string
	Context string
	Failure Failure
	Err     error
}

// Message renders a human-readable status for the result, suitable for
// showing in a transcript in place of an answer.
func (r Result) Message() string {
	var remote *workflow.RemoteExecutionError
	if r.Err != nil && errors.As(r.Err, &remote) {
		return "Server error: " + remote.Message
	}
	switch r.Failure {
	case FailureNone:
		return r.Answer
	case FailureVectorization:
		return "Failed to vectorize question."
	case FailureRetrieval:
		return fmt.Sprintf("Search failed: %v", r.Err)
	case FailureNoContext:
		return "No relevant documentation found."
	case FailureAnswer:
		return fmt.Sprintf("Error getting answer: %v", r.Err)
	}
	return "Unknown failure."
}

// Pipeline sequences embedding, retrieval and answering for one query at a
// time. A failure at any stage terminates the query; there are no retries.
type Pipeline struct {
	embedder domain.Embedder
	store    domain.VectorStore
	answerer domain.Answerer
	topK     int
	observer Observer
}

// New assembles a pipeline. topK <= 0 selects domain.DefaultTopK; observer
// may be nil. Results are taken in the store's score order, without
// re-ranking or deduplication.
func New(embedder domain.Embedder, store domain.VectorStore, answerer domain.Answerer, topK int, observer Observer) *Pipeline {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &Pipeline{
		embedder: embedder,
		store:    store,
		answerer: answerer,
		topK:     topK,
		observer: observer,
	}
}

// Ask runs the full query pipeline and always returns a terminal Result;
// errors from the steps never propagate past this boundary.
func (p *Pipeline) Ask(ctx context.Context, question string) Result {
	p.observe(StageEmbedding)
	vector, err := p.embedder.Embed(ctx, question)
	if err != nil {
		return Result{Failure: FailureVectorization, Err: err}
	}

	p.observe(StageRetrieval)
	hits, err := p.store.Search(ctx, vector, p.topK)
	if err != nil {
		return Result{Failure: FailureRetrieval, Err: fmt.Errorf("retrieval: %w", err)}
	}
	if len(hits) == 0 {
		// A valid terminal state, not an error: nothing relevant is stored.
		return Result{Failure: FailureNoContext}
	}
	docContext := BuildContext(hits)

	p.observe(StageAnswering)
	answer, err := p.answerer.Answer(ctx, question, docContext)
	if err != nil {
		return Result{Context: docContext, Failure: FailureAnswer, Err: err}
	}
	return Result{Answer: answer, Context: docContext}
}

// BuildContext concatenates chunk texts in the store's returned order.
func BuildContext(hits []domain.SearchResult) string {
	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Chunk.Text
	}
	return strings.Join(texts, ContextSeparator)
}

func (p *Pipeline) observe(stage Stage) {
	if p.observer != nil {
		p.observer(stage)
	}
}
