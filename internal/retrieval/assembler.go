// Package retrieval assembles the bounded prompt context for a question:
// similarity search over the user's chunks, biased by the query
// classifier, capped and deduplicated before generation.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/expense-assistant/backend/internal/classifier"
	"github.com/expense-assistant/backend/internal/llm"
	"github.com/expense-assistant/backend/internal/models"
	"github.com/expense-assistant/backend/internal/vectorindex"
)

// Options tune context assembly.
type Options struct {
	// TopK is how many similarity hits to pull from the index.
	TopK int
	// MaxChunks caps the assembled context size in chunks.
	MaxChunks int
	// MaxContextChars caps the combined character length of the context;
	// lowest-ranked chunks are dropped first.
	MaxContextChars int
	// MatchBoost is the additive score bonus for chunks matching a
	// category or temporal classification. Additive rather than
	// multiplicative so the bias cannot run away.
	MatchBoost float64
}

// DefaultOptions mirror the configuration defaults.
func DefaultOptions() Options {
	return Options{
		TopK:            5,
		MaxChunks:       6,
		MaxContextChars: 4000,
		MatchBoost:      0.15,
	}
}

// Prompt is the assembled payload handed to the answer generator.
type Prompt struct {
	Context        string
	Question       string
	Classification classifier.Classification
	Chunks         []models.ScoredChunk
}

// Sources lists the kinds of the chunks backing the context, in rank
// order.
func (p *Prompt) Sources() []string {
	sources := make([]string, 0, len(p.Chunks))
	for _, sc := range p.Chunks {
		sources = append(sources, string(sc.Chunk.Kind))
	}
	return sources
}

// Assembler runs retrieval for one (namespace, question) pair at a time.
// It is stateless between calls and safe for concurrent use.
type Assembler struct {
	index    vectorindex.Index
	embedder llm.Embedder
	opts     Options
}

// NewAssembler wires an assembler to its collaborators.
func NewAssembler(index vectorindex.Index, embedder llm.Embedder, opts Options) *Assembler {
	if opts.TopK <= 0 {
		opts.TopK = DefaultOptions().TopK
	}
	if opts.MaxChunks <= 0 {
		opts.MaxChunks = DefaultOptions().MaxChunks
	}
	if opts.MaxContextChars <= 0 {
		opts.MaxContextChars = DefaultOptions().MaxContextChars
	}
	if opts.MatchBoost <= 0 {
		opts.MatchBoost = DefaultOptions().MatchBoost
	}
	return &Assembler{index: index, embedder: embedder, opts: opts}
}

// Assemble builds the prompt context for a question within a user
// namespace. It fails with models.ErrNoData when the namespace holds no
// chunks (the generator must never see empty context) and with
// *models.EmbeddingError when the embedding collaborator fails.
func (a *Assembler) Assemble(ctx context.Context, namespace, question string) (*Prompt, error) {
	count, err := a.index.Count(ctx, namespace)
	if err != nil {
		return nil, fmt.Errorf("counting chunks for %s: %w", namespace, err)
	}
	if count == 0 {
		return nil, models.ErrNoData
	}

	categories, err := a.index.Categories(ctx, namespace)
	if err != nil {
		return nil, fmt.Errorf("loading categories for %s: %w", namespace, err)
	}
	cls := classifier.Classify(question, categories)

	vector, err := a.embedder.Embed(ctx, question)
	if err != nil {
		return nil, &models.EmbeddingError{Err: err}
	}

	hits, err := a.index.Query(ctx, namespace, vector, a.opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("querying index for %s: %w", namespace, err)
	}

	hits, err = a.applyBias(ctx, namespace, cls, hits)
	if err != nil {
		return nil, err
	}

	selected := a.capContext(dedupe(hits))

	texts := make([]string, 0, len(selected))
	for _, sc := range selected {
		texts = append(texts, sc.Chunk.Text)
	}

	return &Prompt{
		Context:        strings.Join(texts, "\n\n"),
		Question:       question,
		Classification: cls,
		Chunks:         selected,
	}, nil
}

// applyBias adjusts the similarity ranking according to the classifier
// verdict. Aggregate questions force-include the overall chunk above all
// similarity hits; category and temporal questions get an additive boost
// on matching chunks before re-ranking.
func (a *Assembler) applyBias(ctx context.Context, namespace string, cls classifier.Classification, hits []models.ScoredChunk) ([]models.ScoredChunk, error) {
	switch cls.Kind {
	case classifier.KindAggregate:
		return a.forceIncludeOverall(ctx, namespace, hits)

	case classifier.KindCategory:
		for i, sc := range hits {
			if sc.Chunk.Kind == models.ChunkKindCategory &&
				strings.EqualFold(sc.Chunk.Metadata["category"], cls.Category) {
				hits[i].Score += a.opts.MatchBoost
			}
		}

	case classifier.KindTemporal:
		for i, sc := range hits {
			if sc.Chunk.Kind == models.ChunkKindMonth && monthMatches(sc.Chunk.Metadata["month"], cls.Month) {
				hits[i].Score += a.opts.MatchBoost
			}
		}
	}

	rank(hits)
	return hits, nil
}

// forceIncludeOverall guarantees the overall chunk leads the context for
// aggregate questions. Similarity search on short aggregate questions is
// unreliable because the overall chunk's text rarely resembles the
// question, so the override takes precedence over pure ranking.
func (a *Assembler) forceIncludeOverall(ctx context.Context, namespace string, hits []models.ScoredChunk) ([]models.ScoredChunk, error) {
	topScore := 0.0
	for _, sc := range hits {
		if sc.Score > topScore {
			topScore = sc.Score
		}
		if sc.Chunk.Kind == models.ChunkKindOverall {
			// Already retrieved; promote it to the top.
			for i := range hits {
				if hits[i].Chunk.Kind == models.ChunkKindOverall {
					hits[i].Score = topScore + a.opts.MatchBoost
				}
			}
			rank(hits)
			return hits, nil
		}
	}

	overall, err := a.index.GetByKind(ctx, namespace, models.ChunkKindOverall)
	if err != nil {
		return nil, fmt.Errorf("fetching overall chunk for %s: %w", namespace, err)
	}
	if len(overall) == 0 {
		// Namespace without an overall chunk should not happen for data
		// written by the synthesizer; fall back to the similarity hits.
		return hits, nil
	}

	hits = append(hits, models.ScoredChunk{
		Chunk: overall[0],
		Score: topScore + a.opts.MatchBoost,
	})
	rank(hits)
	return hits, nil
}

// monthMatches compares a chunk's "YYYY-MM" month against a classified
// month, which is either a full "YYYY-MM" or a bare "MM" when the year is
// unknown.
func monthMatches(chunkMonth, classified string) bool {
	if chunkMonth == "" || classified == "" {
		return false
	}
	if len(classified) == 2 {
		return strings.HasSuffix(chunkMonth, "-"+classified)
	}
	return chunkMonth == classified
}

// rank sorts by descending score with chunk id as the deterministic
// tie-break.
func rank(hits []models.ScoredChunk) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Chunk.ID < hits[j].Chunk.ID
	})
}

// dedupe removes repeated chunk ids, keeping the first (highest-ranked)
// occurrence. Input must already be ranked.
func dedupe(hits []models.ScoredChunk) []models.ScoredChunk {
	seen := make(map[string]struct{}, len(hits))
	out := hits[:0]
	for _, sc := range hits {
		if _, ok := seen[sc.Chunk.ID]; ok {
			continue
		}
		seen[sc.Chunk.ID] = struct{}{}
		out = append(out, sc)
	}
	return out
}

// capContext enforces the chunk-count and character budgets, dropping
// lowest-ranked chunks first.
func (a *Assembler) capContext(hits []models.ScoredChunk) []models.ScoredChunk {
	if len(hits) > a.opts.MaxChunks {
		hits = hits[:a.opts.MaxChunks]
	}
	chars := 0
	for i, sc := range hits {
		if i > 0 {
			chars += 2 // separator
		}
		chars += len(sc.Chunk.Text)
		// Always keep the top-ranked chunk so the context is never empty.
		if chars > a.opts.MaxContextChars && i > 0 {
			return hits[:i]
		}
	}
	return hits
}
