package service

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/onboardiq/onboardiq/internal/domain"
	"github.com/onboardiq/onboardiq/internal/telemetry"
)

const (
	// answerTopK is how many matches ground a synthesized answer.
	answerTopK = 3
	// answerSimilarityFloor filters matches too weak to cite.
	answerSimilarityFloor = domain.MediumRelevanceThreshold
	// answerCacheTTL bounds how long an answer is reused.
	answerCacheTTL = time.Hour
	// sourceExcerptLen bounds cited excerpts, in runes.
	sourceExcerptLen = 200

	confidenceNoResults         = 0.2
	confidenceLowSimilarity     = 0.4
	confidenceCompletionFailure = 0.1
)

// localeNames maps locale codes to the language name used in prompts.
var localeNames = map[string]string{
	"en": "English",
	"uk": "Ukrainian",
	"de": "German",
	"es": "Spanish",
	"fr": "French",
}

// AnswerService synthesizes grounded answers to onboarding questions
// from the vector index.
type AnswerService struct {
	index    VectorIndex
	embedder EmbeddingClient
	cache    ResultCache
	locale   string
}

func NewAnswerService(index VectorIndex, embedder EmbeddingClient, cache ResultCache, locale string) *AnswerService {
	if locale == "" {
		locale = "en"
	}
	return &AnswerService{
		index:    index,
		embedder: embedder,
		cache:    cache,
		locale:   locale,
	}
}

// Answer retrieves the most relevant knowledge for a question and asks
// the completion model to answer from it. The result is always a
// package: retrieval and synthesis failures degrade to a low-confidence
// fallback rather than an error. Only invalid input and missing
// configuration surface as errors.
func (a *AnswerService) Answer(ctx context.Context, question, roleContext string) (*domain.AnswerPackage, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrEmptyQuestion
	}

	ctx, span := telemetry.StartSpan(ctx, "answer.contextual", telemetry.SpanAttributes{
		Operation: "contextual_answer",
	})
	defer span.End()

	cacheKey := answerCacheKey(question, roleContext)
	if data, err := a.cache.Get(ctx, cacheKey); err == nil {
		var cached domain.AnswerPackage
		if err := json.Unmarshal(data, &cached); err == nil {
			telemetry.AddBreadcrumb(ctx, "answer", "served from cache")
			return &cached, nil
		}
	}

	pkg := &domain.AnswerPackage{
		Question:    question,
		RoleContext: roleContext,
		Sources:     []domain.AnswerSource{},
	}

	matches, err := a.retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	if len(matches) == 0 {
		pkg.Answer = "No knowledge is available for this question yet. Try again after the knowledge base has been vectorized."
		pkg.Confidence = confidenceNoResults
		return pkg, nil
	}

	relevant := make([]VectorMatch, 0, len(matches))
	for _, m := range matches {
		if m.Score > answerSimilarityFloor {
			relevant = append(relevant, m)
		}
	}

	if len(relevant) == 0 {
		// context was found, just none of it strong enough to answer from
		pkg.ContextFound = true
		pkg.Sources = answerSources(matches)
		pkg.Answer = "The knowledge base has no sufficiently relevant information for this question. Try rephrasing it or ask your manager."
		pkg.Confidence = confidenceLowSimilarity
		return pkg, nil
	}

	pkg.ContextFound = true
	pkg.Sources = answerSources(relevant)

	answer, err := a.embedder.Complete(ctx, a.buildPrompt(question, roleContext, relevant))
	if err != nil {
		if isConfigurationError(err) {
			return nil, err
		}
		span.SetError(err)
		log.Printf("answer: completion failed: %v", err)
		pkg.Answer = "An answer could not be generated right now. Please try again."
		pkg.Confidence = confidenceCompletionFailure
		pkg.ContextFound = false
		pkg.Sources = []domain.AnswerSource{}
		return pkg, nil
	}

	pkg.Answer = strings.TrimSpace(answer)
	pkg.Confidence = meanScore(matches)

	a.cachePackage(ctx, cacheKey, pkg)
	return pkg, nil
}

// retrieve embeds the question and queries the top matches. Transient
// failures degrade to no matches; configuration errors surface.
func (a *AnswerService) retrieve(ctx context.Context, question string) ([]VectorMatch, error) {
	embeddings, err := a.embedder.Embed(ctx, []string{question})
	if err != nil {
		if isConfigurationError(err) {
			return nil, err
		}
		log.Printf("answer: embedding question failed: %v", err)
		return nil, nil
	}

	matches, err := a.index.Query(ctx, embeddings[0], answerTopK)
	if err != nil {
		if isConfigurationError(err) {
			return nil, err
		}
		log.Printf("answer: vector query failed: %v", err)
		return nil, nil
	}
	return matches, nil
}

func (a *AnswerService) buildPrompt(question, roleContext string, matches []VectorMatch) string {
	var contexts strings.Builder
	for i, m := range matches {
		fmt.Fprintf(&contexts, "[%d] %s\n\n", i+1, m.Content)
	}

	language := localeNames[a.locale]
	if language == "" {
		language = a.locale
	}

	var b strings.Builder
	b.WriteString("You are an onboarding assistant helping a new employee.\n\n")
	b.WriteString("Company knowledge base context:\n")
	b.WriteString(contexts.String())
	if roleContext != "" {
		fmt.Fprintf(&b, "The employee's role: %s\n\n", roleContext)
	}
	fmt.Fprintf(&b, "Question: %s\n\n", question)
	fmt.Fprintf(&b, "Answer using only the context above. If the context does not contain the answer, say so honestly. Reply in %s.", language)
	return b.String()
}

func (a *AnswerService) cachePackage(ctx context.Context, key string, pkg *domain.AnswerPackage) {
	data, err := json.Marshal(pkg)
	if err != nil {
		log.Printf("answer: marshaling answer package: %v", err)
		return
	}
	if err := a.cache.Set(ctx, key, data, answerCacheTTL); err != nil {
		log.Printf("answer: caching answer package: %v", err)
	}
}

// answerCacheKey derives a stable key from the normalized question and
// role, so equivalent questions share one cache entry.
func answerCacheKey(question, roleContext string) string {
	normalized := strings.ToLower(strings.TrimSpace(question)) + "|" + strings.ToLower(strings.TrimSpace(roleContext))
	return fmt.Sprintf("qa:%x", sha256.Sum256([]byte(normalized)))
}

// answerSources maps vector matches onto citation entries.
func answerSources(matches []VectorMatch) []domain.AnswerSource {
	sources := make([]domain.AnswerSource, 0, len(matches))
	for _, m := range matches {
		sources = append(sources, domain.AnswerSource{
			Excerpt:    excerpt(m.Content, sourceExcerptLen),
			Source:     sourceName(m.Metadata),
			Type:       m.Metadata["type"],
			Similarity: m.Score,
		})
	}
	return sources
}

// excerpt truncates content to at most n runes.
func excerpt(content string, n int) string {
	runes := []rune(content)
	if len(runes) <= n {
		return content
	}
	return string(runes[:n])
}

// sourceName prefers the record name, falling back to its table.
func sourceName(metadata map[string]string) string {
	if name := metadata["name"]; name != "" {
		return name
	}
	if table := metadata["source_table"]; table != "" {
		return table
	}
	return "unknown"
}

// meanScore averages similarity over the retrieved (unfiltered) matches.
func meanScore(matches []VectorMatch) float64 {
	if len(matches) == 0 {
		return 0
	}
	var sum float64
	for _, m := range matches {
		sum += m.Score
	}
	return sum / float64(len(matches))
}
