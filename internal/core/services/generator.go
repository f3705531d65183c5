package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driven"
	"github.com/datacraft-labs/sftgen-cli/internal/logger"
)

// Ensure Generator accepts custom prompt templates.
var _ driven.PromptStoreAware = (*Generator)(nil)

const (
	// defaultBackoffBase is the first retry delay. Later delays double.
	defaultBackoffBase = 500 * time.Millisecond

	// backoffJitter spreads concurrent retries apart.
	backoffJitter = 50 * time.Millisecond
)

// Default prompts, used when no prompt store is injected or a template
// cannot be loaded. The question prompt pins the output line format so
// the response can be parsed without a structured-output mode.
const (
	defaultQuestionSystem = `You are a training dataset construction assistant. Given an excerpt from a document, you generate high-quality questions for supervised fine-tuning.

Requirements:
1. Cover the core knowledge in the excerpt
2. Vary the question types: factual, comprehension, application, analysis
3. Phrase each question clearly and naturally
4. Every question must be answerable from the excerpt alone
5. Write each question on its own line in the form: Q<number>: <question>
6. Output only the question list, nothing else`

	defaultQuestionUser = `Generate %d high-quality questions for the following document excerpt:

%s`

	defaultAnswerSystem = `You are a knowledgeable assistant. You answer questions accurately and thoroughly based on the provided document excerpt.

Requirements:
1. Answer using only information from the excerpt, never invent facts
2. Be accurate, complete and well organised
3. Say so plainly when the excerpt does not contain the answer
4. Answer directly without restating the question`

	defaultAnswerUser = `Document excerpt:
%s

Question: %s

Answer the question based on the excerpt above.`
)

// questionPrefix matches the numbering a model puts before each
// question line, e.g. "1. ", "Q3: " or "2、".
var questionPrefix = regexp.MustCompile(`^Q?\d+[.:：、)）]\s*`)

// Generator produces question/answer pairs from chunks via the
// configured LLM. Questions for a chunk come from one batch call and
// each answer from its own call, so a failed answer never discards the
// rest of the chunk.
type Generator struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	limiter *rate.Limiter

	temperature float64
	maxTokens   int
	maxAttempts int
	backoffBase time.Duration
}

// NewGenerator creates a generator backed by the given LLM service.
// Temperature and max tokens are passed through to every call. A
// positive RequestsPerSecond installs a rate limiter shared by all
// calls on this generator.
func NewGenerator(llm driven.LLMService, llmCfg domain.LLMSettings, genCfg domain.GenerationSettings) *Generator {
	var limiter *rate.Limiter
	if llmCfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(llmCfg.RequestsPerSecond), 1)
	}

	maxAttempts := genCfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &Generator{
		llm:         llm,
		limiter:     limiter,
		temperature: llmCfg.Temperature,
		maxTokens:   llmCfg.MaxTokens,
		maxAttempts: maxAttempts,
		backoffBase: defaultBackoffBase,
	}
}

// SetPromptStore sets the store for loading customised prompt templates.
func (g *Generator) SetPromptStore(store driven.PromptStore) {
	g.prompts = store
}

// GenerateQuestions asks the model for up to n questions about the
// chunk. A response with fewer questions is accepted as-is; extra
// questions beyond n are dropped. Returns ErrNoQuestions when the model
// produced nothing usable.
func (g *Generator) GenerateQuestions(ctx context.Context, chunk domain.Chunk, n int) ([]string, error) {
	if strings.TrimSpace(chunk.Content) == "" {
		return nil, fmt.Errorf("%w: empty chunk content", domain.ErrInvalidInput)
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: question count must be at least 1, got %d", domain.ErrInvalidInput, n)
	}

	system := g.prompt(driven.PromptQuestionSystem, defaultQuestionSystem)
	user := fmt.Sprintf(g.prompt(driven.PromptQuestionUser, defaultQuestionUser), n, chunk.Content)

	completion, err := g.chat(ctx, "questions", system, user)
	if err != nil {
		return nil, fmt.Errorf("generate questions for chunk %d: %w", chunk.Index, err)
	}

	questions := parseQuestions(completion)
	if len(questions) == 0 {
		return nil, fmt.Errorf("chunk %d of %s: %w", chunk.Index, chunk.SourceFile, domain.ErrNoQuestions)
	}
	if len(questions) > n {
		questions = questions[:n]
	}

	logger.Debug("questions generated",
		"chunk", chunk.Index, "requested", n, "got", len(questions))
	return questions, nil
}

// GenerateAnswer asks the model to answer one question using the chunk
// as the only source. Each call is an independent conversation.
func (g *Generator) GenerateAnswer(ctx context.Context, chunk domain.Chunk, question string) (string, error) {
	if strings.TrimSpace(chunk.Content) == "" {
		return "", fmt.Errorf("%w: empty chunk content", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	system := g.prompt(driven.PromptAnswerSystem, defaultAnswerSystem)
	user := fmt.Sprintf(g.prompt(driven.PromptAnswerUser, defaultAnswerUser), chunk.Content, question)

	answer, err := g.chat(ctx, "answer", system, user)
	if err != nil {
		return "", fmt.Errorf("generate answer for chunk %d: %w", chunk.Index, err)
	}
	return answer, nil
}

// chat sends one system+user conversation and returns the trimmed
// completion. Transient failures are retried with exponential backoff
// and jitter up to the configured attempt bound; permanent failures
// and empty completions fail immediately. Any failure is wrapped in
// ErrLLMCall.
func (g *Generator) chat(ctx context.Context, op, system, user string) (string, error) {
	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: system},
		{Role: driven.RoleUser, Content: user},
	}
	opts := driven.ChatOptions{
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	}

	exponential := retry.NewExponential(g.backoffBase)
	backoff := retry.WithMaxRetries(uint64(g.maxAttempts-1), retry.WithJitter(backoffJitter, exponential))

	attempt := 0
	var completion string
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		text, callErr := g.llm.Chat(ctx, messages, opts)
		if callErr != nil {
			if domain.IsRetryable(callErr) {
				logger.Warn("llm call failed, retrying",
					"op", op, "attempt", attempt, "model", g.llm.ModelName(), "error", callErr)
				return retry.RetryableError(callErr)
			}
			return callErr
		}
		if strings.TrimSpace(text) == "" {
			return domain.ErrEmptyCompletion
		}
		completion = text
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrLLMCall, err)
	}

	return strings.TrimSpace(completion), nil
}

// prompt loads a template from the store, falling back to the embedded
// default when no store is set or the template is missing.
func (g *Generator) prompt(name, fallback string) string {
	if g.prompts == nil {
		return fallback
	}
	text, err := g.prompts.Load(name)
	if err != nil || strings.TrimSpace(text) == "" {
		logger.Debug("using default prompt", "name", name, "error", err)
		return fallback
	}
	return text
}

// parseQuestions splits a completion into one question per non-empty
// line, stripping any numbering prefix the model added.
func parseQuestions(completion string) []string {
	var questions []string
	for _, line := range strings.Split(completion, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		question := strings.TrimSpace(questionPrefix.ReplaceAllString(line, ""))
		if question == "" {
			continue
		}
		questions = append(questions, question)
	}
	return questions
}
