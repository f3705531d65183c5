package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible
	// default or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptQuestionSystem is the system prompt for question generation.
	// No format placeholders.
	PromptQuestionSystem = "question_system"

	// PromptQuestionUser asks for questions about a chunk.
	// Expects %d (question count) and %s (chunk text) placeholders.
	PromptQuestionUser = "question_user"

	// PromptAnswerSystem is the system prompt for answer generation.
	// No format placeholders.
	PromptAnswerSystem = "answer_system"

	// PromptAnswerUser asks for the answer to one question.
	// Expects %s (chunk text) and %s (question) placeholders.
	PromptAnswerUser = "answer_user"
)

// PromptStoreAware is an optional interface for services that can use custom
// prompts. Services implementing this interface can have their prompt
// templates customised by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}
