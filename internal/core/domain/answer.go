package domain

// Answer is the outcome of asking a question: the generated text plus
// the retrieval results it was grounded on.
type Answer struct {
	// Text is the generated answer.
	Text string

	// Sources are the chunks handed to the generator, in rerank order.
	Sources []RetrievalResult

	// SessionID is the chat session the exchange was recorded in.
	SessionID string

	// Model is the LLM that produced the answer.
	Model string
}
