package constant

const (
	DocumentStatusReview   = "review"
	DocumentStatusComplete = "complete"

	// NoSummaryPlaceholder is emitted in the grounding context for
	// documents whose analysis produced no search summary.
	NoSummaryPlaceholder = "No summary available"
)

const (
	// GroundedEnvelopeInstruction makes the model return a parseable
	// envelope so cited documents can be reconciled to real records.
	GroundedEnvelopeInstruction = `Respond with ONLY valid JSON in this exact shape:
{
  "answer": "your response text",
  "references": ["document name", "document name"]
}
"references" must list ONLY documents from the provided context that you actually used. Use their exact names. If you used none, return an empty array.`

	SummaryPromptTemplate = `You are a health document assistant. Using ONLY the documents below, write a concise overview that addresses the user's request. Do not use outside knowledge. If the documents contain nothing relevant, say so.

User request: %s

Documents:
%s

%s`

	AnswerPromptTemplate = `You are a health document assistant. Answer the user's question using ONLY the documents below. Do not use outside knowledge. If the documents do not contain the answer, say so plainly.

Question: %s

Documents:
%s

%s`

	ChatSystemPromptTemplate = `You are a health document assistant in an ongoing conversation. Ground every reply in the documents below; never use outside knowledge. Keep replies conversational and brief.

Documents:
%s

%s`

	// StatelessChatSystemPromptTemplate backs the history-replay chat
	// endpoint, which returns plain text instead of an envelope.
	StatelessChatSystemPromptTemplate = `You are a health document assistant. Ground every reply in the documents below; never use outside knowledge. If the documents do not cover the topic, say so. Keep replies conversational and brief.

Documents:
%s`

	// ChatUnavailableMessage is returned when the model cannot be reached;
	// the chat surface degrades to a canned reply instead of an error.
	ChatUnavailableMessage = "I can't reach the assistant right now. Please try again in a moment."
)
