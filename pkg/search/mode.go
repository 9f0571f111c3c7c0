package search

// Mode is the response shape a query warrants.
type Mode string

const (
	ModeDocuments Mode = "documents"
	ModeSummary   Mode = "summary"
	ModeAnswer    Mode = "answer"
	ModeChat      Mode = "chat"
)
