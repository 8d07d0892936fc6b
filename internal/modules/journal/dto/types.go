package dto

type JournalEntry struct {
	ID          string
	OperationID string
	Processor   string
	ItemCount   int
	Bulk        bool
	Status      string
	Error       string
	CreatedAt   string
	UpdatedAt   string
}
