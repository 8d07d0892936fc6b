package in

import (
	"context"

	"dropkit/internal/modules/journal/dto"
	journalin "dropkit/internal/modules/journal/port/in"
)

type CLIHandler struct {
	usecase journalin.Usecase
}

func NewCLIHandler(usecase journalin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context, limit int) ([]dto.JournalEntry, error) {
	return h.usecase.List(ctx, limit)
}
