package in

import (
	"dropkit/internal/modules/options/dto"
	optionsin "dropkit/internal/modules/options/port/in"
)

type CLIHandler struct {
	usecase optionsin.Usecase
}

func NewCLIHandler(usecase optionsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) CheckFile(path string) (dto.SchemaReport, error) {
	return h.usecase.CheckFile(path)
}
