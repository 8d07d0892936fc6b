package out

import (
	"context"

	"dropkit/internal/modules/dispatch/domain"
)

// HeadlessModals stands in for the desktop dialog service when the host
// runs without a UI. Alerts succeed silently; anything that needs user
// input reports canceled, so preparators degrade the same way they
// would when a user dismisses a dialog.
type HeadlessModals struct{}

func NewHeadlessModals() domain.Modals {
	return HeadlessModals{}
}

func (HeadlessModals) Alert(_ context.Context, _, _ string) (domain.ModalResult, error) {
	return domain.ModalResult{}, nil
}

func (HeadlessModals) Confirm(_ context.Context, _, _ string) (domain.ModalResult, error) {
	return domain.ModalResult{Canceled: true}, nil
}

func (HeadlessModals) Prompt(_ context.Context, _, _, _ string) (domain.ModalResult, error) {
	return domain.ModalResult{Canceled: true}, nil
}

func (HeadlessModals) PromptOptions(_ context.Context, _ string, _ []string) (domain.ModalResult, error) {
	return domain.ModalResult{Canceled: true}, nil
}

func (HeadlessModals) OpenFile(_ context.Context, _ string, _ []string) (domain.ModalResult, error) {
	return domain.ModalResult{Canceled: true}, nil
}

func (HeadlessModals) SaveFile(_ context.Context, _, _ string) (domain.ModalResult, error) {
	return domain.ModalResult{Canceled: true}, nil
}

func (HeadlessModals) OpenModal(_ context.Context, _ string, _ any) (domain.ModalResult, error) {
	return domain.ModalResult{Canceled: true}, nil
}
