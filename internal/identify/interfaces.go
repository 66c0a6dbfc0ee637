package identify

import (
	"context"

	"github.com/quocvuong92/leafify/internal/history"
	"github.com/quocvuong92/leafify/internal/render"
	"github.com/quocvuong92/leafify/internal/upload"
)

// View is the UI surface the orchestrator drives. Implementations must not
// call back into the Orchestrator.
type View interface {
	// ShowPreview displays the newly selected image
	ShowPreview(img *upload.SelectedImage)

	// ShowLoading hides results and placeholder and shows progress
	ShowLoading()

	// HideLoading removes the progress indicator
	HideLoading()

	// ShowResults displays a rendered result with the given tab active
	ShowResults(model render.DisplayModel, activeTab string)

	// ShowTab displays a single description slot after a tab switch
	ShowTab(tab render.Tab)

	// ShowPlaceholder displays the placeholder with a message
	ShowPlaceholder(message string)

	// ShowHistory redraws the history panel
	ShowHistory(entries []history.Entry)

	// ShowAnswer displays the answer to a follow-up question
	ShowAnswer(plantName, question, answer string)

	// Notify shows a transient notice to the user
	Notify(message string)
}

// Uploader reads the user's file selection
type Uploader interface {
	Select(ctx context.Context, paths []string) (*upload.SelectedImage, error)
	SelectAsync(ctx context.Context, paths []string, done func(*upload.SelectedImage, error))
}

// Ensure the upload handler satisfies Uploader
var _ Uploader = (*upload.Handler)(nil)
