package driven

import "context"

// NoticeLevel classifies a user-visible notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a one-shot message for the operator.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// Interaction defines the driven port for blocking operator dialogs.
type Interaction interface {
	// Confirm asks a yes/no question and reports the answer.
	Confirm(ctx context.Context, question string) (bool, error)

	// Prompt asks for a line of text. ok is false when the operator cancelled.
	Prompt(ctx context.Context, question string) (answer string, ok bool, err error)

	// Notify shows a notice. It must not block on operator input.
	Notify(ctx context.Context, notice Notice)
}

// Clipboard defines the driven port for the system clipboard.
type Clipboard interface {
	WriteText(text string) error
}
