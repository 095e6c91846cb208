package conversation

// Event is an input to the conversation state machine.
type Event interface{ isEvent() }

// Start is /start or /help.
type Start struct{}

// Cancel is /cancel.
type Cancel struct{}

// Document is an uploaded file decoded as UTF-8 text.
type Document struct{ Content string }

// Text is any other text message.
type Text struct{ Text string }

// GenerationFinished reports a delivered generation job.
type GenerationFinished struct{ GenerationID string }

// GenerationFailed reports a generation job that produced nothing.
type GenerationFailed struct{ GenerationID string }

func (Start) isEvent()              {}
func (Cancel) isEvent()             {}
func (Document) isEvent()           {}
func (Text) isEvent()               {}
func (GenerationFinished) isEvent() {}
func (GenerationFailed) isEvent()   {}

// Action is an output of the state machine, executed by the caller.
type Action interface{ isAction() }

// Reply sends a localized message. Keyboard rows show a reply keyboard;
// RemoveKeyboard hides a previous one.
type Reply struct {
	Key            string
	Args           []any
	Keyboard       [][]string
	RemoveKeyboard bool
}

// Generate asks the caller to run a generation job for the session.
type Generate struct{ GenerationID string }

// Clear drops the stored session.
type Clear struct{}

func (Reply) isAction()    {}
func (Generate) isAction() {}
func (Clear) isAction()    {}
