package bus

// EventKind discriminates the InboundEvent union.
type EventKind string

const (
	KindCommand     EventKind = "command"
	KindButtonPress EventKind = "button_press"
)

// InboundEvent is one normalized chat event. The delivery layer produces
// exactly one per raw platform update it recognizes; the router consumes
// each exactly once. Only the fields of the active variant are set.
type InboundEvent struct {
	Kind     EventKind `json:"kind"`
	ChatID   int64     `json:"chat_id"`
	UpdateID int       `json:"update_id"`

	// Command variant.
	Command     string `json:"command,omitempty"`
	DisplayName string `json:"display_name,omitempty"`

	// ButtonPress variant. Target is the raw button payload; AckToken is
	// the opaque handle required to acknowledge the press.
	Target   string `json:"target,omitempty"`
	AckToken string `json:"ack_token,omitempty"`
}
