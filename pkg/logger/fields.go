package logger

const (
	FieldError    = "error"
	FieldChatID   = "chat_id"
	FieldUserID   = "user_id"
	FieldUpdateID = "update_id"
	FieldScreen   = "screen"
	FieldCommand  = "command"
	FieldMode     = "mode"
	FieldEventID  = "event_id"
	FieldPath     = "path"
)
