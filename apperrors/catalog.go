package apperrors

import "fmt"

var (
	ErrMessageEmpty       = New(CodeMessageEmpty, "message cannot be empty")
	ErrCannotReplyToReply = New(CodeCannotReplyToReply, "Cannot reply to a reply")
	ErrParentDeleted      = New(CodeMessageDeleted, "Cannot reply to a deleted message")
	ErrAlreadyDeleted     = New(CodeAlreadyDeleted, "Message is already deleted")
	ErrMessageNotFound    = NotFound("Message not found")
	ErrNoteNotFound       = NotFound("Note not found")
	ErrNotAuthor          = NotAuthorized("Only the author can delete this message")
	ErrUnauthenticated    = New(CodeUnauthenticated, "authentication required")
	ErrThreadDeleted      = New(CodeMessageDeleted, "Thread root has been deleted")
	ErrNotThreadRoot      = InvalidPayload("Only top-level messages have threads")
)

func ErrMessageTooLong(max int) *AppError {
	return New(CodeMessageTooLong, fmt.Sprintf("Message exceeds the maximum length of %d characters", max))
}

func ErrSequenceUnavailable(cause error) *AppError {
	return Wrap(CodeSequenceUnavailable, "could not allocate sequence, message not sent", cause)
}

func ErrUnknownEvent(event string) *AppError {
	return New(CodeUnknownEvent, "unknown event "+event)
}
