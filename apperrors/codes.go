package apperrors

// Code is the machine-checkable identifier clients branch on.
type Code string

const (
	CodeRateLimited         Code = "RATE_LIMITED"
	CodeMessageTooLong      Code = "MESSAGE_TOO_LONG"
	CodeMessageEmpty        Code = "MESSAGE_EMPTY"
	CodeNotAuthorized       Code = "NOT_AUTHORIZED"
	CodeUnauthenticated     Code = "UNAUTHENTICATED"
	CodeNotFound            Code = "NOT_FOUND"
	CodeInvalidPayload      Code = "INVALID_PAYLOAD"
	CodeCannotReplyToReply  Code = "CANNOT_REPLY_TO_REPLY"
	CodeMessageDeleted      Code = "MESSAGE_DELETED"
	CodeAlreadyDeleted      Code = "ALREADY_DELETED"
	CodeSequenceUnavailable Code = "SEQUENCE_UNAVAILABLE"
	CodeUnknownEvent        Code = "UNKNOWN_EVENT"
	CodeInternal            Code = "INTERNAL"
)
