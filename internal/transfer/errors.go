package transfer

// Code identifies a recoverable authorization failure. Codes are stable;
// messages are what the UI shows.
type Code string

const (
	CodeInvalidFormat           Code = "invalid_format"
	CodeRecipientNotFound       Code = "recipient_not_found"
	CodeMissingRecipient        Code = "missing_recipient"
	CodeInvalidAmount           Code = "invalid_amount"
	CodeInsufficientBalance     Code = "insufficient_balance"
	CodeIncorrectPin            Code = "incorrect_pin"
	CodeLockedOut               Code = "locked_out"
	CodeInvalidState            Code = "invalid_state"
	CodeDirectoryUnavailable    Code = "directory_unavailable"
	CodeVerificationUnavailable Code = "verification_unavailable"
)

// Error is an ordinary outcome of an authorization step, never a crash. It
// doubles as the observable last error on the session snapshot.
type Error struct {
	Code              Code   `json:"code"`
	Message           string `json:"message"`
	RemainingAttempts int    `json:"remainingAttempts,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

func errInvalidState(message string) *Error {
	return &Error{Code: CodeInvalidState, Message: message}
}
