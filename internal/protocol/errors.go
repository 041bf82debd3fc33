package protocol

const (
	// Protocol/transport validation.
	ErrBadMessage = "E_BAD_MESSAGE"
	ErrBadVersion = "E_BAD_VERSION"

	// Request layer.
	ErrRangeTooLarge = "E_RANGE_TOO_LARGE"
	ErrInternal      = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrBadMessage:    {},
	ErrBadVersion:    {},
	ErrRangeTooLarge: {},
	ErrInternal:      {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
