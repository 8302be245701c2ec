package errors

// ErrorCode identifies an application error in API responses and logs.
type ErrorCode int32

const (
	ErrorCode_UNKNOWN ErrorCode = 0
	ErrorCode_HTTP_OK ErrorCode = 200

	// General
	ErrorCode_INTERNAL          ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT  ErrorCode = 1001
	ErrorCode_NOT_FOUND         ErrorCode = 1002
	ErrorCode_PERMISSION_DENIED ErrorCode = 1003
	ErrorCode_UNAUTHENTICATED   ErrorCode = 1004
	ErrorCode_INVALID_PAYLOAD   ErrorCode = 1005

	// Audio ingest
	ErrorCode_AUDIO_EMPTY_INPUT      ErrorCode = 2000
	ErrorCode_AUDIO_TOO_LARGE        ErrorCode = 2001
	ErrorCode_AUDIO_UNSUPPORTED_TYPE ErrorCode = 2002

	// Upstream AI services
	ErrorCode_UPSTREAM_REJECTED       ErrorCode = 3000
	ErrorCode_UPSTREAM_UNREACHABLE    ErrorCode = 3001
	ErrorCode_REQUEST_CANCELLED       ErrorCode = 3002
	ErrorCode_UPSTREAM_NOT_CONFIGURED ErrorCode = 3003

	// Database
	ErrorCode_DB_QUERY_FAILED    ErrorCode = 4000
	ErrorCode_PERSISTENCE_FAILED ErrorCode = 4001
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_UNKNOWN:                 "UNKNOWN",
	ErrorCode_HTTP_OK:                 "HTTP_OK",
	ErrorCode_INTERNAL:                "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:        "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:               "NOT_FOUND",
	ErrorCode_PERMISSION_DENIED:       "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:         "UNAUTHENTICATED",
	ErrorCode_INVALID_PAYLOAD:         "INVALID_PAYLOAD",
	ErrorCode_AUDIO_EMPTY_INPUT:       "AUDIO_EMPTY_INPUT",
	ErrorCode_AUDIO_TOO_LARGE:         "AUDIO_TOO_LARGE",
	ErrorCode_AUDIO_UNSUPPORTED_TYPE:  "AUDIO_UNSUPPORTED_TYPE",
	ErrorCode_UPSTREAM_REJECTED:       "UPSTREAM_REJECTED",
	ErrorCode_UPSTREAM_UNREACHABLE:    "UPSTREAM_UNREACHABLE",
	ErrorCode_REQUEST_CANCELLED:       "REQUEST_CANCELLED",
	ErrorCode_UPSTREAM_NOT_CONFIGURED: "UPSTREAM_NOT_CONFIGURED",
	ErrorCode_DB_QUERY_FAILED:         "DB_QUERY_FAILED",
	ErrorCode_PERSISTENCE_FAILED:      "PERSISTENCE_FAILED",
}

// String returns the symbolic name of the code.
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// MarshalText renders the code by name in JSON bodies.
func (c ErrorCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
