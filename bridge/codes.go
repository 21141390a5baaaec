package bridge

// Protocol-level error codes. Negative codes never originate from a
// capability handler.
const (
	CodeParseError       int32 = -1
	CodeMalformedRequest int32 = -2
	CodeMethodNotFound   int32 = -3
	CodeInternalError    int32 = -4
)

// Conventional application-level codes. Handlers are free to define their
// own non-negative codes; these are the ones the built-in capability suites
// use.
const (
	CodeHandlerFailed int32 = 0
	CodeUnsupported   int32 = 1
	CodeNotFound      int32 = 2
	CodeDenied        int32 = 3
)
