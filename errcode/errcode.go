package errcode

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK             Code = "ok"
	Busy           Code = "busy"
	Unsupported    Code = "unsupported"
	InvalidParams  Code = "invalid_params"
	InvalidPayload Code = "invalid_payload"
	InvalidTopic   Code = "invalid_topic"
	NotReady       Code = "not_ready"

	UnknownPort Code = "unknown_port"
	PortInUse   Code = "port_in_use"
	UnknownPin  Code = "unknown_pin"
	UnknownBus  Code = "unknown_bus"
	IOError     Code = "io_error"
	Timeout     Code = "timeout"

	Error Code = "error" // generic fallback
)

// E keeps context and a cause alongside a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Wrap returns an *E for op carrying err as the cause.
// A nil err yields nil.
func Wrap(c Code, op string, err error) error {
	if err == nil {
		return nil
	}
	msg := ""
	if _, isCode := err.(Code); !isCode {
		msg = err.Error()
	}
	return &E{C: c, Op: op, Msg: msg, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// MapDriverErr maps low-level driver errors (I²C, pin) to a Code.
func MapDriverErr(err error) Code {
	if err == nil {
		return OK
	}
	if c := Of(err); c != Error {
		return c
	}
	return IOError
}
