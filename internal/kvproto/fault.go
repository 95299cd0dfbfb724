package kvproto

// Fault is the single error status the specification's RPCs surface
// (spec.md section 6-7): every failure is reported as the same
// "INVALID_ARGUMENT" kind, distinguished only by message. Transport layers
// translate a Fault into an HTTP 400 with Message as the body.
type Fault struct {
	Message string
}

func (f *Fault) Error() string { return f.Message }

// NewFault builds a Fault with the given message.
func NewFault(msg string) *Fault { return &Fault{Message: msg} }

// Well-known fault messages referenced directly by spec.md and by this
// repo's tests.
const (
	FaultKeyNotFound      = "Specified key not found"
	FaultNotResponsible   = "Server not responsible for the specified key"
	FaultOperationFailed  = "Operation failed"
	FaultExceededCapacity = "Exceeded server capacity"
	FaultDuplicateJoin    = "Server already joined"
	FaultUnknownLeave     = "Server not joined"
	FaultUnknownMove      = "Server not joined"
)
