package error

// GenericError is implemented by every typed API error so the recovery
// middleware can map it to an HTTP status and error code.
type GenericError interface {
	Error() string
	ErrCode() string
	StatusCode() int
}
