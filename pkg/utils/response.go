package utils

// ResponseData is the JSON envelope every REST endpoint returns.
type ResponseData struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded panics on error so the recovery middleware can translate
// typed errors into their HTTP representation.
func PanicIfNeeded(err any) {
	if err != nil {
		panic(err)
	}
}
