package types

const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
	StatusExist   = "EXIST"
)

// SuccessEnvelope is written for every successful response. Status carries the
// domain discriminator (SUCCESS, FAILED, EXIST) for flows that report an outcome
// without failing the request.
type SuccessEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Status string   `json:"status"`
	Error  APIError `json:"error"`
}
