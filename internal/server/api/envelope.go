package api

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/kvgate/internal/common"
)

// Envelope field names.
const (
	FieldRequest  = "request"
	FieldResponse = "response"
	FieldAPIKey   = "APIKey"
	FieldMethod   = "method"
	FieldToken    = "token"
	FieldData     = "data"
	FieldCode     = "code"
	FieldEmail    = "email"
	FieldPassword = "password"
)

// Request is a shape-checked request envelope. Method is not yet checked
// against the allow-list.
type Request struct {
	APIKey string
	Method string
	Token  string
	Data   map[string]any
}

// HasToken reports whether the request carries a session token.
func (r *Request) HasToken() bool { return r.Token != "" }

func malformed(format string, args ...any) error {
	return Reject(CodeMalformedRequest, fmt.Errorf("%w: "+format, append([]any{common.ErrorMalformedRequest}, args...)...))
}

// ParseRequest shape-checks a decoded envelope of the form
// {"request": {"APIKey", "method", "data", "token"?}}. The envelope must
// carry a non-empty API key, method and data object, and either a token or
// both email and password inside data. Every violation is
// CodeMalformedRequest.
func ParseRequest(envelope map[string]any) (*Request, error) {
	raw, ok := envelope[FieldRequest].(map[string]any)
	if !ok {
		return nil, malformed("missing request object")
	}

	req := &Request{}

	if req.APIKey, ok = raw[FieldAPIKey].(string); !ok || req.APIKey == "" {
		return nil, malformed("missing APIKey")
	}
	if req.Data, ok = raw[FieldData].(map[string]any); !ok || len(req.Data) == 0 {
		return nil, malformed("missing data")
	}
	if req.Method, ok = raw[FieldMethod].(string); !ok || req.Method == "" {
		return nil, malformed("missing method")
	}

	if t, present := raw[FieldToken]; present && t != nil {
		if req.Token, ok = t.(string); !ok {
			return nil, malformed("token is not a string")
		}
	}
	if !req.HasToken() {
		if req.Data[FieldEmail] == nil || req.Data[FieldPassword] == nil {
			return nil, malformed("missing token or credentials")
		}
	}

	return req, nil
}

// DecodeRequest parses a JSON request envelope and shape-checks it.
func DecodeRequest(body []byte) (*Request, error) {
	var envelope map[string]any
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, malformed("%v", err)
	}
	return ParseRequest(envelope)
}

// NewRequestEnvelope builds the envelope a client sends. An empty token is
// omitted.
func NewRequestEnvelope(apiKey string, method Method, token string, data map[string]any) map[string]any {
	req := map[string]any{
		FieldAPIKey: apiKey,
		FieldMethod: string(method),
		FieldData:   data,
	}
	if token != "" {
		req[FieldToken] = token
	}
	return map[string]any{FieldRequest: req}
}

// Response is the single response produced for a request.
type Response struct {
	Code Code
	Data map[string]any

	// Fault is not serialized; it drives the outcome classification.
	Fault bool
}

// Success returns a CodeOK response. Data may be nil.
func Success(data map[string]any) *Response {
	return &Response{Code: CodeOK, Data: data}
}

// FromError returns the response for a failure.
func FromError(err error) *Response {
	return &Response{Code: CodeOf(err), Fault: IsFault(err)}
}

// Outcome classifies r.
func (r *Response) Outcome() Outcome {
	switch {
	case r.Fault:
		return OutcomeFault
	case r.Code == CodeOK:
		return OutcomeSuccess
	default:
		return OutcomeRejected
	}
}

// Envelope renders r as {"response": {"code": ..., "data": ...}}. Data is
// present only on success.
func (r *Response) Envelope() map[string]any {
	body := map[string]any{FieldCode: int(r.Code)}
	if r.Code == CodeOK && len(r.Data) > 0 {
		body[FieldData] = r.Data
	}
	return map[string]any{FieldResponse: body}
}

func (r *Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Envelope())
}

// ErrBadResponse is returned when a response envelope cannot be parsed.
var ErrBadResponse = errors.New("malformed response envelope")

// ParseResponse reads a decoded response envelope. Numbers may arrive as
// float64 (JSON, protobuf Struct) or int.
func ParseResponse(envelope map[string]any) (*Response, error) {
	body, ok := envelope[FieldResponse].(map[string]any)
	if !ok {
		return nil, ErrBadResponse
	}

	var code Code
	switch c := body[FieldCode].(type) {
	case float64:
		code = Code(c)
	case int:
		code = Code(c)
	case int64:
		code = Code(c)
	default:
		return nil, ErrBadResponse
	}

	resp := &Response{Code: code}
	if data, ok := body[FieldData].(map[string]any); ok {
		resp.Data = data
	}
	return resp, nil
}

// DecodeResponse parses a JSON response envelope.
func DecodeResponse(body []byte) (*Response, error) {
	var envelope map[string]any
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return ParseResponse(envelope)
}
