package api

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/dmitrijs2005/kvgate/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertMalformed(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, CodeMalformedRequest, CodeOf(err))
	assert.False(t, IsFault(err))
	assert.True(t, errors.Is(err, common.ErrorMalformedRequest))
}

func TestDecodeRequest_Valid(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"request":{"APIKey":"abc","method":"saveKey","token":"t","data":{"key":"color","value":"blue"}}}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", req.APIKey)
	assert.Equal(t, "saveKey", req.Method)
	assert.Equal(t, "t", req.Token)
	assert.Equal(t, "blue", req.Data["value"])
	assert.True(t, req.HasToken())
}

func TestDecodeRequest_CredentialsWithoutToken(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"request":{"APIKey":"abc","method":"authenticate","data":{"email":"a@x.com","password":"p"}}}`))
	require.NoError(t, err)
	assert.False(t, req.HasToken())
}

func TestDecodeRequest_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty body":        ``,
		"not json":          `{`,
		"json array":        `[]`,
		"no request":        `{"foo":{}}`,
		"request not obj":   `{"request":"x"}`,
		"missing APIKey":    `{"request":{"method":"getKey","token":"t","data":{"key":"k"}}}`,
		"null APIKey":       `{"request":{"APIKey":null,"method":"getKey","token":"t","data":{"key":"k"}}}`,
		"numeric APIKey":    `{"request":{"APIKey":5,"method":"getKey","token":"t","data":{"key":"k"}}}`,
		"missing method":    `{"request":{"APIKey":"abc","token":"t","data":{"key":"k"}}}`,
		"empty method":      `{"request":{"APIKey":"abc","method":"","token":"t","data":{"key":"k"}}}`,
		"missing data":      `{"request":{"APIKey":"abc","method":"getKey","token":"t"}}`,
		"empty data":        `{"request":{"APIKey":"abc","method":"getKey","token":"t","data":{}}}`,
		"data not object":   `{"request":{"APIKey":"abc","method":"getKey","token":"t","data":"k"}}`,
		"token not string":  `{"request":{"APIKey":"abc","method":"getKey","token":7,"data":{"key":"k"}}}`,
		"no token no creds": `{"request":{"APIKey":"abc","method":"getKey","data":{"key":"k"}}}`,
		"only email":        `{"request":{"APIKey":"abc","method":"authenticate","data":{"email":"a@x.com"}}}`,
		"null credentials":  `{"request":{"APIKey":"abc","method":"authenticate","data":{"email":null,"password":null}}}`,
		"null password":     `{"request":{"APIKey":"abc","method":"authenticate","data":{"email":"a@x.com","password":null}}}`,
		"empty token":       `{"request":{"APIKey":"abc","method":"getKey","token":"","data":{"key":"k"}}}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeRequest([]byte(body))
			assertMalformed(t, err)
		})
	}
}

func TestParseRequest_NilEnvelope(t *testing.T) {
	_, err := ParseRequest(nil)
	assertMalformed(t, err)
}

func TestNewRequestEnvelope_RoundTrip(t *testing.T) {
	env := NewRequestEnvelope("abc", MethodGetKey, "tok", map[string]any{"key": "color"})
	b, err := json.Marshal(env)
	require.NoError(t, err)

	req, err := DecodeRequest(b)
	require.NoError(t, err)
	assert.Equal(t, "getKey", req.Method)
	assert.Equal(t, "tok", req.Token)

	noToken := NewRequestEnvelope("abc", MethodAuthenticate, "", map[string]any{"email": "e", "password": "p"})
	_, present := noToken[FieldRequest].(map[string]any)[FieldToken]
	assert.False(t, present)
}

func TestResponse_JSON(t *testing.T) {
	b, err := json.Marshal(Success(map[string]any{"key": "abc"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"response":{"code":1,"data":{"key":"abc"}}}`, string(b))

	b, err = json.Marshal(Success(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"response":{"code":1}}`, string(b))

	b, err = json.Marshal(FromError(Reject(CodeInvalidParameter, nil)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"response":{"code":21}}`, string(b))
}

func TestResponse_Outcome(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, Success(nil).Outcome())
	assert.Equal(t, OutcomeRejected, FromError(Reject(CodeNotFound, nil)).Outcome())
	assert.Equal(t, OutcomeFault, FromError(Fault(CodeFallthrough, nil)).Outcome())
	assert.Equal(t, OutcomeFault, FromError(errors.New("db")).Outcome())
}

func TestDecodeResponse(t *testing.T) {
	resp, err := DecodeResponse([]byte(`{"response":{"code":1,"data":{"token":"t"}}}`))
	require.NoError(t, err)
	assert.Equal(t, CodeOK, resp.Code)
	assert.Equal(t, "t", resp.Data["token"])

	resp, err = ParseResponse(map[string]any{"response": map[string]any{"code": 12}})
	require.NoError(t, err)
	assert.Equal(t, CodeNotFound, resp.Code)
	assert.Nil(t, resp.Data)

	_, err = DecodeResponse([]byte(`{"response":{}}`))
	assert.ErrorIs(t, err, ErrBadResponse)

	_, err = DecodeResponse([]byte(`nope`))
	assert.ErrorIs(t, err, ErrBadResponse)
}
