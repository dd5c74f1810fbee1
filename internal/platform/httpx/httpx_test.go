package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: item", ErrNotFound), http.StatusNotFound},
		{ErrDuplicate, http.StatusConflict},
		{ErrValidation, http.StatusBadRequest},
		{ErrUnprocessable, http.StatusUnprocessableEntity},
		{ErrUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, tc.err)
		assert.Equal(t, tc.status, rr.Code, tc.err.Error())
		var p ProblemDetail
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
		assert.Equal(t, tc.status, p.Status)
	}
}

func TestInternalErrorHidesDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, errors.New("password=secret"))
	assert.NotContains(t, rr.Body.String(), "secret")
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "a", dst.Name)

	for _, body := range []string{``, `{"other":1}`, `{"name":"a"}{"name":"b"}`, `{`} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		assert.ErrorIs(t, DecodeJSON(req, &dst), ErrValidation, body)
	}
}

func TestValidationProblem(t *testing.T) {
	rr := httptest.NewRecorder()
	ValidationProblem(rr, map[string]string{"field": "required"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), `"field":"required"`)
}
