package httpapi

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stafflink/backoffice/pkg/serrors"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteError(rec, 404, "TASK_NOT_FOUND", "task not found", map[string]string{"id": "42"}))

	require.Equal(t, 404, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var envelope ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "TASK_NOT_FOUND", envelope.Code)
	require.Equal(t, "42", envelope.Meta["id"])
}

func TestWriteList(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteList(rec, []string{"a", "b"}, 17))

	var payload struct {
		Items []string `json:"items"`
		Total int64    `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Items, 2)
	require.EqualValues(t, 17, payload.Total)
}

func TestWriteValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteValidationError(rec, serrors.ValidationErrors{"Email": "is required"}))

	require.Equal(t, 400, rec.Code)

	var envelope ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "VALIDATION_ERROR", envelope.Code)
	require.Equal(t, "is required", envelope.Meta["Email"])
}
