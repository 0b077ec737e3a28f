package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIngestRequestValidate(t *testing.T) {
	t.Run("valid object payload", func(t *testing.T) {
		req := IngestRequest{EventType: "user.created", Payload: json.RawMessage(`{"x":1}`)}
		assert.NoError(t, req.Validate())
	})

	t.Run("valid array payload", func(t *testing.T) {
		req := IngestRequest{EventType: "user.created", Payload: json.RawMessage(`[1,2,3]`)}
		assert.NoError(t, req.Validate())
	})

	t.Run("valid scalar payload", func(t *testing.T) {
		req := IngestRequest{EventType: "user.created", Payload: json.RawMessage(`42`)}
		assert.NoError(t, req.Validate())
	})

	t.Run("missing event type", func(t *testing.T) {
		req := IngestRequest{Payload: json.RawMessage(`{}`)}
		assert.Error(t, req.Validate())
	})

	t.Run("missing payload", func(t *testing.T) {
		req := IngestRequest{EventType: "user.created"}
		assert.Error(t, req.Validate())
	})

	t.Run("malformed payload", func(t *testing.T) {
		req := IngestRequest{EventType: "user.created", Payload: json.RawMessage(`{"x":`)}
		assert.Error(t, req.Validate())
	})
}
