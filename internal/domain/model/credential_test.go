package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceID_UnmarshalStringOrNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want WorkspaceID
	}{
		{"string", `{"id":"ws-7"}`, "ws-7"},
		{"number", `{"id":7}`, "7"},
		{"large number", `{"id":12345678901}`, "12345678901"},
		{"null", `{"id":null}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ws Workspace
			require.NoError(t, json.Unmarshal([]byte(tt.in), &ws))
			assert.Equal(t, tt.want, ws.ID)
		})
	}
}

func TestWorkspaceID_UnmarshalRejectsObjects(t *testing.T) {
	var ws Workspace
	assert.Error(t, json.Unmarshal([]byte(`{"id":{"nested":1}}`), &ws))
}

func TestCredential_IsZero(t *testing.T) {
	assert.True(t, Credential{}.IsZero())
	assert.False(t, Credential{Token: "abc"}.IsZero())
	assert.False(t, Credential{Workspace: &Workspace{ID: WorkspaceIDFromInt(7)}}.IsZero())
}
