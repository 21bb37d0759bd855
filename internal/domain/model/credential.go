package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Credential is the authenticated identity attached to outbound requests.
// A zero Credential means no one is signed in.
type Credential struct {
	Token     string     `json:"token"`
	Workspace *Workspace `json:"workspace,omitempty"`
}

// IsZero reports whether the credential carries neither a token nor a workspace.
func (c Credential) IsZero() bool {
	return c.Token == "" && c.Workspace == nil
}

// Workspace is a tenant scope selecting which backend data a request can see.
type Workspace struct {
	ID   WorkspaceID `json:"id"`
	Name string      `json:"name,omitempty"`
}

// WorkspaceID is the opaque workspace identifier. The backend emits it either
// as a JSON string or a JSON number; both decode into the same value.
type WorkspaceID string

// UnmarshalJSON accepts `"7"` and `7` alike.
func (id *WorkspaceID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode workspace id: %w", err)
		}
		*id = WorkspaceID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode workspace id: %w", err)
	}
	*id = WorkspaceID(n.String())
	return nil
}

// String returns the identifier as sent in the x-workspace-id header.
func (id WorkspaceID) String() string {
	return string(id)
}

// WorkspaceIDFromInt builds a WorkspaceID from a numeric identifier.
func WorkspaceIDFromInt(n int64) WorkspaceID {
	return WorkspaceID(strconv.FormatInt(n, 10))
}

// LoginResult is what the backend returns for a successful sign-in.
type LoginResult struct {
	Token      string      `json:"token"`
	User       User        `json:"user"`
	Workspaces []Workspace `json:"workspaces"`
}
