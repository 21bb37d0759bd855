package model

// DeleteRequest is the payload of a delete call. Reason is optional and only
// sent when non-empty.
type DeleteRequest struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason,omitempty"`
}

// DeleteResult is the outcome of a delete call. It is consumed immediately to
// drive a notification and is never retained.
type DeleteResult struct {
	Success   bool
	Message   string
	ErrorCode string
}
