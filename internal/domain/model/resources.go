package model

import "time"

// User is a backoffice operator account.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Customer is a laundry client.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// TopUpStatus is the approval state of a balance top-up.
type TopUpStatus string

const (
	TopUpPending  TopUpStatus = "pending"
	TopUpApproved TopUpStatus = "approved"
	TopUpRejected TopUpStatus = "rejected"
)

// TopUp is a customer balance top-up awaiting or past approval.
type TopUp struct {
	ID           int64       `json:"id"`
	CustomerID   int64       `json:"client_id"`
	CustomerName string      `json:"client_name"`
	Amount       int64       `json:"amount"`
	Status       TopUpStatus `json:"status"`
	ProofURL     string      `json:"proof_url"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Deposit is a cash deposit recorded against a customer.
type Deposit struct {
	ID           int64     `json:"id"`
	CustomerID   int64     `json:"client_id"`
	CustomerName string    `json:"client_name"`
	Amount       int64     `json:"amount"`
	Note         string    `json:"note"`
	CreatedAt    time.Time `json:"created_at"`
}

// InventoryItem is a stock item (detergent, hangers, bags).
type InventoryItem struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	Quantity  int       `json:"quantity"`
	Unit      string    `json:"unit"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReportRow is one line of a tabular report. Columns vary per report.
type ReportRow map[string]any

// Report is the result of a report endpoint.
type Report struct {
	Name    string      `json:"name"`
	From    string      `json:"from"`
	To      string      `json:"to"`
	Rows    []ReportRow `json:"rows"`
	Summary ReportRow   `json:"summary"`
}

// Upload describes a stored file.
type Upload struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}
