// Package bankapi defines the bank.v1.BankService wire contract shared by
// the server and the client: request and response messages, a JSON codec
// and the gRPC service descriptor.
package bankapi

import "time"

// Result is embedded in every response that can carry a business
// rejection. ErrorCode is empty on success.
type Result struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
}

type RegisterRequest struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type RegisterResponse struct {
	Result
	UID string `json:"uid,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Result
	Token     string    `json:"token,omitempty"`
	UID       string    `json:"uid,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

type VerifySessionRequest struct {
	Token string `json:"token"`
}

type VerifySessionResponse struct {
	Valid     bool   `json:"valid"`
	Subject   string `json:"subject,omitempty"`
	Role      string `json:"role,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type BalanceRequest struct{}

type BalanceResponse struct {
	Result
	Username string `json:"username,omitempty"`
	Balance  string `json:"balance,omitempty"`
}

// TransferRequest moves Amount from the authenticated account to Receiver.
type TransferRequest struct {
	Receiver string `json:"receiver"`
	Amount   string `json:"amount"`
}

type TransferResponse struct {
	Result
	TransferID      int64  `json:"transfer_id,omitempty"`
	SenderBalance   string `json:"sender_balance,omitempty"`
	ReceiverBalance string `json:"receiver_balance,omitempty"`
}

type HistoryRequest struct {
	Limit int `json:"limit"`
}

type HistoryEntry struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Amount    string    `json:"amount"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Direction string    `json:"direction"`
	CreatedAt time.Time `json:"created_at"`
}

type HistoryResponse struct {
	Result
	Entries []HistoryEntry `json:"entries"`
}

type StatementRequest struct {
	Limit int `json:"limit"`
}

type StatementResponse struct {
	Result
	Key       string    `json:"key,omitempty"`
	URL       string    `json:"url,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}
