package dto

import "github.com/spec-kit/courier-service/internal/domain"

// BranchRequest payload.
type BranchRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// BranchResponse payload.
type BranchResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// ClientRequest payload. Type defaults to person.
type ClientRequest struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Document string `json:"document"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
}

// ClientResponse payload.
type ClientResponse struct {
	ID       string            `json:"id"`
	Type     domain.ClientType `json:"type"`
	Name     string            `json:"name"`
	Document string            `json:"document"`
	Phone    string            `json:"phone"`
	Email    string            `json:"email"`
	Address  string            `json:"address"`
}

// DistributorRequest payload.
type DistributorRequest struct {
	TradeName string `json:"trade_name"`
	LegalName string `json:"legal_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// DistributorResponse payload.
type DistributorResponse struct {
	ID        string `json:"id"`
	TradeName string `json:"trade_name"`
	LegalName string `json:"legal_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}
