package domain

// ClientType distinguishes individuals from companies.
type ClientType string

const (
	ClientTypePerson  ClientType = "person"
	ClientTypeCompany ClientType = "company"
)

// ParseClientType defaults unknown or blank values to person.
func ParseClientType(raw string) ClientType {
	if ClientType(raw) == ClientTypeCompany {
		return ClientTypeCompany
	}
	return ClientTypePerson
}

// Client is a sender or recipient of packages.
type Client struct {
	ID       string
	Type     ClientType
	Name     string
	Document string
	Phone    string
	Email    string
	Address  string
}

// Distributor is a wholesale sender.
type Distributor struct {
	ID        string
	TradeName string
	LegalName string
	Phone     string
	Address   string
}

// Branch is a physical office of the courier.
type Branch struct {
	ID      string
	Name    string
	Address string
}
