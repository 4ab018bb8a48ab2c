package domain

// Party is the sender profile attached to package views. Its shape is shared
// by distributors and clients.
type Party struct {
	ID        string
	Kind      SenderKind
	Name      string
	LegalName string
	Document  string
	Phone     string
	Email     string
	Address   string
}

// DistributorParty projects a distributor as a sender.
func DistributorParty(d *Distributor) *Party {
	if d == nil {
		return nil
	}
	return &Party{
		ID:        d.ID,
		Kind:      SenderKindDistributor,
		Name:      d.TradeName,
		LegalName: d.LegalName,
		Phone:     d.Phone,
		Address:   d.Address,
	}
}

// ClientParty projects a client as a sender.
func ClientParty(c *Client) *Party {
	if c == nil {
		return nil
	}
	return &Party{
		ID:       c.ID,
		Kind:     SenderKindClient,
		Name:     c.Name,
		Document: c.Document,
		Phone:    c.Phone,
		Email:    c.Email,
		Address:  c.Address,
	}
}

// PackageDetail is a package joined with every related entity and its history.
type PackageDetail struct {
	Package
	SenderKind        SenderKind
	Sender            *Party
	Recipient         *Client
	Operator          *StaffContact
	Courier           *StaffContact
	OriginBranch      *Branch
	DestinationBranch *Branch
	History           []HistoryEntry
}

// TrackingView is the public projection served to unauthenticated callers.
type TrackingView struct {
	ID                string
	TrackingCode      string
	Status            Status
	Description       string
	DestinationText   string
	ShipmentType      ShipmentType
	SenderKind        SenderKind
	Sender            *Party
	Recipient         *Client
	Operator          *StaffContact
	Courier           *StaffContact
	OriginBranch      *Branch
	DestinationBranch *Branch
	Reschedule        *RescheduleWindow
	History           []HistoryEntry
}

// TrackingView projects the detail into its public shape.
func (d *PackageDetail) TrackingView() *TrackingView {
	if d == nil {
		return nil
	}
	return &TrackingView{
		ID:                d.ID,
		TrackingCode:      d.TrackingCode,
		Status:            d.Status,
		Description:       d.Description,
		DestinationText:   d.DestinationText,
		ShipmentType:      d.ShipmentType,
		SenderKind:        d.SenderKind,
		Sender:            d.Sender,
		Recipient:         d.Recipient,
		Operator:          d.Operator,
		Courier:           d.Courier,
		OriginBranch:      d.OriginBranch,
		DestinationBranch: d.DestinationBranch,
		Reschedule:        d.Reschedule,
		History:           d.History,
	}
}
