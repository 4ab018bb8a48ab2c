package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/courier-service/internal/api/dto"
	"github.com/spec-kit/courier-service/internal/auth"
	"github.com/spec-kit/courier-service/internal/domain"
)

func principal(c *fiber.Ctx) (*auth.Identity, error) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return nil, fiber.NewError(http.StatusUnauthorized, "authentication required")
	}
	return identity, nil
}

func packageResponse(pkg *domain.Package) dto.PackageResponse {
	return dto.PackageResponse{
		ID:                  pkg.ID,
		TrackingCode:        pkg.TrackingCode,
		ShipmentType:        pkg.ShipmentType,
		SenderDistributorID: pkg.SenderDistributorID,
		SenderClientID:      pkg.SenderClientID,
		RecipientID:         pkg.RecipientID,
		OperatorID:          pkg.OperatorID,
		CourierID:           pkg.CourierID,
		OriginBranchID:      pkg.OriginBranchID,
		DestinationBranchID: pkg.DestinationBranchID,
		DestinationText:     pkg.DestinationText,
		Description:         pkg.Description,
		Status:              pkg.Status,
		CreatedAt:           pkg.CreatedAt.UTC(),
		Reschedule:          rescheduleResponse(pkg.Reschedule),
	}
}

func packageDetailResponse(detail *domain.PackageDetail) dto.PackageDetailResponse {
	return dto.PackageDetailResponse{
		PackageResponse:   packageResponse(&detail.Package),
		SenderKind:        detail.SenderKind,
		Sender:            partyResponse(detail.Sender),
		Recipient:         clientResponsePtr(detail.Recipient),
		Operator:          contactResponse(detail.Operator),
		Courier:           contactResponse(detail.Courier),
		OriginBranch:      branchResponsePtr(detail.OriginBranch),
		DestinationBranch: branchResponsePtr(detail.DestinationBranch),
		History:           historyResponse(detail.History),
	}
}

func packageDetailList(details []domain.PackageDetail) []dto.PackageDetailResponse {
	items := make([]dto.PackageDetailResponse, 0, len(details))
	for i := range details {
		items = append(items, packageDetailResponse(&details[i]))
	}
	return items
}

func trackingResponse(view *domain.TrackingView) dto.TrackingResponse {
	return dto.TrackingResponse{
		TrackingCode:      view.TrackingCode,
		Status:            view.Status,
		Description:       view.Description,
		DestinationText:   view.DestinationText,
		ShipmentType:      view.ShipmentType,
		SenderKind:        view.SenderKind,
		Sender:            partyResponse(view.Sender),
		Recipient:         clientResponsePtr(view.Recipient),
		Operator:          contactResponse(view.Operator),
		Courier:           contactResponse(view.Courier),
		OriginBranch:      branchResponsePtr(view.OriginBranch),
		DestinationBranch: branchResponsePtr(view.DestinationBranch),
		Reschedule:        rescheduleResponse(view.Reschedule),
		History:           historyResponse(view.History),
	}
}

func rescheduleResponse(window *domain.RescheduleWindow) *dto.RescheduleResponse {
	if window == nil {
		return nil
	}
	return &dto.RescheduleResponse{
		Date:      window.Date,
		StartTime: window.StartTime,
		EndTime:   window.EndTime,
		Address:   window.Address,
	}
}

func historyResponse(entries []domain.HistoryEntry) []dto.HistoryEntryResponse {
	items := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.HistoryEntryResponse{
			Status:    entry.Status,
			Timestamp: entry.Timestamp.UTC(),
			Note:      entry.Note,
		})
	}
	return items
}

func partyResponse(party *domain.Party) *dto.PartyResponse {
	if party == nil {
		return nil
	}
	return &dto.PartyResponse{
		ID:        party.ID,
		Kind:      party.Kind,
		Name:      party.Name,
		LegalName: party.LegalName,
		Document:  party.Document,
		Phone:     party.Phone,
		Email:     party.Email,
		Address:   party.Address,
	}
}

func contactResponse(contact *domain.StaffContact) *dto.StaffContactResponse {
	if contact == nil {
		return nil
	}
	return &dto.StaffContactResponse{ID: contact.ID, Name: contact.Name, Phone: contact.Phone, Email: contact.Email}
}

func branchResponse(branch *domain.Branch) dto.BranchResponse {
	return dto.BranchResponse{ID: branch.ID, Name: branch.Name, Address: branch.Address}
}

func branchResponsePtr(branch *domain.Branch) *dto.BranchResponse {
	if branch == nil {
		return nil
	}
	resp := branchResponse(branch)
	return &resp
}

func clientResponse(client *domain.Client) dto.ClientResponse {
	return dto.ClientResponse{
		ID:       client.ID,
		Type:     client.Type,
		Name:     client.Name,
		Document: client.Document,
		Phone:    client.Phone,
		Email:    client.Email,
		Address:  client.Address,
	}
}

func clientResponsePtr(client *domain.Client) *dto.ClientResponse {
	if client == nil {
		return nil
	}
	resp := clientResponse(client)
	return &resp
}

func distributorResponse(d *domain.Distributor) dto.DistributorResponse {
	return dto.DistributorResponse{
		ID:        d.ID,
		TradeName: d.TradeName,
		LegalName: d.LegalName,
		Phone:     d.Phone,
		Address:   d.Address,
	}
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		RoleID:    user.RoleID,
		Role:      user.RoleName,
		BranchID:  user.BranchID,
		Active:    user.Active,
		CreatedAt: user.CreatedAt.UTC(),
	}
}

func identityResponse(identity *auth.Identity) dto.IdentityResponse {
	return dto.IdentityResponse{
		ID:       identity.ID,
		Name:     identity.Name,
		Email:    identity.Email,
		Role:     identity.Role,
		BranchID: identity.BranchID,
	}
}
