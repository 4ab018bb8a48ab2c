package memory

import (
	"time"

	"github.com/spec-kit/courier-service/internal/domain"
)

// SeedDemo loads the demo catalog: the three roles, two branches, two clients,
// two distributors and one package already in transit.
func (s *Store) SeedDemo(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now = now.UTC()
	s.roles = append(s.roles,
		domain.Role{ID: "r1", Name: domain.RoleAdministrator},
		domain.Role{ID: "r2", Name: domain.RoleOperator},
		domain.Role{ID: "r3", Name: domain.RoleCourier},
	)
	s.branches = append(s.branches,
		domain.Branch{ID: "b1", Name: "Tingo María - Centro", Address: "Av. Principal 123"},
		domain.Branch{ID: "b2", Name: "Tingo María - Norte", Address: "Jr. Logística 456"},
	)
	s.clients = append(s.clients,
		domain.Client{
			ID:       "c1",
			Type:     domain.ClientTypePerson,
			Name:     "Carlos Rojas",
			Document: "DNI 12345678",
			Phone:    "987654321",
			Email:    "carlos@correo.com",
			Address:  "Jr. Perú 123",
		},
		domain.Client{
			ID:       "c2",
			Type:     domain.ClientTypeCompany,
			Name:     "Botica San José",
			Document: "RUC 20123456789",
			Phone:    "065-123456",
			Email:    "contacto@boticasanjose.pe",
			Address:  "Av. Amazonas 456",
		},
	)
	s.distributors = append(s.distributors,
		domain.Distributor{
			ID:        "d1",
			TradeName: "DIMEXA",
			LegalName: "Distribuidora de Medicamentos S.A.",
			Phone:     "064-562100",
			Address:   "Av. Ejemplo 123, Tingo María",
		},
		domain.Distributor{
			ID:        "d2",
			TradeName: "ALFARO",
			LegalName: "Droguería Alfaro S.A.C.",
			Phone:     "064-562234",
			Address:   "Jr. Ucayali 789, Tingo María",
		},
	)

	sender := "d1"
	pkg := domain.Package{
		ID:                  "p1",
		TrackingCode:        "TM-2026-0001",
		ShipmentType:        domain.ShipmentDistributorToClient,
		SenderDistributorID: &sender,
		RecipientID:         "c1",
		OriginBranchID:      "b1",
		DestinationText:     "Jr. Callao 456, Tingo María",
		Description:         "Medicines",
		Status:              domain.StatusInTransit,
		CreatedAt:           now,
	}
	s.packages = append(s.packages, pkg)
	s.codes[pkg.TrackingCode] = struct{}{}
	s.history[pkg.ID] = []domain.HistoryEntry{
		{PackageID: pkg.ID, Status: domain.StatusInWarehouse, Timestamp: now},
		{PackageID: pkg.ID, Status: domain.StatusInTransit, Timestamp: now},
	}
}
