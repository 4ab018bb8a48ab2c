package service

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/spec-kit/courier-service/internal/auth"
	"github.com/spec-kit/courier-service/internal/config"
	"github.com/spec-kit/courier-service/internal/domain"
	"github.com/spec-kit/courier-service/internal/events"
	"github.com/spec-kit/courier-service/internal/lifecycle"
	"github.com/spec-kit/courier-service/internal/observability"
	"github.com/spec-kit/courier-service/internal/repository"
	"github.com/spec-kit/courier-service/internal/repository/memory"
	apperrors "github.com/spec-kit/courier-service/pkg/util/errorutil"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	cfg      config.Config
	repos    *repository.Store
	metrics  *observability.Metrics
	packages *PackageService
	users    *UserService
	auth     *AuthService
	refs     *ReferenceService

	admin    *auth.Identity
	operator *auth.Identity
	courier  *auth.Identity
	other    *auth.Identity
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.cfg = config.Config{
		Auth:       config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: 4},
		SuperAdmin: config.SuperAdminConfig{Username: "admin", Password: "admin123"},
	}

	store := memory.New(repository.StoreOptions{})
	store.SeedDemo(time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC))
	s.repos = store.Repositories()
	s.metrics = observability.NewMetrics()

	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	NewActivityService(dispatcher, zap.NewNop(), s.metrics).RegisterHandlers()

	engine := lifecycle.NewEngine(lifecycle.Dependencies{
		Packages:   s.repos.Packages,
		Dispatcher: dispatcher,
	})
	s.packages = NewPackageService(PackageDependencies{
		Engine:          engine,
		UserRepo:        s.repos.Users,
		BranchRepo:      s.repos.Branches,
		ClientRepo:      s.repos.Clients,
		DistributorRepo: s.repos.Distributors,
	})
	s.users = NewUserService(s.cfg, UserDependencies{
		UserRepo:   s.repos.Users,
		RoleRepo:   s.repos.Roles,
		BranchRepo: s.repos.Branches,
	})
	s.auth = NewAuthService(s.cfg, AuthDependencies{UserRepo: s.repos.Users})
	s.refs = NewReferenceService(ReferenceDependencies{
		BranchRepo:      s.repos.Branches,
		ClientRepo:      s.repos.Clients,
		DistributorRepo: s.repos.Distributors,
	})

	s.admin = auth.SuperAdminIdentity("admin")
	s.operator = s.createUser("Olga Operator", "olga@example.com", "r2", "999111222")
	s.courier = s.createUser("Cesar Courier", "cesar@example.com", "r3", "")
	s.other = s.createUser("Rosa Courier", "rosa@example.com", "r3", "")
}

func (s *ServiceSuite) createUser(name, email, roleID, phone string) *auth.Identity {
	user, err := s.users.Create(s.ctx, UserCreateInput{
		Name:     name,
		Email:    email,
		Phone:    phone,
		Password: "password",
		RoleID:   roleID,
	})
	s.Require().NoError(err)
	return auth.NewIdentity(user)
}

func (s *ServiceSuite) requireStatus(err error, status int) {
	s.T().Helper()
	s.Require().Error(err)
	s.Equal(status, apperrors.ToDomainError(err).HTTPStatus, err.Error())
}

func (s *ServiceSuite) assignedPackage() *domain.PackageDetail {
	detail, err := s.packages.Create(s.ctx, s.operator, CreatePackageInput{
		SenderID:        "d1",
		RecipientID:     "c1",
		OriginBranchID:  "b1",
		CourierID:       &s.courier.ID,
		DestinationText: "Jr. Callao 456",
	})
	s.Require().NoError(err)
	return detail
}

func (s *ServiceSuite) TestCreateClientToClient() {
	detail, err := s.packages.Create(s.ctx, s.admin, CreatePackageInput{
		ShipmentType:    string(domain.ShipmentClientToClient),
		SenderID:        "c2",
		RecipientID:     "c1",
		OriginBranchID:  "b1",
		DestinationText: "Jr. Perú 123",
		Description:     "Documents",
	})
	s.Require().NoError(err)
	s.Equal(domain.StatusInWarehouse, detail.Status)
	s.True(domain.IsTrackingCode(detail.TrackingCode))
	s.Equal(domain.SenderKindClient, detail.SenderKind)
	s.Require().NotNil(detail.Sender)
	s.Equal("c2", detail.Sender.ID)
	s.Require().Len(detail.History, 1)

	_, err = s.packages.Create(s.ctx, s.admin, CreatePackageInput{
		ShipmentType:    string(domain.ShipmentClientToClient),
		SenderID:        "c1",
		RecipientID:     "c1",
		OriginBranchID:  "b1",
		DestinationText: "Jr. Perú 123",
	})
	s.requireStatus(err, http.StatusBadRequest)
}

func (s *ServiceSuite) TestCreateValidatesReferences() {
	base := CreatePackageInput{
		SenderID:        "d1",
		RecipientID:     "c1",
		OriginBranchID:  "b1",
		DestinationText: "Jr. Callao 456",
	}

	missing := base
	missing.DestinationText = "  "
	_, err := s.packages.Create(s.ctx, s.admin, missing)
	s.requireStatus(err, http.StatusBadRequest)
	s.Equal([]string{"destination_text"}, apperrors.ToDomainError(err).Details["fields"])

	wrongSender := base
	wrongSender.SenderID = "c2"
	_, err = s.packages.Create(s.ctx, s.admin, wrongSender)
	s.requireStatus(err, http.StatusBadRequest)

	badBranch := base
	badBranch.DestinationBranchID = strPtr("b9")
	_, err = s.packages.Create(s.ctx, s.admin, badBranch)
	s.requireStatus(err, http.StatusBadRequest)

	courierAsOperator := base
	courierAsOperator.OperatorID = &s.courier.ID
	_, err = s.packages.Create(s.ctx, s.admin, courierAsOperator)
	s.requireStatus(err, http.StatusBadRequest)

	operatorAsCourier := base
	operatorAsCourier.CourierID = &s.operator.ID
	_, err = s.packages.Create(s.ctx, s.admin, operatorAsCourier)
	s.requireStatus(err, http.StatusBadRequest)

	badType := base
	badType.ShipmentType = "by_pigeon"
	_, err = s.packages.Create(s.ctx, s.admin, badType)
	s.requireStatus(err, http.StatusBadRequest)

	_, err = s.packages.Create(s.ctx, s.courier, base)
	s.requireStatus(err, http.StatusForbidden)
}

func (s *ServiceSuite) TestOperatorDefaultsToCaller() {
	detail := s.assignedPackage()
	s.Require().NotNil(detail.Operator)
	s.Equal(s.operator.ID, detail.Operator.ID)
	s.Require().NotNil(detail.Courier)
	s.Equal(s.courier.ID, detail.Courier.ID)

	byAdmin, err := s.packages.Create(s.ctx, s.admin, CreatePackageInput{
		SenderID:        "d2",
		RecipientID:     "c2",
		OriginBranchID:  "b2",
		DestinationText: "Av. Amazonas 456",
	})
	s.Require().NoError(err)
	s.Nil(byAdmin.Operator)
}

func (s *ServiceSuite) TestCourierStatusRules() {
	detail := s.assignedPackage()

	_, err := s.packages.UpdateStatus(s.ctx, s.courier, detail.ID, "In Transit", "")
	s.requireStatus(err, http.StatusForbidden)

	_, err = s.packages.UpdateStatus(s.ctx, s.other, detail.ID, "Delivered", "")
	s.requireStatus(err, http.StatusForbidden)

	pkg, err := s.packages.UpdateStatus(s.ctx, s.courier, detail.ID, "Delivered", "left at door")
	s.Require().NoError(err)
	s.Equal(domain.StatusDelivered, pkg.Status)

	history, err := s.repos.Packages.History(s.ctx, detail.ID)
	s.Require().NoError(err)
	s.Len(history, 2)
}

func (s *ServiceSuite) TestUnknownStatusRejectedBeforeLookup() {
	_, err := s.packages.UpdateStatus(s.ctx, s.admin, "p1", "Lost", "")
	s.requireStatus(err, http.StatusBadRequest)

	history, err := s.repos.Packages.History(s.ctx, "p1")
	s.Require().NoError(err)
	s.Len(history, 2)

	_, err = s.packages.UpdateStatus(s.ctx, s.admin, "missing", "Delivered", "")
	s.requireStatus(err, http.StatusNotFound)
}

func (s *ServiceSuite) TestVisibilityScoping() {
	mine := s.assignedPackage()

	_, err := s.packages.Get(s.ctx, s.courier, mine.ID)
	s.Require().NoError(err)
	_, err = s.packages.Get(s.ctx, s.other, mine.ID)
	s.requireStatus(err, http.StatusForbidden)
	_, err = s.packages.Get(s.ctx, s.admin, "nope")
	s.requireStatus(err, http.StatusNotFound)

	all, err := s.packages.List(s.ctx, s.operator, "")
	s.Require().NoError(err)
	s.Len(all, 2)

	inTransit, err := s.packages.ListExpanded(s.ctx, s.operator, "In Transit")
	s.Require().NoError(err)
	s.Require().Len(inTransit, 1)
	s.Equal("TM-2026-0001", inTransit[0].TrackingCode)

	scoped, err := s.packages.List(s.ctx, s.courier, "")
	s.Require().NoError(err)
	s.Require().Len(scoped, 1)
	s.Equal(mine.ID, scoped[0].ID)

	none, err := s.packages.ListExpanded(s.ctx, s.courier, "Delivered")
	s.Require().NoError(err)
	s.Empty(none)

	_, err = s.packages.List(s.ctx, s.operator, "Lost")
	s.requireStatus(err, http.StatusBadRequest)

	assigned, err := s.packages.ListMine(s.ctx, s.courier)
	s.Require().NoError(err)
	s.Len(assigned, 1)
	_, err = s.packages.ListMine(s.ctx, s.operator)
	s.requireStatus(err, http.StatusForbidden)
}

func (s *ServiceSuite) TestPublicRescheduleRequiresFailedAttempt() {
	window := domain.RescheduleWindow{Date: "2026-04-03", StartTime: "09:00", Address: "Av. Nueva 1"}

	_, err := s.packages.RescheduleByCode(s.ctx, "TM-2026-0001", window)
	s.requireStatus(err, http.StatusConflict)

	_, err = s.packages.UpdateStatus(s.ctx, s.admin, "p1", "Failed Attempt", "nobody home")
	s.Require().NoError(err)

	view, err := s.packages.RescheduleByCode(s.ctx, " TM-2026-0001 ", window)
	s.Require().NoError(err)
	s.Equal(domain.StatusInTransit, view.Status)
	s.Equal("Av. Nueva 1", view.DestinationText)
	s.Require().NotNil(view.Reschedule)
	s.Equal("12:00", view.Reschedule.EndTime)

	_, err = s.packages.RescheduleByCode(s.ctx, "TM-1999-0000", window)
	s.requireStatus(err, http.StatusNotFound)
}

func (s *ServiceSuite) TestBackOfficeReschedule() {
	_, err := s.packages.Reschedule(s.ctx, s.courier, "p1", domain.RescheduleWindow{Date: "2026-04-03", StartTime: "09:00"})
	s.requireStatus(err, http.StatusForbidden)

	_, err = s.packages.Reschedule(s.ctx, s.operator, "p1", domain.RescheduleWindow{Date: "03/04/2026", StartTime: "09:00"})
	s.requireStatus(err, http.StatusBadRequest)

	pkg, err := s.packages.Reschedule(s.ctx, s.operator, "p1", domain.RescheduleWindow{Date: "2026-04-03", StartTime: "09:00", EndTime: "11:00"})
	s.Require().NoError(err)
	s.Equal(domain.StatusInTransit, pkg.Status)

	expected := `
# HELP courier_package_reschedules_total Delivery windows recorded.
# TYPE courier_package_reschedules_total counter
courier_package_reschedules_total 1
`
	s.NoError(testutil.GatherAndCompare(s.metrics.Registry(), strings.NewReader(expected), "courier_package_reschedules_total"))
}

func (s *ServiceSuite) TestActivityMetricsFollowEvents() {
	s.assignedPackage()
	count, err := testutil.GatherAndCount(s.metrics.Registry(), "courier_packages_created_total")
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *ServiceSuite) TestTrackUnknownCode() {
	_, err := s.packages.Track(s.ctx, "TM-2026-9999")
	s.requireStatus(err, http.StatusNotFound)

	view, err := s.packages.Track(s.ctx, "TM-2026-0001")
	s.Require().NoError(err)
	s.Equal("d1", view.Sender.ID)
	s.Len(view.History, 2)
}

func (s *ServiceSuite) TestLogin() {
	res, err := s.auth.Login(s.ctx, "admin", "admin123")
	s.Require().NoError(err)
	s.Equal(auth.SuperAdminID, res.Identity.ID)
	s.True(res.Identity.Can(auth.CapManageUsers))

	res, err = s.auth.Login(s.ctx, "  OLGA@example.com ", "password")
	s.Require().NoError(err)
	s.Equal(s.operator.ID, res.Identity.ID)

	resolved, err := s.auth.Resolve(s.ctx, res.Token)
	s.Require().NoError(err)
	s.Equal(domain.RoleOperator, resolved.Role)

	s.Require().NoError(s.auth.Logout(s.ctx, res.Token))
	_, err = s.auth.Resolve(s.ctx, res.Token)
	s.requireStatus(err, http.StatusUnauthorized)

	_, err = s.auth.Login(s.ctx, "olga@example.com", "wrong")
	s.requireStatus(err, http.StatusUnauthorized)
	_, err = s.auth.Login(s.ctx, "ghost@example.com", "password")
	s.requireStatus(err, http.StatusUnauthorized)
	_, err = s.auth.Login(s.ctx, "", "")
	s.requireStatus(err, http.StatusBadRequest)

	_, err = s.users.Update(s.ctx, s.courier.ID, UserUpdateInput{Active: boolPtr(false)})
	s.Require().NoError(err)
	_, err = s.auth.Login(s.ctx, "cesar@example.com", "password")
	s.requireStatus(err, http.StatusUnauthorized)
}

func (s *ServiceSuite) TestUserManagement() {
	_, err := s.users.Create(s.ctx, UserCreateInput{Name: "Dup", Email: "OLGA@example.com", Password: "x", RoleID: "r2"})
	s.requireStatus(err, http.StatusConflict)

	_, err = s.users.Create(s.ctx, UserCreateInput{Name: "No role", Email: "n@example.com", Password: "x", RoleID: "r9"})
	s.requireStatus(err, http.StatusBadRequest)

	_, err = s.users.Create(s.ctx, UserCreateInput{Email: "n@example.com"})
	s.requireStatus(err, http.StatusBadRequest)

	before, err := s.repos.Users.GetByID(s.ctx, s.operator.ID)
	s.Require().NoError(err)

	updated, err := s.users.Update(s.ctx, s.operator.ID, UserUpdateInput{Name: strPtr("Olga M."), BranchID: strPtr("b1")})
	s.Require().NoError(err)
	s.Equal("Olga M.", updated.Name)
	s.Equal(before.PasswordHash, updated.PasswordHash)

	updated, err = s.users.Update(s.ctx, s.operator.ID, UserUpdateInput{Password: strPtr("new-pass")})
	s.Require().NoError(err)
	s.NotEqual(before.PasswordHash, updated.PasswordHash)
	s.NoError(auth.ComparePassword(updated.PasswordHash, "new-pass"))

	_, err = s.users.Update(s.ctx, s.operator.ID, UserUpdateInput{Email: strPtr("cesar@example.com")})
	s.requireStatus(err, http.StatusConflict)

	s.Require().NoError(s.users.Delete(s.ctx, s.other.ID))
	s.requireStatus(s.users.Delete(s.ctx, s.other.ID), http.StatusNotFound)
	_, err = s.users.Get(s.ctx, s.other.ID)
	s.requireStatus(err, http.StatusNotFound)
}

func (s *ServiceSuite) TestDirectories() {
	operators, err := s.users.ListOperators(s.ctx)
	s.Require().NoError(err)
	s.Len(operators, 1)

	couriers, err := s.users.ListCouriers(s.ctx)
	s.Require().NoError(err)
	s.Len(couriers, 2)

	phone, err := s.users.OperatorPhone(s.ctx)
	s.Require().NoError(err)
	s.Equal("999111222", phone)

	roles, err := s.users.ListRoles(s.ctx)
	s.Require().NoError(err)
	s.Len(roles, 3)
}

func (s *ServiceSuite) TestReferenceData() {
	_, err := s.refs.SaveBranch(s.ctx, domain.Branch{Name: "Sur"})
	s.requireStatus(err, http.StatusBadRequest)

	branch, err := s.refs.SaveBranch(s.ctx, domain.Branch{Name: "Sur", Address: "Av. Sur 1"})
	s.Require().NoError(err)
	s.NotEmpty(branch.ID)

	branch.Address = "Av. Sur 2"
	_, err = s.refs.SaveBranch(s.ctx, *branch)
	s.Require().NoError(err)

	_, err = s.refs.SaveBranch(s.ctx, domain.Branch{ID: "b9", Name: "X", Address: "Y"})
	s.requireStatus(err, http.StatusNotFound)

	client, err := s.refs.SaveClient(s.ctx, domain.Client{Name: "Ana", Type: "alien"})
	s.Require().NoError(err)
	s.Equal(domain.ClientTypePerson, client.Type)

	_, err = s.refs.SaveDistributor(s.ctx, domain.Distributor{LegalName: "No trade name"})
	s.requireStatus(err, http.StatusBadRequest)

	branches, err := s.refs.ListBranches(s.ctx)
	s.Require().NoError(err)
	s.Len(branches, 3)
}

func TestEnsureRolesAndSeedAdmin(t *testing.T) {
	ctx := context.Background()
	repos := memory.New(repository.StoreOptions{}).Repositories()
	users := NewUserService(config.Config{Auth: config.AuthConfig{BcryptCost: 4}}, UserDependencies{
		UserRepo:   repos.Users,
		RoleRepo:   repos.Roles,
		BranchRepo: repos.Branches,
	})

	require.NoError(t, users.EnsureRoles(ctx))
	require.NoError(t, users.EnsureRoles(ctx))
	roles, err := repos.Roles.List(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 3)

	seed := config.SeedAdminConfig{Name: "Root", Email: "Root@Example.com", Password: "pw"}
	require.NoError(t, users.EnsureSeedAdmin(ctx, seed))
	require.NoError(t, users.EnsureSeedAdmin(ctx, seed))
	all, err := repos.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "root@example.com", all[0].Email)
	require.Equal(t, domain.RoleAdministrator, all[0].RoleName)

	require.NoError(t, users.EnsureSeedAdmin(ctx, config.SeedAdminConfig{}))
}
