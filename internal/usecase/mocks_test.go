package usecase

import (
	"context"
	"fmt"

	"github.com/instreg/registration-admin/internal/core/domain"
	"github.com/instreg/registration-admin/internal/repository"
)

// Mock repositories and collaborators shared by the usecase tests.

type permissionRepoMock struct {
	byID      map[int64]domain.Permission
	byName    map[string]domain.Permission
	nextID    int64
	createErr error
	getErr    error
	listErr   error
	updateErr error
	deleteErr error
}

func newPermissionRepoMock() *permissionRepoMock {
	return &permissionRepoMock{
		byID:   make(map[int64]domain.Permission),
		byName: make(map[string]domain.Permission),
	}
}

func (m *permissionRepoMock) seed(permission domain.Permission) domain.Permission {
	if permission.ID == 0 {
		m.nextID++
		permission.ID = m.nextID
	} else if permission.ID > m.nextID {
		m.nextID = permission.ID
	}
	m.byID[permission.ID] = permission
	m.byName[permission.SystemName] = permission
	return permission
}

func (m *permissionRepoMock) Create(_ context.Context, permission domain.Permission) (int64, error) {
	if m.createErr != nil {
		return 0, m.createErr
	}
	if _, exists := m.byName[permission.SystemName]; exists {
		return 0, repository.ErrDuplicate
	}
	return m.seed(permission).ID, nil
}

func (m *permissionRepoMock) GetByID(_ context.Context, id int64) (*domain.Permission, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if permission, ok := m.byID[id]; ok {
		return &permission, nil
	}
	return nil, repository.ErrNotFound
}

func (m *permissionRepoMock) GetBySystemName(_ context.Context, systemName string) (*domain.Permission, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if permission, ok := m.byName[systemName]; ok {
		return &permission, nil
	}
	return nil, repository.ErrNotFound
}

func (m *permissionRepoMock) List(_ context.Context, onlyActive bool) ([]domain.Permission, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	permissions := make([]domain.Permission, 0, len(m.byID))
	for _, permission := range m.byID {
		if onlyActive && !permission.IsActive {
			continue
		}
		permissions = append(permissions, permission)
	}
	return permissions, nil
}

func (m *permissionRepoMock) Update(_ context.Context, permission domain.Permission) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, exists := m.byID[permission.ID]; !exists {
		return repository.ErrNotFound
	}
	m.byID[permission.ID] = permission
	m.byName[permission.SystemName] = permission
	return nil
}

func (m *permissionRepoMock) Delete(_ context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	permission, exists := m.byID[id]
	if !exists {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	delete(m.byName, permission.SystemName)
	return nil
}

type roleRepoMock struct {
	byID        map[int64]domain.Role
	byName      map[string]domain.Role
	assignments map[int64]map[int64]struct{} // userID -> roleIDs
	grants      map[int64]map[int64]struct{} // roleID -> permissionIDs
	nextID      int64
	createErr   error
	getErr      error
	listErr     error
	assignErr   error
	grantErr    error
	existsErr   error
}

func newRoleRepoMock() *roleRepoMock {
	return &roleRepoMock{
		byID:        make(map[int64]domain.Role),
		byName:      make(map[string]domain.Role),
		assignments: make(map[int64]map[int64]struct{}),
		grants:      make(map[int64]map[int64]struct{}),
	}
}

func (m *roleRepoMock) seed(role domain.Role) domain.Role {
	if role.ID == 0 {
		m.nextID++
		role.ID = m.nextID
	} else if role.ID > m.nextID {
		m.nextID = role.ID
	}
	m.byID[role.ID] = role
	m.byName[role.SystemName] = role
	return role
}

func (m *roleRepoMock) Create(_ context.Context, role domain.Role) (int64, error) {
	if m.createErr != nil {
		return 0, m.createErr
	}
	if _, exists := m.byName[role.SystemName]; exists {
		return 0, repository.ErrDuplicate
	}
	return m.seed(role).ID, nil
}

func (m *roleRepoMock) GetByID(_ context.Context, id int64) (*domain.Role, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if role, ok := m.byID[id]; ok {
		return &role, nil
	}
	return nil, repository.ErrNotFound
}

func (m *roleRepoMock) GetBySystemName(_ context.Context, systemName string) (*domain.Role, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if role, ok := m.byName[systemName]; ok {
		return &role, nil
	}
	return nil, repository.ErrNotFound
}

func (m *roleRepoMock) List(_ context.Context, onlyActive bool) ([]domain.Role, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	roles := make([]domain.Role, 0, len(m.byID))
	for _, role := range m.byID {
		if onlyActive && !role.IsActive {
			continue
		}
		roles = append(roles, role)
	}
	return roles, nil
}

func (m *roleRepoMock) Update(_ context.Context, role domain.Role) error {
	if _, exists := m.byID[role.ID]; !exists {
		return repository.ErrNotFound
	}
	m.byID[role.ID] = role
	m.byName[role.SystemName] = role
	return nil
}

func (m *roleRepoMock) Delete(_ context.Context, id int64) error {
	role, exists := m.byID[id]
	if !exists {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	delete(m.byName, role.SystemName)
	delete(m.grants, id)
	for _, roleIDs := range m.assignments {
		delete(roleIDs, id)
	}
	return nil
}

func (m *roleRepoMock) ListByUser(_ context.Context, userID int64) ([]domain.Role, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	roles := make([]domain.Role, 0)
	for roleID := range m.assignments[userID] {
		role, ok := m.byID[roleID]
		if !ok || !role.IsActive {
			continue
		}
		roles = append(roles, role)
	}
	return roles, nil
}

func (m *roleRepoMock) AssignToUser(_ context.Context, userID, roleID int64) (bool, error) {
	if m.assignErr != nil {
		return false, m.assignErr
	}
	if m.assignments[userID] == nil {
		m.assignments[userID] = make(map[int64]struct{})
	}
	if _, exists := m.assignments[userID][roleID]; exists {
		return false, nil
	}
	m.assignments[userID][roleID] = struct{}{}
	return true, nil
}

func (m *roleRepoMock) RemoveFromUser(_ context.Context, userID, roleID int64) (bool, error) {
	if m.assignErr != nil {
		return false, m.assignErr
	}
	if _, exists := m.assignments[userID][roleID]; !exists {
		return false, nil
	}
	delete(m.assignments[userID], roleID)
	return true, nil
}

func (m *roleRepoMock) ClearAssignments(_ context.Context, userID int64) (int, error) {
	removed := len(m.assignments[userID])
	delete(m.assignments, userID)
	return removed, nil
}

func (m *roleRepoMock) Grant(_ context.Context, roleID, permissionID int64) (bool, error) {
	if m.grantErr != nil {
		return false, m.grantErr
	}
	if m.grants[roleID] == nil {
		m.grants[roleID] = make(map[int64]struct{})
	}
	if _, exists := m.grants[roleID][permissionID]; exists {
		return false, nil
	}
	m.grants[roleID][permissionID] = struct{}{}
	return true, nil
}

func (m *roleRepoMock) Revoke(_ context.Context, roleID, permissionID int64) (bool, error) {
	if m.grantErr != nil {
		return false, m.grantErr
	}
	if _, exists := m.grants[roleID][permissionID]; !exists {
		return false, nil
	}
	delete(m.grants[roleID], permissionID)
	return true, nil
}

func (m *roleRepoMock) GrantExists(_ context.Context, permissionID int64, roleIDs []int64) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	for _, roleID := range roleIDs {
		if _, exists := m.grants[roleID][permissionID]; exists {
			return true, nil
		}
	}
	return false, nil
}

func (m *roleRepoMock) PermissionsForRole(_ context.Context, _ int64) ([]domain.Permission, error) {
	return nil, nil
}

type overrideKey struct {
	userID       int64
	permissionID int64
}

type overrideRepoMock struct {
	rows   map[overrideKey]bool
	getErr error
	setErr error
}

func newOverrideRepoMock() *overrideRepoMock {
	return &overrideRepoMock{rows: make(map[overrideKey]bool)}
}

func (m *overrideRepoMock) Get(_ context.Context, userID, permissionID int64) (*domain.PermissionOverride, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	granted, ok := m.rows[overrideKey{userID, permissionID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &domain.PermissionOverride{UserID: userID, PermissionID: permissionID, IsGranted: granted}, nil
}

func (m *overrideRepoMock) Set(_ context.Context, override domain.PermissionOverride) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.rows[overrideKey{override.UserID, override.PermissionID}] = override.IsGranted
	return nil
}

func (m *overrideRepoMock) Remove(_ context.Context, userID, permissionID int64) (bool, error) {
	key := overrideKey{userID, permissionID}
	if _, ok := m.rows[key]; !ok {
		return false, nil
	}
	delete(m.rows, key)
	return true, nil
}

func (m *overrideRepoMock) ListByUser(_ context.Context, userID int64) ([]domain.PermissionOverride, error) {
	overrides := make([]domain.PermissionOverride, 0)
	for key, granted := range m.rows {
		if key.userID != userID {
			continue
		}
		overrides = append(overrides, domain.PermissionOverride{
			UserID:       key.userID,
			PermissionID: key.permissionID,
			IsGranted:    granted,
		})
	}
	return overrides, nil
}

type auditEntry struct {
	entity   string
	entityID int64
	field    string
	oldValue string
	newValue string
	actorID  int64
}

type auditLogMock struct {
	entries []auditEntry
	err     error
}

func (m *auditLogMock) LogChange(_ context.Context, entityName string, entityID int64, fieldName, oldValue, newValue string, actingUserID int64) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, auditEntry{
		entity:   entityName,
		entityID: entityID,
		field:    fieldName,
		oldValue: oldValue,
		newValue: newValue,
		actorID:  actingUserID,
	})
	return nil
}

func (m *auditLogMock) lastEntry() (auditEntry, bool) {
	if len(m.entries) == 0 {
		return auditEntry{}, false
	}
	return m.entries[len(m.entries)-1], true
}

type publisherMock struct {
	roleCreated        []domain.RoleCreatedEvent
	permissionGranted  []domain.PermissionGrantedEvent
	roleCreatedErr     error
	permissionGrantErr error
}

func (m *publisherMock) PublishRoleCreated(_ context.Context, event domain.RoleCreatedEvent) error {
	if m.roleCreatedErr != nil {
		return m.roleCreatedErr
	}
	m.roleCreated = append(m.roleCreated, event)
	return nil
}

func (m *publisherMock) PublishPermissionGranted(_ context.Context, event domain.PermissionGrantedEvent) error {
	if m.permissionGrantErr != nil {
		return m.permissionGrantErr
	}
	m.permissionGranted = append(m.permissionGranted, event)
	return nil
}

type staticPrincipal int64

func (p staticPrincipal) CurrentUserID(_ context.Context) int64 {
	return int64(p)
}

type passthroughLocalizer struct{}

func (passthroughLocalizer) Get(key string) string {
	return fmt.Sprintf("localized(%s)", key)
}

type decision struct {
	outcome string
	reason  string
}

type recorderMock struct {
	decisions []decision
}

func (m *recorderMock) Record(outcome, reason string) {
	m.decisions = append(m.decisions, decision{outcome: outcome, reason: reason})
}

func (m *recorderMock) last() (decision, bool) {
	if len(m.decisions) == 0 {
		return decision{}, false
	}
	return m.decisions[len(m.decisions)-1], true
}
