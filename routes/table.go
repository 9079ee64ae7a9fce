package routes

import (
	"strings"

	"github.com/maternalcare/portal-core/credential"
	"github.com/pkg/errors"
)

// Table maps registered route patterns to their requirements. Patterns are
// static paths except for "{param}" segments, which match any single segment.
// The table is built once at startup and never mutated afterwards.
type Table struct {
	requirements map[string]Requirement
	patterns     []string
}

// NewTable creates an empty table. Most callers want DefaultTable.
func NewTable() *Table {
	return &Table{requirements: make(map[string]Requirement)}
}

// Register declares the requirement for a route pattern.
func (t *Table) Register(pattern string, requirement Requirement) {
	if _, exists := t.requirements[pattern]; !exists {
		t.patterns = append(t.patterns, pattern)
	}
	t.requirements[pattern] = requirement
}

// RequirementFor returns the requirement declared for the given concrete path.
func (t *Table) RequirementFor(path string) (Requirement, bool) {
	if requirement, ok := t.requirements[path]; ok {
		return requirement, true
	}
	for _, pattern := range t.patterns {
		if matchPattern(pattern, path) {
			return t.requirements[pattern], true
		}
	}
	return Requirement{}, false
}

// Patterns returns every registered pattern in registration order.
func (t *Table) Patterns() []string {
	return append([]string(nil), t.patterns...)
}

// Validate checks the table's declarations at startup:
//   - every registered route declares either public or at least one role
//   - every role's designated reset route is registered and permits that role
func (t *Table) Validate() error {
	for _, pattern := range t.patterns {
		requirement := t.requirements[pattern]
		if !requirement.IsPublic() && !requirement.Defined() {
			return errors.Errorf("[Table.Validate] route %q declares no requirement", pattern)
		}
	}

	for _, role := range []credential.Role{credential.RoleMother, credential.RoleProvider, credential.RoleAdmin} {
		resetRoute, ok := ResetRoute(role)
		if !ok {
			return errors.Errorf("[Table.Validate] role %q has no designated reset route", role)
		}
		requirement, ok := t.requirements[resetRoute]
		if !ok {
			return errors.Errorf("[Table.Validate] reset route %q for role %q is not registered", resetRoute, role)
		}
		if !requirement.Includes(role) {
			return errors.Errorf("[Table.Validate] reset route %q does not permit role %q", resetRoute, role)
		}
	}
	return nil
}

// DefaultTable returns the portal's route table, validated.
func DefaultTable() (*Table, error) {
	t := NewTable()

	t.Register(RouteLogin, Public())
	t.Register(RouteForbidden, Public())

	for _, route := range []string{
		RouteMotherDashboard, RouteMotherProfile, RouteMotherSettings,
		RouteMotherAppointments, RouteMotherRecords, RouteMotherUpdatePassword,
		RouteMotherUpdateProfile, RouteMotherNotifications, RouteMotherHealthTips,
		RouteMotherAssistant,
	} {
		t.Register(route, Require(credential.RoleMother))
	}

	for _, route := range []string{
		RouteProviderDashboard, RouteProviderPatientsView, RouteProviderPatientsAdd,
		RouteProviderPatientHealth, RouteProviderAppointments, RouteProviderNotifications,
		RouteProviderProfile, RouteProviderUpdatePassword, RouteProviderSettings,
	} {
		t.Register(route, Require(credential.RoleProvider))
	}

	for _, route := range []string{
		RouteAdminDashboard, RouteAdminUsersAdd, RouteAdminUsersEdit,
		RouteAdminUsersView, RouteAdminAppointmentsAdd, RouteAdminAppointmentsView,
		RouteAdminNotifications, RouteAdminActivityLogs, RouteAdminSettings,
		RouteAdminUpdatePassword,
	} {
		t.Register(route, Require(credential.RoleAdmin))
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func matchPattern(pattern, path string) bool {
	if !strings.Contains(pattern, "{") {
		return pattern == path
	}
	patternSegments := strings.Split(pattern, "/")
	pathSegments := strings.Split(path, "/")
	if len(patternSegments) != len(pathSegments) {
		return false
	}
	for i, segment := range patternSegments {
		if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
			if pathSegments[i] == "" {
				return false
			}
			continue
		}
		if segment != pathSegments[i] {
			return false
		}
	}
	return true
}
