// Package routes declares every navigable portal route together with the roles
// permitted to view it. All paths live here as constants so a mistyped route or
// role can be caught by Validate at startup instead of becoming an
// access-control bug.
package routes

import "github.com/maternalcare/portal-core/credential"

// Route path constants
const (
	// Public routes
	RouteLogin     = "/login"
	RouteForbidden = "/403"

	// Mother routes
	RouteMotherDashboard      = "/mother/dashboard"
	RouteMotherProfile        = "/mother/profile"
	RouteMotherSettings       = "/mother/settings"
	RouteMotherAppointments   = "/mother/appointments"
	RouteMotherRecords        = "/mother/records"
	RouteMotherUpdatePassword = "/mother/update-password"
	RouteMotherUpdateProfile  = "/mother/update-profile"
	RouteMotherNotifications  = "/mother/notifications"
	RouteMotherHealthTips     = "/mother/health-tips"
	RouteMotherAssistant      = "/mother/assistant"

	// Provider routes
	RouteProviderDashboard      = "/provider/dashboard"
	RouteProviderPatientsView   = "/provider/users/view"
	RouteProviderPatientsAdd    = "/provider/users/add"
	RouteProviderPatientHealth  = "/provider/patients/{customId}/health"
	RouteProviderAppointments   = "/provider/appointments"
	RouteProviderNotifications  = "/provider/notifications"
	RouteProviderProfile        = "/provider/profile"
	RouteProviderUpdatePassword = "/provider/update-password"
	RouteProviderSettings       = "/provider/settings"

	// Admin routes
	RouteAdminDashboard        = "/admin/dashboard"
	RouteAdminUsersAdd         = "/admin/users/add"
	RouteAdminUsersEdit        = "/admin/users/edit/{userId}"
	RouteAdminUsersView        = "/admin/users/view"
	RouteAdminAppointmentsAdd  = "/admin/appointments/add"
	RouteAdminAppointmentsView = "/admin/appointments/view"
	RouteAdminNotifications    = "/admin/notifications"
	RouteAdminActivityLogs     = "/admin/activity-logs"
	RouteAdminSettings         = "/admin/settings"
	RouteAdminUpdatePassword   = "/admin/update-password"
)

// resetRoutes names the one designated forced-password-reset route per role.
// The forced-reset redirect compares against these structurally, never by
// substring.
var resetRoutes = map[credential.Role]string{
	credential.RoleMother:   RouteMotherUpdatePassword,
	credential.RoleProvider: RouteProviderUpdatePassword,
	credential.RoleAdmin:    RouteAdminUpdatePassword,
}

// ResetRoute returns the designated password-reset route for a role.
func ResetRoute(role credential.Role) (string, bool) {
	route, ok := resetRoutes[role]
	return route, ok
}
