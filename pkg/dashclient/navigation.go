package dashclient

// MenuItem is one sidebar entry. Route is where the entry navigates;
// Terminal marks entries that end the session instead of navigating.
type MenuItem struct {
	Key      string
	Title    string
	Route    string
	Terminal bool
}

const (
	MenuUsers            = "users"
	MenuOrganization     = "organization"
	MenuSubscription     = "subscription"
	MenuStatistics       = "statistics"
	MenuOrganizationList = "organizations"
	MenuLogout           = "logout"
)

// Menu returns the sidebar entries for a session's role, in display order.
// Super admins see the fleet-wide variants of the subscription and statistics
// screens plus the organization list; the entries dispatch by role here so a
// screen never re-checks it.
func Menu(session Session) []MenuItem {
	switch session.Role {
	case RoleSuperAdmin:
		return []MenuItem{
			{Key: MenuUsers, Title: "User Management", Route: "/admin/users"},
			{Key: MenuOrganizationList, Title: "Organizations", Route: "/admin/organizations"},
			{Key: MenuSubscription, Title: "Subscription Info", Route: "/admin/subscriptions/usage"},
			{Key: MenuStatistics, Title: "Usage Statistics", Route: "/admin/statistics/all"},
			{Key: MenuLogout, Title: "Logout", Terminal: true},
		}
	case RoleAdmin:
		return []MenuItem{
			{Key: MenuUsers, Title: "User Management", Route: "/admin/users"},
			{Key: MenuOrganization, Title: "My Organization", Route: "/admin/organization"},
			{Key: MenuSubscription, Title: "Subscription Info", Route: "/admin/subscription"},
			{Key: MenuStatistics, Title: "Usage Statistics", Route: "/admin/statistics"},
			{Key: MenuLogout, Title: "Logout", Terminal: true},
		}
	case RoleUser:
		return []MenuItem{
			{Key: "dashboard", Title: "Dashboard", Route: "/dashboard"},
			{Key: MenuLogout, Title: "Logout", Terminal: true},
		}
	default:
		return nil
	}
}
