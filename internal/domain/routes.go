package domain

// Route is a named screen of the application.
type Route string

const (
	RouteLogin     Route = "Login"
	RouteBills     Route = "Bills"
	RouteNewBill   Route = "NewBill"
	RouteDashboard Route = "Dashboard"
)

// RoutesPath maps each route to the path it is served on.
var RoutesPath = map[Route]string{
	RouteLogin:     "/",
	RouteBills:     "/employee/bills",
	RouteNewBill:   "/employee/bill/new",
	RouteDashboard: "/admin/dashboard",
}

// Path returns the path of r, or the login path for an unknown route.
func (r Route) Path() string {
	if p, ok := RoutesPath[r]; ok {
		return p
	}
	return RoutesPath[RouteLogin]
}
