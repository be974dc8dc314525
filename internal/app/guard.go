package app

import (
	"strings"

	"hotelapp_web/internal/domain"
)

const (
	RouteLogin    = "/login"
	RouteRegister = "/register"
	RouteHome     = "/home"
	RoutePackages = "/packages"
	RouteHosting  = "/hotels"
	RouteAddTrip  = "/travel-packages/mine"
)

// Decision is the outcome of a guard check. Redirect is empty when the
// route may render.
type Decision struct {
	Allowed  bool
	Redirect string
}

func publicRoute(route string) bool {
	return route == RouteLogin || route == RouteRegister
}

// Guard sends token-less sessions to the login page. Role-based
// authorization is the backend's job.
func Guard(s *Session, route string) Decision {
	if publicRoute(route) || (s != nil && s.LoggedIn()) {
		return Decision{Allowed: true}
	}
	return Decision{Redirect: RouteLogin}
}

// Landing is where a fresh login goes: hosts manage their hotels,
// everyone else searches.
func Landing(role domain.Role) string {
	if role == domain.RoleAgent {
		return RouteHosting
	}
	return RouteHome
}

type NavLink struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// Nav lists the navigation entries for the current page.
func Nav(s *Session, current string) []NavLink {
	if s == nil || !s.LoggedIn() {
		return []NavLink{{"Log in", RouteLogin}, {"Sign up", RouteRegister}}
	}
	if s.Role() == domain.RoleAgent {
		return []NavLink{{"Travel package", RouteAddTrip}, {"Hotel", RouteHosting}, {"Log out", "/logout"}}
	}
	toggle := NavLink{"Book Travel Packages", RoutePackages}
	if strings.HasPrefix(current, RoutePackages) {
		toggle = NavLink{"Book hotels", RouteHome}
	}
	return []NavLink{toggle, {"Log out", "/logout"}}
}
