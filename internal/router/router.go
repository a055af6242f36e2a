// Package router selects the screen to render for a request path.
package router

import (
	"context"
	"strings"

	"github.com/a-h/templ"

	"github.com/csg33k/billed/internal/containers"
	"github.com/csg33k/billed/internal/domain"
	"github.com/csg33k/billed/internal/ports"
	"github.com/csg33k/billed/internal/templates"
)

// View builds the content of a route for the given user.
type View func(ctx context.Context, user domain.StoredUser) (templ.Component, error)

// Router maps routes to views and wraps them in the page layout.
type Router struct {
	session ports.SessionStore
	views   map[domain.Route]View
}

func New(session ports.SessionStore, views map[domain.Route]View) *Router {
	return &Router{session: session, views: views}
}

// Resolve returns the route served on path. An empty or unknown path
// resolves to the login route.
func Resolve(path string) domain.Route {
	path = strings.TrimPrefix(path, "#")
	if path == "" {
		return domain.RouteLogin
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	path = strings.TrimSuffix(path, "/")
	for route, p := range domain.RoutesPath {
		if p == path {
			return route
		}
	}
	return domain.RouteLogin
}

// Render returns the full page for route.
func (r *Router) Render(ctx context.Context, route domain.Route) (templ.Component, error) {
	return r.RenderView(ctx, route, r.views[route])
}

// RenderView returns the full page for route with view as its content.
//
// The login route renders without the navigation bar. Every other route needs
// a stored user with a recognised type; without one the root stays empty. The
// dashboard is reserved to admins.
func (r *Router) RenderView(ctx context.Context, route domain.Route, view View) (templ.Component, error) {
	user, err := containers.CurrentUser(ctx, r.session)
	if err != nil {
		return nil, err
	}
	if route == domain.RouteLogin {
		return page(ctx, view, user)
	}
	if !user.Recognized() || view == nil {
		return templates.Page(nil), nil
	}
	if route == domain.RouteDashboard && user.Type != domain.UserAdmin {
		return templates.Page(nil), nil
	}
	content, err := view(ctx, user)
	if err != nil {
		return nil, err
	}
	return templates.Page(templates.VerticalLayout(user, route, content)), nil
}

func page(ctx context.Context, view View, user domain.StoredUser) (templ.Component, error) {
	if view == nil {
		return templates.Page(nil), nil
	}
	content, err := view(ctx, user)
	if err != nil {
		return nil, err
	}
	return templates.Page(content), nil
}
