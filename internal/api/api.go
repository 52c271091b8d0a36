// Package api implements the operations that mutate and query the resource
// model, and binds them to HTTP with chi. Every operation runs in a single
// transaction; networking changes are only journaled here and applied to the
// switches later by the reconciler.
package api

import (
	"context"
	"database/sql"

	"github.com/go-chi/chi/v5"

	"github.com/jbweber/homelab/hil/internal/allocator"
	"github.com/jbweber/homelab/hil/internal/datastore"
	"github.com/jbweber/homelab/hil/internal/repository"
	"github.com/jbweber/homelab/hil/internal/switches"
)

// AdminCreator is the creator name that marks a network as administrator owned
const AdminCreator = "admin"

// API holds the dependencies shared by every operation
type API struct {
	ds       *datastore.Datastore
	alloc    allocator.Allocator
	registry *switches.Registry
}

// NewAPI creates a new API instance
func NewAPI(ds *datastore.Datastore, alloc allocator.Allocator, registry *switches.Registry) *API {
	return &API{
		ds:       ds,
		alloc:    alloc,
		registry: registry,
	}
}

// withRepos runs fn in one transaction with repositories bound to it
func (a *API) withRepos(ctx context.Context, fn func(tx *sql.Tx, r *repository.Repositories) error) error {
	return a.ds.WithTx(ctx, func(tx *sql.Tx) error {
		return fn(tx, repository.New(tx))
	})
}

// RegisterRoutes registers all API endpoints to the given chi router.
func (a *API) RegisterRoutes(r chi.Router) {
	// Projects endpoints group
	r.Get("/projects", a.listProjectsHandler)
	r.Route("/project/{project}", func(r chi.Router) {
		r.Put("/", a.projectCreateHandler)
		r.Delete("/", a.projectDeleteHandler)
		r.Post("/connect_node", a.projectConnectNodeHandler)
		r.Post("/detach_node", a.projectDetachNodeHandler)
		r.Get("/nodes", a.listProjectNodesHandler)
		r.Get("/networks", a.listProjectNetworksHandler)
	})

	// Nodes endpoints group
	r.Get("/free_nodes", a.listFreeNodesHandler)
	r.Route("/node/{node}", func(r chi.Router) {
		r.Put("/", a.nodeRegisterHandler)
		r.Delete("/", a.nodeDeleteHandler)
		r.Get("/", a.nodeShowHandler)
		r.Put("/nic/{nic}", a.nodeRegisterNicHandler)
		r.Delete("/nic/{nic}", a.nodeDeleteNicHandler)
		r.Post("/nic/{nic}/connect_network", a.nodeConnectNetworkHandler)
		r.Post("/nic/{nic}/detach_network", a.nodeDetachNetworkHandler)
	})

	// Switches endpoints group
	r.Route("/switch/{switch}", func(r chi.Router) {
		r.Put("/", a.switchRegisterHandler)
		r.Delete("/", a.switchDeleteHandler)
		r.Put("/port/{port}", a.switchRegisterPortHandler)
		r.Delete("/port/{port}", a.switchDeletePortHandler)
		r.Post("/port/{port}/connect_nic", a.portConnectNicHandler)
		r.Post("/port/{port}/detach_nic", a.portDetachNicHandler)
	})

	// Networks endpoints group
	r.Route("/network/{network}", func(r chi.Router) {
		r.Put("/", a.networkCreateHandler)
		r.Delete("/", a.networkDeleteHandler)
		r.Get("/", a.networkShowHandler)
	})

	// Headnodes endpoints group
	r.Route("/headnode/{headnode}", func(r chi.Router) {
		r.Put("/", a.headnodeCreateHandler)
		r.Delete("/", a.headnodeDeleteHandler)
		r.Get("/", a.headnodeShowHandler)
		r.Post("/start", a.headnodeStartHandler)
		r.Post("/stop", a.headnodeStopHandler)
		r.Put("/hnic/{hnic}", a.headnodeCreateHnicHandler)
		r.Delete("/hnic/{hnic}", a.headnodeDeleteHnicHandler)
		r.Post("/hnic/{hnic}/connect_network", a.headnodeConnectNetworkHandler)
		r.Post("/hnic/{hnic}/detach_network", a.headnodeDetachNetworkHandler)
	})
}
