package api

import (
	"net/http"
)

// ProjectNodeRequest names a node to move in or out of a project
type ProjectNodeRequest struct {
	Node string `json:"node"`
}

func (a *API) listProjectsHandler(w http.ResponseWriter, r *http.Request) {
	labels, err := a.ListProjects(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, labels)
}

func (a *API) projectCreateHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.ProjectCreate(r.Context(), urlParam(r, "project")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) projectDeleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.ProjectDelete(r.Context(), urlParam(r, "project")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) projectConnectNodeHandler(w http.ResponseWriter, r *http.Request) {
	var req ProjectNodeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.ProjectConnectNode(r.Context(), urlParam(r, "project"), req.Node); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) projectDetachNodeHandler(w http.ResponseWriter, r *http.Request) {
	var req ProjectNodeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.ProjectDetachNode(r.Context(), urlParam(r, "project"), req.Node); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) listProjectNodesHandler(w http.ResponseWriter, r *http.Request) {
	labels, err := a.ListProjectNodes(r.Context(), urlParam(r, "project"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, labels)
}

func (a *API) listProjectNetworksHandler(w http.ResponseWriter, r *http.Request) {
	labels, err := a.ListProjectNetworks(r.Context(), urlParam(r, "project"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, labels)
}
