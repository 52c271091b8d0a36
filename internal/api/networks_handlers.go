package api

import (
	"net/http"
)

// CreateNetworkRequest is the body of a network creation. Creator is a
// project label or "admin"; an empty Access makes the network public; NetID
// may only be set by the administrator.
type CreateNetworkRequest struct {
	Creator string `json:"creator"`
	Access  string `json:"access"`
	NetID   string `json:"net_id"`
}

func (a *API) networkCreateHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateNetworkRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.NetworkCreate(r.Context(), urlParam(r, "network"), req.Creator, req.Access, req.NetID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) networkDeleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.NetworkDelete(r.Context(), urlParam(r, "network")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) networkShowHandler(w http.ResponseWriter, r *http.Request) {
	details, err := a.NetworkShow(r.Context(), urlParam(r, "network"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, details)
}
