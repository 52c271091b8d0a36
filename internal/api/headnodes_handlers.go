package api

import (
	"net/http"
)

// CreateHeadnodeRequest is the body of a headnode creation
type CreateHeadnodeRequest struct {
	Project string `json:"project"`
	BaseImg string `json:"base_img"`
}

// HnicNetworkRequest names the network an hnic connects to
type HnicNetworkRequest struct {
	Network string `json:"network"`
}

func (a *API) headnodeCreateHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateHeadnodeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.HeadnodeCreate(r.Context(), urlParam(r, "headnode"), req.Project, req.BaseImg); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) headnodeDeleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.HeadnodeDelete(r.Context(), urlParam(r, "headnode")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) headnodeShowHandler(w http.ResponseWriter, r *http.Request) {
	details, err := a.HeadnodeShow(r.Context(), urlParam(r, "headnode"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, details)
}

func (a *API) headnodeStartHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.HeadnodeStart(r.Context(), urlParam(r, "headnode")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) headnodeStopHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.HeadnodeStop(r.Context(), urlParam(r, "headnode")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) headnodeCreateHnicHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.HeadnodeCreateHnic(r.Context(), urlParam(r, "headnode"), urlParam(r, "hnic")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) headnodeDeleteHnicHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.HeadnodeDeleteHnic(r.Context(), urlParam(r, "headnode"), urlParam(r, "hnic")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) headnodeConnectNetworkHandler(w http.ResponseWriter, r *http.Request) {
	var req HnicNetworkRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.HeadnodeConnectNetwork(r.Context(), urlParam(r, "headnode"), urlParam(r, "hnic"), req.Network); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) headnodeDetachNetworkHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.HeadnodeDetachNetwork(r.Context(), urlParam(r, "headnode"), urlParam(r, "hnic")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
