package api

import (
	"net/http"
)

// RegisterNicRequest is the body of a nic registration
type RegisterNicRequest struct {
	MACAddr string `json:"macaddr"`
}

// NicNetworkRequest names the network a nic connects to or detaches from
type NicNetworkRequest struct {
	Network string `json:"network"`
}

func (a *API) listFreeNodesHandler(w http.ResponseWriter, r *http.Request) {
	labels, err := a.ListFreeNodes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, labels)
}

func (a *API) nodeRegisterHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.NodeRegister(r.Context(), urlParam(r, "node")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) nodeDeleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.NodeDelete(r.Context(), urlParam(r, "node")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) nodeShowHandler(w http.ResponseWriter, r *http.Request) {
	details, err := a.NodeShow(r.Context(), urlParam(r, "node"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, details)
}

func (a *API) nodeRegisterNicHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterNicRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.NodeRegisterNic(r.Context(), urlParam(r, "node"), urlParam(r, "nic"), req.MACAddr); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) nodeDeleteNicHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.NodeDeleteNic(r.Context(), urlParam(r, "node"), urlParam(r, "nic")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) nodeConnectNetworkHandler(w http.ResponseWriter, r *http.Request) {
	var req NicNetworkRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.NodeConnectNetwork(r.Context(), urlParam(r, "node"), urlParam(r, "nic"), req.Network); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (a *API) nodeDetachNetworkHandler(w http.ResponseWriter, r *http.Request) {
	var req NicNetworkRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.NodeDetachNetwork(r.Context(), urlParam(r, "node"), urlParam(r, "nic"), req.Network); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
