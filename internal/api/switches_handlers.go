package api

import (
	"net/http"

	"github.com/jbweber/homelab/hil/internal/domain"
)

// PortNicRequest names the nic cabled to a port
type PortNicRequest struct {
	Node string `json:"node"`
	Nic  string `json:"nic"`
}

// switchRegisterHandler takes the switch config union as its body, e.g.
// {"dell": {"host": "10.0.0.2", "username": "admin", "password": "secret"}}
func (a *API) switchRegisterHandler(w http.ResponseWriter, r *http.Request) {
	var cfg domain.SwitchConfig
	if err := decodeBody(r, &cfg); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.SwitchRegister(r.Context(), urlParam(r, "switch"), cfg); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) switchDeleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.SwitchDelete(r.Context(), urlParam(r, "switch")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) switchRegisterPortHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.SwitchRegisterPort(r.Context(), urlParam(r, "switch"), urlParam(r, "port")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) switchDeletePortHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.SwitchDeletePort(r.Context(), urlParam(r, "switch"), urlParam(r, "port")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) portConnectNicHandler(w http.ResponseWriter, r *http.Request) {
	var req PortNicRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.PortConnectNic(r.Context(), urlParam(r, "switch"), urlParam(r, "port"), req.Node, req.Nic); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) portDetachNicHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.PortDetachNic(r.Context(), urlParam(r, "switch"), urlParam(r, "port")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
