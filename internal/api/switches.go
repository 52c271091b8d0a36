package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jbweber/homelab/hil/internal/domain"
	"github.com/jbweber/homelab/hil/internal/log"
	"github.com/jbweber/homelab/hil/internal/repository"
)

// SwitchRegister registers a switch. The config's family must be enabled.
func (a *API) SwitchRegister(ctx context.Context, label string, cfg domain.SwitchConfig) error {
	if err := a.registry.ValidateConfig(cfg); err != nil {
		return err
	}
	return a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		sw, err := r.Switches.Save(ctx, domain.Switch{Label: label, Config: cfg})
		if err != nil {
			return err
		}
		log.G(ctx).WithField("switch", label).WithField("type", sw.Type).Info("switch registered")
		return nil
	})
}

// SwitchDelete deletes a switch with no registered ports
func (a *API) SwitchDelete(ctx context.Context, label string) error {
	return a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		sw, err := r.Switches.FindByLabel(ctx, label)
		if err != nil {
			return err
		}
		ports, err := r.Ports.FindBySwitch(ctx, sw.ID)
		if err != nil {
			return err
		}
		if len(ports) > 0 {
			return fmt.Errorf("switch %q still has %d ports: %w", label, len(ports), domain.ErrBlocked)
		}
		return r.Switches.DeleteByID(ctx, sw.ID)
	})
}

// SwitchRegisterPort registers a port on a switch
func (a *API) SwitchRegisterPort(ctx context.Context, switchLabel, portLabel string) error {
	return a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		sw, err := r.Switches.FindByLabel(ctx, switchLabel)
		if err != nil {
			return err
		}
		if err := a.registry.ValidatePort(sw, portLabel); err != nil {
			return err
		}
		_, err = r.Ports.Save(ctx, domain.Port{SwitchID: sw.ID, Label: portLabel})
		return err
	})
}

// SwitchDeletePort deletes a port no nic is bound to
func (a *API) SwitchDeletePort(ctx context.Context, switchLabel, portLabel string) error {
	return a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		_, port, err := findPort(ctx, r, switchLabel, portLabel)
		if err != nil {
			return err
		}
		if nic, err := r.Nics.FindByPort(ctx, port.ID); err == nil {
			return fmt.Errorf("port %q is bound to nic %q: %w", portLabel, nic.Label, domain.ErrBlocked)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return r.Ports.DeleteByID(ctx, port.ID)
	})
}

// PortConnectNic records that a nic is cabled to a port
func (a *API) PortConnectNic(ctx context.Context, switchLabel, portLabel, nodeLabel, nicLabel string) error {
	return a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		_, port, err := findPort(ctx, r, switchLabel, portLabel)
		if err != nil {
			return err
		}
		_, nic, err := findNic(ctx, r, nodeLabel, nicLabel)
		if err != nil {
			return err
		}
		if nic.PortID != nil {
			return fmt.Errorf("nic %q is already connected to a port: %w", nicLabel, domain.ErrDuplicate)
		}
		if err := r.Nics.SetPort(ctx, nic.ID, &port.ID); err != nil {
			return err
		}
		log.G(ctx).WithField("switch", switchLabel).WithField("port", portLabel).
			WithField("node", nodeLabel).WithField("nic", nicLabel).Info("nic connected to port")
		return nil
	})
}

// PortDetachNic removes the cabling record of a port. The nic must have no
// attachment and no pending action.
func (a *API) PortDetachNic(ctx context.Context, switchLabel, portLabel string) error {
	return a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		_, port, err := findPort(ctx, r, switchLabel, portLabel)
		if err != nil {
			return err
		}
		nic, err := r.Nics.FindByPort(ctx, port.ID)
		if err != nil {
			return err
		}
		if err := checkNicIdle(ctx, r, nic); err != nil {
			return err
		}
		return r.Nics.SetPort(ctx, nic.ID, nil)
	})
}

func findPort(ctx context.Context, r *repository.Repositories, switchLabel, portLabel string) (domain.Switch, domain.Port, error) {
	sw, err := r.Switches.FindByLabel(ctx, switchLabel)
	if err != nil {
		return domain.Switch{}, domain.Port{}, err
	}
	port, err := r.Ports.FindBySwitchAndLabel(ctx, sw.ID, portLabel)
	if err != nil {
		return domain.Switch{}, domain.Port{}, err
	}
	return sw, port, nil
}
