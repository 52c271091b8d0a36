package nexus

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/jbweber/homelab/hil/internal/domain"
	"github.com/jbweber/homelab/hil/internal/switches/switchtest"
)

func newSigner(t *testing.T) ssh.Signer {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(priv)
	require.NoError(t, err)
	return signer
}

// startServer runs an SSH server on loopback that hands its first shell to
// fake. done is closed when the console exits.
func startServer(t *testing.T, fake *switchtest.FakeSwitch, hostKey ssh.Signer) (string, int, chan struct{}) {
	t.Helper()

	cfg := &ssh.ServerConfig{
		PasswordCallback: func(c ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if c.User() == "admin" && string(pass) == "secret" {
				return nil, nil
			}
			return nil, errors.New("access denied")
		},
	}
	cfg.AddHostKey(hostKey)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		_, chans, reqs, err := ssh.NewServerConn(conn, cfg)
		if err != nil {
			return
		}
		go ssh.DiscardRequests(reqs)

		for newCh := range chans {
			if newCh.ChannelType() != "session" {
				_ = newCh.Reject(ssh.UnknownChannelType, "unsupported")
				continue
			}
			ch, requests, err := newCh.Accept()
			if err != nil {
				return
			}
			go func() {
				for req := range requests {
					_ = req.Reply(req.Type == "pty-req" || req.Type == "shell", nil)
				}
			}()
			_ = fake.Serve(ch)
			ch.Close()
			return
		}
	}()

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	return host, p, done
}

func testSwitch(host string, port int) domain.Switch {
	return domain.Switch{
		Label: "n9k-01",
		Type:  domain.SwitchTypeNexus,
		Config: domain.SwitchConfig{Nexus: &domain.NexusConfig{
			Host:      host,
			Port:      port,
			Username:  "admin",
			Password:  "secret",
			DummyVLAN: "999",
		}},
	}
}

func testDriver() *Driver {
	d := New()
	d.Timeout = 2 * time.Second
	return d
}

func TestDriver_ValidatePort(t *testing.T) {
	d := New()
	for _, port := range []string{"1/5", "1/1/2", "10/48"} {
		assert.NoError(t, d.ValidatePort(domain.SwitchConfig{}, port), port)
	}
	for _, port := range []string{"", "eth1/5", "gi1/0/1", "1", "1/2/3/4"} {
		assert.ErrorIs(t, d.ValidatePort(domain.SwitchConfig{}, port), domain.ErrBadArgument, port)
	}
}

func TestDriver_Apply(t *testing.T) {
	fake := switchtest.New("switch")
	host, port, done := startServer(t, fake, newSigner(t))
	ctx := context.Background()

	sess, err := testDriver().Connect(ctx, testSwitch(host, port))
	require.NoError(t, err)

	require.NoError(t, sess.Apply(ctx, map[string]string{"1/5": "100"}))
	assert.Equal(t, "100", fake.AccessVLAN("1/5"))
	assert.True(t, fake.HasVLAN("100"))
	assert.False(t, fake.IsShutdown("1/5"))

	require.NoError(t, sess.Apply(ctx, map[string]string{"1/5": ""}))
	assert.Equal(t, "999", fake.AccessVLAN("1/5"))
	assert.True(t, fake.IsShutdown("1/5"))

	require.NoError(t, sess.Disconnect())
	<-done

	assert.Equal(t, []string{
		"configure terminal",
		"vlan 100",
		"exit",
		"interface ethernet 1/5",
		"switchport",
		"switchport mode access",
		"switchport access vlan 100",
		"no shutdown",
		"exit",
		"interface ethernet 1/5",
		"switchport",
		"switchport mode access",
		"switchport access vlan 999",
		"shutdown",
		"exit",
		"end",
		"exit",
	}, fake.Commands())
}

func TestDriver_BadPassword(t *testing.T) {
	fake := switchtest.New("switch")
	host, port, _ := startServer(t, fake, newSigner(t))

	sw := testSwitch(host, port)
	sw.Config.Nexus.Password = "wrong"

	_, err := testDriver().Connect(context.Background(), sw)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrServer)
}

func TestDriver_KnownHosts(t *testing.T) {
	hostKey := newSigner(t)
	dir := t.TempDir()

	fake := switchtest.New("switch")
	host, port, done := startServer(t, fake, hostKey)
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	trusted := filepath.Join(dir, "trusted")
	require.NoError(t, os.WriteFile(trusted, []byte(knownhosts.Line([]string{addr}, hostKey.PublicKey())+"\n"), 0o600))

	sw := testSwitch(host, port)
	sw.Config.Nexus.KnownHostsFile = trusted
	sess, err := testDriver().Connect(context.Background(), sw)
	require.NoError(t, err)
	require.NoError(t, sess.Disconnect())
	<-done

	// A different key for the same address is rejected
	fake2 := switchtest.New("switch")
	host, port, _ = startServer(t, fake2, newSigner(t))
	addr = net.JoinHostPort(host, strconv.Itoa(port))

	untrusted := filepath.Join(dir, "untrusted")
	require.NoError(t, os.WriteFile(untrusted, []byte(knownhosts.Line([]string{addr}, hostKey.PublicKey())+"\n"), 0o600))

	sw = testSwitch(host, port)
	sw.Config.Nexus.KnownHostsFile = untrusted
	_, err = testDriver().Connect(context.Background(), sw)
	assert.ErrorIs(t, err, domain.ErrServer)
}

func TestDriver_ApplyTwice(t *testing.T) {
	fake := switchtest.New("switch")
	host, port, done := startServer(t, fake, newSigner(t))
	ctx := context.Background()

	sess, err := testDriver().Connect(ctx, testSwitch(host, port))
	require.NoError(t, err)

	changes := map[string]string{"1/5": "100"}
	require.NoError(t, sess.Apply(ctx, changes))
	first := len(fake.Commands())
	require.NoError(t, sess.Apply(ctx, changes))

	assert.Equal(t, "100", fake.AccessVLAN("1/5"))
	assert.True(t, fake.HasVLAN("100"))
	assert.False(t, fake.IsShutdown("1/5"))

	// the second pass repeats the same commands
	cmds := fake.Commands()
	assert.Equal(t, cmds[1:first], cmds[first:])

	require.NoError(t, sess.Disconnect())
	<-done
}

// silentListener accepts connections and never writes to them
func silentListener(t *testing.T) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		var conns []net.Conn
		defer func() {
			for _, c := range conns {
				c.Close()
			}
		}()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conns = append(conns, conn)
		}
	}()

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	return host, p
}

func TestDriver_HandshakeTimeout(t *testing.T) {
	host, port := silentListener(t)
	d := testDriver()
	d.Timeout = 200 * time.Millisecond

	start := time.Now()
	_, err := d.Connect(context.Background(), testSwitch(host, port))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrServer)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestDriver_HandshakeCancel(t *testing.T) {
	host, port := silentListener(t)
	d := testDriver()
	d.Timeout = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := d.Connect(ctx, testSwitch(host, port))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrServer)
	assert.Less(t, time.Since(start), 2*time.Second)
}
