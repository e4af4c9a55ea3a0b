// Package discovery optionally advertises a running IronDrop server over
// mDNS so LAN clients can find it without typing an IP address
// (SPEC_FULL.md §1's "may optionally advertise itself via mDNS
// (_irondrop._tcp)"). Grounded on the teacher's internal/discovery/discovery.go,
// trimmed to advertise-only: the teacher also implements Browse to let one
// warp instance discover peers for its send/receive P2P flow, but IronDrop is
// a one-way directory server with no peer-discovery use case, so nothing in
// SPEC_FULL.md ever needs to browse for other IronDrop instances (see
// DESIGN.md's "internal/network and internal/discovery" section).
package discovery

import (
	"fmt"
	"net"

	"github.com/grandcat/zeroconf"
)

// serviceType is the mDNS service type IronDrop instances advertise under.
const serviceType = "_irondrop._tcp"

// Advertiser represents an active mDNS advertisement; Close stops it.
type Advertiser struct {
	server *zeroconf.Server
}

// Advertise publishes an IronDrop instance over mDNS so LAN clients running
// mDNS-aware browsers or tools can resolve it by name. instance is the
// human-readable name shown in discovery UIs (e.g. a hostname-derived
// label); uploadEnabled is carried as a TXT record so a browsing client can
// tell whether it's worth offering an upload button without connecting
// first.
func Advertise(instance string, uploadEnabled bool, ip net.IP, port int) (*Advertiser, error) {
	if ip == nil {
		return nil, fmt.Errorf("ip is required")
	}

	txt := []string{
		fmt.Sprintf("upload=%v", uploadEnabled),
		"ip=" + ip.String(),
	}

	srv, err := zeroconf.Register(instance, serviceType, "local.", port, txt, nil)
	if err != nil {
		return nil, err
	}

	return &Advertiser{server: srv}, nil
}

// Close stops advertising. Safe to call on a nil receiver so callers can
// defer it unconditionally even when Advertise was never invoked.
func (a *Advertiser) Close() {
	if a != nil && a.server != nil {
		a.server.Shutdown()
	}
}
