// Package network resolves the LAN-reachable address IronDrop should
// advertise in its startup banner, QR code, and optional mDNS broadcast,
// grounded on the teacher's internal/network/ip.go LAN-IP scan, generalized
// with AdvertiseAddress so callers don't have to special-case a wildcard
// bind address themselves.
package network

import (
	"errors"
	"fmt"
	"net"
)

// DiscoverLANIP finds a private IPv4 address among the host's up,
// non-loopback interfaces. If interfaceName is non-empty, only that
// interface is considered.
func DiscoverLANIP(interfaceName string) (net.IP, error) {
	ifs, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	for _, iface := range ifs {
		if interfaceName != "" && iface.Name != interfaceName {
			continue
		}
		// Skip down or loopback
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			var ip net.IP
			switch v := a.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil {
				continue
			}
			ip4 := ip.To4()
			if ip4 == nil {
				continue // skip IPv6
			}
			if isPrivateIPv4(ip4) {
				return ip4, nil
			}
		}
	}
	return nil, errors.New("no suitable LAN IPv4 address found")
}

func isPrivateIPv4(ip net.IP) bool {
	// 10.0.0.0/8
	if ip[0] == 10 {
		return true
	}
	// 172.16.0.0/12
	if ip[0] == 172 && ip[1] >= 16 && ip[1] <= 31 {
		return true
	}
	// 192.168.0.0/16
	if ip[0] == 192 && ip[1] == 168 {
		return true
	}
	return false
}

// AdvertiseAddress returns the "host:port" string to print in the startup
// banner and encode in the QR code. A non-wildcard listen address is used
// verbatim (the operator chose it deliberately); "0.0.0.0" or "" is resolved
// to a concrete LAN IP via DiscoverLANIP since a browser or phone on the LAN
// can't connect to a wildcard address itself. If no LAN IP can be found, it
// falls back to "listen:port" unchanged and lets the caller decide whether
// that's worth a warning.
func AdvertiseAddress(listen string, port int) string {
	if listen != "" && listen != "0.0.0.0" && listen != "::" {
		return fmt.Sprintf("%s:%d", listen, port)
	}
	ip, err := DiscoverLANIP("")
	if err != nil {
		if listen == "" {
			listen = "0.0.0.0"
		}
		return fmt.Sprintf("%s:%d", listen, port)
	}
	return fmt.Sprintf("%s:%d", ip.String(), port)
}
