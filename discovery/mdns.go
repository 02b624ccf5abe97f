// Package discovery finds ESPHome nodes advertising the native API over mDNS.
package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	ServiceType   = "_esphomelib._tcp"
	ServiceDomain = "local."

	DefaultScanTimeout = 5 * time.Second
	DefaultPort        = 6053
)

type Device struct {
	Name     string            `json:"name"`
	Host     string            `json:"host"`
	IP       string            `json:"ip"`
	Port     int               `json:"port"`
	Metadata map[string]string `json:"metadata"`
}

// Address is host:port suitable for dialing.
func (d *Device) Address() string {
	return net.JoinHostPort(d.IP, strconv.Itoa(d.Port))
}

type Scanner struct {
	Timeout time.Duration
}

func NewScanner() *Scanner {
	return &Scanner{Timeout: DefaultScanTimeout}
}

// Scan browses until the timeout or ctx expires and returns every node seen, deduplicated by name.
func (s *Scanner) Scan(ctx context.Context) ([]*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	var mu sync.Mutex
	var devices []*Device
	seen := map[string]bool{}
	go func() {
		for entry := range entries {
			d := parseServiceEntry(entry)
			if d == nil {
				continue
			}
			mu.Lock()
			if !seen[d.Name] {
				seen[d.Name] = true
				devices = append(devices, d)
			}
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}
	<-ctx.Done()
	mu.Lock()
	defer mu.Unlock()
	return append([]*Device(nil), devices...), nil
}

func parseServiceEntry(entry *zeroconf.ServiceEntry) *Device {
	if entry == nil {
		return nil
	}
	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}
	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		k, v, _ := strings.Cut(txt, "=")
		metadata[k] = v
	}
	name := entry.Instance
	if name == "" {
		name = strings.TrimSuffix(strings.TrimSuffix(entry.HostName, "."), ".local")
	}
	return &Device{
		Name:     name,
		Host:     entry.HostName,
		IP:       ip,
		Port:     port,
		Metadata: metadata,
	}
}
