package remote

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDNSResolver is a test double for DNSResolver.
type mockDNSResolver struct {
	LookupSRVFn func(service, proto, name string) (string, []*net.SRV, error)
}

func (m *mockDNSResolver) LookupSRV(service, proto, name string) (string, []*net.SRV, error) {
	return m.LookupSRVFn(service, proto, name)
}

func TestResolveEndpoints_SortsByPriorityThenWeight(t *testing.T) {
	resolver := &mockDNSResolver{
		LookupSRVFn: func(service, proto, name string) (string, []*net.SRV, error) {
			assert.Equal(t, SRVService, service)
			assert.Equal(t, "tcp", proto)
			assert.Equal(t, "example.edu", name)
			return "", []*net.SRV{
				{Target: "backup.example.edu.", Port: 8443, Priority: 20, Weight: 0},
				{Target: "light.example.edu.", Port: 443, Priority: 10, Weight: 10},
				{Target: "heavy.example.edu.", Port: 443, Priority: 10, Weight: 90},
			}, nil
		},
	}

	endpoints, err := ResolveEndpointsWithResolver("example.edu", resolver)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"heavy.example.edu:443",
		"light.example.edu:443",
		"backup.example.edu:8443",
	}, endpoints)
}

func TestResolveEndpoints_EmptyDomain(t *testing.T) {
	_, err := ResolveEndpointsWithResolver("", DefaultDNSResolver)
	assert.ErrorIs(t, err, ErrDNSLookupFailed)
}

func TestResolveEndpoints_LookupFailure(t *testing.T) {
	resolver := &mockDNSResolver{
		LookupSRVFn: func(service, proto, name string) (string, []*net.SRV, error) {
			return "", nil, errors.New("NXDOMAIN")
		},
	}

	_, err := ResolveEndpointsWithResolver("example.edu", resolver)
	assert.ErrorIs(t, err, ErrDNSLookupFailed)
}

func TestResolveEndpoints_NoRecords(t *testing.T) {
	resolver := &mockDNSResolver{
		LookupSRVFn: func(service, proto, name string) (string, []*net.SRV, error) {
			return "", nil, nil
		},
	}

	_, err := ResolveEndpointsWithResolver("example.edu", resolver)
	assert.ErrorIs(t, err, ErrNoEndpoints)
}

func TestNewDNSSECResolver_DefaultUpstream(t *testing.T) {
	r := NewDNSSECResolver("")
	assert.Equal(t, defaultUpstream, r.Upstream)

	r = NewDNSSECResolver("1.1.1.1:53")
	assert.Equal(t, "1.1.1.1:53", r.Upstream)
}
