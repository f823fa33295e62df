package discovery

import (
	"testing"

	"github.com/hashicorp/consul/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAgent struct {
	registered   *api.AgentServiceRegistration
	deregistered string
}

func (f *fakeAgent) ServiceRegister(service *api.AgentServiceRegistration) error {
	f.registered = service
	return nil
}

func (f *fakeAgent) ServiceDeregister(serviceID string) error {
	f.deregistered = serviceID
	return nil
}

func TestRegister_UsesGRPCHealthCheck(t *testing.T) {
	agent := &fakeAgent{}
	r := &ConsulRegistry{agent: agent}

	err := r.Register(Registration{Name: "auth-service", Host: "10.0.0.5", Port: 50051})
	require.NoError(t, err)

	require.NotNil(t, agent.registered)
	assert.Equal(t, "auth-service-10.0.0.5-50051", agent.registered.ID)
	assert.Equal(t, "10.0.0.5:50051", agent.registered.Check.GRPC)
	assert.Equal(t, "1m", agent.registered.Check.DeregisterCriticalServiceAfter)

	require.NoError(t, r.Deregister(agent.registered.ID))
	assert.Equal(t, "auth-service-10.0.0.5-50051", agent.deregistered)
}

func TestParseHostPort(t *testing.T) {
	host, port, err := ParseHostPort(":50051", "localhost")
	require.NoError(t, err)
	assert.Equal(t, "localhost", host)
	assert.Equal(t, 50051, port)

	host, port, err = ParseHostPort("auth:9000", "localhost")
	require.NoError(t, err)
	assert.Equal(t, "auth", host)
	assert.Equal(t, 9000, port)

	_, _, err = ParseHostPort("no-port", "localhost")
	assert.Error(t, err)
}
