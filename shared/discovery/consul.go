// Package discovery registers services with Consul.
package discovery

import (
	"fmt"
	"net"
	"strconv"

	"github.com/hashicorp/consul/api"
)

// Registration describes a service instance and its gRPC health endpoint.
type Registration struct {
	ID      string
	Name    string
	Host    string
	Port    int
	Tags    []string
	GRPCTLS bool
}

// agent is the subset of the Consul agent API used for registration.
type agent interface {
	ServiceRegister(service *api.AgentServiceRegistration) error
	ServiceDeregister(serviceID string) error
}

// ConsulRegistry registers service instances with a Consul agent.
type ConsulRegistry struct {
	agent agent
}

// NewConsulRegistry connects to the Consul agent at addr.
func NewConsulRegistry(addr string) (*ConsulRegistry, error) {
	cfg := api.DefaultConfig()
	cfg.Address = addr

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	return &ConsulRegistry{agent: client.Agent()}, nil
}

// Register announces the instance with a gRPC health check against
// host:port.
func (r *ConsulRegistry) Register(reg Registration) error {
	reg.ID = DefaultID(reg)

	return r.agent.ServiceRegister(&api.AgentServiceRegistration{
		ID:      reg.ID,
		Name:    reg.Name,
		Address: reg.Host,
		Port:    reg.Port,
		Tags:    reg.Tags,
		Check: &api.AgentServiceCheck{
			GRPC:                           net.JoinHostPort(reg.Host, strconv.Itoa(reg.Port)),
			GRPCUseTLS:                     reg.GRPCTLS,
			Interval:                       "10s",
			Timeout:                        "3s",
			DeregisterCriticalServiceAfter: "1m",
		},
	})
}

// DefaultID returns reg.ID, or name-host-port when it is empty.
func DefaultID(reg Registration) string {
	if reg.ID != "" {
		return reg.ID
	}
	return fmt.Sprintf("%s-%s-%d", reg.Name, reg.Host, reg.Port)
}

// Deregister removes the instance with the given id.
func (r *ConsulRegistry) Deregister(id string) error {
	return r.agent.ServiceDeregister(id)
}

// ParseHostPort splits an address such as ":50051" into host and port,
// substituting defaultHost for an empty host.
func ParseHostPort(addr, defaultHost string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q: %w", portStr, err)
	}

	if host == "" {
		host = defaultHost
	}

	return host, port, nil
}
