package domain

// Container is the slice of runtime state the watcher reads for one container.
type Container struct {
	Id       string
	Name     string
	Labels   map[string]string
	Networks map[string]Endpoint
}

// Endpoint is a container's attachment to a single network.
type Endpoint struct {
	NetworkId string
	IPAddress string
	Aliases   []string
}

// OnNetwork reports whether the container is attached to the named network.
func (c Container) OnNetwork(name string) bool {
	_, ok := c.Networks[name]
	return ok
}

// DisplayName returns the container name, or a short id when the name is unknown.
func (c Container) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return ShortId(c.Id)
}

func ShortId(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// EndpointConfig carries the per-attach endpoint settings. Only aliases are set.
type EndpointConfig struct {
	Aliases []string
}
