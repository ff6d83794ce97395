package model

// ContainerInfo is the subset of a running container needed to evict it.
type ContainerInfo struct {
	ID    string
	Name  string
	Image string
}

// ShortID returns the 12 character form printed by docker ps.
func (c ContainerInfo) ShortID() string {
	if len(c.ID) > 12 {
		return c.ID[:12]
	}
	return c.ID
}
