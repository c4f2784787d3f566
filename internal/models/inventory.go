package models

import "sort"

// ClientInfo is one known client in the monitoring system's inventory.
type ClientInfo struct {
	Name          string   `json:"name"`
	InstanceID    string   `json:"instance_id,omitempty"`
	Subscriptions []string `json:"subscriptions,omitempty"`
}

// InventorySnapshot is a point-in-time view of known clients, subscriptions
// and checks. It is used only to expand wildcard selectors and is not
// authoritative: a target may disappear between resolution and write.
type InventorySnapshot struct {
	Clients []ClientInfo `json:"clients"`
	Checks  []string     `json:"checks"`
}

// ClientNames returns all known client names, sorted.
func (s *InventorySnapshot) ClientNames() []string {
	names := make([]string, 0, len(s.Clients))
	for _, c := range s.Clients {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

// SubscriptionNames returns the union of all clients' subscriptions, sorted.
func (s *InventorySnapshot) SubscriptionNames() []string {
	seen := make(map[string]struct{})
	for _, c := range s.Clients {
		for _, sub := range c.Subscriptions {
			seen[sub] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for sub := range seen {
		names = append(names, sub)
	}
	sort.Strings(names)
	return names
}

// ClientByInstanceID maps a cloud instance ID to its registered client name.
func (s *InventorySnapshot) ClientByInstanceID(id string) (string, bool) {
	for _, c := range s.Clients {
		if c.InstanceID != "" && c.InstanceID == id {
			return c.Name, true
		}
	}
	return "", false
}
