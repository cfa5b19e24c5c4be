// ABOUTME: Device directory for output backends
// ABOUTME: Orders endpoints default-first and keeps display names unique
package output

import (
	"fmt"

	"github.com/Resonate-Protocol/pcmout/pkg/audio"
)

// ListEndpoints queries a backend's render endpoints.
// The default endpoint comes first and display names are unique.
func ListEndpoints(b Backend) ([]audio.Endpoint, error) {
	raw, err := b.Endpoints()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, ErrNoDeviceFound
	}

	ordered := make([]audio.Endpoint, 0, len(raw))
	for _, ep := range raw {
		if ep.Default {
			ordered = append(ordered, ep)
		}
	}
	for _, ep := range raw {
		if !ep.Default {
			ordered = append(ordered, ep)
		}
	}

	seen := make(map[string]int, len(ordered))
	for i := range ordered {
		name := ordered[i].Name
		seen[name]++
		if seen[name] == 1 {
			continue
		}
		for {
			candidate := fmt.Sprintf("%s (%d)", name, seen[name])
			if _, taken := seen[candidate]; !taken {
				seen[candidate] = 1
				ordered[i].Name = candidate
				break
			}
			seen[name]++
		}
	}

	return ordered, nil
}

func findEndpoint(endpoints []audio.Endpoint, name string) (audio.Endpoint, bool) {
	for _, ep := range endpoints {
		if ep.Name == name {
			return ep, true
		}
	}
	return audio.Endpoint{}, false
}

func endpointNames(endpoints []audio.Endpoint) []string {
	names := make([]string, len(endpoints))
	for i, ep := range endpoints {
		names[i] = ep.Name
	}
	return names
}
