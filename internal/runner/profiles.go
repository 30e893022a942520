package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Profile is a simulation scenario known to the simulator.
type Profile struct {
	Name string
	Path string
}

// ParseProfiles reads `simulate list` output: one "name|path" per line.
// Lines without a separator are ignored; a repeated path keeps the last name.
func ParseProfiles(out string) []Profile {
	byPath := make(map[string]int)
	profiles := make([]Profile, 0)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		name, path, ok := strings.Cut(line, "|")
		if !ok {
			continue
		}
		p := Profile{Name: strings.TrimSpace(name), Path: strings.TrimSpace(path)}
		if i, seen := byPath[p.Path]; seen {
			profiles[i] = p
			continue
		}
		byPath[p.Path] = len(profiles)
		profiles = append(profiles, p)
	}
	return profiles
}

// ListProfiles runs `simulate list` to completion and parses its output.
func ListProfiles(ctx context.Context, m *Manager) ([]Profile, error) {
	name := "profiles-" + uuid.NewString()
	if err := m.Start(name, "simulate", "list"); err != nil {
		return nil, err
	}
	defer m.Stop(name)

	if err := m.Wait(ctx, name); err != nil {
		stderr, _ := m.ReadErr(name)
		return nil, fmt.Errorf("listing profiles: %w: %s", err, strings.TrimSpace(stderr))
	}
	out, err := m.Read(name)
	if err != nil {
		return nil, err
	}
	return ParseProfiles(out), nil
}

// Simulate starts a simulation of the profile at path and returns the
// process name, generating one when name is empty.
func Simulate(m *Manager, name, path string) (string, error) {
	if name == "" {
		name = "sim-" + uuid.NewString()[:8]
	}
	if err := m.Start(name, "simulate", path); err != nil {
		return "", err
	}
	return name, nil
}
