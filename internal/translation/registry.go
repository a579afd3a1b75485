package translation

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultLocalizerName is used when no hosted provider is configured.
const DefaultLocalizerName = "lingo"

// Registry stores hosted localizers and resolves a default one.
type Registry struct {
	localizers       map[string]Localizer
	defaultLocalizer string
}

func NewRegistry(defaultLocalizer string) *Registry {
	normalizedDefault := normalizeLocalizerName(defaultLocalizer)
	if normalizedDefault == "" {
		normalizedDefault = DefaultLocalizerName
	}

	return &Registry{
		localizers:       make(map[string]Localizer),
		defaultLocalizer: normalizedDefault,
	}
}

// Register adds one localizer.
func (r *Registry) Register(localizer Localizer) error {
	if r == nil {
		return fmt.Errorf("registry is nil")
	}
	if localizer == nil {
		return fmt.Errorf("localizer is nil")
	}
	name := normalizeLocalizerName(localizer.Name())
	if name == "" {
		return fmt.Errorf("localizer name is required")
	}
	r.localizers[name] = localizer
	return nil
}

// Localizer resolves a localizer by name. Empty names use the default.
func (r *Registry) Localizer(name string) (Localizer, error) {
	if r == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	if len(r.localizers) == 0 {
		return nil, fmt.Errorf("no hosted localizers are registered")
	}

	resolvedName := normalizeLocalizerName(name)
	if resolvedName == "" {
		resolvedName = r.defaultLocalizer
	}
	localizer, ok := r.localizers[resolvedName]
	if ok {
		return localizer, nil
	}

	return nil, fmt.Errorf("hosted localizer %q is not registered (available: %s)", resolvedName, strings.Join(r.Names(), ", "))
}

func (r *Registry) Default() string {
	if r == nil {
		return ""
	}
	return r.defaultLocalizer
}

func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.localizers))
	for name := range r.localizers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeLocalizerName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
