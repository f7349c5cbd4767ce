// Package registry holds registered spec definitions and discovers their
// node trees.
package registry

import (
	"fmt"
	"os"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/yaml.v3"

	"github.com/specrun/specrun/types"
)

// RootNodeID is the stable identifier of the synthetic engine root.
const RootNodeID = "specrun"

// Registry manages spec definitions and their run profile.
type Registry struct {
	config  Config
	profile types.RunProfile

	mu     sync.RWMutex
	specs  []*types.SpecDefinition
	byName map[string]*types.SpecDefinition
}

// Config contains registry configuration.
type Config struct {
	Log log.Logger
	// ProfileFile optionally points at a YAML run profile. Empty means
	// defaults (all registered specs, serial execution).
	ProfileFile string
}

// DiscoveryRequest selects the specs to discover. Explicit names and the
// profile's include list are unioned; All forces every registered spec.
type DiscoveryRequest struct {
	Specs []string
	All   bool
}

// NewRegistry creates a new registry instance.
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	r := &Registry{
		config: cfg,
		byName: make(map[string]*types.SpecDefinition),
	}

	if cfg.ProfileFile != "" {
		profile, err := loadProfile(cfg.ProfileFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load run profile: %w", err)
		}
		r.profile = *profile
	}

	cfg.Log.Debug("Registry created", "profileFile", cfg.ProfileFile,
		"parallelism", r.profile.Parallelism, "profileSpecs", len(r.profile.Specs))

	return r, nil
}

// Register adds a spec definition. Names must be unique.
func (r *Registry) Register(def *types.SpecDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[def.Name]; exists {
		return fmt.Errorf("spec %q is already registered", def.Name)
	}
	r.specs = append(r.specs, def)
	r.byName[def.Name] = def

	r.config.Log.Debug("Registered spec", "spec", def.Name, "policy", def.Policy)
	return nil
}

// Specs returns all registered definitions in registration order.
func (r *Registry) Specs() []*types.SpecDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*types.SpecDefinition, len(r.specs))
	copy(out, r.specs)
	return out
}

// Spec returns the definition registered under name.
func (r *Registry) Spec(name string) (*types.SpecDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.byName[name]
	return def, ok
}

// Profile returns the loaded run profile.
func (r *Registry) Profile() types.RunProfile {
	return r.profile
}

// Discover builds the run tree for the requested specs: a synthetic root
// container whose children are the selected spec roots, in registration
// order. The returned tree is sealed.
func (r *Registry) Discover(req DiscoveryRequest) (*types.Tree, error) {
	defs, err := r.selectSpecs(req)
	if err != nil {
		return nil, err
	}

	tree := types.NewTree(RootNodeID, "specrun")
	for _, def := range defs {
		if _, err := r.discoverInto(tree, tree.Root(), def); err != nil {
			return nil, err
		}
	}
	tree.Seal()

	r.config.Log.Debug("Discovery complete", "specs", len(defs), "nodes", tree.Len())
	return tree, nil
}

// DiscoverSpec rediscovers a single spec against a fresh instance, yielding
// an independent tree with the spec root as the only child of a synthetic
// root. Rediscovery must be deterministic; the per-test instancing path
// correlates cases across trees by display name alone.
func (r *Registry) DiscoverSpec(def *types.SpecDefinition) (*types.Tree, error) {
	tree := types.NewTree(RootNodeID, "specrun")
	if _, err := r.discoverInto(tree, tree.Root(), def); err != nil {
		return nil, err
	}
	tree.Seal()
	return tree, nil
}

// selectSpecs resolves a discovery request against the registered specs and
// the run profile, preserving registration order.
func (r *Registry) selectSpecs(req DiscoveryRequest) ([]*types.SpecDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.specs) == 0 {
		return nil, &types.DiscoveryError{Spec: "*", Err: fmt.Errorf("no specs registered")}
	}

	wanted := make(map[string]bool)
	for _, name := range req.Specs {
		wanted[name] = true
	}
	for _, name := range r.profile.Specs {
		wanted[name] = true
	}

	for name := range wanted {
		if _, ok := r.byName[name]; !ok {
			return nil, &types.DiscoveryError{Spec: name, Err: fmt.Errorf("spec is not registered")}
		}
	}

	if req.All || len(wanted) == 0 {
		return r.specs, nil
	}

	var defs []*types.SpecDefinition
	for _, def := range r.specs {
		if wanted[def.Name] {
			defs = append(defs, def)
		}
	}
	return defs, nil
}

// discoverInto instantiates the spec's object and runs its declaration
// against a builder rooted at a new spec container.
func (r *Registry) discoverInto(tree *types.Tree, parent types.NodeID, def *types.SpecDefinition) (types.NodeID, error) {
	if err := def.Validate(); err != nil {
		return types.InvalidNode, &types.DiscoveryError{Spec: def.Name, Err: err}
	}

	inst := def.New()
	if inst == nil {
		return types.InvalidNode, &types.DiscoveryError{Spec: def.Name, Err: fmt.Errorf("instance factory returned nil")}
	}

	specRoot, err := tree.AddContainer(parent, def.Name, def)
	if err != nil {
		return types.InvalidNode, &types.DiscoveryError{Spec: def.Name, Err: err}
	}

	b := types.NewSpecBuilder(tree, specRoot, def)
	inst.Define(b)
	if err := b.Err(); err != nil {
		return types.InvalidNode, &types.DiscoveryError{Spec: def.Name, Err: err}
	}

	return specRoot, nil
}

// loadProfile loads a run profile from a YAML file.
func loadProfile(path string) (*types.RunProfile, error) {
	log.Debug("Reading run profile file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}

	var profile types.RunProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parsing profile file: %w", err)
	}

	return &profile, nil
}
