package assembly

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"assemblycore/pkg/structure"
)

// DefaultCacheSize bounds the number of trajectories whose resolved
// definitions are retained at once.
const DefaultCacheSize = 64

// resolved is one trajectory's cached resolution: its assembly definitions
// and the operator matrix lookup they were built against.
type resolved struct {
	assemblies []ModelsAssembly
	matrices   MatrixTable
}

// Cache memoizes assembly-definition resolution per trajectory. The
// generator, operator, and assembly tables are static for a trajectory
// instance, so the resolution is performed at most once per trajectory even
// under concurrent first access; later calls return the cached definitions
// without re-parsing. The cache is an explicit side-table keyed by
// trajectory id, owned by whoever owns the trajectory lifetimes, and is the
// only state shared between concurrent builds.
type Cache struct {
	defs  *lru.Cache[string, resolved]
	group singleflight.Group
}

// NewCache constructs a definition cache retaining up to size trajectories.
// A non-positive size falls back to DefaultCacheSize.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	defs, err := lru.New[string, resolved](size)
	if err != nil {
		return nil, fmt.Errorf("definition cache: %w", err)
	}
	return &Cache{defs: defs}, nil
}

// Definitions returns the resolved assemblies for the trajectory, building
// them on first access, and reports whether the result was served from
// cache. Failed builds are not cached; a later call retries from scratch.
func (c *Cache) Definitions(traj structure.Trajectory) ([]ModelsAssembly, bool, error) {
	res, hit, err := c.resolve(traj)
	return res.assemblies, hit, err
}

func (c *Cache) resolve(traj structure.Trajectory) (resolved, bool, error) {
	key := traj.ID()
	if res, ok := c.defs.Get(key); ok {
		return res, true, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if res, ok := c.defs.Get(key); ok {
			return res, nil
		}
		res := resolved{}
		if tables := traj.Tables(); tables != nil {
			matrices, err := BuildMatrixTable(tables.Operators)
			if err != nil {
				return resolved{}, err
			}
			assemblies, err := BuildDefinitions(tables, matrices)
			if err != nil {
				return resolved{}, err
			}
			res = resolved{assemblies: assemblies, matrices: matrices}
		}
		c.defs.Add(key, res)
		return res, nil
	})
	if err != nil {
		return resolved{}, false, err
	}
	return v.(resolved), false, nil
}

// Invalidate drops the cached definitions for a trajectory id. The owner of
// the trajectory's lifetime calls this when discarding the trajectory.
func (c *Cache) Invalidate(trajectoryID string) {
	c.defs.Remove(trajectoryID)
}

// Len returns the number of trajectories currently cached.
func (c *Cache) Len() int { return c.defs.Len() }
