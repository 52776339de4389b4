package assembly

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"assemblycore/pkg/record"
	"assemblycore/pkg/structure"
)

// Service builds replicated structures from trajectory models. It owns the
// per-trajectory definition cache; everything else it touches is either
// immutable input or freshly constructed output, so concurrent builds are
// safe.
type Service struct {
	cache   *Cache
	catalog record.Store
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
}

// Option customises service construction.
type Option func(*Service)

// WithLogger attaches a logger. The default discards everything.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer attaches a tracer.
func WithTracer(t Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithCatalog attaches a build catalog; successful builds are recorded in it.
func WithCatalog(c record.Store) Option {
	return func(s *Service) { s.catalog = c }
}

// NewService constructs a service with a cache of the given size.
func NewService(cacheSize int, opts ...Option) (*Service, error) {
	cache, err := NewCache(cacheSize)
	if err != nil {
		return nil, err
	}
	s := &Service{
		cache:   cache,
		logger:  noopLogger{},
		metrics: noopMetrics{},
		tracer:  noopTracer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Cache exposes the definition cache so the trajectory's owner can
// invalidate entries when trajectories are discarded.
func (s *Service) Cache() *Cache { return s.cache }

// Definitions returns the memoized assembly definitions for the trajectory.
func (s *Service) Definitions(ctx context.Context, traj structure.Trajectory) ([]ModelsAssembly, error) {
	ctx, span := s.tracer.Start(ctx, "assembly.definitions")
	start := time.Now()
	defs, hit, err := s.cache.Definitions(traj)
	span.End(err)
	s.metrics.Observe(ctx, "assembly.definitions", err == nil, time.Since(start))
	if hit {
		s.metrics.IncCounter("definition_cache_hit")
	} else {
		s.metrics.IncCounter("definition_cache_miss")
	}
	return defs, err
}

// Build assembles the named assembly for the model at modelIndex.
//
// The returned structure contains one unit instance per (unit in generator
// scope x operator tuple), each transformed by the tuple's composed matrix
// and tagged with the tuple. A model index with no applicable operator group
// yields an empty structure; a frame in an unsupported source format yields
// (nil, nil). Both are absence of output, not faults. Unknown assembly ids
// fail with structure.ErrAssemblyNotFound.
func (s *Service) Build(ctx context.Context, traj structure.Trajectory, assemblyID string, modelIndex int) (*structure.Structure, error) {
	ctx, span := s.tracer.Start(ctx, "assembly.build")
	start := time.Now()
	built, err := s.build(ctx, traj, assemblyID, modelIndex)
	span.End(err)
	s.metrics.Observe(ctx, "assembly.build", err == nil, time.Since(start))
	if err != nil {
		s.logger.Error("assembly build failed", "trajectory", traj.ID(), "assembly", assemblyID, "model", modelIndex, "error", err)
		return nil, err
	}
	if built == nil {
		s.logger.Warn("assembly build produced no result", "trajectory", traj.ID(), "assembly", assemblyID, "model", modelIndex)
		return nil, nil
	}
	s.logger.Debug("assembly built", "trajectory", traj.ID(), "assembly", assemblyID, "model", modelIndex, "units", len(built.units.Units))
	if s.catalog != nil {
		rec := record.BuildRecord{
			ID:         uuid.NewString(),
			EntryID:    traj.ID(),
			AssemblyID: assemblyID,
			ModelIndex: modelIndex,
			Units:      len(built.units.Units),
			Operators:  built.operators,
			Duration:   time.Since(start),
			CreatedAt:  time.Now().UTC(),
		}
		if cerr := s.catalog.AppendBuild(ctx, rec); cerr != nil {
			s.logger.Warn("catalog append failed", "error", cerr)
		}
	}
	return built.units, nil
}

type buildResult struct {
	units     *structure.Structure
	operators int
}

func (s *Service) build(ctx context.Context, traj structure.Trajectory, assemblyID string, modelIndex int) (*buildResult, error) {
	model, err := s.resolveFrame(ctx, traj, modelIndex)
	if err != nil {
		if errors.Is(err, structure.ErrUnsupportedFormat) {
			return nil, nil
		}
		return nil, err
	}

	patched := patchEntityDescriptions(model)

	res, _, err := s.cache.resolve(traj)
	if err != nil {
		return nil, err
	}
	defs, matrices := res.assemblies, res.matrices

	var matched *ModelsAssembly
	for i := range defs {
		if strings.EqualFold(defs[i].ID, assemblyID) {
			matched = &defs[i]
			break
		}
	}
	if matched == nil {
		return nil, fmt.Errorf("%w: %q", structure.ErrAssemblyNotFound, assemblyID)
	}

	result := &buildResult{units: &structure.Structure{}}
	group, ok := matched.GroupFor(patched.Num)
	if !ok {
		// No operators apply to this model: nothing to build.
		return result, nil
	}

	unitsByID := make(map[string][]structure.Unit, len(patched.Units))
	for _, u := range patched.Units {
		unitsByID[u.ID] = append(unitsByID[u.ID], u)
	}

	for _, gen := range group {
		for _, tuple := range gen.Tuples {
			composed, err := matrices.Compose(tuple)
			if err != nil {
				return nil, err
			}
			tag := operatorTag(tuple)
			result.operators++
			for _, unitID := range gen.UnitIDs {
				for _, base := range unitsByID[unitID] {
					result.units.Units = append(result.units.Units, replicateUnit(base, composed, tag))
				}
			}
		}
	}
	return result, nil
}

func (s *Service) resolveFrame(ctx context.Context, traj structure.Trajectory, modelIndex int) (*structure.Model, error) {
	if modelIndex < 0 || modelIndex >= traj.FrameCount() {
		return nil, fmt.Errorf("%w: index %d out of range [0,%d)", structure.ErrFrameResolution, modelIndex, traj.FrameCount())
	}
	model, err := traj.Frame(ctx, modelIndex)
	if err != nil {
		if errors.Is(err, structure.ErrUnsupportedFormat) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: frame %d: %v", structure.ErrFrameResolution, modelIndex, err)
	}
	if model == nil {
		return nil, structure.ErrUnsupportedFormat
	}
	return model, nil
}

// patchEntityDescriptions derives the model's display label and sets it as
// the description of every entity referenced by the model's units. The patch
// is copy-on-write: it produces a model value with a fresh entity slice
// instead of rewriting storage other models may alias. Reapplying with the
// same label is a no-op in effect. Unit entity indices outside the entity
// table are skipped.
func patchEntityDescriptions(m *structure.Model) *structure.Model {
	if m.Label == "" || len(m.Entities) == 0 {
		return m
	}
	patched := *m
	patched.Entities = make([]structure.Entity, len(m.Entities))
	copy(patched.Entities, m.Entities)
	for _, u := range m.Units {
		if u.EntityIndex < 0 || u.EntityIndex >= len(patched.Entities) {
			continue
		}
		patched.Entities[u.EntityIndex].Description = m.Label
	}
	return &patched
}

func replicateUnit(base structure.Unit, m structure.Mat4, tag string) structure.Unit {
	out := base
	out.Operator = tag
	out.Atoms = make([]structure.Atom, len(base.Atoms))
	for i, a := range base.Atoms {
		x, y, z := m.TransformPoint(a.X, a.Y, a.Z)
		out.Atoms[i] = structure.Atom{Name: a.Name, X: x, Y: y, Z: z}
	}
	return out
}

func operatorTag(tuple []structure.OperatorID) string {
	parts := make([]string, len(tuple))
	for i, id := range tuple {
		parts[i] = string(id)
	}
	return strings.Join(parts, "*")
}
