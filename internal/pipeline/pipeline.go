// Package pipeline runs configured mesh processing stages over loaded
// glTF parts and hands the results to joining and distance field baking.
package pipeline

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/meshkit/internal/config"
	"github.com/Faultbox/meshkit/internal/logger"
	"github.com/Faultbox/meshkit/internal/meshio"
	"github.com/Faultbox/meshkit/internal/preview"
	"github.com/Faultbox/meshkit/pkg/mesh"
	"github.com/Faultbox/meshkit/pkg/meshjoin"
	"github.com/Faultbox/meshkit/pkg/sdf"
)

// ErrEmptyMesh is returned when a bake has no geometry to work with.
var ErrEmptyMesh = errors.New("pipeline: mesh has no geometry")

// normalProbeScale sets the smoothing group probe offset relative to the
// mesh extent.
const normalProbeScale = 1e-3

// Stage is one in-place mesh transformation.
type Stage struct {
	Name string
	Run  func(m *mesh.Mesh)
}

// Result holds the outcome of running stages on one part.
type Result struct {
	Name      string
	Vertices  int
	Triangles int
	Elapsed   time.Duration
}

// Pipeline binds stages to a configuration.
type Pipeline struct {
	cfg     *config.Config
	Workers int
}

// New creates a pipeline using one worker per CPU.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{cfg: cfg, Workers: runtime.NumCPU()}
}

func (p *Pipeline) smoothAngle() float32 {
	return p.cfg.Processing.SmoothAngleDeg * math32.Pi / 180
}

// Dedup merges exactly identical vertices into an index buffer.
func (p *Pipeline) Dedup() Stage {
	return Stage{Name: "dedup", Run: func(m *mesh.Mesh) { m.GenerateIndices() }}
}

// Weld merges vertices closer than the configured weld distance.
func (p *Pipeline) Weld() Stage {
	d := p.cfg.Processing.WeldDistance
	return Stage{Name: "weld", Run: func(m *mesh.Mesh) { m.Weld(d) }}
}

// Normals recomputes every normal: angle-limited smoothing groups when
// smoothing is enabled, flat face normals otherwise.
func (p *Pipeline) Normals() Stage {
	smooth := p.cfg.Processing.SmoothNormals
	unlimited := p.cfg.Processing.SmoothAngleDeg >= 180
	angle := p.smoothAngle()
	return Stage{Name: "normals", Run: func(m *mesh.Mesh) {
		if !smooth {
			m.MakeFlatShaded()
			return
		}
		if unlimited {
			m.CalculateNormals(true)
			return
		}
		m.SmoothNormals(angle, m.Bounds().MaxExtent()*normalProbeScale, nil)
	}}
}

// Tangents rebuilds the tangent frame of meshes with uvs.
func (p *Pipeline) Tangents() Stage {
	return Stage{Name: "tangents", Run: func(m *mesh.Mesh) {
		if !m.HasUVs() {
			return
		}
		m.Tangents = nil
		m.EnsureNorTanUVs()
	}}
}

// Stages returns the full chain enabled by the processing config.
func (p *Pipeline) Stages() []Stage {
	var stages []Stage
	switch {
	case p.cfg.Processing.WeldDistance > 0:
		stages = append(stages, p.Weld())
	case p.cfg.Processing.Dedup:
		stages = append(stages, p.Dedup())
	}
	stages = append(stages, p.Normals())
	if p.cfg.Processing.GenerateTangents {
		stages = append(stages, p.Tangents())
	}
	return stages
}

// Run applies stages to every part using a worker pool. Results are in
// part order.
func (p *Pipeline) Run(parts []meshio.Part, stages ...Stage) []Result {
	results := make([]Result, len(parts))
	workers := max(1, min(p.Workers, len(parts)))

	partChan := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range partChan {
				results[idx] = runPart(parts[idx].Mesh, stages)
			}
		}()
	}

	for i := range parts {
		partChan <- i
	}
	close(partChan)
	wg.Wait()

	return results
}

func runPart(m *mesh.Mesh, stages []Stage) Result {
	start := time.Now()
	for _, s := range stages {
		stageStart := time.Now()
		s.Run(m)
		logger.Timed(s.Name, stageStart,
			zap.String("mesh", m.Name),
			zap.Int("vertices", m.VertexCount()),
			zap.Int("triangles", m.NumPrimitives()))
	}
	return Result{
		Name:      m.Name,
		Vertices:  m.VertexCount(),
		Triangles: m.NumPrimitives(),
		Elapsed:   time.Since(start),
	}
}

// Join merges parts into one world-space mesh.
func (p *Pipeline) Join(name string, parts []meshio.Part) *mesh.Mesh {
	start := time.Now()
	instances := make([]meshjoin.Instance, len(parts))
	hasColors, hasBones := false, false
	for i, part := range parts {
		instances[i] = meshjoin.Instance{
			Mesh:      part.Mesh,
			Transform: part.Transform,
			Materials: part.Materials,
		}
		hasColors = hasColors || part.Mesh.HasColors()
		hasBones = hasBones || part.Mesh.HasBones()
	}

	j := meshjoin.InstanceJoiner(
		p.cfg.Join.VertexColors && hasColors,
		p.cfg.Join.Bones && hasBones)
	j.MayHaveUVs = p.cfg.Join.UVs
	j.OnFinishedMesh = func(p0, p1 int) {
		logger.Debug("joined part", zap.Int("first", p0), zap.Int("end", p1))
	}

	out := j.Join(&mesh.Mesh{Name: name}, instances)
	logger.Timed("join", start,
		zap.Int("parts", len(parts)),
		zap.Int("vertices", out.VertexCount()),
		zap.Int("triangles", out.NumPrimitives()),
		zap.Int("materials", len(out.Materials)))
	return out
}

// Bake samples the distance field of m over its padded bounds.
func (p *Pipeline) Bake(m *mesh.Mesh) (*sdf.Grid, error) {
	start := time.Now()
	b := m.Bounds()
	if b.IsEmpty() || m.NumPrimitives() == 0 {
		return nil, ErrEmptyMesh
	}
	fill, err := p.cfg.SDF.FillMode()
	if err != nil {
		return nil, err
	}

	b = b.AddMargin(p.cfg.SDF.Padding * b.MaxExtent())
	g, err := sdf.Bake(m, b, p.cfg.SDF.Resolution, sdf.Options{Smooth: p.cfg.SDF.Smooth, Fill: fill})
	if err != nil {
		return nil, fmt.Errorf("bake %q: %w", m.Name, err)
	}

	lo, hi, _ := g.Range()
	logger.Timed("sdf", start,
		zap.Ints("size", g.Size[:]),
		zap.Stringer("fill", fill),
		zap.Float32("min", lo),
		zap.Float32("max", hi))
	return g, nil
}

// ExportPreview writes the middle slice along the configured axis into the
// output directory and returns its path.
func (p *Pipeline) ExportPreview(g *sdf.Grid) (string, error) {
	format, err := preview.ParseFormat(p.cfg.Output.SliceFormat)
	if err != nil {
		return "", err
	}
	axis := p.cfg.SDF.SliceAxis
	path, err := preview.ExportSlice(p.cfg.Output.Dir, g, axis, g.Size[axis]/2, format)
	if err != nil {
		return "", fmt.Errorf("export preview: %w", err)
	}
	logger.Info("wrote preview", zap.String("path", path))
	return path, nil
}
