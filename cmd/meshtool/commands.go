package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/meshkit/internal/config"
	"github.com/Faultbox/meshkit/internal/meshio"
	"github.com/Faultbox/meshkit/internal/pipeline"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

var errUsage = errors.New("missing arguments")

type tool struct {
	cfg *config.Config
}

// outputPath returns explicit when set, else <dir>/<input base>_<suffix>.glb.
func outputPath(dir, input, suffix, explicit string) string {
	if explicit != "" {
		return explicit
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(dir, base+"_"+suffix+".glb")
}

func attributeList(m *mesh.Mesh) string {
	attrs := []string{"POSITION"}
	if len(m.Normals) > 0 {
		attrs = append(attrs, "NORMAL")
	}
	if len(m.Tangents) > 0 {
		attrs = append(attrs, "TANGENT")
	}
	if m.HasUVs() {
		attrs = append(attrs, "TEXCOORD_0")
	}
	if m.HasColors() {
		attrs = append(attrs, "COLOR_0")
	}
	if m.HasBones() {
		attrs = append(attrs, "JOINTS_0", "WEIGHTS_0")
	}
	return strings.Join(attrs, " ")
}

func (t *tool) cmdInfo(args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool info <file.glb>")
		return errUsage
	}

	parts, err := meshio.Load(args[0])
	if err != nil {
		return err
	}

	vertices, triangles := 0, 0
	for _, p := range parts {
		m := p.Mesh
		b := m.Bounds()
		fmt.Printf("%s\n", m.Name)
		fmt.Printf("  Mode:       %s\n", m.DrawMode)
		fmt.Printf("  Vertices:   %d\n", m.VertexCount())
		fmt.Printf("  Triangles:  %d\n", m.NumPrimitives())
		fmt.Printf("  Indexed:    %v\n", m.Indices != nil)
		fmt.Printf("  Materials:  %s\n", strings.Join(p.Materials, ", "))
		fmt.Printf("  Attributes: %s\n", attributeList(m))
		fmt.Printf("  Bounds:     (%.3f, %.3f, %.3f) - (%.3f, %.3f, %.3f)\n",
			b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
		vertices += m.VertexCount()
		triangles += m.NumPrimitives()
	}

	fmt.Println()
	fmt.Printf("File:      %s\n", args[0])
	fmt.Printf("Parts:     %d\n", len(parts))
	fmt.Printf("Vertices:  %d\n", vertices)
	fmt.Printf("Triangles: %d\n", triangles)
	return nil
}

func (t *tool) cmdStage(command string, args []string) error {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: meshtool %s <in.glb> [out.glb]\n", command)
		return errUsage
	}

	parts, err := meshio.Load(args[0])
	if err != nil {
		return err
	}

	p := pipeline.New(t.cfg)
	var stages []pipeline.Stage
	switch command {
	case "dedup":
		stages = []pipeline.Stage{p.Dedup()}
	case "weld":
		stages = []pipeline.Stage{p.Weld()}
	case "normals":
		stages = []pipeline.Stage{p.Normals()}
	case "tangents":
		stages = []pipeline.Stage{p.Tangents()}
	default:
		stages = p.Stages()
	}

	for _, r := range p.Run(parts, stages...) {
		fmt.Printf("  %-24s %8d vertices %8d triangles  %v\n", r.Name, r.Vertices, r.Triangles, r.Elapsed)
	}

	explicit := ""
	if len(args) > 1 {
		explicit = args[1]
	}
	return t.save(outputPath(t.cfg.Output.Dir, args[0], command, explicit), args[0], parts)
}

func (t *tool) cmdJoin(args []string) error {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool join <out.glb> <in.glb>...")
		return errUsage
	}

	var parts []meshio.Part
	for _, in := range args[1:] {
		loaded, err := meshio.Load(in)
		if err != nil {
			return err
		}
		parts = append(parts, loaded...)
	}
	return t.save(args[0], args[0], parts)
}

func (t *tool) save(path, name string, parts []meshio.Part) error {
	name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	joined := pipeline.New(t.cfg).Join(name, parts)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := meshio.Save(path, joined); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%d vertices, %d triangles, %d materials)\n",
		path, joined.VertexCount(), joined.NumPrimitives(), joined.NumMaterials())
	return nil
}

func (t *tool) cmdSDF(args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool sdf <in.glb>")
		return errUsage
	}

	parts, err := meshio.Load(args[0])
	if err != nil {
		return err
	}

	p := pipeline.New(t.cfg)
	name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	g, err := p.Bake(p.Join(name, parts))
	if err != nil {
		return err
	}

	lo, hi, _ := g.Range()
	cell := g.CellSize()
	fmt.Printf("Grid:   %d x %d x %d\n", g.Size[0], g.Size[1], g.Size[2])
	fmt.Printf("Cell:   %.4f x %.4f x %.4f\n", cell.X, cell.Y, cell.Z)
	fmt.Printf("Range:  %.4f .. %.4f\n", lo, hi)

	if t.cfg.Output.Slices {
		path, err := p.ExportPreview(g)
		if err != nil {
			return err
		}
		fmt.Printf("Slice:  %s\n", path)
	}
	return nil
}
