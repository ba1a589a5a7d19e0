// meshtool is a CLI utility for cleaning, joining and baking glTF meshes.
package main

import (
	"fmt"
	"os"

	"github.com/Faultbox/meshkit/internal/config"
	"github.com/Faultbox/meshkit/internal/logger"
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	if command == "help" {
		printUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fatal(err)
	}
	defer logger.Sync()

	t := &tool{cfg: cfg}
	args = args[1:]

	switch command {
	case "info":
		err = t.cmdInfo(args)
	case "dedup", "weld", "normals", "tangents", "process":
		err = t.cmdStage(command, args)
	case "join":
		err = t.cmdJoin(args)
	case "sdf":
		err = t.cmdSDF(args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Sync()
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Println(`meshtool - glTF mesh processing utility

Usage:
  meshtool [flags] <command> [args]

Commands:
  info <file.glb>                 Show primitives, attributes and bounds
  dedup <in.glb> [out.glb]        Merge identical vertices into an index buffer
  weld <in.glb> [out.glb]         Merge vertices within the weld distance
  normals <in.glb> [out.glb]      Recompute normals (smoothing groups or flat)
  tangents <in.glb> [out.glb]     Recompute tangents from uvs
  process <in.glb> [out.glb]      Run weld/dedup, normals and tangents
  join <out.glb> <in.glb>...      Merge every primitive of the inputs
  sdf <in.glb>                    Bake a signed distance field

Flags:
  -config <path>    Config file (default ./meshtool.yaml)
  -debug            Debug logging
  -log <path>       Also log to a rotating file
  -out <dir>        Output directory
  -weld <dist>      Weld distance, 0 disables
  -angle <deg>      Smoothing group angle
  -res <n|x,y,z>    Distance field resolution
  -fill <mode>      ring, converge or none
  -slices           Write the middle distance field slice as an image
  -format <fmt>     Slice image format: webp or bmp

Examples:
  meshtool info tree.glb
  meshtool -weld 0.001 process tree.glb tree_clean.glb
  meshtool join level.glb floor.glb walls.glb props.glb
  meshtool -res 96 -fill converge -slices sdf tree.glb`)
}
