// Command swrc is the GLSL ES shader compiler CLI: it parses, validates,
// and lowers a vertex or fragment shader to the register-IR wire format
// package shaderir defines.
//
// Usage:
//
//	swrc [options] <input>
//
// Examples:
//
//	swrc shader.frag                   # compile and validate, summary to stdout
//	swrc -o shader.swrir shader.vert   # compile to an IR binary
//	swrc -stage fragment shader.glsl   # force shader stage
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/cpugl/swr/glsl"
	"github.com/cpugl/swr/shaderir"
)

var (
	output      = flag.String("o", "", "output file for the lowered IR (default: no IR file, summary only)")
	stageFlag   = flag.String("stage", "", "shader stage: vertex|fragment (default: inferred from file extension)")
	entry       = flag.String("entry", "main", "entry point function name")
	versionFlag = flag.Bool("version", false, "print version")
)

func version() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "dev"
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *versionFlag {
		fmt.Printf("swrc version %s\n", version())
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}
	inputPath := args[0]

	source, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	stage, err := resolveStage(*stageFlag, inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	tu, diags := glsl.Compile(string(source), 0, stage)
	if diags.HasErrors() {
		fmt.Fprintf(os.Stderr, "Compilation error:\n%s\n", diags.Error())
		os.Exit(1)
	}

	prog, err := shaderir.Lower(tu, *entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lowering error: %v\n", err)
		os.Exit(1)
	}

	if errs := shaderir.Validate(prog); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "Validation error: %v\n", e)
		}
		os.Exit(1)
	}

	fmt.Printf("%s: %d instructions, %d uniform(s), %d varying(s), %d sampler(s)\n",
		inputPath, len(prog.Instructions), len(prog.Uniforms), len(prog.Varyings), len(prog.Samplers))

	if *output != "" {
		bytes := shaderir.Encode(prog)
		if err := os.WriteFile(*output, bytes, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d bytes of lowered IR to %s\n", len(bytes), *output)
	}
}

func resolveStage(flagValue, path string) (glsl.ShaderStage, error) {
	switch strings.ToLower(flagValue) {
	case "vertex":
		return glsl.StageVertex, nil
	case "fragment":
		return glsl.StageFragment, nil
	case "":
	default:
		return 0, fmt.Errorf("unrecognized -stage value %q (want vertex or fragment)", flagValue)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vert", ".vs":
		return glsl.StageVertex, nil
	case ".frag", ".fs":
		return glsl.StageFragment, nil
	default:
		return 0, fmt.Errorf("cannot infer shader stage from %q; pass -stage vertex|fragment", path)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: swrc [options] <input>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  swrc shader.frag                 Compile and validate\n")
	fmt.Fprintf(os.Stderr, "  swrc -o shader.swrir shader.vert Compile to an IR binary\n")
}
