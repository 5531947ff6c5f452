// Command linea evaluates a sketch script and prints the resulting
// geometry and constraints.
//
// Usage:
//
//	linea [-config linea.yaml] [script.lsp]
//
// With no script argument the source is read from stdin.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/chazu/linea/pkg/config"
	"github.com/chazu/linea/pkg/engine"
	"github.com/chazu/linea/pkg/sketch"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("linea: ")

	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}

	source, name, err := readSource(flag.Args())
	if err != nil {
		log.Fatal(err)
	}

	eng := engine.NewEngineWithOptions(engine.Options{
		Timeout:          cfg.EngineTimeout.Std(),
		Tolerance:        cfg.Tolerance,
		IntersectSamples: cfg.IntersectSamples,
	})

	s, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		log.Fatalf("%s: %v", name, err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			fmt.Fprintf(os.Stderr, "%s: %s\n", name, e.Error())
		}
		os.Exit(1)
	}

	printReport(os.Stdout, s)
}

// readSource returns the script text and a display name for messages.
func readSource(args []string) (string, string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), "stdin", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", err
	}
	return string(data), args[0], nil
}

// printReport lists the sketch contents, one element or constraint per
// line.
func printReport(w io.Writer, s *sketch.Sketch) {
	elems := s.GeometryList()
	fmt.Fprintf(w, "geometry (%d):\n", len(elems))
	for i, e := range elems {
		marker := ""
		if e.Common().Construction {
			marker = " construction"
		}
		fmt.Fprintf(w, "  Edge%d %s%s\n", i+1, e.Kind(), marker)
	}

	cons := s.Constraints()
	fmt.Fprintf(w, "constraints (%d):\n", len(cons))
	for i, c := range cons {
		fmt.Fprintf(w, "  %d %s %s", i, c.Type, refString(s, c.First, c.FirstPos))
		if c.Second != sketch.GeoUndef {
			fmt.Fprintf(w, " %s", refString(s, c.Second, c.SecondPos))
		}
		if c.Third != sketch.GeoUndef {
			fmt.Fprintf(w, " %s", refString(s, c.Third, c.ThirdPos))
		}
		if c.Type.IsDimensional() {
			fmt.Fprintf(w, " = %g", c.Value)
			if c.Expression != "" {
				fmt.Fprintf(w, " (%s)", c.Expression)
			}
		}
		if c.Name != "" {
			fmt.Fprintf(w, " %q", c.Name)
		}
		fmt.Fprintln(w)
	}
}

// refString formats a constraint reference slot as the positional shape
// name, falling back to the raw geoId for anything unnameable.
func refString(s *sketch.Sketch, geoId int, pos sketch.PointPos) string {
	name, err := s.ShapeTypeFromGeoId(geoId, pos)
	if err != nil {
		return fmt.Sprintf("g%d", geoId)
	}
	return name
}
