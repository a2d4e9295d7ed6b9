// Command ecs-stress-gen writes the component and system tables used by ecs-stress.
package main

import (
	"bytes"
	"flag"
	"log"
	"os"
	"strconv"
	"text/template"

	"golang.org/x/tools/imports"
)

const source = `// Code generated by ecs-stress-gen. DO NOT EDIT.

package {{.Package}}

import "github.com/plus3/framehost/ecs"

const componentCount = {{.Components}}
{{range .Names}}
type {{.}} struct{ V vec4 }
{{end}}
{{range .Names}}
func (c *{{.}}) vec() *vec4 { return &c.V }
{{- end}}

func RegisterAllComponents(registry *ecs.ComponentRegistry) {
{{- range .Names}}
	ecs.RegisterComponent[{{.}}](registry)
{{- end}}
}

var componentFactories = [componentCount]func(v float64) any{
{{- range .Names}}
	func(v float64) any { return {{.}}{vec4{v, v, v, v}} },
{{- end}}
}

var systemFactories = [componentCount]func() ecs.System{
{{- range .Pairs}}
	func() ecs.System { return &mixSystem[{{.Dst}}, {{.Src}}, *{{.Dst}}, *{{.Src}}]{} },
{{- end}}
}
`

type pair struct {
	Dst, Src string
}

type params struct {
	Package    string
	Components int
	Names      []string
	Pairs      []pair
}

func newParams(pkg string, components, offset int) params {
	p := params{Package: pkg, Components: components}
	for i := range components {
		p.Names = append(p.Names, "C"+strconv.Itoa(i))
	}
	for i := range components {
		p.Pairs = append(p.Pairs, pair{Dst: p.Names[i], Src: p.Names[(i+offset)%components]})
	}
	return p
}

func generate(p params) ([]byte, error) {
	tmpl, err := template.New("generated").Parse(source)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return nil, err
	}
	return imports.Process("generated.go", buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
}

func main() {
	components := flag.Int("components", 8, "Number of component types to generate.")
	offset := flag.Int("offset", 3, "Each system writes C(i) and reads C(i+offset).")
	pkg := flag.String("package", "main", "Package name of the generated file.")
	out := flag.String("out", "generated.go", "Output file.")
	flag.Parse()

	if *components < 1 {
		log.Fatalf("-components must be positive, got %d", *components)
	}

	src, err := generate(newParams(*pkg, *components, *offset))
	if err != nil {
		log.Fatalf("Failed to generate: %v", err)
	}
	if err := os.WriteFile(*out, src, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}
	log.Printf("Wrote %s with %d components", *out, *components)
}
