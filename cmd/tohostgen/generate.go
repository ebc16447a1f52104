package main

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"
)

// Options controls one generator run.
type Options struct {
	Dir   string
	Types []string
	// Package overrides the package clause; empty means the package found
	// in Dir.
	Package string
}

type capability struct {
	Name string
	Doc  string
}

var accessorTemplate = template.Must(template.New("accessors").Parse(`// Code generated by tohostgen. DO NOT EDIT.

package {{.Package}}

import "github.com/rescp17/tunePlayer/pkg/tohost"
{{range .Capabilities}}
// {{.Name}}Of returns the {{.Name}} capability installed by the host.{{if .Doc}}
//
// {{.Doc}}{{end}}
func {{.Name}}Of(s tohost.Source) {{.Name}} {
	return tohost.Of[{{.Name}}](s)
}
{{end}}`))

// Generate parses the non-test Go files in opts.Dir and returns formatted
// source declaring an XxxOf accessor for every requested interface.
func Generate(opts Options) ([]byte, error) {
	if len(opts.Types) == 0 {
		return nil, fmt.Errorf("no capability types given")
	}

	fset := token.NewFileSet()
	entries, err := os.ReadDir(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", opts.Dir, err)
	}

	pkgName := opts.Package
	interfaces := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fset, filepath.Join(opts.Dir, name), nil, parser.ParseComments|parser.SkipObjectResolution)
		if err != nil {
			return nil, err
		}
		if pkgName == "" {
			pkgName = file.Name.Name
		}
		collectInterfaces(file, interfaces)
	}
	if pkgName == "" {
		return nil, fmt.Errorf("no Go files in %s", opts.Dir)
	}

	var caps []capability
	for _, typ := range opts.Types {
		doc, ok := interfaces[typ]
		if !ok {
			return nil, fmt.Errorf("interface %s not found in %s", typ, opts.Dir)
		}
		caps = append(caps, capability{Name: typ, Doc: doc})
	}
	slices.SortFunc(caps, func(a, b capability) int { return strings.Compare(a.Name, b.Name) })

	var buf bytes.Buffer
	err = accessorTemplate.Execute(&buf, struct {
		Package      string
		Capabilities []capability
	}{Package: pkgName, Capabilities: caps})
	if err != nil {
		return nil, err
	}
	return format.Source(buf.Bytes())
}

// collectInterfaces records every interface type declared in file together
// with the first line of its doc comment.
func collectInterfaces(file *ast.File, out map[string]string) {
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts := spec.(*ast.TypeSpec)
			if _, ok := ts.Type.(*ast.InterfaceType); !ok {
				continue
			}
			doc := ts.Doc
			if doc == nil && len(gen.Specs) == 1 {
				doc = gen.Doc
			}
			out[ts.Name.Name] = firstLine(doc)
		}
	}
}

func firstLine(doc *ast.CommentGroup) string {
	if doc == nil {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(doc.Text()), "\n")
	return line
}
