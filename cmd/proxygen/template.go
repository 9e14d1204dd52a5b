// cmd/proxygen/template.go
package main

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
)

// genMethod is the template input for one typed forwarding method.
type genMethod struct {
	Name         string
	ParamsSig    string
	ResultsSig   string
	CallArgs     string
	HasResults   bool
	Variadic     bool
	VariadicName string
	FixedNames   []string
	FixedCount   int
	Assigns      []string
}

// genField is the template input for one property accessor pair.
type genField struct {
	Name string
	Type string
}

// templateData is the input passed to the Go template.
type templateData struct {
	Spec         Spec
	HeaderNote   string
	ImportLine   string
	OwnerImports []string
	Methods      []genMethod
	Fields       []genField
	Chains       []string
}

// buildTemplateData shapes the introspected surface for the template.
func buildTemplateData(spec Spec, opts options, sf *surface) (*templateData, error) {
	data := &templateData{
		Spec:       spec,
		HeaderNote: opts.HeaderNote,
		ImportLine: coreImportLine(opts.CoreImport),
	}

	// Names the generated file will declare; used to reject collisions that
	// would only surface as compile errors in the output.
	declared := map[string]struct{}{
		"New" + spec.ProxyName: {}, "Restore" + spec.ProxyName: {},
	}
	for name := range reservedNames {
		declared[name] = struct{}{}
	}

	var sigTypes []string

	for _, m := range sf.Methods {
		if _, dup := declared[m.Name]; dup {
			return nil, fmt.Errorf("proxygen: method %q collides with the generated surface; list it under skip", m.Name)
		}
		declared[m.Name] = struct{}{}

		gm, chain := buildMethod(m)
		data.Methods = append(data.Methods, gm)
		if chain != "" {
			data.Chains = append(data.Chains, chain)
		}
		for _, p := range m.Params {
			sigTypes = append(sigTypes, p.Type)
		}
		sigTypes = append(sigTypes, m.Results...)
	}

	for _, f := range sf.Fields {
		for _, accessor := range []string{"Get" + f.Name, "Set" + f.Name} {
			if _, dup := declared[accessor]; dup {
				return nil, fmt.Errorf("proxygen: field %q produces accessor %q which collides with another member; list it under skip", f.Name, accessor)
			}
			declared[accessor] = struct{}{}
		}
		data.Fields = append(data.Fields, genField(f))
		sigTypes = append(sigTypes, f.Type)
	}

	data.OwnerImports = usedImports(sf.Imports, sigTypes)
	return data, nil
}

// buildMethod renders one method's template inputs plus its
// WithParamNames chain entry ("" when the method takes no parameters).
func buildMethod(m specMethod) (genMethod, string) {
	gm := genMethod{Name: m.Name, Variadic: m.Variadic, HasResults: len(m.Results) > 0}

	var params []string
	for i, p := range m.Params {
		if m.Variadic && i == len(m.Params)-1 {
			params = append(params, p.Name+" ..."+p.Type)
			gm.VariadicName = p.Name
		} else {
			params = append(params, p.Name+" "+p.Type)
			gm.FixedNames = append(gm.FixedNames, p.Name)
			gm.CallArgs += ", " + p.Name
		}
	}
	gm.ParamsSig = strings.Join(params, ", ")
	gm.FixedCount = len(gm.FixedNames)

	errIdx := -1
	if n := len(m.Results); n > 0 && m.Results[n-1] == "error" {
		errIdx = n - 1
	}

	var results []string
	for i, rt := range m.Results {
		if i == errIdx {
			results = append(results, "err error")
			gm.Assigns = append(gm.Assigns,
				"if out["+strconv.Itoa(i)+"] != nil {\n\t\terr = out["+strconv.Itoa(i)+"].(error)\n\t}")
			continue
		}
		name := "r" + strconv.Itoa(i)
		results = append(results, name+" "+rt)
		gm.Assigns = append(gm.Assigns,
			"if out["+strconv.Itoa(i)+"] != nil {\n\t\t"+name+" = out["+strconv.Itoa(i)+"].("+rt+")\n\t}")
	}
	if errIdx == -1 {
		results = append(results, "err error")
	}
	gm.ResultsSig = strings.Join(results, ", ")

	var chain string
	if len(m.Params) > 0 {
		parts := []string{strconv.Quote(m.Name)}
		for _, p := range m.Params {
			parts = append(parts, strconv.Quote(p.Name))
		}
		chain = strings.Join(parts, ", ")
	}
	return gm, chain
}

// coreImportLine renders the proxy runtime import, aliased when the path
// base would not already read as "proxy".
func coreImportLine(importPath string) string {
	if path.Base(importPath) == "proxy" {
		return strconv.Quote(importPath)
	}
	return "proxy " + strconv.Quote(importPath)
}

// usedImports keeps the owner imports whose identifier appears in at least
// one signature type, so the generated file never carries unused imports.
func usedImports(imports []ownerImport, sigTypes []string) []string {
	var lines []string
	for _, imp := range imports {
		ident := imp.ident()
		for _, s := range sigTypes {
			if strings.Contains(s, ident+".") {
				if imp.Alias != "" {
					lines = append(lines, imp.Alias+" "+strconv.Quote(imp.Path))
				} else {
					lines = append(lines, strconv.Quote(imp.Path))
				}
				break
			}
		}
	}
	return lines
}

// genTemplate is the Go source template used to generate the typed proxy.
var genTemplate = template.Must(
	template.New("proxygen").Parse(`// Code generated by proxygen; DO NOT EDIT.
{{- if .HeaderNote}}
// {{.HeaderNote}}
{{- end}}

package {{.Spec.Package}}

import (
	{{.ImportLine}}
{{- range .OwnerImports}}
	{{.}}
{{- end}}
)

// {{.Spec.ProxyName}} is a lazy-loading value holder standing in for a
// {{.Spec.Type}}. Construction of the wrapped instance is deferred to the
// initializer on first use; every entry point below funnels through that
// guard.
type {{.Spec.ProxyName}} struct {
	vh *proxy.Proxy[{{.Spec.Type}}]
}

// New{{.Spec.ProxyName}} produces an uninitialized proxy for {{.Spec.Type}}.
func New{{.Spec.ProxyName}}(f *proxy.Factory, init proxy.Initializer[{{.Spec.Type}}]) (*{{.Spec.ProxyName}}, error) {
	if f == nil {
		return nil, proxy.ErrNilFactory
	}
{{- if .Chains}}
	d, err := proxy.Describe[{{.Spec.Type}}]()
	if err != nil {
		return nil, err
	}
	d{{- range .Chains}}.
		WithParamNames({{.}}){{end}}
	f.Registry().Provide(d.Type(), d)
{{- end}}
	vh, err := proxy.Create[{{.Spec.Type}}](f, init)
	if err != nil {
		return nil, err
	}
	return &{{.Spec.ProxyName}}{vh: vh}, nil
}

// Restore{{.Spec.ProxyName}} rebuilds an already-initialized proxy from the
// persisted form produced by Serialize. No initializer is ever invoked.
func Restore{{.Spec.ProxyName}}(f *proxy.Factory, data []byte) (*{{.Spec.ProxyName}}, error) {
	vh, err := proxy.Restore[{{.Spec.Type}}](f, data)
	if err != nil {
		return nil, err
	}
	return &{{.Spec.ProxyName}}{vh: vh}, nil
}
{{range .Methods}}
// {{.Name}} forwards to the wrapped {{$.Spec.Type}}, initializing it on
// first use.
func (p *{{$.Spec.ProxyName}}) {{.Name}}({{.ParamsSig}}) ({{.ResultsSig}}) {
{{- if .Variadic}}
	args := make([]any, 0, {{.FixedCount}}+len({{.VariadicName}}))
{{- range .FixedNames}}
	args = append(args, {{.}})
{{- end}}
	for _, v := range {{.VariadicName}} {
		args = append(args, v)
	}
{{- if .HasResults}}
	out, ierr := p.vh.Invoke("{{.Name}}", args...)
{{- else}}
	_, ierr := p.vh.Invoke("{{.Name}}", args...)
{{- end}}
{{- else}}
{{- if .HasResults}}
	out, ierr := p.vh.Invoke("{{.Name}}"{{.CallArgs}})
{{- else}}
	_, ierr := p.vh.Invoke("{{.Name}}"{{.CallArgs}})
{{- end}}
{{- end}}
	if ierr != nil {
		err = ierr
		return
	}
{{- range .Assigns}}
	{{.}}
{{- end}}
	return
}
{{end}}
{{- range .Fields}}
// Get{{.Name}} reads the {{.Name}} property, initializing the wrapped
// {{$.Spec.Type}} on first use.
func (p *{{$.Spec.ProxyName}}) Get{{.Name}}() (val {{.Type}}, err error) {
	var raw any
	raw, err = p.vh.Get("{{.Name}}")
	if err != nil {
		return
	}
	if raw != nil {
		val = raw.({{.Type}})
	}
	return
}

// Set{{.Name}} writes the {{.Name}} property, initializing the wrapped
// {{$.Spec.Type}} on first use.
func (p *{{$.Spec.ProxyName}}) Set{{.Name}}(val {{.Type}}) error {
	return p.vh.Set("{{.Name}}", val)
}
{{end}}
// Has reports whether the wrapped type has the named member, initializing
// the wrapped {{.Spec.Type}} on first use.
func (p *{{.Spec.ProxyName}}) Has(name string) (bool, error) {
	return p.vh.Has(name)
}

// Delete resets the named property to its zero value, initializing the
// wrapped {{.Spec.Type}} on first use.
func (p *{{.Spec.ProxyName}}) Delete(name string) error {
	return p.vh.Delete(name)
}

// Clone initializes the proxy if needed and returns a proxy wrapping a
// shallow copy of the wrapped {{.Spec.Type}}.
func (p *{{.Spec.ProxyName}}) Clone() (*{{.Spec.ProxyName}}, error) {
	vh, err := p.vh.Clone()
	if err != nil {
		return nil, err
	}
	return &{{.Spec.ProxyName}}{vh: vh}, nil
}

// Serialize initializes the proxy if needed and returns the wrapped
// {{.Spec.Type}}'s state.
func (p *{{.Spec.ProxyName}}) Serialize() ([]byte, error) {
	return p.vh.Serialize()
}

// SetInitializer installs a new initializer callback, or disables further
// initialization when called with nil.
func (p *{{.Spec.ProxyName}}) SetInitializer(init proxy.Initializer[{{.Spec.Type}}]) {
	p.vh.SetInitializer(init)
}

// Initializer returns the installed initializer callback, or nil.
func (p *{{.Spec.ProxyName}}) Initializer() proxy.Initializer[{{.Spec.Type}}] {
	return p.vh.Initializer()
}

// Wrapped returns the wrapped instance, or nil while uninitialized. It never
// triggers initialization.
func (p *{{.Spec.ProxyName}}) Wrapped() *{{.Spec.Type}} {
	return p.vh.Wrapped()
}

// State returns the proxy's lifecycle state.
func (p *{{.Spec.ProxyName}}) State() proxy.State {
	return p.vh.State()
}
`),
)

// tempFile abstracts an os.File for testability.
type tempFile interface {
	Name() string
	Write([]byte) (int, error)
	Close() error
}

// File operation hooks, overridden in tests.
var (
	createTempFile = func(dir, pattern string) (tempFile, error) { return os.CreateTemp(dir, pattern) }
	chmodFile      = os.Chmod
	renameFile     = os.Rename
	removeFile     = os.Remove
)

// writeFileAtomic writes a file atomically.
//
// It writes to a temporary file in the same directory and then renames it
// over the target path, ensuring readers never observe partial writes.
func writeFileAtomic(targetPath string, data []byte, perm os.FileMode) (err error) {
	targetDir := filepath.Dir(targetPath)

	tmpFile, err := createTempFile(targetDir, filepath.Base(targetPath)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if err != nil {
			_ = removeFile(tmpPath)
		}
	}()

	if _, err = tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err = tmpFile.Close(); err != nil {
		return err
	}
	if err = chmodFile(tmpPath, perm); err != nil {
		return err
	}
	if err = renameFile(tmpPath, targetPath); err != nil {
		return err
	}
	return nil
}
