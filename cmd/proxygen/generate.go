// cmd/proxygen/generate.go
package main

import (
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// Generated surface names that wrapped members may not collide with.
var reservedNames = map[string]struct{}{
	"Has": {}, "Delete": {}, "Clone": {}, "Serialize": {},
	"SetInitializer": {}, "Initializer": {}, "Wrapped": {}, "State": {},
}

// ownerImport models one import of the owner package's files.
type ownerImport struct {
	Alias string
	Path  string
}

// ident returns the identifier the import is referenced by in source.
func (i ownerImport) ident() string {
	if i.Alias != "" {
		return i.Alias
	}
	// Import paths always use forward slashes, even on Windows.
	return path.Base(i.Path)
}

// specField is one exported field of the wrapped type.
type specField struct {
	Name string
	Type string
}

// specParam is one declared method parameter.
type specParam struct {
	Name string
	Type string
}

// specMethod is one exported method of the wrapped type.
type specMethod struct {
	Name     string
	Params   []specParam
	Variadic bool
	Results  []string
}

// surface is everything introspection recovers about the wrapped type.
type surface struct {
	PackageName string
	Fields      []specField
	Methods     []specMethod
	Imports     []ownerImport
}

// runGenerate introspects the owner package and writes the generated file.
func runGenerate(spec Spec, opts options, outPath string) error {
	srcDir := spec.Source
	if strings.TrimSpace(srcDir) == "" {
		srcDir = filepath.Dir(outPath)
	}

	sf, err := inspectPackage(srcDir, spec.Type, spec.Skip)
	if err != nil {
		return err
	}

	if strings.TrimSpace(spec.Package) == "" {
		spec.Package = sf.PackageName
	}

	data, err := buildTemplateData(spec, opts, sf)
	if err != nil {
		return err
	}

	var out strings.Builder
	must(genTemplate.Execute(&out, data))

	src, err := format.Source([]byte(out.String()))
	if err != nil {
		// A formatting failure means the template produced invalid Go;
		// surface it with the raw output attached for diagnosis.
		return fmt.Errorf("proxygen: generated code does not parse: %w\n%s", err, out.String())
	}

	return writeFileAtomic(outPath, src, 0o644)
}

// inspectPackage parses the owner package directory and recovers the wrapped
// type's exported surface, including declared parameter names, which
// reflection cannot see.
func inspectPackage(srcDir, typeName string, skip []string) (*surface, error) {
	skipSet := make(map[string]struct{}, len(skip))
	for _, s := range skip {
		skipSet[s] = struct{}{}
	}

	dirEntries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, err
	}

	sf := &surface{}
	fileSet := token.NewFileSet()
	foundType := false

	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		fileName := entry.Name()
		if !strings.HasSuffix(fileName, ".go") ||
			strings.HasSuffix(fileName, "_test.go") ||
			strings.HasSuffix(fileName, ".gen.go") {
			continue
		}

		filePath := filepath.Join(srcDir, fileName)
		parsedFile, parseErr := parser.ParseFile(fileSet, filePath, nil, parser.AllErrors)
		if parsedFile == nil {
			_ = parseErr
			continue
		}

		if sf.PackageName == "" && parsedFile.Name != nil {
			sf.PackageName = parsedFile.Name.Name
		}

		for _, importDecl := range parsedFile.Imports {
			imp := ownerImport{Path: strings.Trim(importDecl.Path.Value, `"`)}
			if importDecl.Name != nil {
				imp.Alias = importDecl.Name.Name
			}
			addImport(&sf.Imports, imp)
		}

		for _, declaration := range parsedFile.Decls {
			switch decl := declaration.(type) {
			case *ast.GenDecl:
				if st := structSpec(decl, typeName); st != nil {
					foundType = true
					collectFields(sf, st, skipSet)
				}
			case *ast.FuncDecl:
				if m, ok := methodOf(decl, typeName); ok {
					if _, skipped := skipSet[m.Name]; !skipped {
						sf.Methods = append(sf.Methods, m)
					}
				}
			}
		}
	}

	if !foundType {
		return nil, fmt.Errorf("proxygen: type %q not found in %s", typeName, srcDir)
	}

	for _, m := range sf.Methods {
		if _, clash := reservedNames[m.Name]; clash {
			return nil, fmt.Errorf("proxygen: method %q collides with the generated surface; list it under skip", m.Name)
		}
	}

	return sf, nil
}

// structSpec returns the struct type declaration for typeName, or nil.
func structSpec(decl *ast.GenDecl, typeName string) *ast.StructType {
	if decl.Tok != token.TYPE {
		return nil
	}
	for _, s := range decl.Specs {
		typeSpec, ok := s.(*ast.TypeSpec)
		if !ok || typeSpec.Name == nil || typeSpec.Name.Name != typeName {
			continue
		}
		if st, ok := typeSpec.Type.(*ast.StructType); ok {
			return st
		}
	}
	return nil
}

// collectFields records the exported, non-embedded fields of the struct.
func collectFields(sf *surface, st *ast.StructType, skip map[string]struct{}) {
	if st.Fields == nil {
		return
	}
	for _, field := range st.Fields.List {
		if len(field.Names) == 0 {
			// Embedded field; promoted members are not part of the surface.
			continue
		}
		typeStr := types.ExprString(field.Type)
		for _, name := range field.Names {
			if !name.IsExported() {
				continue
			}
			if _, skipped := skip[name.Name]; skipped {
				continue
			}
			sf.Fields = append(sf.Fields, specField{Name: name.Name, Type: typeStr})
		}
	}
}

// methodOf extracts a method declaration whose receiver is typeName or
// *typeName. ok is false for free functions, unexported methods, and methods
// of other types.
func methodOf(decl *ast.FuncDecl, typeName string) (specMethod, bool) {
	if decl.Recv == nil || len(decl.Recv.List) != 1 {
		return specMethod{}, false
	}
	if decl.Name == nil || !decl.Name.IsExported() {
		return specMethod{}, false
	}

	recvType := decl.Recv.List[0].Type
	if star, ok := recvType.(*ast.StarExpr); ok {
		recvType = star.X
	}
	recvIdent, ok := recvType.(*ast.Ident)
	if !ok || recvIdent.Name != typeName {
		return specMethod{}, false
	}

	m := specMethod{Name: decl.Name.Name}

	if decl.Type.Params != nil {
		pos := 0
		for _, field := range decl.Type.Params.List {
			typeExpr := field.Type
			if ell, isEll := typeExpr.(*ast.Ellipsis); isEll {
				m.Variadic = true
				typeExpr = ell.Elt
			}
			typeStr := types.ExprString(typeExpr)

			names := field.Names
			if len(names) == 0 {
				// Unnamed parameter; bind it positionally.
				m.Params = append(m.Params, specParam{Name: "arg" + strconv.Itoa(pos), Type: typeStr})
				pos++
				continue
			}
			for _, name := range names {
				paramName := name.Name
				if paramName == "_" {
					paramName = "arg" + strconv.Itoa(pos)
				}
				m.Params = append(m.Params, specParam{Name: paramName, Type: typeStr})
				pos++
			}
		}
	}

	if decl.Type.Results != nil {
		for _, field := range decl.Type.Results.List {
			typeStr := types.ExprString(field.Type)
			n := len(field.Names)
			if n == 0 {
				n = 1
			}
			for i := 0; i < n; i++ {
				m.Results = append(m.Results, typeStr)
			}
		}
	}

	return m, true
}

// addImport appends an import unless its path is already known.
func addImport(imports *[]ownerImport, imp ownerImport) {
	for _, existing := range *imports {
		if existing.Path == imp.Path {
			return
		}
	}
	*imports = append(*imports, imp)
}
