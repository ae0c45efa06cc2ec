package shader

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	structRe  = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	entryRe   = regexp.MustCompile(`@(vertex|fragment|compute)\b[^{;]*?\bfn\s+(\w+)`)
	bindingRe = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// reflection is what pipeline creation needs to know about one processed WGSL module.
type reflection struct {
	entryPoint    string
	vertexLayouts map[int][]wgpu.VertexBufferLayout
	groups        map[int]wgpu.BindGroupLayoutDescriptor
	varNames      map[int]map[int]string
}

type wgslField struct {
	name     string
	typ      string
	location int
	builtin  bool
}

type wgslStruct struct {
	name   string
	fields []wgslField
}

// reflectWGSL scans processed WGSL for the stage's entry point, its vertex input structs (vertex
// stage only) and every buffer binding. Handle bindings (textures, samplers) are skipped.
//
// Parameters:
//   - source: the processed WGSL source
//   - stage: the shader stage being built
//
// Returns:
//   - reflection: the reflected module
//   - error: an error if the stage has no entry point
func reflectWGSL(source string, stage ShaderType) (reflection, error) {
	code := stripComments(source)
	r := reflection{
		vertexLayouts: make(map[int][]wgpu.VertexBufferLayout),
		groups:        make(map[int]wgpu.BindGroupLayoutDescriptor),
		varNames:      make(map[int]map[int]string),
	}

	for _, m := range entryRe.FindAllStringSubmatch(code, -1) {
		if m[1] == stage.String() {
			r.entryPoint = m[2]
			break
		}
	}
	if r.entryPoint == "" {
		return r, fmt.Errorf("no @%s entry point found", stage)
	}

	structs := parseStructs(code)

	var visibility wgpu.ShaderStage
	switch stage {
	case ShaderTypeVertex:
		visibility = wgpu.ShaderStageVertex
		for _, st := range structs {
			if layout, ok := vertexLayout(st); ok {
				r.vertexLayouts[len(r.vertexLayouts)] = []wgpu.VertexBufferLayout{layout}
			}
		}
	case ShaderTypeFragment:
		visibility = wgpu.ShaderStageFragment
	}

	known := structLayouts(structs)
	entries := make(map[int][]wgpu.BindGroupLayoutEntry)
	for _, m := range bindingRe.FindAllStringSubmatch(code, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])

		entry := wgpu.BindGroupLayoutEntry{Binding: uint32(binding), Visibility: visibility}
		switch space := strings.ReplaceAll(m[3], " ", ""); {
		case space == "uniform":
			entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		case space == "storage,read_write":
			entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		case strings.HasPrefix(space, "storage"):
			entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		default:
			continue
		}
		if l, ok := resolveTypeLayout(m[5], known); ok {
			entry.Buffer.MinBindingSize = l.size
		}

		entries[group] = append(entries[group], entry)
		if r.varNames[group] == nil {
			r.varNames[group] = make(map[int]string)
		}
		r.varNames[group][binding] = m[4]
	}
	for g, es := range entries {
		slices.SortFunc(es, func(a, b wgpu.BindGroupLayoutEntry) int { return int(a.Binding) - int(b.Binding) })
		r.groups[g] = wgpu.BindGroupLayoutDescriptor{Entries: es}
	}
	return r, nil
}

// parseStructs returns every struct declaration in comment-free source, in source order.
func parseStructs(code string) []wgslStruct {
	var out []wgslStruct
	for _, m := range structRe.FindAllStringSubmatch(code, -1) {
		st := wgslStruct{name: m[1]}
		for _, decl := range splitTopLevel(m[2]) {
			if f, ok := parseField(decl); ok {
				st.fields = append(st.fields, f)
			}
		}
		out = append(out, st)
	}
	return out
}

// parseField parses one "[@attr(...)]* name: type" member declaration.
func parseField(decl string) (wgslField, bool) {
	f := wgslField{location: -1}
	rest := strings.TrimSpace(decl)
	for strings.HasPrefix(rest, "@") {
		end := attributeEnd(rest)
		attr := rest[:end]
		switch {
		case strings.HasPrefix(attr, "@builtin"):
			f.builtin = true
		case strings.HasPrefix(attr, "@location("):
			if n, err := strconv.Atoi(strings.TrimSpace(attr[len("@location(") : len(attr)-1])); err == nil {
				f.location = n
			}
		}
		rest = strings.TrimSpace(rest[end:])
	}

	name, typ, ok := strings.Cut(rest, ":")
	if !ok {
		return f, false
	}
	f.name, f.typ = strings.TrimSpace(name), strings.TrimSpace(typ)
	return f, f.name != "" && f.typ != ""
}

// attributeEnd returns the length of the attribute at the start of s, including its argument list.
func attributeEnd(s string) int {
	i := 1
	for i < len(s) && (s[i] == '_' || 'a' <= s[i] && s[i] <= 'z' || 'A' <= s[i] && s[i] <= 'Z' || '0' <= s[i] && s[i] <= '9') {
		i++
	}
	if i < len(s) && s[i] == '(' {
		if j := strings.IndexByte(s[i:], ')'); j >= 0 {
			return i + j + 1
		}
		return len(s)
	}
	return i
}

// vertexLayout builds a tightly packed vertex buffer layout from a struct whose members all carry
// @location and none @builtin. Output structs, which carry @builtin(position), are rejected.
func vertexLayout(st wgslStruct) (wgpu.VertexBufferLayout, bool) {
	if len(st.fields) == 0 {
		return wgpu.VertexBufferLayout{}, false
	}
	layout := wgpu.VertexBufferLayout{StepMode: wgpu.VertexStepModeVertex}
	for _, f := range st.fields {
		if f.builtin || f.location < 0 {
			return wgpu.VertexBufferLayout{}, false
		}
		format, size, ok := vertexFormat(f.typ)
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		layout.Attributes = append(layout.Attributes, wgpu.VertexAttribute{
			Format:         format,
			Offset:         layout.ArrayStride,
			ShaderLocation: uint32(f.location),
		})
		layout.ArrayStride += size
	}
	return layout, true
}

// stripComments removes line comments and nested block comments.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		switch {
		case strings.HasPrefix(source[i:], "/*"):
			depth++
			i++
		case depth > 0 && strings.HasPrefix(source[i:], "*/"):
			depth--
			i++
		case depth > 0:
		case strings.HasPrefix(source[i:], "//"):
			nl := strings.IndexByte(source[i:], '\n')
			if nl < 0 {
				return sb.String()
			}
			i += nl - 1
		default:
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}

// splitTopLevel splits s at commas outside angle brackets, so array<vec4<f32>, 6> stays whole.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth = max(depth-1, 0)
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
