package shader

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

const testVertexSource = `//@sketch:include vertex
//@sketch:include camera
//@sketch:include material
//@sketch:include sphere_instance
//@sketch:include simplex4d

//@sketch:group 0 0 storage_uniform camera camera
//@sketch:group 1 0 storage_read instances array<sphere_instance>

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

@vertex
fn vs_main(in: VertexInput, @builtin(instance_index) idx: u32) -> VertexOutput {
    var out: VertexOutput;
    let n = snoise4(vec4<f32>(in.position, instances[idx].material.time));
    out.clip_position = camera.view_proj * instances[idx].model * vec4<f32>(in.position + in.normal * n, 1.0);
    out.uv = in.uv;
    return out;
}
`

const testFragmentSource = `//@sketch:include simplex3d

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    return vec4<f32>(vec3<f32>(snoise3(vec3<f32>(uv, 0.0))), 1.0);
}
`

func TestParseAnnotation(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    AnnotationType
		wantNil bool
		wantErr bool
	}{
		{name: "plain code", line: "let x = 1.0;", wantNil: true},
		{name: "ordinary comment", line: "// displace along the normal", wantNil: true},
		{name: "include struct", line: "//@sketch:include camera", want: annotationTypeInclude},
		{name: "include library", line: "  //@sketch:include simplex4d", want: annotationTypeInclude},
		{name: "group uniform", line: "//@sketch:group 0 0 storage_uniform camera camera", want: AnnotationTypeBindingGroup},
		{name: "group storage array", line: "//@sketch:group 1 0 storage_read instances array<sphere_instance>", want: AnnotationTypeBindingGroup},
		{name: "empty annotation", line: "//@sketch:", wantErr: true},
		{name: "unknown type", line: "//@sketch:provider 2 0 material", wantErr: true},
		{name: "unknown include", line: "//@sketch:include skinned_vertex", wantErr: true},
		{name: "include arity", line: "//@sketch:include camera vertex", wantErr: true},
		{name: "bad group number", line: "//@sketch:group x 0 storage_uniform camera camera", wantErr: true},
		{name: "negative binding", line: "//@sketch:group 0 -1 storage_uniform camera camera", wantErr: true},
		{name: "unknown address space", line: "//@sketch:group 0 0 private camera camera", wantErr: true},
		{name: "library is not bindable", line: "//@sketch:group 0 0 storage_uniform n simplex3d", wantErr: true},
		{name: "runtime array in uniform", line: "//@sketch:group 1 0 storage_uniform instances array<sphere_instance>", wantErr: true},
		{name: "unterminated array", line: "//@sketch:group 1 0 storage_read instances array<sphere_instance", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := parseAnnotation(tt.line, 7)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", a)
				}
				if !strings.Contains(err.Error(), "line 7") {
					t.Fatalf("error %q does not report the line", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantNil {
				if a != nil {
					t.Fatalf("expected nil annotation, got %+v", a)
				}
				return
			}
			if a == nil || a.Type != tt.want {
				t.Fatalf("got %+v, want type %q", a, tt.want)
			}
		})
	}
}

func TestAnnotationStructKey(t *testing.T) {
	a, err := parseAnnotation("//@sketch:group 1 0 storage_read instances array<sphere_instance>", 1)
	if err != nil {
		t.Fatal(err)
	}
	key, isArray := a.StructKey()
	if key != AnnotationArgSphereInstance || !isArray {
		t.Fatalf("StructKey() = (%q, %v), want (%q, true)", key, isArray, AnnotationArgSphereInstance)
	}
	if *a.Group != 1 || *a.Binding != 0 {
		t.Fatalf("group/binding = %d/%d, want 1/0", *a.Group, *a.Binding)
	}
}

func TestProcessIncludesOnce(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process("//@sketch:include simplex3d\n//@sketch:include simplex4d\n//@sketch:include simplex3d\n")
	if err != nil {
		t.Fatal(err)
	}
	for _, fn := range []string{"fn mod289_4(", "fn snoise3(", "fn snoise4("} {
		if n := strings.Count(out, fn); n != 1 {
			t.Errorf("%s appears %d times, want 1", fn, n)
		}
	}
	if strings.Contains(out, annotationPrefix) {
		t.Error("processed source still contains annotations")
	}
}

func TestProcessResetsBetweenCalls(t *testing.T) {
	pp := NewPreProcessor()
	if _, err := pp.Process("//@sketch:include camera\n//@sketch:group 0 0 storage_uniform camera camera"); err != nil {
		t.Fatal(err)
	}
	if len(pp.Declarations()) != 1 {
		t.Fatalf("declarations = %d, want 1", len(pp.Declarations()))
	}
	out, err := pp.Process("//@sketch:include camera\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(pp.Declarations()) != 0 {
		t.Fatalf("declarations not reset: %d", len(pp.Declarations()))
	}
	if !strings.Contains(out, "struct CameraUniform") {
		t.Fatal("second Process skipped an include seen by the first")
	}
}

func TestNewShaderVertex(t *testing.T) {
	s := NewShader("sphere_vertex", ShaderTypeVertex, testVertexSource)

	if s.EntryPoint() != "vs_main" {
		t.Fatalf("EntryPoint() = %q, want vs_main", s.EntryPoint())
	}
	if !strings.Contains(s.Source(), "@group(1) @binding(0) var<storage, read> instances: array<SphereInstance>;") {
		t.Fatalf("instance declaration not generated:\n%s", s.Source())
	}

	layouts := s.VertexLayout(0)
	if len(layouts) != 1 {
		t.Fatalf("vertex layouts = %d, want 1", len(layouts))
	}
	if layouts[0].ArrayStride != 32 || len(layouts[0].Attributes) != 3 {
		t.Fatalf("stride %d with %d attributes, want 32 with 3", layouts[0].ArrayStride, len(layouts[0].Attributes))
	}
	if layouts[0].Attributes[2].Offset != 24 || layouts[0].Attributes[2].Format != wgpu.VertexFormatFloat32x2 {
		t.Fatalf("uv attribute = %+v", layouts[0].Attributes[2])
	}

	tests := []struct {
		group    int
		wantType wgpu.BufferBindingType
		wantSize uint64
		wantVar  string
	}{
		{0, wgpu.BufferBindingTypeUniform, 80, "camera"},
		{1, wgpu.BufferBindingTypeReadOnlyStorage, 80, "instances"},
	}
	for _, tt := range tests {
		desc := s.BindGroupLayoutDescriptor(tt.group)
		if len(desc.Entries) != 1 {
			t.Fatalf("group %d has %d entries, want 1", tt.group, len(desc.Entries))
		}
		e := desc.Entries[0]
		if e.Buffer.Type != tt.wantType || e.Buffer.MinBindingSize != tt.wantSize {
			t.Errorf("group %d buffer = %+v, want type %v size %d", tt.group, e.Buffer, tt.wantType, tt.wantSize)
		}
		if e.Visibility != wgpu.ShaderStageVertex {
			t.Errorf("group %d visibility = %v, want vertex", tt.group, e.Visibility)
		}
		if got := s.BindGroupVarName(tt.group, 0); got != tt.wantVar {
			t.Errorf("group %d var = %q, want %q", tt.group, got, tt.wantVar)
		}
	}

	g, b, ok := s.GroupFor(AnnotationArgSphereInstance)
	if !ok || g != 1 || b != 0 {
		t.Fatalf("GroupFor(sphere_instance) = (%d, %d, %v), want (1, 0, true)", g, b, ok)
	}
	if _, _, ok := s.GroupFor(AnnotationArgMaterial); ok {
		t.Fatal("material is included but never bound")
	}
}

func TestNewShaderFragment(t *testing.T) {
	s := NewShader("sphere_fragment", ShaderTypeFragment, testFragmentSource)
	if s.EntryPoint() != "fs_main" {
		t.Fatalf("EntryPoint() = %q, want fs_main", s.EntryPoint())
	}
	if len(s.BindGroupLayoutDescriptors()) != 0 {
		t.Fatalf("fragment declares %d groups, want 0", len(s.BindGroupLayoutDescriptors()))
	}
	if len(s.VertexLayouts()) != 0 {
		t.Fatal("fragment shaders carry no vertex layouts")
	}
	if s.Module() == nil || s.Module().WGSLDescriptor.Code != s.Source() {
		t.Fatal("module descriptor does not carry the processed source")
	}
}

func TestParseShaderErrors(t *testing.T) {
	tests := []struct {
		name   string
		typ    ShaderType
		source string
	}{
		{"empty source", ShaderTypeVertex, ""},
		{"wrong stage", ShaderTypeVertex, testFragmentSource},
		{"bad annotation", ShaderTypeFragment, "//@sketch:include nothing\n@fragment fn fs_main() {}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseShader("broken", tt.typ, tt.source); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestResolveTypeLayout(t *testing.T) {
	known := map[string]typeLayout{"SphereInstance": {80, 16}}
	tests := []struct {
		typeName string
		want     typeLayout
		ok       bool
	}{
		{"vec3<f32>", typeLayout{12, 16}, true},
		{"mat4x4<f32>", typeLayout{64, 16}, true},
		{"array<SphereInstance, 40>", typeLayout{3200, 16}, true},
		{"array<SphereInstance>", typeLayout{80, 16}, true},
		{"array<vec3<f32>, 2>", typeLayout{32, 16}, true},
		{"Unknown", typeLayout{}, false},
	}
	for _, tt := range tests {
		got, ok := resolveTypeLayout(tt.typeName, known)
		if ok != tt.ok || got != tt.want {
			t.Errorf("resolveTypeLayout(%q) = (%v, %v), want (%v, %v)", tt.typeName, got, ok, tt.want, tt.ok)
		}
	}
}
