package shader

// wgslTypeLayout holds the byte size and alignment of a WGSL type.
type wgslTypeLayout struct {
	size  int
	align int
}

type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

type parsedStruct struct {
	name   string
	fields []parsedField
}

// Binding is one @group/@binding resource declaration.
type Binding struct {
	Group   int
	Binding int
	Name    string
	// AddressSpace is "uniform", "storage, read" and so on; empty for textures and samplers.
	AddressSpace string
	Type         string
}

// IsTexture reports whether the binding is a sampled or depth texture.
func (b Binding) IsTexture() bool {
	return len(b.Type) >= 8 && b.Type[:8] == "texture_"
}
