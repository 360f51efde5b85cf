package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
)

// applyMaterial copies the base color factor and locates the base color image of a material.
// The image is decoded later by the loader.
func (f *gltfFile) applyMaterial(md *MeshData, index int) error {
	if index < 0 || index >= len(f.doc.Materials) {
		return fmt.Errorf("material index %d out of range", index)
	}
	mat := &f.doc.Materials[index]
	pbr := mat.PbrMetallicRoughness
	if pbr == nil {
		return nil
	}
	if pbr.BaseColorFactor != nil {
		md.BaseColor = *pbr.BaseColorFactor
	}
	if pbr.BaseColorTexture == nil {
		return nil
	}
	src, err := f.imageSource(pbr.BaseColorTexture.Index)
	if err != nil {
		return fmt.Errorf("material %q: base color texture: %w", mat.Name, err)
	}
	md.Texture = src
	return nil
}

func (f *gltfFile) imageSource(textureIndex int) (*common.ImageSource, error) {
	doc := f.doc
	if textureIndex < 0 || textureIndex >= len(doc.Textures) {
		return nil, fmt.Errorf("texture index %d out of range", textureIndex)
	}
	tex := &doc.Textures[textureIndex]
	if tex.Source == nil {
		return nil, nil
	}
	if *tex.Source < 0 || *tex.Source >= len(doc.Images) {
		return nil, fmt.Errorf("image index %d out of range", *tex.Source)
	}
	img := &doc.Images[*tex.Source]
	name := img.Name
	if name == "" {
		name = fmt.Sprintf("image_%d", *tex.Source)
	}

	switch {
	case img.BufferView != nil:
		data, err := f.bufferView(*img.BufferView)
		if err != nil {
			return nil, err
		}
		return &common.ImageSource{Name: name, Data: data}, nil
	case strings.HasPrefix(img.URI, "data:"):
		data, err := f.readURI(img.URI)
		if err != nil {
			return nil, err
		}
		return &common.ImageSource{Name: name, Data: data}, nil
	case img.URI != "":
		return &common.ImageSource{Name: name, Path: filepath.Join(f.baseDir, img.URI)}, nil
	}
	return nil, nil
}
