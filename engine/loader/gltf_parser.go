package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	errInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.0")
	errInvalidGLBMagic    = errors.New("invalid GLB magic number")
	errInvalidGLBVersion  = errors.New("invalid GLB version: must be 2")
	errMissingJSONChunk   = errors.New("GLB file missing JSON chunk")
	errInvalidBufferURI   = errors.New("invalid buffer URI")
	errBufferSizeMismatch = errors.New("buffer size mismatch")
	errSparseAccessor     = errors.New("sparse accessors are not supported")
)

// gltfFile is a parsed document with every buffer resident in memory.
type gltfFile struct {
	doc     *gltfDocument
	baseDir string
}

// parseGLTF decodes either a .gltf JSON document or a GLB container, detected by the magic number.
// Relative buffer and image URIs resolve against baseDir.
func parseGLTF(data []byte, baseDir string) (*gltfFile, error) {
	f := &gltfFile{baseDir: baseDir}

	var jsonData, bin []byte
	if len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic {
		var err error
		jsonData, bin, err = splitGLB(data)
		if err != nil {
			return nil, err
		}
	} else {
		jsonData = data
	}

	var doc gltfDocument
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse glTF JSON: %w", err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return nil, errInvalidGLTFVersion
	}
	f.doc = &doc

	if err := f.loadBuffers(bin); err != nil {
		return nil, fmt.Errorf("failed to load buffers: %w", err)
	}
	return f, nil
}

// parseGLTFFile reads and parses a file from disk.
func parseGLTFFile(path string) (*gltfFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return parseGLTF(data, filepath.Dir(path))
}

// splitGLB returns the JSON and BIN chunks of a GLB container.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
func splitGLB(data []byte) ([]byte, []byte, error) {
	if len(data) < 12 {
		return nil, nil, errors.New("GLB file too small")
	}
	r := bytes.NewReader(data)

	var header gltfGLBHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, nil, fmt.Errorf("failed to read GLB header: %w", err)
	}
	if header.Magic != gltfGLBMagic {
		return nil, nil, errInvalidGLBMagic
	}
	if header.Version != gltfGLBVersion {
		return nil, nil, errInvalidGLBVersion
	}

	var jsonData, bin []byte
	for {
		var chunk gltfGLBChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("failed to read chunk header: %w", err)
		}
		body := make([]byte, chunk.ChunkLength)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, nil, fmt.Errorf("failed to read chunk data: %w", err)
		}
		switch chunk.ChunkType {
		case gltfGLBChunkJSON:
			jsonData = body
		case gltfGLBChunkBIN:
			bin = body
		}
	}
	if jsonData == nil {
		return nil, nil, errMissingJSONChunk
	}
	return jsonData, bin, nil
}

func (f *gltfFile) loadBuffers(bin []byte) error {
	for i := range f.doc.Buffers {
		buf := &f.doc.Buffers[i]
		switch {
		case buf.URI == "" && i == 0 && bin != nil:
			buf.Data = bin
		case buf.URI == "":
			return fmt.Errorf("buffer %d has no URI and no GLB binary chunk", i)
		default:
			data, err := f.readURI(buf.URI)
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.Data = data
		}
		if len(buf.Data) < buf.ByteLength {
			return fmt.Errorf("buffer %d: %w", i, errBufferSizeMismatch)
		}
	}
	return nil
}

// readURI loads a data: URI or a file relative to the document.
func (f *gltfFile) readURI(uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "data:") {
		comma := strings.Index(uri, ",")
		if comma < 0 {
			return nil, errInvalidBufferURI
		}
		if !strings.Contains(uri[5:comma], "base64") {
			return nil, fmt.Errorf("unsupported data URI encoding: %s", uri[5:comma])
		}
		data, err := base64.StdEncoding.DecodeString(uri[comma+1:])
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(filepath.Join(f.baseDir, uri))
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", uri, err)
	}
	return data, nil
}

// bufferView returns the raw bytes of a buffer view.
func (f *gltfFile) bufferView(index int) ([]byte, error) {
	if index < 0 || index >= len(f.doc.BufferViews) {
		return nil, fmt.Errorf("bufferView index %d out of range", index)
	}
	bv := &f.doc.BufferViews[index]
	if bv.Buffer < 0 || bv.Buffer >= len(f.doc.Buffers) {
		return nil, fmt.Errorf("buffer index %d out of range", bv.Buffer)
	}
	data := f.doc.Buffers[bv.Buffer].Data
	end := bv.ByteOffset + bv.ByteLength
	if end > len(data) {
		return nil, fmt.Errorf("bufferView %d: %w", index, errBufferSizeMismatch)
	}
	return data[bv.ByteOffset:end], nil
}

// accessorBytes returns the accessor's elements tightly packed, de-interleaving strided views.
func (f *gltfFile) accessorBytes(index int) ([]byte, *gltfAccessor, error) {
	if index < 0 || index >= len(f.doc.Accessors) {
		return nil, nil, fmt.Errorf("accessor index %d out of range", index)
	}
	acc := &f.doc.Accessors[index]
	if acc.Sparse != nil {
		return nil, nil, errSparseAccessor
	}
	if acc.BufferView == nil {
		return nil, nil, fmt.Errorf("accessor %d has no bufferView", index)
	}
	bv := &f.doc.BufferViews[*acc.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(f.doc.Buffers) {
		return nil, nil, fmt.Errorf("buffer index %d out of range", bv.Buffer)
	}
	src := f.doc.Buffers[bv.Buffer].Data

	elem := componentSize(acc.ComponentType) * componentCount(acc.Type)
	if elem == 0 {
		return nil, nil, fmt.Errorf("accessor %d: unsupported layout %s/%d", index, acc.Type, acc.ComponentType)
	}
	stride := elem
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}

	base := bv.ByteOffset + acc.ByteOffset
	out := make([]byte, acc.Count*elem)
	for i := 0; i < acc.Count; i++ {
		from := base + i*stride
		if from+elem > len(src) {
			return nil, nil, fmt.Errorf("accessor %d: %w", index, errBufferSizeMismatch)
		}
		copy(out[i*elem:(i+1)*elem], src[from:from+elem])
	}
	return out, acc, nil
}

// readFloats reads a FLOAT accessor of the given type into fixed-size elements.
func readFloats[T float32 | [2]float32 | [3]float32 | [4]float32 | [16]float32](f *gltfFile, index int, accType string) ([]T, error) {
	data, acc, err := f.accessorBytes(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != accType || acc.ComponentType != gltfComponentTypeFloat {
		return nil, fmt.Errorf("accessor %d is %s/%d, want %s FLOAT", index, acc.Type, acc.ComponentType, accType)
	}
	out := make([]T, acc.Count)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("accessor %d: %w", index, err)
	}
	return out, nil
}

// readUints reads integer components of any unsigned width, widening to uint32.
func readUints(f *gltfFile, index int, accType string) ([]uint32, error) {
	data, acc, err := f.accessorBytes(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != accType {
		return nil, fmt.Errorf("accessor %d is %s, want %s", index, acc.Type, accType)
	}
	n := acc.Count * componentCount(acc.Type)
	out := make([]uint32, n)
	switch acc.ComponentType {
	case gltfComponentTypeUnsignedByte:
		for i := range out {
			out[i] = uint32(data[i])
		}
	case gltfComponentTypeUnsignedShort:
		for i := range out {
			out[i] = uint32(binary.LittleEndian.Uint16(data[i*2:]))
		}
	case gltfComponentTypeUnsignedInt:
		for i := range out {
			out[i] = binary.LittleEndian.Uint32(data[i*4:])
		}
	default:
		return nil, fmt.Errorf("accessor %d: unsupported integer component type %d", index, acc.ComponentType)
	}
	return out, nil
}

// readWeights reads VEC4 weights stored as floats or normalized unsigned integers.
func readWeights(f *gltfFile, index int) ([][4]float32, error) {
	acc := &f.doc.Accessors[index]
	if acc.ComponentType == gltfComponentTypeFloat {
		return readFloats[[4]float32](f, index, gltfAccessorTypeVec4)
	}
	raw, err := readUints(f, index, gltfAccessorTypeVec4)
	if err != nil {
		return nil, err
	}
	scale := float32(255)
	if acc.ComponentType == gltfComponentTypeUnsignedShort {
		scale = 65535
	}
	out := make([][4]float32, acc.Count)
	for i := range out {
		for k := 0; k < 4; k++ {
			out[i][k] = float32(raw[i*4+k]) / scale
		}
	}
	return out, nil
}

func componentSize(componentType int) int {
	switch componentType {
	case gltfComponentTypeByte, gltfComponentTypeUnsignedByte:
		return 1
	case gltfComponentTypeShort, gltfComponentTypeUnsignedShort:
		return 2
	case gltfComponentTypeUnsignedInt, gltfComponentTypeFloat:
		return 4
	default:
		return 0
	}
}

func componentCount(accessorType string) int {
	switch accessorType {
	case gltfAccessorTypeScalar:
		return 1
	case gltfAccessorTypeVec2:
		return 2
	case gltfAccessorTypeVec3:
		return 3
	case gltfAccessorTypeVec4:
		return 4
	case gltfAccessorTypeMat4:
		return 16
	default:
		return 0
	}
}
