package gfx

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

const (
	uniformArenaSize  = 4 << 20
	instanceArenaSize = 2 << 20
	uniformAlignment  = 256
	instanceStride    = 64
	maxTextureSlots   = 4
	depthFormat       = wgpu.TextureFormatDepth32Float
	offscreenFormat   = wgpu.TextureFormatRGBA8Unorm
)

type gpuMesh struct {
	layout     VertexLayout
	vertices   *wgpu.Buffer
	indices    *wgpu.Buffer
	vertexCap  uint64
	indexCap   uint64
	indexCount uint32
}

type gpuTexture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

type gpuProgram struct {
	desc          ProgramDesc
	pipeline      *wgpu.RenderPipeline
	textureLayout *wgpu.BindGroupLayout
	uniformGroup  *wgpu.BindGroup
	uniformSize   uint64
}

type gpuTarget struct {
	desc  TargetDesc
	color Texture
	depth Texture
}

type bindGroupKey struct {
	program  Program
	textures [maxTextureSlots]Texture
}

type wgpuDeviceImpl struct {
	mu     *sync.Mutex
	logger *zap.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	fallback      bool
	width, height int

	meshes   []*gpuMesh
	textures []*gpuTexture
	programs []*gpuProgram
	targets  []*gpuTarget

	linearClamp  *wgpu.Sampler
	linearRepeat *wgpu.Sampler
	nearest      *wgpu.Sampler
	comparison   *wgpu.Sampler

	uniformArena  *wgpu.Buffer
	uniformStage  []byte
	uniformCursor int

	instanceArena  *wgpu.Buffer
	instanceStage  []byte
	instanceCursor int

	groups map[bindGroupKey]*wgpu.BindGroup

	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ Device = &wgpuDeviceImpl{}

// DeviceOption configures the WebGPU device at creation.
type DeviceOption func(*wgpuDeviceImpl)

// WithVSync selects FIFO presentation when enabled, otherwise immediate presentation.
func WithVSync(enabled bool) DeviceOption {
	return func(d *wgpuDeviceImpl) {
		if enabled {
			d.presentMode = wgpu.PresentModeFifo
		} else {
			d.presentMode = wgpu.PresentModeImmediate
		}
	}
}

// WithFallbackAdapter forces the software fallback adapter.
func WithFallbackAdapter(force bool) DeviceOption {
	return func(d *wgpuDeviceImpl) {
		d.fallback = force
	}
}

// NewWGPUDevice creates the WebGPU device bound to a window surface and configures the surface.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor obtained from the window
//   - width: initial surface width in pixels
//   - height: initial surface height in pixels
//   - logger: the logger for device warnings
//   - options: optional device configuration
//
// Returns:
//   - Device: the created device
//   - error: an error if the adapter, device or frame arenas could not be created
func NewWGPUDevice(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, logger *zap.Logger, options ...DeviceOption) (Device, error) {
	runtime.LockOSThread()
	d := &wgpuDeviceImpl{
		mu:          &sync.Mutex{},
		logger:      logger,
		presentMode: wgpu.PresentModeFifo,
		groups:      make(map[bindGroupKey]*wgpu.BindGroup),
	}
	for _, opt := range options {
		opt(d)
	}

	d.instance = wgpu.CreateInstance(nil)
	d.surface = d.instance.CreateSurface(surfaceDescriptor)

	adapter, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: d.fallback,
		CompatibleSurface:    d.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	d.adapter = adapter

	limits := wgpu.DefaultLimits()
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	d.device = device
	d.queue = device.GetQueue()

	if err := d.createSamplers(); err != nil {
		return nil, err
	}
	if err := d.createArenas(); err != nil {
		return nil, err
	}

	d.configureSurface(width, height)
	return d, nil
}

func (d *wgpuDeviceImpl) createSamplers() error {
	var err error
	d.linearClamp, err = d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Linear Clamp Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return err
	}
	d.linearRepeat, err = d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Linear Repeat Sampler",
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return err
	}
	d.nearest, err = d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Nearest Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return err
	}
	d.comparison, err = d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Shadow Comparison Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		Compare:       wgpu.CompareFunctionLess,
		MaxAnisotropy: 1,
	})
	return err
}

func (d *wgpuDeviceImpl) createArenas() error {
	var err error
	d.uniformArena, err = d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Uniform Arena",
		Size:  uniformArenaSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("uniform arena: %w", err)
	}
	d.instanceArena, err = d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Instance Arena",
		Size:  instanceArenaSize,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("instance arena: %w", err)
	}
	d.uniformStage = make([]byte, uniformArenaSize)
	d.instanceStage = make([]byte, instanceArenaSize)
	return nil
}

func (d *wgpuDeviceImpl) configureSurface(width, height int) {
	width, height = max(width, 1), max(height, 1)
	capabilities := d.surface.GetCapabilities(d.adapter)
	d.surfaceFormat = capabilities.Formats[0]
	d.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      d.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: d.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	d.width, d.height = width, height
}

func (d *wgpuDeviceImpl) CreateMesh(label string, layout VertexLayout, vertices []byte, indices []uint32) (Mesh, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(vertices)%layout.Stride() != 0 {
		return 0, fmt.Errorf("mesh %q: vertex data is not a multiple of the layout stride", label)
	}
	m := &gpuMesh{layout: layout}
	if err := d.writeMesh(label, m, vertices, indices); err != nil {
		return 0, err
	}
	d.meshes = append(d.meshes, m)
	return Mesh(len(d.meshes)), nil
}

func (d *wgpuDeviceImpl) UpdateMesh(handle Mesh, vertices []byte, indices []uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if handle == 0 || int(handle) > len(d.meshes) {
		return ErrUnknownHandle
	}
	return d.writeMesh("mesh", d.meshes[handle-1], vertices, indices)
}

// writeMesh uploads data, replacing buffers that are too small.
func (d *wgpuDeviceImpl) writeMesh(label string, m *gpuMesh, vertices []byte, indices []uint32) error {
	indexData := common.SliceToBytes(indices)
	vsize := alignTo(uint64(max(len(vertices), 4)), 4)
	isize := alignTo(uint64(max(len(indexData), 4)), 4)

	if m.vertices == nil || m.vertexCap < vsize {
		if m.vertices != nil {
			m.vertices.Release()
		}
		buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: label + " Vertex Buffer",
			Size:  vsize,
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		m.vertices, m.vertexCap = buf, vsize
	}
	if m.indices == nil || m.indexCap < isize {
		if m.indices != nil {
			m.indices.Release()
		}
		buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: label + " Index Buffer",
			Size:  isize,
			Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		m.indices, m.indexCap = buf, isize
	}
	if len(vertices) > 0 {
		d.queue.WriteBuffer(m.vertices, 0, padTo4(vertices))
	}
	if len(indexData) > 0 {
		d.queue.WriteBuffer(m.indices, 0, indexData)
	}
	m.indexCount = uint32(len(indices))
	return nil
}

func (d *wgpuDeviceImpl) CreateTexture(label string, img common.ImageData) (Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if img.Width <= 0 || img.Height <= 0 || len(img.Pixels) < img.Width*img.Height*4 {
		return 0, fmt.Errorf("texture %q: invalid image %dx%d", label, img.Width, img.Height)
	}
	size := wgpu.Extent3D{
		Width:              uint32(img.Width),
		Height:             uint32(img.Height),
		DepthOrArrayLayers: 1,
	}
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return 0, err
	}
	d.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		img.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(img.Width * 4),
			RowsPerImage: uint32(img.Height),
		},
		&size,
	)
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return 0, err
	}
	d.textures = append(d.textures, &gpuTexture{texture: tex, view: view})
	return Texture(len(d.textures)), nil
}

func (d *wgpuDeviceImpl) ReleaseTexture(t Texture) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t == 0 || int(t) > len(d.textures) || d.textures[t-1] == nil {
		return
	}
	d.releaseTextureSlot(t)
	d.dropGroups()
}

func (d *wgpuDeviceImpl) releaseTextureSlot(t Texture) {
	slot := d.textures[t-1]
	if slot == nil {
		return
	}
	if slot.view != nil {
		slot.view.Release()
	}
	if slot.texture != nil {
		slot.texture.Release()
	}
	d.textures[t-1] = nil
}

func (d *wgpuDeviceImpl) CreateProgram(desc ProgramDesc) (Program, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if desc.Source == "" {
		return 0, fmt.Errorf("program %q: empty shader source", desc.Name)
	}
	if len(desc.Textures) > maxTextureSlots {
		return 0, fmt.Errorf("program %q: at most %d texture slots", desc.Name, maxTextureSlots)
	}
	module, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.Name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: desc.Source,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("program %q: %w", desc.Name, err)
	}

	prog := &gpuProgram{desc: desc, uniformSize: alignTo(uint64(max(desc.UniformSize, 16)), 16)}
	visibility := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment

	uniformLayout, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: desc.Name + " Uniform Layout",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: visibility,
			Buffer: wgpu.BufferBindingLayout{
				Type:             wgpu.BufferBindingTypeUniform,
				HasDynamicOffset: true,
				MinBindingSize:   prog.uniformSize,
			},
		}},
	})
	if err != nil {
		return 0, err
	}
	layouts := []*wgpu.BindGroupLayout{uniformLayout}

	if len(desc.Textures) > 0 {
		entries := make([]wgpu.BindGroupLayoutEntry, 0, len(desc.Textures)*2)
		for i, kind := range desc.Textures {
			tex := wgpu.BindGroupLayoutEntry{Binding: uint32(2 * i), Visibility: visibility}
			tex.Texture.ViewDimension = wgpu.TextureViewDimension2D
			smp := wgpu.BindGroupLayoutEntry{Binding: uint32(2*i + 1), Visibility: visibility}
			switch kind {
			case TextureDepth:
				tex.Texture.SampleType = wgpu.TextureSampleTypeDepth
				smp.Sampler.Type = wgpu.SamplerBindingTypeNonFiltering
			case TextureShadow:
				tex.Texture.SampleType = wgpu.TextureSampleTypeDepth
				smp.Sampler.Type = wgpu.SamplerBindingTypeComparison
			default:
				tex.Texture.SampleType = wgpu.TextureSampleTypeFloat
				smp.Sampler.Type = wgpu.SamplerBindingTypeFiltering
			}
			entries = append(entries, tex, smp)
		}
		prog.textureLayout, err = d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   desc.Name + " Texture Layout",
			Entries: entries,
		})
		if err != nil {
			return 0, err
		}
		layouts = append(layouts, prog.textureLayout)
	}

	pipelineLayout, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Name,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return 0, err
	}

	prog.uniformGroup, err = d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  desc.Name + " Uniform Group",
		Layout: uniformLayout,
		Entries: []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  d.uniformArena,
			Offset:  0,
			Size:    prog.uniformSize,
		}},
	})
	if err != nil {
		return 0, err
	}

	pipelineDesc := &wgpu.RenderPipelineDescriptor{
		Label:  desc.Name + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: common.Coalesce(desc.VertexEntry, "vs_main"),
			Buffers:    vertexBuffers(desc.Layout, desc.Instanced),
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  cullMode(desc.Cull),
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(max(desc.Samples, 1)),
			Mask:  0xFFFFFFFF,
		},
	}
	if desc.Format != FormatNone {
		format := offscreenFormat
		if desc.Format == FormatSurface {
			format = d.surfaceFormat
		}
		target := wgpu.ColorTargetState{Format: format, WriteMask: wgpu.ColorWriteMaskAll}
		target.Blend = blendState(desc.Blend)
		pipelineDesc.Fragment = &wgpu.FragmentState{
			Module:     module,
			EntryPoint: common.Coalesce(desc.FragmentEntry, "fs_main"),
			Targets:    []wgpu.ColorTargetState{target},
		}
	}
	if desc.HasDepth {
		compare := wgpu.CompareFunctionLess
		if !desc.DepthTest {
			compare = wgpu.CompareFunctionAlways
		}
		pipelineDesc.DepthStencil = &wgpu.DepthStencilState{
			Format:              depthFormat,
			DepthWriteEnabled:   desc.DepthWrite,
			DepthCompare:        compare,
			DepthBias:           desc.DepthBias,
			DepthBiasSlopeScale: desc.DepthBiasSlopeScale,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}

	prog.pipeline, err = d.device.CreateRenderPipeline(pipelineDesc)
	if err != nil {
		return 0, fmt.Errorf("program %q: %w", desc.Name, err)
	}
	d.programs = append(d.programs, prog)
	return Program(len(d.programs)), nil
}

func (d *wgpuDeviceImpl) CreateTarget(desc TargetDesc) (Target, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := &gpuTarget{desc: desc}
	d.targets = append(d.targets, t)
	if err := d.allocateTarget(t); err != nil {
		d.targets = d.targets[:len(d.targets)-1]
		return 0, err
	}
	return Target(len(d.targets)), nil
}

// allocateTarget creates or re-creates the attachments of t, reusing its texture handles.
func (d *wgpuDeviceImpl) allocateTarget(t *gpuTarget) error {
	w, h := t.desc.Width, t.desc.Height
	if w == 0 || h == 0 {
		w, h = d.width, d.height
	}
	samples := uint32(max(t.desc.Samples, 1))
	sampled := wgpu.TextureUsage(0)
	if samples == 1 {
		sampled = wgpu.TextureUsageTextureBinding
	}

	if t.desc.Color {
		slot, err := d.createAttachment(t.desc.Name+" Color", w, h, samples, offscreenFormat, wgpu.TextureUsageRenderAttachment|sampled)
		if err != nil {
			return err
		}
		t.color = d.storeAttachment(t.color, slot)
	}
	if t.desc.Depth {
		slot, err := d.createAttachment(t.desc.Name+" Depth", w, h, samples, depthFormat, wgpu.TextureUsageRenderAttachment|sampled)
		if err != nil {
			return err
		}
		t.depth = d.storeAttachment(t.depth, slot)
	}
	return nil
}

func (d *wgpuDeviceImpl) createAttachment(label string, w, h int, samples uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*gpuTexture, error) {
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(w),
			Height:             uint32(h),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("%s view: %w", label, err)
	}
	return &gpuTexture{texture: tex, view: view}, nil
}

func (d *wgpuDeviceImpl) storeAttachment(handle Texture, slot *gpuTexture) Texture {
	if handle != 0 {
		d.releaseTextureSlot(handle)
		d.textures[handle-1] = slot
		return handle
	}
	d.textures = append(d.textures, slot)
	return Texture(len(d.textures))
}

func (d *wgpuDeviceImpl) TargetColor(t Target) Texture {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t == 0 || int(t) > len(d.targets) || d.targets[t-1].desc.Samples > 1 {
		return 0
	}
	return d.targets[t-1].color
}

func (d *wgpuDeviceImpl) TargetDepth(t Target) Texture {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t == 0 || int(t) > len(d.targets) {
		return 0
	}
	return d.targets[t-1].depth
}

func (d *wgpuDeviceImpl) Resize(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}
	d.configureSurface(width, height)
	for _, t := range d.targets {
		if t.desc.Width != 0 && t.desc.Height != 0 {
			continue
		}
		if err := d.allocateTarget(t); err != nil {
			d.logger.Error("failed to resize render target", zap.String("target", t.desc.Name), zap.Error(err))
		}
	}
	d.dropGroups()
}

func (d *wgpuDeviceImpl) Size() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width, d.height
}

func (d *wgpuDeviceImpl) BeginFrame() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.frameSurface != nil {
		return errors.New("gfx: previous frame surface not yet presented")
	}
	surfaceTexture, err := d.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}
	d.frameEncoder = encoder
	d.frameSurface = surfaceTexture
	d.frameView = view
	d.uniformCursor = 0
	d.instanceCursor = 0
	return nil
}

func (d *wgpuDeviceImpl) BeginPass(desc PassDesc) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.frameEncoder == nil {
		return ErrNoFrame
	}
	if d.framePass != nil {
		return fmt.Errorf("gfx: pass %q opened inside another pass", desc.Label)
	}

	loadOp := wgpu.LoadOpClear
	if desc.LoadColor {
		loadOp = wgpu.LoadOpLoad
	}
	clear := wgpu.Color{
		R: float64(desc.ClearColor[0]),
		G: float64(desc.ClearColor[1]),
		B: float64(desc.ClearColor[2]),
		A: float64(desc.ClearColor[3]),
	}
	passDesc := &wgpu.RenderPassDescriptor{Label: desc.Label}

	if desc.Target == Screen {
		passDesc.ColorAttachments = []wgpu.RenderPassColorAttachment{{
			View:       d.frameView,
			LoadOp:     loadOp,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: clear,
		}}
	} else {
		if int(desc.Target) > len(d.targets) {
			return ErrUnknownHandle
		}
		t := d.targets[desc.Target-1]
		if t.color != 0 {
			attachment := wgpu.RenderPassColorAttachment{
				View:       d.textures[t.color-1].view,
				LoadOp:     loadOp,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: clear,
			}
			if desc.ResolveTo != 0 && int(desc.ResolveTo) <= len(d.targets) {
				resolve := d.targets[desc.ResolveTo-1]
				attachment.ResolveTarget = d.textures[resolve.color-1].view
				attachment.StoreOp = wgpu.StoreOpDiscard
			}
			passDesc.ColorAttachments = []wgpu.RenderPassColorAttachment{attachment}
		}
		if t.depth != 0 {
			passDesc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
				View:            d.textures[t.depth-1].view,
				DepthLoadOp:     wgpu.LoadOpClear,
				DepthStoreOp:    wgpu.StoreOpStore,
				DepthClearValue: 1.0,
			}
		}
	}
	d.framePass = d.frameEncoder.BeginRenderPass(passDesc)
	return nil
}

func (d *wgpuDeviceImpl) Draw(call DrawCall) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.framePass == nil {
		return
	}
	if call.Program == 0 || int(call.Program) > len(d.programs) || call.Mesh == 0 || int(call.Mesh) > len(d.meshes) {
		return
	}
	prog := d.programs[call.Program-1]
	mesh := d.meshes[call.Mesh-1]
	if mesh.indexCount == 0 {
		return
	}

	offset := d.uniformCursor
	if offset+int(prog.uniformSize) > len(d.uniformStage) {
		d.logger.Warn("uniform arena exhausted, draw skipped", zap.String("program", prog.desc.Name))
		return
	}
	copy(d.uniformStage[offset:offset+int(prog.uniformSize)], call.Uniforms)
	d.uniformCursor = int(alignTo(uint64(offset)+prog.uniformSize, uniformAlignment))

	instances := uint32(max(call.InstanceCount, 1))
	var instanceOffset, instanceBytes int
	if prog.desc.Instanced {
		if len(call.Instances) == 0 {
			return
		}
		data := common.SliceToBytes(call.Instances)
		if d.instanceCursor+len(data) > len(d.instanceStage) {
			d.logger.Warn("instance arena exhausted, draw skipped", zap.String("program", prog.desc.Name))
			return
		}
		instanceOffset = d.instanceCursor
		instanceBytes = len(data)
		copy(d.instanceStage[instanceOffset:], data)
		d.instanceCursor += instanceBytes
		instances = uint32(len(call.Instances))
	}

	var textureGroup *wgpu.BindGroup
	if prog.textureLayout != nil {
		group, err := d.textureGroup(call.Program, prog, call.Textures)
		if err != nil {
			d.logger.Warn("texture bind group unavailable, draw skipped", zap.String("program", prog.desc.Name), zap.Error(err))
			return
		}
		textureGroup = group
	}

	d.framePass.SetPipeline(prog.pipeline)
	d.framePass.SetBindGroup(0, prog.uniformGroup, []uint32{uint32(offset)})
	if textureGroup != nil {
		d.framePass.SetBindGroup(1, textureGroup, nil)
	}
	d.framePass.SetVertexBuffer(0, mesh.vertices, 0, wgpu.WholeSize)
	if prog.desc.Instanced {
		d.framePass.SetVertexBuffer(1, d.instanceArena, uint64(instanceOffset), uint64(instanceBytes))
	}
	d.framePass.SetIndexBuffer(mesh.indices, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	d.framePass.DrawIndexed(mesh.indexCount, instances, 0, 0, 0)
}

// textureGroup returns the cached bind group for a program and texture set.
func (d *wgpuDeviceImpl) textureGroup(handle Program, prog *gpuProgram, textures []Texture) (*wgpu.BindGroup, error) {
	key := bindGroupKey{program: handle}
	copy(key.textures[:], textures)
	if g, ok := d.groups[key]; ok {
		return g, nil
	}

	entries := make([]wgpu.BindGroupEntry, 0, len(prog.desc.Textures)*2)
	for i, kind := range prog.desc.Textures {
		t := key.textures[i]
		if t == 0 || int(t) > len(d.textures) || d.textures[t-1] == nil {
			return nil, fmt.Errorf("slot %d: %w", i, ErrUnknownHandle)
		}
		sampler := d.linearClamp
		switch kind {
		case TextureRepeat:
			sampler = d.linearRepeat
		case TextureDepth:
			sampler = d.nearest
		case TextureShadow:
			sampler = d.comparison
		}
		entries = append(entries,
			wgpu.BindGroupEntry{Binding: uint32(2 * i), TextureView: d.textures[t-1].view},
			wgpu.BindGroupEntry{Binding: uint32(2*i + 1), Sampler: sampler},
		)
	}
	group, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   prog.desc.Name + " Texture Group",
		Layout:  prog.textureLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	d.groups[key] = group
	return group, nil
}

func (d *wgpuDeviceImpl) dropGroups() {
	for k, g := range d.groups {
		g.Release()
		delete(d.groups, k)
	}
}

func (d *wgpuDeviceImpl) EndPass() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.framePass == nil {
		return
	}
	d.framePass.End()
	d.framePass.Release()
	d.framePass = nil
}

func (d *wgpuDeviceImpl) EndFrame() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.frameEncoder == nil {
		return
	}
	if d.framePass != nil {
		d.framePass.End()
		d.framePass.Release()
		d.framePass = nil
	}

	if d.uniformCursor > 0 {
		d.queue.WriteBuffer(d.uniformArena, 0, d.uniformStage[:d.uniformCursor])
	}
	if d.instanceCursor > 0 {
		d.queue.WriteBuffer(d.instanceArena, 0, d.instanceStage[:d.instanceCursor])
	}

	commandBuffer, err := d.frameEncoder.Finish(nil)
	if err == nil {
		d.queue.Submit(commandBuffer)
		commandBuffer.Release()
		d.surface.Present()
	} else {
		d.logger.Error("failed to finish frame", zap.Error(err))
	}

	d.frameEncoder.Release()
	d.frameEncoder = nil
	d.frameView.Release()
	d.frameView = nil
	d.frameSurface.Release()
	d.frameSurface = nil
}

func (d *wgpuDeviceImpl) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dropGroups()
	for i := len(d.programs) - 1; i >= 0; i-- {
		p := d.programs[i]
		p.uniformGroup.Release()
		p.pipeline.Release()
	}
	for i := len(d.textures); i > 0; i-- {
		d.releaseTextureSlot(Texture(i))
	}
	for i := len(d.meshes) - 1; i >= 0; i-- {
		d.meshes[i].vertices.Release()
		d.meshes[i].indices.Release()
	}
	d.programs, d.meshes, d.targets = nil, nil, nil
	d.instanceArena.Release()
	d.uniformArena.Release()
	d.comparison.Release()
	d.nearest.Release()
	d.linearRepeat.Release()
	d.linearClamp.Release()
	d.queue.Release()
	d.device.Release()
	d.surface.Release()
	d.adapter.Release()
	d.instance.Release()
}

func vertexBuffers(layout VertexLayout, instanced bool) []wgpu.VertexBufferLayout {
	var attrs []wgpu.VertexAttribute
	switch layout {
	case LayoutScreen:
		attrs = []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
		}
	default:
		attrs = []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		}
		if layout == LayoutSkinned {
			attrs = append(attrs,
				wgpu.VertexAttribute{Format: wgpu.VertexFormatUint32x4, Offset: 32, ShaderLocation: 3},
				wgpu.VertexAttribute{Format: wgpu.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 4},
			)
		}
	}
	out := []wgpu.VertexBufferLayout{{
		ArrayStride: uint64(layout.Stride()),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}}
	if instanced {
		out = append(out, wgpu.VertexBufferLayout{
			ArrayStride: instanceStride,
			StepMode:    wgpu.VertexStepModeInstance,
			Attributes: []wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 5},
				{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 6},
				{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 7},
				{Format: wgpu.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 8},
			},
		})
	}
	return out
}

func cullMode(c CullMode) wgpu.CullMode {
	switch c {
	case CullBack:
		return wgpu.CullModeBack
	case CullFront:
		return wgpu.CullModeFront
	default:
		return wgpu.CullModeNone
	}
}

func blendState(b BlendMode) *wgpu.BlendState {
	switch b {
	case BlendAlpha:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	case BlendAdditive:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOne,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOne,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	default:
		return nil
	}
}

func alignTo(n, a uint64) uint64 {
	return (n + a - 1) / a * a
}

// padTo4 pads data to a 4-byte multiple as WriteBuffer requires.
func padTo4(data []byte) []byte {
	if len(data)%4 == 0 {
		return data
	}
	out := make([]byte, alignTo(uint64(len(data)), 4))
	copy(out, data)
	return out
}
