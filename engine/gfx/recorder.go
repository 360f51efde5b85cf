package gfx

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-snowfall/common"
)

// CommandKind identifies a recorded device command.
type CommandKind int

const (
	CmdBeginFrame CommandKind = iota
	CmdBeginPass
	CmdDraw
	CmdEndPass
	CmdEndFrame
)

// Command is one recorded frame command.
type Command struct {
	Kind        CommandKind
	Pass        PassDesc
	Draw        DrawCall
	ProgramName string
}

// Recorder is a Device that allocates handles and records frame commands without touching a GPU.
// It backs headless runs and lets tests assert pass order and draw contents.
type Recorder struct {
	width, height int
	programs      []ProgramDesc
	meshes        []int
	textures      []common.ImageData
	targets       []TargetDesc
	targetColor   map[Target]Texture
	targetDepth   map[Target]Texture
	inFrame       bool
	inPass        bool
	frames        int
	commands      []Command
	released      bool
	freed         []Texture
}

var _ Device = &Recorder{}

// NewRecorder creates a recording device with the given surface size.
//
// Parameters:
//   - width: surface width in pixels
//   - height: surface height in pixels
//
// Returns:
//   - *Recorder: the recording device
func NewRecorder(width, height int) *Recorder {
	return &Recorder{
		width:       width,
		height:      height,
		targetColor: make(map[Target]Texture),
		targetDepth: make(map[Target]Texture),
	}
}

func (r *Recorder) CreateMesh(label string, layout VertexLayout, vertices []byte, indices []uint32) (Mesh, error) {
	if len(vertices)%layout.Stride() != 0 {
		return 0, fmt.Errorf("mesh %q: vertex data is not a multiple of the layout stride", label)
	}
	r.meshes = append(r.meshes, len(indices))
	return Mesh(len(r.meshes)), nil
}

func (r *Recorder) UpdateMesh(m Mesh, vertices []byte, indices []uint32) error {
	if m == 0 || int(m) > len(r.meshes) {
		return ErrUnknownHandle
	}
	r.meshes[m-1] = len(indices)
	return nil
}

func (r *Recorder) CreateTexture(label string, img common.ImageData) (Texture, error) {
	if img.Width <= 0 || img.Height <= 0 || len(img.Pixels) < img.Width*img.Height*4 {
		return 0, fmt.Errorf("texture %q: invalid image %dx%d", label, img.Width, img.Height)
	}
	r.textures = append(r.textures, img)
	return Texture(len(r.textures)), nil
}

func (r *Recorder) ReleaseTexture(t Texture) {
	if t == 0 || int(t) > len(r.textures) {
		return
	}
	r.freed = append(r.freed, t)
}

func (r *Recorder) CreateProgram(desc ProgramDesc) (Program, error) {
	if desc.Source == "" {
		return 0, fmt.Errorf("program %q: empty shader source", desc.Name)
	}
	r.programs = append(r.programs, desc)
	return Program(len(r.programs)), nil
}

func (r *Recorder) CreateTarget(desc TargetDesc) (Target, error) {
	r.targets = append(r.targets, desc)
	t := Target(len(r.targets))
	if desc.Color {
		r.textures = append(r.textures, common.ImageData{})
		r.targetColor[t] = Texture(len(r.textures))
	}
	if desc.Depth {
		r.textures = append(r.textures, common.ImageData{})
		r.targetDepth[t] = Texture(len(r.textures))
	}
	return t, nil
}

func (r *Recorder) TargetColor(t Target) Texture {
	return r.targetColor[t]
}

func (r *Recorder) TargetDepth(t Target) Texture {
	return r.targetDepth[t]
}

func (r *Recorder) Resize(width, height int) {
	r.width, r.height = width, height
}

func (r *Recorder) Size() (int, int) {
	return r.width, r.height
}

func (r *Recorder) BeginFrame() error {
	if r.inFrame {
		return fmt.Errorf("gfx: previous frame not ended")
	}
	r.inFrame = true
	r.commands = r.commands[:0]
	r.commands = append(r.commands, Command{Kind: CmdBeginFrame})
	return nil
}

func (r *Recorder) BeginPass(desc PassDesc) error {
	if !r.inFrame {
		return ErrNoFrame
	}
	if r.inPass {
		return fmt.Errorf("gfx: pass %q opened inside another pass", desc.Label)
	}
	r.inPass = true
	r.commands = append(r.commands, Command{Kind: CmdBeginPass, Pass: desc})
	return nil
}

func (r *Recorder) Draw(call DrawCall) {
	if !r.inPass || call.Program == 0 || int(call.Program) > len(r.programs) {
		return
	}
	call.Uniforms = append([]byte(nil), call.Uniforms...)
	call.Textures = append([]Texture(nil), call.Textures...)
	call.Instances = append(call.Instances[:0:0], call.Instances...)
	r.commands = append(r.commands, Command{
		Kind:        CmdDraw,
		Draw:        call,
		ProgramName: r.programs[call.Program-1].Name,
	})
}

func (r *Recorder) EndPass() {
	if !r.inPass {
		return
	}
	r.inPass = false
	r.commands = append(r.commands, Command{Kind: CmdEndPass})
}

func (r *Recorder) EndFrame() {
	if !r.inFrame {
		return
	}
	r.inFrame = false
	r.frames++
	r.commands = append(r.commands, Command{Kind: CmdEndFrame})
}

func (r *Recorder) Release() {
	r.released = true
}

// Commands returns the commands recorded for the most recent frame.
func (r *Recorder) Commands() []Command {
	return r.commands
}

// Frames returns how many frames were completed.
func (r *Recorder) Frames() int {
	return r.frames
}

// Released reports whether Release was called.
func (r *Recorder) Released() bool {
	return r.released
}

// ReleasedTextures returns the textures passed to ReleaseTexture, in call order.
func (r *Recorder) ReleasedTextures() []Texture {
	return r.freed
}

// PassLabels returns the labels of the passes of the most recent frame, in order.
func (r *Recorder) PassLabels() []string {
	var out []string
	for _, c := range r.commands {
		if c.Kind == CmdBeginPass {
			out = append(out, c.Pass.Label)
		}
	}
	return out
}

// Pass returns the descriptor of the first pass with the given label.
func (r *Recorder) Pass(label string) (PassDesc, bool) {
	for _, c := range r.commands {
		if c.Kind == CmdBeginPass && c.Pass.Label == label {
			return c.Pass, true
		}
	}
	return PassDesc{}, false
}

// DrawsIn returns the draws recorded inside the first pass with the given label.
func (r *Recorder) DrawsIn(label string) []Command {
	var out []Command
	inside := false
	for _, c := range r.commands {
		switch c.Kind {
		case CmdBeginPass:
			inside = c.Pass.Label == label
		case CmdEndPass:
			if inside {
				return out
			}
		case CmdDraw:
			if inside {
				out = append(out, c)
			}
		}
	}
	return out
}

// ProgramDesc returns the descriptor a program was created with.
func (r *Recorder) ProgramDesc(p Program) (ProgramDesc, bool) {
	if p == 0 || int(p) > len(r.programs) {
		return ProgramDesc{}, false
	}
	return r.programs[p-1], true
}

// TargetDesc returns the descriptor a target was created with.
func (r *Recorder) TargetDesc(t Target) (TargetDesc, bool) {
	if t == 0 || int(t) > len(r.targets) {
		return TargetDesc{}, false
	}
	return r.targets[t-1], true
}
