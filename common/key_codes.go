package common

// Key is a virtual key code. Values match GLFW key codes, which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
type Key uint32

const (
	KeyW     Key = 87 // W key (ASCII)
	KeyA     Key = 65 // A key (ASCII)
	KeyS     Key = 83 // S key (ASCII)
	KeyD     Key = 68 // D key (ASCII)
	KeyQ     Key = 81 // Q key (ASCII)
	KeyE     Key = 69 // E key (ASCII)
	KeyF     Key = 70 // F key (ASCII)
	KeyP     Key = 80 // P key (ASCII)
	KeySpace Key = 32 // Spacebar (ASCII)
)

// Non-printable keys (GLFW)
const (
	KeyEsc          Key = 256
	KeyEnter        Key = 257
	KeyBackspace    Key = 259
	KeyRight        Key = 262
	KeyLeft         Key = 263
	KeyDown         Key = 264
	KeyUp           Key = 265
	KeyKeypadEnter  Key = 335
	KeyLeftShift    Key = 340
	KeyLeftControl  Key = 341
	KeyRightShift   Key = 344
	KeyRightControl Key = 345
)
