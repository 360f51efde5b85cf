package camera

import (
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// PoseRecord is one camera snapshot written by the god-mode dump key.
type PoseRecord struct {
	Time     time.Time
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Yaw      float32
	Pitch    float32
}

// String formats the record as a single line.
func (p PoseRecord) String() string {
	return fmt.Sprintf("%s position=(%.3f, %.3f, %.3f) target=(%.3f, %.3f, %.3f) yaw=%.2f pitch=%.2f",
		p.Time.Format(time.RFC3339),
		p.Position[0], p.Position[1], p.Position[2],
		p.Target[0], p.Target[1], p.Target[2],
		p.Yaw, p.Pitch,
	)
}

// AppendPose appends a pose line to the file at path, creating it when missing.
//
// Parameters:
//   - path: the dump file
//   - rec: the pose to write
//
// Returns:
//   - error: an error if the file cannot be opened or written
func AppendPose(path string, rec PoseRecord) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open pose file: %w", err)
	}
	if _, err := fmt.Fprintln(f, rec.String()); err != nil {
		f.Close()
		return fmt.Errorf("write pose: %w", err)
	}
	return f.Close()
}
