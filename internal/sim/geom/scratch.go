package geom

// Scratch is a small arena of per-tick working vectors. Pilots receive one
// from the scene and reuse its slots instead of allocating inside the frame
// loop. Slots hold no state across ticks.
type Scratch struct {
	A, B, C, D Vec3
}

// Reset zeroes every slot.
func (s *Scratch) Reset() {
	s.A, s.B, s.C, s.D = Vec3{}, Vec3{}, Vec3{}, Vec3{}
}
