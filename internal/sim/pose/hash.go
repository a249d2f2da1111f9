package pose

// Phase01 maps a body name to a stable phase in [0,1). FNV-1a over the
// UTF-8 bytes (offset 2166136261, prime 16777619, mod 2^32), reduced mod
// 360 before scaling so phases spread over whole degrees. Fallback
// orientations derived from it survive restarts without persisted state.
func Phase01(name string) float64 {
	h := uint32(2166136261)
	for i := 0; i < len(name); i++ {
		h ^= uint32(name[i])
		h *= 16777619
	}
	return float64(h%360) / 360
}
