package valueobject

// MaxUint32 represents the maximum value of a uint32.
const MaxUint32 = ^uint32(0)

// ClampToUint32 safely converts an int to uint32 by clamping
// negative values to 0 and values larger than MaxUint32 to MaxUint32.
func ClampToUint32(i int) uint32 {
	if i <= 0 {
		return 0
	}
	if i > int(MaxUint32) {
		return MaxUint32
	}
	return uint32(i)
}
