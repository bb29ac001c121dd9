package math

// Number is a constraint covering the numeric types the helpers and
// validators operate on.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Ordered additionally admits strings, for ordering helpers.
type Ordered interface {
	Number | ~string
}

// Min returns the smallest of the provided values.
func Min[T Ordered](first T, rest ...T) T {
	min := first
	for _, v := range rest {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the largest of the provided values.
func Max[T Ordered](first T, rest ...T) T {
	max := first
	for _, v := range rest {
		if v > max {
			max = v
		}
	}
	return max
}

// Clamp limits value to the inclusive range [lower, upper].
func Clamp[T Number](value, lower, upper T) T {
	if value < lower {
		return lower
	}
	if value > upper {
		return upper
	}
	return value
}
