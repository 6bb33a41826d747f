package fdn

import "math"

const speedOfSound = 343.0

// DelayLengths derives N mutually-coprime integer-sample delay lengths from
// a primary dimension vector (spec §4.6). numChannels must be a multiple of
// len(dimensions); each dimension contributes numChannels/len(dimensions)
// channels, each randomised by up to ±10% of the dimension mean before
// conversion to samples. Adjusted afterward to be mutually coprime.
func DelayLengths(dimensions []float64, numChannels int, fs float64, jitter func(i int) float64) []int {
	if len(dimensions) == 0 || numChannels%len(dimensions) != 0 {
		return nil
	}
	perDim := numChannels / len(dimensions)
	mean := meanOf(dimensions)

	t := make([]float64, numChannels)
	k := 0
	for j := 0; j < len(dimensions); j++ {
		for i := 0; i < perDim; i++ {
			t[k] = dimensions[j] + jitter(k)*mean
			k++
		}
	}

	lengths := make([]int, numChannels)
	minSamples := 1
	for i, d := range t {
		seconds := math.Max(d/speedOfSound, float64(minSamples)/fs)
		lengths[i] = int(math.Round(seconds * fs))
	}
	if !mutuallyPrime(lengths) {
		makeMutuallyPrime(lengths)
	}
	return lengths
}

func meanOf(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func gcd(a, b int) int {
	a, b = abs(a), abs(b)
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func mutuallyPrime(n []int) bool {
	for i := range n {
		for j := i + 1; j < len(n); j++ {
			if gcd(n[i], n[j]) != 1 {
				return false
			}
		}
	}
	return true
}

func entryMutuallyPrime(n []int, idx int) bool {
	for i := range n {
		if i == idx {
			continue
		}
		if gcd(n[i], n[idx]) != 1 {
			return false
		}
	}
	return true
}

// makeMutuallyPrime nudges each entry by up to ±10% (one sample at a time,
// preferring the smallest adjustment) until the whole set is pairwise
// coprime (spec §4.6 "made mutually coprime by ±10% adjustment").
func makeMutuallyPrime(n []int) {
	for i := range n {
		limit := int(math.Round(0.1 * float64(n[i])))
		original := n[i]
		found := false
		for adj := 0; adj <= limit && !found; adj++ {
			for _, sign := range [2]int{-1, 1} {
				n[i] = original + sign*adj
				if entryMutuallyPrime(n, i) {
					found = true
					break
				}
			}
		}
		if !found {
			n[i] = original
		}
	}
}
