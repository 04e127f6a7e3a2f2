package dana

import "github.com/sarchlab/xfiles/accel"

// fracBits is the number of fractional bits of the learning rate and the
// weight decay registers.
const fracBits = 16

// forward evaluates one fully connected layer. Weight (i, j) is taken from
// the configuration modulo its length, so any non-empty configuration can
// serve any input width. Arithmetic wraps.
func forward(weights []int32, in []accel.Element, numOut int) []accel.Element {
	out := make([]accel.Element, numOut)
	nIn := len(in)

	for i := range out {
		var acc int32
		for j, x := range in {
			acc += weights[(i*nIn+j)%len(weights)] * int32(x)
		}

		out[i] = accel.Element(acc)
	}

	return out
}

// learn applies one delta-rule step to the weights in place.
func learn(
	weights []int32,
	in, out, expected []accel.Element,
	learningRate, lambda uint32,
) {
	nIn := len(in)
	lr := int64(learningRate)
	decay := int64(lambda)

	for i := range out {
		if i >= len(expected) {
			break
		}

		delta := int64(expected[i]) - int64(out[i])

		for j, x := range in {
			k := (i*nIn + j) % len(weights)
			w := int64(weights[k])
			w += (lr * delta * int64(x)) >> fracBits
			w -= (decay * w) >> fracBits
			weights[k] = int32(w)
		}
	}
}
