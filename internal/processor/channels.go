package processor

// deinterleave splits an interleaved buffer into one slice per channel.
// Sample i lands in channel i%channels, so a trailing partial frame is kept.
func deinterleave(samples []float64, channels int) [][]float64 {
	out := make([][]float64, channels)
	for c := range out {
		n := len(samples) / channels
		if c < len(samples)%channels {
			n++
		}
		out[c] = make([]float64, 0, n)
	}
	for i, v := range samples {
		out[i%channels] = append(out[i%channels], v)
	}
	return out
}

// interleave is the inverse of deinterleave for a buffer of n samples
func interleave(chans [][]float64, n int) []float64 {
	channels := len(chans)
	out := make([]float64, n)
	for c, ch := range chans {
		for j, v := range ch {
			out[j*channels+c] = v
		}
	}
	return out
}

// eachChannel runs fn over every channel when the run is multi-channel and in
// PerChannel mode, otherwise over the whole buffer. fn must preserve length.
func eachChannel(mode ChannelMode, channels int, samples []float64, fn func([]float64) ([]float64, error)) ([]float64, error) {
	if mode != PerChannel || channels <= 1 {
		return fn(samples)
	}

	chans := deinterleave(samples, channels)
	for c, ch := range chans {
		out, err := fn(ch)
		if err != nil {
			return nil, err
		}
		chans[c] = out
	}
	return interleave(chans, len(samples)), nil
}
