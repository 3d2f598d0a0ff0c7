package audio

import "errors"

var (
	// ErrDecode wraps every failure to acquire a sample buffer from a file
	ErrDecode = errors.New("decode failure")

	// ErrEncode wraps every failure to write a processed buffer
	ErrEncode = errors.New("encode failure")

	// ErrUnsupportedFormat is returned for containers or codecs without a decoder
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrUnsupportedSampleWidth is returned for fixed-point widths other than 1-4 bytes
	ErrUnsupportedSampleWidth = errors.New("unsupported sample width")
)
