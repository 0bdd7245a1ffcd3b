// ABOUTME: Conversion between raw PCM bytes and integer samples
// ABOUTME: Handles 8/16/24/32-bit depths, both byte orders and signedness
package pcm

import "encoding/binary"

// BytesToInts decodes raw PCM bytes into one int per sample, honoring the
// format's bit depth, byte order, and signedness. Unsigned samples are
// re-centered around zero. Trailing bytes short of a full sample are
// dropped.
func BytesToInts(data []byte, f Format) []int {
	bytesPerSample := f.BitDepth / 8
	n := len(data) / bytesPerSample
	samples := make([]int, n)

	for i := 0; i < n; i++ {
		b := data[i*bytesPerSample:]
		switch f.BitDepth {
		case 8:
			if f.Signed {
				samples[i] = int(int8(b[0]))
			} else {
				samples[i] = int(b[0]) - 128
			}
		case 16:
			var u uint16
			if f.BigEndian {
				u = binary.BigEndian.Uint16(b)
			} else {
				u = binary.LittleEndian.Uint16(b)
			}
			if f.Signed {
				samples[i] = int(int16(u))
			} else {
				samples[i] = int(u) - 32768
			}
		case 24:
			var u uint32
			if f.BigEndian {
				u = uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
			} else {
				u = uint32(b[2])<<16 | uint32(b[1])<<8 | uint32(b[0])
			}
			// Sign-extend the 24-bit value
			samples[i] = int(int32(u<<8) >> 8)
		case 32:
			var u uint32
			if f.BigEndian {
				u = binary.BigEndian.Uint32(b)
			} else {
				u = binary.LittleEndian.Uint32(b)
			}
			samples[i] = int(int32(u))
		}
	}
	return samples
}

// IntsToBytes encodes integer samples back into raw PCM bytes in the
// given format. It is the inverse of BytesToInts.
func IntsToBytes(samples []int, f Format) []byte {
	bytesPerSample := f.BitDepth / 8
	data := make([]byte, len(samples)*bytesPerSample)

	for i, s := range samples {
		b := data[i*bytesPerSample:]
		switch f.BitDepth {
		case 8:
			if f.Signed {
				b[0] = byte(int8(s))
			} else {
				b[0] = byte(s + 128)
			}
		case 16:
			v := s
			if !f.Signed {
				v += 32768
			}
			if f.BigEndian {
				binary.BigEndian.PutUint16(b, uint16(v))
			} else {
				binary.LittleEndian.PutUint16(b, uint16(v))
			}
		case 24:
			u := uint32(int32(s))
			if f.BigEndian {
				b[0] = byte(u >> 16)
				b[1] = byte(u >> 8)
				b[2] = byte(u)
			} else {
				b[0] = byte(u)
				b[1] = byte(u >> 8)
				b[2] = byte(u >> 16)
			}
		case 32:
			u := uint32(int32(s))
			if f.BigEndian {
				binary.BigEndian.PutUint32(b, u)
			} else {
				binary.LittleEndian.PutUint32(b, u)
			}
		}
	}
	return data
}
