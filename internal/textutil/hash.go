package textutil

// HashCode: hash rodante base 31 sobre las unidades UTF-16, con overflow de int32.
// Da el mismo valor para el mismo texto en todos los shards (se usa para colores de embed).
func HashCode(s string) int32 {
	var h int32
	for _, u := range utf16Units(s) {
		h = 31*h + int32(u)
	}
	return h
}

// Color: HashCode recortado a 24 bits para un color RGB.
func Color(s string) int {
	return int(uint32(HashCode(s)) & 0xFFFFFF)
}

func utf16Units(s string) []uint16 {
	out := make([]uint16, 0, len(s))
	for _, r := range s {
		if r >= 0x10000 {
			r -= 0x10000
			out = append(out, uint16(0xD800+(r>>10)), uint16(0xDC00+(r&0x3FF)))
			continue
		}
		out = append(out, uint16(r))
	}
	return out
}
