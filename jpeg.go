package skills

import (
	"bytes"
	"strings"
)

// soiMarker is the JPEG start-of-image marker.
var soiMarker = []byte{0xFF, 0xD8}

// Marker bytes following the 0xFF prefix.
const (
	markerFill = 0xFF // padding between segments
	markerAPP0 = 0xE0
	markerAPP1 = 0xE1
	markerDQT  = 0xDB
	markerSOF0 = 0xC0
	markerSOF2 = 0xC2
	markerDHT  = 0xC4
	markerCOM  = 0xFE
)

// provenanceSignatures are the metadata tags that trigger sanitation: the
// content-credentials manifest label and a known generator name that embeds
// watermark segments the platform's image validator rejects.
var provenanceSignatures = []string{"c2pa", "C2PA", "Doubao"}

// provenanceWindow is how many leading bytes are searched for signatures.
const provenanceWindow = 2048

// SanitizeJPEG strips vendor metadata segments from a JPEG buffer and
// reports whether anything was removed. Buffers without the start-of-image
// marker pass through untouched, as do JPEGs carrying no known provenance
// signature unless force is set. The repair is lossy only with respect to
// the stripped metadata: output is the original first two bytes followed by
// everything from the first standard segment onward. When no standard
// segment is found before the end of the buffer the input is returned
// unchanged rather than truncated.
func SanitizeJPEG(data []byte, force bool) ([]byte, bool) {
	if !bytes.HasPrefix(data, soiMarker) {
		return data, false
	}
	if !force && !hasProvenance(data) {
		return data, false
	}

	cut := findCutPoint(data)
	if cut < 0 || cut == len(soiMarker) {
		// Nothing to strip: either no standard segment exists (return the
		// buffer rather than guess a truncation) or image data starts
		// immediately after the start marker.
		return data, false
	}

	out := make([]byte, 0, len(soiMarker)+len(data)-cut)
	out = append(out, data[:len(soiMarker)]...)
	out = append(out, data[cut:]...)
	return out, true
}

// hasProvenance reports whether a known provenance signature appears in the
// leading window of the buffer, decoded byte-preservingly.
func hasProvenance(data []byte) bool {
	window := data
	if len(window) > provenanceWindow {
		window = window[:provenanceWindow]
	}
	head := string(window)
	for _, sig := range provenanceSignatures {
		if strings.Contains(head, sig) {
			return true
		}
	}
	return false
}

// findCutPoint scans past vendor metadata segments and returns the offset of
// the first standard marker, or -1 when none is found.
func findCutPoint(data []byte) int {
	i := len(soiMarker)
	for i < len(data)-1 {
		if data[i] != 0xFF {
			i++
			continue
		}
		marker := data[i+1]
		switch {
		case marker == markerFill:
			// The next byte may itself prefix the real marker.
			i++
		case isStandardMarker(marker):
			return i
		case isVendorSegment(marker):
			if i+4 > len(data) {
				return -1
			}
			segLen := int(data[i+2])<<8 | int(data[i+3])
			next := i + 2 + segLen
			if next > len(data) {
				return -1
			}
			i = next
		default:
			i++
		}
	}
	return -1
}

// isStandardMarker reports markers that indicate true image data has begun:
// standard application segments, quantization table, baseline or progressive
// start-of-frame, Huffman table.
func isStandardMarker(b byte) bool {
	switch b {
	case markerAPP0, markerAPP1, markerDQT, markerSOF0, markerSOF2, markerDHT:
		return true
	}
	return false
}

// isVendorSegment reports length-prefixed segments that may carry vendor
// metadata: APP2 through APP15 and comments.
func isVendorSegment(b byte) bool {
	return (b >= 0xE2 && b <= 0xEF) || b == markerCOM
}
