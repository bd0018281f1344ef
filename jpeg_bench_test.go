//go:build bench

package skills

import (
	"bytes"
	"testing"
)

// BenchmarkSanitizeJPEG benchmarks metadata stripping across buffer shapes.
func BenchmarkSanitizeJPEG(b *testing.B) {
	largePayload := append([]byte("....c2pa.manifest...."), bytes.Repeat([]byte{0xAB}, 64*1024)...)
	imageData := bytes.Repeat([]byte{0x5C}, 512*1024)

	inputs := []struct {
		name  string
		data  []byte
		force bool
	}{
		{"clean_fast_path", buildJPEG(soi, cleanTail, imageData), false},
		{"small_manifest", buildJPEG(soi, vendorSegment(0xEB, []byte("....c2pa.manifest....")), cleanTail, imageData), false},
		{"large_manifest", buildJPEG(soi, vendorSegment(0xEB, largePayload), cleanTail, imageData), false},
		{"forced_no_signature", buildJPEG(soi, vendorSegment(0xEC, []byte("harmless")), cleanTail, imageData), true},
	}

	for _, input := range inputs {
		b.Run(input.name, func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				result, _ := SanitizeJPEG(input.data, input.force)
				_ = result
			}
		})
	}
}

// BenchmarkHasProvenance benchmarks the leading window signature scan.
func BenchmarkHasProvenance(b *testing.B) {
	inputs := []struct {
		name string
		data []byte
	}{
		{"hit_early", buildJPEG(soi, []byte("...c2pa..."), bytes.Repeat([]byte{0x00}, provenanceWindow))},
		{"miss_full_window", buildJPEG(soi, bytes.Repeat([]byte{0x00}, 4*provenanceWindow))},
	}

	for _, input := range inputs {
		b.Run(input.name, func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				result := hasProvenance(input.data)
				_ = result
			}
		})
	}
}
