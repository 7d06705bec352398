package terminal

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"
)

func TestKittyPackets(t *testing.T) {
	for _, n := range []int{1, 2, 3, 3071, 3072, 3073, 6144, 12288, 12289, 100000} {
		payload := bytes.Repeat([]byte{0x89, 'P', 'N', 'G'}, n/4+1)[:n]
		encodedLen := base64.StdEncoding.EncodedLen(n)
		wantPackets := (encodedLen + kittyChunkSize - 1) / kittyChunkSize

		packets := KittyPackets(payload)
		if len(packets) != wantPackets {
			t.Errorf("n=%d: %d packets, want %d", n, len(packets), wantPackets)
			continue
		}

		var joined strings.Builder
		finals := 0
		for i, p := range packets {
			prefix := "\x1b_Gm="
			if i == 0 {
				prefix = "\x1b_Gf=100,a=T,m="
			}
			if !strings.HasPrefix(p, prefix) {
				t.Fatalf("n=%d packet %d has prefix %q", n, i, p[:min(len(p), 20)])
			}
			if !strings.HasSuffix(p, "\x1b\\") {
				t.Fatalf("n=%d packet %d not terminated", n, i)
			}
			more := p[len(prefix)]
			if more == '0' {
				finals++
				if i != len(packets)-1 {
					t.Errorf("n=%d: m=0 on packet %d of %d", n, i, len(packets))
				}
			}

			_, chunk, _ := strings.Cut(p, ";")
			chunk = strings.TrimSuffix(chunk, "\x1b\\")
			if len(chunk) > kittyChunkSize {
				t.Errorf("n=%d packet %d carries %d chars", n, i, len(chunk))
			}
			joined.WriteString(chunk)
		}
		if finals != 1 {
			t.Errorf("n=%d: %d final packets, want 1", n, finals)
		}

		decoded, err := base64.StdEncoding.DecodeString(joined.String())
		if err != nil || !bytes.Equal(decoded, payload) {
			t.Errorf("n=%d: chunks do not reassemble to the payload", n)
		}
	}
}

func TestKittyPacketsEmpty(t *testing.T) {
	if got := KittyPackets(nil); got != nil {
		t.Errorf("KittyPackets(nil) = %v, want nil", got)
	}
	if err := writeKitty(&bytes.Buffer{}, nil); err == nil {
		t.Error("writeKitty accepted an empty image")
	}
}
