package terminal

import (
	"encoding/base64"
	"errors"
	"io"
	"strings"
)

// kittyChunkSize is the maximum base64 payload per graphics escape.
const kittyChunkSize = 4096

// KittyPackets frames a PNG as Kitty graphics escapes. The first packet
// carries the transmit-and-display control keys; m=1 marks every packet
// but the last.
func KittyPackets(png []byte) []string {
	encoded := base64.StdEncoding.EncodeToString(png)
	if encoded == "" {
		return nil
	}

	packets := make([]string, 0, (len(encoded)+kittyChunkSize-1)/kittyChunkSize)
	for start := 0; start < len(encoded); start += kittyChunkSize {
		end := min(start+kittyChunkSize, len(encoded))
		more := "1"
		if end == len(encoded) {
			more = "0"
		}

		var sb strings.Builder
		sb.WriteString("\x1b_G")
		if start == 0 {
			sb.WriteString("f=100,a=T,")
		}
		sb.WriteString("m=")
		sb.WriteString(more)
		sb.WriteByte(';')
		sb.WriteString(encoded[start:end])
		sb.WriteString("\x1b\\")
		packets = append(packets, sb.String())
	}
	return packets
}

func writeKitty(w io.Writer, png []byte) error {
	packets := KittyPackets(png)
	if len(packets) == 0 {
		return errors.New("empty image")
	}
	for _, p := range packets {
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}
