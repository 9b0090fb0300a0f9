package media

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4/pkg/media/oggwriter"
)

// makeVoiceNote builds an Ogg/Opus stream of n 20ms packets
func makeVoiceNote(t *testing.T, n int) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := oggwriter.NewWith(&buf, 48000, 1)
	if err != nil {
		t.Fatalf("oggwriter: %v", err)
	}
	for i := 0; i < n; i++ {
		pkt := &rtp.Packet{
			Header: rtp.Header{
				Version:        2,
				PayloadType:    111,
				SequenceNumber: uint16(i),
				Timestamp:      uint32(i * 960),
				SSRC:           1,
			},
			// Opus TOC byte for a 20ms SILK frame followed by filler
			Payload: []byte{0x08, 0xff, 0xfe, 0xfd},
		}
		if err := w.WriteRTP(pkt); err != nil {
			t.Fatalf("write rtp: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return buf.Bytes()
}

func TestProbeOgg_Valid(t *testing.T) {
	clip := makeVoiceNote(t, 10)

	info, err := ProbeOgg(clip)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Channels != 1 {
		t.Errorf("expected mono, got %d channels", info.Channels)
	}
	if info.DataPages != 10 {
		t.Errorf("expected 10 data pages, got %d", info.DataPages)
	}
}

func TestProbeOgg_Empty(t *testing.T) {
	if _, err := ProbeOgg(nil); !errors.Is(err, ErrEmptyClip) {
		t.Fatalf("expected ErrEmptyClip, got %v", err)
	}
}

func TestProbeOgg_NotOgg(t *testing.T) {
	_, err := ProbeOgg([]byte("this is definitely not an ogg container, just text"))
	if !errors.Is(err, ErrNotOggOpus) {
		t.Fatalf("expected ErrNotOggOpus, got %v", err)
	}
}

func TestProbeOgg_Truncated(t *testing.T) {
	clip := makeVoiceNote(t, 5)
	_, err := ProbeOgg(clip[:len(clip)-3])
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestConverter_EmptyClip(t *testing.T) {
	c := NewConverter("", nil)
	if _, err := c.ToWAV(context.Background(), nil); !errors.Is(err, ErrEmptyClip) {
		t.Fatalf("expected ErrEmptyClip, got %v", err)
	}
}

func TestConverter_MissingBinary(t *testing.T) {
	c := NewConverter("/nonexistent/ffmpeg-binary", nil)
	if c.Available() {
		t.Fatal("binary must not be available")
	}
	if _, err := c.ToWAV(context.Background(), []byte("x")); err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestConverter_RejectsGarbage(t *testing.T) {
	c := NewConverter("", nil)
	if !c.Available() {
		t.Skip("ffmpeg not installed")
	}
	if _, err := c.ToWAV(context.Background(), []byte("garbage garbage garbage")); err == nil {
		t.Fatal("expected ffmpeg to reject garbage input")
	}
}
