package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pion/webrtc/v4/pkg/media/oggreader"
)

// Opus always runs its granule clock at 48 kHz regardless of input rate.
const opusGranuleRate = 48000

var (
	ErrEmptyClip  = errors.New("audio clip is empty")
	ErrNotOggOpus = errors.New("audio clip is not an ogg/opus stream")
	ErrTruncated  = errors.New("audio clip is truncated or corrupt")
)

// OggInfo describes a probed Ogg/Opus voice note
type OggInfo struct {
	Channels   uint8
	SampleRate uint32
	PreSkip    uint16
	DataPages  int
	Duration   time.Duration
}

// ProbeOgg validates that clip is a complete Ogg container carrying Opus and
// returns its basic properties. Every page checksum is verified.
func ProbeOgg(clip []byte) (*OggInfo, error) {
	if len(clip) == 0 {
		return nil, ErrEmptyClip
	}

	reader, header, err := oggreader.NewWith(bytes.NewReader(clip))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotOggOpus, err)
	}

	info := &OggInfo{
		Channels:   header.Channels,
		SampleRate: header.SampleRate,
		PreSkip:    header.PreSkip,
	}

	var lastGranule uint64
	for {
		payload, pageHeader, err := reader.ParseNextPage()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
		}
		if bytes.HasPrefix(payload, []byte("OpusTags")) {
			continue
		}
		info.DataPages++
		if pageHeader.GranulePosition > lastGranule {
			lastGranule = pageHeader.GranulePosition
		}
	}

	if info.DataPages == 0 {
		return nil, fmt.Errorf("%w: no audio pages", ErrTruncated)
	}

	if lastGranule > uint64(info.PreSkip) {
		samples := lastGranule - uint64(info.PreSkip)
		info.Duration = time.Duration(samples) * time.Second / opusGranuleRate
	}
	return info, nil
}
