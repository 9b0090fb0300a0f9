package entities

// AudioClip is a voice note as received from the delivery channel:
// an Ogg container carrying an Opus stream.
type AudioClip []byte

// Empty reports whether the clip carries no bytes at all
func (c AudioClip) Empty() bool {
	return len(c) == 0
}
