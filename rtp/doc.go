// Package rtp packetizes LC3 frames for transport over RTP.
//
// Each encoded frame becomes one RTP packet with a dynamic payload type.
// The timestamp advances by the frame's sample count at the media clock
// rate, so receivers can schedule playback without parsing the payload.
// The marker bit is set on the first packet of a stream, marking the
// start of a talkspurt.
package rtp
