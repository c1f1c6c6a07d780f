// Package lc3 reads and writes the .lc3 binary file format used to
// exchange LC3 bitstreams between encoder and decoder tools.
//
// A file is one fixed header followed by frame blocks. All fields are
// little-endian:
//
//	offset  size  field
//	0       2     magic 0xCC1C
//	2       2     header length in bytes (18, larger values reserved)
//	4       2     sample rate / 100
//	6       2     bitrate / 100
//	8       2     channel count
//	10      2     frame duration in 10 us ticks (1000 = 10 ms)
//	12      2     error protection mode (0)
//	14      4     total samples per channel, 0 if unknown
//
// Each frame block is a 2-byte total byte count followed by that many
// bytes: the concatenated channel frames of one interval. The bitrate
// field is a sizing hint with 100 bit/s granularity; the byte counts on
// the frame blocks are authoritative.
package lc3
