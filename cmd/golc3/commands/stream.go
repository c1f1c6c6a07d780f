package commands

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/thesyncim/golc3"
	lc3rtp "github.com/thesyncim/golc3/rtp"
)

var (
	flagStreamUDP        string
	flagStreamWS         string
	flagStreamPT         int
	flagStreamBitrate    int
	flagStreamFrameBytes int
	flagStreamDuration   string
	flagStreamRate       int
	flagStreamLoop       bool
)

var streamCmd = &cobra.Command{
	Use:   "stream <input.wav|input.mp3>",
	Short: "Encode a file and push frames over RTP/UDP or a websocket",
	Long: `Encode a file and push frames in real time, one frame per frame
interval.

With --udp each frame is wrapped in an RTP packet (dynamic payload
type, timestamps advancing by the frame length in samples) and sent to
the given address. With --ws frames are pushed as binary websocket
messages: a type byte, a big-endian microsecond timestamp, then the
frame payload.

Examples:
  golc3 stream speech.wav --udp 192.168.1.20:5004 --pt 110
  golc3 stream music.mp3 --ws ws://localhost:8080/ingest --loop`,
	Args: cobra.ExactArgs(1),
	RunE: runStream,
}

func init() {
	streamCmd.Flags().StringVar(&flagStreamUDP, "udp", "", "RTP destination address (host:port)")
	streamCmd.Flags().StringVar(&flagStreamWS, "ws", "", "websocket URL (ws:// or wss://)")
	streamCmd.Flags().IntVar(&flagStreamPT, "pt", lc3rtp.DefaultPayloadType, "RTP payload type (96-127)")
	streamCmd.Flags().IntVar(&flagStreamBitrate, "bitrate", 0, "total bitrate in bit/s across channels")
	streamCmd.Flags().IntVar(&flagStreamFrameBytes, "frame-bytes", 0, "bytes per channel per frame (20-400, overrides --bitrate)")
	streamCmd.Flags().StringVar(&flagStreamDuration, "duration", "10ms", "frame duration (10ms or 7.5ms)")
	streamCmd.Flags().IntVar(&flagStreamRate, "rate", 0, "resample input to this rate before encoding")
	streamCmd.Flags().BoolVar(&flagStreamLoop, "loop", false, "restart from the beginning at end of input")

	rootCmd.AddCommand(streamCmd)
}

func runStream(cmd *cobra.Command, args []string) error {
	if (flagStreamUDP == "") == (flagStreamWS == "") {
		return fmt.Errorf("exactly one of --udp or --ws is required")
	}
	duration, err := parseFrameDuration(flagStreamDuration)
	if err != nil {
		return err
	}

	audio, err := loadAudio(args[0])
	if err != nil {
		return err
	}
	if flagStreamRate != 0 {
		if err := resampleAudio(audio, flagStreamRate); err != nil {
			return err
		}
	}

	enc, err := golc3.NewEncoder(audio.sampleRate, audio.channels, duration)
	if err != nil {
		return fmt.Errorf("create encoder: %w (try --rate 48000)", err)
	}
	if err := applyBudget(enc, flagStreamBitrate, flagStreamFrameBytes); err != nil {
		return err
	}

	var sink frameSink
	if flagStreamUDP != "" {
		if flagStreamPT < 96 || flagStreamPT > 127 {
			return fmt.Errorf("payload type %d out of range 96-127", flagStreamPT)
		}
		sink, err = newUDPSink(flagStreamUDP, uint8(flagStreamPT), enc.FrameSamples())
	} else {
		sink, err = newWSSink(flagStreamWS)
	}
	if err != nil {
		return err
	}
	defer sink.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(containerDuration(duration))
	defer ticker.Stop()

	buf := make([]byte, enc.FrameBytes())
	src := newFrameSource(audio.samples, audio.channels, enc.FrameSamples())
	for {
		frame, ok := src.next()
		if !ok {
			if !flagStreamLoop {
				break
			}
			src.rewind()
			continue
		}
		if err := enc.EncodePlanar(frame, buf); err != nil {
			return fmt.Errorf("encode frame %d: %w", enc.FrameCount(), err)
		}
		if err := sink.send(buf); err != nil {
			return fmt.Errorf("send frame %d: %w", enc.FrameCount(), err)
		}

		select {
		case <-ctx.Done():
			slog.Info("interrupted", "frames", enc.FrameCount())
			return nil
		case <-ticker.C:
		}
	}
	slog.Info("stream finished", "frames", enc.FrameCount())
	return nil
}

// frameSink delivers encoded frames to a network destination.
type frameSink interface {
	send(frame []byte) error
	io.Closer
}

type udpSink struct {
	conn *net.UDPConn
	pkt  *lc3rtp.Packetizer
}

func newUDPSink(addr string, pt uint8, samplesPerFrame int) (*udpSink, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	pkt, err := lc3rtp.NewPacketizer(lc3rtp.Config{
		PayloadType:     pt,
		SamplesPerFrame: samplesPerFrame,
	})
	if err != nil {
		conn.Close()
		return nil, err
	}
	slog.Info("streaming over RTP/UDP", "addr", addr,
		"ssrc", pkt.SSRC(), "stream_id", pkt.StreamID())
	return &udpSink{conn: conn, pkt: pkt}, nil
}

func (s *udpSink) send(frame []byte) error {
	data, err := s.pkt.MarshalFrame(frame)
	if err != nil {
		return err
	}
	_, err = s.conn.Write(data)
	return err
}

func (s *udpSink) Close() error { return s.conn.Close() }

// wsChunkAudio tags binary websocket messages carrying an audio frame.
const wsChunkAudio = 4

type wsSink struct {
	conn  *websocket.Conn
	epoch time.Time
}

func newWSSink(rawURL string) (*wsSink, error) {
	conn, _, err := websocket.DefaultDialer.Dial(rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rawURL, err)
	}
	slog.Info("streaming over websocket", "url", rawURL)
	return &wsSink{conn: conn, epoch: time.Now()}, nil
}

func (s *wsSink) send(frame []byte) error {
	chunk := make([]byte, 1+8+len(frame))
	chunk[0] = wsChunkAudio
	binary.BigEndian.PutUint64(chunk[1:9], uint64(time.Since(s.epoch).Microseconds()))
	copy(chunk[9:], frame)
	return s.conn.WriteMessage(websocket.BinaryMessage, chunk)
}

func (s *wsSink) Close() error {
	s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return s.conn.Close()
}
