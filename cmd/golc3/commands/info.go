package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thesyncim/golc3/container/lc3"
)

var infoCmd = &cobra.Command{
	Use:   "info <file.lc3>",
	Short: "Show the header of a .lc3 file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := lc3.NewReader(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	hdr := r.Header

	fmt.Printf("File:           %s\n", args[0])
	fmt.Printf("Sample rate:    %d Hz\n", hdr.SampleRate)
	fmt.Printf("Channels:       %d\n", hdr.Channels)
	fmt.Printf("Frame duration: %v\n", hdr.FrameDuration)
	fmt.Printf("Bitrate:        %d bit/s\n", hdr.Bitrate)
	if hdr.Samples > 0 {
		fmt.Printf("Length:         %d samples (%.2f s)\n", hdr.Samples,
			float64(hdr.Samples)/float64(hdr.SampleRate))
	}

	var payload uint64
	for {
		frame, err := r.ReadFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, lc3.ErrUnexpectedEOS) {
				fmt.Printf("Frames:         %d (%d payload bytes, truncated file)\n",
					r.FrameCount(), payload)
				return nil
			}
			return fmt.Errorf("frame %d: %w", r.FrameCount(), err)
		}
		payload += uint64(len(frame))
	}
	fmt.Printf("Frames:         %d (%d payload bytes)\n", r.FrameCount(), payload)
	return nil
}
