// Command accompanist follows a live MIDI performance against an
// expectation score and drives a playback (accompaniment) score in sync
// with the performer's tempo.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"accompanist/pkg/api"
	"accompanist/pkg/cli"
	"accompanist/pkg/ingest"
	"accompanist/pkg/loop"
	"accompanist/pkg/match"
	"accompanist/pkg/midiio"
	"accompanist/pkg/playback"
	"accompanist/pkg/score"
	"accompanist/pkg/snapshot"
	"accompanist/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	recDeviceNum   int
	recDeviceName  string
	playDeviceNum  int
	playDeviceName string

	inputScoreFile    string
	playbackScoreFile string

	inputChannels  cli.ChannelSpecList
	outputChannels cli.ChannelSpecList

	delayMillis int
	matcherKind string

	statusAddr string
	useTUI     bool
)

const unsetDeviceNum = -1

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "accompanist",
	Short: "Online score follower with adaptive accompaniment",
	Long: `accompanist tracks a live MIDI performance against an expectation
score, estimates how the performer's tempo compares to the notated score,
and emits a playback (accompaniment) score paced to match.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	RunE:    runSession,
}

func init() {
	flags := rootCmd.Flags()

	flags.IntVar(&recDeviceNum, "rec-device-num", unsetDeviceNum, "input port number")
	flags.StringVar(&recDeviceName, "rec-device-name", "", "input port name substring")
	flags.IntVar(&playDeviceNum, "play-device-num", unsetDeviceNum, "output port number")
	flags.StringVar(&playDeviceName, "play-device-name", "", "output port name substring")

	flags.StringVar(&inputScoreFile, "input-score-file", "", "expectation score file (SMF or .abc)")
	flags.StringVar(&playbackScoreFile, "playback-score-file", "", "playback score file (SMF)")

	flags.Var(&inputChannels, "input-channels", "track:ch[,ch...] selector for the expectation score, repeatable")
	flags.Var(&outputChannels, "output-channels", "track:ch[,ch...] selector for the playback score, repeatable")

	flags.IntVar(&delayMillis, "delay", 0, "scheduling bias in milliseconds added before projecting elapsed time into score time")
	flags.StringVar(&matcherKind, "matcher", "flex", "matching algorithm: strict (monophonic) or flex (polyphonic)")

	flags.StringVar(&statusAddr, "status-addr", "", "if set, serve live session status on this host:port")
	flags.BoolVar(&useTUI, "tui", false, "show a live terminal dashboard instead of log output")

	_ = rootCmd.MarkFlagRequired("input-score-file")
	_ = rootCmd.MarkFlagRequired("playback-score-file")
}

func runSession(cmd *cobra.Command, args []string) error {
	inSel, err := deviceSelector(recDeviceNum, recDeviceName, "--rec-device-num", "--rec-device-name")
	if err != nil {
		return err
	}
	outSel, err := deviceSelector(playDeviceNum, playDeviceName, "--play-device-num", "--play-device-name")
	if err != nil {
		return err
	}

	expectation, err := loadExpectation(inputScoreFile, inputChannels.Values)
	if err != nil {
		return err
	}
	if len(expectation) == 0 {
		return fmt.Errorf("accompanist: expectation score %s is empty", inputScoreFile)
	}

	playbackScore, err := ingest.LoadPlayback(playbackScoreFile, outputChannels.Values)
	if err != nil {
		return fmt.Errorf("accompanist: loading playback score: %w", err)
	}

	inPort, err := midiio.SelectInPort(inSel)
	if err != nil {
		return fmt.Errorf("accompanist: selecting input device: %w", err)
	}
	outPort, err := midiio.SelectOutPort(outSel)
	if err != nil {
		return fmt.Errorf("accompanist: selecting output device: %w", err)
	}

	writer, err := midiio.NewWriter(outPort)
	if err != nil {
		return fmt.Errorf("accompanist: opening output device: %w", err)
	}
	defer writer.Close()

	sessionStart := time.Now()
	liveCh, stopListening, err := midiio.ListenTo(inPort, sessionStart)
	if err != nil {
		return fmt.Errorf("accompanist: opening input device: %w", err)
	}
	defer stopListening()

	matcher, err := newMatcher(matcherKind, expectation)
	if err != nil {
		return err
	}

	scheduler := playback.NewScheduler(playbackScore, time.Duration(delayMillis)*time.Millisecond)
	shutdown := &loop.Shutdown{}
	store := snapshot.NewStore()

	if statusAddr != "" {
		go func() {
			if err := api.StartServer(statusAddr, store); err != nil {
				fmt.Fprintf(os.Stderr, "accompanist: status API stopped: %v\n", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		shutdown.Request()
		<-sigCh
		os.Exit(1)
	}()

	l := loop.New(liveCh, matcher, expectation, scheduler, writer.Send, shutdown, sessionStart, store)

	if useTUI {
		sub, cancel := store.Subscribe()
		defer cancel()
		go func() {
			if err := tui.Run(sub); err != nil {
				fmt.Fprintf(os.Stderr, "accompanist: tui error: %v\n", err)
			}
			shutdown.Request()
		}()
	}

	return l.Run()
}

func deviceSelector(num int, name string, numFlag string, nameFlag string) (midiio.Selector, error) {
	hasNum := num != unsetDeviceNum
	hasName := name != ""
	switch {
	case hasNum && hasName:
		return midiio.Selector{}, fmt.Errorf("accompanist: %s and %s are mutually exclusive", numFlag, nameFlag)
	case hasNum:
		n := num
		return midiio.Selector{Number: &n}, nil
	case hasName:
		return midiio.Selector{NameSubstring: &name}, nil
	default:
		return midiio.Selector{}, fmt.Errorf("accompanist: one of %s or %s is required", numFlag, nameFlag)
	}
}

func loadExpectation(path string, selectors []score.ChannelSpec) (score.Score, error) {
	if strings.HasSuffix(strings.ToLower(path), ".abc") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("accompanist: reading ABC tune %s: %w", path, err)
		}
		notes, err := ingest.ParseABC(string(data))
		if err != nil {
			return nil, fmt.Errorf("accompanist: parsing ABC tune %s: %w", path, err)
		}
		return notes, nil
	}
	notes, err := ingest.LoadExpectation(path, selectors)
	if err != nil {
		return nil, fmt.Errorf("accompanist: loading expectation score: %w", err)
	}
	return notes, nil
}

func newMatcher(kind string, expectation score.Score) (match.Follower, error) {
	switch kind {
	case "strict":
		return match.NewStrict(expectation), nil
	case "flex":
		return match.NewFlex(expectation), nil
	default:
		return nil, fmt.Errorf("accompanist: unknown --matcher %q, want strict or flex", kind)
	}
}
