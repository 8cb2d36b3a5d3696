package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTimeoutChainDefaults(t *testing.T) {
	paths, tcp, udp, err := parseTimeoutChain([]string{"cap.pcap", "out.csv"})
	require.NoError(t, err)
	require.Equal(t, []string{"cap.pcap", "out.csv"}, paths)
	require.Equal(t, defaultProtocolTimeoutSec, tcp)
	require.Equal(t, defaultProtocolTimeoutSec, udp)
}

func TestParseTimeoutChainWithLabelAndChain(t *testing.T) {
	paths, tcp, udp, err := parseTimeoutChain([]string{
		"cap.pcap", "out.csv", "labels.txt", "tcp", "-t", "30", "udp", "-t", "60",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"cap.pcap", "out.csv", "labels.txt"}, paths)
	require.Equal(t, 30, tcp)
	require.Equal(t, 60, udp)
}

func TestParseTimeoutChainLongFlag(t *testing.T) {
	_, tcp, _, err := parseTimeoutChain([]string{"cap.pcap", "out.csv", "tcp", "--timeout", "45"})
	require.NoError(t, err)
	require.Equal(t, 45, tcp)
}

func TestParseTimeoutChainPassthroughFlags(t *testing.T) {
	paths, _, _, err := parseTimeoutChain([]string{"cap.pcap", "out.csv", "-v", "--metrics-addr", "127.0.0.1:9999"})
	require.NoError(t, err)
	require.Equal(t, []string{"cap.pcap", "out.csv", "-v", "--metrics-addr", "127.0.0.1:9999"}, paths)
}

func TestParseTimeoutChainMissingPaths(t *testing.T) {
	_, _, _, err := parseTimeoutChain([]string{"tcp", "-t", "30"})
	require.Error(t, err)
}

func TestParseTimeoutChainMissingTimeoutValue(t *testing.T) {
	_, _, _, err := parseTimeoutChain([]string{"cap.pcap", "out.csv", "tcp", "-t"})
	require.Error(t, err)
}

func TestParseTimeoutChainBadTimeoutValue(t *testing.T) {
	_, _, _, err := parseTimeoutChain([]string{"cap.pcap", "out.csv", "tcp", "-t", "soon"})
	require.Error(t, err)
}

// A bare --help/-h/--version must not be rejected for missing positional
// file arguments: spec.md §6.1 requires --help/-h to print usage, and the
// top-level --version flag behaves the same way, regardless of whether
// <pcap-path>/<csv-path> were given.
func TestParseTimeoutChainBareHelpSkipsPositionalCheck(t *testing.T) {
	paths, _, _, err := parseTimeoutChain([]string{"--help"})
	require.NoError(t, err)
	require.Equal(t, []string{"--help"}, paths)
}

func TestParseTimeoutChainBareShortHelpSkipsPositionalCheck(t *testing.T) {
	paths, _, _, err := parseTimeoutChain([]string{"-h"})
	require.NoError(t, err)
	require.Equal(t, []string{"-h"}, paths)
}

func TestParseTimeoutChainBareVersionSkipsPositionalCheck(t *testing.T) {
	paths, _, _, err := parseTimeoutChain([]string{"--version"})
	require.NoError(t, err)
	require.Equal(t, []string{"--version"}, paths)
}

func TestParseTimeoutChainHelpWithOnePositionalStillSkipsCheck(t *testing.T) {
	paths, _, _, err := parseTimeoutChain([]string{"cap.pcap", "--help"})
	require.NoError(t, err)
	require.Equal(t, []string{"cap.pcap", "--help"}, paths)
}
