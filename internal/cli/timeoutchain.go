package cli

import (
	"fmt"
	"strconv"
)

// boolFlags are the flags parseTimeoutChain recognizes as taking no value,
// so it knows not to swallow the token that follows them.
var boolFlags = map[string]bool{
	"-v": true, "--verbose": true,
	"--version": true, "--ipv6": true,
	"-h": true, "--help": true,
}

// helpOrVersionFlags short-circuit the positional-argument requirement
// entirely: spec.md §6.1 requires "--help/-h prints usage" (and this also
// covers "--version") regardless of whether the required file arguments
// were given, mirroring original_source/include/CMDLine.h's
// parse_arguments, which checks for "help"/"-h"/"--help" before validating
// any positional argument and always returns success for them.
var helpOrVersionFlags = map[string]bool{
	"-h": true, "--help": true,
	"--version": true,
}

// parseTimeoutChain splits argv into the positional file arguments
// (pcap-path, csv-path, and an optional label-path) and the trailing
// "tcp -t <seconds>" / "udp -t <seconds>" timeout chain, following the
// grammar in original_source/include/CMDLine.h's parse_arguments. Any
// other recognized flag (-v, --metrics-addr, --version, -h) may appear
// anywhere and is left for cobra to parse; pathArgs is re-assembled with
// those flags appended so cobra still sees them.
func parseTimeoutChain(argv []string) (pathArgs []string, tcpTimeoutSec, udpTimeoutSec int, err error) {
	tcpTimeoutSec = defaultProtocolTimeoutSec
	udpTimeoutSec = defaultProtocolTimeoutSec

	var paths, passthrough []string
	var requestedHelpOrVersion bool

	for i := 0; i < len(argv); i++ {
		tok := argv[i]

		switch tok {
		case "tcp", "udp":
			timeout, consumed, perr := parseTimeoutSegment(argv, i+1)
			if perr != nil {
				return nil, 0, 0, fmt.Errorf("%s: %w", tok, perr)
			}
			if tok == "tcp" {
				tcpTimeoutSec = timeout
			} else {
				udpTimeoutSec = timeout
			}
			i += consumed
			continue
		}

		if len(tok) > 0 && tok[0] == '-' {
			if helpOrVersionFlags[tok] {
				requestedHelpOrVersion = true
			}
			passthrough = append(passthrough, tok)
			if !boolFlags[tok] && i+1 < len(argv) {
				i++
				passthrough = append(passthrough, argv[i])
			}
			continue
		}

		if len(paths) < 3 {
			paths = append(paths, tok)
			continue
		}

		return nil, 0, 0, fmt.Errorf("unexpected argument: %s", tok)
	}

	if len(paths) < 2 && !requestedHelpOrVersion {
		return nil, 0, 0, fmt.Errorf("usage: flowmeter <pcap-path> <csv-path> [label-path] [tcp -t <secs>] [udp -t <secs>]")
	}

	return append(paths, passthrough...), tcpTimeoutSec, udpTimeoutSec, nil
}

// parseTimeoutSegment parses the "-t <seconds>" (or "--timeout <seconds>")
// pair following a "tcp"/"udp" token, returning the parsed timeout and the
// number of extra tokens consumed beyond the "tcp"/"udp" token itself.
func parseTimeoutSegment(argv []string, start int) (timeout, consumed int, err error) {
	if start >= len(argv) {
		return 0, 0, fmt.Errorf("missing -t <seconds>")
	}
	flag := argv[start]
	if flag != "-t" && flag != "--timeout" {
		return 0, 0, fmt.Errorf("expected -t <seconds>, got %q", flag)
	}
	if start+1 >= len(argv) {
		return 0, 0, fmt.Errorf("missing value after %s", flag)
	}
	n, err := strconv.Atoi(argv[start+1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid timeout value %q: %w", argv[start+1], err)
	}
	return n, 2, nil
}
