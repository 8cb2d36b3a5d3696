// Package flowmeter implements the offline flow-reassembly and
// feature-accumulation engine: it groups packets into bidirectional flows,
// maintains incremental per-flow statistics, and serializes finished flows
// into a fixed-schema feature record.
package flowmeter

// Protocol numbers this engine understands. Any other IP protocol is
// dropped by the capture reader before it reaches the core.
const (
	ProtoTCP = 6
	ProtoUDP = 17
)

// Packet is an immutable, normalized record of a single observed packet.
// It carries exactly the fields the core engine needs to reassemble flows
// and accumulate features; everything link-layer specific is resolved by
// the capture reader before construction.
type Packet struct {
	SrcIP    string
	DstIP    string
	SrcPort  uint16
	DstPort  uint16
	Protocol uint8

	// TimestampUS is microseconds since an arbitrary epoch, monotonic
	// within one capture.
	TimestampUS int64

	// PayloadLen is IP total length minus the L3 and L4 header lengths.
	PayloadLen int
	// HeaderLen is the L2+L3+L4 header length in bytes, informational only.
	HeaderLen int
	// Window is the TCP advertised window; zero for non-TCP packets.
	Window uint16

	FIN, SYN, RST, PSH, ACK, URG, ECE, CWR bool
}

func (p Packet) IsTCP() bool { return p.Protocol == ProtoTCP }
func (p Packet) IsUDP() bool { return p.Protocol == ProtoUDP }
