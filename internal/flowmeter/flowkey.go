package flowmeter

import "fmt"

// FlowKey is the canonical 5-tuple identifying a flow: the direction in
// which the flow's first observed packet was traveling. Comparable, so it
// can key a Go map directly without a packed-byte representation.
type FlowKey struct {
	SrcIP    string
	DstIP    string
	SrcPort  uint16
	DstPort  uint16
	Protocol uint8
}

// keyOf returns the forward and backward keys for a packet.
func keyOf(p Packet) (fwd, bwd FlowKey) {
	fwd = FlowKey{
		SrcIP:    p.SrcIP,
		DstIP:    p.DstIP,
		SrcPort:  p.SrcPort,
		DstPort:  p.DstPort,
		Protocol: p.Protocol,
	}
	bwd = FlowKey{
		SrcIP:    p.DstIP,
		DstIP:    p.SrcIP,
		SrcPort:  p.DstPort,
		DstPort:  p.SrcPort,
		Protocol: p.Protocol,
	}
	return fwd, bwd
}

// ID renders the flow key in the canonical "src-dst-sport-dport-proto" form
// used both as the human-readable flow id and as the label-file key.
func (k FlowKey) ID() string {
	return fmt.Sprintf("%s-%s-%d-%d-%d", k.SrcIP, k.DstIP, k.SrcPort, k.DstPort, k.Protocol)
}
