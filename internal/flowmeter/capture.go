package flowmeter

import (
	"context"
	"fmt"
	"os"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/gopacket/gopacket/pcap"
)

// CaptureReader produces an ordered sequence of Packet records from an
// offline capture file, per spec.md §6.4. It is an external collaborator:
// the core engine only depends on this interface, never on gopacket
// directly.
type CaptureReader interface {
	// Each reads packets in capture order, invoking onPacket for every
	// packet the core understands. Malformed or unsupported packets
	// (non-IP, non-TCP/UDP, or IPv6 when disabled) are dropped silently
	// before onPacket is called, per spec.md §7.
	Each(ctx context.Context, onPacket func(Packet)) error
	Close() error
}

// PcapReaderOption configures a PcapReader.
type PcapReaderOption func(*PcapReader)

// WithIPv6 enables IPv6 flow extraction, disabled by default per spec.md
// §6.4.
func WithIPv6(enabled bool) PcapReaderOption {
	return func(r *PcapReader) { r.ipv6Enabled = enabled }
}

// WithDropCounter registers a callback invoked once per dropped packet,
// used to feed the malformed/unsupported-packet metrics.
func WithDropCounter(fn func()) PcapReaderOption {
	return func(r *PcapReader) { r.onDrop = fn }
}

// PcapReader implements CaptureReader by parsing an offline capture file
// with gopacket/pcap, exactly as
// telemetry/flow-enricher/internal/flow-enricher/pcap_consumer.go does for
// its own offline sFlow fixtures.
type PcapReader struct {
	path        string
	ipv6Enabled bool
	onDrop      func()
}

// NewPcapReader creates a reader for the capture file at path.
func NewPcapReader(path string, opts ...PcapReaderOption) *PcapReader {
	r := &PcapReader{path: path}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Each opens the capture file and invokes onPacket for every packet this
// engine understands, in capture order.
func (r *PcapReader) Each(ctx context.Context, onPacket func(Packet)) error {
	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("failed to open pcap file: %w", err)
	}
	defer f.Close()

	handle, err := pcap.OpenOfflineFile(f)
	if err != nil {
		return fmt.Errorf("failed to parse pcap file: %w", err)
	}
	defer handle.Close()

	packetSource := gopacket.NewPacketSource(handle, handle.LinkType())
	packetSource.DecodeOptions = gopacket.DecodeOptions{Lazy: true, NoCopy: true}

	for pkt := range packetSource.Packets() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p, ok := r.decode(pkt)
		if !ok {
			if r.onDrop != nil {
				r.onDrop()
			}
			continue
		}
		onPacket(p)
	}
	return nil
}

// ethernetHeaderLen is sizeof(struct ether_header) (two MAC addresses plus
// the EtherType), the original's fixed assumption in its set_header_bytes
// (original_source/include/preader.h). Used as a fallback when the packet
// has no decoded link layer; otherwise the decoded link layer's own header
// length is used.
const ethernetHeaderLen = 14

// decode converts one gopacket.Packet into a normalized Packet record,
// per spec.md §4.2. Non-IP, non-TCP/UDP packets, and IPv6 packets when
// disabled, are rejected here.
func (r *PcapReader) decode(pkt gopacket.Packet) (Packet, bool) {
	meta := pkt.Metadata()

	var p Packet
	p.TimestampUS = meta.Timestamp.UnixMicro()

	l2HeaderLen := ethernetHeaderLen
	if link := pkt.LinkLayer(); link != nil {
		l2HeaderLen = len(link.LayerContents())
	}

	var l3HeaderLen, ipTotalLen int
	switch {
	case pkt.Layer(layers.LayerTypeIPv4) != nil:
		ip4, _ := pkt.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
		p.SrcIP = ip4.SrcIP.String()
		p.DstIP = ip4.DstIP.String()
		p.Protocol = uint8(ip4.Protocol)
		l3HeaderLen = int(ip4.IHL) * 4
		ipTotalLen = int(ip4.Length)
	case pkt.Layer(layers.LayerTypeIPv6) != nil:
		if !r.ipv6Enabled {
			return Packet{}, false
		}
		ip6, _ := pkt.Layer(layers.LayerTypeIPv6).(*layers.IPv6)
		p.SrcIP = ip6.SrcIP.String()
		p.DstIP = ip6.DstIP.String()
		p.Protocol = uint8(ip6.NextHeader)
		l3HeaderLen = 40
		ipTotalLen = int(ip6.Length) + l3HeaderLen
	default:
		return Packet{}, false
	}

	var l4HeaderLen int
	switch p.Protocol {
	case ProtoTCP:
		tcpLayer := pkt.Layer(layers.LayerTypeTCP)
		if tcpLayer == nil {
			return Packet{}, false
		}
		tcp, _ := tcpLayer.(*layers.TCP)
		p.SrcPort = uint16(tcp.SrcPort)
		p.DstPort = uint16(tcp.DstPort)
		p.Window = tcp.Window
		p.FIN, p.SYN, p.RST, p.PSH = tcp.FIN, tcp.SYN, tcp.RST, tcp.PSH
		p.ACK, p.URG, p.ECE, p.CWR = tcp.ACK, tcp.URG, tcp.ECE, tcp.CWR
		l4HeaderLen = int(tcp.DataOffset) * 4
	case ProtoUDP:
		udpLayer := pkt.Layer(layers.LayerTypeUDP)
		if udpLayer == nil {
			return Packet{}, false
		}
		udp, _ := udpLayer.(*layers.UDP)
		p.SrcPort = uint16(udp.SrcPort)
		p.DstPort = uint16(udp.DstPort)
		l4HeaderLen = 8
	default:
		return Packet{}, false
	}

	payload := ipTotalLen - l3HeaderLen - l4HeaderLen
	if payload < 0 {
		return Packet{}, false
	}
	p.PayloadLen = payload
	p.HeaderLen = l2HeaderLen + l3HeaderLen + l4HeaderLen
	return p, true
}

// Close is a no-op; the underlying file handle is released at the end of
// Each.
func (r *PcapReader) Close() error { return nil }
