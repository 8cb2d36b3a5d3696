package flowmeter

import "testing"

func TestPacketIsTCPUDP(t *testing.T) {
	tcp := Packet{Protocol: ProtoTCP}
	udp := Packet{Protocol: ProtoUDP}

	if !tcp.IsTCP() || tcp.IsUDP() {
		t.Errorf("TCP packet classified wrong: IsTCP=%v IsUDP=%v", tcp.IsTCP(), tcp.IsUDP())
	}
	if !udp.IsUDP() || udp.IsTCP() {
		t.Errorf("UDP packet classified wrong: IsTCP=%v IsUDP=%v", udp.IsTCP(), udp.IsUDP())
	}
}
