package flowmeter

// FeatureRecord is the fixed-order, fixed-schema projection of a finished
// (or residual) FlowState, per spec.md §4.5 and §6.2. Field order and the
// `csv` struct tags define the emitted column order and header text
// exactly; gocsv marshals directly from this struct.
type FeatureRecord struct {
	FlowID   string `csv:"Flow ID"`
	SrcIP    string `csv:"Src IP"`
	SrcPort  uint16 `csv:"Src Port"`
	DstIP    string `csv:"Dst IP"`
	DstPort  uint16 `csv:"Dst Port"`
	Protocol uint8  `csv:"Protocol"`

	Timestamp    int64 `csv:"Timestamp"`
	FlowDuration int64 `csv:"Flow Duration"`

	TotFwdPkts int64 `csv:"Tot Fwd Pkts"`
	TotBwdPkts int64 `csv:"Tot Bwd Pkts"`

	TotLenFwdPkts float64 `csv:"TotLen Fwd Pkts"`
	TotLenBwdPkts float64 `csv:"TotLen Bwd Pkts"`

	FwdPktLenMax  float64 `csv:"Fwd Pkt Len Max"`
	FwdPktLenMin  float64 `csv:"Fwd Pkt Len Min"`
	FwdPktLenMean float64 `csv:"Fwd Pkt Len Mean"`
	FwdPktLenStd  float64 `csv:"Fwd Pkt Len Std"`
	BwdPktLenMax  float64 `csv:"Bwd Pkt Len Max"`
	BwdPktLenMin  float64 `csv:"Bwd Pkt Len Min"`
	BwdPktLenMean float64 `csv:"Bwd Pkt Len Mean"`
	BwdPktLenStd  float64 `csv:"Bwd Pkt Len Std"`

	FlowBytsPerSec float64 `csv:"Flow Byts/s"`
	FlowPktsPerSec float64 `csv:"Flow Pkts/s"`

	FlowIATMean float64 `csv:"Flow IAT Mean"`
	FlowIATStd  float64 `csv:"Flow IAT Std"`
	FlowIATMax  float64 `csv:"Flow IAT Max"`
	FlowIATMin  float64 `csv:"Flow IAT Min"`

	FwdIATTot  float64 `csv:"Fwd IAT Tot"`
	FwdIATMean float64 `csv:"Fwd IAT Mean"`
	FwdIATStd  float64 `csv:"Fwd IAT Std"`
	FwdIATMax  float64 `csv:"Fwd IAT Max"`
	FwdIATMin  float64 `csv:"Fwd IAT Min"`
	BwdIATTot  float64 `csv:"Bwd IAT Tot"`
	BwdIATMean float64 `csv:"Bwd IAT Mean"`
	BwdIATStd  float64 `csv:"Bwd IAT Std"`
	BwdIATMax  float64 `csv:"Bwd IAT Max"`
	BwdIATMin  float64 `csv:"Bwd IAT Min"`

	FwdPSHFlags int64 `csv:"Fwd PSH Flags"`
	BwdPSHFlags int64 `csv:"Bwd PSH Flags"`
	FwdURGFlags int64 `csv:"Fwd URG Flags"`
	BwdURGFlags int64 `csv:"Bwd URG Flags"`

	FwdHeaderLen int64 `csv:"Fwd Header Len"`
	BwdHeaderLen int64 `csv:"Bwd Header Len"`

	FwdPktsPerSec float64 `csv:"Fwd Pkts/s"`
	BwdPktsPerSec float64 `csv:"Bwd Pkts/s"`

	PktLenMin  float64 `csv:"Pkt Len Min"`
	PktLenMax  float64 `csv:"Pkt Len Max"`
	PktLenMean float64 `csv:"Pkt Len Mean"`
	PktLenStd  float64 `csv:"Pkt Len Std"`
	PktLenVar  float64 `csv:"Pkt Len Var"`

	FINFlagCnt   int64 `csv:"FIN Flag Cnt"`
	SYNFlagCnt   int64 `csv:"SYN Flag Cnt"`
	RSTFlagCnt   int64 `csv:"RST Flag Cnt"`
	PSHFlagCnt   int64 `csv:"PSH Flag Cnt"`
	ACKFlagCnt   int64 `csv:"ACK Flag Cnt"`
	URGFlagCnt   int64 `csv:"URG Flag Cnt"`
	CWEFlagCount int64 `csv:"CWE Flag Count"`
	ECEFlagCnt   int64 `csv:"ECE Flag Cnt"`

	DownUpRatio int64 `csv:"Down/Up Ratio"`

	PktSizeAvg    float64 `csv:"Pkt Size Avg"`
	FwdSegSizeAvg float64 `csv:"Fwd Seg Size Avg"`
	BwdSegSizeAvg float64 `csv:"Bwd Seg Size Avg"`

	FwdBytsPerBAvg float64 `csv:"Fwd Byts/b Avg"`
	FwdPktsPerBAvg float64 `csv:"Fwd Pkts/b Avg"`
	FwdBlkRateAvg  float64 `csv:"Fwd Blk Rate Avg"`
	BwdBytsPerBAvg float64 `csv:"Bwd Byts/b Avg"`
	BwdPktsPerBAvg float64 `csv:"Bwd Pkts/b Avg"`
	BwdBlkRateAvg  float64 `csv:"Bwd Blk Rate Avg"`

	SubflowFwdPkts float64 `csv:"Subflow Fwd Pkts"`
	SubflowFwdByts float64 `csv:"Subflow Fwd Byts"`
	SubflowBwdPkts float64 `csv:"Subflow Bwd Pkts"`
	SubflowBwdByts float64 `csv:"Subflow Bwd Byts"`

	InitFwdWinByts int64 `csv:"Init Fwd Win Byts"`
	InitBwdWinByts int64 `csv:"Init Bwd Win Byts"`
	FwdActDataPkts int64 `csv:"Fwd Act Data Pkts"`
	FwdSegSizeMin  int64 `csv:"Fwd Seg Size Min"`

	ActiveMean float64 `csv:"Active Mean"`
	ActiveStd  float64 `csv:"Active Std"`
	ActiveMax  float64 `csv:"Active Max"`
	ActiveMin  float64 `csv:"Active Min"`
	IdleMean   float64 `csv:"Idle Mean"`
	IdleStd    float64 `csv:"Idle Std"`
	IdleMax    float64 `csv:"Idle Max"`
	IdleMin    float64 `csv:"Idle Min"`

	Label string `csv:"Label"`
}

// NewFeatureRecord projects a FlowState into its fixed-schema feature row.
// This is a pure function of the flow's accumulated state: no field read
// here has a data-dependent error path, matching spec.md §7's "the core
// never fails."
func NewFeatureRecord(f *FlowState) FeatureRecord {
	duration := f.LastSeen - f.StartTS
	durationSec := float64(duration) / 1e6

	totLenFwd := f.fwd.payloadLen.Sum()
	totLenBwd := f.bwd.payloadLen.Sum()

	var flowBytsPerSec, flowPktsPerSec, fwdPktsPerSec, bwdPktsPerSec float64
	if duration > 0 {
		flowBytsPerSec = (totLenFwd + totLenBwd) / durationSec
		flowPktsPerSec = float64(f.fwd.pktCount+f.bwd.pktCount) / durationSec
		fwdPktsPerSec = float64(f.fwd.pktCount) / durationSec
		bwdPktsPerSec = float64(f.bwd.pktCount) / durationSec
	}

	var downUpRatio int64
	if f.fwd.pktCount > 0 {
		downUpRatio = f.bwd.pktCount / f.fwd.pktCount
	}

	var initWinFwd, initWinBwd int64
	if f.initWinFwdSet {
		initWinFwd = int64(f.initWinFwd)
	}
	if f.initWinBwdSet {
		initWinBwd = int64(f.initWinBwd)
	}

	return FeatureRecord{
		FlowID:   f.ID,
		SrcIP:    f.Key.SrcIP,
		SrcPort:  f.Key.SrcPort,
		DstIP:    f.Key.DstIP,
		DstPort:  f.Key.DstPort,
		Protocol: f.Key.Protocol,

		Timestamp:    f.StartTS,
		FlowDuration: duration,

		TotFwdPkts: f.fwd.pktCount,
		TotBwdPkts: f.bwd.pktCount,

		TotLenFwdPkts: totLenFwd,
		TotLenBwdPkts: totLenBwd,

		FwdPktLenMax:  f.fwd.payloadLen.Max(),
		FwdPktLenMin:  f.fwd.payloadLen.Min(),
		FwdPktLenMean: f.fwd.payloadLen.Mean(),
		FwdPktLenStd:  f.fwd.payloadLen.Std(),
		BwdPktLenMax:  f.bwd.payloadLen.Max(),
		BwdPktLenMin:  f.bwd.payloadLen.Min(),
		BwdPktLenMean: f.bwd.payloadLen.Mean(),
		BwdPktLenStd:  f.bwd.payloadLen.Std(),

		FlowBytsPerSec: flowBytsPerSec,
		FlowPktsPerSec: flowPktsPerSec,

		FlowIATMean: f.wholeIAT.Mean(),
		FlowIATStd:  f.wholeIAT.Std(),
		FlowIATMax:  f.wholeIAT.Max(),
		FlowIATMin:  f.wholeIAT.Min(),

		FwdIATTot:  f.fwd.iat.Sum(),
		FwdIATMean: f.fwd.iat.Mean(),
		FwdIATStd:  f.fwd.iat.Std(),
		FwdIATMax:  f.fwd.iat.Max(),
		FwdIATMin:  f.fwd.iat.Min(),
		BwdIATTot:  f.bwd.iat.Sum(),
		BwdIATMean: f.bwd.iat.Mean(),
		BwdIATStd:  f.bwd.iat.Std(),
		BwdIATMax:  f.bwd.iat.Max(),
		BwdIATMin:  f.bwd.iat.Min(),

		FwdPSHFlags: f.fwd.pshCount,
		BwdPSHFlags: f.bwd.pshCount,
		FwdURGFlags: f.fwd.urgCount,
		BwdURGFlags: f.bwd.urgCount,

		FwdHeaderLen: f.fwd.totalHeaderBytes,
		BwdHeaderLen: f.bwd.totalHeaderBytes,

		FwdPktsPerSec: fwdPktsPerSec,
		BwdPktsPerSec: bwdPktsPerSec,

		PktLenMin:  f.wholeLen.Min(),
		PktLenMax:  f.wholeLen.Max(),
		PktLenMean: f.wholeLen.Mean(),
		PktLenStd:  f.wholeLen.Std(),
		PktLenVar:  f.wholeLen.Variance(),

		FINFlagCnt:   f.finFlags,
		SYNFlagCnt:   f.synFlags,
		RSTFlagCnt:   f.rstFlags,
		PSHFlagCnt:   f.pshFlags,
		ACKFlagCnt:   f.ackFlags,
		URGFlagCnt:   f.urgFlags,
		CWEFlagCount: f.cwrFlags,
		ECEFlagCnt:   f.eceFlags,

		DownUpRatio: downUpRatio,

		PktSizeAvg:    f.wholeLen.Mean(),
		FwdSegSizeAvg: f.fwd.payloadLen.Mean(),
		BwdSegSizeAvg: f.bwd.payloadLen.Mean(),

		FwdBytsPerBAvg: f.fwdBulk.avgBytesPerBulk(),
		FwdPktsPerBAvg: f.fwdBulk.avgPacketsPerBulk(),
		FwdBlkRateAvg:  f.fwdBulk.avgBulkRate(),
		BwdBytsPerBAvg: f.bwdBulk.avgBytesPerBulk(),
		BwdPktsPerBAvg: f.bwdBulk.avgPacketsPerBulk(),
		BwdBlkRateAvg:  f.bwdBulk.avgBulkRate(),

		SubflowFwdPkts: perSubflow(f.fwd.pktCount, f.subflow.count),
		SubflowFwdByts: perSubflow(f.fwd.totalBytes, f.subflow.count),
		SubflowBwdPkts: perSubflow(f.bwd.pktCount, f.subflow.count),
		SubflowBwdByts: perSubflow(f.bwd.totalBytes, f.subflow.count),

		InitFwdWinByts: initWinFwd,
		InitBwdWinByts: initWinBwd,
		FwdActDataPkts: f.actDataPktCountFwd,
		FwdSegSizeMin:  f.minSegSizeFwd,

		ActiveMean: f.actIdle.active.Mean(),
		ActiveStd:  f.actIdle.active.Std(),
		ActiveMax:  f.actIdle.active.Max(),
		ActiveMin:  f.actIdle.active.Min(),
		IdleMean:   f.actIdle.idle.Mean(),
		IdleStd:    f.actIdle.idle.Std(),
		IdleMax:    f.actIdle.idle.Max(),
		IdleMin:    f.actIdle.idle.Min(),

		Label: f.Label,
	}
}
