package testutil

import "time"

// StandardTime is the commit time of the newest standard signal.
var StandardTime = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

// WithStandardTestData adds three signals, oldest first:
//
//	sig-plain   "101,202,303"          plain save, 2 minutes before StandardTime
//	sig-delayed "ring at the gate"     antidelay 12s, 1 minute before StandardTime
//	sig-multi   "first line\nsecond"   plain save at StandardTime
//
// and two intents: RING_OFF delivered by broadcast, SCREEN_OFF failed.
func (b *Builder) WithStandardTestData() *Builder {
	return b.
		WithSignal("sig-plain",
			Text("101,202,303"), CreatedAt(StandardTime.Add(-2*time.Minute))).
		WithSignal("sig-delayed",
			Text("ring at the gate"), Antidelay(12), CreatedAt(StandardTime.Add(-time.Minute))).
		WithSignal("sig-multi",
			Text("first line\nsecond"), CreatedAt(StandardTime)).
		WithIntent("com.tasker.RING_OFF", SentAt(StandardTime.Add(-30*time.Second))).
		WithIntent("com.tasker.SCREEN_OFF", Failed(), SentAt(StandardTime))
}
