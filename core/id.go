package core

import (
	"crypto/rand"
	"encoding/hex"

	"pkt.systems/blackboard/schema"
)

func newTabID() schema.TabID {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "tab-unknown"
	}
	return schema.TabID("tab-" + hex.EncodeToString(buf[:]))
}
