package protocol

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestServerMessage_UpdateStateAlwaysCarriesSelectedIndices(t *testing.T) {
	// Deselecting the last toggled cell leaves an empty selection; the
	// field must still appear so clients can clear their rendering.
	count := 0
	msg := ServerMessage{
		Type:            EvtUpdateState,
		MemberName:      "alva",
		SelectedIndices: []int{},
		BingoCount:      &count,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(payload), `"selectedIndices":[]`) {
		t.Fatalf("empty selection dropped from payload: %s", payload)
	}
}
