package message

import (
	"encoding/json"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		isSender bool
		hasImage bool
		want     Kind
	}{
		{"sent text", true, false, SentText},
		{"sent image", true, true, SentImage},
		{"received text", false, false, ReceivedText},
		{"received image", false, true, ReceivedImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.isSender, tt.hasImage); got != tt.want {
				t.Errorf("KindOf(%v, %v) = %v, want %v", tt.isSender, tt.hasImage, got, tt.want)
			}
		})
	}
}

func TestKind_Predicates(t *testing.T) {
	tests := []struct {
		kind    Kind
		isSent  bool
		isImage bool
	}{
		{SentText, true, false},
		{ReceivedText, false, false},
		{SentImage, true, true},
		{ReceivedImage, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.IsSent(); got != tt.isSent {
				t.Errorf("IsSent() = %v, want %v", got, tt.isSent)
			}
			if got := tt.kind.IsImage(); got != tt.isImage {
				t.Errorf("IsImage() = %v, want %v", got, tt.isImage)
			}
		})
	}
}

func TestKind_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Kind Kind `json:"kind"`
	}{ReceivedImage})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(data) != `{"kind":"received_image"}` {
		t.Errorf("Marshal = %s, want %s", data, `{"kind":"received_image"}`)
	}

	var decoded struct {
		Kind Kind `json:"kind"`
	}
	if err := json.Unmarshal([]byte(`{"kind":"sent_text"}`), &decoded); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if decoded.Kind != SentText {
		t.Errorf("Kind = %v, want %v", decoded.Kind, SentText)
	}
}

func TestKind_UnknownText(t *testing.T) {
	var k Kind
	if err := k.UnmarshalText([]byte("bogus")); err == nil {
		t.Error("expected error for unknown kind")
	}
	if _, err := Kind(42).MarshalText(); err == nil {
		t.Error("expected error marshaling out-of-range kind")
	}
	if got := Kind(42).String(); got != "kind(42)" {
		t.Errorf("String() = %q, want %q", got, "kind(42)")
	}
}
