package message

import "testing"

func TestNewText(t *testing.T) {
	r := NewText("Alice", "hello", "2024-01-02T03:04:05.000Z", false)
	if r.Text() != "hello" {
		t.Errorf("Text() = %q, want %q", r.Text(), "hello")
	}
	if r.HasImage() {
		t.Error("text record should not have an image")
	}
	if r.Kind() != ReceivedText {
		t.Errorf("Kind() = %v, want %v", r.Kind(), ReceivedText)
	}
	if !r.TimeVisible {
		t.Error("new records start with TimeVisible = true")
	}
	if r.NameVisible {
		t.Error("new records start with NameVisible = false")
	}
}

func TestNewImage(t *testing.T) {
	r := NewImage("", []byte{1, 2, 3}, "", true)
	if !r.HasImage() {
		t.Fatal("expected image payload")
	}
	if r.Text() != "" {
		t.Errorf("Text() = %q, want empty", r.Text())
	}
	if r.Kind() != SentImage {
		t.Errorf("Kind() = %v, want %v", r.Kind(), SentImage)
	}
}

func TestRecord_PayloadIsExclusive(t *testing.T) {
	r := NewText("Bob", "hi", "", false)

	r.SetImage([]byte{9})
	if r.Text() != "" {
		t.Errorf("SetImage should clear text, got %q", r.Text())
	}
	if !r.HasImage() {
		t.Error("SetImage should set image")
	}

	r.SetText("back to text")
	if r.HasImage() {
		t.Error("SetText should clear image")
	}
	if r.Text() != "back to text" {
		t.Errorf("Text() = %q, want %q", r.Text(), "back to text")
	}
}

func TestRecord_SetImageCopies(t *testing.T) {
	img := []byte{1, 2, 3}
	r := NewImage("", img, "", false)

	img[0] = 'X'

	if r.Image()[0] == 'X' {
		t.Error("SetImage did not copy; caller mutation leaked into record")
	}
}

func TestRecord_IsEmpty(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want bool
	}{
		{"text", NewText("", "x", "", true), false},
		{"image", NewImage("", []byte{1}, "", true), false},
		{"empty text", NewText("", "", "", true), true},
		{"nil image", NewImage("", nil, "", true), true},
		{"zero value", Record{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}
