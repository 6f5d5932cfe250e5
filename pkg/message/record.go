package message

// Record is a single message in a conversation. The payload is either text or
// an image, never both; SetText and SetImage enforce this.
//
// TimeVisible, NameVisible and TimeLabel are derived display state. They are
// overwritten whenever a conversation list ingests or repairs the record.
type Record struct {
	ID           int64
	SenderName   string
	ProfileImage []byte
	TimestampRaw string
	IsSender     bool

	TimeVisible bool
	NameVisible bool
	TimeLabel   string

	text  string
	image []byte
}

// NewText creates a text record.
func NewText(senderName, text, timestamp string, isSender bool) Record {
	return Record{
		SenderName:   senderName,
		TimestampRaw: timestamp,
		IsSender:     isSender,
		TimeVisible:  true,
		text:         text,
	}
}

// NewImage creates an image record. The image bytes are opaque to the list.
func NewImage(senderName string, image []byte, timestamp string, isSender bool) Record {
	r := Record{
		SenderName:   senderName,
		TimestampRaw: timestamp,
		IsSender:     isSender,
		TimeVisible:  true,
	}
	r.SetImage(image)
	return r
}

// Text returns the text payload. It is empty for image records.
func (r *Record) Text() string {
	return r.text
}

// Image returns the image payload, or nil for text records.
func (r *Record) Image() []byte {
	return r.image
}

// SetText replaces the payload with text and clears any image.
func (r *Record) SetText(text string) {
	r.image = nil
	r.text = text
}

// SetImage replaces the payload with an image and clears any text.
func (r *Record) SetImage(image []byte) {
	r.text = ""
	if len(image) == 0 {
		r.image = nil
		return
	}
	cp := make([]byte, len(image))
	copy(cp, image)
	r.image = cp
}

// HasImage reports whether the record carries an image payload.
func (r *Record) HasImage() bool {
	return len(r.image) > 0
}

// HasProfileImage reports whether a profile image is attached.
func (r *Record) HasProfileImage() bool {
	return len(r.ProfileImage) > 0
}

// IsEmpty reports whether the record has neither text nor image.
func (r *Record) IsEmpty() bool {
	return r.text == "" && !r.HasImage()
}

// Kind resolves the row variant for the record's current state.
func (r *Record) Kind() Kind {
	return KindOf(r.IsSender, r.HasImage())
}
