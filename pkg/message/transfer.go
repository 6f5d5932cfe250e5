package message

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Transfer is the wire form of a Record. NameVisible is deliberately absent:
// it is always recomputed when records are rehydrated into a list.
type Transfer struct {
	UID         int64  `json:"uid"`
	Name        string `json:"name"`
	ProfileImg  string `json:"profileImg"`
	Message     string `json:"message"`
	MessageImg  string `json:"messageImg"`
	Timestamp   string `json:"timestamp"`
	IsSender    bool   `json:"isSender"`
	TimeVisible bool   `json:"timeVisible"`
}

// ToTransfer converts a record to its wire form. Images are base64 encoded;
// absent images become empty strings.
func ToTransfer(r Record) Transfer {
	return Transfer{
		UID:         r.ID,
		Name:        r.SenderName,
		ProfileImg:  encodeImage(r.ProfileImage),
		Message:     r.text,
		MessageImg:  encodeImage(r.image),
		Timestamp:   r.TimestampRaw,
		IsSender:    r.IsSender,
		TimeVisible: r.TimeVisible,
	}
}

// Record converts the wire form back to a record. Image fields that are empty
// or not valid base64 are treated as "no image". When both a message image and
// text are present the image wins, keeping the payload single-valued.
func (t Transfer) Record() Record {
	r := Record{
		ID:           t.UID,
		SenderName:   t.Name,
		ProfileImage: decodeImage(t.ProfileImg),
		TimestampRaw: t.Timestamp,
		IsSender:     t.IsSender,
		TimeVisible:  t.TimeVisible,
	}
	if img := decodeImage(t.MessageImg); img != nil {
		r.image = img
	} else {
		r.text = t.Message
	}
	return r
}

// DecodeTransfer decodes a single wire record.
func DecodeTransfer(data []byte) (Record, error) {
	var t Transfer
	if err := json.Unmarshal(data, &t); err != nil {
		return Record{}, fmt.Errorf("message: decode transfer: %w", err)
	}
	return t.Record(), nil
}

// ErrNotArray is returned by DecodeTransferList when the payload is not a JSON array.
var ErrNotArray = errors.New("message: transfer list must be a JSON array")

// DecodeTransferList decodes a JSON array of wire records. Elements that fail
// to decode are dropped with a warning on logger rather than failing the batch.
func DecodeTransferList(data []byte, logger *slog.Logger) ([]Record, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotArray, err)
	}

	records := make([]Record, 0, len(raw))
	for i, elem := range raw {
		rec, err := DecodeTransfer(elem)
		if err != nil {
			logger.Warn("dropping malformed transfer record", "index", i, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// EncodeTransferList encodes records as a JSON array of wire records.
func EncodeTransferList(records []Record) ([]byte, error) {
	out := make([]Transfer, len(records))
	for i, r := range records {
		out[i] = ToTransfer(r)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("message: encode transfer list: %w", err)
	}
	return data, nil
}

func encodeImage(img []byte) string {
	if len(img) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(img)
}

// decodeImage accepts line-wrapped and unpadded base64.
func decodeImage(s string) []byte {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil && len(b) > 0 {
		return b
	}
	if b, err := base64.RawStdEncoding.DecodeString(s); err == nil && len(b) > 0 {
		return b
	}
	return nil
}
