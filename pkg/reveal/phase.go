package reveal

// Phase is the stage a reveal session is in.
type Phase int

const (
	// Idle shows the cropped view and the question text.
	Idle Phase = iota
	// Transforming moves the cropped element onto the full image.
	Transforming
	// Materializing reveals the full image with the session's variant.
	Materializing
	// AnswerRevealed shows the answer; advancing is permitted.
	AnswerRevealed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Transforming:
		return "transforming"
	case Materializing:
		return "materializing"
	case AnswerRevealed:
		return "answer-revealed"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
