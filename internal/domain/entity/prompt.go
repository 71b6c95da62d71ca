package entity

// Point is a single (x, y) prompt coordinate in media pixel space.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// PromptAction is one signal from the prompt source driving a mask
// acquisition session.
type PromptAction int

const (
	// PromptPoint adds a point to the accumulated point list.
	PromptPoint PromptAction = iota
	// PromptAccept commits the current candidate mask.
	PromptAccept
	// PromptReset discards accumulated points and the candidate mask.
	PromptReset
	// PromptAbandon ends the session without a mask.
	PromptAbandon
)

func (a PromptAction) String() string {
	switch a {
	case PromptPoint:
		return "point"
	case PromptAccept:
		return "accept"
	case PromptReset:
		return "reset"
	case PromptAbandon:
		return "abandon"
	default:
		return "unknown"
	}
}

// Prompt is one event from the prompt source. Point is only meaningful
// when Action is PromptPoint.
type Prompt struct {
	Action PromptAction
	Point  Point
}
