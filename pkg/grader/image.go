package grader

// ImageStatus は採点対象画像のライフサイクル状態です。
type ImageStatus int

const (
	StatusPending ImageStatus = iota
	StatusGrading
	StatusGraded
	StatusEnhancing
	StatusTagging
	StatusError
)

func (s ImageStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusGrading:
		return "grading"
	case StatusGraded:
		return "graded"
	case StatusEnhancing:
		return "enhancing"
	case StatusTagging:
		return "tagging"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Image は採点・タグ付けパイプラインを流れる1枚の画像です。
// Score は未採点の間は nil です。
type Image struct {
	ID               string
	Filename         string
	Data             []byte
	Status           ImageStatus
	Score            *int
	Feedback         string
	RejectionReasons []string
	Title            string
	Keywords         []string
}
