package events

const (
	// KindAssistantPlaybackStarted identifies playback start for a segment.
	KindAssistantPlaybackStarted Kind = "assistant_playback.started"
	// KindAssistantPlaybackEnded identifies the playback completion milestone.
	KindAssistantPlaybackEnded Kind = "assistant_playback.ended"
	// KindAssistantPlaybackAborted identifies a flushed, unfinished playback.
	KindAssistantPlaybackAborted Kind = "assistant_playback.aborted"
)

// AssistantPlaybackStarted marks the start of assistant playback for a
// synthesized segment.
type AssistantPlaybackStarted struct {
	Base
	SegmentID  string
	SourceText string
}

// NewAssistantPlaybackStarted creates an assistant playback started event.
func NewAssistantPlaybackStarted(segmentID, sourceText string) AssistantPlaybackStarted {
	return AssistantPlaybackStarted{Base: NewBase(KindAssistantPlaybackStarted), SegmentID: segmentID, SourceText: sourceText}
}

// AssistantPlaybackEnded marks the end of assistant playback. Transcript is
// the text that was actually played to completion.
type AssistantPlaybackEnded struct {
	Base
	Transcript string
}

// NewAssistantPlaybackEnded creates an assistant playback ended event.
func NewAssistantPlaybackEnded(transcript string) AssistantPlaybackEnded {
	return AssistantPlaybackEnded{Base: NewBase(KindAssistantPlaybackEnded), Transcript: transcript}
}

// AssistantPlaybackAborted marks a playback flush. Pending carries the source
// texts of every segment dropped by the flush, in enqueue order.
type AssistantPlaybackAborted struct {
	Base
	Pending []string
}

// NewAssistantPlaybackAborted creates an assistant playback aborted event.
func NewAssistantPlaybackAborted(pending []string) AssistantPlaybackAborted {
	return AssistantPlaybackAborted{Base: NewBase(KindAssistantPlaybackAborted), Pending: pending}
}
