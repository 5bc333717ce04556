package voicechat

import (
	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/events"
)

type eventEmitter func(event events.Event)

// newCallbackEventEmitter fans session events out to the callbacks the
// engine was configured with, in addition to the raw event callback.
func newCallbackEventEmitter(options engineOptions) eventEmitter {
	return func(event events.Event) {
		if options.eventCallback != nil {
			options.eventCallback(event)
		}

		switch e := event.(type) {
		case events.UserTranscriptInterim:
			if options.interimTranscriptCallback != nil {
				options.interimTranscriptCallback(e.Transcript)
			}
		case events.UserTranscriptFinal:
			if options.transcriptCallback != nil {
				options.transcriptCallback(e.Transcript, e.Source)
			}
		case events.AssistantResponseSegment:
			if options.responseSegmentCallback != nil {
				options.responseSegmentCallback(e.Segment)
			}
		case events.AssistantResponseFinal:
			if options.responseCallback != nil {
				options.responseCallback(e.Text)
			}
		case events.SessionPhaseChanged:
			if options.phaseChangeCallback != nil {
				options.phaseChangeCallback(e.From, e.To)
			}
		case events.SessionError:
			if options.errorCallback != nil {
				options.errorCallback(e.Category, e.Err)
			}
		}
	}
}
