package events

import "time"

const (
	// KindUserAudioFrame identifies raw audio captured from user input.
	KindUserAudioFrame Kind = "user_input.audio_frame"
	// KindUserSpeechStarted identifies start of user speech activity.
	KindUserSpeechStarted Kind = "user_input.speech_started"
	// KindUserSpeechEnded identifies end of user speech activity.
	KindUserSpeechEnded Kind = "user_input.speech_ended"
	// KindUserTranscriptInterim identifies mutable interim transcript snapshots.
	KindUserTranscriptInterim Kind = "user_input.transcript_interim"
	// KindUserTranscriptFinal identifies the final transcript for the utterance.
	KindUserTranscriptFinal Kind = "user_input.transcript_final"
	// KindUserBargeIn identifies confirmed user speech during assistant playback.
	KindUserBargeIn Kind = "user_input.barge_in"
)

// UserAudioFrame carries a user input audio frame.
type UserAudioFrame struct {
	Base
	Audio []byte
}

// NewUserAudioFrame creates a user input audio frame event.
func NewUserAudioFrame(audio []byte) UserAudioFrame {
	return UserAudioFrame{Base: NewBase(KindUserAudioFrame), Audio: audio}
}

// UserSpeechStarted marks when user speech activity starts.
type UserSpeechStarted struct{ Base }

// NewUserSpeechStarted creates a user speech started event.
func NewUserSpeechStarted() UserSpeechStarted {
	return UserSpeechStarted{Base: NewBase(KindUserSpeechStarted)}
}

// UserSpeechEnded marks when user speech activity ends. Duration and loudness
// describe the accumulated span.
type UserSpeechEnded struct {
	Base
	Duration   time.Duration
	PeakRMS    float64
	AverageRMS float64
}

// NewUserSpeechEnded creates a user speech ended event.
func NewUserSpeechEnded(duration time.Duration, peakRMS, averageRMS float64) UserSpeechEnded {
	return UserSpeechEnded{
		Base:       NewBase(KindUserSpeechEnded),
		Duration:   duration,
		PeakRMS:    peakRMS,
		AverageRMS: averageRMS,
	}
}

// UserTranscriptInterim carries a mutable interim transcript snapshot.
// Interim transcripts are advisory: they update the pending text shown to the
// user but never drive a turn transition.
type UserTranscriptInterim struct {
	Base
	Transcript string
}

// NewUserTranscriptInterim creates an interim transcript snapshot event.
func NewUserTranscriptInterim(transcript string) UserTranscriptInterim {
	return UserTranscriptInterim{Base: NewBase(KindUserTranscriptInterim), Transcript: transcript}
}

// UserTranscriptFinal carries the final transcript for the utterance.
type UserTranscriptFinal struct {
	Base
	Transcript string
	Confidence float64
	Source     string
}

// NewUserTranscriptFinal creates a final transcript event.
func NewUserTranscriptFinal(transcript string, confidence float64, source string) UserTranscriptFinal {
	return UserTranscriptFinal{
		Base:       NewBase(KindUserTranscriptFinal),
		Transcript: transcript,
		Confidence: confidence,
		Source:     source,
	}
}

// UserBargeIn marks genuine user speech confirmed while assistant audio was
// playing. Transcript may be empty when the barge-in was detected from volume
// alone and the utterance is still being transcribed.
type UserBargeIn struct {
	Base
	Transcript string
}

// NewUserBargeIn creates a barge-in event.
func NewUserBargeIn(transcript string) UserBargeIn {
	return UserBargeIn{Base: NewBase(KindUserBargeIn), Transcript: transcript}
}
