// Package events defines the typed engine event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - user_input.*
//   - assistant_response.*
//   - assistant_playback.*
//   - session_state.*
//   - turn_state.*
//
// Semantics used across the package:
//
//   - Frame: binary audio frame payload.
//   - Segment: append-only text piece emitted in stream order.
//   - Interim: mutable point-in-time snapshot that can change over time.
//   - Final: terminal immutable text/state for the current utterance/turn.
//   - Ended: lifecycle boundary indicating completion.
//
// user_input events
//
//   - UserAudioFrame (user_input.audio_frame): raw user input audio frame.
//   - UserSpeechStarted (user_input.speech_started): voice activity began.
//   - UserSpeechEnded (user_input.speech_ended): voice activity ended;
//     carries the accumulated span metadata.
//   - UserTranscriptInterim (user_input.transcript_interim): mutable interim
//     transcript snapshot; advisory only, never drives a turn transition.
//   - UserTranscriptFinal (user_input.transcript_final): terminal transcript
//     for the utterance, after dedup and hallucination filtering.
//   - UserBargeIn (user_input.barge_in): genuine user speech confirmed while
//     assistant audio was playing.
//
// assistant_response events
//
//   - AssistantResponseSegment (assistant_response.segment): streamed
//     response text segment.
//   - AssistantResponseFinal (assistant_response.final): response text stream
//     is complete.
//
// assistant_playback events
//
//   - AssistantPlaybackStarted (assistant_playback.started): playback started
//     for a synthesized segment.
//   - AssistantPlaybackEnded (assistant_playback.ended): playback finished
//     for the current response; includes the text that was actually spoken.
//   - AssistantPlaybackAborted (assistant_playback.aborted): playback was
//     flushed before completion; includes the pending segment texts.
//
// session_state events
//
//   - SessionPhaseChanged (session_state.phase_changed): the session state
//     machine moved between phases.
//   - SessionError (session_state.error): a user-facing failure notification,
//     emitted once per failure category.
//
// turn_state events
//
//   - TurnStarted (turn_state.started): current turn started.
//   - TurnCompleted (turn_state.completed): current turn completed.
//   - TurnCancelled (turn_state.cancelled): current turn was cancelled by a
//     barge-in or session teardown. Not an error.
package events
