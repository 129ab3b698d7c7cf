// ABOUTME: Sequence composition package
// ABOUTME: Stitches signals, DTMF bursts, silences and nested sequences in order
// Package sequence composes heterogeneous segments into one waveform.
//
// A Sequence owns an ordered list of Segment values. Segment is a closed sum
// type with four cases: SequenceSegment, SignalSegment, DTMFSegment and
// SilenceSegment. The Composer visits them depth-first, left to right, and
// appends each generated run to a single output waveform.
//
// Composition is best-effort: a segment that fails validation is logged,
// recorded in the Report, and skipped. Compose never fails as a whole.
//
// Example:
//
//	seq, _ := sequence.New("dial", "dial tone test", audio.SampleRate9600,
//	    sequence.Silence(10),
//	    sequence.Signal(sig),
//	    sequence.DTMF('1', 50, 50),
//	)
//	w, report := sequence.NewComposer(sequence.WithLogger(logger)).ComposeSequence(seq)
package sequence
