package audio

import "errors"

// ErrFileNotFound indicates the specified input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrNoDuration indicates the source duration could not be determined.
var ErrNoDuration = errors.New("could not determine audio duration")

// ErrScanFailed indicates FFmpeg failed during silence detection.
var ErrScanFailed = errors.New("silence scan failed")

// ErrExtractionFailed indicates FFmpeg failed to extract a snippet.
var ErrExtractionFailed = errors.New("snippet extraction failed")

// ErrTruncationFailed indicates the test-run copy could not be created.
var ErrTruncationFailed = errors.New("test-run copy failed")
