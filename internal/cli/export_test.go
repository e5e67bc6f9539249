package cli

// Export internal functions for testing.

// RunDetect exports runDetect for testing.
var RunDetect = runDetect

// RunConfigSet exports runConfigSet for testing.
var RunConfigSet = runConfigSet

// RunConfigGet exports runConfigGet for testing.
var RunConfigGet = runConfigGet

// RunConfigList exports runConfigList for testing.
var RunConfigList = runConfigList

// SupportedFormatsList exports supportedFormatsList for testing.
var SupportedFormatsList = supportedFormatsList

// IsValidConfigKey exports isValidConfigKey for testing.
var IsValidConfigKey = isValidConfigKey

// ValidConfigKeys exports validConfigKeys for testing.
var ValidConfigKeys = validConfigKeys

// ResolveWhisperBin exports resolveWhisperBin for testing.
var ResolveWhisperBin = resolveWhisperBin

// BuildMatcher exports buildMatcher for testing.
var BuildMatcher = buildMatcher

// ReportPathsFor exports reportPathsFor for testing.
var ReportPathsFor = reportPathsFor

// RenderSilences exports renderSilences for testing.
var RenderSilences = renderSilences

// RenderChapters exports renderChapters for testing.
var RenderChapters = renderChapters

// WriteReports exports writeReports for testing.
var WriteReports = writeReports

// Summarize exports summarize for testing.
var Summarize = summarize

// ValidProvider exports validProvider for testing.
var ValidProvider = validProvider

// DetectOptions exports detectOptions for testing.
type DetectOptions = detectOptions

// ReportOptions exports reportOptions for testing.
type ReportOptions = reportOptions

// ReportPaths exports reportPaths for testing.
type ReportPaths = reportPaths
