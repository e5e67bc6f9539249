package cli

import "github.com/alnah/go-chapters/internal/transcribe"

// Transcription providers accepted by --provider.
const (
	ProviderWhisper = transcribe.ProviderWhisper
	ProviderOpenAI  = transcribe.ProviderOpenAI
)

// Environment variable names.
const (
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvWhisperBin   = "WHISPER_BIN"
)

// whisperBinaryName is what we look for on PATH when nothing is configured.
const whisperBinaryName = "whisper-ctranslate2"

// validProvider reports whether p names a known provider.
func validProvider(p string) bool {
	return p == ProviderWhisper || p == ProviderOpenAI
}
