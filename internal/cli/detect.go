package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-chapters/internal/audio"
	"github.com/alnah/go-chapters/internal/format"
	"github.com/alnah/go-chapters/internal/lang"
	"github.com/alnah/go-chapters/internal/logging"
	"github.com/alnah/go-chapters/internal/match"
	"github.com/alnah/go-chapters/internal/pipeline"
	"github.com/alnah/go-chapters/internal/transcribe"
)

// supportedFormats lists audio containers FFmpeg's silencedetect handles
// that audiobooks actually ship in.
var supportedFormats = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".m4b":  true,
	".aac":  true,
	".flac": true,
	".ogg":  true,
	".opus": true,
	".wav":  true,
	".wma":  true,
}

// supportedFormatsList returns a sorted, comma-separated list for error messages.
func supportedFormatsList() string {
	formats := make([]string, 0, len(supportedFormats))
	for ext := range supportedFormats {
		formats = append(formats, strings.TrimPrefix(ext, "."))
	}
	slices.Sort(formats)
	return strings.Join(formats, ", ")
}

// detectOptions holds all flag values for the detect command.
type detectOptions struct {
	OutputDir string

	SilenceThreshold float64
	SilenceDuration  time.Duration
	SnippetDuration  time.Duration
	LeadIn           time.Duration

	Words         []string
	NumbersOnly   bool
	FirstWordOnly bool

	Provider    string
	Model       string
	Device      string
	ComputeType string
	ModelDir    string
	Prompt      string
	Language    string
	WhisperBin  string

	TestRun       bool
	TestRunLength time.Duration
	Force         bool

	TimestampsOnly bool
	Fixup          bool

	LogLevel string
	NoColor  bool
}

// DetectCmd creates the detect command.
// The env parameter provides injectable dependencies for testing.
func DetectCmd(env *Env) *cobra.Command {
	var opts detectOptions

	cmd := &cobra.Command{
		Use:   "detect <audio-file>",
		Short: "Detect chapter boundaries in an audiobook",
		Long: `Detect chapter boundaries in an audiobook by scanning for long
silences, transcribing a short snippet after each one, and checking
whether the snippet announces a new section.

Matching is either keyword-based (--word, repeatable) or spoken-number
based (--numbers-only). Transcription runs locally via a whisper CLI by
default, or through the OpenAI API with --provider openai.

Two reports are written next to the source (or into --output-dir):
<name>_silences.txt with every detected silence, and
<name>_chapters.txt with the confirmed chapter marks.

Supported formats: ` + supportedFormatsList(),
		Example: `  chapters detect book.m4b --word chapter
  chapters detect book.mp3 --word chapter --word part --fixup
  chapters detect book.mp3 --numbers-only --first-word-only
  chapters detect book.mp3 --word chapter --test-run
  chapters detect book.mp3 --word chapter --provider openai`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, env, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.OutputDir, "output-dir", "o", "", "Directory for report files (default: alongside source)")

	f.Float64Var(&opts.SilenceThreshold, "silence-threshold", audio.DefaultSilenceThresholdDB, "Silence threshold in dB")
	f.DurationVar(&opts.SilenceDuration, "silence-duration", audio.DefaultMinSilence, "Minimum silence length to count as a gap")
	f.DurationVar(&opts.SnippetDuration, "snippet-duration", audio.DefaultSnippetLength, "Length of the snippet transcribed after each silence")
	f.DurationVar(&opts.LeadIn, "lead-in", audio.DefaultLeadIn, "How far before the silence end each snippet starts")

	f.StringArrayVarP(&opts.Words, "word", "w", nil, "Keyword phrase marking a chapter (repeatable, priority order)")
	f.BoolVar(&opts.NumbersOnly, "numbers-only", false, "Match spoken or digit numbers instead of keywords")
	f.BoolVar(&opts.FirstWordOnly, "first-word-only", false, "Only match at the first word of the snippet")

	f.StringVar(&opts.Provider, "provider", ProviderWhisper, "Transcription backend: whisper, openai")
	f.StringVar(&opts.Model, "model", "", "Model name (default: "+transcribe.DefaultModel+")")
	f.StringVar(&opts.Device, "device", "", "Whisper device: cpu, cuda (default: "+transcribe.DefaultDevice+")")
	f.StringVar(&opts.ComputeType, "compute-type", "", "Whisper compute type (default: "+transcribe.DefaultComputeType+")")
	f.StringVar(&opts.ModelDir, "model-dir", "", "Local whisper model directory")
	f.StringVar(&opts.Prompt, "prompt", "", "Recognition hint passed to the model")
	f.StringVarP(&opts.Language, "language", "l", "", "Audio language (ISO 639-1 code, e.g., en, fr, pt-BR)")
	f.StringVar(&opts.WhisperBin, "whisper-bin", "", "Path to the whisper CLI binary")

	f.BoolVar(&opts.TestRun, "test-run", false, "Run against a truncated copy of the source")
	f.DurationVar(&opts.TestRunLength, "test-run-length", audio.DefaultTestRunLength, "Length of the test-run copy")
	f.BoolVar(&opts.Force, "force", false, "Recreate the test-run copy even if one exists")

	f.BoolVar(&opts.TimestampsOnly, "timestamps-only", false, "Chapter report carries timestamps without text")
	f.BoolVar(&opts.Fixup, "fixup", false, "Standardize transcribed headings in the chapter report")

	f.StringVar(&opts.LogLevel, "log-level", "info", "Log level: trace, debug, info, warn, error")
	f.BoolVar(&opts.NoColor, "no-color", false, "Disable colored log output")

	return cmd
}

// runDetect executes the detection pipeline.
// Validation order: file exists -> format -> config -> language ->
// match target -> provider -> flag ranges -> backend credentials
func runDetect(cmd *cobra.Command, env *Env, inputPath string, opts detectOptions) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	// 1. File exists
	if _, err := os.Stat(inputPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, inputPath)
		}
		return fmt.Errorf("cannot access input file: %w", err)
	}

	// 2. Format supported
	ext := strings.ToLower(filepath.Ext(inputPath))
	if !supportedFormats[ext] {
		return fmt.Errorf("unsupported format %q (supported: %s): %w",
			ext, supportedFormatsList(), ErrUnsupportedFormat)
	}

	// 3. Load config for output-dir / model-dir / whisper-bin
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = cfg.OutputDir
	}
	if opts.ModelDir == "" {
		opts.ModelDir = cfg.ModelDir
	}

	// 4. Language validation
	if err := lang.Validate(opts.Language); err != nil {
		return err
	}

	// 5. Match target: need keywords or number mode
	if !opts.NumbersOnly && len(opts.Words) == 0 {
		return ErrNoMatchTarget
	}

	// 6. Provider validation
	if !validProvider(opts.Provider) {
		return ErrUnsupportedProvider
	}

	// 7. Flag ranges
	if opts.SilenceDuration <= 0 {
		return fmt.Errorf("%w: --silence-duration must be positive", ErrInvalidFlag)
	}
	if opts.SnippetDuration <= 0 {
		return fmt.Errorf("%w: --snippet-duration must be positive", ErrInvalidFlag)
	}
	if opts.LeadIn < 0 {
		return fmt.Errorf("%w: --lead-in cannot be negative", ErrInvalidFlag)
	}
	if opts.TestRunLength <= 0 {
		return fmt.Errorf("%w: --test-run-length must be positive", ErrInvalidFlag)
	}

	// 8. Backend credentials / binary
	var apiKey, whisperBin string
	switch opts.Provider {
	case ProviderOpenAI:
		apiKey = env.Getenv(EnvOpenAIAPIKey)
		if apiKey == "" {
			return fmt.Errorf("%w (set it with: export %s=sk-...)", ErrAPIKeyMissing, EnvOpenAIAPIKey)
		}
	case ProviderWhisper:
		whisperBin, err = resolveWhisperBin(env, opts.WhisperBin, cfg.WhisperBin)
		if err != nil {
			return err
		}
	}

	// === SETUP ===

	log := logging.New(env.Stderr, opts.LogLevel, opts.NoColor)

	matcher, err := buildMatcher(opts)
	if err != nil {
		return err
	}

	ffmpegPath, err := env.FFmpegResolver.Resolve(ctx)
	if err != nil {
		return err
	}
	env.FFmpegResolver.CheckVersion(ctx, ffmpegPath)

	// === TEST RUN (optional) ===

	if opts.TestRun {
		truncator, err := env.AudioFactory.NewTruncator(ffmpegPath)
		if err != nil {
			return err
		}
		testPath, reused, err := truncator.Create(ctx, inputPath, opts.TestRunLength, opts.Force)
		if err != nil {
			return err
		}
		if reused {
			fmt.Fprintf(env.Stderr, "Reusing test-run copy: %s\n", testPath)
		} else {
			fmt.Fprintf(env.Stderr, "Created test-run copy: %s (%s)\n",
				testPath, format.DurationHuman(opts.TestRunLength))
		}
		inputPath = testPath
	}

	// === PIPELINE ===

	prober, err := env.AudioFactory.NewProber(ffmpegPath)
	if err != nil {
		return err
	}
	scanner, err := env.AudioFactory.NewScanner(ffmpegPath,
		audio.WithThresholdDB(opts.SilenceThreshold),
		audio.WithMinSilence(opts.SilenceDuration),
		audio.WithProgress(progressPrinter(env)),
	)
	if err != nil {
		return err
	}
	extractor, err := env.AudioFactory.NewExtractor(ffmpegPath,
		audio.WithSnippetLength(opts.SnippetDuration),
		audio.WithLeadIn(opts.LeadIn),
	)
	if err != nil {
		return err
	}

	transcriber, err := buildTranscriber(env, opts, whisperBin, apiKey)
	if err != nil {
		return err
	}
	defer func() {
		if err := transcriber.Close(); err != nil {
			fmt.Fprintf(env.Stderr, "Warning: transcriber cleanup failed: %v\n", err)
		}
	}()

	runner := pipeline.NewRunner(pipeline.Deps{
		Prober:      prober,
		Scanner:     scanner,
		Extractor:   extractor,
		Transcriber: transcriber,
		Matcher:     matcher,
	}, pipeline.WithLogger(log))

	res, runErr := runner.Run(ctx, inputPath)

	// === WRITE REPORTS ===

	// Partial results are still written on failure or interrupt; the
	// silences already found and marks already confirmed are the whole
	// point of a multi-hour run.
	paths, writeErr := writeReports(res, reportOptions{
		OutputDir:      opts.OutputDir,
		TimestampsOnly: opts.TimestampsOnly,
		Fixup:          opts.Fixup,
	})
	if writeErr != nil {
		if runErr != nil {
			return fmt.Errorf("%w (and writing reports failed: %v)", runErr, writeErr)
		}
		return writeErr
	}

	fmt.Fprint(env.Stderr, summarize(res, paths))
	if runErr != nil {
		fmt.Fprintln(env.Stderr, "Run did not complete; reports hold partial results.")
	}
	return runErr
}

// buildMatcher resolves flag values into a matcher. Number mode wins
// when both --numbers-only and --word are given.
func buildMatcher(opts detectOptions) (pipeline.Matcher, error) {
	cfg := match.Config{
		Mode:          match.ModeKeywords,
		Phrases:       opts.Words,
		FirstWordOnly: opts.FirstWordOnly,
	}
	if opts.NumbersOnly {
		cfg.Mode = match.ModeNumbers
	}
	return match.New(cfg)
}

// buildTranscriber creates the configured transcription backend.
func buildTranscriber(env *Env, opts detectOptions, whisperBin, apiKey string) (transcribe.Transcriber, error) {
	profile := transcribe.Profile{
		Provider:    opts.Provider,
		Model:       opts.Model,
		Device:      opts.Device,
		ComputeType: opts.ComputeType,
		ModelDir:    opts.ModelDir,
		Prompt:      opts.Prompt,
		Language:    opts.Language,
	}.WithDefaults()

	if opts.Provider == ProviderOpenAI {
		return env.TranscriberFactory.NewOpenAI(apiKey, profile)
	}
	return env.TranscriberFactory.NewWhisper(whisperBin, profile)
}

// resolveWhisperBin locates the whisper CLI.
// Precedence: --whisper-bin flag, config whisper-bin, WHISPER_BIN env, PATH.
func resolveWhisperBin(env *Env, flagValue, configValue string) (string, error) {
	for _, candidate := range []string{flagValue, configValue, env.Getenv(EnvWhisperBin)} {
		if candidate != "" {
			return candidate, nil
		}
	}
	path, err := env.LookPath(whisperBinaryName)
	if err != nil {
		return "", fmt.Errorf("%w: %s not on PATH (install it, or set --whisper-bin)",
			transcribe.ErrWhisperNotFound, whisperBinaryName)
	}
	return path, nil
}

// progressPrinter renders scan progress as a single rewritten line.
// Derived positions are marked with "~": FFmpeg stopped reporting and
// the position is estimated from silence timestamps instead.
func progressPrinter(env *Env) audio.ProgressFunc {
	return func(p audio.Progress) {
		marker := ""
		if p.Derived {
			marker = "~"
		}
		fmt.Fprintf(env.Stderr, "\rScanning... %s%s %s", marker, format.Duration(p.Position), format.Percent(p.Fraction))
		if p.Fraction >= 1 {
			fmt.Fprintln(env.Stderr)
		}
	}
}
