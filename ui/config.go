package ui

// Config carries TUI-specific configuration, populated from the config
// file, flags, and environment.
type Config struct {
	// LibraryDir is where episodes live.
	LibraryDir string `env:"VANI_LIBRARY_DIR"`
	// CacheDir holds rendered line audio between sessions.
	CacheDir string `env:"VANI_CACHE_DIR"`

	// Provider credentials.
	ElevenLabsKey string `env:"ELEVENLABS_API_KEY"`
	GeminiKey     string `env:"GEMINI_API_KEY"`

	// MockSynthesis renders with fabricated audio instead of the
	// provider. Useful offline and in CI.
	MockSynthesis bool `env:"VANI_MOCK_SYNTH"`

	// Mute skips opening the audio device; playback advances the
	// clock silently.
	Mute bool `env:"VANI_MUTE"`

	EnableMouse bool `env:"VANI_ENABLE_MOUSE"`

	// WatchScripts reloads an open episode when its script file
	// changes on disk, so external editors and the TUI can coexist.
	WatchScripts bool `env:"VANI_WATCH" envDefault:"true"`

	// Path, when set, opens a script file directly instead of the
	// library.
	Path string
}
